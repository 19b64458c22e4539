//go:build !tesseract

package recognizer

// Linked reports whether an OCR engine is compiled in.
const Linked = false

func newDefaultBackend(Config) (Recognizer, error) { return noBackend{}, nil }
