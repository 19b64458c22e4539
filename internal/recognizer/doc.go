// Package recognizer defines the OCR engine boundary: an image goes in,
// (text, quadrilateral, confidence) fragments come out.
//
// The default build links no engine and every call returns ErrNoBackend.
// Build with the `tesseract` tag to use the gosseract (libtesseract)
// backend:
//
//	go build -tags=tesseract ./...
package recognizer
