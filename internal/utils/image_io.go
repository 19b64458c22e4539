package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
)

// ErrEmptyImage is wrapped by ImageProcessingError for zero-byte input.
var ErrEmptyImage = errors.New("image is empty")

// ImageProcessingError reports which step of loading or saving failed.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// SupportedImageExtensions lists supported file extensions for loading.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ImageMetadata captures lightweight file and pixel information.
type ImageMetadata struct {
	Path      string
	Format    string
	SizeBytes int64
	Width     int
	Height    int
}

// LoadImage opens and decodes an image file. Unsupported extensions,
// zero-byte files and undecodable data all yield an *ImageProcessingError.
func LoadImage(path string) (image.Image, ImageMetadata, error) {
	if path == "" {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: errors.New("empty path")}
	}
	if !IsSupportedImage(path) {
		err := &ImageProcessingError{Operation: "load", Err: fmt.Errorf("unsupported format: %s", filepath.Ext(path))}
		return nil, ImageMetadata{}, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: reading a user-provided image path is expected
	if err != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: err}
	}
	img, meta, err := DecodeImage(bytes.NewReader(data))
	if err != nil {
		return nil, ImageMetadata{}, err
	}
	meta.Path = path
	return img, meta, nil
}

// DecodeImage decodes an image from r.
func DecodeImage(r io.Reader) (image.Image, ImageMetadata, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: err}
	}
	if len(data) == 0 {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: ErrEmptyImage}
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "decode", Err: err}
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "decode", Err: ErrEmptyImage}
	}
	return img, ImageMetadata{
		Format:    format,
		SizeBytes: int64(len(data)),
		Width:     b.Dx(),
		Height:    b.Dy(),
	}, nil
}

// SaveJPEG encodes img to path, creating parent directories as needed.
func SaveJPEG(path string, img image.Image, quality int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return &ImageProcessingError{Operation: "save", Err: err}
	}
	f, err := os.Create(path) //nolint:gosec // G304: output path comes from configuration
	if err != nil {
		return &ImageProcessingError{Operation: "save", Err: err}
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		_ = f.Close()
		return &ImageProcessingError{Operation: "encode", Err: err}
	}
	if err := f.Close(); err != nil {
		return &ImageProcessingError{Operation: "save", Err: err}
	}
	return nil
}
