//go:build tesseract

package recognizer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/Sigitfad/ocr-reader/internal/utils"
)

// Linked reports whether an OCR engine is compiled in.
const Linked = true

func newDefaultBackend(cfg Config) (Recognizer, error) { return NewTesseract(cfg) }

// Tesseract wraps a single gosseract client. The client is not safe for
// concurrent use, so calls are serialized.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract creates a client with the configured language.
func NewTesseract(cfg Config) (*Tesseract, error) {
	client := gosseract.NewClient()
	if cfg.TessdataPath != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataPath); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("tesseract tessdata %q: %w", cfg.TessdataPath, err)
		}
	}
	lang := cfg.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("tesseract language %q: %w", lang, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("tesseract page segmentation: %w", err)
	}
	return &Tesseract{client: client}, nil
}

// ReadText runs word-level recognition and merges words per opts.
func (t *Tesseract) ReadText(ctx context.Context, img image.Image, opts Options) ([]Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.client.SetWhitelist(opts.AllowList); err != nil {
		return nil, fmt.Errorf("tesseract whitelist: %w", err)
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("tesseract image: %w", err)
	}
	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("tesseract recognize: %w", err)
	}

	origin := img.Bounds().Min
	words := make([]Fragment, 0, len(boxes))
	for _, b := range boxes {
		r := b.Box.Add(origin)
		words = append(words, Fragment{
			Text: b.Word,
			Box: utils.NewBox(float64(r.Min.X), float64(r.Min.Y),
				float64(r.Max.X), float64(r.Max.Y)).Quad(),
			Confidence: b.Confidence / 100,
		})
	}
	return MergeWords(words, opts), nil
}

// Close releases the tesseract handle.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
