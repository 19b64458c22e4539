package recognizer

import (
	"context"
	"errors"
	"image"
	"strings"

	"github.com/Sigitfad/ocr-reader/internal/utils"
	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

// ErrNoBackend is returned by the default build, which links no OCR engine.
var ErrNoBackend = errors.New("recognizer: no OCR backend linked; build with -tags=tesseract")

// Character sets the engine is restricted to per family.
const (
	AllowListJIS = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYLRS()"
	AllowListDIN = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ "
)

// AllowList returns the engine character set for f.
func AllowList(f vocab.Family) string {
	if f == vocab.FamilyDIN {
		return AllowListDIN
	}
	return AllowListJIS
}

// Fragment is one piece of recognized text in image coordinates.
type Fragment struct {
	Text       string     `json:"text"`
	Box        utils.Quad `json:"box"`
	Confidence float64    `json:"confidence"`
}

// Options controls a single recognition call.
type Options struct {
	// AllowList restricts the characters the engine may emit. Empty means
	// unrestricted.
	AllowList string
	// MinGlyphSize drops fragments whose box is shorter than this many
	// pixels.
	MinGlyphSize int
	// WordSeparation is the largest horizontal gap, as a fraction of the
	// text height, across which neighbouring words are joined into one
	// fragment.
	WordSeparation float64
}

// Recognizer reads text from an image. Implementations may return an empty
// slice for an image without text and must be safe for sequential reuse.
type Recognizer interface {
	ReadText(ctx context.Context, img image.Image, opts Options) ([]Fragment, error)
	Close() error
}

// Func adapts a plain function to the Recognizer interface.
type Func func(ctx context.Context, img image.Image, opts Options) ([]Fragment, error)

// ReadText calls f.
func (f Func) ReadText(ctx context.Context, img image.Image, opts Options) ([]Fragment, error) {
	return f(ctx, img, opts)
}

// Close is a no-op.
func (Func) Close() error { return nil }

// Config selects and configures the backend.
type Config struct {
	Backend  string `mapstructure:"backend" yaml:"backend" json:"backend"`
	Language string `mapstructure:"language" yaml:"language" json:"language"`
	// TessdataPath overrides the directory holding *.traineddata files.
	TessdataPath string `mapstructure:"tessdata_path" yaml:"tessdata_path" json:"tessdata_path"`
}

// Backend names accepted by New.
const (
	BackendTesseract = "tesseract"
	BackendNone      = "none"
)

// DefaultConfig returns the tesseract backend with English training data.
func DefaultConfig() Config {
	return Config{Backend: BackendTesseract, Language: "eng"}
}

// New returns the backend named by cfg. "none" always yields a recognizer
// that fails with ErrNoBackend.
func New(cfg Config) (Recognizer, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendNone:
		return noBackend{}, nil
	case "", BackendTesseract:
		return newDefaultBackend(cfg)
	default:
		return nil, errors.New("recognizer: unknown backend " + cfg.Backend)
	}
}

type noBackend struct{}

func (noBackend) ReadText(context.Context, image.Image, Options) ([]Fragment, error) {
	return nil, ErrNoBackend
}

func (noBackend) Close() error { return nil }

// filterAllowed upper-cases s and removes runes outside allow. An empty
// allow keeps s as is.
func filterAllowed(s, allow string) string {
	if allow == "" {
		return s
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(allow, r) {
			return r
		}
		return -1
	}, strings.ToUpper(s))
}
