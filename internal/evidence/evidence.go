// Package evidence renders and stores the annotated image kept for every
// accepted detection.
package evidence

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/Sigitfad/ocr-reader/internal/utils"
)

// Options configures the writer.
type Options struct {
	Dir string `mapstructure:"image_dir" yaml:"image_dir" json:"image_dir"`
	// Color is the hex colour of the box and label background.
	Color   string `mapstructure:"overlay_color" yaml:"overlay_color" json:"overlay_color"`
	Quality int    `mapstructure:"jpeg_quality" yaml:"jpeg_quality" json:"jpeg_quality"`
}

// DefaultOptions writes into ./images with a green overlay.
func DefaultOptions() Options {
	return Options{Dir: "images", Color: "#00ff00", Quality: 90}
}

// Writer renders evidence images into a directory.
type Writer struct {
	dir     string
	overlay color.Color
	text    color.Color
	quality int
}

// ParseColor parses a #rrggbb colour.
func ParseColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("evidence: colour %q: %w", hex, err)
	}
	return c.Clamped(), nil
}

// NewWriter validates opts and returns a Writer.
func NewWriter(opts Options) (*Writer, error) {
	if opts.Dir == "" {
		return nil, errors.New("evidence: image directory is empty")
	}
	overlay, err := ParseColor(opts.Color)
	if err != nil {
		return nil, err
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 90
	}
	return &Writer{dir: opts.Dir, overlay: overlay, text: contrastText(overlay), quality: opts.Quality}, nil
}

// contrastText picks black or white label text for the background.
func contrastText(bg color.Color) color.Color {
	c, _ := colorful.MakeColor(bg)
	l, _, _ := c.Lab()
	if l > 0.6 {
		return color.Black
	}
	return color.White
}

// EdgeMap returns a white-on-black edge rendering of img. Transparent
// pixels are flattened onto black first.
func EdgeMap(img image.Image) *image.RGBA {
	b := img.Bounds()
	opaque := imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.Black), img, image.Point{}, 1)
	smoothed := blur.Gaussian(opaque, 1)
	edges := effect.EdgeDetection(smoothed, 1)
	binary := segment.Threshold(edges, 48)
	return utils.ToRGBA(effect.Dilate(binary, 1))
}

// Render draws box and label onto the edge map of frame. A zero box
// draws only the edge map.
func (w *Writer) Render(frame image.Image, box utils.Quad, label string) *image.RGBA {
	out := EdgeMap(frame)
	if box == (utils.Quad{}) {
		return out
	}
	origin := frame.Bounds().Min
	pts := make([]utils.Point, len(box))
	for i, p := range box {
		pts[i] = utils.Point{X: p.X - float64(origin.X), Y: p.Y - float64(origin.Y)}
	}
	utils.DrawPolygon(out, pts, w.overlay, 3)
	if label != "" {
		b := utils.BoundingBox(pts)
		utils.DrawLabel(out, int(b.MinX), int(b.MinY), label, w.text, w.overlay)
	}
	return out
}

// FileName returns the evidence file name for a detection at t.
func FileName(t time.Time) string {
	return "karton_" + t.Format("20060102_150405") + ".jpg"
}

// Write renders and saves the evidence image and returns its path. When a
// file for the same second already exists a numeric suffix is added.
func (w *Writer) Write(frame image.Image, box utils.Quad, label string, at time.Time) (string, error) {
	path := w.freePath(at)
	if err := utils.SaveJPEG(path, w.Render(frame, box, label), w.quality); err != nil {
		return "", err
	}
	return path, nil
}

func (w *Writer) freePath(at time.Time) string {
	path := filepath.Join(w.dir, FileName(at))
	base := path[:len(path)-len(".jpg")]
	for i := 2; ; i++ {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path
		}
		path = fmt.Sprintf("%s_%d.jpg", base, i)
	}
}
