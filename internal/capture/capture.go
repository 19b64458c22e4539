// Package capture drives live scanning: it takes the newest frame from a
// source at a fixed interval, prepares it and hands it to the session.
package capture

import (
	"image"
	"time"

	"github.com/disintegration/imaging"
)

// Frame is one captured image.
type Frame struct {
	Image image.Image
	// Name identifies where the frame came from, e.g. a file name.
	Name string
	At   time.Time
	// Seq increases with every new frame of a source.
	Seq uint64
}

// Source yields the most recent frame. ok is false until a first frame
// arrived.
type Source interface {
	Latest() (f Frame, ok bool)
}

// Options controls frame preparation.
type Options struct {
	Interval   time.Duration `mapstructure:"interval" yaml:"interval" json:"interval"`
	SquareCrop bool          `mapstructure:"square_crop" yaml:"square_crop" json:"square_crop"`
	FlipH      bool          `mapstructure:"flip_horizontal" yaml:"flip_horizontal" json:"flip_horizontal"`
	FlipV      bool          `mapstructure:"flip_vertical" yaml:"flip_vertical" json:"flip_vertical"`
}

// DefaultOptions scans every two seconds on the centred square.
func DefaultOptions() Options {
	return Options{Interval: 2 * time.Second, SquareCrop: true}
}

// CropCenter returns the largest centred square of img.
func CropCenter(img image.Image) image.Image {
	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	if side == b.Dx() && side == b.Dy() {
		return img
	}
	return imaging.CropCenter(img, side, side)
}

// Prepare applies the configured flips and crop to a live frame.
func (o Options) Prepare(img image.Image) image.Image {
	if o.FlipH {
		img = imaging.FlipH(img)
	}
	if o.FlipV {
		img = imaging.FlipV(img)
	}
	if o.SquareCrop {
		img = CropCenter(img)
	}
	return img
}
