// Package enhance produces the preprocessed image variants handed to the
// recognizer. Every variant is a pure function of its input.
package enhance

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// Variant names, in evaluation order.
const (
	NameGrayscale = "grayscale"
	NameSharpen   = "sharpen"
	NameOtsu      = "otsu"
	NameCLAHE     = "clahe"
)

// Variant is one named enhancement.
type Variant struct {
	Name  string
	Apply func(image.Image) image.Image
}

// Default returns grayscale, sharpen, otsu and clahe in that order. The
// order is part of the contract: early exit depends on it.
func Default() []Variant {
	return []Variant{
		{Name: NameGrayscale, Apply: func(img image.Image) image.Image { return Grayscale(img) }},
		{Name: NameSharpen, Apply: func(img image.Image) image.Image { return Sharpen(img) }},
		{Name: NameOtsu, Apply: func(img image.Image) image.Image { return Otsu(img) }},
		{Name: NameCLAHE, Apply: func(img image.Image) image.Image { return CLAHE(img, DefaultClipLimit, DefaultTiles) }},
	}
}

// Select returns the named variants in the order given.
func Select(names []string) ([]Variant, error) {
	if len(names) == 0 {
		return Default(), nil
	}
	byName := make(map[string]Variant)
	for _, v := range Default() {
		byName[v.Name] = v
	}
	out := make([]Variant, 0, len(names))
	for _, n := range names {
		v, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown enhancement variant %q", n)
		}
		out = append(out, v)
	}
	return out, nil
}

// Grayscale converts img to 8-bit luminance.
func Grayscale(img image.Image) *image.Gray {
	return toGray(imaging.Grayscale(img))
}

var sharpenKernel = &convolution.Kernel{
	Matrix: []float64{
		-1, -1, -1,
		-1, 9, -1,
		-1, -1, -1,
	},
	Width:  3,
	Height: 3,
}

// Sharpen emphasises stroke edges with a 3x3 high-boost kernel applied to
// the grayscale image.
func Sharpen(img image.Image) *image.Gray {
	out := convolution.Convolve(Grayscale(img), sharpenKernel, &convolution.Options{Bias: 0, Wrap: false, KeepAlpha: false})
	return toGray(out)
}

// Otsu binarizes img at the threshold that maximises between-class variance.
func Otsu(img image.Image) *image.Gray {
	gray := Grayscale(img)
	return segment.Threshold(gray, OtsuLevel(gray))
}

// OtsuLevel computes the global Otsu threshold of gray.
func OtsuLevel(gray *image.Gray) uint8 {
	var hist [256]int
	b := gray.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[gray.GrayAt(x, y).Y]++
		}
	}
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 128
	}
	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var sumB, best float64
	var wB int
	var level uint8
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = uint8(t)
		}
	}
	// segment.Threshold keeps pixels >= level; Otsu splits at > t.
	if level < 255 {
		level++
	}
	return level
}

// FitWidth shrinks img to maxWidth keeping the aspect ratio. It returns the
// image and the applied scale (1 when unchanged).
func FitWidth(img image.Image, maxWidth int) (image.Image, float64) {
	w := img.Bounds().Dx()
	if maxWidth <= 0 || w <= maxWidth {
		return img, 1
	}
	scale := float64(maxWidth) / float64(w)
	return imaging.Resize(img, maxWidth, 0, imaging.Linear), scale
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}
