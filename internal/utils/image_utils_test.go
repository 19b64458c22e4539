package utils

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSupportedImage(t *testing.T) {
	cases := []struct {
		path string
		ok   bool
	}{
		{"a.jpg", true},
		{"b.JPEG", true},
		{"c.png", true},
		{"d.bmp", true},
		{"e.tiff", false},
		{"f.gif", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, IsSupportedImage(c.path), c.path)
	}
}

func writeTempPNG(t *testing.T, dir string, w, h int, col color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, col)
		}
	}
	path := filepath.Join(dir, "test.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, f.Close())
	}()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestLoadImageAndMetadata(t *testing.T) {
	dir := t.TempDir()
	p := writeTempPNG(t, dir, 10, 20, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	img, meta, err := LoadImage(p)
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
	assert.Equal(t, "png", meta.Format)
	assert.Equal(t, p, meta.Path)
	assert.Positive(t, meta.SizeBytes)
}

func TestLoadImageErrors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.jpg")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, _, err := LoadImage(empty)
	var ipe *ImageProcessingError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, "load", ipe.Operation)
	assert.ErrorIs(t, err, ErrEmptyImage)

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o600))
	_, _, err = LoadImage(garbage)
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, "decode", ipe.Operation)

	_, _, err = LoadImage(filepath.Join(dir, "missing.png"))
	require.ErrorAs(t, err, &ipe)

	_, _, err = LoadImage(filepath.Join(dir, "label.gif"))
	require.ErrorAs(t, err, &ipe)
	assert.Contains(t, err.Error(), "unsupported format")

	_, _, err = LoadImage("")
	assert.Error(t, err)
}

func TestImageProcessingErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &ImageProcessingError{Operation: "save", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "image processing error in save: boom", err.Error())
}

func TestSaveJPEGRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.jpg")
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	require.NoError(t, SaveJPEG(path, img, 90))

	got, meta, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", meta.Format)
	assert.Equal(t, image.Rect(0, 0, 16, 8), got.Bounds())
}

func TestBoxGeometry(t *testing.T) {
	b := NewBox(10, 20, 0, 5)
	assert.Equal(t, Box{MinX: 0, MinY: 5, MaxX: 10, MaxY: 20}, b)
	assert.InDelta(t, 10.0, b.Width(), 1e-9)
	assert.InDelta(t, 15.0, b.Height(), 1e-9)
	assert.InDelta(t, 12.5, b.CenterY(), 1e-9)

	u := b.Union(NewBox(5, 0, 30, 10))
	assert.Equal(t, Box{MinX: 0, MinY: 0, MaxX: 30, MaxY: 20}, u)

	q := b.Quad()
	assert.Equal(t, b, q.Bounds())
	assert.Equal(t, Box{MinX: 0, MinY: 10, MaxX: 20, MaxY: 40}, q.Scale(2).Bounds())

	r := NewBox(-5, -5, 500, 3.2).ToRect(image.Rect(0, 0, 100, 100))
	assert.Equal(t, image.Rect(0, 0, 100, 4), r)

	assert.Equal(t, Box{}, BoundingBox(nil))
}

func TestDrawPolygonAndLabel(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 120, 60))
	red := color.RGBA{R: 255, A: 255}
	DrawPolygon(dst, []Point{{10, 10}, {50, 10}, {50, 40}, {10, 40}}, red, 2)
	assert.Equal(t, red, dst.RGBAAt(10, 10))
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(30, 25))

	DrawPolygon(dst, []Point{{60, 10}, {100, 10}, {100, 40}}, red, 1)
	assert.Equal(t, red, dst.RGBAAt(80, 10))

	bg := color.RGBA{G: 200, A: 255}
	DrawLabel(dst, 0, 0, "LN4 776A", color.White, bg)
	// pushed below the top edge; the background must be visible near the top-left
	assert.Equal(t, bg, dst.RGBAAt(1, 1))
}

func TestToRGBA(t *testing.T) {
	src := image.NewGray(image.Rect(5, 5, 15, 10))
	got := ToRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 10, 5), got.Bounds())
}
