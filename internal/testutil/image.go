package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LabelImage renders text in black on a white canvas, centred.
func LabelImage(text string, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: img, Src: &image.Uniform{C: color.Black}, Face: face}
	w := font.MeasureString(face, text).Ceil()
	h := face.Metrics().Height.Ceil()
	drawer.Dot = fixed.P((width-w)/2, (height+h)/2)
	drawer.DrawString(text)
	return img
}

// WritePNG encodes img into dir/name and returns the path.
func WritePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path) //nolint:gosec // G304: test-controlled path
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()
	require.NoError(t, png.Encode(f, img))
	return path
}

// WriteEmptyFile creates a zero-byte file at dir/name and returns the path.
func WriteEmptyFile(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	return path
}
