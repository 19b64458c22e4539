package enhance

import (
	"image"
	"math"
)

// CLAHE defaults, matching the usual OpenCV settings for label text.
const (
	DefaultClipLimit = 2.0
	DefaultTiles     = 8
)

// CLAHE applies contrast-limited adaptive histogram equalization: the image
// is split into tiles x tiles regions, each region's histogram is clipped at
// clipLimit times the mean bin height and equalized, and pixels are mapped
// by bilinear interpolation between the four nearest region mappings.
func CLAHE(img image.Image, clipLimit float64, tiles int) *image.Gray {
	src := Grayscale(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if w == 0 || h == 0 {
		return src
	}
	if tiles < 1 {
		tiles = 1
	}
	tw := int(math.Ceil(float64(w) / float64(tiles)))
	th := int(math.Ceil(float64(h) / float64(tiles)))
	nx := int(math.Ceil(float64(w) / float64(tw)))
	ny := int(math.Ceil(float64(h) / float64(th)))

	luts := make([][256]uint8, nx*ny)
	for ty := 0; ty < ny; ty++ {
		for tx := 0; tx < nx; tx++ {
			r := image.Rect(tx*tw, ty*th, min((tx+1)*tw, w), min((ty+1)*th, h))
			luts[ty*nx+tx] = tileLUT(src, r, clipLimit)
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		gy := (float64(y)+0.5)/float64(th) - 0.5
		y0 := clampInt(int(math.Floor(gy)), 0, ny-1)
		y1 := clampInt(y0+1, 0, ny-1)
		fy := clampFloat(gy-float64(y0), 0, 1)
		for x := 0; x < w; x++ {
			gx := (float64(x)+0.5)/float64(tw) - 0.5
			x0 := clampInt(int(math.Floor(gx)), 0, nx-1)
			x1 := clampInt(x0+1, 0, nx-1)
			fx := clampFloat(gx-float64(x0), 0, 1)

			v := src.Pix[y*src.Stride+x]
			top := (1-fx)*float64(luts[y0*nx+x0][v]) + fx*float64(luts[y0*nx+x1][v])
			bot := (1-fx)*float64(luts[y1*nx+x0][v]) + fx*float64(luts[y1*nx+x1][v])
			dst.Pix[y*dst.Stride+x] = uint8(math.Round((1-fy)*top + fy*bot))
		}
	}
	return dst
}

func tileLUT(src *image.Gray, r image.Rectangle, clipLimit float64) [256]uint8 {
	var hist [256]int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := src.Pix[y*src.Stride:]
		for x := r.Min.X; x < r.Max.X; x++ {
			hist[row[x]]++
		}
	}
	area := r.Dx() * r.Dy()
	var lut [256]uint8
	if area == 0 {
		return lut
	}

	if clipLimit > 0 {
		limit := max(int(clipLimit*float64(area)/256), 1)
		excess := 0
		for i := range hist {
			if hist[i] > limit {
				excess += hist[i] - limit
				hist[i] = limit
			}
		}
		bonus, rest := excess/256, excess%256
		for i := range hist {
			hist[i] += bonus
			if i < rest {
				hist[i]++
			}
		}
	}

	cdf := 0
	for i := range hist {
		cdf += hist[i]
		lut[i] = uint8(math.Round(float64(cdf) * 255 / float64(area)))
	}
	return lut
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
