package imaging

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// Canonical returns img in one of the two layouts the operators work on:
// *image.Gray for single-channel sources, *image.NRGBA otherwise. The result
// always has its origin at (0,0). Images already in canonical form are
// returned as-is.
func Canonical(img image.Image) image.Image {
	switch src := img.(type) {
	case *image.Gray:
		if src.Rect.Min == (image.Point{}) {
			return src
		}
		out := image.NewGray(image.Rect(0, 0, src.Rect.Dx(), src.Rect.Dy()))
		draw.Draw(out, out.Bounds(), src, src.Rect.Min, draw.Src)
		return out
	case *image.Gray16:
		return ToGray(src)
	case *image.NRGBA:
		if src.Rect.Min == (image.Point{}) {
			return src
		}
	}
	return imaging.Clone(img)
}

// IsGray reports whether img is stored as a single channel.
func IsGray(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	return false
}

// raster is a flat view over the pixels of a canonical image.
type raster struct {
	pix    []uint8
	stride int
	w, h   int
	ch     int
}

func rasterOf(img image.Image) raster {
	switch src := img.(type) {
	case *image.Gray:
		return raster{pix: src.Pix, stride: src.Stride, w: src.Rect.Dx(), h: src.Rect.Dy(), ch: 1}
	case *image.NRGBA:
		return raster{pix: src.Pix, stride: src.Stride, w: src.Rect.Dx(), h: src.Rect.Dy(), ch: 4}
	}
	panic("imaging: raster of non-canonical image")
}

// newLike allocates a w×h image with the same layout as src.
func newLike(src image.Image, w, h int) (image.Image, raster) {
	if _, ok := src.(*image.Gray); ok {
		out := image.NewGray(image.Rect(0, 0, w, h))
		return out, rasterOf(out)
	}
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	return out, rasterOf(out)
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
