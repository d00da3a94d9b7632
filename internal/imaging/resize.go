package imaging

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// LongEdge returns the larger of img's width and height.
func LongEdge(img image.Image) int {
	b := img.Bounds()
	if b.Dx() > b.Dy() {
		return b.Dx()
	}
	return b.Dy()
}

// FitLongEdge downsamples img with a Lanczos filter so that its long edge is
// at most maxEdge pixels.
//
// Returns the (possibly unchanged) image and the scale factor applied. When
// the image already fits, img itself is returned with scale 1. Output
// dimensions are round(side*scale), never less than 1. A single-channel
// input stays single-channel.
func FitLongEdge(img image.Image, maxEdge int) (image.Image, float64) {
	long := LongEdge(img)
	if maxEdge <= 0 || long <= maxEdge {
		return img, 1
	}

	scale := float64(maxEdge) / float64(long)
	b := img.Bounds()
	w := scaledSide(b.Dx(), scale)
	h := scaledSide(b.Dy(), scale)

	resized := imaging.Resize(img, w, h, imaging.Lanczos)
	if IsGray(img) {
		return ToGray(resized), scale
	}
	return resized, scale
}

func scaledSide(n int, scale float64) int {
	s := int(math.Round(float64(n) * scale))
	if s < 1 {
		return 1
	}
	return s
}
