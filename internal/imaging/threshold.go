package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/histogram"
	"github.com/disintegration/imaging"
)

// ErrInvalidThreshold is returned for a global threshold outside 0..255.
var ErrInvalidThreshold = errors.New("threshold out of range")

// ToGray converts img to single-channel intensity using BT.601 weights.
// A *image.Gray with origin (0,0) is returned unchanged.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}

	src := imaging.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		in := src.Pix[y*src.Stride : y*src.Stride+w*4]
		row := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := range row {
			r := uint32(in[x*4])
			g := uint32(in[x*4+1])
			b := uint32(in[x*4+2])
			row[x] = uint8((19595*r + 38470*g + 7471*b + 1<<15) >> 16)
		}
	}
	return out
}

// ThresholdGlobal binarizes img against a fixed level: pixels with
// intensity >= value become 255, the rest 0.
//
// # Errors
//
//   - ErrInvalidThreshold if value is outside 0..255
func ThresholdGlobal(img image.Image, value int) (*image.Gray, error) {
	if value < 0 || value > 255 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreshold, value)
	}
	return binarize(ToGray(img), uint8(value)), nil
}

// ThresholdOtsu binarizes img at the level chosen by Otsu's method and
// returns that level.
func ThresholdOtsu(img image.Image) (*image.Gray, uint8) {
	gray := ToGray(img)
	level := OtsuLevel(gray)
	return binarize(gray, level), level
}

// IntensityHistogram counts pixels per intensity level.
func IntensityHistogram(img image.Image) [256]int {
	var bins [256]int
	h := histogram.NewRGBAHistogram(ToGray(img))
	copy(bins[:], h.R.Bins)
	return bins
}

// OtsuLevel returns the intensity level that maximizes between-class
// variance over img's histogram. The level is the first intensity of the
// brighter class, so binarizing with ">= level" reproduces the split. A
// single-valued image yields that value. Implementations that return the
// last bin of the darker class are one lower than this level.
func OtsuLevel(img image.Image) uint8 {
	bins := IntensityHistogram(img)

	var total, sum float64
	for i, n := range bins {
		total += float64(n)
		sum += float64(i) * float64(n)
	}
	if total == 0 {
		return 0
	}

	var (
		sumB, wB  float64
		maxVar    float64
		best      int
		populated = -1
	)
	for t := 0; t < 256; t++ {
		if bins[t] == 0 {
			continue
		}
		if populated < 0 {
			populated = t
		}
		wB += float64(bins[t])
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(bins[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > maxVar {
			maxVar = between
			best = t
		}
	}

	if maxVar == 0 {
		return uint8(populated)
	}
	return uint8(best + 1)
}

func binarize(gray *image.Gray, level uint8) *image.Gray {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		in := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		row := out.Pix[y*out.Stride : y*out.Stride+w]
		for x, v := range in {
			if v >= level {
				row[x] = 255
			}
		}
	}
	return out
}
