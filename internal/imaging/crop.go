package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// ErrInvalidCrop is returned when a crop rectangle, after clamping to the
// image, is narrower or shorter than two pixels.
var ErrInvalidCrop = errors.New("invalid crop")

// Rect is an integer rectangle in pixel coordinates. Right and Bottom are
// exclusive.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Width returns Right - Left.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns Bottom - Top.
func (r Rect) Height() int { return r.Bottom - r.Top }

// ClampTo restricts r to a w×h image: Left and Top land in [0, size-1],
// Right and Bottom in [1, size].
func (r Rect) ClampTo(w, h int) Rect {
	return Rect{
		Left:   clampInt(r.Left, 0, w-1),
		Top:    clampInt(r.Top, 0, h-1),
		Right:  clampInt(r.Right, 1, w),
		Bottom: clampInt(r.Bottom, 1, h),
	}
}

// CropAxisAligned extracts the pixels inside r.
//
// The rectangle is clamped to the image first. Crops that leave fewer than
// two pixels in either direction are rejected rather than producing a sliver.
// The output keeps img's channel layout.
//
// # Errors
//
//   - ErrInvalidCrop if the clamped rectangle is narrower or shorter than 2 px
func CropAxisAligned(img image.Image, r Rect) (image.Image, error) {
	src := Canonical(img)
	b := src.Bounds()

	c := r.ClampTo(b.Dx(), b.Dy())
	if c.Right <= c.Left+1 || c.Bottom <= c.Top+1 {
		return nil, fmt.Errorf("%w: rectangle (%d,%d)-(%d,%d) clamps to %dx%d on a %dx%d image",
			ErrInvalidCrop, r.Left, r.Top, r.Right, r.Bottom, c.Width(), c.Height(), b.Dx(), b.Dy())
	}

	rect := image.Rect(c.Left, c.Top, c.Right, c.Bottom)
	if g, ok := src.(*image.Gray); ok {
		out := image.NewGray(image.Rect(0, 0, rect.Dx(), rect.Dy()))
		draw.Draw(out, out.Bounds(), g, rect.Min, draw.Src)
		return out, nil
	}
	return imaging.Crop(src, rect), nil
}
