package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrDecode is returned when bytes cannot be decoded as a supported raster
// format.
var ErrDecode = errors.New("cannot decode image")

// Decoded is an image together with the format it was decoded from.
type Decoded struct {
	Image  image.Image
	Format string
}

// Decode reads a PNG, JPEG, GIF, BMP, TIFF or WebP image from r.
//
// EXIF orientation is applied, so photos taken in portrait come back
// upright. The result is in canonical layout: *image.Gray for grayscale
// sources, *image.NRGBA otherwise.
//
// # Errors
//
//   - ErrDecode if the data is empty, truncated, or in an unknown format
//   - the underlying read error if r fails
func Decode(r io.Reader) (*Decoded, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if b := img.Bounds(); b.Dx() < 1 || b.Dy() < 1 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrDecode)
	}

	return &Decoded{Image: Canonical(img), Format: format}, nil
}

// DecodeFile opens path and decodes it with Decode.
func DecodeFile(path string) (*Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Info describes an image held in memory.
type Info struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Channels is "gray" for single-channel images and "rgba" otherwise.
	Channels string `json:"channels"`
}

// Describe returns the dimensions and channel layout of img.
func Describe(img image.Image) Info {
	b := img.Bounds()
	channels := "rgba"
	if IsGray(img) {
		channels = "gray"
	}
	return Info{Width: b.Dx(), Height: b.Dy(), Channels: channels}
}
