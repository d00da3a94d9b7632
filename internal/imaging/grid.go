package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"
)

// GridOptions configures DrawGrid.
type GridOptions struct {
	// Spacing is the distance in pixels between grid lines.
	Spacing int

	// Labels draws "x,y" at every line intersection.
	Labels bool

	// Color of the grid lines. Defaults to opaque red.
	Color color.Color
}

// DrawGrid returns a copy of img with a coordinate grid drawn over it, so a
// caller reading the picture can name pixel positions for corner points.
// The input is not modified. A non-positive spacing returns a plain copy.
func DrawGrid(img image.Image, opts GridOptions) *image.NRGBA {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)

	if opts.Spacing <= 0 {
		return out
	}

	lineColor := opts.Color
	if lineColor == nil {
		lineColor = color.NRGBA{R: 255, A: 255}
	}

	// Vertical lines
	for x := opts.Spacing; x < width; x += opts.Spacing {
		for y := 0; y < height; y++ {
			out.Set(x, y, lineColor)
		}
	}

	// Horizontal lines
	for y := opts.Spacing; y < height; y += opts.Spacing {
		for x := 0; x < width; x++ {
			out.Set(x, y, lineColor)
		}
	}

	if opts.Labels {
		fg := color.NRGBA{255, 255, 255, 255}
		bg := color.NRGBA{0, 0, 0, 180}
		for y := opts.Spacing; y < height; y += opts.Spacing {
			for x := opts.Spacing; x < width; x += opts.Spacing {
				drawLabel(out, x+2, y+2, strconv.Itoa(x)+","+strconv.Itoa(y), fg, bg)
			}
		}
	}
	return out
}

// 3x5 glyphs for digits and comma.
var glyphs = map[rune][5]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	',': {"000", "000", "000", "010", "010"},
}

// drawLabel renders text with its top-left corner at (x,y) on a filled
// background box. Pixels outside img are skipped.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	const charWidth = 4
	const labelHeight = 7
	bounds := img.Bounds()
	inside := func(px, py int) bool { return image.Pt(px, py).In(bounds) }

	labelWidth := len(text) * charWidth
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			if inside(x+dx, y+dy) {
				img.SetNRGBA(x+dx, y+dy, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if ok {
			for row, line := range glyph {
				for col, pixel := range line {
					if pixel == '1' && inside(cx+col, y+row) {
						img.SetNRGBA(cx+col, y+row, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
