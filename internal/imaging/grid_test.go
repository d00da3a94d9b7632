package imaging

import (
	"bytes"
	"image/color"
	"testing"
)

func TestDrawGrid_Lines(t *testing.T) {
	img := solidNRGBA(100, 100, color.NRGBA{0, 0, 0, 255})

	got := DrawGrid(img, GridOptions{Spacing: 25})

	if c := got.NRGBAAt(25, 50); c != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("grid line at (25,50): got %v, want red", c)
	}
	if c := got.NRGBAAt(50, 75); c != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("grid line at (50,75): got %v, want red", c)
	}
	if c := got.NRGBAAt(15, 15); c != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("off-grid pixel (15,15): got %v, want black", c)
	}
}

func TestDrawGrid_CustomColor(t *testing.T) {
	img := solidNRGBA(40, 40, color.NRGBA{0, 0, 0, 255})
	green := color.NRGBA{0, 255, 0, 255}

	got := DrawGrid(img, GridOptions{Spacing: 10, Color: green})
	if c := got.NRGBAAt(10, 3); c != green {
		t.Errorf("grid line: got %v, want %v", c, green)
	}
}

func TestDrawGrid_NoSpacing(t *testing.T) {
	img := gradientNRGBA(20, 20)
	assertSamePixels(t, DrawGrid(img, GridOptions{}), img)
}

func TestDrawGrid_LabelsLeaveInputAlone(t *testing.T) {
	img := gradientNRGBA(120, 120)
	before := bytes.Clone(img.Pix)

	got := DrawGrid(img, GridOptions{Spacing: 50, Labels: true})

	// Label text starts two pixels right of and below the intersection.
	if c := got.NRGBAAt(51, 51); c != (color.NRGBA{0, 0, 0, 180}) {
		t.Errorf("label background at (51,51): got %v", c)
	}
	if !bytes.Equal(before, img.Pix) {
		t.Error("input pixels were modified")
	}
}

func TestDrawLabel_BoundsCheck(t *testing.T) {
	img := solidNRGBA(10, 10, color.NRGBA{0, 0, 0, 255})
	// Must not panic when the label runs off the image.
	drawLabel(img, 8, 8, "1234,5678", color.NRGBA{255, 255, 255, 255}, color.NRGBA{0, 0, 0, 255})
	drawLabel(img, -5, -5, "99", color.NRGBA{255, 255, 255, 255}, color.NRGBA{0, 0, 0, 255})
}
