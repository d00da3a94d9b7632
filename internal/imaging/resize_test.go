package imaging

import (
	"image"
	"math"
	"testing"
)

func TestFitLongEdge(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		maxEdge      int
		wantW, wantH int
		wantUnscaled bool
	}{
		{"under cap", 200, 300, 1600, 200, 300, true},
		{"exactly at cap", 1600, 900, 1600, 1600, 900, true},
		{"wide over cap", 3200, 1000, 1600, 1600, 500, false},
		{"tall over cap", 500, 2000, 1000, 250, 1000, false},
		{"thin strip keeps one pixel", 3000, 1, 1500, 1500, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewNRGBA(image.Rect(0, 0, tt.w, tt.h))
			got, scale := FitLongEdge(img, tt.maxEdge)

			b := got.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("size: got %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
			if tt.wantUnscaled {
				if scale != 1 {
					t.Errorf("scale: got %v, want 1", scale)
				}
				if got != image.Image(img) {
					t.Error("an image under the cap should be returned as-is")
				}
				return
			}
			long := math.Max(float64(tt.w), float64(tt.h))
			if want := float64(tt.maxEdge) / long; math.Abs(scale-want) > 1e-12 {
				t.Errorf("scale: got %v, want %v", scale, want)
			}
		})
	}
}

func TestFitLongEdge_GrayStaysGray(t *testing.T) {
	got, _ := FitLongEdge(gradientGray(400, 100), 200)
	if _, ok := got.(*image.Gray); !ok {
		t.Fatalf("got %T, want *image.Gray", got)
	}
	if b := got.Bounds(); b.Dx() != 200 || b.Dy() != 50 {
		t.Errorf("size: got %dx%d, want 200x50", b.Dx(), b.Dy())
	}
}

func TestLongEdge(t *testing.T) {
	if got := LongEdge(image.NewGray(image.Rect(0, 0, 7, 9))); got != 9 {
		t.Errorf("got %d, want 9", got)
	}
}
