package geometry

import (
	"errors"
	"math"
	"testing"
)

func closeTo(a, b Point, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func TestEstimateHomography_Identity(t *testing.T) {
	q := Quad{Pt(0, 0), Pt(100, 0), Pt(100, 100), Pt(0, 100)}
	h, err := EstimateHomography(q, q)
	if err != nil {
		t.Fatalf("EstimateHomography failed: %v", err)
	}

	id := Identity()
	for i := range h {
		if math.Abs(h[i]-id[i]) > 1e-9 {
			t.Errorf("h[%d]: got %g, want %g", i, h[i], id[i])
		}
	}
}

func TestEstimateHomography_MapsCorners(t *testing.T) {
	tests := []struct {
		name     string
		src, dst Quad
	}{
		{
			"square to perspective",
			Quad{Pt(0, 0), Pt(300, 0), Pt(300, 300), Pt(0, 300)},
			Quad{Pt(12, 30), Pt(410, 8), Pt(455, 390), Pt(3, 350)},
		},
		{
			"perspective to square",
			Quad{Pt(12, 30), Pt(410, 8), Pt(455, 390), Pt(3, 350)},
			Quad{Pt(0, 0), Pt(300, 0), Pt(300, 300), Pt(0, 300)},
		},
		{
			"large coordinates",
			Quad{Pt(1000, 1200), Pt(7600, 900), Pt(7900, 5800), Pt(800, 6100)},
			Quad{Pt(1000, 1000), Pt(7000, 1000), Pt(7000, 7000), Pt(1000, 7000)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := EstimateHomography(tt.src, tt.dst)
			if err != nil {
				t.Fatalf("EstimateHomography failed: %v", err)
			}
			for i := range tt.src {
				got, ok := h.Project(tt.src[i])
				if !ok {
					t.Fatalf("corner %d projected to infinity", i)
				}
				if !closeTo(got, tt.dst[i], 1e-6) {
					t.Errorf("corner %d: got %v, want %v", i, got, tt.dst[i])
				}
			}
		})
	}
}

func TestHomography_Inverse(t *testing.T) {
	src := Quad{Pt(12, 30), Pt(410, 8), Pt(455, 390), Pt(3, 350)}
	dst := Quad{Pt(0, 0), Pt(300, 0), Pt(300, 300), Pt(0, 300)}

	h, err := EstimateHomography(src, dst)
	if err != nil {
		t.Fatalf("EstimateHomography failed: %v", err)
	}
	inv, err := h.Inverse()
	if err != nil {
		t.Fatalf("Inverse failed: %v", err)
	}

	for _, p := range []Point{Pt(0, 0), Pt(150, 150), Pt(299, 12), Pt(-40, 500)} {
		fwd, ok := inv.Project(p)
		if !ok {
			t.Fatalf("%v projected to infinity", p)
		}
		back, ok := h.Project(fwd)
		if !ok {
			t.Fatalf("%v projected to infinity", fwd)
		}
		if !closeTo(back, p, 1e-6) {
			t.Errorf("round trip of %v: got %v", p, back)
		}
	}
}

func TestEstimateHomography_NearDegenerate(t *testing.T) {
	// Passes ordering but three corners are almost on one line.
	q := Quad{Pt(0, 0), Pt(100, 0), Pt(200, 1e-6), Pt(0, 100)}
	ordered, err := OrderQuad(q)
	if err != nil {
		t.Fatalf("OrderQuad should accept near-degenerate quad: %v", err)
	}

	square := Quad{Pt(0, 0), Pt(100, 0), Pt(100, 100), Pt(0, 100)}
	_, err = EstimateHomography(square, ordered)
	if !errors.Is(err, ErrHomographyEstimation) {
		t.Errorf("EstimateHomography: got %v, want ErrHomographyEstimation", err)
	}
}

func TestEstimateHomography_Collapsed(t *testing.T) {
	square := Quad{Pt(0, 0), Pt(100, 0), Pt(100, 100), Pt(0, 100)}
	point := Quad{Pt(5, 5), Pt(5, 5), Pt(5, 5), Pt(5, 5)}

	_, err := EstimateHomography(square, point)
	if !errors.Is(err, ErrHomographyEstimation) {
		t.Errorf("EstimateHomography: got %v, want ErrHomographyEstimation", err)
	}
}

func TestProject_Infinity(t *testing.T) {
	h := Homography{1, 0, 0, 0, 1, 0, 1, 0, 0}
	if _, ok := h.Project(Pt(0, 5)); ok {
		t.Error("Project should report points mapped to infinity")
	}
}
