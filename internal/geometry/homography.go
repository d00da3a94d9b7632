package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrHomographyEstimation is returned when no numerically stable projective
// transform maps one quad onto another.
var ErrHomographyEstimation = errors.New("homography estimation failed")

// maxCondition bounds the 2-norm condition numbers of the normalized 8x8
// system and of the normalized transform. Quads that pass OrderQuad but
// are nearly collinear land above it.
const maxCondition = 1e7

// Homography is a 3x3 projective transform in row-major order.
//
//	[ h0 h1 h2 ]   [x]
//	[ h3 h4 h5 ] * [y]
//	[ h6 h7 h8 ]   [1]
type Homography [9]float64

// Identity returns the identity transform.
func Identity() Homography {
	return Homography{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// EstimateHomography returns H such that H maps src[i] onto dst[i] for all
// four corners.
//
// Both point sets are first normalized (centroid at the origin, mean
// distance √2) so the condition check below is independent of pixel scale.
// The eight unknowns of the normalized transform (h8 fixed at 1) are then
// solved from the 8x8 linear system built from the four correspondences.
func EstimateHomography(src, dst Quad) (Homography, error) {
	ts, err := normalizer(src)
	if err != nil {
		return Homography{}, err
	}
	td, err := normalizer(dst)
	if err != nil {
		return Homography{}, err
	}

	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		s := ts.apply(src[i])
		d := td.apply(dst[i])
		r := 2 * i

		// x' = (h0 X + h1 Y + h2) / (h6 X + h7 Y + 1)
		a.Set(r, 0, s.X)
		a.Set(r, 1, s.Y)
		a.Set(r, 2, 1)
		a.Set(r, 6, -s.X*d.X)
		a.Set(r, 7, -s.Y*d.X)
		b.SetVec(r, d.X)

		// y' = (h3 X + h4 Y + h5) / (h6 X + h7 Y + 1)
		a.Set(r+1, 3, s.X)
		a.Set(r+1, 4, s.Y)
		a.Set(r+1, 5, 1)
		a.Set(r+1, 6, -s.X*d.Y)
		a.Set(r+1, 7, -s.Y*d.Y)
		b.SetVec(r+1, d.Y)
	}

	if c := mat.Cond(a, 2); math.IsNaN(c) || c > maxCondition {
		return Homography{}, fmt.Errorf("%w: system condition number %.3g", ErrHomographyEstimation, c)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return Homography{}, fmt.Errorf("%w: %v", ErrHomographyEstimation, err)
	}

	hn := mat.NewDense(3, 3, []float64{
		h.AtVec(0), h.AtVec(1), h.AtVec(2),
		h.AtVec(3), h.AtVec(4), h.AtVec(5),
		h.AtVec(6), h.AtVec(7), 1,
	})

	// A solvable system can still yield a transform that collapses the
	// plane when one of the quads is nearly a triangle.
	if c := mat.Cond(hn, 2); math.IsNaN(c) || c > maxCondition {
		return Homography{}, fmt.Errorf("%w: transform condition number %.3g", ErrHomographyEstimation, c)
	}

	// H = Td⁻¹ · Hn · Ts
	var tmp, full mat.Dense
	tmp.Mul(hn, ts.dense())
	full.Mul(td.inverseDense(), &tmp)

	var out Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = full.At(r, c)
		}
	}
	return out.normalized()
}

// Project maps p through the transform. The second result is false when p
// maps to infinity.
func (h Homography) Project(p Point) (Point, bool) {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if math.Abs(w) < 1e-12 {
		return Point{}, false
	}
	return Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}, true
}

// Inverse returns the transform mapping destination points back to source
// points.
func (h Homography) Inverse() (Homography, error) {
	m := mat.NewDense(3, 3, h[:])
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return Homography{}, fmt.Errorf("%w: inverting transform: %v", ErrHomographyEstimation, err)
	}
	var out Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = inv.At(r, c)
		}
	}
	return out.normalized()
}

// normalized scales h so h8 == 1 and rejects non-finite results.
func (h Homography) normalized() (Homography, error) {
	if math.Abs(h[8]) > 1e-12 {
		s := h[8]
		for i := range h {
			h[i] /= s
		}
	}
	for _, v := range h {
		if !isFinite(v) {
			return Homography{}, fmt.Errorf("%w: non-finite coefficient", ErrHomographyEstimation)
		}
	}
	return h, nil
}

// similarity is the isotropic scale-and-translate used to condition point
// sets before estimation: p' = s·(p - c).
type similarity struct {
	c Point
	s float64
}

func normalizer(q Quad) (similarity, error) {
	var c Point
	for _, p := range q {
		c = c.Add(p)
	}
	c = c.Scale(0.25)

	var mean float64
	for _, p := range q {
		mean += p.Dist(c)
	}
	mean /= 4
	if mean == 0 || !isFinite(mean) {
		return similarity{}, fmt.Errorf("%w: points have no spread", ErrHomographyEstimation)
	}
	return similarity{c: c, s: math.Sqrt2 / mean}, nil
}

func (t similarity) apply(p Point) Point {
	return p.Sub(t.c).Scale(t.s)
}

func (t similarity) dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		t.s, 0, -t.s * t.c.X,
		0, t.s, -t.s * t.c.Y,
		0, 0, 1,
	})
}

func (t similarity) inverseDense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1 / t.s, 0, t.c.X,
		0, 1 / t.s, t.c.Y,
		0, 0, 1,
	})
}
