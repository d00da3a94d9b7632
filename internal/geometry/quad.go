package geometry

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDegenerateQuad is returned when four points cannot be interpreted as a
// quadrilateral: coincident or collinear corners, or no enclosed area.
var ErrDegenerateQuad = errors.New("degenerate quad")

// degenerateTolerance is relative to the squared extent of the quad.
const degenerateTolerance = 1e-12

// Quad is four corner points. Input quads are unordered; OrderQuad returns
// them as top-left, top-right, bottom-right, bottom-left.
type Quad [4]Point

// Corner indexes into an ordered Quad.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// Centroid returns the mean of the four corners.
//
// The corners are summed in lexicographic order so that the result does
// not depend on the order the points were supplied in.
func (q Quad) Centroid() Point {
	pts := q
	sort.Slice(pts[:], func(i, j int) bool { return lexLess(pts[i], pts[j]) })
	var c Point
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.Scale(0.25)
}

// Area returns the signed shoelace area of the quad taken in its current
// order. For an ordered quad in image coordinates the area is positive.
func (q Quad) Area() float64 {
	var a float64
	for i := range q {
		j := (i + 1) % 4
		a += q[i].X*q[j].Y - q[j].X*q[i].Y
	}
	return a / 2
}

// Scale returns the quad with every corner multiplied by f.
func (q Quad) Scale(f float64) Quad {
	var out Quad
	for i, p := range q {
		out[i] = p.Scale(f)
	}
	return out
}

// OrderQuad returns the corners of q as TL, TR, BR, BL.
//
// Points are sorted by polar angle around the centroid, the cycle is
// rotated so the point with the smallest x+y leads, and the winding is
// forced clockwise (in image coordinates) by swapping the second and fourth
// points when the first two edges turn the wrong way. The result is the same
// for every permutation of the same four points.
//
// Returns an error wrapping ErrDegenerateQuad when points are non-finite,
// coincident or collinear, or when the ordered quad encloses no area.
func OrderQuad(q Quad) (Quad, error) {
	if err := checkDegenerate(q); err != nil {
		return Quad{}, err
	}

	c := q.Centroid()
	type polar struct {
		p     Point
		angle float64
		dist  float64
	}
	var ps [4]polar
	for i, p := range q {
		d := p.Sub(c)
		ps[i] = polar{p: p, angle: math.Atan2(d.Y, d.X), dist: math.Hypot(d.X, d.Y)}
	}
	sort.Slice(ps[:], func(i, j int) bool {
		a, b := ps[i], ps[j]
		if a.angle != b.angle {
			return a.angle < b.angle
		}
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		return lexLess(a.p, b.p)
	})

	first := 0
	for i := 1; i < 4; i++ {
		if ps[i].p.X+ps[i].p.Y < ps[first].p.X+ps[first].p.Y {
			first = i
		}
	}

	var out Quad
	for i := range out {
		out[i] = ps[(first+i)%4].p
	}

	if cross(out[1].Sub(out[0]), out[3].Sub(out[0])) < 0 {
		out[1], out[3] = out[3], out[1]
	}

	ext := extent(out)
	if out.Area() <= degenerateTolerance*ext*ext {
		return Quad{}, fmt.Errorf("%w: ordered corners enclose no area", ErrDegenerateQuad)
	}
	return out, nil
}

// SquareSide returns the side length of the square an ordered quad should
// map to: the mean of the averaged top/bottom edges and the averaged
// left/right edges.
func SquareSide(q Quad) float64 {
	top := q[TopLeft].Dist(q[TopRight])
	bottom := q[BottomLeft].Dist(q[BottomRight])
	left := q[TopLeft].Dist(q[BottomLeft])
	right := q[TopRight].Dist(q[BottomRight])
	horiz := 0.5 * (top + bottom)
	vert := 0.5 * (left + right)
	return 0.5 * (horiz + vert)
}

func checkDegenerate(q Quad) error {
	for i, p := range q {
		if !isFinite(p.X) || !isFinite(p.Y) {
			return fmt.Errorf("%w: corner %d is not finite", ErrDegenerateQuad, i)
		}
	}

	ext := extent(q)
	if ext == 0 {
		return fmt.Errorf("%w: all corners coincide", ErrDegenerateQuad)
	}

	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if q[i].Dist(q[j]) <= degenerateTolerance*ext {
				return fmt.Errorf("%w: corners %d and %d coincide", ErrDegenerateQuad, i, j)
			}
		}
	}

	// Any three collinear corners leave at most a triangle.
	for i := 0; i < 4; i++ {
		a, b, c := q[i], q[(i+1)%4], q[(i+2)%4]
		if math.Abs(cross(b.Sub(a), c.Sub(a))) <= degenerateTolerance*ext*ext {
			return fmt.Errorf("%w: corners are collinear", ErrDegenerateQuad)
		}
	}
	return nil
}

// extent returns the largest distance between any two corners.
func extent(q Quad) float64 {
	var m float64
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if d := q[i].Dist(q[j]); d > m {
				m = d
			}
		}
	}
	return m
}

func lexLess(a, b Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}
