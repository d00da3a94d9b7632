// Package geometry provides the planar math behind perspective correction:
// quad ordering, square-side estimation and projective transforms.
//
// Coordinates follow the image convention used throughout the module:
// (0,0) is the top-left corner, X grows rightward and Y grows downward.
// Pixel centres sit on integer coordinates.
package geometry

import "math"

// Point is a 2D point with floating-point coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p multiplied by f.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// cross returns the z component of the 2D cross product a×b.
func cross(a, b Point) float64 {
	return a.X*b.Y - a.Y*b.X
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
