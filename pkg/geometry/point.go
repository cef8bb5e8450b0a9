// Package geometry provides the 3D primitives used by the regridding
// step: points, lines, triangles and XY polygons. Intersection routines
// operate on vertical rays dropped through triangulated cell tops.
package geometry

import "math"

// Point is a position in 3D space. Z is depth (or a parameter value when
// a triangle carries an elastic surface instead of a physical one).
type Point struct {
	X, Y, Z float64
}

// Add returns the component-wise sum p + q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y, p.Z + q.Z}
}

// Sub returns the component-wise difference p - q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// Scale returns s*p.
func (p Point) Scale(s float64) Point {
	return Point{s * p.X, s * p.Y, s * p.Z}
}

// Mid returns the midpoint of p and q.
func Mid(p, q Point) Point {
	return p.Add(q).Scale(0.5)
}

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y + p.Z*q.Z
}

// Cross returns the cross product p × q.
func (p Point) Cross(q Point) Point {
	return Point{
		p.Y*q.Z - p.Z*q.Y,
		p.Z*q.X - p.X*q.Z,
		p.X*q.Y - p.Y*q.X,
	}
}

// Norm returns the Euclidean length of p.
func (p Point) Norm() float64 {
	return math.Sqrt(p.Dot(p))
}

// Angle returns the angle between p and q in radians, in [0, pi].
func (p Point) Angle(q Point) float64 {
	np := p.Norm()
	nq := q.Norm()
	if np == 0 || nq == 0 {
		return 0
	}
	c := p.Dot(q) / (np * nq)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}

// RotateXY returns the coordinates of (x, y) in a frame rotated by angle
// radians. Used to express points in the rotated axes of a seismic grid.
func RotateXY(x, y, angle float64) (xr, yr float64) {
	c := math.Cos(angle)
	s := math.Sin(angle)
	return x*c + y*s, y*c - x*s
}
