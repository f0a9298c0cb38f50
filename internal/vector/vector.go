// Package vector holds the plain Cartesian value types used by the local
// tangent-plane math. Arithmetic is delegated to gonum's r2 and r3 packages.
package vector

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Point2D is a planar point or vector in meters.
type Point2D struct {
	X, Y float64
}

func (p Point2D) r2() r2.Vec { return r2.Vec(p) }

// Add returns p + q.
func (p Point2D) Add(q Point2D) Point2D { return Point2D(r2.Add(p.r2(), q.r2())) }

// Sub returns p - q.
func (p Point2D) Sub(q Point2D) Point2D { return Point2D(r2.Sub(p.r2(), q.r2())) }

// Scale returns f*p.
func (p Point2D) Scale(f float64) Point2D { return Point2D(r2.Scale(f, p.r2())) }

// Dot returns the dot product.
func (p Point2D) Dot(q Point2D) float64 { return r2.Dot(p.r2(), q.r2()) }

// Cross returns the z component of the 3D cross product of p and q.
func (p Point2D) Cross(q Point2D) float64 { return r2.Cross(p.r2(), q.r2()) }

// Norm returns the Euclidean length.
func (p Point2D) Norm() float64 { return r2.Norm(p.r2()) }

// Normalize returns the unit vector in the direction of p, or the zero vector
// when p has no length.
func (p Point2D) Normalize() Point2D {
	if p.Norm() == 0 {
		return Point2D{}
	}
	return Point2D(r2.Unit(p.r2()))
}

// Perp returns p rotated +90 degrees (counter-clockwise).
func (p Point2D) Perp() Point2D { return Point2D{X: -p.Y, Y: p.X} }

// Filter blends p toward next by alpha: p + alpha*(next-p).
func (p Point2D) Filter(next Point2D, alpha float64) Point2D {
	return p.Add(next.Sub(p).Scale(alpha))
}

// To3D lifts p into 3D with the given z.
func (p Point2D) To3D(z float64) Point3D { return Point3D{X: p.X, Y: p.Y, Z: z} }

// Point3D is a Cartesian point or vector in meters. It is used both for ECEF
// positions and for local East-North-Up offsets.
type Point3D struct {
	X, Y, Z float64
}

func (p Point3D) r3() r3.Vec { return r3.Vec(p) }

// Add returns p + q.
func (p Point3D) Add(q Point3D) Point3D { return Point3D(r3.Add(p.r3(), q.r3())) }

// Sub returns p - q.
func (p Point3D) Sub(q Point3D) Point3D { return Point3D(r3.Sub(p.r3(), q.r3())) }

// Scale returns f*p.
func (p Point3D) Scale(f float64) Point3D { return Point3D(r3.Scale(f, p.r3())) }

// Dot returns the dot product.
func (p Point3D) Dot(q Point3D) float64 { return r3.Dot(p.r3(), q.r3()) }

// Cross returns the cross product p x q.
func (p Point3D) Cross(q Point3D) Point3D { return Point3D(r3.Cross(p.r3(), q.r3())) }

// Norm returns the Euclidean length.
func (p Point3D) Norm() float64 { return r3.Norm(p.r3()) }

// DistanceTo returns the straight-line distance between p and q.
func (p Point3D) DistanceTo(q Point3D) float64 { return p.Sub(q).Norm() }

// Normalize returns the unit vector in the direction of p, or the zero vector
// when p has no length.
func (p Point3D) Normalize() Point3D {
	if p.Norm() == 0 {
		return Point3D{}
	}
	return Point3D(r3.Unit(p.r3()))
}

// Filter blends p toward next by alpha: p + alpha*(next-p).
// alpha=1 yields next, alpha=0 yields p unchanged.
func (p Point3D) Filter(next Point3D, alpha float64) Point3D {
	switch alpha {
	case 0:
		return p
	case 1:
		return next
	}
	return p.Add(next.Sub(p).Scale(alpha))
}

// XY drops the z component.
func (p Point3D) XY() Point2D { return Point2D{X: p.X, Y: p.Y} }

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float64

// MulVec returns m*p.
func (m Mat3) MulVec(p Point3D) Point3D {
	return Point3D{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z,
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z,
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z,
	}
}

// Rotations about the vertical (z) axis by a quarter turn. They are exact so
// offsets built from them stay perpendicular.
var (
	RotateZ90 = Mat3{
		{0, -1, 0},
		{1, 0, 0},
		{0, 0, 1},
	}
	RotateZ270 = Mat3{
		{0, 1, 0},
		{-1, 0, 0},
		{0, 0, 1},
	}
)

// RotateZ returns the rotation about the z axis by theta radians.
func RotateZ(theta float64) Mat3 {
	s, c := math.Sincos(theta)
	return Mat3{
		{c, -s, 0},
		{s, c, 0},
		{0, 0, 1},
	}
}
