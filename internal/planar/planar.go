// Package planar answers 2D computational-geometry questions about rings that
// have already been projected into a local Cartesian frame. Point-in-polygon,
// clipping, area and centroid come from github.com/ctessum/geom; orientation
// and convexity are computed here over the same rings.
package planar

import (
	"math"

	"github.com/ctessum/geom"

	"github.com/westpoint-robotics/ros-cot/internal/vector"
)

// Location classifies a point relative to a ring.
type Location int

const (
	Outside Location = iota
	Inside
	OnBoundary
)

func (l Location) String() string {
	switch l {
	case Inside:
		return "inside"
	case OnBoundary:
		return "on_boundary"
	default:
		return "outside"
	}
}

// Ring is an open vertex ring: the closing edge from the last vertex back to
// the first is implied.
type Ring []vector.Point2D

func (r Ring) toGeom() geom.Polygon {
	pts := make([]geom.Point, len(r))
	for i, p := range r {
		pts[i] = geom.Point{X: p.X, Y: p.Y}
	}
	return geom.Polygon{pts}
}

func fromGeomRing(pts []geom.Point) Ring {
	n := len(pts)
	if n > 1 && pts[0].Equals(pts[n-1]) {
		n--
	}
	out := make(Ring, n)
	for i := 0; i < n; i++ {
		out[i] = vector.Point2D{X: pts[i].X, Y: pts[i].Y}
	}
	return out
}

// Locate classifies pt against ring.
func Locate(pt vector.Point2D, ring Ring) Location {
	switch (geom.Point{X: pt.X, Y: pt.Y}).Within(ring.toGeom()) {
	case geom.Inside:
		return Inside
	case geom.OnEdge:
		return OnBoundary
	default:
		return Outside
	}
}

// Intersection clips a against b and returns every resulting ring, without
// the duplicated closing vertex. Disjoint inputs yield no rings.
func Intersection(a, b Ring) []Ring {
	clipped := a.toGeom().Intersection(b.toGeom()).(geom.Polygon)
	out := make([]Ring, 0, len(clipped))
	for _, pts := range clipped {
		if r := fromGeomRing(pts); len(r) >= 3 {
			out = append(out, r)
		}
	}
	return out
}

// Intersects reports whether a and b share at least one point, including
// rings that only touch along an edge or at a vertex.
func Intersects(a, b Ring) bool {
	for _, p := range a {
		if Locate(p, b) != Outside {
			return true
		}
	}
	for _, p := range b {
		if Locate(p, a) != Outside {
			return true
		}
	}
	return len(Intersection(a, b)) > 0
}

// Area returns the unsigned area enclosed by ring.
func Area(ring Ring) float64 {
	return ring.toGeom().Area()
}

// SignedArea returns the shoelace area: positive for counter-clockwise rings.
func SignedArea(ring Ring) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		p, q := ring[i], ring[(i+1)%n]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

// Centroid returns the area centroid of ring.
func Centroid(ring Ring) vector.Point2D {
	c := ring.toGeom().Centroid()
	return vector.Point2D{X: c.X, Y: c.Y}
}

// IsClockwise reports whether ring winds clockwise.
func IsClockwise(ring Ring) bool { return SignedArea(ring) < 0 }

// IsCounterClockwise reports whether ring winds counter-clockwise.
func IsCounterClockwise(ring Ring) bool { return SignedArea(ring) > 0 }

// IsConvex reports whether every turn along ring has the same direction.
// Collinear vertices are allowed.
func IsConvex(ring Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	sign := 0.0
	for i := 0; i < n; i++ {
		a, b, c := ring[i], ring[(i+1)%n], ring[(i+2)%n]
		cross := b.Sub(a).Cross(c.Sub(b))
		if math.Abs(cross) < 1e-12 {
			continue
		}
		if sign == 0 {
			sign = math.Copysign(1, cross)
			continue
		}
		if math.Copysign(1, cross) != sign {
			return false
		}
	}
	// A convex ring turns through exactly one full revolution.
	return sign != 0 && !selfIntersects(ring)
}

// selfIntersects reports whether any two non-adjacent edges cross.
func selfIntersects(ring Ring) bool {
	n := len(ring)
	for i := 0; i < n; i++ {
		a1, a2 := ring[i], ring[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			b1, b2 := ring[j], ring[(j+1)%n]
			if segmentsCross(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

func segmentsCross(p1, p2, q1, q2 vector.Point2D) bool {
	d1 := p2.Sub(p1).Cross(q1.Sub(p1))
	d2 := p2.Sub(p1).Cross(q2.Sub(p1))
	d3 := q2.Sub(q1).Cross(p1.Sub(q1))
	d4 := q2.Sub(q1).Cross(p2.Sub(q1))
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// Bounds returns the axis-aligned extent of ring.
func Bounds(ring Ring) (min, max vector.Point2D) {
	b := ring.toGeom().Bounds()
	return vector.Point2D{X: b.Min.X, Y: b.Min.Y}, vector.Point2D{X: b.Max.X, Y: b.Max.Y}
}
