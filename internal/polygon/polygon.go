// Package polygon models closed vertex rings and altitude-banded prisms, both
// in a local Cartesian frame and on the WGS84 ellipsoid. Geodetic shapes are
// projected into an ENU frame anchored at their first vertex before any
// planar computation.
package polygon

import (
	"errors"
	"fmt"

	"github.com/westpoint-robotics/ros-cot/internal/planar"
	"github.com/westpoint-robotics/ros-cot/internal/vector"
)

var (
	// ErrInvalidPolygon is returned for rings with fewer than three vertices.
	ErrInvalidPolygon = errors.New("polygon needs at least 3 vertices")
	// ErrInvalidAltitudeBand is returned when a prism's minimum altitude is
	// not strictly below its maximum.
	ErrInvalidAltitudeBand = errors.New("invalid altitude band")
)

// Location classifies a point against a polygon.
type Location = planar.Location

const (
	Outside    = planar.Outside
	Inside     = planar.Inside
	OnBoundary = planar.OnBoundary
)

// Polygon is an ordered ring of at least three vertices. The closing edge
// from the last vertex back to the first is implied.
type Polygon[P any] struct {
	points []P
}

// Edge is one boundary segment of a polygon.
type Edge[P any] struct {
	From, To P
}

// New validates and copies pts into a polygon.
func New[P any](pts []P) (Polygon[P], error) {
	if len(pts) < 3 {
		return Polygon[P]{}, fmt.Errorf("%w: got %d", ErrInvalidPolygon, len(pts))
	}
	cp := make([]P, len(pts))
	copy(cp, pts)
	return Polygon[P]{points: cp}, nil
}

// Points returns a copy of the vertices.
func (p Polygon[P]) Points() []P {
	cp := make([]P, len(p.points))
	copy(cp, p.points)
	return cp
}

func (p Polygon[P]) Len() int { return len(p.points) }

// Vertex returns the i-th vertex.
func (p Polygon[P]) Vertex(i int) P { return p.points[i] }

// Segments returns the boundary edges, ending with the closing edge.
func (p Polygon[P]) Segments() []Edge[P] {
	n := len(p.points)
	edges := make([]Edge[P], n)
	for i := range p.points {
		edges[i] = Edge[P]{From: p.points[i], To: p.points[(i+1)%n]}
	}
	return edges
}

// ReverseOrientation keeps the first vertex and reverses the order of the
// rest, flipping the winding direction.
func (p Polygon[P]) ReverseOrientation() Polygon[P] {
	n := len(p.points)
	out := make([]P, n)
	if n == 0 {
		return Polygon[P]{points: out}
	}
	out[0] = p.points[0]
	for i := 1; i < n; i++ {
		out[i] = p.points[n-i]
	}
	return Polygon[P]{points: out}
}

// LocalPolygon is a polygon already expressed in a local Cartesian frame.
type LocalPolygon struct {
	Polygon[vector.Point2D]
}

// NewLocal builds a LocalPolygon from pts.
func NewLocal(pts []vector.Point2D) (LocalPolygon, error) {
	p, err := New(pts)
	if err != nil {
		return LocalPolygon{}, err
	}
	return LocalPolygon{Polygon: p}, nil
}

func (p LocalPolygon) ring() planar.Ring { return planar.Ring(p.points) }

// Within classifies pt against the polygon.
func (p LocalPolygon) Within(pt vector.Point2D) Location { return planar.Locate(pt, p.ring()) }

// Contains reports whether pt lies inside or on the boundary.
func (p LocalPolygon) Contains(pt vector.Point2D) bool { return p.Within(pt) != Outside }

func (p LocalPolygon) Area() float64            { return planar.Area(p.ring()) }
func (p LocalPolygon) Centroid() vector.Point2D { return planar.Centroid(p.ring()) }
func (p LocalPolygon) IsClockwise() bool        { return planar.IsClockwise(p.ring()) }
func (p LocalPolygon) IsCounterClockwise() bool { return planar.IsCounterClockwise(p.ring()) }
func (p LocalPolygon) IsConvex() bool           { return planar.IsConvex(p.ring()) }
func (p LocalPolygon) Intersects(o LocalPolygon) bool {
	return planar.Intersects(p.ring(), o.ring())
}

// Intersection returns the regions shared with o. Disjoint polygons give an
// empty result; concave inputs may give several.
func (p LocalPolygon) Intersection(o LocalPolygon) []LocalPolygon {
	rings := planar.Intersection(p.ring(), o.ring())
	out := make([]LocalPolygon, 0, len(rings))
	for _, r := range rings {
		out = append(out, LocalPolygon{Polygon: Polygon[vector.Point2D]{points: r}})
	}
	return out
}
