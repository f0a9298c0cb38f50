package polygon

import (
	"fmt"

	"github.com/westpoint-robotics/ros-cot/internal/geodetic"
	"github.com/westpoint-robotics/ros-cot/internal/units"
	"github.com/westpoint-robotics/ros-cot/internal/vector"
)

// altitudeBand is a closed altitude interval with min strictly below max.
type altitudeBand struct {
	min, max units.Altitude
}

func newAltitudeBand(min, max units.Altitude) (altitudeBand, error) {
	if min.Reference != max.Reference {
		return altitudeBand{}, fmt.Errorf("%w: minimum is %s but maximum is %s",
			ErrInvalidAltitudeBand, min.Reference, max.Reference)
	}
	if !(min.Meters() < max.Meters()) {
		return altitudeBand{}, fmt.Errorf("%w: minimum %s is not below maximum %s",
			ErrInvalidAltitudeBand, min.Distance, max.Distance)
	}
	return altitudeBand{min: min, max: max}, nil
}

func (b altitudeBand) contains(meters float64) bool {
	return meters >= b.min.Meters() && meters <= b.max.Meters()
}

// MinAltitude returns the lower bound of the band.
func (b altitudeBand) MinAltitude() units.Altitude { return b.min }

// MaxAltitude returns the upper bound of the band.
func (b altitudeBand) MaxAltitude() units.Altitude { return b.max }

// Reference returns the surface both bounds are measured from.
func (b altitudeBand) Reference() units.AltitudeReference { return b.min.Reference }

// Prism is a local polygon extruded through [min, max] meters of the frame's
// up axis.
type Prism struct {
	altitudeBand
	polygon LocalPolygon
}

// NewPrism builds a prism; min must be strictly below max.
func NewPrism(p LocalPolygon, min, max units.Altitude) (Prism, error) {
	band, err := newAltitudeBand(min, max)
	if err != nil {
		return Prism{}, err
	}
	return Prism{altitudeBand: band, polygon: p}, nil
}

func (p Prism) Polygon() LocalPolygon { return p.polygon }

// WithAltitudeBand returns a copy of p with new bounds.
func (p Prism) WithAltitudeBand(min, max units.Altitude) (Prism, error) {
	return NewPrism(p.polygon, min, max)
}

// Contains reports whether pt is inside or on the footprint and its Z lies in
// the closed altitude band.
func (p Prism) Contains(pt vector.Point3D) bool {
	return p.contains(pt.Z) && p.polygon.Contains(pt.XY())
}

// GeoPrism is a geodetic polygon extruded through an altitude band.
type GeoPrism struct {
	altitudeBand
	polygon GeoPolygon
}

// NewGeoPrism builds a prism; min must be strictly below max and both bounds
// must share a reference surface.
func NewGeoPrism(p GeoPolygon, min, max units.Altitude) (GeoPrism, error) {
	band, err := newAltitudeBand(min, max)
	if err != nil {
		return GeoPrism{}, err
	}
	return GeoPrism{altitudeBand: band, polygon: p}, nil
}

func (p GeoPrism) Polygon() GeoPolygon { return p.polygon }

// WithAltitudeBand returns a copy of p with new bounds.
func (p GeoPrism) WithAltitudeBand(min, max units.Altitude) (GeoPrism, error) {
	return NewGeoPrism(p.polygon, min, max)
}

// WithPolygon returns a copy of p with a new footprint.
func (p GeoPrism) WithPolygon(poly GeoPolygon) GeoPrism {
	return GeoPrism{altitudeBand: p.altitudeBand, polygon: poly}
}

// Contains reports whether c is inside or on the footprint and its altitude
// lies in the closed band.
func (p GeoPrism) Contains(c geodetic.Coordinate3D) bool {
	return p.contains(c.AltitudeMeters()) && p.polygon.Contains(c.Coordinate)
}

// ContainsHorizontally ignores the altitude band.
func (p GeoPrism) ContainsHorizontally(c geodetic.Coordinate) bool {
	return p.polygon.Contains(c)
}
