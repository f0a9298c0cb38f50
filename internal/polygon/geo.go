package polygon

import (
	"math"

	"github.com/westpoint-robotics/ros-cot/internal/geodetic"
	"github.com/westpoint-robotics/ros-cot/internal/planar"
	"github.com/westpoint-robotics/ros-cot/internal/units"
	"github.com/westpoint-robotics/ros-cot/internal/vector"
)

// GeoPolygon is a polygon of geodetic vertices. Every planar query projects
// the vertices into the ENU frame of the first vertex at zero altitude.
type GeoPolygon struct {
	Polygon[geodetic.Coordinate]
	origin *geodetic.Origin
}

// NewGeo builds a GeoPolygon from pts.
func NewGeo(pts []geodetic.Coordinate) (GeoPolygon, error) {
	p, err := New(pts)
	if err != nil {
		return GeoPolygon{}, err
	}
	return geoFrom(p)
}

func geoFrom(p Polygon[geodetic.Coordinate]) (GeoPolygon, error) {
	o, err := geodetic.NewOrigin(p.points[0].With3D(units.AltitudeMeters(0)))
	if err != nil {
		return GeoPolygon{}, err
	}
	return GeoPolygon{Polygon: p, origin: o}, nil
}

// ReverseOrientation keeps the first vertex and reverses the rest.
func (g GeoPolygon) ReverseOrientation() GeoPolygon {
	return GeoPolygon{Polygon: g.Polygon.ReverseOrientation(), origin: g.origin}
}

// envelopeStep is the longest stretch of a local-frame edge that Envelope
// treats as straight in degrees.
const envelopeStep = 1000.0

// maxEnvelopeSamples caps the samples taken along a single edge.
const maxEnvelopeSamples = 4096

// IsZero reports whether g is the zero polygon. A zero polygon contains
// nothing.
func (g GeoPolygon) IsZero() bool { return g.origin == nil || len(g.points) == 0 }

func (g GeoPolygon) project(c geodetic.Coordinate) vector.Point2D {
	return g.origin.GeodeticToENU(c.With3D(units.AltitudeMeters(0))).XY()
}

// unproject returns the surface coordinate whose projection is p. The tangent
// plane drops below the ellipsoid away from the origin, so the first guess is
// corrected once by the height it lands at.
func (g GeoPolygon) unproject(p vector.Point2D) geodetic.Coordinate {
	guess := g.origin.ENUToGeodetic(p.To3D(0)).Coordinate
	drop := g.origin.GeodeticToENU(guess.With3D(units.AltitudeMeters(0))).Z
	return g.origin.ENUToGeodetic(p.To3D(drop)).Coordinate
}

// ringIn projects the vertices of g into the frame of o.
func (g GeoPolygon) ringIn(o GeoPolygon) planar.Ring {
	r := make(planar.Ring, len(g.points))
	for i, c := range g.points {
		r[i] = o.project(c)
	}
	return r
}

func (g GeoPolygon) ring() planar.Ring { return g.ringIn(g) }

// Local returns the polygon expressed in its own ENU frame.
func (g GeoPolygon) Local() LocalPolygon {
	return LocalPolygon{Polygon: Polygon[vector.Point2D]{points: g.ring()}}
}

// Within classifies c against the polygon.
func (g GeoPolygon) Within(c geodetic.Coordinate) Location {
	if g.IsZero() {
		return Outside
	}
	return planar.Locate(g.project(c), g.ring())
}

// Contains reports whether c lies inside or on the boundary.
func (g GeoPolygon) Contains(c geodetic.Coordinate) bool { return g.Within(c) != Outside }

// WithinPolygon reports whether every vertex of g lies inside or on the
// boundary of other.
func (g GeoPolygon) WithinPolygon(other GeoPolygon) bool {
	if other.IsZero() {
		return false
	}
	ring := other.ring()
	for _, c := range g.points {
		if planar.Locate(other.project(c), ring) == Outside {
			return false
		}
	}
	return true
}

// Intersects reports whether g and other share any point.
func (g GeoPolygon) Intersects(other GeoPolygon) bool {
	return planar.Intersects(g.ring(), other.ringIn(g))
}

// Intersection returns the regions shared by g and other, projected back to
// geodetic coordinates.
func (g GeoPolygon) Intersection(other GeoPolygon) []GeoPolygon {
	rings := planar.Intersection(g.ring(), other.ringIn(g))
	out := make([]GeoPolygon, 0, len(rings))
	for _, r := range rings {
		pts := make([]geodetic.Coordinate, len(r))
		for i, p := range r {
			pts[i] = g.origin.ENUToGeodetic(p.To3D(0)).Coordinate
		}
		gp, err := geoFrom(Polygon[geodetic.Coordinate]{points: pts})
		if err != nil {
			continue
		}
		out = append(out, gp)
	}
	return out
}

// Area returns the enclosed area in square meters.
func (g GeoPolygon) Area() float64 { return planar.Area(g.ring()) }

// Centroid returns the area centroid.
func (g GeoPolygon) Centroid() geodetic.Coordinate {
	c := planar.Centroid(g.ring())
	return g.origin.ENUToGeodetic(c.To3D(0)).Coordinate
}

func (g GeoPolygon) IsClockwise() bool        { return planar.IsClockwise(g.ring()) }
func (g GeoPolygon) IsCounterClockwise() bool { return planar.IsCounterClockwise(g.ring()) }
func (g GeoPolygon) IsConvex() bool           { return planar.IsConvex(g.ring()) }

// Bounds returns the south-west and north-east corners of the vertex extent
// in degrees. Polygons spanning the antimeridian get a box that wraps the
// long way round.
func (g GeoPolygon) Bounds() (southWest, northEast geodetic.Coordinate) {
	minLat, minLon := math.Inf(1), math.Inf(1)
	maxLat, maxLon := math.Inf(-1), math.Inf(-1)
	for _, c := range g.points {
		lat, lon := c.Latitude.Degrees(), c.Longitude.Degrees()
		minLat, maxLat = math.Min(minLat, lat), math.Max(maxLat, lat)
		minLon, maxLon = math.Min(minLon, lon), math.Max(maxLon, lon)
	}
	southWest, _ = geodetic.NewCoordinate(minLat, minLon)
	northEast, _ = geodetic.NewCoordinate(maxLat, maxLon)
	return southWest, northEast
}

// Envelope returns the south-west and north-east corners of every point the
// footprint covers. Edges are straight in the local frame, so away from the
// equator they bow poleward of the vertex extent; each edge is sampled at
// envelopeStep and the samples are mapped back to degrees. ok is false for a
// zero polygon.
func (g GeoPolygon) Envelope() (southWest, northEast geodetic.Coordinate, ok bool) {
	if g.IsZero() {
		return geodetic.Coordinate{}, geodetic.Coordinate{}, false
	}
	minLat, minLon := math.Inf(1), math.Inf(1)
	maxLat, maxLon := math.Inf(-1), math.Inf(-1)
	grow := func(c geodetic.Coordinate) {
		lat, lon := c.Latitude.Degrees(), c.Longitude.Degrees()
		minLat, maxLat = math.Min(minLat, lat), math.Max(maxLat, lat)
		minLon, maxLon = math.Min(minLon, lon), math.Max(maxLon, lon)
	}
	for _, c := range g.points {
		grow(c)
	}
	ring := g.ring()
	for i, a := range ring {
		b := ring[(i+1)%len(ring)]
		d := b.Sub(a)
		n := int(math.Ceil(d.Norm() / envelopeStep))
		n = min(max(n, 1), maxEnvelopeSamples)
		for k := 1; k < n; k++ {
			grow(g.unproject(a.Add(d.Scale(float64(k) / float64(n)))))
		}
	}
	var err error
	if southWest, err = geodetic.NewCoordinate(minLat, minLon); err != nil {
		return geodetic.Coordinate{}, geodetic.Coordinate{}, false
	}
	if northEast, err = geodetic.NewCoordinate(maxLat, maxLon); err != nil {
		return geodetic.Coordinate{}, geodetic.Coordinate{}, false
	}
	return southWest, northEast, true
}
