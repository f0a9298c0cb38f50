package polygon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/westpoint-robotics/ros-cot/internal/geodetic"
	"github.com/westpoint-robotics/ros-cot/internal/units"
	"github.com/westpoint-robotics/ros-cot/internal/vector"
)

var anchor = geodetic.MustCoordinate3D(41.39, -73.95, 0)

// enuSquare returns a counter-clockwise geodetic square whose south-west
// corner sits at anchor.
func enuSquare(t *testing.T, x0, y0, side float64) GeoPolygon {
	t.Helper()
	o, err := geodetic.NewOrigin(anchor)
	require.NoError(t, err)
	corners := []vector.Point3D{
		{X: x0, Y: y0},
		{X: x0 + side, Y: y0},
		{X: x0 + side, Y: y0 + side},
		{X: x0, Y: y0 + side},
	}
	pts := make([]geodetic.Coordinate, len(corners))
	for i, c := range corners {
		pts[i] = o.ENUToGeodetic(c).Coordinate
	}
	g, err := NewGeo(pts)
	require.NoError(t, err)
	return g
}

func at(t *testing.T, x, y, alt float64) geodetic.Coordinate3D {
	t.Helper()
	o, err := geodetic.NewOrigin(anchor)
	require.NoError(t, err)
	c := o.ENUToGeodetic(vector.Point3D{X: x, Y: y})
	return c.WithAltitude(units.AltitudeMeters(alt))
}

func TestNewRejectsShortRings(t *testing.T) {
	_, err := New([]int{1, 2})
	assert.ErrorIs(t, err, ErrInvalidPolygon)

	_, err = NewGeo(nil)
	assert.ErrorIs(t, err, ErrInvalidPolygon)

	p, err := New([]int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Len())
}

func TestSegmentsAndReverse(t *testing.T) {
	p, err := New([]string{"a", "b", "c", "d"})
	require.NoError(t, err)

	segs := p.Segments()
	require.Len(t, segs, 4)
	assert.Equal(t, Edge[string]{From: "d", To: "a"}, segs[3])

	assert.Equal(t, []string{"a", "d", "c", "b"}, p.ReverseOrientation().Points())
	// The original is not modified.
	assert.Equal(t, []string{"a", "b", "c", "d"}, p.Points())
}

func TestGeoPolygonWithin(t *testing.T) {
	sq := enuSquare(t, 0, 0, 1000)

	assert.Equal(t, Inside, sq.Within(at(t, 500, 500, 0).Coordinate))
	assert.Equal(t, Outside, sq.Within(at(t, 1500, 500, 0).Coordinate))
	assert.Equal(t, Outside, sq.Within(at(t, -1, 500, 0).Coordinate))
	assert.Equal(t, OnBoundary, sq.Within(sq.Vertex(0)))
	assert.True(t, sq.Contains(sq.Vertex(2)))
}

func TestGeoPolygonMeasures(t *testing.T) {
	sq := enuSquare(t, 0, 0, 1000)

	assert.InDelta(t, 1e6, sq.Area(), 1.0)
	assert.True(t, sq.IsCounterClockwise())
	assert.False(t, sq.IsClockwise())
	assert.True(t, sq.IsConvex())

	rev := sq.ReverseOrientation()
	assert.True(t, rev.IsClockwise())
	assert.InDelta(t, sq.Area(), rev.Area(), 1e-6)

	o, err := geodetic.NewOrigin(anchor)
	require.NoError(t, err)
	c := o.GeodeticToENU(sq.Centroid().With3D(units.AltitudeMeters(0)))
	assert.InDelta(t, 500, c.X, 0.01)
	assert.InDelta(t, 500, c.Y, 0.01)

	sw, ne := sq.Bounds()
	assert.InDelta(t, anchor.Latitude.Degrees(), sw.Latitude.Degrees(), 1e-5)
	assert.InDelta(t, anchor.Longitude.Degrees(), sw.Longitude.Degrees(), 1e-5)
	assert.Greater(t, ne.Latitude.Degrees(), sw.Latitude.Degrees())
	assert.Greater(t, ne.Longitude.Degrees(), sw.Longitude.Degrees())
}

func TestGeoPolygonEnvelope(t *testing.T) {
	pts := []geodetic.Coordinate{
		geodetic.MustCoordinate3D(60, 0, 0).Coordinate,
		geodetic.MustCoordinate3D(60, 2, 0).Coordinate,
		geodetic.MustCoordinate3D(59, 2, 0).Coordinate,
		geodetic.MustCoordinate3D(59, 0, 0).Coordinate,
	}
	g, err := NewGeo(pts)
	require.NoError(t, err)

	_, vertexNE := g.Bounds()
	sw, ne, ok := g.Envelope()
	require.True(t, ok)
	assert.InDelta(t, 60.0, vertexNE.Latitude.Degrees(), 1e-9)
	// The northern edge bows roughly 400 m past the 60th parallel.
	assert.Greater(t, ne.Latitude.Degrees(), 60.003)
	assert.Less(t, ne.Latitude.Degrees(), 60.006)
	assert.InDelta(t, 59.0, sw.Latitude.Degrees(), 1e-9)

	inside := geodetic.MustCoordinate3D(60.002, 1, 0).Coordinate
	assert.True(t, g.Contains(inside))
	assert.LessOrEqual(t, inside.Latitude.Degrees(), ne.Latitude.Degrees())

	small := enuSquare(t, 0, 0, 1000)
	bsw, bne := small.Bounds()
	esw, ene, ok := small.Envelope()
	require.True(t, ok)
	assert.InDelta(t, bsw.Latitude.Degrees(), esw.Latitude.Degrees(), 1e-6)
	assert.InDelta(t, bne.Longitude.Degrees(), ene.Longitude.Degrees(), 1e-6)
}

func TestZeroGeoPolygon(t *testing.T) {
	var g GeoPolygon
	assert.True(t, g.IsZero())
	assert.NotPanics(t, func() {
		assert.False(t, g.Contains(anchor.Coordinate))
		assert.False(t, enuSquare(t, 0, 0, 10).WithinPolygon(g))
	})
	_, _, ok := g.Envelope()
	assert.False(t, ok)

	var p GeoPrism
	assert.NotPanics(t, func() { assert.False(t, p.Contains(anchor)) })
}

func TestGeoPolygonIntersection(t *testing.T) {
	sq := enuSquare(t, 0, 0, 1000)
	east := enuSquare(t, 500, 0, 1000)
	far := enuSquare(t, 5000, 5000, 100)

	parts := sq.Intersection(east)
	require.Len(t, parts, 1)
	assert.InDelta(t, 5e5, parts[0].Area(), 1.0)
	assert.True(t, sq.Intersects(east))

	assert.Empty(t, sq.Intersection(far))
	assert.False(t, sq.Intersects(far))

	half := enuSquare(t, 250, 250, 500)
	assert.True(t, half.WithinPolygon(sq))
	assert.False(t, sq.WithinPolygon(half))
}

func TestPrismBand(t *testing.T) {
	sq := enuSquare(t, 0, 0, 1000)

	_, err := NewGeoPrism(sq, units.AltitudeMeters(500), units.AltitudeMeters(100))
	assert.ErrorIs(t, err, ErrInvalidAltitudeBand)
	_, err = NewGeoPrism(sq, units.AltitudeMeters(100), units.AltitudeMeters(100))
	assert.ErrorIs(t, err, ErrInvalidAltitudeBand)

	other := units.AltitudeMeters(500)
	other.Reference = units.EarthsLandSeaSurface
	_, err = NewGeoPrism(sq, units.AltitudeMeters(0), other)
	assert.ErrorIs(t, err, ErrInvalidAltitudeBand)

	p, err := NewGeoPrism(sq, units.AltitudeMeters(0), units.NewAltitude(500, units.Meters))
	require.NoError(t, err)
	_, err = p.WithAltitudeBand(units.AltitudeMeters(10), units.AltitudeMeters(5))
	assert.ErrorIs(t, err, ErrInvalidAltitudeBand)

	tests := []struct {
		name      string
		x, y, alt float64
		want      bool
	}{
		{"middle", 500, 500, 200, true},
		{"at floor", 500, 500, 0, true},
		{"at ceiling", 500, 500, 500, true},
		{"below floor", 500, 500, -1, false},
		{"above ceiling", 500, 500, 501, false},
		{"beside", 1500, 500, 200, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Contains(at(t, tt.x, tt.y, tt.alt)))
		})
	}
	assert.True(t, p.ContainsHorizontally(at(t, 500, 500, 9000).Coordinate))
}

func TestLocalPrism(t *testing.T) {
	poly, err := NewLocal([]vector.Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}})
	require.NoError(t, err)
	assert.InDelta(t, 100, poly.Area(), 1e-12)

	p, err := NewPrism(poly, units.AltitudeMeters(-5), units.AltitudeMeters(5))
	require.NoError(t, err)
	assert.True(t, p.Contains(vector.Point3D{X: 5, Y: 5, Z: 5}))
	assert.False(t, p.Contains(vector.Point3D{X: 5, Y: 5, Z: 6}))
	assert.False(t, p.Contains(vector.Point3D{X: 11, Y: 5, Z: 0}))
	assert.Equal(t, -5.0, p.MinAltitude().Meters())
}
