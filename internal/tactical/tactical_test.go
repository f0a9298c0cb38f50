package tactical

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/westpoint-robotics/ros-cot/internal/geodetic"
	"github.com/westpoint-robotics/ros-cot/internal/polygon"
	"github.com/westpoint-robotics/ros-cot/internal/units"
	"github.com/westpoint-robotics/ros-cot/internal/vector"
)

var (
	anchor = geodetic.MustCoordinate3D(41.39, -73.95, 0)
	t0     = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	t1     = t0.Add(2 * time.Hour)
)

type fixture struct {
	t      *testing.T
	origin *geodetic.Origin
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	o, err := geodetic.NewOrigin(anchor)
	require.NoError(t, err)
	return fixture{t: t, origin: o}
}

func (f fixture) at(x, y, alt float64) geodetic.Coordinate3D {
	return f.origin.ENUToGeodetic(vector.Point3D{X: x, Y: y}).WithAltitude(units.AltitudeMeters(alt))
}

func (f fixture) prism(x0, y0, w, h, minAlt, maxAlt float64) polygon.GeoPrism {
	f.t.Helper()
	corners := []vector.Point3D{{X: x0, Y: y0}, {X: x0 + w, Y: y0}, {X: x0 + w, Y: y0 + h}, {X: x0, Y: y0 + h}}
	pts := make([]geodetic.Coordinate, len(corners))
	for i, c := range corners {
		pts[i] = f.origin.ENUToGeodetic(c).Coordinate
	}
	poly, err := polygon.NewGeo(pts)
	require.NoError(f.t, err)
	p, err := polygon.NewGeoPrism(poly, units.AltitudeMeters(minAlt), units.AltitudeMeters(maxAlt))
	require.NoError(f.t, err)
	return p
}

func window(t *testing.T, start, end time.Time) TimeConstraints {
	t.Helper()
	tc, err := NewTimeConstraints(start, end)
	require.NoError(t, err)
	return tc
}

func area(t *testing.T, id string, tc TimeConstraints, segs ...Segment) Area {
	t.Helper()
	a, err := NewArea(id, tc, segs...)
	require.NoError(t, err)
	return a
}

func TestTimeConstraints(t *testing.T) {
	_, err := NewTimeConstraints(t1, t0)
	assert.ErrorIs(t, err, ErrInvalidTimeWindow)
	_, err = NewTimeConstraints(t0, t0)
	assert.ErrorIs(t, err, ErrInvalidTimeWindow)

	tc := window(t, t0, t1)
	assert.True(t, tc.Contains(t0))
	assert.True(t, tc.Contains(t1))
	assert.False(t, tc.Contains(t0.Add(-time.Nanosecond)))
	assert.False(t, tc.Contains(t1.Add(time.Nanosecond)))

	openEnd := window(t, t0, time.Time{})
	assert.True(t, openEnd.Contains(t1.Add(1000*time.Hour)))
	assert.False(t, openEnd.Contains(t0.Add(-time.Second)))
	assert.True(t, Unbounded().Contains(time.Time{}.Add(time.Hour)))
	assert.False(t, Unbounded().IsBounded())

	_, err = tc.WithEnd(t0.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrInvalidTimeWindow)

	later := window(t, t1, t1.Add(time.Hour))
	assert.True(t, tc.Intersects(later))
	assert.False(t, tc.Intersects(window(t, t1.Add(time.Second), t1.Add(time.Hour))))
	assert.True(t, tc.Intersects(Unbounded()))

	shifted := tc.Translate(time.Hour)
	assert.Equal(t, t0.Add(time.Hour), shifted.Start())
	assert.False(t, openEnd.Translate(time.Hour).HasEnd())
}

func TestExpectedTimeConstraints(t *testing.T) {
	_, err := NewExpectedTimeConstraints(t1.Add(time.Minute), window(t, t0, t1))
	assert.ErrorIs(t, err, ErrInvalidTimeWindow)

	e, err := NewExpectedTimeConstraints(t0.Add(time.Hour), window(t, t0, t1))
	require.NoError(t, err)
	assert.True(t, e.HasExpected())
	assert.Equal(t, t0.Add(2*time.Hour), e.Translate(time.Hour).Expected())
}

func TestProductOfSums(t *testing.T) {
	f := newFixture(t)
	s1 := NewSegment("S1", f.prism(0, 0, 1000, 1000, 0, 500), window(t, t0, t1))
	s2 := NewSegment("S2", f.prism(500, 0, 500, 1000, 0, 500), Unbounded())

	a := area(t, "A", Unbounded(), s1)
	b := area(t, "B", Unbounded(), s2)
	sc := NewSpatialConstraints([]Area{a}, []Area{b}, nil)

	during := t0.Add(30 * time.Minute)
	assert.False(t, sc.Within(f.at(750, 500, 200), during), "inside the exclusion")
	assert.True(t, sc.Within(f.at(250, 500, 200), during))
	assert.False(t, sc.Within(f.at(250, 500, 200), t1.Add(time.Second)), "outside the inclusion window")
	assert.False(t, sc.Within(f.at(250, 500, 501), during), "above the prism")
	assert.False(t, sc.Within(f.at(5000, 5000, 200), during), "far away")

	v := sc.Verdict(f.at(750, 500, 200), during)
	assert.False(t, v.Allowed)
	assert.Empty(t, v.UnsatisfiedInclusions)
	assert.Equal(t, []string{"B"}, v.ViolatedExclusions)

	v = sc.Verdict(f.at(250, 500, 200), t1.Add(time.Second))
	assert.Equal(t, []string{"A"}, v.UnsatisfiedInclusions)
	assert.Empty(t, v.ViolatedExclusions)
}

func TestBoundaryBehaviour(t *testing.T) {
	f := newFixture(t)
	seg := NewSegment("", f.prism(0, 0, 1000, 1000, 100, 500), window(t, t0, t1))
	assert.Equal(t, DefaultSegmentID, seg.ID())

	inside := func(alt float64, at time.Time) bool { return seg.Within(f.at(500, 500, alt), at) }
	assert.True(t, inside(100, t0))
	assert.True(t, inside(500, t1))
	assert.False(t, inside(99, t0))
	assert.False(t, inside(501, t0))
	assert.False(t, inside(200, t0.Add(-time.Second)))
	assert.False(t, inside(200, t1.Add(time.Second)))
}

func TestAreaWindowTakesPrecedence(t *testing.T) {
	f := newFixture(t)
	later := window(t, t1.Add(24*time.Hour), t1.Add(48*time.Hour))
	seg := NewSegment("late", f.prism(0, 0, 1000, 1000, 0, 500), later)

	plain := area(t, "", Unbounded(), seg)
	assert.Equal(t, DefaultAreaID, plain.ID())
	assert.False(t, plain.Within(f.at(500, 500, 10), t0))

	overridden := area(t, "override", window(t, t0, t1), seg)
	assert.True(t, overridden.Within(f.at(500, 500, 10), t0))
	assert.False(t, overridden.Within(f.at(500, 500, 10), t1.Add(30*time.Hour)))
	assert.False(t, overridden.Within(f.at(1500, 500, 10), t0), "the area window does not replace the spatial test")

	_, err := NewArea("empty", Unbounded())
	assert.ErrorIs(t, err, ErrEmptyArea)
}

func TestWithinExpected(t *testing.T) {
	f := newFixture(t)
	p := f.prism(0, 0, 1000, 1000, 0, 500)
	bounded := NewSegment("bounded", p, window(t, t0, t1))
	always := NewSegment("always", p, Unbounded())
	pos := f.at(500, 500, 100)

	expectOnly, err := NewExpectedTimeConstraints(t0.Add(time.Minute), Unbounded())
	require.NoError(t, err)
	assert.True(t, bounded.WithinExpected(pos, expectOnly))
	lateExpect, err := NewExpectedTimeConstraints(t1.Add(time.Minute), Unbounded())
	require.NoError(t, err)
	assert.False(t, bounded.WithinExpected(pos, lateExpect))

	windowOnly, err := NewExpectedTimeConstraints(time.Time{}, window(t, t1, t1.Add(time.Hour)))
	require.NoError(t, err)
	assert.True(t, bounded.WithinExpected(pos, windowOnly))

	both, err := NewExpectedTimeConstraints(t1, window(t, t0.Add(time.Hour), t1.Add(time.Hour)))
	require.NoError(t, err)
	assert.True(t, bounded.WithinExpected(pos, both))
	bothLate, err := NewExpectedTimeConstraints(t1.Add(30*time.Minute), window(t, t0.Add(time.Hour), t1.Add(time.Hour)))
	require.NoError(t, err)
	assert.False(t, bounded.WithinExpected(pos, bothLate))

	var neither ExpectedTimeConstraints
	assert.False(t, bounded.WithinExpected(pos, neither))
	assert.True(t, always.WithinExpected(pos, neither))
	assert.False(t, always.WithinExpected(f.at(2000, 0, 100), neither))
}

func TestWarnings(t *testing.T) {
	for name, want := range map[string]Warning{
		"Commercial Traffic Area":   WarningCommercialTrafficArea,
		"High Traffic Density Area": WarningHighTrafficDensityArea,
		"Military Operation Area":   WarningMilitaryOperationArea,
		"Trawler Field":             WarningTrawlerField,
		"other":                     WarningOther,
		"none":                      WarningNone,
		"Fishing Fleet":             WarningOther,
	} {
		got, err := ParseWarning(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseWarning("")
	assert.ErrorIs(t, err, ErrInvalidWarning)

	f := newFixture(t)
	trawlers := area(t, "nets", Unbounded(), NewSegment("", f.prism(0, 0, 500, 500, -50, 50), Unbounded()))

	_, err = NewWarningArea("bad", WarningNone, WarningNone, trawlers)
	assert.ErrorIs(t, err, ErrInvalidWarning)

	w, err := NewWarningArea("W1", WarningTrawlerField, WarningCommercialTrafficArea, trawlers)
	require.NoError(t, err)
	assert.True(t, w.HasSecondary())

	sc := NewSpatialConstraints(nil, nil, []WarningArea{w})
	assert.True(t, sc.Within(f.at(100, 100, 0), t0), "warnings never restrict")
	hits := sc.WarningsAt(f.at(100, 100, 0), t0)
	require.Len(t, hits, 1)
	assert.Equal(t, "W1", hits[0].ID())
	assert.Empty(t, sc.WarningsAt(f.at(900, 900, 0), t0))

	v := sc.Verdict(f.at(100, 100, 0), t0)
	assert.True(t, v.Allowed)
	require.Len(t, v.Warnings, 1)
	assert.Equal(t, WarningTrawlerField, v.Warnings[0].Primary)
}

func TestIndexPrunesFarAreas(t *testing.T) {
	f := newFixture(t)
	near := area(t, "near", Unbounded(), NewSegment("", f.prism(0, 0, 1000, 1000, 0, 500), Unbounded()))
	far := area(t, "far", Unbounded(), NewSegment("", f.prism(50000, 50000, 1000, 1000, 0, 500), Unbounded()))
	sc := NewSpatialConstraints([]Area{near}, []Area{far}, nil)

	assert.Equal(t, 2, sc.Index().Size())
	cand := sc.Index().Candidates(f.at(500, 500, 0).Coordinate)
	assert.Equal(t, []int{0}, cand[KindInclusion])
	assert.Empty(t, cand[KindExclusion])

	// Footprint corners are still candidates.
	corner := sc.Index().Candidates(f.at(1000, 1000, 0).Coordinate)
	assert.Equal(t, []int{0}, corner[KindInclusion])
}

// degreePrism spans whole degrees, so its northern edge bows about 400 m
// north of the 60th parallel in its local frame.
func degreePrism(t *testing.T) polygon.GeoPrism {
	t.Helper()
	pts := []geodetic.Coordinate{
		geodetic.MustCoordinate3D(60, 0, 0).Coordinate,
		geodetic.MustCoordinate3D(60, 2, 0).Coordinate,
		geodetic.MustCoordinate3D(59, 2, 0).Coordinate,
		geodetic.MustCoordinate3D(59, 0, 0).Coordinate,
	}
	poly, err := polygon.NewGeo(pts)
	require.NoError(t, err)
	p, err := polygon.NewGeoPrism(poly, units.AltitudeMeters(0), units.AltitudeMeters(1000))
	require.NoError(t, err)
	return p
}

func TestIndexKeepsBowedEdges(t *testing.T) {
	a := area(t, "North", Unbounded(), NewSegment("", degreePrism(t), Unbounded()))
	pos := geodetic.MustCoordinate3D(60.002, 1.0, 100)
	require.True(t, a.Within(pos, t0))

	excl := NewSpatialConstraints(nil, []Area{a}, nil)
	assert.False(t, excl.Within(pos, t0))
	v := excl.Verdict(pos, t0)
	assert.False(t, v.Allowed)
	assert.Equal(t, []string{"North"}, v.ViolatedExclusions)

	incl := NewSpatialConstraints([]Area{a}, nil, nil)
	assert.True(t, incl.Within(pos, t0))
	assert.Empty(t, incl.Verdict(pos, t0).UnsatisfiedInclusions)

	// Well past the bow the area is pruned and the answer is unchanged.
	far := geodetic.MustCoordinate3D(60.05, 1.0, 100)
	assert.False(t, a.Within(far, t0))
	assert.Empty(t, excl.Index().Candidates(far.Coordinate)[KindExclusion])
	assert.True(t, excl.Within(far, t0))
}

func TestZeroPrismContainsNothing(t *testing.T) {
	seg := NewSegment("", polygon.GeoPrism{}, Unbounded())
	pos := geodetic.MustCoordinate3D(0, 0, 0)
	assert.NotPanics(t, func() { assert.False(t, seg.Within(pos, t0)) })

	a := area(t, "Empty", Unbounded(), seg)
	sc := NewSpatialConstraints(nil, []Area{a}, nil)
	assert.NotPanics(t, func() { assert.True(t, sc.Verdict(pos, t0).Allowed) })
}

func TestTranslate(t *testing.T) {
	f := newFixture(t)
	a := area(t, "A", Unbounded(), NewSegment("", f.prism(0, 0, 1000, 1000, 0, 500), window(t, t0, t1)))
	sc := NewSpatialConstraints([]Area{a}, nil, nil)
	pos := f.at(500, 500, 10)

	moved := sc.Translate(24 * time.Hour)
	assert.True(t, sc.Within(pos, t0))
	assert.False(t, moved.Within(pos, t0))
	assert.True(t, moved.Within(pos, t0.Add(24*time.Hour)))
}

func TestConcurrentEvaluation(t *testing.T) {
	f := newFixture(t)
	a := area(t, "A", Unbounded(), NewSegment("", f.prism(0, 0, 1000, 1000, 0, 500), Unbounded()))
	sc := NewSpatialConstraints([]Area{a}, nil, nil)
	in, out := f.at(500, 500, 10), f.at(1500, 500, 10)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.True(t, sc.Within(in, t0))
				assert.False(t, sc.Within(out, t0))
			}
		}()
	}
	wg.Wait()
}
