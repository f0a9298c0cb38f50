package tactical

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/westpoint-robotics/ros-cot/internal/geodetic"
	"github.com/westpoint-robotics/ros-cot/internal/polygon"
	"github.com/westpoint-robotics/ros-cot/internal/units"
)

// DefaultWaypointID labels waypoints built without an identifier.
const DefaultWaypointID = "(anonymous)"

var (
	// ErrNoCrossTrackLimit is returned when a corridor is requested for a
	// leg without a positive cross-track limit.
	ErrNoCrossTrackLimit = errors.New("path segment has no cross-track limit")
	// ErrDegenerateLeg is returned when a leg starts and ends at the same
	// horizontal position.
	ErrDegenerateLeg = errors.New("path leg has no horizontal length")
)

// Waypoint is a planned position with the window it should be reached in.
type Waypoint struct {
	id       string
	position geodetic.Coordinate3D
	times    ExpectedTimeConstraints
}

// NewWaypoint builds a waypoint. An empty id becomes DefaultWaypointID.
func NewWaypoint(id string, position geodetic.Coordinate3D, times ExpectedTimeConstraints) Waypoint {
	if id == "" {
		id = DefaultWaypointID
	}
	return Waypoint{id: id, position: position, times: times}
}

func (w Waypoint) ID() string                               { return w.id }
func (w Waypoint) Position() geodetic.Coordinate3D          { return w.position }
func (w Waypoint) TimeConstraints() ExpectedTimeConstraints { return w.times }

// Translate shifts the waypoint's window and expected time by d.
func (w Waypoint) Translate(d time.Duration) Waypoint {
	w.times = w.times.Translate(d)
	return w
}

// AltitudeLimits bounds a leg vertically. The zero value leaves both sides
// open.
type AltitudeLimits struct {
	min, max       units.Altitude
	hasMin, hasMax bool
}

// NewAltitudeLimits bounds both sides; min must be strictly below max and
// share its reference.
func NewAltitudeLimits(min, max units.Altitude) (AltitudeLimits, error) {
	if min.Reference != max.Reference || !(min.Meters() < max.Meters()) {
		return AltitudeLimits{}, fmt.Errorf("%w: %s to %s", polygon.ErrInvalidAltitudeBand, min, max)
	}
	return AltitudeLimits{min: min, max: max, hasMin: true, hasMax: true}, nil
}

// AltitudeAtLeast bounds only the floor.
func AltitudeAtLeast(min units.Altitude) AltitudeLimits {
	return AltitudeLimits{min: min, hasMin: true}
}

// AltitudeAtMost bounds only the ceiling.
func AltitudeAtMost(max units.Altitude) AltitudeLimits {
	return AltitudeLimits{max: max, hasMax: true}
}

func (l AltitudeLimits) Min() (units.Altitude, bool) { return l.min, l.hasMin }
func (l AltitudeLimits) Max() (units.Altitude, bool) { return l.max, l.hasMax }
func (l AltitudeLimits) IsBounded() bool             { return l.hasMin || l.hasMax }

// band returns the limits as a closed interval, filling open sides with the
// largest representable altitude.
func (l AltitudeLimits) band() (min, max units.Altitude) {
	ref := units.WGS84
	switch {
	case l.hasMin:
		ref = l.min.Reference
	case l.hasMax:
		ref = l.max.Reference
	}
	min = units.Altitude{Distance: units.New(-math.MaxFloat64, units.Meters), Reference: ref}
	max = units.Altitude{Distance: units.New(math.MaxFloat64, units.Meters), Reference: ref}
	if l.hasMin {
		min = l.min
	}
	if l.hasMax {
		max = l.max
	}
	return min, max
}

// PathSegment is a leg of a planned path. It ends at its waypoint and starts
// wherever the previous leg ended.
type PathSegment struct {
	Waypoint
	crossTrack units.NonNegativeDistance
	hasLimit   bool
	altitude   AltitudeLimits
}

// NewPathSegment builds a leg ending at end with no cross-track limit.
func NewPathSegment(end Waypoint, altitude AltitudeLimits) PathSegment {
	return PathSegment{Waypoint: end, altitude: altitude}
}

// WithCrossTrackLimit returns a copy of p that may stray at most limit from
// its track line.
func (p PathSegment) WithCrossTrackLimit(limit units.NonNegativeDistance) PathSegment {
	p.crossTrack = limit
	p.hasLimit = true
	return p
}

func (p PathSegment) CrossTrackLimit() (units.NonNegativeDistance, bool) {
	return p.crossTrack, p.hasLimit
}

func (p PathSegment) AltitudeLimits() AltitudeLimits { return p.altitude }

// Translate shifts the leg's waypoint times by d.
func (p PathSegment) Translate(d time.Duration) PathSegment {
	p.Waypoint = p.Waypoint.Translate(d)
	return p
}

// Corridor returns the tactical segment a vehicle flying from `from` to p
// must stay in: the track line widened by the cross-track limit on both
// sides, extruded through the altitude limits, and active from the start of
// from's window to the end of p's.
func (p PathSegment) Corridor(from Waypoint) (Segment, error) {
	if !p.hasLimit || p.crossTrack.Value(units.Meters) == 0 {
		return Segment{}, fmt.Errorf("%w: leg to %q", ErrNoCrossTrackLimit, p.id)
	}
	o, err := geodetic.NewOrigin(from.position)
	if err != nil {
		return Segment{}, err
	}
	if o.GeodeticToENU(p.position).XY().Norm() == 0 {
		return Segment{}, fmt.Errorf("%w: %q to %q", ErrDegenerateLeg, from.id, p.id)
	}
	ct, err := geodetic.CrossTrack2D(from.position, p.position, p.crossTrack)
	if err != nil {
		return Segment{}, err
	}
	footprint, err := polygon.NewGeo([]geodetic.Coordinate{
		ct.Right.Start.Coordinate,
		ct.Right.End.Coordinate,
		ct.Left.End.Coordinate,
		ct.Left.Start.Coordinate,
	})
	if err != nil {
		return Segment{}, err
	}
	floor, ceiling := p.altitude.band()
	prism, err := polygon.NewGeoPrism(footprint, floor, ceiling)
	if err != nil {
		return Segment{}, err
	}
	window, err := NewTimeConstraints(from.times.Start(), p.times.End())
	if err != nil {
		return Segment{}, fmt.Errorf("leg %q to %q: %w", from.id, p.id, err)
	}
	return NewSegment(p.id, prism, window), nil
}

// NewPathArea builds an area with one corridor per leg, starting at start.
// A position is in the area while it is in the corridor of any active leg.
func NewPathArea(id string, start Waypoint, legs ...PathSegment) (Area, error) {
	segs := make([]Segment, 0, len(legs))
	from := start
	for _, leg := range legs {
		s, err := leg.Corridor(from)
		if err != nil {
			return Area{}, err
		}
		segs = append(segs, s)
		from = leg.Waypoint
	}
	return NewArea(id, Unbounded(), segs...)
}
