package tactical

import (
	"errors"
	"fmt"
	"time"

	"github.com/westpoint-robotics/ros-cot/internal/geodetic"
)

// DefaultAreaID labels areas built without an identifier.
const DefaultAreaID = "TacticalArea"

// ErrEmptyArea is returned when an area is built without segments.
var ErrEmptyArea = errors.New("tactical area needs at least one segment")

// Area is an ordered group of segments that count as one region.
type Area struct {
	id       string
	window   TimeConstraints
	segments []Segment
}

// NewArea builds an area from at least one segment. A bounded window takes
// precedence over the segments' own windows during evaluation.
func NewArea(id string, window TimeConstraints, segments ...Segment) (Area, error) {
	if len(segments) == 0 {
		return Area{}, fmt.Errorf("%w: area %q", ErrEmptyArea, id)
	}
	if id == "" {
		id = DefaultAreaID
	}
	cp := make([]Segment, len(segments))
	copy(cp, segments)
	return Area{id: id, window: window, segments: cp}, nil
}

func (a Area) ID() string              { return a.id }
func (a Area) Window() TimeConstraints { return a.window }
func (a Area) Len() int                { return len(a.segments) }
func (a Area) Segment(i int) Segment   { return a.segments[i] }
func (a Area) Segments() []Segment     { return append([]Segment(nil), a.segments...) }

// Translate shifts the area window and every segment window by d.
func (a Area) Translate(d time.Duration) Area {
	out := Area{id: a.id, window: a.window.Translate(d), segments: make([]Segment, len(a.segments))}
	for i, s := range a.segments {
		out.segments[i] = s.Translate(d)
	}
	return out
}

// Within reports whether c at t falls in the area. With a bounded area window
// the test is that window plus spatial membership in any segment; otherwise it
// is true when any segment's own Within is true.
func (a Area) Within(c geodetic.Coordinate3D, t time.Time) bool {
	if a.window.IsBounded() {
		return a.window.Contains(t) && a.containsSpatially(c)
	}
	for _, s := range a.segments {
		if s.Within(c, t) {
			return true
		}
	}
	return false
}

func (a Area) containsSpatially(c geodetic.Coordinate3D) bool {
	for _, s := range a.segments {
		if s.prism.Contains(c) {
			return true
		}
	}
	return false
}
