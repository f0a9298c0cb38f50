// Package tactical evaluates space-time positions against mission regions.
//
// A Segment is a geodetic prism with a time window. An Area is an OR over its
// segments, optionally overridden by an area-wide window. SpatialConstraints
// combines areas as a product of sums: a position is allowed when it lies in
// every inclusion area and in no exclusion area. Warning areas are reported
// alongside but never change that verdict.
//
// All types are immutable after construction and safe for concurrent use.
package tactical

import (
	"time"

	"github.com/westpoint-robotics/ros-cot/internal/geodetic"
	"github.com/westpoint-robotics/ros-cot/internal/polygon"
)

// DefaultSegmentID labels segments built without an identifier.
const DefaultSegmentID = "(unlabeled)"

// Segment is a prism that is only active during its time window.
type Segment struct {
	id     string
	prism  polygon.GeoPrism
	window TimeConstraints
}

// NewSegment builds a segment. An empty id becomes DefaultSegmentID.
func NewSegment(id string, prism polygon.GeoPrism, window TimeConstraints) Segment {
	if id == "" {
		id = DefaultSegmentID
	}
	return Segment{id: id, prism: prism, window: window}
}

func (s Segment) ID() string              { return s.id }
func (s Segment) Prism() polygon.GeoPrism { return s.prism }
func (s Segment) Window() TimeConstraints { return s.window }

// WithWindow returns a copy of s active during tc.
func (s Segment) WithWindow(tc TimeConstraints) Segment {
	s.window = tc
	return s
}

// Translate shifts the segment's window by d.
func (s Segment) Translate(d time.Duration) Segment {
	s.window = s.window.Translate(d)
	return s
}

// Within reports whether c lies in the prism while t lies in the window.
func (s Segment) Within(c geodetic.Coordinate3D, t time.Time) bool {
	return s.window.Contains(t) && s.prism.Contains(c)
}

// WithinExpected tests c against the prism and a planned arrival described
// by q:
//   - expected time only: the segment window must contain it.
//   - window only: the segment window must intersect it.
//   - both: the expected time must lie in both windows, and the windows must
//     intersect.
//   - neither: only an always-active segment matches.
func (s Segment) WithinExpected(c geodetic.Coordinate3D, q ExpectedTimeConstraints) bool {
	var ok bool
	switch {
	case q.HasExpected() && !q.IsBounded():
		ok = s.window.Contains(q.expected)
	case !q.HasExpected() && q.IsBounded():
		ok = s.window.Intersects(q.TimeConstraints)
	case q.HasExpected():
		ok = q.TimeConstraints.Contains(q.expected) &&
			s.window.Contains(q.expected) &&
			s.window.Intersects(q.TimeConstraints)
	default:
		ok = !s.window.IsBounded()
	}
	return ok && s.prism.Contains(c)
}
