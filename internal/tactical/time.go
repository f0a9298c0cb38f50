package tactical

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimeWindow is returned for windows whose start is not before their
// end, and for expected times outside their window.
var ErrInvalidTimeWindow = errors.New("invalid time window")

// TimeConstraints is a closed time interval. A zero bound is unset and leaves
// that side of the window open.
type TimeConstraints struct {
	start, end time.Time
}

// Unbounded returns a window with neither bound set.
func Unbounded() TimeConstraints { return TimeConstraints{} }

// NewTimeConstraints builds a window. Pass the zero time for an open side.
func NewTimeConstraints(start, end time.Time) (TimeConstraints, error) {
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		return TimeConstraints{}, fmt.Errorf("%w: start %s is not before end %s",
			ErrInvalidTimeWindow, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeConstraints{start: start, end: end}, nil
}

func (tc TimeConstraints) Start() time.Time { return tc.start }
func (tc TimeConstraints) End() time.Time   { return tc.end }
func (tc TimeConstraints) HasStart() bool   { return !tc.start.IsZero() }
func (tc TimeConstraints) HasEnd() bool     { return !tc.end.IsZero() }

// IsBounded reports whether at least one side of the window is set.
func (tc TimeConstraints) IsBounded() bool { return tc.HasStart() || tc.HasEnd() }

// WithStart replaces the starting bound.
func (tc TimeConstraints) WithStart(start time.Time) (TimeConstraints, error) {
	return NewTimeConstraints(start, tc.end)
}

// WithEnd replaces the ending bound.
func (tc TimeConstraints) WithEnd(end time.Time) (TimeConstraints, error) {
	return NewTimeConstraints(tc.start, end)
}

// Contains reports whether t lies in the window. Both bounds are inclusive.
func (tc TimeConstraints) Contains(t time.Time) bool {
	if tc.HasStart() && t.Before(tc.start) {
		return false
	}
	if tc.HasEnd() && t.After(tc.end) {
		return false
	}
	return true
}

// Intersects reports whether the two closed windows share an instant.
func (tc TimeConstraints) Intersects(o TimeConstraints) bool {
	if tc.HasStart() && o.HasEnd() && o.end.Before(tc.start) {
		return false
	}
	if o.HasStart() && tc.HasEnd() && tc.end.Before(o.start) {
		return false
	}
	return true
}

// Translate shifts every set bound by d.
func (tc TimeConstraints) Translate(d time.Duration) TimeConstraints {
	if tc.HasStart() {
		tc.start = tc.start.Add(d)
	}
	if tc.HasEnd() {
		tc.end = tc.end.Add(d)
	}
	return tc
}

func (tc TimeConstraints) String() string {
	return fmt.Sprintf("[%s, %s]", formatBound(tc.start, "-inf"), formatBound(tc.end, "+inf"))
}

func formatBound(t time.Time, unset string) string {
	if t.IsZero() {
		return unset
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// ExpectedTimeConstraints is a window plus an optional expected instant that
// must fall inside it.
type ExpectedTimeConstraints struct {
	TimeConstraints
	expected time.Time
}

// NewExpectedTimeConstraints validates expected against the window.
func NewExpectedTimeConstraints(expected time.Time, window TimeConstraints) (ExpectedTimeConstraints, error) {
	if !expected.IsZero() && !window.Contains(expected) {
		return ExpectedTimeConstraints{}, fmt.Errorf("%w: expected time %s outside %s",
			ErrInvalidTimeWindow, expected.Format(time.RFC3339), window)
	}
	return ExpectedTimeConstraints{TimeConstraints: window, expected: expected}, nil
}

func (e ExpectedTimeConstraints) Expected() time.Time { return e.expected }
func (e ExpectedTimeConstraints) HasExpected() bool   { return !e.expected.IsZero() }

// Translate shifts the window and the expected instant by d.
func (e ExpectedTimeConstraints) Translate(d time.Duration) ExpectedTimeConstraints {
	out := ExpectedTimeConstraints{TimeConstraints: e.TimeConstraints.Translate(d), expected: e.expected}
	if e.HasExpected() {
		out.expected = e.expected.Add(d)
	}
	return out
}
