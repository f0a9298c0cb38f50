package tactical

import (
	"time"

	"github.com/westpoint-robotics/ros-cot/internal/geodetic"
)

// SpatialConstraints is the full set of mission regions a position is judged
// against.
type SpatialConstraints struct {
	inclusions []Area
	exclusions []Area
	warnings   []WarningArea
	index      *Index
}

// NewSpatialConstraints copies the given areas and indexes them. With no
// inclusion areas every position not excluded is allowed.
func NewSpatialConstraints(inclusions, exclusions []Area, warnings []WarningArea) *SpatialConstraints {
	sc := &SpatialConstraints{
		inclusions: append([]Area(nil), inclusions...),
		exclusions: append([]Area(nil), exclusions...),
		warnings:   append([]WarningArea(nil), warnings...),
	}
	sc.index = newIndex(sc.inclusions, sc.exclusions, sc.warnings)
	return sc
}

func (sc *SpatialConstraints) Inclusions() []Area          { return append([]Area(nil), sc.inclusions...) }
func (sc *SpatialConstraints) Exclusions() []Area          { return append([]Area(nil), sc.exclusions...) }
func (sc *SpatialConstraints) WarningAreas() []WarningArea { return append([]WarningArea(nil), sc.warnings...) }
func (sc *SpatialConstraints) Index() *Index               { return sc.index }

// Translate returns a copy with every time window shifted by d.
func (sc *SpatialConstraints) Translate(d time.Duration) *SpatialConstraints {
	out := &SpatialConstraints{
		inclusions: make([]Area, len(sc.inclusions)),
		exclusions: make([]Area, len(sc.exclusions)),
		warnings:   make([]WarningArea, len(sc.warnings)),
		index:      sc.index,
	}
	for i, a := range sc.inclusions {
		out.inclusions[i] = a.Translate(d)
	}
	for i, a := range sc.exclusions {
		out.exclusions[i] = a.Translate(d)
	}
	for i, w := range sc.warnings {
		out.warnings[i] = w.Translate(d)
	}
	return out
}

// Within reports whether c at t lies in every inclusion area and in no
// exclusion area. Warning areas are not consulted.
func (sc *SpatialConstraints) Within(c geodetic.Coordinate3D, t time.Time) bool {
	cand := sc.index.candidates(c.Coordinate)
	for i, a := range sc.inclusions {
		if !cand.has(KindInclusion, i) || !a.Within(c, t) {
			return false
		}
	}
	for i, a := range sc.exclusions {
		if cand.has(KindExclusion, i) && a.Within(c, t) {
			return false
		}
	}
	return true
}

// WarningsAt returns the warning areas containing c at t.
func (sc *SpatialConstraints) WarningsAt(c geodetic.Coordinate3D, t time.Time) []WarningArea {
	return sc.warningsAt(sc.index.candidates(c.Coordinate), c, t)
}

func (sc *SpatialConstraints) warningsAt(cand candidates, c geodetic.Coordinate3D, t time.Time) []WarningArea {
	var out []WarningArea
	for i, w := range sc.warnings {
		if cand.has(KindWarning, i) && w.Within(c, t) {
			out = append(out, w)
		}
	}
	return out
}

// WarningHit describes a warning area that contains the queried position.
type WarningHit struct {
	ID        string  `json:"id"`
	Primary   Warning `json:"primary"`
	Secondary Warning `json:"secondary"`
}

// Verdict explains a containment decision.
type Verdict struct {
	Allowed bool `json:"allowed"`
	// UnsatisfiedInclusions lists inclusion areas the position is not in.
	UnsatisfiedInclusions []string `json:"unsatisfied_inclusions"`
	// ViolatedExclusions lists exclusion areas the position is in.
	ViolatedExclusions []string     `json:"violated_exclusions"`
	Warnings           []WarningHit `json:"warnings"`
}

// Verdict evaluates every area rather than stopping at the first failure.
// Allowed always agrees with Within.
func (sc *SpatialConstraints) Verdict(c geodetic.Coordinate3D, t time.Time) Verdict {
	cand := sc.index.candidates(c.Coordinate)
	v := Verdict{
		UnsatisfiedInclusions: []string{},
		ViolatedExclusions:    []string{},
		Warnings:              []WarningHit{},
	}
	for i, a := range sc.inclusions {
		if !cand.has(KindInclusion, i) || !a.Within(c, t) {
			v.UnsatisfiedInclusions = append(v.UnsatisfiedInclusions, a.id)
		}
	}
	for i, a := range sc.exclusions {
		if cand.has(KindExclusion, i) && a.Within(c, t) {
			v.ViolatedExclusions = append(v.ViolatedExclusions, a.id)
		}
	}
	for _, w := range sc.warningsAt(cand, c, t) {
		v.Warnings = append(v.Warnings, WarningHit{ID: w.id, Primary: w.primary, Secondary: w.secondary})
	}
	v.Allowed = len(v.UnsatisfiedInclusions) == 0 && len(v.ViolatedExclusions) == 0
	return v
}
