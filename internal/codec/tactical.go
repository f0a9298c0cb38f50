package codec

import (
	"github.com/beevik/etree"

	"github.com/westpoint-robotics/ros-cot/internal/tactical"
)

// setTimeAttrs writes the set bounds of tc as startingTime/endingTime.
func setTimeAttrs(el *etree.Element, tc tactical.TimeConstraints) {
	if tc.HasStart() {
		el.CreateAttr("startingTime", FormatTime(tc.Start()))
	}
	if tc.HasEnd() {
		el.CreateAttr("endingTime", FormatTime(tc.End()))
	}
}

// DecodeTimeConstraints reads the startingTime/endingTime attributes of el.
// Missing attributes and the unset sentinels leave that side open.
func DecodeTimeConstraints(el *etree.Element) (tactical.TimeConstraints, error) {
	start, err := timeAttr(el, "startingTime")
	if err != nil {
		return tactical.TimeConstraints{}, err
	}
	end, err := timeAttr(el, "endingTime")
	if err != nil {
		return tactical.TimeConstraints{}, err
	}
	tc, err := tactical.NewTimeConstraints(start, end)
	return tc, wrap(el, err)
}

// DecodeExpectedTimeConstraints also reads the expectedTime attribute.
func DecodeExpectedTimeConstraints(el *etree.Element) (tactical.ExpectedTimeConstraints, error) {
	tc, err := DecodeTimeConstraints(el)
	if err != nil {
		return tactical.ExpectedTimeConstraints{}, err
	}
	expected, err := timeAttr(el, "expectedTime")
	if err != nil {
		return tactical.ExpectedTimeConstraints{}, err
	}
	e, err := tactical.NewExpectedTimeConstraints(expected, tc)
	return e, wrap(el, err)
}

// EncodeSegment writes a segment as a prism element with identifier and time
// attributes.
func EncodeSegment(parent *etree.Element, name string, s tactical.Segment) *etree.Element {
	el := EncodeGeoPrism(parent, name, s.Prism())
	el.CreateAttr("Identifier", s.ID())
	setTimeAttrs(el, s.Window())
	return el
}

// DecodeSegment parses an element written by EncodeSegment.
func DecodeSegment(el *etree.Element) (tactical.Segment, error) {
	prism, err := DecodeGeoPrism(el)
	if err != nil {
		return tactical.Segment{}, err
	}
	tc, err := DecodeTimeConstraints(el)
	if err != nil {
		return tactical.Segment{}, err
	}
	return tactical.NewSegment(el.SelectAttrValue("Identifier", ""), prism, tc), nil
}

// EncodeArea writes an area with one TacticalSegment child per segment.
func EncodeArea(parent *etree.Element, name string, a tactical.Area) *etree.Element {
	el := parent.CreateElement(name)
	el.CreateAttr("Identifier", a.ID())
	setTimeAttrs(el, a.Window())
	for _, s := range a.Segments() {
		EncodeSegment(el, "TacticalSegment", s)
	}
	return el
}

// DecodeArea parses an element written by EncodeArea. Every child element is
// read as a segment.
func DecodeArea(el *etree.Element) (tactical.Area, error) {
	tc, err := DecodeTimeConstraints(el)
	if err != nil {
		return tactical.Area{}, err
	}
	var segments []tactical.Segment
	for _, c := range el.ChildElements() {
		s, err := DecodeSegment(c)
		if err != nil {
			return tactical.Area{}, err
		}
		segments = append(segments, s)
	}
	a, err := tactical.NewArea(el.SelectAttrValue("Identifier", ""), tc, segments...)
	return a, wrap(el, err)
}

// EncodeWarningArea writes a warning area with its classification attributes
// and TacticalArea children.
func EncodeWarningArea(parent *etree.Element, name string, w tactical.WarningArea) *etree.Element {
	el := parent.CreateElement(name)
	el.CreateAttr("Identifier", w.ID())
	el.CreateAttr("Warning", w.Primary().String())
	if w.HasSecondary() {
		el.CreateAttr("SecondaryWarning", w.Secondary().String())
	}
	for _, a := range w.Areas() {
		EncodeArea(el, "TacticalArea", a)
	}
	return el
}

// DecodeWarningArea parses an element written by EncodeWarningArea.
func DecodeWarningArea(el *etree.Element) (tactical.WarningArea, error) {
	primaryName, err := attr(el, "Warning")
	if err != nil {
		return tactical.WarningArea{}, err
	}
	primary, err := tactical.ParseWarning(primaryName)
	if err != nil {
		return tactical.WarningArea{}, wrap(el, err)
	}
	secondary := tactical.WarningNone
	if s := el.SelectAttrValue("SecondaryWarning", ""); s != "" {
		if secondary, err = tactical.ParseWarning(s); err != nil {
			return tactical.WarningArea{}, wrap(el, err)
		}
	}
	var areas []tactical.Area
	for _, c := range el.SelectElements("TacticalArea") {
		a, err := DecodeArea(c)
		if err != nil {
			return tactical.WarningArea{}, err
		}
		areas = append(areas, a)
	}
	w, err := tactical.NewWarningArea(el.SelectAttrValue("Identifier", ""), primary, secondary, areas...)
	return w, wrap(el, err)
}

// EncodeSpatialConstraints writes InclusionAreas, then ExclusionAreas and
// WarningAreas when they are not empty.
func EncodeSpatialConstraints(parent *etree.Element, name string, sc *tactical.SpatialConstraints) *etree.Element {
	el := parent.CreateElement(name)
	inc := el.CreateElement("InclusionAreas")
	for _, a := range sc.Inclusions() {
		EncodeArea(inc, "TacticalArea", a)
	}
	if exclusions := sc.Exclusions(); len(exclusions) > 0 {
		exc := el.CreateElement("ExclusionAreas")
		for _, a := range exclusions {
			EncodeArea(exc, "TacticalArea", a)
		}
	}
	if warnings := sc.WarningAreas(); len(warnings) > 0 {
		wa := el.CreateElement("WarningAreas")
		for _, w := range warnings {
			EncodeWarningArea(wa, "WarningArea", w)
		}
	}
	return el
}

// DecodeSpatialConstraints parses an element written by
// EncodeSpatialConstraints. It requires exactly one InclusionAreas child and
// at most one each of ExclusionAreas and WarningAreas.
func DecodeSpatialConstraints(el *etree.Element) (*tactical.SpatialConstraints, error) {
	incs := el.SelectElements("InclusionAreas")
	if len(incs) != 1 {
		return nil, malformed(el, "want exactly 1 <InclusionAreas>, got %d", len(incs))
	}
	inclusions, err := decodeAreas(incs[0])
	if err != nil {
		return nil, err
	}

	var exclusions []tactical.Area
	switch excs := el.SelectElements("ExclusionAreas"); len(excs) {
	case 0:
	case 1:
		if exclusions, err = decodeAreas(excs[0]); err != nil {
			return nil, err
		}
	default:
		return nil, malformed(el, "want at most 1 <ExclusionAreas>, got %d", len(excs))
	}

	var warnings []tactical.WarningArea
	switch was := el.SelectElements("WarningAreas"); len(was) {
	case 0:
	case 1:
		for _, c := range was[0].ChildElements() {
			w, err := DecodeWarningArea(c)
			if err != nil {
				return nil, err
			}
			warnings = append(warnings, w)
		}
	default:
		return nil, malformed(el, "want at most 1 <WarningAreas>, got %d", len(was))
	}

	return tactical.NewSpatialConstraints(inclusions, exclusions, warnings), nil
}

func decodeAreas(el *etree.Element) ([]tactical.Area, error) {
	var out []tactical.Area
	for _, c := range el.ChildElements() {
		a, err := DecodeArea(c)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
