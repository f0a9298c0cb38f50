// Package codec reads and writes mission data as XML element trees.
//
// Every value type has an Encode function that appends a named child to a
// parent element and a Decode function that rebuilds a validated value from
// an element. Scalar quantities keep their magnitude in the element text and
// their unit in a case-sensitive Units attribute. Composite types nest
// children in the order they are parsed. Identifiers and time bounds are
// attributes.
package codec

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/westpoint-robotics/ros-cot/internal/units"
)

// ErrMalformedTree is returned when an expected element or attribute is
// missing or cannot be parsed.
var ErrMalformedTree = errors.New("malformed tree")

// TreeError locates a decoding failure in the document.
type TreeError struct {
	Path   string
	Reason string
}

func (e *TreeError) Error() string {
	return fmt.Sprintf("%s at %s: %s", ErrMalformedTree, e.Path, e.Reason)
}

func (e *TreeError) Unwrap() error { return ErrMalformedTree }

func malformed(el *etree.Element, format string, args ...any) error {
	path := "<nil>"
	if el != nil {
		path = el.GetPath()
	}
	return &TreeError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// wrap adds the element path to an error raised by a value constructor.
func wrap(el *etree.Element, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", el.GetPath(), err)
}

func child(el *etree.Element, tag string) (*etree.Element, error) {
	c := el.SelectElement(tag)
	if c == nil {
		return nil, malformed(el, "missing <%s>", tag)
	}
	return c, nil
}

func attr(el *etree.Element, key string) (string, error) {
	a := el.SelectAttr(key)
	if a == nil {
		return "", malformed(el, "missing %s attribute", key)
	}
	return a.Value, nil
}

// EncodeQuantity appends <name Units="...">value</name> to parent, written in
// the quantity's preferred unit.
func EncodeQuantity[C units.Category](parent *etree.Element, name string, q units.Quantity[C]) *etree.Element {
	el := parent.CreateElement(name)
	el.SetText(units.FormatFloat(q.PreferredValue()))
	el.CreateAttr("Units", q.Preferred().Name())
	return el
}

// DecodeQuantity parses an element written by EncodeQuantity.
func DecodeQuantity[C units.Category](el *etree.Element) (units.Quantity[C], error) {
	name, err := attr(el, "Units")
	if err != nil {
		return units.Quantity[C]{}, err
	}
	u, err := units.ParseUnitExact[C](name)
	if err != nil {
		return units.Quantity[C]{}, wrap(el, err)
	}
	v, err := units.ParseFloat(strings.TrimSpace(el.Text()))
	if err != nil {
		return units.Quantity[C]{}, malformed(el, "bad magnitude %q", el.Text())
	}
	return units.New(v, u), nil
}

// EncodeAltitude writes an altitude like a distance plus an AltitudeReference
// attribute when the reference is not WGS84.
func EncodeAltitude(parent *etree.Element, name string, a units.Altitude) *etree.Element {
	el := EncodeQuantity(parent, name, a.Distance)
	if a.Reference != units.WGS84 {
		el.CreateAttr("AltitudeReference", a.Reference.String())
	}
	return el
}

// DecodeAltitude parses an element written by EncodeAltitude.
func DecodeAltitude(el *etree.Element) (units.Altitude, error) {
	d, err := DecodeQuantity[units.LengthCategory](el)
	if err != nil {
		return units.Altitude{}, err
	}
	alt := units.Altitude{Distance: d, Reference: units.WGS84}
	if a := el.SelectAttr("AltitudeReference"); a != nil {
		ref, err := units.ParseAltitudeReference(a.Value)
		if err != nil {
			return units.Altitude{}, wrap(el, err)
		}
		alt.Reference = ref
	}
	return alt, nil
}

const (
	notADateTime   = "not-a-date-time"
	negInfinity    = "-infinity"
	posInfinity    = "+infinity"
	isoExtended    = "2006-01-02T15:04:05.999999999"
	isoExtendedUTC = time.RFC3339Nano
)

// FormatTime renders t in ISO-8601 extended format, or "not-a-date-time"
// when t is unset.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return notADateTime
	}
	return t.UTC().Format(isoExtendedUTC)
}

// ParseTime accepts ISO-8601 extended timestamps with or without a zone
// (zoneless values are UTC). The unset sentinels and the empty string return
// the zero time.
func ParseTime(s string) (time.Time, error) {
	switch strings.TrimSpace(s) {
	case "", notADateTime, negInfinity, posInfinity:
		return time.Time{}, nil
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(isoExtendedUTC, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(isoExtended, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func timeAttr(el *etree.Element, key string) (time.Time, error) {
	a := el.SelectAttr(key)
	if a == nil {
		return time.Time{}, nil
	}
	t, err := ParseTime(a.Value)
	if err != nil {
		return time.Time{}, malformed(el, "%s: %v", key, err)
	}
	return t, nil
}
