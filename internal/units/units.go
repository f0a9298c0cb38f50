// Package units models physical quantities whose magnitude is always stored in
// one canonical unit per category. A Quantity remembers the unit it was built
// with so it can be displayed and serialized the way it was given.
package units

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrUnknownUnit is returned when a unit name is not part of a category's vocabulary.
	ErrUnknownUnit = errors.New("unknown unit")
	// ErrNegativeValue is returned when a non-negative quantity would become negative.
	ErrNegativeValue = errors.New("value must be non-negative")
)

// UnknownUnitError reports a unit string that could not be resolved.
type UnknownUnitError struct {
	Category string
	Name     string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("unknown %s unit %q", e.Category, e.Name)
}

func (e *UnknownUnitError) Unwrap() error { return ErrUnknownUnit }

// Category is implemented by the tag types in this package. The method set is
// unexported so the set of categories is closed.
type Category interface {
	comparable
	table() *unitTable
}

type unitDef struct {
	name   string
	scale  float64 // canonical = value*scale + offset
	offset float64
}

func (d unitDef) toCanonical(v float64) float64   { return v*d.scale + d.offset }
func (d unitDef) fromCanonical(v float64) float64 { return (v - d.offset) / d.scale }

type unitTable struct {
	category string
	units    []unitDef
	// display is the index used when a quantity has no explicit preference.
	display uint8
	// normalize, when set, is applied after arithmetic. Index 0 is always the
	// canonical unit.
	normalize func(float64) float64
}

// Unit identifies one entry of a category's unit table. The zero value is the
// category's canonical unit, so every Unit value is valid.
type Unit[C Category] struct {
	idx uint8
}

func tableOf[C Category]() *unitTable {
	var c C
	return c.table()
}

func (u Unit[C]) def() unitDef {
	return tableOf[C]().units[u.idx]
}

// Name returns the serialized spelling of the unit, e.g. "NauticalMiles".
func (u Unit[C]) Name() string { return u.def().name }

func (u Unit[C]) String() string { return u.Name() }

// Category returns the physical category the unit belongs to.
func (u Unit[C]) Category() string { return tableOf[C]().category }

// Units lists every unit of category C in table order.
func Units[C Category]() []Unit[C] {
	t := tableOf[C]()
	out := make([]Unit[C], len(t.units))
	for i := range t.units {
		out[i] = Unit[C]{idx: uint8(i)}
	}
	return out
}

// DisplayUnit returns the unit a category prefers for display when none was given.
func DisplayUnit[C Category]() Unit[C] {
	return Unit[C]{idx: tableOf[C]().display}
}

// ParseUnit resolves a unit name case-insensitively. Surrounding whitespace
// is not ignored.
func ParseUnit[C Category](name string) (Unit[C], error) {
	t := tableOf[C]()
	for i, d := range t.units {
		if strings.EqualFold(d.name, name) {
			return Unit[C]{idx: uint8(i)}, nil
		}
	}
	return Unit[C]{}, &UnknownUnitError{Category: t.category, Name: name}
}

// ParseUnitExact resolves a unit name requiring an exact, case-sensitive match.
// Used for serialized documents, whose vocabulary is fixed.
func ParseUnitExact[C Category](name string) (Unit[C], error) {
	t := tableOf[C]()
	for i, d := range t.units {
		if d.name == name {
			return Unit[C]{idx: uint8(i)}, nil
		}
	}
	return Unit[C]{}, &UnknownUnitError{Category: t.category, Name: name}
}

// DegreesToRadians converts an angle in degrees to radians.
func DegreesToRadians(deg float64) float64 { return deg * math.Pi / 180 }

// RadiansToDegrees converts an angle in radians to degrees.
func RadiansToDegrees(rad float64) float64 { return rad * 180 / math.Pi }

// NormalizeRadians wraps an angle into [-pi, pi).
func NormalizeRadians(rad float64) float64 {
	if math.IsNaN(rad) || math.IsInf(rad, 0) {
		return rad
	}
	r := math.Mod(rad+math.Pi, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return r - math.Pi
}
