package units

import (
	"fmt"
	"math"
	"strconv"
)

// Quantity is a magnitude of category C stored in the category's canonical
// unit. The preferred unit only affects display and serialization.
type Quantity[C Category] struct {
	canonical float64
	preferred Unit[C]
}

// New builds a quantity from a magnitude expressed in u.
func New[C Category](v float64, u Unit[C]) Quantity[C] {
	return Quantity[C]{canonical: u.def().toCanonical(v), preferred: u}
}

// Parse builds a quantity from a magnitude and a unit name looked up
// case-insensitively.
func Parse[C Category](v float64, unit string) (Quantity[C], error) {
	u, err := ParseUnit[C](unit)
	if err != nil {
		return Quantity[C]{}, err
	}
	return New(v, u), nil
}

// Value returns the magnitude expressed in u.
func (q Quantity[C]) Value(u Unit[C]) float64 {
	return u.def().fromCanonical(q.canonical)
}

// Canonical returns the magnitude in the category's canonical unit.
func (q Quantity[C]) Canonical() float64 { return q.canonical }

// Preferred returns the unit the quantity was built with.
func (q Quantity[C]) Preferred() Unit[C] { return q.preferred }

// PreferredValue returns the magnitude in the preferred unit.
func (q Quantity[C]) PreferredValue() float64 { return q.Value(q.preferred) }

// WithPreferred returns the same quantity tagged with a different display unit.
func (q Quantity[C]) WithPreferred(u Unit[C]) Quantity[C] {
	q.preferred = u
	return q
}

func (q Quantity[C]) normalized() Quantity[C] {
	if n := tableOf[C]().normalize; n != nil {
		q.canonical = n(q.canonical)
	}
	return q
}

// Add returns q+o, keeping q's preferred unit.
func (q Quantity[C]) Add(o Quantity[C]) Quantity[C] {
	return Quantity[C]{canonical: q.canonical + o.canonical, preferred: q.preferred}.normalized()
}

// Sub returns q-o, keeping q's preferred unit.
func (q Quantity[C]) Sub(o Quantity[C]) Quantity[C] {
	return Quantity[C]{canonical: q.canonical - o.canonical, preferred: q.preferred}.normalized()
}

// Mul scales q by x.
func (q Quantity[C]) Mul(x float64) Quantity[C] {
	if tableOf[C]().units[q.preferred.idx].offset != 0 {
		// Affine scales (temperature) are multiplied in the displayed unit.
		return New(q.PreferredValue()*x, q.preferred)
	}
	return Quantity[C]{canonical: q.canonical * x, preferred: q.preferred}.normalized()
}

// Div divides q by x.
func (q Quantity[C]) Div(x float64) Quantity[C] {
	return q.Mul(1 / x)
}

// Neg returns -q without normalization.
func (q Quantity[C]) Neg() Quantity[C] {
	return Quantity[C]{canonical: -q.canonical, preferred: q.preferred}
}

// Abs returns |q|.
func (q Quantity[C]) Abs() Quantity[C] {
	return Quantity[C]{canonical: math.Abs(q.canonical), preferred: q.preferred}
}

// Ratio returns q/o as a plain number.
func (q Quantity[C]) Ratio(o Quantity[C]) float64 {
	return q.canonical / o.canonical
}

// Cmp compares two quantities by canonical magnitude.
func (q Quantity[C]) Cmp(o Quantity[C]) int {
	switch {
	case q.canonical < o.canonical:
		return -1
	case q.canonical > o.canonical:
		return 1
	default:
		return 0
	}
}

// Less reports whether q < o.
func (q Quantity[C]) Less(o Quantity[C]) bool { return q.canonical < o.canonical }

// ApproxEqual reports whether two quantities are within tol canonical units.
func (q Quantity[C]) ApproxEqual(o Quantity[C], tol float64) bool {
	return math.Abs(q.canonical-o.canonical) <= tol
}

// String renders the magnitude in the preferred unit, e.g. "120 Feet".
func (q Quantity[C]) String() string {
	return fmt.Sprintf("%s %s", FormatFloat(q.PreferredValue()), q.preferred.Name())
}

// Normalize wraps an angle into [-pi, pi).
func Normalize(a Angle) Angle {
	return a.normalized()
}

// AlignWith shifts a by whole turns so it lies within pi of ref.
func AlignWith(a, ref Angle) Angle {
	v := a.canonical
	r := ref.canonical
	for r-v < -math.Pi {
		v -= 2 * math.Pi
	}
	for r-v > math.Pi {
		v += 2 * math.Pi
	}
	return Angle{canonical: v, preferred: a.preferred}
}

// FormatFloat renders a magnitude with enough precision to round trip, using
// "NaN" and "INF" for the special values.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "INF"
	case math.IsInf(v, -1):
		return "-INF"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseFloat is the inverse of FormatFloat.
func ParseFloat(s string) (float64, error) {
	switch s {
	case "NaN":
		return math.NaN(), nil
	case "INF", "+INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(s, 64)
}
