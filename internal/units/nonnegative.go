package units

import "fmt"

// NonNegative wraps a quantity that may never drop below zero.
type NonNegative[C Category] struct {
	q Quantity[C]
}

// NonNegativeDistance is a length that cannot be negative, e.g. a buffer width.
type NonNegativeDistance = NonNegative[LengthCategory]

// NewNonNegative validates v >= 0 (in canonical units) and wraps it.
func NewNonNegative[C Category](v float64, u Unit[C]) (NonNegative[C], error) {
	return AsNonNegative(New(v, u))
}

// AsNonNegative wraps an existing quantity after checking its sign.
func AsNonNegative[C Category](q Quantity[C]) (NonNegative[C], error) {
	if q.canonical < 0 {
		return NonNegative[C]{}, fmt.Errorf("%w: %s", ErrNegativeValue, q)
	}
	return NonNegative[C]{q: q}, nil
}

// Quantity returns the wrapped quantity.
func (n NonNegative[C]) Quantity() Quantity[C] { return n.q }

// Value returns the magnitude expressed in u.
func (n NonNegative[C]) Value(u Unit[C]) float64 { return n.q.Value(u) }

// Add returns n+o. The sum of two non-negative values is never negative.
func (n NonNegative[C]) Add(o NonNegative[C]) NonNegative[C] {
	return NonNegative[C]{q: n.q.Add(o.q)}
}

// Sub returns n-o, or ErrNegativeValue when o > n.
func (n NonNegative[C]) Sub(o NonNegative[C]) (NonNegative[C], error) {
	return AsNonNegative(n.q.Sub(o.q))
}

// Mul scales n by x, or returns ErrNegativeValue when x < 0.
func (n NonNegative[C]) Mul(x float64) (NonNegative[C], error) {
	if x < 0 {
		return NonNegative[C]{}, fmt.Errorf("%w: scale factor %g", ErrNegativeValue, x)
	}
	return NonNegative[C]{q: n.q.Mul(x)}, nil
}

// Div divides n by x, or returns ErrNegativeValue when x < 0.
func (n NonNegative[C]) Div(x float64) (NonNegative[C], error) {
	if x < 0 {
		return NonNegative[C]{}, fmt.Errorf("%w: divisor %g", ErrNegativeValue, x)
	}
	return NonNegative[C]{q: n.q.Div(x)}, nil
}

func (n NonNegative[C]) String() string { return n.q.String() }
