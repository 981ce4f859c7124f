package units

import (
	"fmt"
	"math"
)

// tolerance is the relative tolerance used when comparing multipliers,
// offsets and quantity values.
const tolerance = 1e-9

// Unit is a measure plus an affine transform to the coherent SI unit:
//
//	value(SI) = value(unit) * Multiplier + Offset
//
// Symbol and Name are metadata and take no part in conversions.
type Unit struct {
	Measure
	Multiplier float64
	Offset     float64
	Symbol     string
	Name       string
}

// NumberUnit is the dimensionless unit with multiplier 1. It is what a bare
// number in an expression is measured in.
var NumberUnit = Unit{Measure: Number, Multiplier: 1, Name: "number"}

// NewUnit creates a unit of the given measure.
func NewUnit(m Measure, multiplier, offset float64, symbol, name string) Unit {
	return Unit{Measure: m, Multiplier: multiplier, Offset: offset, Symbol: symbol, Name: name}
}

// Mul returns the product of two units. The result is an anonymous derived
// unit without offset.
func (u Unit) Mul(o Unit) Unit {
	return Unit{
		Measure:    Measure{Dims: u.Dims.add(o.Dims)},
		Multiplier: u.Multiplier * o.Multiplier,
	}
}

// Div returns the quotient of two units.
func (u Unit) Div(o Unit) Unit {
	return Unit{
		Measure:    Measure{Dims: u.Dims.sub(o.Dims)},
		Multiplier: u.Multiplier / o.Multiplier,
	}
}

// Pow raises the unit to an integer power.
func (u Unit) Pow(n int) Unit {
	return Unit{
		Measure:    Measure{Dims: u.Dims.scale(n)},
		Multiplier: math.Pow(u.Multiplier, float64(n)),
	}
}

// SameMeasure reports whether u can be converted to o. Only the dimension
// vectors are compared.
func (u Unit) SameMeasure(o Unit) bool {
	return u.Measure.SameMeasure(o.Measure)
}

// Equal reports whether both units describe the same transform of the same
// measure. A unit with a zero multiplier is never equal to anything.
func (u Unit) Equal(o Unit) bool {
	if !u.Measure.SameMeasure(o.Measure) {
		return false
	}
	if u.Multiplier == 0 || o.Multiplier == 0 {
		return false
	}
	return approxEqual(u.Multiplier, o.Multiplier) && approxEqual(u.Offset, o.Offset)
}

// DisplaySymbol returns the symbol, falling back to the SI rendering of the
// measure for anonymous units.
func (u Unit) DisplaySymbol() string {
	if u.Symbol != "" {
		return u.Symbol
	}
	if u.Multiplier == 1 && u.Offset == 0 {
		return u.Measure.SISymbol()
	}
	return fmt.Sprintf("%g*%s", u.Multiplier, u.Measure.SISymbol())
}

// String returns the display form "symbol (name)" used for catalog searches.
func (u Unit) String() string {
	return fmt.Sprintf("%s (%s)", u.Symbol, u.Name)
}

// approxEqual compares a and b with a relative tolerance taken from whichever
// side is nonzero. Two zeros are equal.
func approxEqual(a, b float64) bool {
	if a == b {
		return true
	}
	ref := math.Abs(a)
	if ref == 0 {
		ref = math.Abs(b)
	}
	return math.Abs(a-b)/ref < tolerance
}
