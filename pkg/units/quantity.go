package units

import (
	"fmt"
	"math"
	"strconv"

	"github.com/zeebo/errs"
)

var (
	// DimensionError is returned when two quantities of different measures are
	// combined by an operation that needs them to match.
	DimensionError = errs.Class("dimension mismatch")
	// PowerError is returned for exponents that cannot be applied to a unit.
	PowerError = errs.Class("invalid power")
	// DivisionError is returned when dividing by a zero quantity.
	DivisionError = errs.Class("division by zero")
	// OverflowError is returned when a result is not a finite number.
	OverflowError = errs.Class("numeric overflow")
)

// maxPower bounds integer exponents applied to units.
const maxPower = math.MaxInt32

// Quantity is a value measured in a unit with an SI prefix. The effective
// value is Value * PrefixScale(Prefix) in the unit's own scale. The unit is
// held by value, so later catalog edits never change an existing quantity.
type Quantity struct {
	Value  float64
	Unit   Unit
	Prefix string
}

// NewQuantity creates a quantity.
func NewQuantity(value float64, unit Unit, prefix string) Quantity {
	return Quantity{Value: value, Unit: unit, Prefix: prefix}
}

// Scalar creates a dimensionless quantity.
func Scalar(value float64) Quantity {
	return Quantity{Value: value, Unit: NumberUnit}
}

// scaled returns the value with the prefix applied.
func (q Quantity) scaled() float64 {
	return q.Value * PrefixScale(q.Prefix)
}

// IsNumber reports whether the quantity is dimensionless.
func (q Quantity) IsNumber() bool {
	return q.Unit.IsNumber()
}

// SI returns the value expressed in the coherent SI unit of its measure.
func (q Quantity) SI() float64 {
	return q.scaled()*q.Unit.Multiplier + q.Unit.Offset
}

// Convert expresses q in target with the given prefix.
func (q Quantity) Convert(target Unit, prefix string) (Quantity, error) {
	if !q.Unit.SameMeasure(target) {
		return Quantity{}, DimensionError.New("cannot convert %s to %s", q.Unit.DisplaySymbol(), target.DisplaySymbol())
	}
	v := (q.SI() - target.Offset) / target.Multiplier / PrefixScale(prefix)
	return Quantity{Value: v, Unit: target, Prefix: prefix}, nil
}

// Add returns q + o in q's unit and prefix.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	c, err := o.Convert(q.Unit, q.Prefix)
	if err != nil {
		return Quantity{}, DimensionError.New("cannot add %s and %s", q.Unit.DisplaySymbol(), o.Unit.DisplaySymbol())
	}
	return Quantity{Value: q.Value + c.Value, Unit: q.Unit, Prefix: q.Prefix}, nil
}

// Sub returns q - o in q's unit and prefix.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	c, err := o.Convert(q.Unit, q.Prefix)
	if err != nil {
		return Quantity{}, DimensionError.New("cannot subtract %s from %s", o.Unit.DisplaySymbol(), q.Unit.DisplaySymbol())
	}
	return Quantity{Value: q.Value - c.Value, Unit: q.Unit, Prefix: q.Prefix}, nil
}

// Mul returns q * o. A dimensionless operand is folded into the value of the
// other one, which keeps its unit and prefix; otherwise the result is a
// derived unit with both prefixes folded into the value.
func (q Quantity) Mul(o Quantity) Quantity {
	switch {
	case q.IsNumber():
		return Quantity{Value: q.scaled() * q.Unit.Multiplier * o.Value, Unit: o.Unit, Prefix: o.Prefix}
	case o.IsNumber():
		return Quantity{Value: q.Value * o.scaled() * o.Unit.Multiplier, Unit: q.Unit, Prefix: q.Prefix}
	default:
		return Quantity{Value: q.scaled() * o.scaled(), Unit: q.Unit.Mul(o.Unit)}
	}
}

// Div returns q / o.
func (q Quantity) Div(o Quantity) (Quantity, error) {
	if o.Value == 0 {
		return Quantity{}, DivisionError.New("%s / %s", q, o)
	}
	if o.IsNumber() {
		return Quantity{Value: q.Value / (o.scaled() * o.Unit.Multiplier), Unit: q.Unit, Prefix: q.Prefix}, nil
	}
	return Quantity{Value: q.scaled() / o.scaled(), Unit: q.Unit.Div(o.Unit)}, nil
}

// Pow raises q to an integer power.
func (q Quantity) Pow(n int) Quantity {
	return Quantity{Value: math.Pow(q.scaled(), float64(n)), Unit: q.Unit.Pow(n)}
}

// PowQuantity raises q to a dimensionless exponent. Fractional exponents are
// only defined for dimensionless bases.
func (q Quantity) PowQuantity(exp Quantity) (Quantity, error) {
	if !exp.IsNumber() {
		return Quantity{}, DimensionError.New("exponent %s is not dimensionless", exp)
	}
	x := exp.scaled() * exp.Unit.Multiplier
	if q.IsNumber() {
		return Scalar(math.Pow(q.scaled()*q.Unit.Multiplier, x)), nil
	}
	if x != math.Trunc(x) || math.IsInf(x, 0) {
		return Quantity{}, PowerError.New("%s cannot be raised to the non-integer power %g", q.Unit.DisplaySymbol(), x)
	}
	if math.Abs(x) > maxPower {
		return Quantity{}, PowerError.New("%s cannot be raised to the power %g", q.Unit.DisplaySymbol(), x)
	}
	return q.Pow(int(x)), nil
}

// Finite returns an OverflowError if q's value is infinite or NaN.
func (q Quantity) Finite() error {
	if math.IsInf(q.Value, 0) || math.IsNaN(q.Value) {
		return OverflowError.New("result %s is out of range", q)
	}
	return nil
}

// Equal reports whether o, converted to q's unit and prefix, has the same
// value as q.
func (q Quantity) Equal(o Quantity) bool {
	c, err := o.Convert(q.Unit, q.Prefix)
	if err != nil || math.IsNaN(c.Value) || math.IsNaN(q.Value) {
		return false
	}
	return approxEqual(q.Value, c.Value)
}

// String formats the quantity as "value prefixsymbol".
func (q Quantity) String() string {
	v := strconv.FormatFloat(q.Value, 'g', -1, 64)
	sym := q.Unit.DisplaySymbol()
	if q.Prefix == "" && sym == "" {
		return v
	}
	return fmt.Sprintf("%s %s%s", v, q.Prefix, sym)
}
