// Package units implements the dimensional algebra used by the converter:
// dimension vectors (measures), units with an affine transform to SI, SI
// prefixes and quantities that carry a value in a unit.
package units

import (
	"strconv"
	"strings"
)

// Base identifies one of the seven SI base quantities.
type Base int

const (
	Length Base = iota
	Time
	Mass
	Substance
	Temperature
	Current
	Luminosity
	NumBase
)

// String returns the name of the base quantity.
func (b Base) String() string {
	switch b {
	case Length:
		return "length"
	case Time:
		return "time"
	case Mass:
		return "mass"
	case Substance:
		return "substance"
	case Temperature:
		return "temperature"
	case Current:
		return "current"
	case Luminosity:
		return "luminosity"
	default:
		return "unknown"
	}
}

// ParseBase returns the base quantity with the given name.
func ParseBase(name string) (Base, bool) {
	for b := Length; b < NumBase; b++ {
		if b.String() == strings.ToLower(name) {
			return b, true
		}
	}
	return 0, false
}

var (
	siSymbols  = [NumBase]string{"m", "s", "kg", "mol", "K", "A", "cd"}
	dimSymbols = [NumBase]string{"L", "T", "M", "N", "Θ", "I", "J"}
)

// Dimensions holds the exponent of each base quantity.
type Dimensions [NumBase]int

// Measure is a dimension vector with an optional name such as LENGTH or FORCE.
// Names are informational; two measures are the same when their exponents match.
type Measure struct {
	Dims Dimensions
	Name string
}

// NewMeasure creates a measure from the seven base exponents. The name is
// stored upper case.
func NewMeasure(length, time, mass, substance, temperature, current, luminosity int, name string) Measure {
	return Measure{
		Dims: Dimensions{length, time, mass, substance, temperature, current, luminosity},
		Name: strings.ToUpper(name),
	}
}

// Standard measures.
var (
	Number             = NewMeasure(0, 0, 0, 0, 0, 0, 0, "NUMBER")
	LengthMeasure      = NewMeasure(1, 0, 0, 0, 0, 0, 0, "LENGTH")
	TimeMeasure        = NewMeasure(0, 1, 0, 0, 0, 0, 0, "TIME")
	MassMeasure        = NewMeasure(0, 0, 1, 0, 0, 0, 0, "MASS")
	SubstanceMeasure   = NewMeasure(0, 0, 0, 1, 0, 0, 0, "SUBSTANCE AMOUNT")
	TemperatureMeasure = NewMeasure(0, 0, 0, 0, 1, 0, 0, "TEMPERATURE")
	CurrentMeasure     = NewMeasure(0, 0, 0, 0, 0, 1, 0, "CURRENT")
	LuminosityMeasure  = NewMeasure(0, 0, 0, 0, 0, 0, 1, "LUMINOUS INTENSITY")
)

// Power returns the exponent of base b.
func (m Measure) Power(b Base) int {
	return m.Dims[b]
}

// SameMeasure reports whether both measures have identical exponents.
func (m Measure) SameMeasure(other Measure) bool {
	return m.Dims == other.Dims
}

// IsNumber reports whether the measure is dimensionless.
func (m Measure) IsNumber() bool {
	return m.Dims == Dimensions{}
}

// SISymbol renders the coherent SI unit of the measure, e.g. "kg*m*s^-2".
// Dimensionless measures render as an empty string.
func (m Measure) SISymbol() string {
	// conventional ordering puts mass first for derived units
	order := [NumBase]Base{Mass, Length, Time, Current, Temperature, Substance, Luminosity}
	parts := make([]string, 0, NumBase)
	for _, b := range order {
		parts = appendPower(parts, siSymbols[b], m.Dims[b])
	}
	return strings.Join(parts, "*")
}

// Dimension renders the measure in dimension symbols, e.g. "L*T^-1".
func (m Measure) Dimension() string {
	parts := make([]string, 0, NumBase)
	for b := Length; b < NumBase; b++ {
		parts = appendPower(parts, dimSymbols[b], m.Dims[b])
	}
	return strings.Join(parts, "*")
}

func appendPower(parts []string, symbol string, power int) []string {
	switch power {
	case 0:
		return parts
	case 1:
		return append(parts, symbol)
	default:
		return append(parts, symbol+"^"+strconv.Itoa(power))
	}
}

func (d Dimensions) add(o Dimensions) Dimensions {
	for i := range d {
		d[i] += o[i]
	}
	return d
}

func (d Dimensions) sub(o Dimensions) Dimensions {
	for i := range d {
		d[i] -= o[i]
	}
	return d
}

func (d Dimensions) scale(n int) Dimensions {
	for i := range d {
		d[i] *= n
	}
	return d
}
