// Package conversion keeps a conversion session: an input quantity and its
// value expressed in every other unit of the same measure.
package conversion

import (
	"fmt"
	"strings"

	"github.com/lemonberrylabs/unitconv/pkg/catalog"
	"github.com/lemonberrylabs/unitconv/pkg/expr"
	"github.com/lemonberrylabs/unitconv/pkg/units"
)

// Result is a quantity together with the name of its measure, if known.
type Result struct {
	Quantity units.Quantity
	Measure  string
}

// Converter holds the input of a conversion and the derived results. The
// results are recomputed whenever the input changes and keep their own
// prefixes. A Converter is not safe for concurrent use.
type Converter struct {
	catalog *catalog.Catalog
	input   units.Quantity
	results []units.Quantity
}

// New creates a converter over c with an input of 1 (dimensionless).
func New(c *catalog.Catalog) *Converter {
	cv := &Converter{catalog: c, input: units.Scalar(1)}
	cv.updateInputUnit(units.NumberUnit)
	return cv
}

// Input returns the current input.
func (cv *Converter) Input() units.Quantity {
	return cv.input
}

// Results returns the input converted to every other unit of its measure.
func (cv *Converter) Results() []units.Quantity {
	out := make([]units.Quantity, len(cv.results))
	copy(out, cv.results)
	return out
}

// SetInputUnit selects the input unit from text: an exact symbol match, then a
// case-insensitive symbol match, then the first unit whose display form
// "symbol (name)" contains text. Empty or unmatched text selects the
// dimensionless unit. The selected unit is returned.
func (cv *Converter) SetInputUnit(text string) units.Unit {
	u := cv.findUnit(text)
	cv.updateInputUnit(u)
	return u
}

func (cv *Converter) findUnit(text string) units.Unit {
	if text == "" {
		return units.NumberUnit
	}
	if u, ok := cv.catalog.Lookup(text); ok {
		return u
	}
	all := cv.catalog.Units()
	for _, u := range all {
		if strings.EqualFold(u.Symbol, text) {
			return u
		}
	}
	if matches := cv.catalog.Filter(text); len(matches) > 0 {
		return matches[0]
	}
	return units.NumberUnit
}

// SetInputValue changes the input value.
func (cv *Converter) SetInputValue(v float64) {
	if cv.input.Value == v {
		return
	}
	cv.input.Value = v
	cv.recompute()
}

// SetInputPrefix changes the input prefix.
func (cv *Converter) SetInputPrefix(prefix string) {
	if cv.input.Prefix == prefix {
		return
	}
	cv.input.Prefix = prefix
	cv.recompute()
}

// SetResultPrefix expresses result i with a new prefix.
func (cv *Converter) SetResultPrefix(i int, prefix string) error {
	if i < 0 || i >= len(cv.results) {
		return fmt.Errorf("result index %d out of range [0, %d)", i, len(cv.results))
	}
	r, err := cv.input.Convert(cv.results[i].Unit, prefix)
	if err != nil {
		return err
	}
	cv.results[i] = r
	return nil
}

// Evaluate evaluates text, labels the result and makes it the new input.
func (cv *Converter) Evaluate(text string) (Result, error) {
	q, err := expr.EvaluateIn(text, cv.catalog)
	if err != nil {
		return Result{}, err
	}
	r := cv.Label(q)
	cv.input = r.Quantity
	cv.updateInputUnit(r.Quantity.Unit)
	return r, nil
}

// Label gives q a catalog name. A unit with the same transform as a
// registered unit takes that unit's symbol. Otherwise q is collapsed to the
// coherent SI unit of its measure and relabelled if that unit is
// registered, or named after its SI symbol if it is not.
func (cv *Converter) Label(q units.Quantity) Result {
	if r, ok := cv.relabel(q); ok {
		return r
	}

	si := units.Unit{Measure: units.Measure{Dims: q.Unit.Dims}, Multiplier: 1}
	collapsed, err := q.Convert(si, "")
	if err != nil {
		// same dimensions, so conversion cannot fail
		return Result{Quantity: q, Measure: cv.catalog.FindMeasureName(q.Unit.Measure)}
	}
	r, ok := cv.relabel(collapsed)
	if ok {
		return r
	}

	measure := r.Measure
	collapsed.Unit.Symbol = si.Measure.SISymbol()
	collapsed.Unit.Measure.Name = measure
	return Result{Quantity: collapsed, Measure: measure}
}

// relabel reports the measure name even when no unit matches.
func (cv *Converter) relabel(q units.Quantity) (Result, bool) {
	found, measure, symbol, _ := cv.catalog.TryFindUnit(q.Unit)
	if !found {
		return Result{Measure: measure}, false
	}
	u, _ := cv.catalog.Lookup(symbol)
	return Result{
		Quantity: units.NewQuantity(q.Value, u, q.Prefix),
		Measure:  measure,
	}, true
}

// updateInputUnit sets the input unit and rebuilds the result list from all
// other units of the same measure.
func (cv *Converter) updateInputUnit(u units.Unit) {
	cv.input.Unit = u
	cv.results = cv.results[:0]
	for _, other := range cv.catalog.SameMeasure(u.Measure) {
		if other.Symbol == u.Symbol && other.Equal(u) {
			continue
		}
		r, err := cv.input.Convert(other, "")
		if err != nil {
			continue
		}
		cv.results = append(cv.results, r)
	}
}

func (cv *Converter) recompute() {
	for i, r := range cv.results {
		if c, err := cv.input.Convert(r.Unit, r.Prefix); err == nil {
			cv.results[i] = c
		}
	}
}
