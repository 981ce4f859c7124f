// Package catalog holds the set of known units, kept sorted by symbol so that
// lookups and insertions are binary searches.
package catalog

import (
	"sort"
	"strings"
	"unicode"

	"github.com/zeebo/errs"

	"github.com/lemonberrylabs/unitconv/pkg/units"
)

var (
	// DuplicateError is returned when a unit symbol is already registered.
	DuplicateError = errs.Class("duplicate unit")
	// NotFoundError is returned when no unit has the requested symbol.
	NotFoundError = errs.Class("unit not found")
	// InvalidUnitError is returned for units that cannot be registered.
	InvalidUnitError = errs.Class("invalid unit")
)

// operatorGlyphs may not appear in a symbol; the lexer splits on them.
const operatorGlyphs = "()[]{}+-*/^"

// Catalog is a list of units sorted by symbol. Symbols compare
// case-insensitively first and case-sensitively to break ties, so "m" and "M"
// can both be registered. The zero value is an empty catalog.
//
// A Catalog is not safe for concurrent use.
type Catalog struct {
	list []units.Unit
}

// New returns a catalog holding a sorted copy of us. Later duplicates of a
// symbol are dropped.
func New(us []units.Unit) *Catalog {
	c := &Catalog{list: make([]units.Unit, 0, len(us))}
	for _, u := range us {
		c.Add(u)
	}
	return c
}

// Default returns the fallback catalog used when no stored catalog can be
// loaded: just the dimensionless number unit.
func Default() *Catalog {
	return New([]units.Unit{units.NumberUnit})
}

func compareSymbols(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// Len returns the number of units.
func (c *Catalog) Len() int { return len(c.list) }

// At returns the unit at index i in symbol order.
func (c *Catalog) At(i int) units.Unit { return c.list[i] }

// Units returns a copy of all units in symbol order.
func (c *Catalog) Units() []units.Unit {
	out := make([]units.Unit, len(c.list))
	copy(out, c.list)
	return out
}

// Clone returns an independent copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	return &Catalog{list: c.Units()}
}

// Search returns the index of the unit with the given symbol. When there is
// none it returns the bitwise complement of the index where such a unit would
// be inserted, which is always negative.
func (c *Catalog) Search(symbol string) int {
	i := sort.Search(len(c.list), func(i int) bool {
		return compareSymbols(c.list[i].Symbol, symbol) >= 0
	})
	if i < len(c.list) && c.list[i].Symbol == symbol {
		return i
	}
	return ^i
}

// Lookup returns the unit with exactly the given symbol.
func (c *Catalog) Lookup(symbol string) (units.Unit, bool) {
	i := c.Search(symbol)
	if i < 0 {
		return units.Unit{}, false
	}
	return c.list[i], true
}

// Add inserts u at its sorted position. It reports false when the symbol is
// already taken.
func (c *Catalog) Add(u units.Unit) bool {
	i := c.Search(u.Symbol)
	if i >= 0 {
		return false
	}
	i = ^i
	c.list = append(c.list, units.Unit{})
	copy(c.list[i+1:], c.list[i:])
	c.list[i] = u
	return true
}

// Delete removes the unit with the given symbol and reports whether it existed.
func (c *Catalog) Delete(symbol string) bool {
	i := c.Search(symbol)
	if i < 0 {
		return false
	}
	c.list = append(c.list[:i], c.list[i+1:]...)
	return true
}

// Modify replaces the unit registered under oldSymbol with u. When the symbol
// changes the unit is moved to its new sorted position. It reports false when
// oldSymbol is missing or u's symbol is taken by another unit.
func (c *Catalog) Modify(oldSymbol string, u units.Unit) bool {
	i := c.Search(oldSymbol)
	if i < 0 {
		return false
	}
	if u.Symbol == oldSymbol {
		c.list[i] = u
		return true
	}
	if c.Search(u.Symbol) >= 0 {
		return false
	}
	old := c.list[i]
	c.Delete(oldSymbol)
	if !c.Add(u) {
		c.Add(old)
		return false
	}
	return true
}

// FindMeasureName returns the measure name of the first catalog unit with
// the same dimensions as m, or "" if none is known.
func (c *Catalog) FindMeasureName(m units.Measure) string {
	for _, u := range c.list {
		if u.Measure.SameMeasure(m) && u.Measure.Name != "" {
			return u.Measure.Name
		}
	}
	return ""
}

// TryFindUnit looks for a registered unit with the same transform as u and
// returns its measure name, symbol and name. On a miss the measure name of
// the first unit with the same dimensions is still returned.
func (c *Catalog) TryFindUnit(u units.Unit) (found bool, measureName, symbol, name string) {
	for _, cu := range c.list {
		if cu.Equal(u) {
			return true, cu.Measure.Name, cu.Symbol, cu.Name
		}
		if measureName == "" && cu.Measure.SameMeasure(u.Measure) {
			measureName = cu.Measure.Name
		}
	}
	return false, measureName, "", ""
}

// Filter returns the units whose display form "symbol (name)" contains text,
// ignoring case. An empty text matches every unit.
func (c *Catalog) Filter(text string) []units.Unit {
	if text == "" {
		return c.Units()
	}
	needle := strings.ToLower(text)
	var out []units.Unit
	for _, u := range c.list {
		if strings.Contains(strings.ToLower(u.String()), needle) {
			out = append(out, u)
		}
	}
	return out
}

// SameMeasure returns the units that can be converted to or from m.
func (c *Catalog) SameMeasure(m units.Measure) []units.Unit {
	var out []units.Unit
	for _, u := range c.list {
		if u.Measure.SameMeasure(m) {
			out = append(out, u)
		}
	}
	return out
}

// Validate checks that u can be registered: its symbol must not contain
// whitespace or operator glyphs and its multiplier must be nonzero. Only the
// dimensionless unit with multiplier 1 may have an empty symbol.
func Validate(u units.Unit) error {
	if u.Multiplier == 0 {
		return InvalidUnitError.New("%q: multiplier must be nonzero", u.Symbol)
	}
	if u.Symbol == "" {
		if !u.IsNumber() || u.Multiplier != 1 || u.Offset != 0 {
			return InvalidUnitError.New("only the number unit may have an empty symbol")
		}
		return nil
	}
	if strings.ContainsAny(u.Symbol, operatorGlyphs) {
		return InvalidUnitError.New("%q: symbol contains an operator character", u.Symbol)
	}
	if strings.IndexFunc(u.Symbol, unicode.IsSpace) >= 0 {
		return InvalidUnitError.New("%q: symbol contains whitespace", u.Symbol)
	}
	if startsWithNumber(u.Symbol) {
		return InvalidUnitError.New("%q: symbol starts with a number", u.Symbol)
	}
	return nil
}

func startsWithNumber(s string) bool {
	return s[0] == '.' || (s[0] >= '0' && s[0] <= '9')
}
