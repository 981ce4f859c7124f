// Package parser reads and writes unit catalog documents. A document is YAML
// (JSON is accepted as a YAML subset) with a single "units" list:
//
//	units:
//	  - symbol: N
//	    name: newton
//	    measure: force
//	    dimensions: {length: 1, mass: 1, time: -2}
//	    multiplier: 1
//
// Multipliers and offsets are numbers or dimensionless expressions such as
// "5/9" or "1609.344/3600".
package parser

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lemonberrylabs/unitconv/pkg/catalog"
	"github.com/lemonberrylabs/unitconv/pkg/expr"
	"github.com/lemonberrylabs/unitconv/pkg/units"
)

// MaxSourceSize is the maximum catalog document size in bytes (1 MiB).
const MaxSourceSize = 1 << 20

// MaxUnits is the maximum number of units in a catalog document.
const MaxUnits = 10000

// ParseError represents an error encountered while reading a catalog document.
type ParseError struct {
	Message  string
	Location string // e.g., "unit 'ft' (line 12)"
}

func (e *ParseError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("parse error at %s: %s", e.Location, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// UnitSpec is the serialized form of a unit, used by catalog documents and the
// REST API.
type UnitSpec struct {
	Symbol     string         `yaml:"symbol" json:"symbol"`
	Name       string         `yaml:"name,omitempty" json:"name,omitempty"`
	Measure    string         `yaml:"measure,omitempty" json:"measure,omitempty"`
	Dimensions map[string]int `yaml:"dimensions,omitempty" json:"dimensions,omitempty"`
	Multiplier float64        `yaml:"multiplier" json:"multiplier"`
	Offset     float64        `yaml:"offset,omitempty" json:"offset,omitempty"`
}

// Document is a complete catalog document.
type Document struct {
	Units []UnitSpec `yaml:"units" json:"units"`
}

// SpecFor returns the serialized form of u.
func SpecFor(u units.Unit) UnitSpec {
	s := UnitSpec{
		Symbol:     u.Symbol,
		Name:       u.Name,
		Measure:    u.Measure.Name,
		Multiplier: u.Multiplier,
		Offset:     u.Offset,
	}
	for b := units.Length; b < units.NumBase; b++ {
		if p := u.Power(b); p != 0 {
			if s.Dimensions == nil {
				s.Dimensions = make(map[string]int)
			}
			s.Dimensions[b.String()] = p
		}
	}
	return s
}

// Unit converts the spec to a unit and validates it.
func (s UnitSpec) Unit() (units.Unit, error) {
	m := units.Measure{Name: strings.ToUpper(s.Measure)}
	for name, p := range s.Dimensions {
		b, ok := units.ParseBase(name)
		if !ok {
			return units.Unit{}, catalog.InvalidUnitError.New("%q: unknown dimension %q", s.Symbol, name)
		}
		m.Dims[b] = p
	}
	u := units.NewUnit(m, s.Multiplier, s.Offset, s.Symbol, s.Name)
	if err := catalog.Validate(u); err != nil {
		return units.Unit{}, err
	}
	return u, nil
}

// Parse parses a YAML or JSON catalog document. Symbols must be unique.
func Parse(source []byte) ([]units.Unit, error) {
	if len(source) > MaxSourceSize {
		return nil, &ParseError{Message: fmt.Sprintf("catalog size %d exceeds maximum %d bytes", len(source), MaxSourceSize)}
	}

	var raw yaml.Node
	if err := yaml.Unmarshal(source, &raw); err != nil {
		return nil, &ParseError{Message: fmt.Sprintf("invalid YAML: %v", err)}
	}

	// The root node is a document node containing the actual content
	if raw.Kind != yaml.DocumentNode || len(raw.Content) == 0 {
		return nil, &ParseError{Message: "empty catalog"}
	}

	rootNode := raw.Content[0]
	if rootNode.Kind != yaml.MappingNode {
		return nil, &ParseError{Message: "catalog must be a mapping", Location: lineOf(rootNode)}
	}

	var unitsNode *yaml.Node
	for i := 0; i+1 < len(rootNode.Content); i += 2 {
		key := rootNode.Content[i]
		switch key.Value {
		case "units":
			unitsNode = rootNode.Content[i+1]
		default:
			return nil, &ParseError{
				Message:  fmt.Sprintf("unknown key '%s'", key.Value),
				Location: lineOf(key),
			}
		}
	}
	if unitsNode == nil {
		return nil, &ParseError{Message: "catalog must have 'units'"}
	}
	if unitsNode.Kind != yaml.SequenceNode {
		return nil, &ParseError{Message: "units must be a sequence", Location: lineOf(unitsNode)}
	}
	if len(unitsNode.Content) > MaxUnits {
		return nil, &ParseError{Message: fmt.Sprintf("catalog has %d units, maximum is %d", len(unitsNode.Content), MaxUnits)}
	}

	result := make([]units.Unit, 0, len(unitsNode.Content))
	seen := make(map[string]int)
	for _, item := range unitsNode.Content {
		u, err := parseUnit(item)
		if err != nil {
			return nil, err
		}
		if line, dup := seen[u.Symbol]; dup {
			return nil, &ParseError{
				Message:  fmt.Sprintf("duplicate symbol, first defined on line %d", line),
				Location: unitLocation(u.Symbol, item),
			}
		}
		seen[u.Symbol] = item.Line
		result = append(result, u)
	}
	return result, nil
}

// parseUnit parses a single unit mapping.
func parseUnit(node *yaml.Node) (units.Unit, error) {
	if node.Kind != yaml.MappingNode {
		return units.Unit{}, &ParseError{Message: "unit must be a mapping", Location: lineOf(node)}
	}

	spec := UnitSpec{Multiplier: 1}
	hasSymbol := false
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]

		var err error
		switch key {
		case "symbol":
			spec.Symbol, err = scalarString(val)
			hasSymbol = true
		case "name":
			spec.Name, err = scalarString(val)
		case "measure":
			spec.Measure, err = scalarString(val)
		case "dimensions":
			spec.Dimensions, err = parseDimensions(val)
		case "multiplier":
			spec.Multiplier, err = parseNumber(val)
		case "offset":
			spec.Offset, err = parseNumber(val)
		default:
			err = fmt.Errorf("unknown key '%s'", key)
		}
		if err != nil {
			return units.Unit{}, &ParseError{Message: err.Error(), Location: unitLocation(spec.Symbol, val)}
		}
	}
	if !hasSymbol {
		return units.Unit{}, &ParseError{Message: "unit must have a 'symbol'", Location: lineOf(node)}
	}

	u, err := spec.Unit()
	if err != nil {
		return units.Unit{}, &ParseError{Message: err.Error(), Location: unitLocation(spec.Symbol, node)}
	}
	return u, nil
}

func parseDimensions(node *yaml.Node) (map[string]int, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("dimensions must be a mapping")
	}
	dims := make(map[string]int)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if _, ok := units.ParseBase(name); !ok {
			return nil, fmt.Errorf("unknown dimension '%s'", name)
		}
		p, err := strconv.Atoi(node.Content[i+1].Value)
		if err != nil || node.Content[i+1].Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("exponent of '%s' must be an integer", name)
		}
		dims[strings.ToLower(name)] = p
	}
	return dims, nil
}

// noUnits resolves no symbols, so only plain numbers evaluate.
type noUnits struct{}

func (noUnits) Lookup(string) (units.Unit, bool) { return units.Unit{}, false }

// parseNumber reads a number or a dimensionless expression.
func parseNumber(node *yaml.Node) (float64, error) {
	if node.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("expected a number")
	}
	if f, err := strconv.ParseFloat(node.Value, 64); err == nil {
		return f, nil
	}
	q, err := expr.Evaluate(node.Value, noUnits{})
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %v", node.Value, err)
	}
	return q.Value, nil
}

func scalarString(node *yaml.Node) (string, error) {
	if node.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("expected a string")
	}
	return node.Value, nil
}

func lineOf(node *yaml.Node) string {
	return fmt.Sprintf("line %d", node.Line)
}

func unitLocation(symbol string, node *yaml.Node) string {
	return fmt.Sprintf("unit '%s' (line %d)", symbol, node.Line)
}

// Format selects the serialization of a catalog document.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatForPath picks the format from a file extension; anything other than
// .json is YAML.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Marshal serializes units as a catalog document.
func Marshal(us []units.Unit, format Format) ([]byte, error) {
	doc := Document{Units: make([]UnitSpec, len(us))}
	for i, u := range us {
		doc.Units[i] = SpecFor(u)
	}
	if format == FormatJSON {
		return json.MarshalIndent(doc, "", "  ")
	}
	return yaml.Marshal(doc)
}
