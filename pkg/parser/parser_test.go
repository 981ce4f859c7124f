package parser

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/lemonberrylabs/unitconv/pkg/units"
)

func TestParseBasicCatalog(t *testing.T) {
	src := []byte(`
units:
  - symbol: m
    name: meter
    measure: length
    dimensions: {length: 1}
    multiplier: 1
  - symbol: °F
    name: degree Fahrenheit
    measure: temperature
    dimensions:
      temperature: 1
    multiplier: 5/9
    offset: 459.67*5/9
  - symbol: N
    name: newton
    measure: Force
    dimensions: {length: 1, mass: 1, time: -2}
`)

	us, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(us) != 3 {
		t.Fatalf("expected 3 units, got %d", len(us))
	}

	m := us[0]
	if m.Symbol != "m" || m.Name != "meter" || m.Measure.Name != "LENGTH" || m.Power(units.Length) != 1 {
		t.Errorf("unexpected meter: %+v", m)
	}

	f := us[1]
	if math.Abs(f.Multiplier-5.0/9.0) > 1e-12 {
		t.Errorf("expected multiplier 5/9, got %v", f.Multiplier)
	}
	if math.Abs(f.Offset-255.3722222222222) > 1e-9 {
		t.Errorf("expected offset 255.372..., got %v", f.Offset)
	}

	n := us[2]
	if n.Multiplier != 1 {
		t.Errorf("expected default multiplier 1, got %v", n.Multiplier)
	}
	if n.Measure.Name != "FORCE" || n.SISymbol() != "kg*m*s^-2" {
		t.Errorf("unexpected newton: %+v", n)
	}
}

func TestParseJSON(t *testing.T) {
	src := []byte(`{"units": [{"symbol": "ft", "name": "foot", "dimensions": {"length": 1}, "multiplier": 0.3048}]}`)
	us, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(us) != 1 || us[0].Symbol != "ft" || us[0].Multiplier != 0.3048 {
		t.Errorf("unexpected units: %+v", us)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", ``, "empty catalog"},
		{"not a mapping", `- a`, "must be a mapping"},
		{"missing units", `other: 1`, "unknown key 'other'"},
		{"units not a sequence", `units: 3`, "must be a sequence"},
		{"missing symbol", "units:\n  - name: x\n", "must have a 'symbol'"},
		{"unknown unit key", "units:\n  - symbol: x\n    colour: red\n", "unknown key 'colour'"},
		{"unknown dimension", "units:\n  - symbol: x\n    dimensions: {charm: 1}\n", "unknown dimension"},
		{"fractional exponent", "units:\n  - symbol: x\n    dimensions: {length: 0.5}\n", "must be an integer"},
		{"bad multiplier", "units:\n  - symbol: x\n    multiplier: lots\n", "invalid number"},
		{"zero multiplier", "units:\n  - symbol: x\n    multiplier: 0\n", "multiplier must be nonzero"},
		{"operator in symbol", "units:\n  - symbol: m/s\n", "operator character"},
		{"duplicate", "units:\n  - symbol: x\n  - symbol: x\n", "duplicate symbol"},
		{"invalid yaml", "units: [", "invalid YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParseErrorLocation(t *testing.T) {
	src := []byte("units:\n  - symbol: a\n  - symbol: b\n    multiplier: nope\n")
	_, err := Parse(src)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.Location != "unit 'b' (line 4)" {
		t.Errorf("unexpected location %q", pe.Location)
	}
}

func TestStandardCatalog(t *testing.T) {
	us, err := Standard()
	if err != nil {
		t.Fatalf("standard catalog does not parse: %v", err)
	}

	bySymbol := make(map[string]units.Unit)
	for _, u := range us {
		bySymbol[u.Symbol] = u
	}
	for _, sym := range []string{"", "m", "s", "kg", "g", "K", "°C", "°F", "N", "J", "W", "Pa"} {
		if _, ok := bySymbol[sym]; !ok {
			t.Errorf("standard catalog lacks %q", sym)
		}
	}
	if u := bySymbol[""]; !u.Equal(units.NumberUnit) {
		t.Errorf("number unit is %+v", u)
	}

	// 32 °F is 0 °C
	f, c := bySymbol["°F"], bySymbol["°C"]
	q, err := units.NewQuantity(32, f, "").Convert(c, "")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(q.Value) > 1e-9 {
		t.Errorf("32 °F = %v °C", q.Value)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	us, err := Standard()
	if err != nil {
		t.Fatal(err)
	}

	for _, format := range []Format{FormatYAML, FormatJSON} {
		data, err := Marshal(us, format)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		back, err := Parse(data)
		if err != nil {
			t.Fatalf("reparse: %v\n%s", err, data)
		}
		if len(back) != len(us) {
			t.Fatalf("expected %d units, got %d", len(us), len(back))
		}
		for i := range us {
			if !back[i].Equal(us[i]) || back[i].Symbol != us[i].Symbol || back[i].Name != us[i].Name || back[i].Measure.Name != us[i].Measure.Name {
				t.Errorf("unit %d: got %+v, want %+v", i, back[i], us[i])
			}
		}
	}
}

func TestFormatForPath(t *testing.T) {
	if FormatForPath("units.JSON") != FormatJSON {
		t.Error("expected JSON for .JSON")
	}
	if FormatForPath("units.yaml") != FormatYAML || FormatForPath("units") != FormatYAML {
		t.Error("expected YAML")
	}
}
