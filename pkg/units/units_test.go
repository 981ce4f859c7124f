package units

import (
	"math"
	"testing"
)

var (
	meter     = NewUnit(LengthMeasure, 1, 0, "m", "meter")
	foot      = NewUnit(LengthMeasure, 0.3048, 0, "ft", "foot")
	second    = NewUnit(TimeMeasure, 1, 0, "s", "second")
	kilogram  = NewUnit(MassMeasure, 1, 0, "kg", "kilogram")
	gram      = NewUnit(MassMeasure, 0.001, 0, "g", "gram")
	kelvin    = NewUnit(TemperatureMeasure, 1, 0, "K", "kelvin")
	celsius   = NewUnit(TemperatureMeasure, 1, 273.15, "°C", "degree Celsius")
	fahrenh   = NewUnit(TemperatureMeasure, 5.0/9.0, 273.15-32*5.0/9.0, "°F", "degree Fahrenheit")
	percent   = NewUnit(Number, 0.01, 0, "%", "percent")
	newtonDim = NewMeasure(1, -2, 1, 0, 0, 0, 0, "force")
)

func near(a, b float64) bool {
	return approxEqual(a, b)
}

func TestMeasure(t *testing.T) {
	if newtonDim.Name != "FORCE" {
		t.Errorf("name = %q, want FORCE", newtonDim.Name)
	}
	if got := newtonDim.SISymbol(); got != "kg*m*s^-2" {
		t.Errorf("SISymbol = %q", got)
	}
	if got := newtonDim.Dimension(); got != "L*T^-2*M" {
		t.Errorf("Dimension = %q", got)
	}
	other := NewMeasure(1, -2, 1, 0, 0, 0, 0, "something else")
	if !newtonDim.SameMeasure(other) {
		t.Error("measures with equal exponents should match regardless of name")
	}
	if newtonDim.SameMeasure(LengthMeasure) {
		t.Error("force should not match length")
	}
	if !Number.IsNumber() || LengthMeasure.IsNumber() {
		t.Error("IsNumber mismatch")
	}
	if Number.SISymbol() != "" {
		t.Errorf("dimensionless SISymbol = %q", Number.SISymbol())
	}
	if newtonDim.Power(Time) != -2 {
		t.Errorf("Power(Time) = %d", newtonDim.Power(Time))
	}
	if b, ok := ParseBase("Temperature"); !ok || b != Temperature {
		t.Errorf("ParseBase = %v, %v", b, ok)
	}
	if _, ok := ParseBase("charm"); ok {
		t.Error("ParseBase accepted an unknown base")
	}
}

func TestUnitAlgebraClosure(t *testing.T) {
	tests := []struct {
		name string
		got  Unit
		dims Dimensions
		mult float64
	}{
		{"m*s", meter.Mul(second), Dimensions{1, 1, 0, 0, 0, 0, 0}, 1},
		{"m/s", meter.Div(second), Dimensions{1, -1, 0, 0, 0, 0, 0}, 1},
		{"ft^2", foot.Pow(2), Dimensions{2, 0, 0, 0, 0, 0, 0}, 0.3048 * 0.3048},
		{"ft^-1", foot.Pow(-1), Dimensions{-1, 0, 0, 0, 0, 0, 0}, 1 / 0.3048},
		{"g*ft", gram.Mul(foot), Dimensions{1, 0, 1, 0, 0, 0, 0}, 0.001 * 0.3048},
		{"°C*s", celsius.Mul(second), Dimensions{0, 1, 0, 0, 1, 0, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.Dims != tt.dims {
				t.Errorf("dims = %v, want %v", tt.got.Dims, tt.dims)
			}
			if !near(tt.got.Multiplier, tt.mult) {
				t.Errorf("multiplier = %v, want %v", tt.got.Multiplier, tt.mult)
			}
			if tt.got.Offset != 0 || tt.got.Symbol != "" || tt.got.Name != "" {
				t.Errorf("derived unit should be anonymous without offset: %+v", tt.got)
			}
		})
	}
}

func TestUnitEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Unit
		want bool
	}{
		{"identical", meter, meter, true},
		{"different symbol same transform", meter, NewUnit(LengthMeasure, 1, 0, "metre", "metre"), true},
		{"within tolerance", foot, NewUnit(LengthMeasure, 0.3048*(1+1e-12), 0, "ft2", ""), true},
		{"different multiplier", meter, foot, false},
		{"different offset", kelvin, celsius, false},
		{"different measure", meter, second, false},
		{"zero multiplier", NewUnit(LengthMeasure, 0, 0, "z", ""), NewUnit(LengthMeasure, 0, 0, "z", ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnitDisplay(t *testing.T) {
	if got := meter.String(); got != "m (meter)" {
		t.Errorf("String = %q", got)
	}
	if got := kilogram.Mul(meter).Div(second.Pow(2)).DisplaySymbol(); got != "kg*m*s^-2" {
		t.Errorf("DisplaySymbol = %q", got)
	}
	if got := foot.Mul(meter).DisplaySymbol(); got != "0.3048*m^2" {
		t.Errorf("DisplaySymbol = %q", got)
	}
}

func TestPrefixes(t *testing.T) {
	tests := []struct {
		prefix string
		want   float64
	}{
		{"k", 1e3},
		{"M", 1e6},
		{"m", 1e-3},
		{"mu", 1e-6},
		{"da", 10},
		{"", 1},
		{"K", 1},
		{"x", 1},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			if got := PrefixScale(tt.prefix); got != tt.want {
				t.Errorf("PrefixScale(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}

	ps := Prefixes()
	if len(ps) != 21 || ps[0] != "Y" || ps[len(ps)-1] != "y" {
		t.Errorf("Prefixes = %v", ps)
	}
	for i := 1; i < len(ps); i++ {
		if PrefixScale(ps[i]) >= PrefixScale(ps[i-1]) {
			t.Errorf("prefixes not in descending order at %q", ps[i])
		}
	}
}

func TestSplitPrefix(t *testing.T) {
	known := map[string]bool{"m": true, "g": true, "s": true, "Pa": true}
	accept := func(s string) bool { return known[s] }

	tests := []struct {
		symbol     string
		wantPrefix string
		wantRest   string
		wantOK     bool
	}{
		{"km", "k", "m", true},
		{"mm", "m", "m", true},
		{"dam", "da", "m", true},
		{"mus", "mu", "s", true},
		{"hPa", "h", "Pa", true},
		{"m", "", "", false},
		{"kx", "", "", false},
		{"qm", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			p, r, ok := SplitPrefix(tt.symbol, accept)
			if p != tt.wantPrefix || r != tt.wantRest || ok != tt.wantOK {
				t.Errorf("SplitPrefix(%q) = %q, %q, %v", tt.symbol, p, r, ok)
			}
		})
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name   string
		q      Quantity
		target Unit
		prefix string
		want   float64
	}{
		{"prefix neutrality", NewQuantity(5, meter, "k"), meter, "", 5000},
		{"feet to meters", NewQuantity(10, foot, ""), meter, "", 3.048},
		{"meters to centimeters", NewQuantity(2, meter, ""), meter, "c", 200},
		{"celsius to kelvin", NewQuantity(25, celsius, ""), kelvin, "", 298.15},
		{"fahrenheit to celsius", NewQuantity(212, fahrenh, ""), celsius, "", 100},
		{"grams to kilograms", NewQuantity(1500, gram, ""), kilogram, "", 1.5},
		{"percent to number", NewQuantity(50, percent, ""), NumberUnit, "", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.q.Convert(tt.target, tt.prefix)
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			if !near(got.Value, tt.want) {
				t.Errorf("value = %v, want %v", got.Value, tt.want)
			}
			if got.Prefix != tt.prefix || got.Unit.Symbol != tt.target.Symbol {
				t.Errorf("unit = %s%s", got.Prefix, got.Unit.Symbol)
			}
		})
	}
}

func TestConvertRoundTrip(t *testing.T) {
	pairs := []struct {
		from, to Unit
		prefix   string
	}{
		{meter, foot, "k"},
		{celsius, fahrenh, ""},
		{fahrenh, kelvin, "m"},
		{gram, kilogram, "M"},
	}
	for _, p := range pairs {
		t.Run(p.from.Symbol+"->"+p.to.Symbol, func(t *testing.T) {
			for _, v := range []float64{-40, 0, 1, 37.5, 1e6} {
				q := NewQuantity(v, p.from, "")
				there, err := q.Convert(p.to, p.prefix)
				if err != nil {
					t.Fatal(err)
				}
				back, err := there.Convert(p.from, "")
				if err != nil {
					t.Fatal(err)
				}
				if math.Abs(back.Value-v) > 1e-9*math.Max(1, math.Abs(v)) {
					t.Errorf("round trip of %v gave %v", v, back.Value)
				}
				if v != 0 && !q.Equal(there) {
					t.Errorf("%v should equal %v", q, there)
				}
			}
		})
	}
}

func TestMismatchRejection(t *testing.T) {
	m := NewQuantity(1, meter, "")
	s := NewQuantity(1, second, "")

	if _, err := m.Convert(second, ""); !DimensionError.Has(err) {
		t.Errorf("Convert error = %v, want DimensionError", err)
	}
	if _, err := m.Add(s); !DimensionError.Has(err) {
		t.Errorf("Add error = %v, want DimensionError", err)
	}
	if _, err := m.Sub(s); !DimensionError.Has(err) {
		t.Errorf("Sub error = %v, want DimensionError", err)
	}
	if m.Equal(s) {
		t.Error("quantities of different measures should not be equal")
	}
}

func TestQuantityArithmetic(t *testing.T) {
	two := Scalar(2)
	km := NewQuantity(3, meter, "k")
	cm := NewQuantity(50, meter, "c")

	sum, err := km.Add(cm)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Prefix != "k" || !near(sum.Value, 3.0005) {
		t.Errorf("3km + 50cm = %v", sum)
	}

	diff, err := cm.Sub(km)
	if err != nil {
		t.Fatal(err)
	}
	if diff.Prefix != "c" || !near(diff.Value, -299950) {
		t.Errorf("50cm - 3km = %v", diff)
	}

	scaled := two.Mul(km)
	if scaled.Prefix != "k" || scaled.Unit.Symbol != "m" || !near(scaled.Value, 6) {
		t.Errorf("2 * 3km = %v", scaled)
	}
	scaled = km.Mul(NewQuantity(50, percent, ""))
	if scaled.Prefix != "k" || !near(scaled.Value, 1.5) {
		t.Errorf("3km * 50%% = %v", scaled)
	}

	area := km.Mul(cm)
	if area.Prefix != "" || area.Unit.Dims != (Dimensions{2, 0, 0, 0, 0, 0, 0}) || !near(area.Value, 1500) {
		t.Errorf("3km * 50cm = %v", area)
	}

	speed, err := km.Div(NewQuantity(2, second, ""))
	if err != nil {
		t.Fatal(err)
	}
	if speed.Unit.Dims != (Dimensions{1, -1, 0, 0, 0, 0, 0}) || !near(speed.Value, 1500) {
		t.Errorf("3km / 2s = %v", speed)
	}

	half, err := km.Div(two)
	if err != nil {
		t.Fatal(err)
	}
	if half.Prefix != "k" || !near(half.Value, 1.5) {
		t.Errorf("3km / 2 = %v", half)
	}

	if _, err := km.Div(Scalar(0)); !DivisionError.Has(err) {
		t.Errorf("division by zero error = %v", err)
	}
}

func TestQuantityPow(t *testing.T) {
	cm := NewQuantity(3, meter, "c")

	sq := cm.Pow(2)
	if sq.Unit.Dims != (Dimensions{2, 0, 0, 0, 0, 0, 0}) || !near(sq.Value, 0.0009) {
		t.Errorf("(3cm)^2 = %v", sq)
	}

	got, err := cm.PowQuantity(Scalar(3))
	if err != nil {
		t.Fatal(err)
	}
	if got.Unit.Dims != (Dimensions{3, 0, 0, 0, 0, 0, 0}) || !near(got.Value, 2.7e-5) {
		t.Errorf("(3cm)^3 = %v", got)
	}

	root, err := Scalar(16).PowQuantity(Scalar(0.5))
	if err != nil {
		t.Fatal(err)
	}
	if !root.IsNumber() || !near(root.Value, 4) {
		t.Errorf("16^0.5 = %v", root)
	}

	if _, err := cm.PowQuantity(Scalar(0.5)); !PowerError.Has(err) {
		t.Errorf("fractional power of length error = %v", err)
	}
	if _, err := Scalar(2).PowQuantity(cm); !DimensionError.Has(err) {
		t.Errorf("dimensioned exponent error = %v", err)
	}
	for _, x := range []float64{1e19, -1e19, math.MaxInt32 + 1} {
		if _, err := cm.PowQuantity(Scalar(x)); !PowerError.Has(err) {
			t.Errorf("cm^%g error = %v, want PowerError", x, err)
		}
	}
}

func TestQuantityFinite(t *testing.T) {
	if err := NewQuantity(3, meter, "").Finite(); err != nil {
		t.Errorf("3 m: %v", err)
	}
	for _, v := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		if err := NewQuantity(v, meter, "").Finite(); !OverflowError.Has(err) {
			t.Errorf("%v m error = %v, want OverflowError", v, err)
		}
	}
}

func TestQuantityString(t *testing.T) {
	tests := []struct {
		q    Quantity
		want string
	}{
		{Scalar(20), "20"},
		{NewQuantity(2.03, meter, ""), "2.03 m"},
		{NewQuantity(5, meter, "k"), "5 km"},
		{NewQuantity(5, kilogram.Div(second), ""), "5 kg*s^-1"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.q.String(); got != tt.want {
				t.Errorf("String = %q, want %q", got, tt.want)
			}
		})
	}
}
