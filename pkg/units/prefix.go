package units

// prefixTable lists the SI prefixes from largest to smallest. "da" is deca and
// "mu" stands in for the Greek micro sign.
var prefixTable = []struct {
	prefix string
	scale  float64
}{
	{"Y", 1e24},
	{"Z", 1e21},
	{"E", 1e18},
	{"P", 1e15},
	{"T", 1e12},
	{"G", 1e9},
	{"M", 1e6},
	{"k", 1e3},
	{"h", 1e2},
	{"da", 1e1},
	{"", 1},
	{"d", 1e-1},
	{"c", 1e-2},
	{"m", 1e-3},
	{"mu", 1e-6},
	{"n", 1e-9},
	{"p", 1e-12},
	{"f", 1e-15},
	{"a", 1e-18},
	{"z", 1e-21},
	{"y", 1e-24},
}

var prefixScales = func() map[string]float64 {
	m := make(map[string]float64, len(prefixTable))
	for _, p := range prefixTable {
		m[p.prefix] = p.scale
	}
	return m
}()

// PrefixScale returns the scale factor of an SI prefix. The lookup is case
// sensitive; unknown prefixes scale by 1.
func PrefixScale(prefix string) float64 {
	if s, ok := prefixScales[prefix]; ok {
		return s
	}
	return 1
}

// IsPrefix reports whether prefix is a known, non-empty SI prefix.
func IsPrefix(prefix string) bool {
	_, ok := prefixScales[prefix]
	return ok && prefix != ""
}

// Prefixes returns every prefix, including the empty one, from largest to
// smallest scale.
func Prefixes() []string {
	out := make([]string, len(prefixTable))
	for i, p := range prefixTable {
		out[i] = p.prefix
	}
	return out
}

// SplitPrefix splits symbol into a known prefix and the remainder when
// accept(remainder) holds. Two-letter prefixes are tried before one-letter
// ones. The remainder is never empty.
func SplitPrefix(symbol string, accept func(rest string) bool) (prefix, rest string, ok bool) {
	for _, n := range []int{2, 1} {
		if len(symbol) <= n {
			continue
		}
		p := symbol[:n]
		if IsPrefix(p) && accept(symbol[n:]) {
			return p, symbol[n:], true
		}
	}
	return "", "", false
}
