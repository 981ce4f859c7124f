package expr

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zeebo/errs"

	"github.com/lemonberrylabs/unitconv/pkg/units"
)

var (
	// SyntaxError is returned for malformed expressions.
	SyntaxError = errs.Class("syntax error")
	// UnknownUnitError is returned when a unit symbol cannot be resolved.
	UnknownUnitError = errs.Class("unknown unit")
)

// UnitLookup resolves a unit symbol exactly. *catalog.Catalog implements it.
type UnitLookup interface {
	Lookup(symbol string) (units.Unit, bool)
}

// Lexer tokenizes a unit expression. Whitespace is insignificant: it is
// removed before scanning, so "k m" reads the same as "km".
type Lexer struct {
	input   string
	offsets []int // offsets[i] is the position of input[i] in the original text
	pos     int
	lookup  UnitLookup
	tokens  []Token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string, lookup UnitLookup) *Lexer {
	var sb strings.Builder
	offsets := make([]int, 0, len(input))
	for i, r := range input {
		if unicode.IsSpace(r) {
			continue
		}
		n := sb.Len()
		sb.WriteRune(r)
		for j := n; j < sb.Len(); j++ {
			offsets = append(offsets, i)
		}
	}
	return &Lexer{input: sb.String(), offsets: offsets, lookup: lookup}
}

// Tokenize scans the entire input and returns all tokens, ending with a
// TokenEnd.
func (l *Lexer) Tokenize() ([]Token, error) {
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		l.tokens = append(l.tokens, tok)
		if tok.Type == TokenEnd {
			break
		}
	}
	return l.tokens, nil
}

// position maps an index into the stripped input back to the original text.
func (l *Lexer) position(i int) int {
	if i < len(l.offsets) {
		return l.offsets[i]
	}
	if len(l.offsets) == 0 {
		return 0
	}
	return l.offsets[len(l.offsets)-1] + 1
}

// next returns the next token from the input.
func (l *Lexer) next() (Token, error) {
	if l.pos >= len(l.input) {
		return Token{Type: TokenEnd, Pos: l.position(l.pos)}, nil
	}

	ch := l.input[l.pos]
	if isOperator(ch) {
		l.pos++
		return Token{Type: TokenOperator, Op: ch, Pos: l.position(l.pos - 1)}, nil
	}
	return l.readOperand()
}

// readOperand reads an optional number followed by an optional unit symbol.
// A missing number means 1; a missing symbol means a plain number.
func (l *Lexer) readOperand() (Token, error) {
	start := l.pos
	value := 1.0
	if ch := l.input[l.pos]; ch == '.' || isDigit(ch) {
		v, err := l.readNumber()
		if err != nil {
			return Token{}, err
		}
		value = v
	}

	symStart := l.pos
	for l.pos < len(l.input) && !isOperator(l.input[l.pos]) {
		l.pos++
	}
	symbol := l.input[symStart:l.pos]

	q := units.Scalar(value)
	if symbol != "" {
		u, prefix, err := ResolveUnit(symbol, l.lookup)
		if err != nil {
			return Token{}, UnknownUnitError.New("%q at position %d", symbol, l.position(symStart))
		}
		q = units.NewQuantity(value, u, prefix)
	}
	return Token{Type: TokenOperand, Operand: q, Pos: l.position(start)}, nil
}

// readNumber reads a decimal literal with an optional exponent. The exponent
// marker is only consumed when digits follow it, so "2e" leaves "e" to be
// read as a unit.
func (l *Lexer) readNumber() (float64, error) {
	start := l.pos
	for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '.') {
		l.pos++
	}
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		i := l.pos + 1
		if i < len(l.input) && (l.input[i] == '+' || l.input[i] == '-') {
			i++
		}
		if i < len(l.input) && isDigit(l.input[i]) {
			for i < len(l.input) && isDigit(l.input[i]) {
				i++
			}
			l.pos = i
		}
	}

	raw := l.input[start:l.pos]
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, SyntaxError.New("invalid number %q at position %d", raw, l.position(start))
	}
	return f, nil
}

// ResolveUnit finds the unit for a symbol: an exact catalog match wins,
// otherwise the symbol is split into an SI prefix and a catalog symbol.
func ResolveUnit(symbol string, lookup UnitLookup) (units.Unit, string, error) {
	if !utf8.ValidString(symbol) {
		return units.Unit{}, "", UnknownUnitError.New("%q", symbol)
	}
	if u, ok := lookup.Lookup(symbol); ok {
		return u, "", nil
	}
	var found units.Unit
	prefix, _, ok := units.SplitPrefix(symbol, func(rest string) bool {
		u, ok := lookup.Lookup(rest)
		found = u
		return ok
	})
	if !ok {
		return units.Unit{}, "", UnknownUnitError.New("%q", symbol)
	}
	return found, prefix, nil
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
