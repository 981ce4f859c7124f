// Package expr tokenizes and evaluates unit expressions such as
// "2 km + 300 m" or "5 kg/s" against a catalog of units.
package expr

import (
	"fmt"

	"github.com/lemonberrylabs/unitconv/pkg/units"
)

// TokenType represents the type of a lexical token.
type TokenType int

const (
	TokenOperand  TokenType = iota // number with optional unit
	TokenOperator                  // one of ()[]{}+-*/^
	TokenEnd                       // end of expression
)

// Token represents a single lexical token. Op is set for operators and
// Operand for operands.
type Token struct {
	Type    TokenType
	Op      byte
	Operand units.Quantity
	Pos     int // position in source
}

// String returns a debug-friendly representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenOperand:
		return "OPERAND"
	case TokenOperator:
		return "OPERATOR"
	case TokenEnd:
		return "END"
	default:
		return "UNKNOWN"
	}
}

// String returns the operator glyph or the operand value.
func (t Token) String() string {
	switch t.Type {
	case TokenOperator:
		return string(t.Op)
	case TokenOperand:
		return t.Operand.String()
	default:
		return t.Type.String()
	}
}

// operators lists every operator glyph.
const operators = "()[]{}+-*/^"

func isOperator(ch byte) bool {
	for i := 0; i < len(operators); i++ {
		if operators[i] == ch {
			return true
		}
	}
	return false
}

func isOpening(op byte) bool {
	return op == '(' || op == '[' || op == '{'
}

func isClosing(op byte) bool {
	return op == ')' || op == ']' || op == '}'
}

// opening returns the bracket that a closing bracket matches.
func opening(closing byte) byte {
	switch closing {
	case ')':
		return '('
	case ']':
		return '['
	default:
		return '{'
	}
}

// precedence returns the binding strength of an operator. Brackets and the
// end marker bind weakest so that reduction stops at them.
func precedence(op byte) int {
	switch op {
	case '+', '-':
		return 1
	case '*', '/':
		return 2
	case '^':
		return 3
	default:
		return 0
	}
}

func describe(t Token) string {
	if t.Type == TokenEnd {
		return "end of expression"
	}
	return fmt.Sprintf("%q at position %d", t.String(), t.Pos)
}
