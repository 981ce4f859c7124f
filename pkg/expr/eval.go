package expr

import (
	"strings"

	"github.com/lemonberrylabs/unitconv/pkg/units"
)

// MaxExpressionLength is the maximum allowed length for a single expression.
const MaxExpressionLength = 400

// sentinel sits at the bottom of the operator stack.
const sentinel byte = 0

type opEntry struct {
	op  byte
	pos int
}

// evaluator is a two-stack operator precedence evaluator.
type evaluator struct {
	operands  []units.Quantity
	operators []opEntry
}

// Evaluate parses and evaluates an expression, resolving unit symbols with
// lookup. Operators are + - * / ^ with the usual precedence, all left
// associative. Any of (), [] and {} group, a bracket directly after an operand
// multiplies, and a leading - or + is a sign.
func Evaluate(input string, lookup UnitLookup) (units.Quantity, error) {
	if len(input) > MaxExpressionLength {
		return units.Quantity{}, SyntaxError.New("expression exceeds maximum length of %d characters", MaxExpressionLength)
	}

	tokens, err := NewLexer(input, lookup).Tokenize()
	if err != nil {
		return units.Quantity{}, err
	}

	e := &evaluator{operators: []opEntry{{op: sentinel}}}
	return e.run(tokens)
}

func (e *evaluator) run(tokens []Token) (units.Quantity, error) {
	expectOperand := true
	for _, tok := range tokens {
		switch tok.Type {
		case TokenOperand:
			if !expectOperand {
				return units.Quantity{}, SyntaxError.New("missing operator before %s", describe(tok))
			}
			e.operands = append(e.operands, tok.Operand)
			expectOperand = false

		case TokenOperator:
			var err error
			expectOperand, err = e.operator(tok, expectOperand)
			if err != nil {
				return units.Quantity{}, err
			}

		case TokenEnd:
			if expectOperand {
				return units.Quantity{}, SyntaxError.New("unexpected %s", describe(tok))
			}
			if err := e.reduce(0); err != nil {
				return units.Quantity{}, err
			}
			if top := e.top(); top.op != sentinel {
				return units.Quantity{}, SyntaxError.New("unclosed %q at position %d", string(top.op), top.pos)
			}
		}
	}

	if len(e.operands) != 1 {
		return units.Quantity{}, SyntaxError.New("malformed expression")
	}
	return e.operands[0], nil
}

// operator handles an operator token and returns whether an operand is
// expected next.
func (e *evaluator) operator(tok Token, expectOperand bool) (bool, error) {
	op := tok.Op
	switch {
	case isOpening(op):
		if !expectOperand {
			if err := e.binary(opEntry{op: '*', pos: tok.Pos}); err != nil {
				return false, err
			}
		}
		e.operators = append(e.operators, opEntry{op: op, pos: tok.Pos})
		return true, nil

	case isClosing(op):
		if expectOperand {
			return false, SyntaxError.New("unexpected %s", describe(tok))
		}
		if err := e.reduce(0); err != nil {
			return false, err
		}
		top := e.top()
		if top.op == sentinel {
			return false, SyntaxError.New("unmatched %s", describe(tok))
		}
		if top.op != opening(op) {
			return false, SyntaxError.New("%s does not close %q at position %d", describe(tok), string(top.op), top.pos)
		}
		e.operators = e.operators[:len(e.operators)-1]
		return false, nil

	case expectOperand && op == '-':
		// A sign multiplies by -1 without reducing, so -2^2 is -(2^2).
		e.operands = append(e.operands, units.Scalar(-1))
		e.operators = append(e.operators, opEntry{op: '*', pos: tok.Pos})
		return true, nil

	case expectOperand && op == '+':
		return true, nil

	case expectOperand:
		return false, SyntaxError.New("expected a value before %s", describe(tok))

	default:
		return true, e.binary(opEntry{op: op, pos: tok.Pos})
	}
}

// binary reduces everything that binds at least as tightly as op and then
// pushes op.
func (e *evaluator) binary(op opEntry) error {
	if err := e.reduce(precedence(op.op)); err != nil {
		return err
	}
	e.operators = append(e.operators, op)
	return nil
}

// reduce applies stacked operators while their precedence is at least prec.
// Brackets and the sentinel have precedence 0 and are never applied.
func (e *evaluator) reduce(prec int) error {
	for {
		top := e.top()
		if top.op == sentinel || isOpening(top.op) || precedence(top.op) < prec {
			return nil
		}
		e.operators = e.operators[:len(e.operators)-1]
		if err := e.apply(top); err != nil {
			return err
		}
	}
}

func (e *evaluator) top() opEntry {
	return e.operators[len(e.operators)-1]
}

func (e *evaluator) apply(op opEntry) error {
	n := len(e.operands)
	if n < 2 {
		return SyntaxError.New("missing operand for %q at position %d", string(op.op), op.pos)
	}
	a, b := e.operands[n-2], e.operands[n-1]
	e.operands = e.operands[:n-2]

	var (
		r   units.Quantity
		err error
	)
	switch op.op {
	case '+':
		r, err = a.Add(b)
	case '-':
		r, err = a.Sub(b)
	case '*':
		r = a.Mul(b)
	case '/':
		r, err = a.Div(b)
	case '^':
		r, err = a.PowQuantity(b)
	default:
		return SyntaxError.New("unknown operator %q at position %d", string(op.op), op.pos)
	}
	if err != nil {
		return err
	}
	if err := r.Finite(); err != nil {
		return err
	}
	e.operands = append(e.operands, r)
	return nil
}

// EvaluateIn evaluates input, which may end in a conversion target written
// as "expr -> unit" or "expr in unit". Without a target the result is
// returned as evaluated.
func EvaluateIn(input string, lookup UnitLookup) (units.Quantity, error) {
	expression, target := SplitTarget(input, lookup)
	if target == "" && strings.Contains(input, "->") {
		return units.Quantity{}, SyntaxError.New("missing unit after \"->\"")
	}
	q, err := Evaluate(expression, lookup)
	if err != nil {
		return units.Quantity{}, err
	}
	if target == "" {
		return q, nil
	}
	u, prefix, err := ResolveUnit(target, lookup)
	if err != nil {
		return units.Quantity{}, err
	}
	c, err := q.Convert(u, prefix)
	if err != nil {
		return units.Quantity{}, err
	}
	if err := c.Finite(); err != nil {
		return units.Quantity{}, err
	}
	return c, nil
}

// SplitTarget separates a trailing "-> unit" or " in unit" from an
// expression. The last " in " is used so that "1 ft in in" converts feet to
// inches, and only when what follows it resolves to a unit: "in" is also
// the inch, so "3 in + 2 in" has no target.
func SplitTarget(input string, lookup UnitLookup) (expression, target string) {
	if i := strings.LastIndex(input, "->"); i >= 0 {
		return input[:i], strings.TrimSpace(input[i+2:])
	}
	if i := strings.LastIndex(input, " in "); i >= 0 {
		if t := strings.TrimSpace(input[i+4:]); t != "" {
			if _, _, err := ResolveUnit(t, lookup); err == nil {
				return input[:i], t
			}
		}
	}
	return input, ""
}
