package cas

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

const (
	LaplaceVar = "s"
	TimeVar    = "t"
	OmegaVar   = "omega"
)

// Node is a parsed expression tree.
type Node interface {
	String() string
}

type numNode struct{ val *big.Rat }

type symNode struct{ name string }

type unaryNode struct{ x Node }

type binNode struct {
	op   byte
	l, r Node
}

type callNode struct {
	fn  string
	arg Node
}

func (n numNode) String() string   { return n.val.RatString() }
func (n symNode) String() string   { return n.name }
func (n unaryNode) String() string { return "-(" + n.x.String() + ")" }
func (n binNode) String() string {
	return "(" + n.l.String() + string(n.op) + n.r.String() + ")"
}
func (n callNode) String() string { return n.fn + "(" + n.arg.String() + ")" }

var siPrefix = map[string]int{
	"T":   12,
	"G":   9,
	"meg": 6,
	"K":   3,
	"k":   3,
	"m":   -3,
	"u":   -6,
	"n":   -9,
	"p":   -12,
	"f":   -15,
}

type parser struct {
	in  string
	pos int
}

// Parse reads an arithmetic expression. Numbers may carry an SI suffix
// (10k, 4.7u, 2meg) and are kept exact. A surrounding {...} is allowed.
func Parse(input string) (Node, error) {
	p := &parser{in: input}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.in) {
		return nil, p.errorf("unexpected %q", p.in[p.pos:])
	}
	return n, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Input: p.in, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.in) && unicode.IsSpace(rune(p.in[p.pos])) {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.in) {
		return 0
	}
	return p.in[p.pos]
}

func (p *parser) expr() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		c := p.peek()
		if c != '+' && c != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binNode{op: c, l: left, r: right}
	}
}

func (p *parser) term() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		c := p.peek()
		if c != '/' && !(c == '*' && !strings.HasPrefix(p.in[p.pos:], "**")) {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = binNode{op: c, l: left, r: right}
	}
}

func (p *parser) unary() (Node, error) {
	switch p.peek() {
	case '-':
		p.pos++
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return unaryNode{x: x}, nil
	case '+':
		p.pos++
		return p.unary()
	}
	return p.power()
}

func (p *parser) power() (Node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	switch {
	case strings.HasPrefix(p.in[p.pos:], "**"):
		p.pos += 2
	case p.peek() == '^':
		p.pos++
	default:
		return base, nil
	}
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	return binNode{op: '^', l: base, r: exp}, nil
}

func (p *parser) primary() (Node, error) {
	c := p.peek()
	switch {
	case c == 0:
		return nil, p.errorf("unexpected end of expression")
	case c == '(' || c == '{':
		closing := byte(')')
		if c == '{' {
			closing = '}'
		}
		p.pos++
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.peek() != closing {
			return nil, p.errorf("expected %q", closing)
		}
		p.pos++
		return n, nil
	case c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	case c == '_' || unicode.IsLetter(rune(c)):
		start := p.pos
		for p.pos < len(p.in) && isIdent(p.in[p.pos]) {
			p.pos++
		}
		name := p.in[start:p.pos]
		if p.peek() == '(' {
			p.pos++
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			if p.peek() != ')' {
				return nil, p.errorf("expected ')'")
			}
			p.pos++
			return callNode{fn: name, arg: arg}, nil
		}
		return symNode{name: name}, nil
	}
	return nil, p.errorf("unexpected %q", string(c))
}

func isIdent(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c))
}

func (p *parser) number() (Node, error) {
	start := p.pos
	digits := func() {
		for p.pos < len(p.in) && p.in[p.pos] >= '0' && p.in[p.pos] <= '9' {
			p.pos++
		}
	}
	digits()
	if p.pos < len(p.in) && p.in[p.pos] == '.' {
		p.pos++
		digits()
	}
	if p.pos < len(p.in) && (p.in[p.pos] == 'e' || p.in[p.pos] == 'E') {
		save := p.pos
		p.pos++
		if p.pos < len(p.in) && (p.in[p.pos] == '+' || p.in[p.pos] == '-') {
			p.pos++
		}
		if p.pos < len(p.in) && p.in[p.pos] >= '0' && p.in[p.pos] <= '9' {
			digits()
		} else {
			p.pos = save
		}
	}
	val, ok := new(big.Rat).SetString(p.in[start:p.pos])
	if !ok {
		return nil, p.errorf("bad number %q", p.in[start:p.pos])
	}

	// SI suffix, only when it is not the start of a longer identifier.
	rest := p.in[p.pos:]
	for _, suffix := range []string{"meg", "T", "G", "K", "k", "m", "u", "n", "p", "f"} {
		if !strings.HasPrefix(rest, suffix) {
			continue
		}
		if len(rest) > len(suffix) && isIdent(rest[len(suffix)]) {
			break
		}
		p.pos += len(suffix)
		val.Mul(val, pow10(siPrefix[suffix]))
		break
	}
	if p.pos < len(p.in) && isIdent(p.in[p.pos]) {
		return nil, p.errorf("unexpected %q after number", string(p.in[p.pos]))
	}
	return numNode{val: val}, nil
}

func pow10(n int) *big.Rat {
	e := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(n))), nil)
	if n < 0 {
		return new(big.Rat).SetFrac(big.NewInt(1), e)
	}
	return new(big.Rat).SetInt(e)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ParseRatio parses a rational-function expression such as "1/(s*C1)".
func ParseRatio(input string) (Ratio, error) {
	n, err := Parse(input)
	if err != nil {
		return Ratio{}, err
	}
	return ToRatio(n)
}

// ToRatio evaluates a parsed tree as a rational function. Function calls are
// rejected.
func ToRatio(n Node) (Ratio, error) {
	switch n := n.(type) {
	case numNode:
		return FromRat(n.val), nil
	case symNode:
		return Sym(n.name), nil
	case unaryNode:
		x, err := ToRatio(n.x)
		return x.Neg(), err
	case callNode:
		return Ratio{}, fmt.Errorf("%w: function %s in rational expression", ErrNotPolynomial, n.fn)
	case binNode:
		l, err := ToRatio(n.l)
		if err != nil {
			return Ratio{}, err
		}
		if n.op == '^' {
			k, err := intExponent(n.r)
			if err != nil {
				return Ratio{}, err
			}
			return l.Pow(k)
		}
		r, err := ToRatio(n.r)
		if err != nil {
			return Ratio{}, err
		}
		switch n.op {
		case '+':
			return l.Add(r), nil
		case '-':
			return l.Sub(r), nil
		case '*':
			return l.Mul(r), nil
		case '/':
			return l.Div(r)
		}
	}
	return Ratio{}, fmt.Errorf("%w: unexpected node %v", ErrSyntax, n)
}

func intExponent(n Node) (int, error) {
	r, err := ToRatio(n)
	if err != nil {
		return 0, err
	}
	q, ok := r.Rat()
	if !ok || !q.IsInt() || !q.Num().IsInt64() {
		return 0, fmt.Errorf("%w: exponent %s is not an integer", ErrNotPolynomial, n)
	}
	return int(q.Num().Int64()), nil
}
