package cas

import (
	"math/big"
	"sort"
	"strings"
)

// Ratio is a canonical rational function num/den: num and den are coprime,
// den has coprime integer coefficients and a positive leading coefficient.
// The zero value is 0.
type Ratio struct {
	num, den Poly
}

func newRatio(num, den Poly) Ratio {
	if num.IsZero() {
		return Ratio{}
	}
	if den.IsConst() {
		return Ratio{num: num.Scale(new(big.Rat).Inv(den.Const())), den: OnePoly()}
	}
	g := GCD(num, den)
	if !g.IsConst() {
		num, _ = num.divExact(g)
		den, _ = den.divExact(g)
	}
	c := den.content()
	inv := new(big.Rat).Inv(c)
	return Ratio{num: num.Scale(inv), den: den.Scale(inv)}
}

// NewRatio builds num/den in canonical form.
func NewRatio(num, den Poly) (Ratio, error) {
	if den.IsZero() {
		return Ratio{}, ErrDivisionByZero
	}
	return newRatio(num, den), nil
}

func FromPoly(p Poly) Ratio { return Ratio{num: p, den: OnePoly()} }

func FromRat(c *big.Rat) Ratio { return FromPoly(ConstPoly(c)) }

func Int(n int64) Ratio { return FromPoly(IntPoly(n)) }

// Frac returns a/b. b must be non-zero.
func Frac(a, b int64) Ratio { return FromRat(big.NewRat(a, b)) }

func Sym(name string) Ratio { return FromPoly(SymPoly(name)) }

func (r Ratio) Num() Poly { return r.num }

func (r Ratio) Den() Poly {
	if r.den.IsZero() {
		return OnePoly()
	}
	return r.den
}

func (r Ratio) IsZero() bool { return r.num.IsZero() }

// IsConst reports whether r has no symbols.
func (r Ratio) IsConst() bool { return r.num.IsConst() && r.Den().IsConst() }

// IsPoly reports whether the denominator is 1.
func (r Ratio) IsPoly() bool { return r.Den().IsConst() }

// Rat returns the value of a constant ratio.
func (r Ratio) Rat() (*big.Rat, bool) {
	if !r.IsConst() {
		return nil, false
	}
	return new(big.Rat).Quo(r.num.Const(), r.Den().Const()), true
}

func (r Ratio) Float64() (float64, bool) {
	q, ok := r.Rat()
	if !ok {
		return 0, false
	}
	f, _ := q.Float64()
	return f, true
}

func (r Ratio) Has(sym string) bool { return r.num.Has(sym) || r.Den().Has(sym) }

func (r Ratio) Vars() []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range append(r.num.Vars(), r.Den().Vars()...) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func (r Ratio) Add(o Ratio) Ratio {
	switch {
	case r.IsZero():
		return o
	case o.IsZero():
		return r
	case r.Den().Equal(o.Den()):
		return newRatio(r.num.Add(o.num), r.Den())
	}
	return newRatio(r.num.Mul(o.Den()).Add(o.num.Mul(r.Den())), r.Den().Mul(o.Den()))
}

func (r Ratio) Neg() Ratio { return Ratio{num: r.num.Neg(), den: r.den} }

func (r Ratio) Sub(o Ratio) Ratio { return r.Add(o.Neg()) }

func (r Ratio) Mul(o Ratio) Ratio {
	if r.IsZero() || o.IsZero() {
		return Ratio{}
	}
	return newRatio(r.num.Mul(o.num), r.Den().Mul(o.Den()))
}

func (r Ratio) Inv() (Ratio, error) {
	if r.IsZero() {
		return Ratio{}, ErrDivisionByZero
	}
	return newRatio(r.Den(), r.num), nil
}

func (r Ratio) Div(o Ratio) (Ratio, error) {
	inv, err := o.Inv()
	if err != nil {
		return Ratio{}, err
	}
	return r.Mul(inv), nil
}

func (r Ratio) Scale(c *big.Rat) Ratio {
	if c.Sign() == 0 {
		return Ratio{}
	}
	return Ratio{num: r.num.Scale(c), den: r.den}
}

// Pow raises r to an integer power; negative powers of zero fail.
func (r Ratio) Pow(n int) (Ratio, error) {
	if n < 0 {
		inv, err := r.Inv()
		if err != nil {
			return Ratio{}, err
		}
		return inv.Pow(-n)
	}
	return Ratio{num: r.num.Pow(n), den: r.Den().Pow(n)}, nil
}

func (r Ratio) Equal(o Ratio) bool {
	return r.num.Equal(o.num) && r.Den().Equal(o.Den())
}

// Subst replaces sym by v.
func (r Ratio) Subst(sym string, v Ratio) (Ratio, error) {
	if !r.Has(sym) {
		return r, nil
	}
	num := substPoly(r.num, sym, v)
	den := substPoly(r.Den(), sym, v)
	return num.Div(den)
}

func substPoly(p Poly, sym string, v Ratio) Ratio {
	cs := p.Coeffs(sym)
	var out Ratio
	for i := len(cs) - 1; i >= 0; i-- {
		out = out.Mul(v).Add(FromPoly(cs[i]))
	}
	return out
}

func (r Ratio) Diff(sym string) Ratio {
	n, d := r.num, r.Den()
	return newRatio(n.Diff(sym).Mul(d).Sub(n.Mul(d.Diff(sym))), d.Mul(d))
}

func (r Ratio) EvalComplex(env map[string]complex128) (complex128, error) {
	n, err := r.num.EvalComplex(env)
	if err != nil {
		return 0, err
	}
	d, err := r.Den().EvalComplex(env)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, ErrDivisionByZero
	}
	return n / d, nil
}

// EvalFloat evaluates r with every symbol bound to a real value.
func (r Ratio) EvalFloat(env map[string]float64) (float64, error) {
	cenv := make(map[string]complex128, len(env))
	for k, v := range env {
		cenv[k] = complex(v, 0)
	}
	v, err := r.EvalComplex(cenv)
	return real(v), err
}

func (r Ratio) String() string {
	if r.IsPoly() {
		return r.Scale(new(big.Rat).Inv(r.Den().Const())).num.String()
	}
	num := r.num.String()
	if r.num.Len() > 1 {
		num = "(" + num + ")"
	}
	den := r.Den().String()
	if r.Den().Len() > 1 || strings.ContainsAny(den, "*/") {
		den = "(" + den + ")"
	}
	return num + "/" + den
}
