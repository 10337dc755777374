package cas

import (
	"fmt"
	"math/big"
)

// Service is the algebra backend used by the solver. Engine is the built-in
// implementation; circuits accept any other.
type Service interface {
	Simplify(r Ratio) Ratio
	SolveLinear(a [][]Ratio, b [][]Ratio) ([][]Ratio, error)
	Laplace(f TimeFunc, s string) (Ratio, error)
	InverseLaplace(f Ratio, s string) (TimeFunc, error)
	Limit(r Ratio, sym string, at Point) (Ratio, error)
	Differentiate(r Ratio, sym string) Ratio
	Integrate(r Ratio, sym string) (Ratio, error)
}

type Engine struct{}

var _ Service = Engine{}

// Simplify returns r unchanged: ratios are kept canonical on construction.
func (Engine) Simplify(r Ratio) Ratio { return r }

func (Engine) SolveLinear(a [][]Ratio, b [][]Ratio) ([][]Ratio, error) {
	return SolveLinear(a, b)
}

func (Engine) Laplace(f TimeFunc, s string) (Ratio, error) { return Laplace(f, s) }

func (Engine) InverseLaplace(f Ratio, s string) (TimeFunc, error) { return InverseLaplace(f, s) }

func (Engine) Limit(r Ratio, sym string, at Point) (Ratio, error) { return Limit(r, sym, at) }

func (Engine) Differentiate(r Ratio, sym string) Ratio { return r.Diff(sym) }

// Integrate is the antiderivative with zero constant. Only expressions whose
// denominator is free of sym are supported.
func (Engine) Integrate(r Ratio, sym string) (Ratio, error) {
	if r.Den().Has(sym) {
		return Ratio{}, fmt.Errorf("%w: integrate %s d%s", ErrNotPolynomial, r, sym)
	}
	cs := r.Num().Coeffs(sym)
	var out Ratio
	for k, c := range cs {
		if c.IsZero() {
			continue
		}
		xk, _ := Sym(sym).Pow(k + 1)
		out = out.Add(FromPoly(c).Mul(xk).Scale(big.NewRat(1, int64(k+1))))
	}
	den := FromPoly(r.Den())
	return out.Div(den)
}
