package cas

import (
	"fmt"
	"math/big"
)

// Laplace returns the one-sided Laplace transform of f in the variable s.
// Everlasting terms are treated as causal.
func Laplace(f TimeFunc, s string) (Ratio, error) {
	var out Ratio
	for _, t := range f.Terms {
		r, err := laplaceTerm(t, s)
		if err != nil {
			return Ratio{}, err
		}
		out = out.Add(r)
	}
	return out, nil
}

func laplaceTerm(t TimeTerm, s string) (Ratio, error) {
	if t.Shape == Impulse {
		if t.Pow != 0 || !t.Decay.IsZero() || t.Osc != NoOsc {
			return Ratio{}, fmt.Errorf("%w: %s", ErrUnsupportedTransform, t)
		}
		return t.Coef, nil
	}

	x := Sym(s).Sub(t.Decay)
	if t.Osc == NoOsc {
		if t.Root != 0 {
			return Ratio{}, fmt.Errorf("%w: %s", ErrUnsupportedTransform, t)
		}
		d, _ := x.Pow(t.Pow + 1)
		return t.Coef.Scale(factorial(t.Pow)).Div(d)
	}
	if t.Pow != 0 {
		return Ratio{}, fmt.Errorf("%w: %s", ErrUnsupportedTransform, t)
	}

	x2 := x.Mul(x)
	var d Ratio
	if t.Osc == Cos || t.Osc == Sin {
		d = x2.Add(t.Omega2)
	} else {
		d = x2.Sub(t.Omega2)
	}

	k := t.Root
	num := x
	if t.Osc == Sin || t.Osc == Sinh {
		k++
		num = Int(1)
	}
	wk, err := rootPow(t.Omega2, k)
	if err != nil {
		return Ratio{}, err
	}
	return t.Coef.Mul(wk).Mul(num).Div(d)
}

// rootPow returns sqrt(w2)^k.
func rootPow(w2 Ratio, k int) (Ratio, error) {
	if k%2 == 0 {
		return w2.Pow(k / 2)
	}
	w, ok := sqrtRatio(w2)
	if !ok {
		return Ratio{}, fmt.Errorf("%w: sqrt(%s) is not rational", ErrUnsupportedTransform, w2)
	}
	return w.Pow(k)
}

func factorial(n int) *big.Rat {
	f := big.NewInt(1)
	for i := 2; i <= n; i++ {
		f.Mul(f, big.NewInt(int64(i)))
	}
	return new(big.Rat).SetInt(f)
}

type root struct {
	val  Ratio
	mult int
}

// InverseLaplace returns the causal time function whose transform is F.
// The denominator must split into linear factors, plus at most one
// irreducible quadratic; higher-order symbolic denominators fail with
// ErrUnsupportedTransform.
func InverseLaplace(F Ratio, s string) (TimeFunc, error) {
	if F.IsZero() {
		return TimeFunc{}, nil
	}
	num, den := F.Num(), F.Den()
	if !den.Has(s) {
		if num.Has(s) {
			return TimeFunc{}, fmt.Errorf("%w: improper %s", ErrUnsupportedTransform, F)
		}
		return ImpulseTime(F), nil
	}

	var out TimeFunc
	if num.Degree(s) >= den.Degree(s) {
		q, r, err := divideIn(F, s)
		if err != nil {
			return TimeFunc{}, err
		}
		if q.Has(s) {
			return TimeFunc{}, fmt.Errorf("%w: improper %s", ErrUnsupportedTransform, F)
		}
		out = ImpulseTime(q)
		F = r
	}

	roots, quad, err := splitDenominator(den, s)
	if err != nil {
		return TimeFunc{}, err
	}

	rest := F
	for _, rt := range roots {
		factor := Sym(s).Sub(rt.val)
		fm, _ := factor.Pow(rt.mult)
		g := F.Mul(fm)
		for j := 0; j < rt.mult; j++ {
			at, err := g.Subst(s, rt.val)
			if err != nil {
				return TimeFunc{}, fmt.Errorf("%w: residue at %s: %v", ErrUnsupportedTransform, rt.val, err)
			}
			a := at.Scale(new(big.Rat).Inv(factorial(j)))
			k := rt.mult - j
			if !a.IsZero() {
				out = out.Add(TimeFunc{Terms: []TimeTerm{{
					Coef:  a.Scale(new(big.Rat).Inv(factorial(k - 1))),
					Pow:   k - 1,
					Decay: rt.val,
					Shape: Step,
				}}})
				fk, _ := factor.Pow(k)
				part, _ := a.Div(fk)
				rest = rest.Sub(part)
			}
			g = g.Diff(s)
		}
	}

	if quad == nil {
		if !rest.IsZero() {
			return TimeFunc{}, fmt.Errorf("%w: residual %s", ErrUnsupportedTransform, rest)
		}
		return out, nil
	}
	q, err := inverseQuadratic(rest, s)
	if err != nil {
		return TimeFunc{}, err
	}
	return out.Add(q), nil
}

// divideIn splits F into a polynomial part in s and a proper remainder.
func divideIn(F Ratio, s string) (Ratio, Ratio, error) {
	num := coeffRatios(F.Num(), s)
	den := coeffRatios(F.Den(), s)
	dd := len(den) - 1
	lead := den[dd]
	var q Ratio
	for len(num)-1 >= dd {
		dn := len(num) - 1
		c, err := num[dn].Div(lead)
		if err != nil {
			return Ratio{}, Ratio{}, err
		}
		mono, _ := Sym(s).Pow(dn - dd)
		q = q.Add(c.Mul(mono))
		for i := 0; i <= dd; i++ {
			num[dn-dd+i] = num[dn-dd+i].Sub(c.Mul(den[i]))
		}
		num = num[:dn]
	}
	var r Ratio
	for i := len(num) - 1; i >= 0; i-- {
		r = r.Mul(Sym(s)).Add(num[i])
	}
	r, err := r.Div(FromPoly(F.Den()))
	if err != nil {
		return Ratio{}, Ratio{}, err
	}
	// F = q + r with r = remainder / den
	return q, r, nil
}

func coeffRatios(p Poly, s string) []Ratio {
	cs := p.Coeffs(s)
	out := make([]Ratio, len(cs))
	for i, c := range cs {
		out[i] = FromPoly(c)
	}
	return out
}

// splitDenominator finds the roots of den in s. When an irreducible
// quadratic factor remains its coefficients are returned, lowest first.
func splitDenominator(den Poly, s string) ([]root, []Ratio, error) {
	cs := coeffRatios(den, s)
	var roots []root
	add := func(v Ratio, m int) {
		for i := range roots {
			if roots[i].val.Equal(v) {
				roots[i].mult += m
				return
			}
		}
		roots = append(roots, root{val: v, mult: m})
	}

	m := 0
	for m < len(cs) && cs[m].IsZero() {
		m++
	}
	if m > 0 {
		add(Ratio{}, m)
	}
	cs = cs[m:]

	for len(cs) > 3 {
		r, ok := rationalRoot(cs)
		if !ok {
			return nil, nil, fmt.Errorf("%w: cannot factor denominator of degree %d", ErrUnsupportedTransform, len(cs)-1)
		}
		add(r, 1)
		cs = deflate(cs, r)
	}

	switch len(cs) - 1 {
	case 1:
		v, _ := cs[0].Neg().Div(cs[1])
		add(v, 1)
	case 2:
		a, b, c := cs[2], cs[1], cs[0]
		disc := b.Mul(b).Sub(a.Mul(c).Scale(big.NewRat(4, 1)))
		twoA := a.Scale(big.NewRat(2, 1))
		if disc.IsZero() {
			v, _ := b.Neg().Div(twoA)
			add(v, 2)
			break
		}
		sq, ok := sqrtRatio(disc)
		if !ok {
			return roots, cs, nil
		}
		r1, _ := b.Neg().Add(sq).Div(twoA)
		r2, _ := b.Neg().Sub(sq).Div(twoA)
		add(r1, 1)
		add(r2, 1)
	}
	return roots, nil, nil
}

// Root is a zero of a polynomial with its multiplicity.
type Root struct {
	Value Complex
	Mult  int
}

// Roots returns the zeros of p in s. Complex pairs are reported when the
// imaginary part has an exact square root; otherwise ErrUnsupportedTransform.
func Roots(p Poly, s string) ([]Root, error) {
	if p.Degree(s) <= 0 {
		return nil, nil
	}
	rs, quad, err := splitDenominator(p, s)
	if err != nil {
		return nil, err
	}
	out := make([]Root, 0, len(rs)+2)
	for _, r := range rs {
		out = append(out, Root{Value: Real(r.val), Mult: r.mult})
	}
	if quad == nil {
		return out, nil
	}
	a, b, c := quad[2], quad[1], quad[0]
	alpha, _ := b.Div(a.Scale(big.NewRat(2, 1)))
	ca, _ := c.Div(a)
	w, ok := sqrtRatio(ca.Sub(alpha.Mul(alpha)))
	if !ok {
		return nil, fmt.Errorf("%w: roots of %s are not expressible", ErrUnsupportedTransform, p)
	}
	out = append(out,
		Root{Value: Complex{Re: alpha.Neg(), Im: w}, Mult: 1},
		Root{Value: Complex{Re: alpha.Neg(), Im: w.Neg()}, Mult: 1})
	return out, nil
}

// rationalRoot searches p/q candidates for a polynomial with constant
// rational coefficients.
func rationalRoot(cs []Ratio) (Ratio, bool) {
	ints, ok := integerCoeffs(cs)
	if !ok {
		return Ratio{}, false
	}
	ps := divisors(ints[0])
	qs := divisors(ints[len(ints)-1])
	if ps == nil || qs == nil {
		return Ratio{}, false
	}
	for _, p := range ps {
		for _, q := range qs {
			for _, sign := range []int64{1, -1} {
				cand := new(big.Rat).SetFrac(new(big.Int).Mul(p, big.NewInt(sign)), q)
				if evalInt(ints, cand).Sign() == 0 {
					return FromRat(cand), true
				}
			}
		}
	}
	return Ratio{}, false
}

func integerCoeffs(cs []Ratio) ([]*big.Int, bool) {
	l := big.NewInt(1)
	rats := make([]*big.Rat, len(cs))
	for i, c := range cs {
		q, ok := c.Rat()
		if !ok {
			return nil, false
		}
		rats[i] = q
		d := q.Denom()
		l.Mul(l, new(big.Int).Quo(d, new(big.Int).GCD(nil, nil, l, d)))
	}
	out := make([]*big.Int, len(cs))
	for i, q := range rats {
		v := new(big.Rat).Mul(q, new(big.Rat).SetInt(l))
		out[i] = new(big.Int).Set(v.Num())
	}
	return out, true
}

const maxDivisorSearch = 1_000_000

func divisors(n *big.Int) []*big.Int {
	a := new(big.Int).Abs(n)
	if a.Sign() == 0 || !a.IsInt64() || a.Int64() > maxDivisorSearch {
		return nil
	}
	v := a.Int64()
	var out []*big.Int
	for i := int64(1); i <= v; i++ {
		if v%i == 0 {
			out = append(out, big.NewInt(i))
		}
	}
	return out
}

func evalInt(cs []*big.Int, x *big.Rat) *big.Rat {
	sum := new(big.Rat)
	for i := len(cs) - 1; i >= 0; i-- {
		sum.Mul(sum, x)
		sum.Add(sum, new(big.Rat).SetInt(cs[i]))
	}
	return sum
}

// deflate divides the polynomial with coefficients cs by (s - r).
func deflate(cs []Ratio, r Ratio) []Ratio {
	n := len(cs) - 1
	out := make([]Ratio, n)
	carry := cs[n]
	for i := n - 1; i >= 0; i-- {
		out[i] = carry
		carry = cs[i].Add(carry.Mul(r))
	}
	return out
}

// inverseQuadratic handles (B1*s + B0)/(a*s^2 + b*s + c) with complex roots:
// exp(-alpha*t)*(A*cos(w*t) + (B - A*alpha)/w*sin(w*t)) with w^2 = c/a - alpha^2.
func inverseQuadratic(F Ratio, s string) (TimeFunc, error) {
	if F.IsZero() {
		return TimeFunc{}, nil
	}
	num := coeffRatios(F.Num(), s)
	den := coeffRatios(F.Den(), s)
	if len(den) != 3 || len(num) > 2 {
		return TimeFunc{}, fmt.Errorf("%w: %s", ErrUnsupportedTransform, F)
	}
	a, b, c := den[2], den[1], den[0]
	var b0, b1 Ratio
	b0 = num[0]
	if len(num) == 2 {
		b1 = num[1]
	}

	alpha, _ := b.Div(a.Scale(big.NewRat(2, 1)))
	ca, _ := c.Div(a)
	w2 := ca.Sub(alpha.Mul(alpha))
	A, _ := b1.Div(a)
	B0, _ := b0.Div(a)
	B := B0.Sub(A.Mul(alpha))

	cosOsc, sinOsc := Cos, Sin
	if v, ok := w2.Rat(); ok && v.Sign() < 0 {
		cosOsc, sinOsc = Cosh, Sinh
		w2 = w2.Neg()
	}
	decay := alpha.Neg()
	var out TimeFunc
	if !A.IsZero() {
		out = out.Add(TimeFunc{Terms: []TimeTerm{{Coef: A, Decay: decay, Osc: cosOsc, Omega2: w2, Shape: Step}}})
	}
	if !B.IsZero() {
		out = out.Add(TimeFunc{Terms: []TimeTerm{{Coef: B, Decay: decay, Osc: sinOsc, Omega2: w2, Root: -1, Shape: Step}}})
	}
	return out, nil
}
