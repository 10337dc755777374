package cas

import (
	"fmt"
	"math/big"
	"math/cmplx"
	"sort"
	"strings"
)

// Poly is an immutable multivariate polynomial with rational coefficients.
// The zero value is the zero polynomial.
type Poly struct {
	terms map[string]term
}

type term struct {
	mono Monomial
	coef *big.Rat
}

func ratInt(n int64) *big.Rat { return new(big.Rat).SetInt64(n) }

func ConstPoly(c *big.Rat) Poly {
	if c.Sign() == 0 {
		return Poly{}
	}
	return Poly{terms: map[string]term{"": {mono: Monomial{}, coef: new(big.Rat).Set(c)}}}
}

func IntPoly(n int64) Poly { return ConstPoly(ratInt(n)) }

func OnePoly() Poly { return IntPoly(1) }

func SymPoly(name string) Poly {
	m := Monomial{{name, 1}}
	return Poly{terms: map[string]term{m.key(): {mono: m, coef: ratInt(1)}}}
}

func monoPoly(m Monomial, c *big.Rat) Poly {
	if c.Sign() == 0 {
		return Poly{}
	}
	return Poly{terms: map[string]term{m.key(): {mono: m, coef: new(big.Rat).Set(c)}}}
}

// accumulate adds c*m into dst, dropping cancelled terms.
func accumulate(dst map[string]term, m Monomial, c *big.Rat) {
	k := m.key()
	if t, ok := dst[k]; ok {
		sum := new(big.Rat).Add(t.coef, c)
		if sum.Sign() == 0 {
			delete(dst, k)
			return
		}
		dst[k] = term{mono: t.mono, coef: sum}
		return
	}
	if c.Sign() != 0 {
		dst[k] = term{mono: m, coef: new(big.Rat).Set(c)}
	}
}

func (p Poly) IsZero() bool { return len(p.terms) == 0 }

func (p Poly) Len() int { return len(p.terms) }

func (p Poly) IsConst() bool {
	if len(p.terms) == 0 {
		return true
	}
	_, ok := p.terms[""]
	return ok && len(p.terms) == 1
}

// Const returns the constant term.
func (p Poly) Const() *big.Rat {
	if t, ok := p.terms[""]; ok {
		return new(big.Rat).Set(t.coef)
	}
	return new(big.Rat)
}

func (p Poly) Add(q Poly) Poly {
	if p.IsZero() {
		return q
	}
	if q.IsZero() {
		return p
	}
	out := make(map[string]term, len(p.terms)+len(q.terms))
	for k, t := range p.terms {
		out[k] = t
	}
	for _, t := range q.terms {
		accumulate(out, t.mono, t.coef)
	}
	return Poly{terms: out}
}

func (p Poly) Neg() Poly {
	out := make(map[string]term, len(p.terms))
	for k, t := range p.terms {
		out[k] = term{mono: t.mono, coef: new(big.Rat).Neg(t.coef)}
	}
	return Poly{terms: out}
}

func (p Poly) Sub(q Poly) Poly { return p.Add(q.Neg()) }

func (p Poly) Mul(q Poly) Poly {
	if p.IsZero() || q.IsZero() {
		return Poly{}
	}
	out := make(map[string]term, len(p.terms)*len(q.terms))
	for _, a := range p.terms {
		for _, b := range q.terms {
			accumulate(out, a.mono.mul(b.mono), new(big.Rat).Mul(a.coef, b.coef))
		}
	}
	return Poly{terms: out}
}

func (p Poly) Scale(c *big.Rat) Poly {
	if c.Sign() == 0 {
		return Poly{}
	}
	out := make(map[string]term, len(p.terms))
	for k, t := range p.terms {
		out[k] = term{mono: t.mono, coef: new(big.Rat).Mul(t.coef, c)}
	}
	return Poly{terms: out}
}

func (p Poly) Pow(n int) Poly {
	out := OnePoly()
	base := p
	for n > 0 {
		if n&1 == 1 {
			out = out.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return out
}

func (p Poly) Equal(q Poly) bool {
	if len(p.terms) != len(q.terms) {
		return false
	}
	for k, t := range p.terms {
		u, ok := q.terms[k]
		if !ok || t.coef.Cmp(u.coef) != 0 {
			return false
		}
	}
	return true
}

func (p Poly) Has(sym string) bool {
	for _, t := range p.terms {
		if t.mono.Degree(sym) > 0 {
			return true
		}
	}
	return false
}

// Vars lists the symbols of p in alphabetical order.
func (p Poly) Vars() []string {
	seen := map[string]bool{}
	for _, t := range p.terms {
		for _, f := range t.mono {
			seen[f.Sym] = true
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Degree returns the degree of p in sym, or -1 for the zero polynomial.
func (p Poly) Degree(sym string) int {
	if p.IsZero() {
		return -1
	}
	d := 0
	for _, t := range p.terms {
		if e := t.mono.Degree(sym); e > d {
			d = e
		}
	}
	return d
}

func (p Poly) TotalDegree() int {
	d := -1
	for _, t := range p.terms {
		if e := t.mono.Total(); e > d {
			d = e
		}
	}
	return d
}

// Coeffs splits p into coefficients of sym, indexed by degree.
func (p Poly) Coeffs(sym string) []Poly {
	n := p.Degree(sym)
	if n < 0 {
		return nil
	}
	maps := make([]map[string]term, n+1)
	for _, t := range p.terms {
		e := t.mono.Degree(sym)
		if maps[e] == nil {
			maps[e] = map[string]term{}
		}
		m := t.mono.without(sym)
		maps[e][m.key()] = term{mono: m, coef: t.coef}
	}
	out := make([]Poly, n+1)
	for i, m := range maps {
		out[i] = Poly{terms: m}
	}
	return out
}

// FromCoeffs is the inverse of Coeffs.
func FromCoeffs(sym string, cs []Poly) Poly {
	out := map[string]term{}
	for e, c := range cs {
		for _, t := range c.terms {
			accumulate(out, t.mono.with(sym, e), t.coef)
		}
	}
	return Poly{terms: out}
}

func (p Poly) lead() term {
	var best term
	first := true
	for _, t := range p.terms {
		if first || compareLex(t.mono, best.mono) > 0 {
			best = t
			first = false
		}
	}
	return best
}

// divExact returns p/q when q divides p.
func (p Poly) divExact(q Poly) (Poly, bool) {
	if q.IsZero() {
		return Poly{}, false
	}
	lq := q.lead()
	var quo Poly
	r := p
	for !r.IsZero() {
		lr := r.lead()
		m, ok := lr.mono.div(lq.mono)
		if !ok {
			return Poly{}, false
		}
		t := monoPoly(m, new(big.Rat).Quo(lr.coef, lq.coef))
		quo = quo.Add(t)
		r = r.Sub(t.Mul(q))
	}
	return quo, true
}

// content returns c such that p/c has coprime integer coefficients and a
// positive leading coefficient.
func (p Poly) content() *big.Rat {
	if p.IsZero() {
		return ratInt(1)
	}
	l := big.NewInt(1)
	g := new(big.Int)
	for _, t := range p.terms {
		d := t.coef.Denom()
		l.Mul(l, new(big.Int).Quo(d, new(big.Int).GCD(nil, nil, l, d)))
		g.GCD(nil, nil, g, new(big.Int).Abs(t.coef.Num()))
	}
	c := new(big.Rat).SetFrac(g, l)
	if p.lead().coef.Sign() < 0 {
		c.Neg(c)
	}
	return c
}

func (p Poly) primitive() Poly {
	if p.IsZero() {
		return p
	}
	return p.Scale(new(big.Rat).Inv(p.content()))
}

// Subst replaces sym by q.
func (p Poly) Subst(sym string, q Poly) Poly {
	cs := p.Coeffs(sym)
	var out Poly
	for i := len(cs) - 1; i >= 0; i-- {
		out = out.Mul(q).Add(cs[i])
	}
	return out
}

func (p Poly) Diff(sym string) Poly {
	out := map[string]term{}
	for _, t := range p.terms {
		e := t.mono.Degree(sym)
		if e == 0 {
			continue
		}
		m := t.mono.without(sym).with(sym, e-1)
		accumulate(out, m, new(big.Rat).Mul(t.coef, ratInt(int64(e))))
	}
	return Poly{terms: out}
}

func (p Poly) EvalComplex(env map[string]complex128) (complex128, error) {
	var sum complex128
	for _, t := range p.terms {
		f, _ := t.coef.Float64()
		v := complex(f, 0)
		for _, fac := range t.mono {
			x, ok := env[fac.Sym]
			if !ok {
				return 0, fmt.Errorf("%w: %s", ErrUnboundSymbol, fac.Sym)
			}
			v *= cmplx.Pow(x, complex(float64(fac.Exp), 0))
		}
		sum += v
	}
	return sum, nil
}

// displayOrder sorts terms by total degree, then lexicographically.
func (p Poly) displayOrder() []term {
	ts := make([]term, 0, len(p.terms))
	for _, t := range p.terms {
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool {
		di, dj := ts[i].mono.Total(), ts[j].mono.Total()
		if di != dj {
			return di > dj
		}
		return compareLex(ts[i].mono, ts[j].mono) > 0
	})
	return ts
}

func (p Poly) String() string {
	if p.IsZero() {
		return "0"
	}
	var b strings.Builder
	for i, t := range p.displayOrder() {
		neg := t.coef.Sign() < 0
		abs := new(big.Rat).Abs(t.coef)
		switch {
		case i == 0 && neg:
			b.WriteByte('-')
		case i > 0 && neg:
			b.WriteString(" - ")
		case i > 0:
			b.WriteString(" + ")
		}
		b.WriteString(termString(abs, t.mono))
	}
	return b.String()
}

func termString(c *big.Rat, m Monomial) string {
	if len(m) == 0 {
		return c.RatString()
	}
	s := m.String()
	if c.Num().Cmp(big.NewInt(1)) != 0 {
		s = c.Num().String() + "*" + s
	}
	if !c.IsInt() {
		s += "/" + c.Denom().String()
	}
	return s
}
