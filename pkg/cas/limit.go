package cas

import "fmt"

// Point is a limit target: a finite value or +infinity.
type Point struct {
	Value    Ratio
	Infinity bool
}

func At(v Ratio) Point { return Point{Value: v} }

var Infinity = Point{Infinity: true}

// Limit returns lim sym->at of r. A pole at the target yields ErrUnbounded.
func Limit(r Ratio, sym string, at Point) (Ratio, error) {
	if !r.Has(sym) {
		return r, nil
	}
	if at.Infinity {
		return limitInf(r, sym)
	}

	num, den := r.Num(), r.Den()
	for i := 0; i <= den.Degree(sym); i++ {
		d := substPoly(den, sym, at.Value)
		n := substPoly(num, sym, at.Value)
		if !d.IsZero() {
			return n.Div(d)
		}
		if !n.IsZero() {
			return Ratio{}, fmt.Errorf("%w: pole at %s = %s", ErrUnbounded, sym, at.Value)
		}
		num, den = num.Diff(sym), den.Diff(sym)
	}
	return Ratio{}, fmt.Errorf("%w: indeterminate at %s = %s", ErrUnbounded, sym, at.Value)
}

func limitInf(r Ratio, sym string) (Ratio, error) {
	dn, dd := r.Num().Degree(sym), r.Den().Degree(sym)
	switch {
	case dn < dd:
		return Ratio{}, nil
	case dn > dd:
		return Ratio{}, fmt.Errorf("%w: %s -> oo", ErrUnbounded, sym)
	}
	return FromPoly(r.Num().Coeffs(sym)[dn]).Div(FromPoly(r.Den().Coeffs(sym)[dd]))
}
