package cas

// GCD returns the greatest common divisor of a and b over the rationals,
// normalised to integer coefficients with a positive leading coefficient.
// It recurses on the alphabetically first symbol using primitive
// pseudo-remainder sequences.
func GCD(a, b Poly) Poly {
	switch {
	case a.IsZero() && b.IsZero():
		return Poly{}
	case a.IsZero():
		return b.primitive()
	case b.IsZero():
		return a.primitive()
	case a.IsConst() || b.IsConst():
		return OnePoly()
	}

	v := mainVar(a, b)
	if !a.Has(v) {
		return GCD(a, contentIn(b, v))
	}
	if !b.Has(v) {
		return GCD(contentIn(a, v), b)
	}

	ca, cb := contentIn(a, v), contentIn(b, v)
	pa, _ := a.divExact(ca)
	pb, _ := b.divExact(cb)
	c := GCD(ca, cb)

	for !pb.IsZero() {
		r := pseudoRem(pa, pb, v)
		pa = pb
		switch {
		case r.IsZero():
			pb = Poly{}
		case r.Degree(v) == 0:
			pa, pb = OnePoly(), Poly{}
		default:
			pb = primitivePart(r, v)
		}
	}
	return c.Mul(primitivePart(pa, v)).primitive()
}

func mainVar(a, b Poly) string {
	va, vb := a.Vars(), b.Vars()
	switch {
	case len(va) == 0:
		return vb[0]
	case len(vb) == 0:
		return va[0]
	case va[0] < vb[0]:
		return va[0]
	}
	return vb[0]
}

// contentIn is the gcd of the coefficients of p viewed as a polynomial in v.
func contentIn(p Poly, v string) Poly {
	var g Poly
	for _, c := range p.Coeffs(v) {
		if c.IsZero() {
			continue
		}
		g = GCD(g, c)
		if g.IsConst() {
			return OnePoly()
		}
	}
	if g.IsZero() {
		return OnePoly()
	}
	return g
}

func primitivePart(p Poly, v string) Poly {
	q, ok := p.divExact(contentIn(p, v))
	if !ok {
		return p
	}
	return q
}

func pseudoRem(a, b Poly, v string) Poly {
	db := b.Degree(v)
	lcb := b.Coeffs(v)[db]
	x := SymPoly(v)
	r := a
	for !r.IsZero() {
		dr := r.Degree(v)
		if dr < db {
			break
		}
		cr := r.Coeffs(v)[dr]
		r = r.Mul(lcb).Sub(cr.Mul(x.Pow(dr - db)).Mul(b))
	}
	return r
}
