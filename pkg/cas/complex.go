package cas

// Complex is re + j*im with rational-function parts.
type Complex struct {
	Re, Im Ratio
}

func Real(r Ratio) Complex { return Complex{Re: r} }

func (z Complex) IsZero() bool { return z.Re.IsZero() && z.Im.IsZero() }

func (z Complex) IsReal() bool { return z.Im.IsZero() }

func (z Complex) Add(o Complex) Complex { return Complex{z.Re.Add(o.Re), z.Im.Add(o.Im)} }

func (z Complex) Sub(o Complex) Complex { return Complex{z.Re.Sub(o.Re), z.Im.Sub(o.Im)} }

func (z Complex) Neg() Complex { return Complex{z.Re.Neg(), z.Im.Neg()} }

func (z Complex) Conj() Complex { return Complex{z.Re, z.Im.Neg()} }

func (z Complex) Mul(o Complex) Complex {
	return Complex{
		Re: z.Re.Mul(o.Re).Sub(z.Im.Mul(o.Im)),
		Im: z.Re.Mul(o.Im).Add(z.Im.Mul(o.Re)),
	}
}

func (z Complex) Scale(r Ratio) Complex { return Complex{z.Re.Mul(r), z.Im.Mul(r)} }

// Abs2 returns |z|^2.
func (z Complex) Abs2() Ratio { return z.Re.Mul(z.Re).Add(z.Im.Mul(z.Im)) }

func (z Complex) Div(o Complex) (Complex, error) {
	d := o.Abs2()
	if d.IsZero() {
		return Complex{}, ErrDivisionByZero
	}
	n := z.Mul(o.Conj())
	re, _ := n.Re.Div(d)
	im, _ := n.Im.Div(d)
	return Complex{re, im}, nil
}

func (z Complex) Equal(o Complex) bool { return z.Re.Equal(o.Re) && z.Im.Equal(o.Im) }

func (z Complex) EvalComplex(env map[string]complex128) (complex128, error) {
	re, err := z.Re.EvalComplex(env)
	if err != nil {
		return 0, err
	}
	im, err := z.Im.EvalComplex(env)
	if err != nil {
		return 0, err
	}
	return re + 1i*im, nil
}

func (z Complex) String() string {
	switch {
	case z.Im.IsZero():
		return z.Re.String()
	case z.Re.IsZero():
		return "j*" + paren(z.Im)
	}
	return z.Re.String() + " + j*" + paren(z.Im)
}

func paren(r Ratio) string {
	s := r.String()
	if r.Num().Len() > 1 || !r.IsPoly() || (len(s) > 0 && s[0] == '-') {
		return "(" + s + ")"
	}
	return s
}

// AtJOmega substitutes sym = j*w into r.
func AtJOmega(r Ratio, sym string, w Ratio) (Complex, error) {
	num := jomegaPoly(r.Num(), sym, w)
	den := jomegaPoly(r.Den(), sym, w)
	return num.Div(den)
}

func jomegaPoly(p Poly, sym string, w Ratio) Complex {
	var z Complex
	wk := Int(1)
	for k, c := range p.Coeffs(sym) {
		if !c.IsZero() {
			t := FromPoly(c).Mul(wk)
			switch k % 4 {
			case 0:
				z.Re = z.Re.Add(t)
			case 1:
				z.Im = z.Im.Add(t)
			case 2:
				z.Re = z.Re.Sub(t)
			case 3:
				z.Im = z.Im.Sub(t)
			}
		}
		wk = wk.Mul(w)
	}
	return z
}
