package cas

import (
	"fmt"
	"math"
	"math/big"
	"math/cmplx"
	"strconv"
	"strings"
)

type Osc int

const (
	NoOsc Osc = iota
	Cos
	Sin
	Cosh
	Sinh
)

var oscNames = [...]string{"", "cos", "sin", "cosh", "sinh"}

// Shape is the support of a time term.
type Shape int

const (
	Everlasting Shape = iota // defined for all t
	Step                     // multiplied by u(t)
	Impulse                  // Coef * delta(t)
)

// TimeTerm is Coef * w^Root * t^Pow * exp(Decay*t) * osc(w*t) * shape(t)
// where w = sqrt(Omega2).
type TimeTerm struct {
	Coef   Ratio
	Pow    int
	Decay  Ratio
	Osc    Osc
	Omega2 Ratio
	Root   int
	Shape  Shape
}

func (a TimeTerm) like(b TimeTerm) bool {
	return a.Pow == b.Pow && a.Osc == b.Osc && a.Root == b.Root && a.Shape == b.Shape &&
		a.Decay.Equal(b.Decay) && a.Omega2.Equal(b.Omega2)
}

// TimeFunc is a sum of time terms. The zero value is 0.
type TimeFunc struct {
	Terms []TimeTerm
}

func ConstantTime(c Ratio) TimeFunc {
	if c.IsZero() {
		return TimeFunc{}
	}
	return TimeFunc{Terms: []TimeTerm{{Coef: c}}}
}

func StepTime(c Ratio) TimeFunc {
	if c.IsZero() {
		return TimeFunc{}
	}
	return TimeFunc{Terms: []TimeTerm{{Coef: c, Shape: Step}}}
}

func ImpulseTime(c Ratio) TimeFunc {
	if c.IsZero() {
		return TimeFunc{}
	}
	return TimeFunc{Terms: []TimeTerm{{Coef: c, Shape: Impulse}}}
}

func (f TimeFunc) IsZero() bool { return len(f.Terms) == 0 }

func (f TimeFunc) Add(o TimeFunc) TimeFunc {
	out := make([]TimeTerm, 0, len(f.Terms)+len(o.Terms))
	out = append(out, f.Terms...)
next:
	for _, t := range o.Terms {
		for i := range out {
			if out[i].like(t) {
				out[i].Coef = out[i].Coef.Add(t.Coef)
				continue next
			}
		}
		out = append(out, t)
	}
	kept := out[:0]
	for _, t := range out {
		if !t.Coef.IsZero() {
			kept = append(kept, t)
		}
	}
	return TimeFunc{Terms: kept}
}

func (f TimeFunc) Scale(c Ratio) TimeFunc {
	if c.IsZero() {
		return TimeFunc{}
	}
	out := make([]TimeTerm, len(f.Terms))
	for i, t := range f.Terms {
		t.Coef = t.Coef.Mul(c)
		out[i] = t
	}
	return TimeFunc{Terms: out}
}

func (f TimeFunc) Neg() TimeFunc { return f.Scale(Int(-1)) }

func (f TimeFunc) Sub(o TimeFunc) TimeFunc { return f.Add(o.Neg()) }

func (f TimeFunc) Mul(o TimeFunc) (TimeFunc, error) {
	var out TimeFunc
	for _, a := range f.Terms {
		for _, b := range o.Terms {
			t, err := mulTerms(a, b)
			if err != nil {
				return TimeFunc{}, err
			}
			out = out.Add(TimeFunc{Terms: []TimeTerm{t}})
		}
	}
	return out, nil
}

func (t TimeTerm) plain() bool {
	return t.Pow == 0 && t.Decay.IsZero() && t.Osc == NoOsc && t.Shape != Impulse
}

func mulTerms(a, b TimeTerm) (TimeTerm, error) {
	if b.Shape == Impulse {
		a, b = b, a
	}
	if a.Shape == Impulse {
		if !b.plain() {
			return TimeTerm{}, fmt.Errorf("%w: product with delta(t)", ErrUnsupportedTransform)
		}
		a.Coef = a.Coef.Mul(b.Coef)
		return a, nil
	}
	if a.Osc != NoOsc && b.Osc != NoOsc {
		return TimeTerm{}, fmt.Errorf("%w: product of oscillations", ErrUnsupportedTransform)
	}
	out := TimeTerm{
		Coef:  a.Coef.Mul(b.Coef),
		Pow:   a.Pow + b.Pow,
		Decay: a.Decay.Add(b.Decay),
		Shape: a.Shape,
	}
	if b.Shape == Step {
		out.Shape = Step
	}
	osc := a
	if b.Osc != NoOsc {
		osc = b
	}
	out.Osc, out.Omega2, out.Root = osc.Osc, osc.Omega2, osc.Root
	return out, nil
}

// Constant returns the value of f when it is a pure constant.
func (f TimeFunc) Constant() (Ratio, bool) {
	switch len(f.Terms) {
	case 0:
		return Ratio{}, true
	case 1:
		t := f.Terms[0]
		if t.plain() && t.Shape == Everlasting {
			return t.Coef, true
		}
	}
	return Ratio{}, false
}

// Tone returns the phasor and angular frequency of an everlasting
// single-frequency sinusoid, so that f(t) = Re{P*exp(j*w*t)}.
func (f TimeFunc) Tone() (Complex, Ratio, bool) {
	if len(f.Terms) == 0 {
		return Complex{}, Ratio{}, false
	}
	omega2 := f.Terms[0].Omega2
	w, ok := sqrtRatio(omega2)
	if !ok || w.IsZero() {
		return Complex{}, Ratio{}, false
	}
	var p Complex
	for _, t := range f.Terms {
		if t.Shape != Everlasting || t.Pow != 0 || !t.Decay.IsZero() || !t.Omega2.Equal(omega2) {
			return Complex{}, Ratio{}, false
		}
		wk, _ := w.Pow(t.Root)
		amp := t.Coef.Mul(wk)
		switch t.Osc {
		case Cos:
			p.Re = p.Re.Add(amp)
		case Sin:
			p.Im = p.Im.Sub(amp)
		default:
			return Complex{}, Ratio{}, false
		}
	}
	return p, w, true
}

// Eval evaluates f at time t with every other symbol bound by env. A delta
// term contributes nothing to pointwise values.
func (f TimeFunc) Eval(t float64, env map[string]float64) (float64, error) {
	cenv := make(map[string]complex128, len(env))
	for k, v := range env {
		cenv[k] = complex(v, 0)
	}
	var sum complex128
	for _, term := range f.Terms {
		if term.Shape == Impulse || (term.Shape == Step && t < 0) {
			continue
		}
		c, err := term.Coef.EvalComplex(cenv)
		if err != nil {
			return 0, err
		}
		a, err := term.Decay.EvalComplex(cenv)
		if err != nil {
			return 0, err
		}
		v := c * complex(math.Pow(t, float64(term.Pow)), 0) * cmplx.Exp(a*complex(t, 0))
		if term.Osc != NoOsc {
			w2, err := term.Omega2.EvalComplex(cenv)
			if err != nil {
				return 0, err
			}
			w := cmplx.Sqrt(w2)
			if term.Root != 0 {
				v *= cmplx.Pow(w, complex(float64(term.Root), 0))
			}
			x := w * complex(t, 0)
			switch term.Osc {
			case Cos:
				v *= cmplx.Cos(x)
			case Sin:
				v *= cmplx.Sin(x)
			case Cosh:
				v *= cmplx.Cosh(x)
			case Sinh:
				v *= cmplx.Sinh(x)
			}
		}
		sum += v
	}
	return real(sum), nil
}

func (f TimeFunc) String() string {
	if len(f.Terms) == 0 {
		return "0"
	}
	var b strings.Builder
	for i, t := range f.Terms {
		s := t.String()
		switch {
		case i == 0:
			b.WriteString(s)
		case strings.HasPrefix(s, "-"):
			b.WriteString(" - " + s[1:])
		default:
			b.WriteString(" + " + s)
		}
	}
	return b.String()
}

func (t TimeTerm) String() string {
	coef := t.Coef
	var factors []string
	var divisor string

	var w string
	if t.Osc != NoOsc {
		if root, ok := sqrtRatio(t.Omega2); ok {
			w = root.String()
			if t.Root != 0 {
				k, _ := root.Pow(t.Root)
				coef = coef.Mul(k)
			}
		} else {
			w = "sqrt(" + t.Omega2.String() + ")"
			switch {
			case t.Root > 0:
				factors = append(factors, powString(w, t.Root))
			case t.Root < 0:
				divisor = powString(w, -t.Root)
			}
		}
	}
	if t.Pow > 0 {
		factors = append(factors, powString(TimeVar, t.Pow))
	}
	if !t.Decay.IsZero() {
		factors = append(factors, "exp("+rateString(t.Decay)+")")
	}
	if t.Osc != NoOsc {
		arg := w + "*" + TimeVar
		switch {
		case w == "1":
			arg = TimeVar
		case strings.ContainsAny(w, "+-/ "):
			arg = "(" + w + ")*" + TimeVar
		}
		factors = append(factors, oscNames[t.Osc]+"("+arg+")")
	}
	switch t.Shape {
	case Step:
		factors = append(factors, "u(t)")
	case Impulse:
		factors = append(factors, "delta(t)")
	}

	var s string
	switch {
	case len(factors) == 0:
		s = coef.String()
	case coef.Equal(Int(1)):
		s = strings.Join(factors, "*")
	case coef.Equal(Int(-1)):
		s = "-" + strings.Join(factors, "*")
	default:
		c := coef.String()
		if coef.Num().Len() > 1 || !coef.IsPoly() {
			c = "(" + c + ")"
		}
		s = c + "*" + strings.Join(factors, "*")
	}
	if divisor != "" {
		s += "/" + divisor
	}
	return s
}

func powString(base string, n int) string {
	if n == 1 {
		return base
	}
	return base + "**" + strconv.Itoa(n)
}

func rateString(a Ratio) string {
	switch {
	case a.Equal(Int(1)):
		return TimeVar
	case a.Equal(Int(-1)):
		return "-" + TimeVar
	}
	s := a.String()
	if a.Num().Len() > 1 || !a.IsPoly() {
		s = "(" + s + ")"
	}
	return s + "*" + TimeVar
}

func sqrtRatio(r Ratio) (Ratio, bool) {
	if r.IsZero() {
		return Ratio{}, true
	}
	n, ok := sqrtPoly(r.Num())
	if !ok {
		return Ratio{}, false
	}
	d, ok := sqrtPoly(r.Den())
	if !ok {
		return Ratio{}, false
	}
	return newRatio(n, d), true
}

// sqrtPoly extracts an exact square root term by term, leading terms first.
func sqrtPoly(p Poly) (Poly, bool) {
	if p.IsZero() {
		return Poly{}, true
	}
	lt := p.lead()
	r0, ok := sqrtTerm(lt)
	if !ok {
		return Poly{}, false
	}
	r := monoPoly(r0.mono, r0.coef)
	twice := term{mono: r0.mono, coef: new(big.Rat).Mul(r0.coef, ratInt(2))}
	for i := 0; i <= p.Len(); i++ {
		rem := p.Sub(r.Mul(r))
		if rem.IsZero() {
			return r, true
		}
		lr := rem.lead()
		m, ok := lr.mono.div(twice.mono)
		if !ok {
			return Poly{}, false
		}
		r = r.Add(monoPoly(m, new(big.Rat).Quo(lr.coef, twice.coef)))
	}
	return Poly{}, false
}

func sqrtTerm(t term) (term, bool) {
	if t.coef.Sign() < 0 {
		return term{}, false
	}
	num, ok := sqrtInt(t.coef.Num())
	if !ok {
		return term{}, false
	}
	den, ok := sqrtInt(t.coef.Denom())
	if !ok {
		return term{}, false
	}
	m := make(Monomial, len(t.mono))
	for i, f := range t.mono {
		if f.Exp%2 != 0 {
			return term{}, false
		}
		m[i] = Factor{f.Sym, f.Exp / 2}
	}
	return term{mono: m, coef: new(big.Rat).SetFrac(num, den)}, true
}

func sqrtInt(x *big.Int) (*big.Int, bool) {
	r := new(big.Int).Sqrt(x)
	return r, new(big.Int).Mul(r, r).Cmp(x) == 0
}

// ParseTime parses a time-domain expression such as "5*exp(-2*t)*u(t)".
func ParseTime(input string) (TimeFunc, error) {
	n, err := Parse(input)
	if err != nil {
		return TimeFunc{}, err
	}
	return ToTime(n)
}

// ToTime evaluates a parsed tree as a function of t. Supported functions are
// u, H, heaviside, step, delta, impulse, r and ramp applied to t, and exp,
// cos, sin, cosh and sinh applied to a*t + b with a numeric phase b.
func ToTime(n Node) (TimeFunc, error) {
	switch n := n.(type) {
	case numNode:
		return ConstantTime(FromRat(n.val)), nil
	case symNode:
		if n.name == TimeVar {
			return TimeFunc{Terms: []TimeTerm{{Coef: Int(1), Pow: 1}}}, nil
		}
		return ConstantTime(Sym(n.name)), nil
	case unaryNode:
		x, err := ToTime(n.x)
		return x.Neg(), err
	case callNode:
		return timeCall(n)
	case binNode:
		l, err := ToTime(n.l)
		if err != nil {
			return TimeFunc{}, err
		}
		if n.op == '^' {
			k, err := intExponent(n.r)
			if err != nil {
				return TimeFunc{}, err
			}
			return timePow(l, k)
		}
		r, err := ToTime(n.r)
		if err != nil {
			return TimeFunc{}, err
		}
		switch n.op {
		case '+':
			return l.Add(r), nil
		case '-':
			return l.Sub(r), nil
		case '*':
			return l.Mul(r)
		case '/':
			c, ok := r.Constant()
			if !ok {
				return TimeFunc{}, fmt.Errorf("%w: division by a function of t", ErrUnsupportedTransform)
			}
			inv, err := c.Inv()
			if err != nil {
				return TimeFunc{}, err
			}
			return l.Scale(inv), nil
		}
	}
	return TimeFunc{}, fmt.Errorf("%w: unexpected node %v", ErrSyntax, n)
}

func timePow(f TimeFunc, k int) (TimeFunc, error) {
	if c, ok := f.Constant(); ok {
		p, err := c.Pow(k)
		return ConstantTime(p), err
	}
	if k < 0 {
		return TimeFunc{}, fmt.Errorf("%w: negative power of a function of t", ErrUnsupportedTransform)
	}
	out := ConstantTime(Int(1))
	for i := 0; i < k; i++ {
		var err error
		if out, err = out.Mul(f); err != nil {
			return TimeFunc{}, err
		}
	}
	return out, nil
}

func timeCall(n callNode) (TimeFunc, error) {
	fn := strings.ToLower(n.fn)
	switch fn {
	case "u", "h", "heaviside", "step", "delta", "impulse", "r", "ramp":
		if s, ok := n.arg.(symNode); !ok || s.name != TimeVar {
			return TimeFunc{}, fmt.Errorf("%w: %s(%s) must be applied to t", ErrUnsupportedTransform, n.fn, n.arg)
		}
	}
	switch fn {
	case "u", "h", "heaviside", "step":
		return StepTime(Int(1)), nil
	case "delta", "impulse":
		return ImpulseTime(Int(1)), nil
	case "r", "ramp":
		return TimeFunc{Terms: []TimeTerm{{Coef: Int(1), Pow: 1, Shape: Step}}}, nil
	}

	a, b, err := affineArg(n.arg)
	if err != nil {
		return TimeFunc{}, err
	}
	if fn == "exp" {
		f := TimeFunc{Terms: []TimeTerm{{Coef: Int(1), Decay: a}}}
		if b.IsZero() {
			return f, nil
		}
		phi, err := phase(n, b)
		if err != nil {
			return TimeFunc{}, err
		}
		return f.Scale(Rounded(math.Exp(phi))), nil
	}

	var even, odd Osc
	switch fn {
	case "cos", "sin":
		even, odd = Cos, Sin
	case "cosh", "sinh":
		even, odd = Cosh, Sinh
	default:
		return TimeFunc{}, fmt.Errorf("%w: unknown function %s", ErrSyntax, n.fn)
	}
	// sin(a*t) = a * sin(w*t)/w with w^2 = a^2, independent of the sign of w.
	c := TimeFunc{Terms: []TimeTerm{{Coef: Int(1), Osc: even, Omega2: a.Mul(a)}}}
	s := TimeFunc{Terms: []TimeTerm{{Coef: a, Osc: odd, Omega2: a.Mul(a), Root: -1}}}
	if b.IsZero() {
		if fn == "cos" || fn == "cosh" {
			return c, nil
		}
		return s, nil
	}

	// Angle addition splits a phase-shifted argument into a pair.
	phi, err := phase(n, b)
	if err != nil {
		return TimeFunc{}, err
	}
	switch fn {
	case "cos":
		return c.Scale(Rounded(math.Cos(phi))).Sub(s.Scale(Rounded(math.Sin(phi)))), nil
	case "sin":
		return c.Scale(Rounded(math.Sin(phi))).Add(s.Scale(Rounded(math.Cos(phi)))), nil
	case "cosh":
		return c.Scale(Rounded(math.Cosh(phi))).Add(s.Scale(Rounded(math.Sinh(phi)))), nil
	default:
		return c.Scale(Rounded(math.Sinh(phi))).Add(s.Scale(Rounded(math.Cosh(phi)))), nil
	}
}

func phase(n callNode, b Ratio) (float64, error) {
	phi, ok := b.Float64()
	if !ok {
		return 0, fmt.Errorf("%w: %s: phase %s must be numeric", ErrUnsupportedTransform, n.fn, b)
	}
	// exp, cosh and sinh of the phase must stay finite.
	if math.Abs(phi) > 700 {
		return 0, fmt.Errorf("%w: %s: phase %s out of range", ErrUnsupportedTransform, n.fn, b)
	}
	return phi, nil
}

// Rounded converts x to an exact ratio rounded to 12 significant digits.
func Rounded(x float64) Ratio {
	r, _ := new(big.Rat).SetString(strconv.FormatFloat(x, 'g', 12, 64))
	return FromRat(r)
}

// affineArg returns a and b when n is a*t + b with a nonzero and b free of t.
func affineArg(n Node) (Ratio, Ratio, error) {
	f, err := ToTime(n)
	if err != nil {
		return Ratio{}, Ratio{}, err
	}
	var a, b Ratio
	for _, t := range f.Terms {
		switch {
		case t.Pow == 1 && t.Decay.IsZero() && t.Osc == NoOsc && t.Shape == Everlasting:
			a = t.Coef
		case t.Pow == 0 && t.Decay.IsZero() && t.Osc == NoOsc && t.Shape == Everlasting:
			b = t.Coef
		default:
			return Ratio{}, Ratio{}, fmt.Errorf("%w: argument %s is not linear in t", ErrUnsupportedTransform, n)
		}
	}
	if a.IsZero() {
		return Ratio{}, Ratio{}, fmt.Errorf("%w: argument %s is not linear in t", ErrUnsupportedTransform, n)
	}
	return a, b, nil
}
