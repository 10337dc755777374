package expr

import (
	"fmt"

	"github.com/edp1096/toy-symspice/pkg/cas"
)

type Domain int

const (
	Constant Domain = iota
	Time
	Laplace
	Phasor
	Omega
)

var domainNames = [...]string{"constant", "time", "laplace", "phasor", "omega"}

func (d Domain) String() string {
	if d < 0 || int(d) >= len(domainNames) {
		return fmt.Sprintf("domain(%d)", int(d))
	}
	return domainNames[d]
}

// Value is an immutable symbolic quantity tagged with its domain.
//
//	Constant, Laplace: r
//	Phasor:            p at angular frequency omega
//	Omega:             p as a function of cas.OmegaVar
//	Time:              f
type Value struct {
	domain Domain
	r      cas.Ratio
	p      cas.Complex
	omega  cas.Ratio
	f      cas.TimeFunc
	inf    bool
}

func Const(r cas.Ratio) Value { return Value{domain: Constant, r: r} }

func LaplaceOf(r cas.Ratio) Value {
	if !r.Has(cas.LaplaceVar) {
		return Const(r)
	}
	return Value{domain: Laplace, r: r}
}

func PhasorOf(p cas.Complex, omega cas.Ratio) Value {
	return Value{domain: Phasor, p: p, omega: omega}
}

func OmegaOf(p cas.Complex) Value { return Value{domain: Omega, p: p} }

func TimeOf(f cas.TimeFunc) Value {
	if c, ok := f.Constant(); ok {
		return Const(c)
	}
	return Value{domain: Time, f: f}
}

// Infinite is the sentinel for the dual of an ideal source, e.g. the
// impedance of a current source. Any operation on it fails with ErrUnbounded.
func Infinite(d Domain) Value { return Value{domain: d, inf: true} }

func ParseConst(s string) (Value, error) {
	r, err := cas.ParseRatio(s)
	if err != nil {
		return Value{}, err
	}
	if r.Has(cas.LaplaceVar) {
		return Value{}, fmt.Errorf("%w: %q depends on %s", ErrDomainMismatch, s, cas.LaplaceVar)
	}
	return Const(r), nil
}

func ParseLaplace(s string) (Value, error) {
	r, err := cas.ParseRatio(s)
	if err != nil {
		return Value{}, err
	}
	return LaplaceOf(r), nil
}

func ParseTime(s string) (Value, error) {
	f, err := cas.ParseTime(s)
	if err != nil {
		return Value{}, err
	}
	return TimeOf(f), nil
}

func (v Value) Domain() Domain   { return v.domain }
func (v Value) IsInfinite() bool { return v.inf }

// Ratio returns the rational function of a Constant or Laplace value.
func (v Value) Ratio() (cas.Ratio, bool) {
	if v.inf || (v.domain != Constant && v.domain != Laplace) {
		return cas.Ratio{}, false
	}
	return v.r, true
}

// Complex returns the phasor or frequency response; constants lift to reals.
func (v Value) Complex() (cas.Complex, bool) {
	switch {
	case v.inf:
		return cas.Complex{}, false
	case v.domain == Constant:
		return cas.Real(v.r), true
	case v.domain == Phasor, v.domain == Omega:
		return v.p, true
	}
	return cas.Complex{}, false
}

// AngularFrequency of a phasor.
func (v Value) AngularFrequency() cas.Ratio { return v.omega }

func (v Value) TimeFunc() (cas.TimeFunc, bool) {
	switch {
	case v.inf:
		return cas.TimeFunc{}, false
	case v.domain == Constant:
		return cas.ConstantTime(v.r), true
	case v.domain == Time:
		return v.f, true
	}
	return cas.TimeFunc{}, false
}

func (v Value) IsZero() bool {
	if v.inf {
		return false
	}
	switch v.domain {
	case Constant, Laplace:
		return v.r.IsZero()
	case Phasor, Omega:
		return v.p.IsZero()
	case Time:
		return v.f.IsZero()
	}
	return false
}

func (v Value) Equal(o Value) bool {
	if v.inf || o.inf {
		return v.inf == o.inf && v.domain == o.domain
	}
	if v.domain != o.domain {
		return false
	}
	switch v.domain {
	case Constant, Laplace:
		return v.r.Equal(o.r)
	case Phasor:
		return v.omega.Equal(o.omega) && v.p.Equal(o.p)
	case Omega:
		return v.p.Equal(o.p)
	}
	return v.f.Sub(o.f).IsZero()
}

func (v Value) String() string {
	if v.inf {
		return "oo"
	}
	switch v.domain {
	case Constant, Laplace:
		return v.r.String()
	case Phasor, Omega:
		return v.p.String()
	}
	return v.f.String()
}

// lift re-tags a constant into domain d. Phasors take the angular frequency w.
func (v Value) lift(d Domain, w cas.Ratio) Value {
	if v.domain != Constant || d == Constant {
		return v
	}
	switch d {
	case Phasor:
		return Value{domain: Phasor, p: cas.Real(v.r), omega: w}
	case Omega:
		return Value{domain: Omega, p: cas.Real(v.r)}
	case Time:
		return Value{domain: Time, f: cas.ConstantTime(v.r)}
	}
	return Value{domain: d, r: v.r}
}

// unify brings both operands to a common domain.
func unify(op string, a, b Value) (Value, Value, error) {
	if a.inf || b.inf {
		return Value{}, Value{}, &DomainError{Op: op, Left: a.domain, Right: b.domain, Err: ErrUnbounded}
	}
	switch {
	case a.domain == b.domain:
		if a.domain == Phasor && !a.omega.Equal(b.omega) {
			return Value{}, Value{}, &DomainError{Op: op, Left: a.domain, Right: b.domain,
				Err: fmt.Errorf("%w: omega %s and %s", ErrDomainMismatch, a.omega, b.omega)}
		}
		return a, b, nil
	case a.domain == Constant:
		return a.lift(b.domain, b.omega), b, nil
	case b.domain == Constant:
		return a, b.lift(a.domain, a.omega), nil
	}
	return Value{}, Value{}, &DomainError{Op: op, Left: a.domain, Right: b.domain, Err: ErrDomainMismatch}
}

// retag collapses results that no longer depend on their domain variable.
func retag(v Value) Value {
	switch v.domain {
	case Laplace:
		return LaplaceOf(v.r)
	case Time:
		return TimeOf(v.f)
	}
	return v
}

func (v Value) Add(o Value) (Value, error) {
	a, b, err := unify("add", v, o)
	if err != nil {
		return Value{}, err
	}
	switch a.domain {
	case Constant, Laplace:
		a.r = a.r.Add(b.r)
	case Phasor, Omega:
		a.p = a.p.Add(b.p)
	case Time:
		a.f = a.f.Add(b.f)
	}
	return retag(a), nil
}

func (v Value) Neg() (Value, error) {
	if v.inf {
		return Value{}, &DomainError{Op: "neg", Left: v.domain, Right: v.domain, Err: ErrUnbounded}
	}
	v.r = v.r.Neg()
	v.p = v.p.Neg()
	v.f = v.f.Neg()
	return v, nil
}

func (v Value) Sub(o Value) (Value, error) {
	n, err := o.Neg()
	if err != nil {
		return Value{}, err
	}
	return v.Add(n)
}

func (v Value) Mul(o Value) (Value, error) {
	a, b, err := unify("mul", v, o)
	if err != nil {
		return Value{}, err
	}
	switch a.domain {
	case Constant, Laplace:
		a.r = a.r.Mul(b.r)
	case Phasor, Omega:
		a.p = a.p.Mul(b.p)
	case Time:
		// scaling by a constant is the only supported product of time functions
		switch {
		case v.domain == Constant:
			a.f = b.f.Scale(v.r)
		case o.domain == Constant:
			a.f = a.f.Scale(o.r)
		default:
			return Value{}, &DomainError{Op: "mul", Left: Time, Right: Time, Err: ErrUnsupportedOperation}
		}
	}
	return retag(a), nil
}

func (v Value) Div(o Value) (Value, error) {
	a, b, err := unify("div", v, o)
	if err != nil {
		return Value{}, err
	}
	switch a.domain {
	case Constant, Laplace:
		a.r, err = a.r.Div(b.r)
	case Phasor, Omega:
		a.p, err = a.p.Div(b.p)
	case Time:
		if o.domain != Constant {
			return Value{}, &DomainError{Op: "div", Left: v.domain, Right: o.domain, Err: ErrUnsupportedOperation}
		}
		var inv cas.Ratio
		if inv, err = o.r.Inv(); err == nil {
			a.f = a.f.Scale(inv)
		}
	}
	if err != nil {
		return Value{}, err
	}
	return retag(a), nil
}

// Evaluate returns the numeric value with symbols bound by env. Laplace
// values need cas.LaplaceVar bound, time functions cas.TimeVar and omega
// responses cas.OmegaVar.
func (v Value) Evaluate(env map[string]complex128) (complex128, error) {
	if v.inf {
		return 0, ErrUnbounded
	}
	switch v.domain {
	case Constant, Laplace:
		return v.r.EvalComplex(env)
	case Phasor, Omega:
		return v.p.EvalComplex(env)
	}
	t, ok := env[cas.TimeVar]
	if !ok {
		return 0, fmt.Errorf("%w: %s", cas.ErrUnboundSymbol, cas.TimeVar)
	}
	fenv := make(map[string]float64, len(env))
	for k, x := range env {
		fenv[k] = real(x)
	}
	y, err := v.f.Eval(real(t), fenv)
	return complex(y, 0), err
}
