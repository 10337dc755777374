package expr

import (
	"fmt"

	"github.com/edp1096/toy-symspice/pkg/cas"
)

type transformOptions struct {
	omega    cas.Ratio
	hasOmega bool
	algebra  cas.Service
}

type TransformOption func(*transformOptions)

// AtOmega selects the angular frequency for phasor targets.
func AtOmega(w cas.Ratio) TransformOption {
	return func(o *transformOptions) {
		o.omega = w
		o.hasOmega = true
	}
}

// Using routes transforms and limits through another algebra service.
func Using(svc cas.Service) TransformOption {
	return func(o *transformOptions) { o.algebra = svc }
}

func newTransformOptions(opts []TransformOption) transformOptions {
	o := transformOptions{algebra: cas.Engine{}}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func unsupported(from, to Domain, err error) error {
	if err == nil {
		err = ErrUnsupportedDomainTransform
	} else {
		err = fmt.Errorf("%w: %w", ErrUnsupportedDomainTransform, err)
	}
	return &DomainError{Op: "transform", Left: from, Right: to, Err: err}
}

// To converts v into the target domain.
func (v Value) To(target Domain, opts ...TransformOption) (Value, error) {
	if v.inf {
		return Value{}, &DomainError{Op: "transform", Left: v.domain, Right: target, Err: ErrUnbounded}
	}
	o := newTransformOptions(opts)

	if v.domain == target && (target != Phasor || !o.hasOmega || o.omega.Equal(v.omega)) {
		return v, nil
	}
	if v.domain == Constant {
		if target == Phasor && !o.hasOmega {
			return v.lift(Phasor, cas.Ratio{}), nil
		}
		return v.lift(target, o.omega), nil
	}

	switch v.domain {
	case Laplace:
		return v.fromLaplace(target, o)
	case Phasor:
		return v.fromPhasor(target, o)
	case Omega:
		if target == Phasor && o.hasOmega {
			re, err := v.p.Re.Subst(cas.OmegaVar, o.omega)
			if err != nil {
				return Value{}, unsupported(v.domain, target, err)
			}
			im, err := v.p.Im.Subst(cas.OmegaVar, o.omega)
			if err != nil {
				return Value{}, unsupported(v.domain, target, err)
			}
			return PhasorOf(cas.Complex{Re: re, Im: im}, o.omega), nil
		}
	case Time:
		return v.fromTime(target, o)
	}
	return Value{}, unsupported(v.domain, target, nil)
}

func (v Value) fromLaplace(target Domain, o transformOptions) (Value, error) {
	switch target {
	case Constant:
		c, err := o.algebra.Limit(v.r, cas.LaplaceVar, cas.At(cas.Ratio{}))
		if err != nil {
			return Value{}, &DomainError{Op: "transform", Left: Laplace, Right: Constant, Err: err}
		}
		return Const(c), nil
	case Phasor:
		if !o.hasOmega {
			return Value{}, unsupported(Laplace, Phasor, fmt.Errorf("no angular frequency"))
		}
		p, err := cas.AtJOmega(v.r, cas.LaplaceVar, o.omega)
		if err != nil {
			return Value{}, &DomainError{Op: "transform", Left: Laplace, Right: Phasor, Err: fmt.Errorf("%w: pole at omega = %s", ErrUnbounded, o.omega)}
		}
		return PhasorOf(p, o.omega), nil
	case Omega:
		p, err := cas.AtJOmega(v.r, cas.LaplaceVar, cas.Sym(cas.OmegaVar))
		if err != nil {
			return Value{}, unsupported(Laplace, Omega, err)
		}
		return OmegaOf(p), nil
	case Time:
		f, err := o.algebra.InverseLaplace(v.r, cas.LaplaceVar)
		if err != nil {
			return Value{}, unsupported(Laplace, Time, err)
		}
		return TimeOf(f), nil
	}
	return Value{}, unsupported(Laplace, target, nil)
}

// phasorTime is Re{P*exp(j*w*t)} = Re(P)*cos(w*t) - Im(P)*sin(w*t).
func phasorTime(p cas.Complex, w cas.Ratio) cas.TimeFunc {
	if w.IsZero() {
		return cas.ConstantTime(p.Re)
	}
	w2 := w.Mul(w)
	var f cas.TimeFunc
	if !p.Re.IsZero() {
		f = f.Add(cas.TimeFunc{Terms: []cas.TimeTerm{{Coef: p.Re, Osc: cas.Cos, Omega2: w2}}})
	}
	if !p.Im.IsZero() {
		f = f.Add(cas.TimeFunc{Terms: []cas.TimeTerm{{Coef: p.Im.Mul(w).Neg(), Osc: cas.Sin, Omega2: w2, Root: -1}}})
	}
	return f
}

func (v Value) fromPhasor(target Domain, o transformOptions) (Value, error) {
	switch target {
	case Time:
		return TimeOf(phasorTime(v.p, v.omega)), nil
	case Laplace:
		r, err := o.algebra.Laplace(phasorTime(v.p, v.omega), cas.LaplaceVar)
		if err != nil {
			return Value{}, unsupported(Phasor, Laplace, err)
		}
		return LaplaceOf(r), nil
	case Constant:
		if v.omega.IsZero() && v.p.IsReal() {
			return Const(v.p.Re), nil
		}
	}
	return Value{}, unsupported(Phasor, target, nil)
}

func (v Value) fromTime(target Domain, o transformOptions) (Value, error) {
	switch target {
	case Laplace:
		r, err := o.algebra.Laplace(v.f, cas.LaplaceVar)
		if err != nil {
			return Value{}, unsupported(Time, Laplace, err)
		}
		return LaplaceOf(r), nil
	case Phasor:
		if p, w, ok := v.f.Tone(); ok {
			return PhasorOf(p, w), nil
		}
	}
	return Value{}, unsupported(Time, target, nil)
}

func (v Value) laplace(op string, o transformOptions) (cas.Ratio, error) {
	switch {
	case v.inf:
		return cas.Ratio{}, &DomainError{Op: op, Left: v.domain, Right: v.domain, Err: ErrUnbounded}
	case v.domain == Constant, v.domain == Laplace:
		return v.r, nil
	case v.domain == Time:
		return o.algebra.Laplace(v.f, cas.LaplaceVar)
	}
	return cas.Ratio{}, &DomainError{Op: op, Left: v.domain, Right: Laplace, Err: ErrUnsupportedDomainTransform}
}

// InitialValue is f(0+) = lim s->oo s*F(s).
func (v Value) InitialValue(opts ...TransformOption) (Value, error) {
	o := newTransformOptions(opts)
	F, err := v.laplace("initial value", o)
	if err != nil {
		return Value{}, err
	}
	c, err := o.algebra.Limit(F.Mul(cas.Sym(cas.LaplaceVar)), cas.LaplaceVar, cas.Infinity)
	if err != nil {
		return Value{}, err
	}
	return Const(c), nil
}

// FinalValue is f(oo) = lim s->0 s*F(s).
func (v Value) FinalValue(opts ...TransformOption) (Value, error) {
	o := newTransformOptions(opts)
	F, err := v.laplace("final value", o)
	if err != nil {
		return Value{}, err
	}
	c, err := o.algebra.Limit(F.Mul(cas.Sym(cas.LaplaceVar)), cas.LaplaceVar, cas.At(cas.Ratio{}))
	if err != nil {
		return Value{}, err
	}
	return Const(c), nil
}

// Differentiate in time, i.e. multiplication by s for causal signals.
func (v Value) Differentiate(opts ...TransformOption) (Value, error) {
	o := newTransformOptions(opts)
	F, err := v.laplace("differentiate", o)
	if err != nil {
		return Value{}, err
	}
	return LaplaceOf(F.Mul(cas.Sym(cas.LaplaceVar))), nil
}

// Integrate in time from 0, i.e. division by s.
func (v Value) Integrate(opts ...TransformOption) (Value, error) {
	o := newTransformOptions(opts)
	F, err := v.laplace("integrate", o)
	if err != nil {
		return Value{}, err
	}
	r, _ := F.Div(cas.Sym(cas.LaplaceVar))
	return LaplaceOf(r), nil
}

func (v Value) Numerator() cas.Poly   { return v.r.Num() }
func (v Value) Denominator() cas.Poly { return v.r.Den() }

func (v Value) Poles() ([]cas.Root, error) {
	if v.domain != Laplace && v.domain != Constant {
		return nil, &DomainError{Op: "poles", Left: v.domain, Right: v.domain, Err: ErrUnsupportedOperation}
	}
	return cas.Roots(v.r.Den(), cas.LaplaceVar)
}

func (v Value) Zeros() ([]cas.Root, error) {
	if v.domain != Laplace && v.domain != Constant {
		return nil, &DomainError{Op: "zeros", Left: v.domain, Right: v.domain, Err: ErrUnsupportedOperation}
	}
	return cas.Roots(v.r.Num(), cas.LaplaceVar)
}
