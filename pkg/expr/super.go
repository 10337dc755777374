package expr

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/edp1096/toy-symspice/pkg/cas"
)

// Contribution keys.
const (
	KeyDC        = "dc"
	KeyTransient = "s"
	KeyNoise     = "n"
	acPrefix     = "ac:"
)

// ACKey names the AC contribution at angular frequency w.
func ACKey(w cas.Ratio) string { return acPrefix + w.String() }

type acPart struct {
	omega  cas.Ratio
	phasor cas.Complex
}

// Super is a superposition of independent contributions: a DC part, AC parts
// keyed by angular frequency, a transient Laplace part and a noise power
// spectral density in omega. Uncorrelated noise adds in power.
//
// The DC part is held as a step-normalised transfer D(s); its value is
// lim s->0 D(s), its Laplace view D(s)/s and its time view the steady state.
// For a bare source D is the constant itself.
type Super struct {
	dc        cas.Ratio
	ac        map[string]acPart
	s         cas.Ratio
	noise     cas.Ratio
	unbounded bool
}

func NewDC(c cas.Ratio) Super { return Super{dc: c} }

func NewAC(p cas.Complex, omega cas.Ratio) Super {
	if p.IsZero() {
		return Super{}
	}
	return Super{ac: map[string]acPart{ACKey(omega): {omega: omega, phasor: p}}}
}

func NewTransient(r cas.Ratio) Super { return Super{s: r} }

// NewNoise takes a one-sided power spectral density, possibly a function of
// cas.OmegaVar.
func NewNoise(psd cas.Ratio) Super { return Super{noise: psd} }

// UnboundedSuper is the sentinel for the dual of an ideal source.
func UnboundedSuper() Super { return Super{unbounded: true} }

func (x Super) Unbounded() bool { return x.unbounded }

func (x Super) IsZero() bool {
	return !x.unbounded && x.dc.IsZero() && len(x.ac) == 0 && x.s.IsZero() && x.noise.IsZero()
}

// Keys lists the contributions present, DC first and noise last.
func (x Super) Keys() []string {
	var keys []string
	if !x.dc.IsZero() {
		keys = append(keys, KeyDC)
	}
	keys = append(keys, x.ACKeys()...)
	if !x.s.IsZero() {
		keys = append(keys, KeyTransient)
	}
	if !x.noise.IsZero() {
		keys = append(keys, KeyNoise)
	}
	return keys
}

func (x Super) ACKeys() []string {
	return slices.Sorted(maps.Keys(x.ac))
}

// ACOmega returns the angular frequency of an AC key.
func (x Super) ACOmega(key string) (cas.Ratio, bool) {
	p, ok := x.ac[key]
	return p.omega, ok
}

func (x Super) Select(key string) Super {
	switch {
	case x.unbounded:
		return x
	case key == KeyDC:
		return Super{dc: x.dc}
	case key == KeyTransient:
		return Super{s: x.s}
	case key == KeyNoise:
		return Super{noise: x.noise}
	}
	if p, ok := x.ac[key]; ok {
		return Super{ac: map[string]acPart{key: p}}
	}
	return Super{}
}

func (x Super) errUnbounded(op string) error {
	return fmt.Errorf("%s: %w", op, ErrUnbounded)
}

// DC returns the DC value.
func (x Super) DC() (Value, error) {
	if x.unbounded {
		return Value{}, x.errUnbounded("dc")
	}
	c, err := cas.Limit(x.dc, cas.LaplaceVar, cas.At(cas.Ratio{}))
	if err != nil {
		return Value{}, err
	}
	return Const(c), nil
}

// DCTransfer returns the step-normalised DC transfer D(s).
func (x Super) DCTransfer() cas.Ratio { return x.dc }

// AC returns the phasor at angular frequency w, zero when absent.
func (x Super) AC(w cas.Ratio) (Value, error) {
	if x.unbounded {
		return Value{}, x.errUnbounded("ac")
	}
	return PhasorOf(x.ac[ACKey(w)].phasor, w), nil
}

// Transient returns the Laplace part alone.
func (x Super) Transient() (Value, error) {
	if x.unbounded {
		return Value{}, x.errUnbounded("transient")
	}
	return LaplaceOf(x.s), nil
}

func (x Super) Noise() (Value, error) {
	if x.unbounded {
		return Value{}, x.errUnbounded("noise")
	}
	return OmegaOf(cas.Real(x.noise)), nil
}

// S returns the Laplace view of the whole composite.
func (x Super) S() (Value, error) {
	if x.unbounded {
		return Value{}, x.errUnbounded("laplace")
	}
	if !x.noise.IsZero() {
		return Value{}, &DomainError{Op: "laplace", Left: Omega, Right: Laplace, Err: ErrUnsupportedDomainTransform}
	}
	sum, _ := x.dc.Div(cas.Sym(cas.LaplaceVar))
	for _, k := range x.ACKeys() {
		p := x.ac[k]
		r, err := cas.Laplace(phasorTime(p.phasor, p.omega), cas.LaplaceVar)
		if err != nil {
			return Value{}, unsupported(Phasor, Laplace, err)
		}
		sum = sum.Add(r)
	}
	return LaplaceOf(sum.Add(x.s)), nil
}

// Time returns the time-domain view: steady-state DC and AC terms plus the
// inverse transform of the transient part.
func (x Super) Time() (Value, error) {
	if x.unbounded {
		return Value{}, x.errUnbounded("time")
	}
	if !x.noise.IsZero() {
		return Value{}, &DomainError{Op: "time", Left: Omega, Right: Time, Err: ErrUnsupportedDomainTransform}
	}
	dc, err := x.DC()
	if err != nil {
		return Value{}, err
	}
	f := cas.ConstantTime(dc.r)
	for _, k := range x.ACKeys() {
		p := x.ac[k]
		f = f.Add(phasorTime(p.phasor, p.omega))
	}
	if !x.s.IsZero() {
		tr, err := cas.InverseLaplace(x.s, cas.LaplaceVar)
		if err != nil {
			return Value{}, unsupported(Laplace, Time, err)
		}
		f = f.Add(tr)
	}
	return TimeOf(f), nil
}

func (x Super) cloneAC() map[string]acPart {
	if len(x.ac) == 0 {
		return nil
	}
	return maps.Clone(x.ac)
}

func (x Super) Add(o Super) Super {
	if x.unbounded || o.unbounded {
		return UnboundedSuper()
	}
	out := Super{
		dc:    x.dc.Add(o.dc),
		ac:    x.cloneAC(),
		s:     x.s.Add(o.s),
		noise: x.noise.Add(o.noise),
	}
	for k, p := range o.ac {
		if out.ac == nil {
			out.ac = map[string]acPart{}
		}
		cur, ok := out.ac[k]
		if !ok {
			out.ac[k] = p
			continue
		}
		cur.phasor = cur.phasor.Add(p.phasor)
		if cur.phasor.IsZero() {
			delete(out.ac, k)
			continue
		}
		out.ac[k] = cur
	}
	return out
}

// Neg leaves the noise power unchanged.
func (x Super) Neg() Super {
	if x.unbounded {
		return x
	}
	out := Super{dc: x.dc.Neg(), s: x.s.Neg(), noise: x.noise, ac: x.cloneAC()}
	for k, p := range out.ac {
		p.phasor = p.phasor.Neg()
		out.ac[k] = p
	}
	return out
}

func (x Super) Sub(o Super) Super { return x.Add(o.Neg()) }

// Scale multiplies every contribution by a constant; noise power by c^2.
func (x Super) Scale(c cas.Ratio) Super {
	if x.unbounded {
		return x
	}
	if c.IsZero() {
		return Super{}
	}
	out := Super{dc: x.dc.Mul(c), s: x.s.Mul(c), noise: x.noise.Mul(c).Mul(c), ac: x.cloneAC()}
	for k, p := range out.ac {
		p.phasor = p.phasor.Scale(c)
		out.ac[k] = p
	}
	return out
}

// Apply multiplies each contribution by the transfer h(s) read in that
// contribution's domain: D(s)*h(s) for DC, h(j*w) for AC, h(s) for the
// transient part and |h(j*omega)|^2 for noise.
func (x Super) Apply(h cas.Ratio) (Super, error) {
	if x.unbounded {
		return Super{}, x.errUnbounded("apply")
	}
	if h.IsZero() {
		return Super{}, nil
	}
	out := Super{dc: x.dc.Mul(h), s: x.s.Mul(h), ac: x.cloneAC()}
	for k, p := range out.ac {
		hw, err := cas.AtJOmega(h, cas.LaplaceVar, p.omega)
		if err != nil {
			return Super{}, fmt.Errorf("%w: transfer %s has a pole at omega = %s", ErrUnbounded, h, p.omega)
		}
		p.phasor = p.phasor.Mul(hw)
		if p.phasor.IsZero() {
			delete(out.ac, k)
			continue
		}
		out.ac[k] = p
	}
	if !x.noise.IsZero() {
		hw, err := cas.AtJOmega(h, cas.LaplaceVar, cas.Sym(cas.OmegaVar))
		if err != nil {
			return Super{}, fmt.Errorf("%w: noise transfer %s", ErrUnbounded, h)
		}
		out.noise = x.noise.Mul(hw.Abs2())
	}
	return out, nil
}

// Equal compares DC values, phasors, transient and noise parts.
func (x Super) Equal(o Super) bool {
	if x.unbounded || o.unbounded {
		return x.unbounded == o.unbounded
	}
	if !x.dc.Equal(o.dc) {
		a, errA := x.DC()
		b, errB := o.DC()
		if errA != nil || errB != nil || !a.Equal(b) {
			return false
		}
	}
	if len(x.ac) != len(o.ac) {
		return false
	}
	for k, p := range x.ac {
		q, ok := o.ac[k]
		if !ok || !p.phasor.Equal(q.phasor) {
			return false
		}
	}
	return x.s.Equal(o.s) && x.noise.Equal(o.noise)
}

func (x Super) String() string {
	if x.unbounded {
		return "oo"
	}
	keys := x.Keys()
	if len(keys) == 0 {
		return "0"
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		var v string
		switch k {
		case KeyDC:
			if d, err := x.DC(); err == nil {
				v = d.String()
			} else {
				v = x.dc.String() + " (step)"
			}
		case KeyTransient:
			v = x.s.String()
		case KeyNoise:
			v = x.noise.String()
		default:
			v = x.ac[k].phasor.String()
		}
		parts = append(parts, k+": "+v)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
