package oneport

import (
	"fmt"

	"github.com/edp1096/toy-symspice/pkg/cas"
)

// DeltaToWye converts delta impedances (za opposite node a, and so on) to
// the star impedances at nodes a, b, c.
func DeltaToWye(za, zb, zc cas.Ratio) (cas.Ratio, cas.Ratio, cas.Ratio, error) {
	sum := za.Add(zb).Add(zc)
	if sum.IsZero() {
		return cas.Ratio{}, cas.Ratio{}, cas.Ratio{}, fmt.Errorf("%w: delta impedances sum to zero", ErrInconsistentNetwork)
	}
	z1, _ := zb.Mul(zc).Div(sum)
	z2, _ := za.Mul(zc).Div(sum)
	z3, _ := za.Mul(zb).Div(sum)
	return z1, z2, z3, nil
}

// WyeToDelta is the inverse of DeltaToWye.
func WyeToDelta(z1, z2, z3 cas.Ratio) (cas.Ratio, cas.Ratio, cas.Ratio, error) {
	p := z1.Mul(z2).Add(z2.Mul(z3)).Add(z3.Mul(z1))
	za, err := p.Div(z1)
	if err != nil {
		return cas.Ratio{}, cas.Ratio{}, cas.Ratio{}, fmt.Errorf("%w: zero star impedance", ErrInconsistentNetwork)
	}
	zb, err := p.Div(z2)
	if err != nil {
		return cas.Ratio{}, cas.Ratio{}, cas.Ratio{}, fmt.Errorf("%w: zero star impedance", ErrInconsistentNetwork)
	}
	zc, err := p.Div(z3)
	if err != nil {
		return cas.Ratio{}, cas.Ratio{}, cas.Ratio{}, fmt.Errorf("%w: zero star impedance", ErrInconsistentNetwork)
	}
	return za, zb, zc, nil
}
