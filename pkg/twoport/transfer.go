package twoport

import (
	"fmt"

	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/expr"
	"github.com/edp1096/toy-symspice/pkg/oneport"
)

// termination reads a load or source network as a/b with z = a/b, so an
// open circuit is 1/0 and a short 0/1.
func termination(n oneport.Network) (a, b cas.Ratio) {
	if z, ok := n.Impedance(); ok {
		return z, cas.Int(1)
	}
	return cas.Int(1), cas.Ratio{}
}

func ratioOf(name string, num, den cas.Ratio) (expr.Value, error) {
	r, err := num.Div(den)
	if err != nil {
		return expr.Value{}, fmt.Errorf("%s: %w", name, ErrUndefinedTransferFunction)
	}
	return expr.LaplaceOf(r), nil
}

func (t TwoPort) abcd() (a, b, c, d cas.Ratio, err error) {
	p, err := t.To(ABCD)
	if err != nil {
		return
	}
	return p.m[0][0], p.m[0][1], p.m[1][0], p.m[1][1], nil
}

// VoltageGain is V2/V1 with load connected across port 2.
func (t TwoPort) VoltageGain(load oneport.Network) (expr.Value, error) {
	a, b, _, _, err := t.abcd()
	if err != nil {
		return expr.Value{}, err
	}
	zn, zd := termination(load)
	return ratioOf("voltage gain", zn, a.Mul(zn).Add(b.Mul(zd)))
}

// CurrentGain is the ratio of the current delivered into the load to I1.
func (t TwoPort) CurrentGain(load oneport.Network) (expr.Value, error) {
	_, _, c, d, err := t.abcd()
	if err != nil {
		return expr.Value{}, err
	}
	zn, zd := termination(load)
	return ratioOf("current gain", zd, c.Mul(zn).Add(d.Mul(zd)))
}

// Transimpedance is V2/I1.
func (t TwoPort) Transimpedance(load oneport.Network) (expr.Value, error) {
	_, _, c, d, err := t.abcd()
	if err != nil {
		return expr.Value{}, err
	}
	zn, zd := termination(load)
	return ratioOf("transimpedance", zn, c.Mul(zn).Add(d.Mul(zd)))
}

// InputImpedance is V1/I1 with load across port 2.
func (t TwoPort) InputImpedance(load oneport.Network) (expr.Value, error) {
	a, b, c, d, err := t.abcd()
	if err != nil {
		return expr.Value{}, err
	}
	zn, zd := termination(load)
	return ratioOf("input impedance", a.Mul(zn).Add(b.Mul(zd)), c.Mul(zn).Add(d.Mul(zd)))
}

// OutputImpedance is seen into port 2 with source impedance src across port 1.
func (t TwoPort) OutputImpedance(src oneport.Network) (expr.Value, error) {
	a, b, c, d, err := t.abcd()
	if err != nil {
		return expr.Value{}, err
	}
	zn, zd := termination(src)
	return ratioOf("output impedance", d.Mul(zn).Add(b.Mul(zd)), c.Mul(zn).Add(a.Mul(zd)))
}
