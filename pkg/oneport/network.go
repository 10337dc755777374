package oneport

import (
	"errors"
	"fmt"

	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/device"
	"github.com/edp1096/toy-symspice/pkg/expr"
)

var (
	ErrInconsistentNetwork = errors.New("inconsistent network")
	// ErrInvalidComponentValue is re-exported from the device table.
	ErrInvalidComponentValue = device.ErrInvalidComponentValue
)

type Form = device.Form

const (
	General = device.General
	Voltage = device.Voltage
	Current = device.Current
)

// Network is an immutable two-terminal network. A General network is held
// in Thevenin form (z, voc); an ideal voltage source has z = 0 and an ideal
// current source is held by its short-circuit current alone.
type Network struct {
	form Form
	z    cas.Ratio
	voc  expr.Super
	isc  expr.Super
	desc string
}

func fromPort(p device.Port, desc string) Network {
	n := Network{form: p.Form, desc: desc}
	switch p.Form {
	case General:
		n.z, n.voc = p.Z, p.Voc
		if n.z.IsZero() {
			n.form = Voltage
		}
	case Voltage:
		n.voc = p.Voc
	case Current:
		n.isc = p.Isc
	}
	return n
}

func (n Network) Form() Form { return n.form }

func (n Network) String() string {
	if n.desc == "" {
		switch n.form {
		case Voltage:
			return "V(" + n.voc.String() + ")"
		case Current:
			return "I(" + n.isc.String() + ")"
		}
		return "Z(" + n.z.String() + ")"
	}
	return n.desc
}

// Impedance returns Zoc as a rational function; false for an ideal
// current source.
func (n Network) Impedance() (cas.Ratio, bool) {
	switch n.form {
	case Current:
		return cas.Ratio{}, false
	case Voltage:
		return cas.Ratio{}, true
	}
	return n.z, true
}

// Admittance returns Ysc; false for an ideal voltage source.
func (n Network) Admittance() (cas.Ratio, bool) {
	switch n.form {
	case Voltage:
		return cas.Ratio{}, false
	case Current:
		return cas.Ratio{}, true
	}
	y, _ := n.z.Inv()
	return y, true
}

// Zoc is the open-circuit impedance; infinite for a current source.
func (n Network) Zoc() expr.Value {
	z, ok := n.Impedance()
	if !ok {
		return expr.Infinite(expr.Laplace)
	}
	return expr.LaplaceOf(z)
}

// Ysc is the short-circuit admittance; infinite for a voltage source.
func (n Network) Ysc() expr.Value {
	y, ok := n.Admittance()
	if !ok {
		return expr.Infinite(expr.Laplace)
	}
	return expr.LaplaceOf(y)
}

// Voc is the open-circuit voltage.
func (n Network) Voc() (expr.Super, error) {
	switch n.form {
	case Current:
		if n.isc.IsZero() {
			return expr.Super{}, nil
		}
		return expr.UnboundedSuper(), nil
	}
	return n.voc, nil
}

// Isc is the short-circuit current.
func (n Network) Isc() (expr.Super, error) {
	switch n.form {
	case Current:
		return n.isc, nil
	case Voltage:
		if n.voc.IsZero() {
			return expr.Super{}, nil
		}
		return expr.UnboundedSuper(), nil
	}
	y, _ := n.z.Inv()
	isc, err := n.voc.Apply(y)
	if err != nil {
		return expr.Super{}, fmt.Errorf("isc of %s: %w", n, err)
	}
	return isc, nil
}

// Series connects a and b end to end. An ideal current source dominates.
func Series(a, b Network) (Network, error) {
	desc := "(" + a.String() + " + " + b.String() + ")"
	switch {
	case a.form == Current && b.form == Current:
		if !a.isc.Equal(b.isc) {
			return Network{}, fmt.Errorf("%w: current sources %s and %s in series", ErrInconsistentNetwork, a.isc, b.isc)
		}
		a.desc = desc
		return a, nil
	case a.form == Current:
		a.desc = desc
		return a, nil
	case b.form == Current:
		b.desc = desc
		return b, nil
	}
	n := Network{form: General, z: a.z.Add(b.z), voc: a.voc.Add(b.voc), desc: desc}
	if n.z.IsZero() {
		n.form, n.z = Voltage, cas.Ratio{}
	}
	return n, nil
}

// Parallel connects a and b across the same terminals. An ideal voltage
// source dominates.
func Parallel(a, b Network) (Network, error) {
	desc := "(" + a.String() + " | " + b.String() + ")"
	switch {
	case a.form == Voltage && b.form == Voltage:
		if !a.voc.Equal(b.voc) {
			return Network{}, fmt.Errorf("%w: voltage sources %s and %s in parallel", ErrInconsistentNetwork, a.voc, b.voc)
		}
		a.desc = desc
		return a, nil
	case a.form == Voltage:
		a.desc = desc
		return a, nil
	case b.form == Voltage:
		b.desc = desc
		return b, nil
	}

	ya, _ := a.Admittance()
	yb, _ := b.Admittance()
	ia, err := a.Isc()
	if err != nil {
		return Network{}, err
	}
	ib, err := b.Isc()
	if err != nil {
		return Network{}, err
	}
	y, isc := ya.Add(yb), ia.Add(ib)
	if y.IsZero() {
		return Network{form: Current, isc: isc, desc: desc}, nil
	}
	z, _ := y.Inv()
	voc, err := isc.Apply(z)
	if err != nil {
		return Network{}, fmt.Errorf("voc of %s: %w", desc, err)
	}
	return Network{form: General, z: z, voc: voc, desc: desc}, nil
}

// SeriesOf folds Series over ns; the empty series is a short.
func SeriesOf(ns ...Network) (Network, error) {
	acc := Short()
	for i, n := range ns {
		if i == 0 {
			acc = n
			continue
		}
		var err error
		if acc, err = Series(acc, n); err != nil {
			return Network{}, err
		}
	}
	return acc, nil
}

// ParallelOf folds Parallel over ns; the empty combination is an open.
func ParallelOf(ns ...Network) (Network, error) {
	acc := OpenCircuit()
	for i, n := range ns {
		if i == 0 {
			acc = n
			continue
		}
		var err error
		if acc, err = Parallel(acc, n); err != nil {
			return Network{}, err
		}
	}
	return acc, nil
}

// Equivalent reports whether a and b present the same port behaviour.
func Equivalent(a, b Network) bool {
	if a.form != b.form {
		return false
	}
	switch a.form {
	case Current:
		return a.isc.Equal(b.isc)
	case Voltage:
		return a.voc.Equal(b.voc)
	}
	return a.z.Equal(b.z) && a.voc.Equal(b.voc)
}

// Thevenin returns the open-circuit voltage and series impedance.
func (n Network) Thevenin() (expr.Super, expr.Value, error) {
	voc, err := n.Voc()
	return voc, n.Zoc(), err
}

// Norton returns the short-circuit current and shunt admittance.
func (n Network) Norton() (expr.Super, expr.Value, error) {
	isc, err := n.Isc()
	return isc, n.Ysc(), err
}
