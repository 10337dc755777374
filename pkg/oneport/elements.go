package oneport

import (
	"fmt"

	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/device"
	"github.com/edp1096/toy-symspice/pkg/expr"
)

var terminals = []string{"+", "-"}

func parse(what, value string) (cas.Ratio, error) {
	r, err := cas.ParseRatio(value)
	if err != nil {
		return cas.Ratio{}, fmt.Errorf("%s(%s): %w", what, value, err)
	}
	return r, nil
}

func element(kind device.Kind, value, ic string) (Network, error) {
	v, err := parse(kind.Prefix(), value)
	if err != nil {
		return Network{}, err
	}
	c, err := device.New(kind.Prefix(), kind, terminals, v)
	if err != nil {
		return Network{}, err
	}
	desc := kind.Prefix() + "(" + value + ")"
	if ic != "" {
		if c.IC, err = parse(kind.Prefix(), ic); err != nil {
			return Network{}, err
		}
		desc = kind.Prefix() + "(" + value + ", " + ic + ")"
	}
	p, err := c.Port()
	if err != nil {
		return Network{}, err
	}
	return fromPort(p, desc), nil
}

func R(value string) (Network, error) { return element(device.Resistor, value, "") }
func G(value string) (Network, error) { return element(device.Conductance, value, "") }
func Z(value string) (Network, error) { return element(device.Impedance, value, "") }
func Y(value string) (Network, error) { return element(device.Admittance, value, "") }

// L is an inductor with optional initial current i0 ("" for none).
func L(value, i0 string) (Network, error) { return element(device.Inductor, value, i0) }

// C is a capacitor with optional initial voltage v0 ("" for none).
func C(value, v0 string) (Network, error) { return element(device.Capacitor, value, v0) }

// V is an ideal voltage source with waveform w.
func V(w expr.Super) Network {
	c := &device.Component{Name: "V", Kind: device.VoltageSource, Source: w}
	p, _ := c.Port()
	return fromPort(p, "V("+w.String()+")")
}

// I is an ideal current source with waveform w.
func I(w expr.Super) Network {
	c := &device.Component{Name: "I", Kind: device.CurrentSource, Source: w}
	p, _ := c.Port()
	return fromPort(p, "I("+w.String()+")")
}

func Short() Network       { return Network{form: Voltage, desc: "short"} }
func OpenCircuit() Network { return Network{form: Current, desc: "open"} }

func source(what, value string, wrap func(cas.Ratio) (expr.Super, error)) (expr.Super, error) {
	v, err := parse(what, value)
	if err != nil {
		return expr.Super{}, err
	}
	return wrap(v)
}

func dc(v cas.Ratio) (expr.Super, error) { return expr.NewDC(v), nil }

func step(v cas.Ratio) (expr.Super, error) {
	r, err := v.Div(cas.Sym(cas.LaplaceVar))
	return expr.NewTransient(r), err
}

func noise(v cas.Ratio) (expr.Super, error) { return expr.NewNoise(v), nil }

func ac(omega string) func(cas.Ratio) (expr.Super, error) {
	return func(v cas.Ratio) (expr.Super, error) {
		w, err := parse("omega", omega)
		if err != nil {
			return expr.Super{}, err
		}
		return expr.NewAC(cas.Real(v), w), nil
	}
}

func voltage(s expr.Super, err error) (Network, error) {
	if err != nil {
		return Network{}, err
	}
	return V(s), nil
}

func current(s expr.Super, err error) (Network, error) {
	if err != nil {
		return Network{}, err
	}
	return I(s), nil
}

func Vdc(value string) (Network, error)   { return voltage(source("Vdc", value, dc)) }
func Idc(value string) (Network, error)   { return current(source("Idc", value, dc)) }
func Vstep(value string) (Network, error) { return voltage(source("Vstep", value, step)) }
func Istep(value string) (Network, error) { return current(source("Istep", value, step)) }

// Vnoise takes a one-sided voltage power spectral density.
func Vnoise(psd string) (Network, error) { return voltage(source("Vnoise", psd, noise)) }
func Inoise(psd string) (Network, error) { return current(source("Inoise", psd, noise)) }

// Vac is a cosine of amplitude value at angular frequency omega.
func Vac(value, omega string) (Network, error) { return voltage(source("Vac", value, ac(omega))) }
func Iac(value, omega string) (Network, error) { return current(source("Iac", value, ac(omega))) }
