// Package signal turns source waveforms into superposition contributions.
package signal

import (
	"fmt"

	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/expr"
)

// Classify splits a time function into its DC constant, one AC phasor per
// distinct angular frequency, and a transient Laplace remainder.
func Classify(f cas.TimeFunc) (expr.Super, error) {
	var (
		out   expr.Super
		rest  cas.TimeFunc
		order []string
		tones = map[string]cas.TimeFunc{}
	)
	for _, t := range f.Terms {
		one := cas.TimeFunc{Terms: []cas.TimeTerm{t}}
		switch {
		case isConstant(t):
			out = out.Add(expr.NewDC(t.Coef))
		case isTone(t):
			k := t.Omega2.String()
			if _, ok := tones[k]; !ok {
				order = append(order, k)
			}
			tones[k] = tones[k].Add(one)
		default:
			rest = rest.Add(one)
		}
	}
	for _, k := range order {
		p, w, ok := tones[k].Tone()
		if !ok {
			rest = rest.Add(tones[k])
			continue
		}
		out = out.Add(expr.NewAC(p, w))
	}
	if !rest.IsZero() {
		r, err := cas.Laplace(rest, cas.LaplaceVar)
		if err != nil {
			return expr.Super{}, fmt.Errorf("%w: %s: %w", ErrMalformedWaveform, rest, err)
		}
		out = out.Add(expr.NewTransient(r))
	}
	return out, nil
}

func isConstant(t cas.TimeTerm) bool {
	return t.Shape == cas.Everlasting && t.Pow == 0 && t.Decay.IsZero() && t.Osc == cas.NoOsc && t.Root == 0
}

func isTone(t cas.TimeTerm) bool {
	return t.Shape == cas.Everlasting && t.Pow == 0 && t.Decay.IsZero() && (t.Osc == cas.Cos || t.Osc == cas.Sin)
}

// FromLaplace classifies an s-domain value: with no s it is a DC constant,
// otherwise a transient term.
func FromLaplace(r cas.Ratio) expr.Super {
	if r.Has(cas.LaplaceVar) {
		return expr.NewTransient(r)
	}
	return expr.NewDC(r)
}
