package signal

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/expr"
)

var ErrMalformedWaveform = errors.New("malformed waveform")

// DefaultOmega is the angular frequency of an ac clause that names none.
const DefaultOmega = "omega0"

var keywords = map[string]bool{"dc": true, "ac": true, "step": true, "noise": true, "s": true}

// Parse reads the waveform tokens of a V or I line. Clauses may be
// combined and are summed:
//
//	dc X
//	ac X [phase-degrees] [omega]
//	step X
//	noise PSD
//	s {laplace-expr}
//	X | {time-expr}
func Parse(tokens []string) (expr.Super, error) {
	if len(tokens) == 0 {
		return expr.Super{}, fmt.Errorf("%w: empty", ErrMalformedWaveform)
	}
	var out expr.Super
	for i := 0; i < len(tokens); {
		kw := strings.ToLower(tokens[i])
		if !keywords[kw] {
			if len(tokens) != 1 {
				return expr.Super{}, fmt.Errorf("%w: unexpected %q", ErrMalformedWaveform, tokens[i])
			}
			return Value(tokens[0])
		}
		if i+1 == len(tokens) {
			return expr.Super{}, fmt.Errorf("%w: %s needs a value", ErrMalformedWaveform, kw)
		}
		args := []string{unbrace(tokens[i+1])}
		i += 2
		if kw == "ac" {
			for len(args) < 3 && i < len(tokens) && !keywords[strings.ToLower(tokens[i])] {
				args = append(args, unbrace(tokens[i]))
				i++
			}
		}
		part, err := clause(kw, args)
		if err != nil {
			return expr.Super{}, err
		}
		out = out.Add(part)
	}
	return out, nil
}

func unbrace(tok string) string {
	if strings.HasPrefix(tok, "{") && strings.HasSuffix(tok, "}") {
		return tok[1 : len(tok)-1]
	}
	return tok
}

func ratio(kw, s string) (cas.Ratio, error) {
	r, err := cas.ParseRatio(s)
	if err != nil {
		return cas.Ratio{}, fmt.Errorf("%w: %s %s: %w", ErrMalformedWaveform, kw, s, err)
	}
	return r, nil
}

func constant(kw, s string) (cas.Ratio, error) {
	r, err := ratio(kw, s)
	if err == nil && (r.Has(cas.LaplaceVar) || r.Has(cas.TimeVar)) {
		err = fmt.Errorf("%w: %s %s: not a constant", ErrMalformedWaveform, kw, s)
	}
	return r, err
}

func clause(kw string, args []string) (expr.Super, error) {
	switch kw {
	case "s":
		r, err := ratio(kw, args[0])
		if err != nil {
			return expr.Super{}, err
		}
		return expr.NewTransient(r), nil
	case "ac":
		return acClause(args)
	}
	x, err := constant(kw, args[0])
	if err != nil {
		return expr.Super{}, err
	}
	switch kw {
	case "dc":
		return expr.NewDC(x), nil
	case "step":
		r, _ := x.Div(cas.Sym(cas.LaplaceVar))
		return expr.NewTransient(r), nil
	}
	return expr.NewNoise(x), nil
}

func acClause(args []string) (expr.Super, error) {
	amp, err := constant("ac", args[0])
	if err != nil {
		return expr.Super{}, err
	}
	p := cas.Real(amp)
	if len(args) > 1 {
		deg, err := constant("ac", args[1])
		if err != nil {
			return expr.Super{}, err
		}
		rot, err := rotation(deg)
		if err != nil {
			return expr.Super{}, err
		}
		p = rot.Scale(amp)
	}
	w := cas.Sym(DefaultOmega)
	if len(args) > 2 {
		if w, err = constant("ac", args[2]); err != nil {
			return expr.Super{}, err
		}
	}
	return expr.NewAC(p, w), nil
}

// rotation returns exp(j*deg*pi/180). Multiples of 90 degrees are exact;
// other angles are rounded to 12 significant digits.
func rotation(deg cas.Ratio) (cas.Complex, error) {
	d, ok := deg.Rat()
	if !ok {
		return cas.Complex{}, fmt.Errorf("%w: phase %s must be numeric", ErrMalformedWaveform, deg)
	}
	if q := new(big.Rat).Quo(d, big.NewRat(90, 1)); q.IsInt() {
		switch new(big.Int).Mod(q.Num(), big.NewInt(4)).Int64() {
		case 0:
			return cas.Real(cas.Int(1)), nil
		case 1:
			return cas.Complex{Im: cas.Int(1)}, nil
		case 2:
			return cas.Real(cas.Int(-1)), nil
		default:
			return cas.Complex{Im: cas.Int(-1)}, nil
		}
	}
	f, _ := d.Float64()
	rad := f * math.Pi / 180
	return cas.Complex{Re: cas.Rounded(math.Cos(rad)), Im: cas.Rounded(math.Sin(rad))}, nil
}

// Value classifies a bare value: a constant is DC, an expression in s is
// transient, and an expression in t is split by Classify.
func Value(s string) (expr.Super, error) {
	s = unbrace(s)
	if r, err := cas.ParseRatio(s); err == nil && !r.Has(cas.TimeVar) {
		return FromLaplace(r), nil
	}
	f, err := cas.ParseTime(s)
	if err != nil {
		return expr.Super{}, fmt.Errorf("%w: %s: %w", ErrMalformedWaveform, s, err)
	}
	return Classify(f)
}
