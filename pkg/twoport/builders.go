package twoport

import (
	"fmt"

	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/oneport"
)

func Identity() TwoPort { return New(ABCD, cas.Int(1), cas.Ratio{}, cas.Ratio{}, cas.Int(1)) }

func impedance(n oneport.Network) (cas.Ratio, error) {
	z, ok := n.Impedance()
	if !ok {
		return cas.Ratio{}, fmt.Errorf("%w: %s has no finite impedance", ErrSingularTwoPort, n)
	}
	return z, nil
}

func admittance(n oneport.Network) (cas.Ratio, error) {
	y, ok := n.Admittance()
	if !ok {
		return cas.Ratio{}, fmt.Errorf("%w: %s has no finite admittance", ErrSingularTwoPort, n)
	}
	return y, nil
}

// SeriesArm places n between the upper terminals of both ports.
func SeriesArm(n oneport.Network) (TwoPort, error) {
	z, err := impedance(n)
	if err != nil {
		return TwoPort{}, err
	}
	return New(ABCD, cas.Int(1), z, cas.Ratio{}, cas.Int(1)), nil
}

// ShuntArm places n across both ports.
func ShuntArm(n oneport.Network) (TwoPort, error) {
	y, err := admittance(n)
	if err != nil {
		return TwoPort{}, err
	}
	return New(ABCD, cas.Int(1), cas.Ratio{}, y, cas.Int(1)), nil
}

type arm func(oneport.Network) (TwoPort, error)

func ladder(sections []arm, ns []oneport.Network) (TwoPort, error) {
	ts := make([]TwoPort, len(ns))
	for i, n := range ns {
		t, err := sections[i](n)
		if err != nil {
			return TwoPort{}, err
		}
		ts[i] = t
	}
	return CascadeOf(ts...)
}

// LSection is a series arm followed by a shunt arm.
func LSection(series, shunt oneport.Network) (TwoPort, error) {
	return ladder([]arm{SeriesArm, ShuntArm}, []oneport.Network{series, shunt})
}

// InverseLSection is a shunt arm followed by a series arm.
func InverseLSection(shunt, series oneport.Network) (TwoPort, error) {
	return ladder([]arm{ShuntArm, SeriesArm}, []oneport.Network{shunt, series})
}

func TSection(in, shunt, out oneport.Network) (TwoPort, error) {
	return ladder([]arm{SeriesArm, ShuntArm, SeriesArm}, []oneport.Network{in, shunt, out})
}

func PiSection(in, series, out oneport.Network) (TwoPort, error) {
	return ladder([]arm{ShuntArm, SeriesArm, ShuntArm}, []oneport.Network{in, series, out})
}

// IdealTransformer with V2 = n*V1 and I2 = -I1/n. Its ports are isolated.
func IdealTransformer(n cas.Ratio) (TwoPort, error) {
	inv, err := n.Inv()
	if err != nil {
		return TwoPort{}, fmt.Errorf("%w: zero turns ratio", ErrSingularTwoPort)
	}
	return New(ABCD, inv, cas.Ratio{}, cas.Ratio{}, n).Floating(), nil
}
