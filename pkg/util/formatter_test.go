package util

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/expr"
)

func TestFormatValueFactor(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "0.000 V"},
		{2.5, "2.500 V"},
		{-0.25, "-250.000 mV"},
		{4.7e-6, "4.700 uV"},
		{1.5e4, "15.000 kV"},
		{3e-15, "3.000e-15 V"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValueFactor(tt.value, "V"))
	}
}

func TestFormatMagnitudePhase(t *testing.T) {
	assert.Equal(t, "V(2)=   0.707< -45.0deg", FormatMagnitudePhase("V(2)", 0.7071, -45))
	assert.Equal(t, "V(2)=1.00e+03<  90.0deg", FormatMagnitudePhase("V(2)", 1000, 90))
}

func TestFormatExpressions(t *testing.T) {
	out := FormatExpressions(map[string]expr.Value{
		"I(R1)": expr.Const(cas.Frac(1, 4)),
		"V(2)":  expr.Const(cas.Int(5)),
		"V(1)":  expr.Const(cas.Frac(5, 2)),
	})
	assert.Equal(t, "V(1)  = 5/2\nV(2)  = 5\nI(R1) = 1/4\n", out)
}
