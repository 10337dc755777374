package util

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/edp1096/toy-symspice/pkg/expr"
)

var prefixes = []struct {
	scale  float64
	symbol string
}{
	{1e9, "G"},
	{1e6, "M"},
	{1e3, "k"},
	{1, ""},
	{1e-3, "m"},
	{1e-6, "u"},
	{1e-9, "n"},
	{1e-12, "p"},
}

// FormatValueFactor prints value with an SI prefix on unit.
func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	if absValue == 0 {
		return fmt.Sprintf("%.3f %s", value, unit)
	}
	for _, p := range prefixes {
		if absValue >= p.scale {
			return fmt.Sprintf("%.3f %s%s", value/p.scale, p.symbol, unit)
		}
	}
	return fmt.Sprintf("%.3e %s", value, unit)
}

func FormatFrequency(freq float64) string {
	switch {
	case freq >= 1e6:
		return fmt.Sprintf("%7.3f MHz", freq/1e6)
	case freq >= 1e3:
		return fmt.Sprintf("%7.3f kHz", freq/1e3)
	default:
		return fmt.Sprintf("%7.3f Hz ", freq)
	}
}

func FormatMagnitude(value float64) string {
	if value >= 1000 || (value < 0.001 && value != 0) {
		return fmt.Sprintf("%8.2e", value) // "1.00e+03" or "5.43e-05"
	}
	return fmt.Sprintf("%8.3g", value) // "  732.5 "
}

func FormatPhase(value float64) string {
	return fmt.Sprintf("%6.1f", value) // "  90.0"
}

func FormatMagnitudePhase(name string, value, phase float64) string {
	return fmt.Sprintf("%s=%s<%sdeg", name, FormatMagnitude(value), FormatPhase(phase))
}

// Unit is "V" for voltages "V(...)" and "A" for currents "I(...)".
func Unit(name string) string {
	if strings.HasPrefix(name, "I(") {
		return "A"
	}
	return "V"
}

// SortQuantities orders voltages before currents, each alphabetically.
func SortQuantities(names []string) {
	slices.SortFunc(names, func(a, b string) int {
		ua, ub := Unit(a), Unit(b)
		if ua != ub {
			return -strings.Compare(ua, ub)
		}
		return strings.Compare(a, b)
	})
}

// FormatExpressions prints one "name = expression" line per quantity.
func FormatExpressions(values map[string]expr.Value) string {
	names := make([]string, 0, len(values))
	width := 0
	for name := range values {
		names = append(names, name)
		width = max(width, len(name))
	}
	SortQuantities(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%-*s = %s\n", width, name, values[name])
	}
	return b.String()
}
