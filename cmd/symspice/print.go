package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/edp1096/toy-symspice/pkg/util"
)

// printResults writes the numeric table of an analysis: a frequency sweep,
// a DC sweep, a transient run or an operating point.
func printResults(w io.Writer, results map[string][]float64) {
	var names []string
	for name := range results {
		base := strings.TrimSuffix(name, "_MAG")
		if base != name || (!strings.HasSuffix(name, "_PHASE") && strings.Contains(name, "(")) {
			names = append(names, base)
		}
	}
	util.SortQuantities(names)

	switch {
	case len(results["FREQ"]) > 0:
		freqs := results["FREQ"]
		fmt.Fprintf(w, "\nAC Analysis Results (%d frequency points):\n", len(freqs))
		for i, freq := range freqs {
			fmt.Fprintf(w, "%-13s", util.FormatFrequency(freq))
			for _, name := range names {
				mag, phase := results[name+"_MAG"], results[name+"_PHASE"]
				fmt.Fprintf(w, "%s  ", util.FormatMagnitudePhase(name, mag[i], phase[i]))
			}
			fmt.Fprintln(w)
		}

	case len(results["SWEEP1"]) > 0:
		sweep := results["SWEEP1"]
		fmt.Fprintf(w, "\nDC Sweep Analysis Results (%d points):\n", len(sweep))
		for i, v := range sweep {
			fmt.Fprintf(w, "%-12g", v)
			printRow(w, names, results, i)
		}

	case len(results["TIME"]) > 0:
		times := results["TIME"]
		fmt.Fprintf(w, "\nTransient Analysis Results (%d time points):\n", len(times))
		for i, t := range times {
			fmt.Fprintf(w, "%12s  ", util.FormatValueFactor(t, "s"))
			printRow(w, names, results, i)
		}

	case len(names) > 0:
		fmt.Fprintln(w, "\nOperating point:")
		for _, name := range names {
			fmt.Fprintf(w, "%s = %s\n", name, util.FormatValueFactor(results[name][0], util.Unit(name)))
		}
	}
}

func printRow(w io.Writer, names []string, results map[string][]float64, i int) {
	for _, name := range names {
		fmt.Fprintf(w, "%s=%s  ", name, util.FormatValueFactor(results[name][i], util.Unit(name)))
	}
	fmt.Fprintln(w)
}
