package netlist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var unitMap = map[string]float64{
	"T":   1e12,  // tera
	"G":   1e9,   // giga
	"meg": 1e6,   // mega
	"K":   1e3,   // kilo
	"k":   1e3,   // kilo
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

var valueRe = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[TGKkmunpf])?(?:s|Hz)?$`)

// ParseValue reads a plain number with an optional SI suffix: 1k -> 1000.
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}
	if matches[2] != "" {
		num *= unitMap[matches[2]]
	}
	return num, nil
}

// Parse .title, .op, .tran, .ac
func parseDotOperator(netlistData *Netlist, fields []string) error {
	var err error

	switch strings.ToLower(fields[0]) {
	case ".title":
		netlistData.Title = strings.Join(fields[1:], " ")

	case ".op":
		netlistData.Analysis = AnalysisOP

	case ".tran":
		netlistData.Analysis = AnalysisTRAN
		if len(fields) < 3 || len(fields) > 4 {
			return malformed(".tran takes tstep tstop [tstart]")
		}
		if netlistData.TranParam.TStep, err = ParseValue(fields[1]); err != nil {
			return malformed("invalid tstep: %v", err)
		}
		if netlistData.TranParam.TStop, err = ParseValue(fields[2]); err != nil {
			return malformed("invalid tstop: %v", err)
		}
		if len(fields) == 4 {
			if netlistData.TranParam.TStart, err = ParseValue(fields[3]); err != nil {
				return malformed("invalid tstart: %v", err)
			}
		}
		if netlistData.TranParam.TStep <= 0 || netlistData.TranParam.TStop <= netlistData.TranParam.TStart {
			return malformed("tstep must be positive and tstop after tstart")
		}

	case ".ac":
		netlistData.Analysis = AnalysisAC
		if len(fields) != 5 {
			return malformed(".ac takes sweep points fstart fstop")
		}

		// DEC, OCT, LIN
		netlistData.ACParam.Sweep = strings.ToUpper(fields[1])
		switch netlistData.ACParam.Sweep {
		case "DEC", "OCT", "LIN":
		default:
			return malformed("invalid sweep type: %s", fields[1])
		}
		if netlistData.ACParam.Points, err = strconv.Atoi(fields[2]); err != nil || netlistData.ACParam.Points < 1 {
			return malformed("invalid points number: %s", fields[2])
		}
		if netlistData.ACParam.FStart, err = ParseValue(fields[3]); err != nil {
			return malformed("invalid fstart: %v", err)
		}
		if netlistData.ACParam.FStop, err = ParseValue(fields[4]); err != nil {
			return malformed("invalid fstop: %v", err)
		}

	default:
		return malformed("unsupported directive: %s", fields[0])
	}

	return nil
}
