package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/edp1096/toy-symspice/internal/config"
	"github.com/edp1096/toy-symspice/internal/consts"
	"github.com/edp1096/toy-symspice/internal/metrics"
	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/circuit"
	"github.com/edp1096/toy-symspice/pkg/netlist"
)

// app is the state shared by every command after flags are parsed.
type app struct {
	configPath  string
	logLevel    string
	set         map[string]string
	noiseTemp   string
	showMetrics bool

	cfg      config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "symspice",
		Short:         "Symbolic analysis of linear circuits",
		Long:          "symspice solves linear netlists exactly, by superposition of DC, AC, transient and noise contributions.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.showMetrics {
				a.dumpMetrics(cmd.ErrOrStderr())
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringToStringVar(&a.set, "set", nil, "numeric symbol values, e.g. --set R1=1000,C1=1e-6")
	flags.StringVar(&a.noiseTemp, "noise-temp", "", "add resistor thermal noise at this temperature in kelvin")
	flags.BoolVar(&a.showMetrics, "metrics", false, "print solver metrics to stderr on exit")

	root.AddCommand(
		newRunCmd(a),
		newSolveCmd(a),
		newEquationsCmd(a),
		newTransferCmd(a),
		newImpedanceCmd(a),
		newLayoutCmd(a),
		newInitCmd(),
	)
	return root
}

func (a *app) init(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.noiseTemp != "" {
		cfg.Noise.Temperature = a.noiseTemp
	}
	for k, v := range a.set {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("--set %s=%s: %w", k, v, err)
		}
		cfg.Env[k] = f
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.Log.Logger(stderr)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.New(a.registry)
	return nil
}

// load reads a netlist file and builds its circuit with the configured
// logger, metrics and noise temperature.
func (a *app) load(path string) (*netlist.Netlist, *circuit.Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	nl, err := netlist.ParseReader(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	opts := []circuit.Option{circuit.WithLogger(a.logger), circuit.WithMetrics(a.metrics)}
	if t := a.cfg.Noise.Temperature; t != "" {
		temp, err := noiseTemperature(t)
		if err != nil {
			return nil, nil, fmt.Errorf("noise temperature %q: %w", t, err)
		}
		opts = append(opts, circuit.WithResistorNoise(temp))
	}
	ckt, err := circuit.New(nl, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	a.logger.Info("loaded netlist", "path", path, "title", ckt.Title(), "nodes", len(ckt.Nodes()), "sources", len(ckt.Sources()))
	return nl, ckt, nil
}

// noiseTemperature reads kelvin, or degrees Celsius with a "C" suffix.
func noiseTemperature(t string) (cas.Ratio, error) {
	celsius, ok := strings.CutSuffix(t, "C")
	if !ok {
		return cas.ParseRatio(t)
	}
	c, err := strconv.ParseFloat(celsius, 64)
	if err != nil {
		return cas.Ratio{}, err
	}
	return cas.ParseRatio(strconv.FormatFloat(c+consts.KELVIN, 'f', -1, 64))
}

func (a *app) dumpMetrics(w io.Writer) {
	if a.registry == nil {
		return
	}
	families, err := a.registry.Gather()
	if err != nil {
		fmt.Fprintf(w, "gather metrics: %v\n", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := ""
			for _, lp := range m.GetLabel() {
				labels += fmt.Sprintf("%s=%q ", lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s{%s} %g\n", mf.GetName(), strings.TrimSpace(labels), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s count=%d sum=%gs\n", mf.GetName(), h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
}
