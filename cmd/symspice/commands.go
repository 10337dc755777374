package main

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edp1096/toy-symspice/internal/config"
	"github.com/edp1096/toy-symspice/pkg/analysis"
	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/circuit"
	"github.com/edp1096/toy-symspice/pkg/expr"
	"github.com/edp1096/toy-symspice/pkg/netlist"
	"github.com/edp1096/toy-symspice/pkg/util"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <netlist>",
		Short: "Run the analysis named by the netlist's .op, .tran or .ac directive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nl, ckt, err := a.load(args[0])
			if err != nil {
				return err
			}
			an := a.analysisFor(nl)
			if err := an.Setup(ckt); err != nil {
				return err
			}
			if err := an.Execute(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if op, ok := an.(*analysis.OperatingPoint); ok {
				fmt.Fprint(out, util.FormatExpressions(op.GetExpressions()))
			}
			printResults(out, an.GetResults())
			return nil
		},
	}
}

func (a *app) analysisFor(nl *netlist.Netlist) analysis.Analysis {
	env := a.cfg.Env
	switch nl.Analysis {
	case netlist.AnalysisTRAN:
		p := nl.TranParam
		return analysis.NewTransient(p.TStart, p.TStop, p.TStep, env)
	case netlist.AnalysisAC:
		p := nl.ACParam
		return analysis.NewAC("", p.FStart, p.FStop, p.Points, p.Sweep, env)
	}
	return analysis.NewOP(env)
}

func newSolveCmd(a *app) *cobra.Command {
	var domain string
	cmd := &cobra.Command{
		Use:   "solve <netlist> [V(node)|V(a,b)|I(name)...]",
		Short: "Print node voltages and component currents symbolically",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if domain == "" {
				domain = a.cfg.Domain
			}
			if !slices.Contains(config.Domains, domain) {
				return fmt.Errorf("unknown domain %q, want one of %s", domain, strings.Join(config.Domains, ", "))
			}
			_, ckt, err := a.load(args[0])
			if err != nil {
				return err
			}
			names := args[1:]
			if len(names) == 0 {
				names = allQuantities(ckt)
			}
			width := 0
			for _, n := range names {
				width = max(width, len(n))
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				x, err := quantity(ckt, name)
				if err != nil {
					return err
				}
				text, err := render(x, domain)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				fmt.Fprintf(out, "%-*s = %s\n", width, name, text)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&domain, "domain", "d", "", "output domain: "+strings.Join(config.Domains, ", "))
	return cmd
}

func allQuantities(ckt *circuit.Circuit) []string {
	var names []string
	for _, n := range ckt.Nodes() {
		names = append(names, "V("+n+")")
	}
	for _, p := range ckt.Layout() {
		if p.Kind.HasCurrent() {
			names = append(names, "I("+p.Name+")")
		}
	}
	return names
}

// quantity evaluates V(node), V(plus,minus) or I(name).
func quantity(ckt *circuit.Circuit, name string) (expr.Super, error) {
	if len(name) < 4 || name[1] != '(' || !strings.HasSuffix(name, ")") {
		return expr.Super{}, fmt.Errorf("bad quantity %q, want V(node), V(a,b) or I(name)", name)
	}
	inner := name[2 : len(name)-1]
	switch strings.ToUpper(name[:1]) {
	case "V":
		if plus, minus, ok := strings.Cut(inner, ","); ok {
			return ckt.Voltage(strings.TrimSpace(plus), strings.TrimSpace(minus))
		}
		return ckt.V(inner)
	case "I":
		return ckt.I(inner)
	}
	return expr.Super{}, fmt.Errorf("bad quantity %q, want V(node), V(a,b) or I(name)", name)
}

func render(x expr.Super, domain string) (string, error) {
	var (
		v   expr.Value
		err error
	)
	switch domain {
	case "dc":
		v, err = x.DC()
	case "s":
		v, err = x.S()
	case "t":
		v, err = x.Time()
	case "n":
		v, err = x.Noise()
	case "ac":
		var parts []string
		for _, key := range x.ACKeys() {
			w, _ := x.ACOmega(key)
			p, err := x.AC(w)
			if err != nil {
				return "", err
			}
			parts = append(parts, fmt.Sprintf("{%s @ omega=%s}", p, w))
		}
		if len(parts) == 0 {
			return "0", nil
		}
		return strings.Join(parts, " + "), nil
	default:
		return x.String(), nil
	}
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func newEquationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "equations <netlist>",
		Short: "Print the modified nodal analysis system A x = z",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ckt, err := a.load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, ckt.Equations())
			fmt.Fprintln(out, "Right-hand side:")
			for i, z := range ckt.Z() {
				fmt.Fprintf(out, "  %d: %s\n", i+1, z)
			}
			return nil
		},
	}
}

func newTransferCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <netlist> <source> <node> [ref]",
		Short: "Print the transfer function from a source to a node voltage, with poles and zeros",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ckt, err := a.load(args[0])
			if err != nil {
				return err
			}
			ref := "0"
			if len(args) == 4 {
				ref = args[3]
			}
			h, err := ckt.Transfer(args[1], args[2], ref)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "H(s) = %s\n", h)
			printRoots(out, "poles", h.Poles)
			printRoots(out, "zeros", h.Zeros)
			return nil
		},
	}
}

func printRoots(w io.Writer, label string, roots func() ([]cas.Root, error)) {
	rs, err := roots()
	if err != nil {
		fmt.Fprintf(w, "%s: %v\n", label, err)
		return
	}
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.Value.String()
		if r.Mult > 1 {
			parts[i] += fmt.Sprintf(" (x%d)", r.Mult)
		}
	}
	fmt.Fprintf(w, "%s: [%s]\n", label, strings.Join(parts, ", "))
}

func newImpedanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "impedance <netlist> <node> [ref]",
		Short: "Print the driving-point impedance between two nodes with sources zeroed",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ckt, err := a.load(args[0])
			if err != nil {
				return err
			}
			ref := "0"
			if len(args) == 3 {
				ref = args[2]
			}
			z, err := ckt.Impedance(args[1], ref)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Z(%s,%s) = %s\n", args[1], ref, z)
			return nil
		},
	}
}

func newLayoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "layout <netlist>",
		Short: "Print components with their nodes and drawing hints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ckt, err := a.load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if t := ckt.Title(); t != "" {
				fmt.Fprintf(out, "* %s\n", t)
			}
			for _, p := range ckt.Layout() {
				line := fmt.Sprintf("%-6s %-12s %s", p.Name, p.Kind, strings.Join(p.Nodes, " "))
				if p.Hints != "" {
					line += " ; " + p.Hints
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "init [path]",
		Short:             "Write a default config file",
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "symspice.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", filepath.Clean(path))
			return nil
		},
	}
}
