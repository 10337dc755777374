package netlist

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/device"
	"github.com/edp1096/toy-symspice/pkg/expr"
)

type AnalysisType int

const (
	AnalysisNone AnalysisType = iota
	AnalysisOP
	AnalysisTRAN
	AnalysisAC
)

// Netlist is the parsed form of a netlist: components in source order plus
// the analysis directives found alongside them.
type Netlist struct {
	Title      string
	Components []Component
	Analysis   AnalysisType
	TranParam  struct {
		TStep  float64 // sample spacing
		TStop  float64 // stop time
		TStart float64 // start time
	}
	ACParam struct {
		Sweep  string  // DEC, OCT, LIN
		Points int     // points per decade/octave, or total for LIN
		FStart float64 // start frequency
		FStop  float64 // stop frequency
	}
}

// Hint is a drawing hint: key=value or a bare keyword such as "right".
type Hint struct {
	Key   string
	Value string
}

// Component is one element line.
type Component struct {
	Line    int
	Name    string
	Kind    device.Kind
	Nodes   []string
	Value   cas.Ratio  // element value or controlled-source gain
	IC      cas.Ratio  // C: v0, L: i0
	Source  expr.Super // V, I
	Control string     // F, H
	Coupled []string   // K

	Hints    []Hint
	HintText string // verbatim text after ';'
}

// Device builds the solver component for c.
func (c Component) Device() (*device.Component, error) {
	d, err := device.New(c.Name, c.Kind, append([]string(nil), c.Nodes...), c.Value)
	if err != nil {
		return nil, err
	}
	d.IC, d.Source, d.Control = c.IC, c.Source, c.Control
	d.Coupled = append([]string(nil), c.Coupled...)
	return d, nil
}

// Lookup returns the component called name.
func (n *Netlist) Lookup(name string) (Component, bool) {
	for _, c := range n.Components {
		if c.Name == name {
			return c, true
		}
	}
	return Component{}, false
}

// Hints maps component names to their drawing hints.
func (n *Netlist) Hints() map[string][]Hint {
	out := make(map[string][]Hint)
	for _, c := range n.Components {
		if len(c.Hints) > 0 {
			out[c.Name] = c.Hints
		}
	}
	return out
}

func Parse(input string) (*Netlist, error) {
	return ParseReader(strings.NewReader(input))
}

// ParseReader reads a netlist. Blank lines and lines starting with '#' or
// '*' are skipped, except that a '*' comment heading the file becomes the
// title. A line starting with '+' continues the previous one.
func ParseReader(r io.Reader) (*Netlist, error) {
	scanner := bufio.NewScanner(r)
	netlistData := &Netlist{}
	names := make(map[string]bool)

	var (
		currentLine string
		currentNo   int
		lineNo      int
		seenContent bool
	)
	flush := func() error {
		if currentLine == "" {
			return nil
		}
		err := parseLine(netlistData, names, currentNo, currentLine)
		currentLine = ""
		return err
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if len(line) == 0 {
			continue
		}

		if line[0] == '*' || line[0] == '#' {
			if !seenContent && netlistData.Title == "" && line[0] == '*' {
				netlistData.Title = strings.TrimSpace(line[1:])
			}
			continue
		}
		seenContent = true

		if line[0] == '+' {
			if currentLine == "" {
				return nil, &LineError{Line: lineNo, Text: line, Err: malformed("continuation without a line to continue")}
			}
			currentLine += " " + strings.TrimSpace(line[1:])
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		currentLine, currentNo = line, lineNo
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read netlist: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return netlistData, nil
}

func parseLine(netlistData *Netlist, names map[string]bool, no int, line string) error {
	wrap := func(err error) error { return &LineError{Line: no, Text: line, Err: err} }

	def, hintText := splitHints(line)
	fields, err := tokenize(def)
	if err != nil {
		return wrap(err)
	}
	if len(fields) == 0 {
		return wrap(malformed("no definition before ';'"))
	}

	if strings.HasPrefix(fields[0], ".") {
		if err := parseDotOperator(netlistData, fields); err != nil {
			return wrap(err)
		}
		return nil
	}

	comp, err := parseElement(fields)
	if err != nil {
		return wrap(err)
	}
	if names[comp.Name] {
		return wrap(fmt.Errorf("%w: %s", ErrDuplicateComponentName, comp.Name))
	}
	if comp.Hints, err = parseHints(hintText); err != nil {
		return wrap(err)
	}
	if _, err := comp.Device(); err != nil {
		return wrap(err)
	}
	comp.Line, comp.HintText = no, strings.TrimSpace(hintText)
	names[comp.Name] = true
	netlistData.Components = append(netlistData.Components, *comp)
	return nil
}

// splitHints cuts line at the first ';' not escaped with a backslash.
func splitHints(line string) (string, string) {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case ';':
			return unescape(line[:i]), line[i+1:]
		}
	}
	return unescape(line), ""
}

func unescape(s string) string { return strings.ReplaceAll(s, `\;`, ";") }

// tokenize splits on whitespace, keeping {...} groups as single tokens.
func tokenize(s string) ([]string, error) {
	var (
		fields []string
		cur    strings.Builder
		depth  int
	)
	for _, r := range s {
		switch {
		case r == '{':
			depth++
		case r == '}':
			depth--
			if depth < 0 {
				return nil, malformed("unbalanced '}'")
			}
		case depth == 0 && (r == ' ' || r == '\t'):
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteRune(r)
	}
	if depth != 0 {
		return nil, malformed("unbalanced '{'")
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields, nil
}

func parseHints(text string) ([]Hint, error) {
	var hints []Hint
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if key == "" || (found && strings.TrimSpace(value) == "") {
			return nil, malformed("bad hint %q", part)
		}
		hints = append(hints, Hint{Key: key, Value: strings.TrimSpace(value)})
	}
	return hints, nil
}
