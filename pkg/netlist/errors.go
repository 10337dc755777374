package netlist

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedNetlistLine   = errors.New("malformed netlist line")
	ErrDuplicateComponentName = errors.New("duplicate component name")
	ErrUnknownComponentKind   = errors.New("unknown component kind")
)

// LineError ties a parse failure to the logical line it came from. Line is
// the 1-based number of the line's first physical line.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedNetlistLine, fmt.Sprintf(format, args...))
}
