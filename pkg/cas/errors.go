package cas

import (
	"errors"
	"fmt"
)

var (
	ErrDivisionByZero       = errors.New("cas: division by zero")
	ErrSingular             = errors.New("cas: singular linear system")
	ErrUnbounded            = errors.New("cas: unbounded result")
	ErrUnsupportedTransform = errors.New("cas: unsupported transform")
	ErrSyntax               = errors.New("cas: syntax error")
	ErrUnboundSymbol        = errors.New("cas: unbound symbol")
	ErrNotPolynomial        = errors.New("cas: expression is not polynomial")
)

// SyntaxError reports the position of a parse failure inside an expression.
type SyntaxError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("cas: %s at offset %d in %q", e.Msg, e.Pos, e.Input)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }
