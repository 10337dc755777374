package expr

import (
	"errors"
	"fmt"

	"github.com/edp1096/toy-symspice/pkg/cas"
)

var (
	ErrDomainMismatch             = errors.New("domain mismatch")
	ErrUnsupportedDomainTransform = errors.New("unsupported domain transform")
	ErrUnsupportedOperation       = errors.New("unsupported operation")
	// ErrUnbounded covers both limits at a pole and ideal-source duals.
	ErrUnbounded = cas.ErrUnbounded
)

// DomainError reports an operation on values of incompatible domains.
type DomainError struct {
	Op          string
	Left, Right Domain
	Err         error
}

func (e *DomainError) Error() string {
	if e.Right == e.Left {
		return fmt.Sprintf("%s on %s: %v", e.Op, e.Left, e.Err)
	}
	return fmt.Sprintf("%s %s with %s: %v", e.Op, e.Left, e.Right, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }
