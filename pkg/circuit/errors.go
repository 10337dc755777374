package circuit

import (
	"errors"
	"fmt"

	"github.com/edp1096/toy-symspice/pkg/expr"
	"github.com/edp1096/toy-symspice/pkg/matrix"
)

var (
	ErrNoGround         = errors.New("circuit has no ground node")
	ErrSingularCircuit  = errors.New("singular circuit")
	ErrUnsolvable       = errors.New("contribution could not be solved")
	ErrUnknownNode      = errors.New("unknown node")
	ErrUnknownComponent = errors.New("unknown component")
)

// ContributionError reports the failure of one source contribution. Domain
// is a contribution key (dc, ac:<w>, s, n) or a comma-separated list of them
// when the whole source failed to solve.
type ContributionError struct {
	Source string
	Domain string
	Err    error
}

func (e *ContributionError) Error() string {
	return fmt.Sprintf("source %s, domain %s: %v", e.Source, e.Domain, e.Err)
}

func (e *ContributionError) Unwrap() error { return e.Err }

func classify(err error) error {
	if errors.Is(err, ErrSingularCircuit) || errors.Is(err, ErrUnsolvable) {
		return err
	}
	if errors.Is(err, matrix.ErrSingularMatrix) || errors.Is(err, expr.ErrUnbounded) {
		return fmt.Errorf("%w: %w", ErrSingularCircuit, err)
	}
	return fmt.Errorf("%w: %w", ErrUnsolvable, err)
}
