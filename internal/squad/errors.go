package squad

import (
	"errors"
	"fmt"
	"strings"

	"github.com/albapepper/fpl-optimizer/internal/milp"
)

var (
	ErrInvalidDataset = errors.New("invalid player dataset")
	ErrInvalidRoster  = errors.New("invalid roster")
	ErrInvalidParams  = errors.New("invalid optimizer parameters")
	ErrMissingPlayer  = errors.New("player missing from dataset")
	ErrInfeasible     = errors.New("no legal squad satisfies the constraints")
	ErrSolverFailed   = errors.New("solver did not reach an optimal solution")
	ErrDegenerate     = errors.New("degenerate solution")
)

// OptimizationError is returned when a solve does not produce a usable
// result. It carries the solver status and, for degenerate solutions, the
// violated invariants and the extracted result for diagnosis.
type OptimizationError struct {
	Status     milp.Status
	Violations []string
	Result     *Result
	err        error
}

func (e *OptimizationError) Error() string {
	msg := fmt.Sprintf("%v (solver status %s)", e.err, e.Status)
	if len(e.Violations) > 0 {
		msg += ": " + strings.Join(e.Violations, "; ")
	}
	return msg
}

func (e *OptimizationError) Unwrap() error { return e.err }
