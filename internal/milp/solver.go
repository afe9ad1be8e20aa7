package milp

import (
	"context"
	"fmt"
	"time"
)

// Status is the outcome of a solve.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
	StatusNodeLimit
	StatusTimeout
)

var statusNames = map[Status]string{
	StatusUnknown:    "unknown",
	StatusOptimal:    "optimal",
	StatusInfeasible: "infeasible",
	StatusUnbounded:  "unbounded",
	StatusNodeLimit:  "node_limit",
	StatusTimeout:    "timeout",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(b []byte) error {
	for k, v := range statusNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown solver status %q", string(b))
}

// Solution is a solver's answer to a Problem.
//
// Values is indexed by Var. For StatusNodeLimit and StatusTimeout it holds
// the best integer assignment found so far, if any.
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64
	Nodes     int
	Duration  time.Duration
}

// Value returns the solved value of v, or zero when v is out of range.
func (s *Solution) Value(v Var) float64 {
	if int(v) < 0 || int(v) >= len(s.Values) {
		return 0
	}
	return s.Values[v]
}

// IsSet reports whether binary variable v is 1 in the solution.
func (s *Solution) IsSet(v Var) bool {
	return s.Value(v) > 0.5
}

// Summary returns a human-readable summary.
func (s *Solution) Summary() string {
	return fmt.Sprintf("status=%s objective=%.4f nodes=%d dur=%s",
		s.Status, s.Objective, s.Nodes, s.Duration.Round(time.Millisecond))
}

// Solver solves 0/1 integer linear programs. A non-nil error means the solver
// itself failed; infeasibility and limits are reported through Status.
type Solver interface {
	Solve(ctx context.Context, p *Problem) (*Solution, error)
}
