package squad

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/albapepper/fpl-optimizer/internal/milp"
)

// Optimizer builds, solves and extracts one squad model per call. It holds no
// per-run state and is safe for concurrent use when its Solver is.
type Optimizer struct {
	solver       milp.Solver
	params       Params
	solveTimeout time.Duration
	logger       *slog.Logger
}

// NewOptimizer creates an Optimizer. A zero solveTimeout leaves the solve
// bounded only by the caller's context.
func NewOptimizer(solver milp.Solver, params Params, solveTimeout time.Duration, logger *slog.Logger) *Optimizer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Optimizer{
		solver:       solver,
		params:       params,
		solveTimeout: solveTimeout,
		logger:       logger,
	}
}

// Params returns the default parameters of the optimizer.
func (o *Optimizer) Params() Params { return o.params }

// Optimize solves for the best legal squad with the default parameters.
func (o *Optimizer) Optimize(ctx context.Context, data *Dataset, roster Roster) (*Result, error) {
	return o.OptimizeWith(ctx, data, roster, o.params)
}

// OptimizeWith solves for the best legal squad with explicit parameters.
//
// A non-optimal solver status returns an *OptimizationError wrapping
// ErrInfeasible or ErrSolverFailed. An optimal assignment that breaks a squad
// invariant returns an *OptimizationError wrapping ErrDegenerate. No result is
// returned alongside an error.
func (o *Optimizer) OptimizeWith(ctx context.Context, data *Dataset, roster Roster, params Params) (*Result, error) {
	start := time.Now()
	model, err := NewModel(data, roster, params)
	if err != nil {
		return nil, err
	}
	if err := model.Encode(); err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	p := model.Problem()
	o.logger.Info("Optimizing squad",
		"players", data.Len(),
		"roster", len(roster.Picks),
		"variables", p.NumVars(),
		"constraints", len(p.Constraints()),
		"opposing_pairs", len(model.Pairs()),
		"initial", model.Initial())

	if o.solveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.solveTimeout)
		defer cancel()
	}
	sol, err := o.solver.Solve(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	switch sol.Status {
	case milp.StatusOptimal:
	case milp.StatusInfeasible:
		o.logger.Warn("Squad model infeasible", "nodes", sol.Nodes, "duration", sol.Duration)
		return nil, &OptimizationError{Status: sol.Status, err: ErrInfeasible}
	default:
		o.logger.Warn("Solver stopped early", "status", sol.Status, "nodes", sol.Nodes, "duration", sol.Duration)
		return nil, &OptimizationError{Status: sol.Status, err: ErrSolverFailed}
	}

	res := Extract(model, sol)
	if len(res.Violations) > 0 {
		o.logger.Error("Degenerate solution from optimal solve",
			"violations", res.Violations,
			"objective", sol.Objective)
		return nil, &OptimizationError{
			Status:     sol.Status,
			Violations: res.Violations,
			Result:     res,
			err:        ErrDegenerate,
		}
	}

	o.logger.Info("Squad optimized",
		"summary", res.Summary(),
		"nodes", sol.Nodes,
		"duration", time.Since(start).Round(time.Millisecond))
	return res, nil
}
