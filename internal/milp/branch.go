package milp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"
)

const (
	integralityTol = 1e-6
	pruneTol       = 1e-9

	// DefaultMaxNodes bounds the search when BranchAndBound.MaxNodes is zero.
	DefaultMaxNodes = 200000
)

// BranchAndBound is a depth-first branch-and-bound Solver. It branches on the
// most fractional variable (lowest index on ties), explores the 1-branch
// first and prunes nodes whose relaxation cannot beat the incumbent.
//
// The search is deterministic: the same Problem always yields the same
// assignment. Context cancellation or deadline ends the search with
// StatusTimeout.
type BranchAndBound struct {
	MaxNodes int
	Logger   *slog.Logger
}

// NewBranchAndBound creates a solver with the given node limit.
func NewBranchAndBound(maxNodes int, logger *slog.Logger) *BranchAndBound {
	return &BranchAndBound{MaxNodes: maxNodes, Logger: logger}
}

type node struct {
	lo, hi []float64
	depth  int
}

func (n node) child() node {
	c := node{
		lo:    make([]float64, len(n.lo)),
		hi:    make([]float64, len(n.hi)),
		depth: n.depth + 1,
	}
	copy(c.lo, n.lo)
	copy(c.hi, n.hi)
	return c
}

// Solve implements Solver.
func (s *BranchAndBound) Solve(ctx context.Context, p *Problem) (*Solution, error) {
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("problem %q: %w", p.Name(), err)
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	maxNodes := s.MaxNodes
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}

	start := time.Now()
	relax := newRelaxation(p)
	n := p.NumVars()

	root := node{lo: make([]float64, n), hi: make([]float64, n)}
	for j := range root.hi {
		root.hi[j] = 1
	}

	stack := []node{root}
	var incumbent []float64
	best := math.Inf(-1)
	nodes := 0
	status := StatusUnknown

	for len(stack) > 0 {
		if ctx.Err() != nil {
			status = StatusTimeout
			break
		}
		if nodes >= maxNodes {
			status = StatusNodeLimit
			break
		}
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++

		if !relax.propagate(nd.lo, nd.hi) {
			continue
		}
		res, err := relax.solve(nd.lo, nd.hi)
		if err != nil {
			return nil, fmt.Errorf("node %d (depth %d): %w", nodes, nd.depth, err)
		}
		switch res.status {
		case StatusInfeasible:
			continue
		case StatusOptimal:
		default:
			return nil, fmt.Errorf("node %d: relaxation returned %s", nodes, res.status)
		}
		if incumbent != nil && res.objective <= best+pruneTol {
			continue
		}

		j := mostFractional(res.x)
		if j < 0 {
			x := make([]float64, n)
			for k, v := range res.x {
				x[k] = math.Round(v)
			}
			obj := relax.value(x)
			if incumbent == nil || obj > best+pruneTol {
				incumbent, best = x, obj
				logger.Debug("New incumbent", "problem", p.Name(), "objective", obj, "node", nodes, "depth", nd.depth)
			}
			continue
		}

		down := nd.child()
		down.hi[j] = 0
		up := nd.child()
		up.lo[j] = 1
		stack = append(stack, down, up)
	}

	if status == StatusUnknown {
		if incumbent != nil {
			status = StatusOptimal
		} else {
			status = StatusInfeasible
		}
	}

	sol := &Solution{
		Status:   status,
		Values:   incumbent,
		Nodes:    nodes,
		Duration: time.Since(start),
	}
	if incumbent != nil {
		sol.Objective = best
	}
	logger.Debug("Branch and bound finished", "problem", p.Name(), "summary", sol.Summary())
	return sol, nil
}

// mostFractional returns the variable farthest from integrality, or -1 when
// every value is integral.
func mostFractional(x []float64) int {
	best, bestDist := -1, integralityTol
	for j, v := range x {
		f := v - math.Floor(v)
		dist := math.Min(f, 1-f)
		if dist > bestDist+1e-12 {
			best, bestDist = j, dist
		}
	}
	return best
}
