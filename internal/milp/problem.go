// Package milp models 0/1 integer linear programs and solves them.
//
// A Problem holds binary variables, named linear constraints and a single
// objective to maximize. The default Solver is a depth-first branch-and-bound
// search over a bounded-variable simplex relaxation.
package milp

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrObjectiveSet is recorded when an objective is declared twice.
	ErrObjectiveSet = errors.New("objective already set")
	// ErrDuplicateConstraint is recorded when two constraints share a name.
	ErrDuplicateConstraint = errors.New("duplicate constraint name")
	// ErrIterationLimit is returned when the simplex fails to converge.
	ErrIterationLimit = errors.New("simplex iteration limit reached")
)

// Sense is the relation of a constraint's expression to its right-hand side.
type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	case Equal:
		return "="
	default:
		return fmt.Sprintf("Sense(%d)", int(s))
	}
}

// Constraint is a named linear relation Expr (sense) RHS. The expression of a
// registered constraint never carries a constant; it is folded into RHS.
type Constraint struct {
	Name  string
	Expr  Expr
	Sense Sense
	RHS   float64
}

// Satisfied reports whether values satisfy the constraint within tol.
func (c Constraint) Satisfied(values []float64, tol float64) bool {
	lhs := c.Expr.Eval(values)
	switch c.Sense {
	case LessEq:
		return lhs <= c.RHS+tol
	case GreaterEq:
		return lhs >= c.RHS-tol
	default:
		return math.Abs(lhs-c.RHS) <= tol
	}
}

// Problem is a 0/1 integer linear program to be maximized.
//
// Problem is not safe for concurrent mutation; every optimization run builds
// its own instance.
type Problem struct {
	name        string
	vars        []string
	constraints []Constraint
	byName      map[string]int
	objective   Expr
	hasObj      bool
	err         error
}

// NewProblem creates an empty problem.
func NewProblem(name string) *Problem {
	return &Problem{name: name, byName: make(map[string]int)}
}

// Name returns the problem name.
func (p *Problem) Name() string { return p.name }

// NewBinary registers a binary variable and returns its handle.
func (p *Problem) NewBinary(name string) Var {
	p.vars = append(p.vars, name)
	return Var(len(p.vars) - 1)
}

// NumVars returns the number of registered variables.
func (p *Problem) NumVars() int { return len(p.vars) }

// VarName returns the name a variable was registered with.
func (p *Problem) VarName(v Var) string {
	if int(v) < 0 || int(v) >= len(p.vars) {
		return fmt.Sprintf("var%d", int(v))
	}
	return p.vars[v]
}

// AddConstraint registers expr (sense) rhs under a unique name. Any constant
// in expr is moved to the right-hand side. A duplicate name is recorded as the
// problem's error and reported by Err and Solve.
func (p *Problem) AddConstraint(name string, expr Expr, sense Sense, rhs float64) {
	if _, exists := p.byName[name]; exists {
		p.setErr(fmt.Errorf("%w: %s", ErrDuplicateConstraint, name))
		return
	}
	e := expr.Clone()
	rhs -= e.constant
	e.constant = 0
	p.byName[name] = len(p.constraints)
	p.constraints = append(p.constraints, Constraint{Name: name, Expr: e, Sense: sense, RHS: rhs})
}

// Constraints returns the registered constraints in insertion order.
func (p *Problem) Constraints() []Constraint { return p.constraints }

// Constraint looks up a constraint by name.
func (p *Problem) Constraint(name string) (Constraint, bool) {
	i, ok := p.byName[name]
	if !ok {
		return Constraint{}, false
	}
	return p.constraints[i], true
}

// SetObjective declares the expression to maximize. It may be called once.
func (p *Problem) SetObjective(e Expr) {
	if p.hasObj {
		p.setErr(ErrObjectiveSet)
		return
	}
	p.objective = e.Clone()
	p.hasObj = true
}

// Objective returns the declared objective.
func (p *Problem) Objective() Expr { return p.objective }

// Err returns the first modelling error recorded while building the problem.
func (p *Problem) Err() error { return p.err }

// Violations returns the names of constraints not satisfied by values.
func (p *Problem) Violations(values []float64, tol float64) []string {
	var out []string
	for _, c := range p.constraints {
		if !c.Satisfied(values, tol) {
			out = append(out, c.Name)
		}
	}
	return out
}

func (p *Problem) setErr(err error) {
	if p.err == nil {
		p.err = err
	}
}
