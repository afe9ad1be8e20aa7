package milp

import (
	"errors"
	"testing"
)

func TestExprZeroElement(t *testing.T) {
	var e Expr
	if got := e.Coef(Var(3)); got != 0 {
		t.Fatalf("Coef on empty expr = %v, want 0", got)
	}
	e.Add(Var(1), 2)
	e.Add(Var(1), -2)
	if e.Len() != 0 {
		t.Errorf("Len after cancel = %d, want 0", e.Len())
	}
	e.Add(Var(4), 0)
	if e.Len() != 0 {
		t.Errorf("zero coefficient should not create a term")
	}
}

func TestExprEvalAndVars(t *testing.T) {
	e := Sum(Var(2), Var(0))
	e.Add(Var(1), 3.5)
	e.AddConstant(-1)

	vars := e.Vars()
	want := []Var{0, 1, 2}
	if len(vars) != len(want) {
		t.Fatalf("Vars() = %v, want %v", vars, want)
	}
	for i := range want {
		if vars[i] != want[i] {
			t.Fatalf("Vars() = %v, want %v", vars, want)
		}
	}

	if got := e.Eval([]float64{1, 1, 0}); got != 3.5 {
		t.Errorf("Eval = %v, want 3.5", got)
	}
}

func TestExprAddExprAndClone(t *testing.T) {
	a := Term(Var(0), 1)
	b := Term(Var(0), 2)
	b.Add(Var(1), 1)
	b.AddConstant(4)

	c := a.Clone()
	c.AddExpr(b, -0.5)
	if got := c.Coef(Var(0)); got != 0 {
		t.Errorf("Coef(0) = %v, want 0", got)
	}
	if got := c.Coef(Var(1)); got != -0.5 {
		t.Errorf("Coef(1) = %v, want -0.5", got)
	}
	if got := c.Constant(); got != -2 {
		t.Errorf("Constant = %v, want -2", got)
	}
	if got := a.Coef(Var(0)); got != 1 {
		t.Errorf("original mutated: Coef(0) = %v, want 1", got)
	}
}

func TestProblemConstraintFoldsConstant(t *testing.T) {
	p := NewProblem("fold")
	x := p.NewBinary("x")
	e := Term(x, 1)
	e.AddConstant(2)
	p.AddConstraint("cap", e, LessEq, 5)

	c, ok := p.Constraint("cap")
	if !ok {
		t.Fatal("constraint cap not registered")
	}
	if c.RHS != 3 || c.Expr.Constant() != 0 {
		t.Errorf("RHS = %v constant = %v, want 3 and 0", c.RHS, c.Expr.Constant())
	}
	if v := p.Violations([]float64{1}, 1e-9); len(v) != 0 {
		t.Errorf("Violations = %v, want none", v)
	}
}

func TestProblemStickyErrors(t *testing.T) {
	p := NewProblem("dup")
	x := p.NewBinary("x")
	p.AddConstraint("c", Term(x, 1), LessEq, 1)
	p.AddConstraint("c", Term(x, 1), GreaterEq, 0)
	p.SetObjective(Term(x, 1))
	p.SetObjective(Term(x, 2))

	if !errors.Is(p.Err(), ErrDuplicateConstraint) {
		t.Fatalf("Err = %v, want ErrDuplicateConstraint", p.Err())
	}
	if _, err := NewBranchAndBound(0, nil).Solve(t.Context(), p); !errors.Is(err, ErrDuplicateConstraint) {
		t.Errorf("Solve err = %v, want ErrDuplicateConstraint", err)
	}
}
