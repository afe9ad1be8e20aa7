package milp

import (
	"context"
	"math"
	"math/rand"
	"testing"
)

func knapsack(values, weights []float64, capacity float64) (*Problem, []Var) {
	p := NewProblem("knapsack")
	vars := make([]Var, len(values))
	var obj, w Expr
	for i := range values {
		vars[i] = p.NewBinary("x")
		obj.Add(vars[i], values[i])
		w.Add(vars[i], weights[i])
	}
	p.AddConstraint("capacity", w, LessEq, capacity)
	p.SetObjective(obj)
	return p, vars
}

func TestBranchAndBoundKnapsack(t *testing.T) {
	p, vars := knapsack([]float64{10, 13, 7, 8}, []float64{3, 4, 2, 3}, 7)
	sol, err := NewBranchAndBound(0, nil).Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("Status = %s, want optimal", sol.Status)
	}
	if math.Abs(sol.Objective-23) > 1e-9 {
		t.Errorf("Objective = %v, want 23", sol.Objective)
	}
	want := []bool{true, true, false, false}
	for i, v := range vars {
		if sol.IsSet(v) != want[i] {
			t.Errorf("x%d = %v, want %v", i, sol.Value(v), want[i])
		}
	}
}

func TestRelaxationIsFractional(t *testing.T) {
	p, _ := knapsack([]float64{10, 13, 7, 8}, []float64{3, 4, 2, 3}, 7)
	r := newRelaxation(p)
	lo, hi := make([]float64, 4), []float64{1, 1, 1, 1}
	res, err := r.solve(lo, hi)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.status != StatusOptimal || math.Abs(res.objective-23.5) > 1e-9 {
		t.Errorf("relaxation = %s %v, want optimal 23.5", res.status, res.objective)
	}
}

func TestBranchAndBoundMultipleRows(t *testing.T) {
	p := NewProblem("rows")
	x := []Var{p.NewBinary("a"), p.NewBinary("b"), p.NewBinary("c")}
	add := func(name string, coefs []float64, rhs float64) {
		var e Expr
		for i, c := range coefs {
			e.Add(x[i], c)
		}
		p.AddConstraint(name, e, LessEq, rhs)
	}
	add("r1", []float64{2, 3, 1}, 5)
	add("r2", []float64{4, 1, 2}, 11)
	add("r3", []float64{3, 4, 2}, 8)
	var obj Expr
	obj.Add(x[0], 5)
	obj.Add(x[1], 4)
	obj.Add(x[2], 3)
	p.SetObjective(obj)

	sol, err := NewBranchAndBound(0, nil).Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != StatusOptimal || math.Abs(sol.Objective-9) > 1e-9 {
		t.Fatalf("got %s %v, want optimal 9", sol.Status, sol.Objective)
	}
	if !sol.IsSet(x[0]) || !sol.IsSet(x[1]) || sol.IsSet(x[2]) {
		t.Errorf("values = %v, want [1 1 0]", sol.Values)
	}
}

func TestBranchAndBoundEqualityAndCover(t *testing.T) {
	p := NewProblem("eq")
	a, b, c := p.NewBinary("a"), p.NewBinary("b"), p.NewBinary("c")
	p.AddConstraint("pick_two", Sum(a, b, c), Equal, 2)
	var obj Expr
	obj.Add(a, 3)
	obj.Add(b, 1)
	obj.Add(c, 2)
	p.SetObjective(obj)

	sol, err := NewBranchAndBound(0, nil).Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Objective != 5 || !sol.IsSet(a) || sol.IsSet(b) || !sol.IsSet(c) {
		t.Errorf("got objective %v values %v, want 5 with a and c", sol.Objective, sol.Values)
	}

	q := NewProblem("cover")
	y := []Var{q.NewBinary("y0"), q.NewBinary("y1"), q.NewBinary("y2")}
	q.AddConstraint("cover", Sum(y...), GreaterEq, 2)
	var cost Expr
	for i, v := range y {
		cost.Add(v, -float64(i+1))
	}
	q.SetObjective(cost)
	sol, err = NewBranchAndBound(0, nil).Solve(context.Background(), q)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != StatusOptimal || sol.Objective != -3 {
		t.Errorf("cover = %s %v, want optimal -3", sol.Status, sol.Objective)
	}
}

func TestBranchAndBoundInfeasible(t *testing.T) {
	p := NewProblem("infeasible")
	a, b := p.NewBinary("a"), p.NewBinary("b")
	p.AddConstraint("too_many", Sum(a, b), GreaterEq, 3)
	p.SetObjective(Sum(a, b))

	sol, err := NewBranchAndBound(0, nil).Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != StatusInfeasible {
		t.Errorf("Status = %s, want infeasible", sol.Status)
	}
	if sol.Values != nil {
		t.Errorf("Values = %v, want nil", sol.Values)
	}
}

func TestBranchAndBoundLimits(t *testing.T) {
	p, _ := knapsack([]float64{10, 13, 7, 8}, []float64{3, 4, 2, 3}, 7)
	sol, err := NewBranchAndBound(1, nil).Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != StatusNodeLimit {
		t.Errorf("Status = %s, want node_limit", sol.Status)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sol, err = NewBranchAndBound(0, nil).Solve(ctx, p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != StatusTimeout {
		t.Errorf("Status = %s, want timeout", sol.Status)
	}
}

// bruteForce enumerates every assignment of a small problem.
func bruteForce(p *Problem) (float64, bool) {
	n := p.NumVars()
	best, found := math.Inf(-1), false
	x := make([]float64, n)
	for mask := 0; mask < 1<<n; mask++ {
		for j := 0; j < n; j++ {
			x[j] = float64((mask >> j) & 1)
		}
		if len(p.Violations(x, 1e-9)) > 0 {
			continue
		}
		if v := p.Objective().Eval(x); v > best {
			best, found = v, true
		}
	}
	return best, found
}

func TestBranchAndBoundMatchesEnumeration(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 40; trial++ {
		p := NewProblem("random")
		n := 7
		vars := make([]Var, n)
		for j := range vars {
			vars[j] = p.NewBinary("x")
		}
		for r := 0; r < 3; r++ {
			var e Expr
			total := 0.0
			for _, v := range vars {
				w := float64(rng.Intn(9) + 1)
				e.Add(v, w)
				total += w
			}
			p.AddConstraint("cap"+string(rune('a'+r)), e, LessEq, math.Floor(total*(0.3+0.4*rng.Float64())))
		}
		if trial%3 == 0 {
			p.AddConstraint("min_count", Sum(vars...), GreaterEq, float64(2+rng.Intn(3)))
		}
		if trial%4 == 0 {
			p.AddConstraint("pair", Sum(vars[0], vars[1]), Equal, 1)
		}
		var obj Expr
		for _, v := range vars {
			obj.Add(v, float64(rng.Intn(16)-5))
		}
		p.SetObjective(obj)

		want, feasible := bruteForce(p)
		sol, err := NewBranchAndBound(0, nil).Solve(context.Background(), p)
		if err != nil {
			t.Fatalf("trial %d: Solve: %v", trial, err)
		}
		if !feasible {
			if sol.Status != StatusInfeasible {
				t.Errorf("trial %d: Status = %s, want infeasible", trial, sol.Status)
			}
			continue
		}
		if sol.Status != StatusOptimal {
			t.Fatalf("trial %d: Status = %s, want optimal", trial, sol.Status)
		}
		if math.Abs(sol.Objective-want) > 1e-6 {
			t.Errorf("trial %d: Objective = %v, want %v", trial, sol.Objective, want)
		}
		if v := p.Violations(sol.Values, 1e-6); len(v) > 0 {
			t.Errorf("trial %d: solution violates %v", trial, v)
		}
	}
}
