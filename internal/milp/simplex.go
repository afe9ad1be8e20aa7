package milp

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	feasTol           = 1e-7
	pivotTol          = 1e-9
	costTol           = 1e-9
	blandAfter        = 50
	propagationPasses = 25
)

// sparseRow is one constraint of the relaxation in index/value form.
type sparseRow struct {
	idx   []int
	val   []float64
	sense Sense
	rhs   float64
}

// relaxation is the linear relaxation of a Problem: maximize obj·x over the
// constraint rows with every variable boxed in [lo, hi].
type relaxation struct {
	n        int
	obj      []float64
	constant float64
	rows     []sparseRow
}

func newRelaxation(p *Problem) *relaxation {
	r := &relaxation{
		n:        p.NumVars(),
		obj:      make([]float64, p.NumVars()),
		constant: p.objective.constant,
	}
	for v, c := range p.objective.terms {
		if int(v) < r.n {
			r.obj[v] = c
		}
	}
	for _, c := range p.constraints {
		vars := c.Expr.Vars()
		row := sparseRow{
			idx:   make([]int, len(vars)),
			val:   make([]float64, len(vars)),
			sense: c.Sense,
			rhs:   c.RHS,
		}
		for k, v := range vars {
			row.idx[k] = int(v)
			row.val[k] = c.Expr.terms[v]
		}
		r.rows = append(r.rows, row)
	}
	return r
}

// --------------------------------------------------------------------------
// Bound propagation
// --------------------------------------------------------------------------

// propagate tightens binary bounds in place from row activities. It returns
// false when some row cannot be satisfied within the bounds.
func (r *relaxation) propagate(lo, hi []float64) bool {
	for pass := 0; pass < propagationPasses; pass++ {
		changed := false
		for _, row := range r.rows {
			var ok, c bool
			switch row.sense {
			case LessEq:
				ok, c = tighten(row, 1, lo, hi)
			case GreaterEq:
				ok, c = tighten(row, -1, lo, hi)
			default:
				var c2 bool
				ok, c = tighten(row, 1, lo, hi)
				if ok {
					ok, c2 = tighten(row, -1, lo, hi)
					c = c || c2
				}
			}
			if !ok {
				return false
			}
			changed = changed || c
		}
		if !changed {
			break
		}
	}
	return true
}

// tighten applies sign*row <= sign*rhs to the bounds.
func tighten(row sparseRow, sign float64, lo, hi []float64) (feasible, changed bool) {
	rhs := sign * row.rhs
	minAct := 0.0
	for k, j := range row.idx {
		a := sign * row.val[k]
		if a > 0 {
			minAct += a * lo[j]
		} else {
			minAct += a * hi[j]
		}
	}
	if minAct > rhs+feasTol {
		return false, false
	}
	for k, j := range row.idx {
		span := hi[j] - lo[j]
		if span <= 0 {
			continue
		}
		a := sign * row.val[k]
		switch {
		case a > 0 && minAct+a*span > rhs+feasTol:
			hi[j] = lo[j]
			changed = true
		case a < 0 && minAct-a*span > rhs+feasTol:
			lo[j] = hi[j]
			changed = true
		}
	}
	return true, changed
}

// --------------------------------------------------------------------------
// LP solve
// --------------------------------------------------------------------------

type lpResult struct {
	status    Status
	x         []float64
	objective float64
}

// denseRow is a relaxation row restricted to the free columns, with the fixed
// variables folded into b.
type denseRow struct {
	cols  []int
	vals  []float64
	sense Sense
	b     float64
}

// solve maximizes the relaxation over [lo, hi] with a two-phase
// bounded-variable primal simplex.
func (r *relaxation) solve(lo, hi []float64) (lpResult, error) {
	col := make([]int, r.n)
	var free []int
	for j := 0; j < r.n; j++ {
		if hi[j]-lo[j] > feasTol {
			col[j] = len(free)
			free = append(free, j)
		} else {
			col[j] = -1
		}
	}

	var rows []denseRow
	for _, sr := range r.rows {
		dr := denseRow{sense: sr.sense, b: sr.rhs}
		minAct, maxAct := 0.0, 0.0
		for k, j := range sr.idx {
			a := sr.val[k]
			dr.b -= a * lo[j]
			if c := col[j]; c >= 0 {
				dr.cols = append(dr.cols, c)
				dr.vals = append(dr.vals, a)
				span := hi[j] - lo[j]
				if a > 0 {
					maxAct += a * span
				} else {
					minAct += a * span
				}
			}
		}
		switch dr.sense {
		case LessEq:
			if minAct > dr.b+feasTol {
				return lpResult{status: StatusInfeasible}, nil
			}
			if maxAct <= dr.b+feasTol {
				continue
			}
		case GreaterEq:
			if maxAct < dr.b-feasTol {
				return lpResult{status: StatusInfeasible}, nil
			}
			if minAct >= dr.b-feasTol {
				continue
			}
		default:
			if dr.b < minAct-feasTol || dr.b > maxAct+feasTol {
				return lpResult{status: StatusInfeasible}, nil
			}
			if len(dr.cols) == 0 {
				continue
			}
		}
		if dr.b < 0 {
			floats.Scale(-1, dr.vals)
			dr.b = -dr.b
			switch dr.sense {
			case LessEq:
				dr.sense = GreaterEq
			case GreaterEq:
				dr.sense = LessEq
			}
		}
		rows = append(rows, dr)
	}

	x := make([]float64, r.n)
	copy(x, lo)

	if len(free) == 0 {
		return lpResult{status: StatusOptimal, x: x, objective: r.value(x)}, nil
	}
	if len(rows) == 0 {
		for _, j := range free {
			if r.obj[j] > 0 {
				x[j] = hi[j]
			}
		}
		return lpResult{status: StatusOptimal, x: x, objective: r.value(x)}, nil
	}

	nSlack, nArt := 0, 0
	for _, dr := range rows {
		switch dr.sense {
		case LessEq:
			nSlack++
		case GreaterEq:
			nSlack++
			nArt++
		default:
			nArt++
		}
	}
	nf := len(free)
	m, n := len(rows), nf+nSlack+nArt

	t := &tableau{
		T:       mat.NewDense(m, n, nil),
		rhs:     make([]float64, m),
		upper:   make([]float64, n),
		basis:   make([]int, m),
		flipped: make([]bool, n),
		barred:  make([]bool, n),
	}
	for k, j := range free {
		t.upper[k] = hi[j] - lo[j]
	}
	for k := nf; k < n; k++ {
		t.upper[k] = math.Inf(1)
	}

	slack, art := nf, nf+nSlack
	isArt := make([]bool, n)
	for i, dr := range rows {
		for k, c := range dr.cols {
			t.T.Set(i, c, t.T.At(i, c)+dr.vals[k])
		}
		t.rhs[i] = dr.b
		switch dr.sense {
		case LessEq:
			t.T.Set(i, slack, 1)
			t.basis[i] = slack
			slack++
		case GreaterEq:
			t.T.Set(i, slack, -1)
			slack++
			t.T.Set(i, art, 1)
			t.basis[i] = art
			isArt[art] = true
			art++
		default:
			t.T.Set(i, art, 1)
			t.basis[i] = art
			isArt[art] = true
			art++
		}
	}

	cost := make([]float64, n)
	if nArt > 0 {
		for k := range cost {
			if isArt[k] {
				cost[k] = -1
			}
		}
		if _, err := t.run(cost); err != nil {
			return lpResult{}, err
		}
		infeasibility := 0.0
		for i, b := range t.basis {
			if isArt[b] {
				infeasibility += t.rhs[i]
			}
		}
		if infeasibility > feasTol {
			return lpResult{status: StatusInfeasible}, nil
		}
		for k := range isArt {
			if isArt[k] {
				t.upper[k] = 0
				t.barred[k] = true
			}
		}
	}

	for k := range cost {
		cost[k] = 0
	}
	for k, j := range free {
		cost[k] = r.obj[j]
		if t.flipped[k] {
			cost[k] = -cost[k]
		}
	}
	status, err := t.run(cost)
	if err != nil {
		return lpResult{}, err
	}
	if status != StatusOptimal {
		return lpResult{status: status}, nil
	}

	values := make([]float64, n)
	for i, b := range t.basis {
		values[b] = t.rhs[i]
	}
	for k, j := range free {
		y := values[k]
		if t.flipped[k] {
			y = t.upper[k] - y
		}
		x[j] = math.Min(hi[j], math.Max(lo[j], lo[j]+y))
	}
	return lpResult{status: StatusOptimal, x: x, objective: r.value(x)}, nil
}

func (r *relaxation) value(x []float64) float64 {
	return r.constant + floats.Dot(r.obj, x)
}

// --------------------------------------------------------------------------
// Tableau
// --------------------------------------------------------------------------

// tableau is a dense simplex tableau over nonnegative variables with upper
// bounds. A nonbasic variable always sits at zero; a variable at its upper
// bound is complemented (flipped) so that it does.
type tableau struct {
	T       *mat.Dense
	rhs     []float64
	upper   []float64
	basis   []int
	flipped []bool
	barred  []bool
}

// run maximizes cost·t from the current basis.
func (t *tableau) run(cost []float64) (Status, error) {
	m, n := t.T.Dims()
	d := make([]float64, n)
	copy(d, cost)
	isBasic := make([]bool, n)
	for i, b := range t.basis {
		if cb := cost[b]; cb != 0 {
			floats.AddScaled(d, -cb, t.T.RawRowView(i))
		}
		isBasic[b] = true
	}
	for _, b := range t.basis {
		d[b] = 0
	}

	maxIter := 50*(m+n) + 1000
	degenerate := 0
	for iter := 0; iter < maxIter; iter++ {
		enter := t.entering(d, isBasic, degenerate > blandAfter)
		if enter < 0 {
			return StatusOptimal, nil
		}
		leave, toUpper, theta := t.ratio(enter)
		if math.IsInf(theta, 1) {
			return StatusUnbounded, nil
		}
		if leave < 0 {
			t.flip(enter, d)
		} else {
			if toUpper {
				t.complement(leave)
			}
			isBasic[t.basis[leave]] = false
			t.pivot(leave, enter, d)
			isBasic[enter] = true
		}
		if theta < pivotTol {
			degenerate++
		} else {
			degenerate = 0
		}
	}
	return StatusUnknown, ErrIterationLimit
}

// entering picks the column with the largest positive reduced cost, or the
// lowest-indexed improving column once cycling is suspected.
func (t *tableau) entering(d []float64, isBasic []bool, bland bool) int {
	best, bestVal := -1, costTol
	for j, dj := range d {
		if isBasic[j] || t.barred[j] || dj <= costTol {
			continue
		}
		if bland {
			return j
		}
		if dj > bestVal {
			best, bestVal = j, dj
		}
	}
	return best
}

// ratio runs the bounded ratio test for entering column j. leave is -1 when
// the entering variable reaches its own upper bound first.
func (t *tableau) ratio(j int) (leave int, toUpper bool, theta float64) {
	m, _ := t.T.Dims()
	theta, leave = t.upper[j], -1
	for i := 0; i < m; i++ {
		a := t.T.At(i, j)
		var ti float64
		up := false
		switch {
		case a > pivotTol:
			ti = t.rhs[i] / a
		case a < -pivotTol:
			u := t.upper[t.basis[i]]
			if math.IsInf(u, 1) {
				continue
			}
			ti = (u - t.rhs[i]) / -a
			up = true
		default:
			continue
		}
		if ti < 0 {
			ti = 0
		}
		switch {
		case ti < theta-pivotTol:
			theta, leave, toUpper = ti, i, up
		case leave >= 0 && ti <= theta+pivotTol && t.basis[i] < t.basis[leave]:
			theta, leave, toUpper = math.Min(theta, ti), i, up
		}
	}
	return leave, toUpper, theta
}

// flip moves nonbasic column j from zero to its upper bound by complementing it.
func (t *tableau) flip(j int, d []float64) {
	m, _ := t.T.Dims()
	u := t.upper[j]
	for i := 0; i < m; i++ {
		if a := t.T.At(i, j); a != 0 {
			t.rhs[i] -= a * u
			t.T.Set(i, j, -a)
		}
	}
	d[j] = -d[j]
	t.flipped[j] = !t.flipped[j]
}

// complement replaces the basic variable of row r by its distance to the
// upper bound, so that it can leave the basis at zero.
func (t *tableau) complement(r int) {
	k := t.basis[r]
	row := t.T.RawRowView(r)
	floats.Scale(-1, row)
	row[k] = 1
	t.rhs[r] = t.upper[k] - t.rhs[r]
	t.flipped[k] = !t.flipped[k]
}

func (t *tableau) pivot(r, j int, d []float64) {
	m, _ := t.T.Dims()
	row := t.T.RawRowView(r)
	p := row[j]
	floats.Scale(1/p, row)
	row[j] = 1
	t.rhs[r] /= p
	if t.rhs[r] < 0 && t.rhs[r] > -feasTol {
		t.rhs[r] = 0
	}
	for i := 0; i < m; i++ {
		if i == r {
			continue
		}
		ri := t.T.RawRowView(i)
		f := ri[j]
		if f == 0 {
			continue
		}
		floats.AddScaled(ri, -f, row)
		ri[j] = 0
		t.rhs[i] -= f * t.rhs[r]
		if t.rhs[i] < 0 && t.rhs[i] > -feasTol {
			t.rhs[i] = 0
		}
	}
	if dj := d[j]; dj != 0 {
		floats.AddScaled(d, -dj, row)
	}
	d[j] = 0
	t.basis[r] = j
}
