package milp

import (
	"math"
	"sort"
)

// coefEpsilon is the magnitude below which a coefficient is treated as zero
// and dropped from an expression.
const coefEpsilon = 1e-12

// Var identifies a binary decision variable registered with a Problem.
type Var int

// Expr is a sparse linear expression over binary variables plus a constant.
//
// The zero value is the empty expression. A variable that was never added has
// coefficient zero, so callers can read any coefficient without checking for
// presence first. Copies of an Expr share storage; use Clone before mutating
// a shared expression.
type Expr struct {
	terms    map[Var]float64
	constant float64
}

// Term returns the expression coef*v.
func Term(v Var, coef float64) Expr {
	var e Expr
	e.Add(v, coef)
	return e
}

// Sum returns the expression v1 + v2 + ... with unit coefficients.
func Sum(vars ...Var) Expr {
	var e Expr
	for _, v := range vars {
		e.Add(v, 1)
	}
	return e
}

// Add adds coef*v to the expression. Terms that cancel out are removed.
func (e *Expr) Add(v Var, coef float64) {
	if coef == 0 {
		return
	}
	if e.terms == nil {
		e.terms = make(map[Var]float64)
	}
	c := e.terms[v] + coef
	if math.Abs(c) < coefEpsilon {
		delete(e.terms, v)
		return
	}
	e.terms[v] = c
}

// AddExpr adds scale*o to the expression.
func (e *Expr) AddExpr(o Expr, scale float64) {
	for v, c := range o.terms {
		e.Add(v, c*scale)
	}
	e.constant += o.constant * scale
}

// AddConstant adds c to the constant part of the expression.
func (e *Expr) AddConstant(c float64) {
	e.constant += c
}

// Coef returns the coefficient of v, which is zero when v is absent.
func (e Expr) Coef(v Var) float64 {
	return e.terms[v]
}

// Constant returns the constant part of the expression.
func (e Expr) Constant() float64 {
	return e.constant
}

// Len returns the number of variables with a non-zero coefficient.
func (e Expr) Len() int {
	return len(e.terms)
}

// Vars returns the variables with non-zero coefficients in ascending order.
func (e Expr) Vars() []Var {
	vars := make([]Var, 0, len(e.terms))
	for v := range e.terms {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })
	return vars
}

// Eval evaluates the expression for an assignment indexed by Var.
func (e Expr) Eval(values []float64) float64 {
	total := e.constant
	for v, c := range e.terms {
		if int(v) < len(values) {
			total += c * values[v]
		}
	}
	return total
}

// Clone returns a deep copy of the expression.
func (e Expr) Clone() Expr {
	out := Expr{constant: e.constant}
	if len(e.terms) > 0 {
		out.terms = make(map[Var]float64, len(e.terms))
		for v, c := range e.terms {
			out.terms[v] = c
		}
	}
	return out
}
