package squad

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/albapepper/fpl-optimizer/internal/milp"
)

// Pair is an opposing-fixture indicator: Var is 1 exactly when the players at
// dataset indices A and B both start while their teams face each other.
type Pair struct {
	A, B int
	Var  milp.Var
}

// Model is the decision model of one optimization run: thirteen binary
// variables per player, keyed by dataset index and Category, plus the
// auxiliary bench-eligibility and opposing-pair indicators.
//
// Every player gets the full variable set whatever their eligibility, so
// encoders can reference any (player, category) pair; ineligibility is
// expressed by constraints.
type Model struct {
	problem  *milp.Problem
	data     *Dataset
	roster   Roster
	params   Params
	vars     [][NumCategories]milp.Var
	eligible []milp.Var
	pairs    []Pair
	owned    map[int]Pick
	initial  bool
	bank     decimal.Decimal
	budget   decimal.Decimal
}

// NewModel declares the decision variables for data and roster. It fails with
// ErrMissingPlayer when a rostered or locked player is absent from data.
func NewModel(data *Dataset, roster Roster, params Params) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := roster.Validate(); err != nil {
		return nil, err
	}

	owned := make(map[int]Pick, len(roster.Picks))
	var missing []string
	for _, pk := range roster.Picks {
		i, ok := data.Index(pk.PlayerID)
		if !ok {
			missing = append(missing, strconv.Itoa(pk.PlayerID))
			continue
		}
		owned[i] = pk
	}
	for _, id := range params.Locked {
		if _, ok := data.Index(id); !ok {
			missing = append(missing, strconv.Itoa(id)+" (locked)")
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingPlayer, strings.Join(missing, ", "))
	}

	m := &Model{
		problem: milp.NewProblem("fpl_squad"),
		data:    data,
		roster:  roster,
		params:  params,
		vars:    make([][NumCategories]milp.Var, data.Len()),
		owned:   owned,
		initial: roster.Empty(),
		bank:    roster.Bank,
	}
	if m.initial {
		m.bank = params.Budget
	}
	m.budget = params.Budget

	for i := 0; i < data.Len(); i++ {
		id := data.At(i).ID
		for c := Category(0); c < NumCategories; c++ {
			m.vars[i][c] = m.problem.NewBinary(fmt.Sprintf("%s_%d", c, id))
		}
	}
	if params.BenchEligibility {
		m.eligible = make([]milp.Var, data.Len())
		for i := range m.eligible {
			m.eligible[i] = m.problem.NewBinary(fmt.Sprintf("bench_eligible_%d", data.At(i).ID))
		}
	}
	if params.OpposingPenalty > 0 {
		m.pairs = m.opposingPairs()
	}
	return m, nil
}

// opposingPairs declares an indicator for every two available players whose
// teams face each other this gameweek.
func (m *Model) opposingPairs() []Pair {
	var pairs []Pair
	for a := 0; a < m.data.Len(); a++ {
		pa := m.data.At(a)
		if pa.OpponentID == 0 || !pa.Available() {
			continue
		}
		for b := a + 1; b < m.data.Len(); b++ {
			pb := m.data.At(b)
			if !pb.Available() || pa.OpponentID != pb.TeamID || pb.OpponentID != pa.TeamID {
				continue
			}
			v := m.problem.NewBinary(fmt.Sprintf("opposing_%d_%d", pa.ID, pb.ID))
			pairs = append(pairs, Pair{A: a, B: b, Var: v})
		}
	}
	return pairs
}

// Encode asserts every constraint and declares the objective.
func (m *Model) Encode() error {
	m.encodeConstraints()
	m.problem.SetObjective(m.objective())
	return m.problem.Err()
}

// Problem returns the underlying integer program.
func (m *Model) Problem() *milp.Problem { return m.problem }

// Dataset returns the modelled players.
func (m *Model) Dataset() *Dataset { return m.data }

// Params returns the parameters the model was built with.
func (m *Model) Params() Params { return m.params }

// Var returns the variable of player index i for category c.
func (m *Model) Var(i int, c Category) milp.Var { return m.vars[i][c] }

// Pairs returns the opposing-fixture indicators.
func (m *Model) Pairs() []Pair { return m.pairs }

// Initial reports whether the squad is built from an empty roster.
func (m *Model) Initial() bool { return m.initial }

// Bank returns the money available before any transfer.
func (m *Model) Bank() decimal.Decimal { return m.bank }

// Budget returns the cap on squad cost plus remaining bank.
func (m *Model) Budget() decimal.Decimal { return m.budget }

// Owned returns the incumbent pick of player index i.
func (m *Model) Owned(i int) (Pick, bool) {
	pk, ok := m.owned[i]
	return pk, ok
}

func (m *Model) sum(i int, cats []Category) milp.Expr {
	var e milp.Expr
	for _, c := range cats {
		e.Add(m.vars[i][c], 1)
	}
	return e
}

// Starting is the indicator that player i starts in the new squad.
func (m *Model) Starting(i int) milp.Expr { return m.sum(i, startingCategories) }

// Bench is the indicator that player i is a substitute in the new squad.
func (m *Model) Bench(i int) milp.Expr { return m.sum(i, benchCategories) }

// InSquad is the indicator that player i is in the new squad.
func (m *Model) InSquad(i int) milp.Expr {
	e := m.Starting(i)
	e.AddExpr(m.Bench(i), 1)
	return e
}

// Out is the indicator that player i is sold.
func (m *Model) Out(i int) milp.Expr { return m.sum(i, outCategories) }
