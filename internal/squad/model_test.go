package squad

import (
	"errors"
	"math"
	"testing"
)

func TestNewModelVariables(t *testing.T) {
	players, roster := incumbentPool()
	data := mustDataset(players)

	m, err := NewModel(data, roster, plainParams())
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if got, want := m.Problem().NumVars(), data.Len()*int(NumCategories); got != want {
		t.Errorf("NumVars = %d, want %d", got, want)
	}
	if name := m.Problem().VarName(m.Var(0, Captain)); name != "captain_1" {
		t.Errorf("VarName = %q, want captain_1", name)
	}

	params := plainParams()
	params.BenchEligibility = true
	m, err = NewModel(data, roster, params)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if got, want := m.Problem().NumVars(), data.Len()*(int(NumCategories)+1); got != want {
		t.Errorf("NumVars with bench eligibility = %d, want %d", got, want)
	}
}

func TestNewModelMissingPlayer(t *testing.T) {
	players, roster := incumbentPool()
	_, err := NewModel(mustDataset(players[1:]), roster, plainParams())
	if !errors.Is(err, ErrMissingPlayer) {
		t.Fatalf("err = %v, want ErrMissingPlayer", err)
	}

	params := plainParams()
	params.Locked = []int{999}
	_, err = NewModel(mustDataset(players), roster, params)
	if !errors.Is(err, ErrMissingPlayer) {
		t.Fatalf("locked: err = %v, want ErrMissingPlayer", err)
	}
}

func TestModelBudget(t *testing.T) {
	players, roster := incumbentPool()
	data := mustDataset(players)

	m, err := NewModel(data, roster, plainParams())
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if !m.Bank().IsZero() || !m.Budget().Equal(dec("100")) {
		t.Errorf("bank, budget = %s, %s; want 0, 100", m.Bank(), m.Budget())
	}

	// The cap stays at the league budget however much is in the bank.
	roster.Bank = dec("25.0")
	m, err = NewModel(data, roster, plainParams())
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if !m.Budget().Equal(dec("100")) {
		t.Errorf("budget = %s, want 100", m.Budget())
	}
	if err := m.Encode(); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	c, _ := m.Problem().Constraint("budget_cap")
	if c.RHS != 750 {
		t.Errorf("budget_cap RHS = %v, want 750 tenths", c.RHS)
	}
	// Purchases cancel out of the row: a new player costs what leaves the bank.
	if coef := c.Expr.Coef(m.Var(15, InStartingFree)); coef != 0 {
		t.Errorf("budget_cap coefficient of a purchase = %v, want 0", coef)
	}
	if coef := c.Expr.Coef(m.Var(12, OutStartingFree)); coef != 70 {
		t.Errorf("budget_cap coefficient of a sale = %v, want 70", coef)
	}

	m, err = NewModel(data, Roster{}, plainParams())
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if !m.Initial() || !m.Bank().Equal(dec("100")) {
		t.Errorf("initial, bank = %v, %s; want true, 100", m.Initial(), m.Bank())
	}
}

func TestEncodeConstraintFamilies(t *testing.T) {
	players, roster := incumbentPool()
	roster.FreeTransfers = 7
	m, err := NewModel(mustDataset(players), roster, plainParams())
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if err := m.Encode(); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	p := m.Problem()

	for _, name := range []string{
		"squad_gkp", "starting_gkp", "starting_def_min", "starting_fwd_max",
		"starting_total", "bench_total", "exclusive_1", "team_quota_16",
		"not_starting_16", "not_bench_16", "not_bench_1", "not_starting_2",
		"no_reacquire_1", "retain_or_sell_8", "unavailable_8",
		"captain_starts_16", "captain_total",
		"free_transfer_balance", "free_transfer_cap", "paid_transfer_balance",
		"bank_nonnegative", "budget_cap",
	} {
		if _, ok := p.Constraint(name); !ok {
			t.Errorf("constraint %s missing", name)
		}
	}
	for _, name := range []string{"not_starting_1", "no_reacquire_16", "unavailable_1", "no_paid_transfers"} {
		if _, ok := p.Constraint(name); ok {
			t.Errorf("constraint %s should not exist", name)
		}
	}

	c, _ := p.Constraint("free_transfer_cap")
	if c.RHS != MaxFreeTransfers {
		t.Errorf("free_transfer_cap RHS = %v, want %d", c.RHS, MaxFreeTransfers)
	}
	c, _ = p.Constraint("budget_cap")
	if c.RHS != 1000 {
		t.Errorf("budget_cap RHS = %v, want 1000 tenths", c.RHS)
	}
}

func TestEncodeInitialSquad(t *testing.T) {
	players, _ := incumbentPool()
	m, err := NewModel(mustDataset(players), Roster{}, plainParams())
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if err := m.Encode(); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	p := m.Problem()
	if _, ok := p.Constraint("no_paid_transfers"); !ok {
		t.Error("no_paid_transfers missing")
	}
	if _, ok := p.Constraint("free_transfer_cap"); ok {
		t.Error("free_transfer_cap should not exist for an initial squad")
	}
	c, _ := p.Constraint("bank_nonnegative")
	if c.RHS != 1000 {
		t.Errorf("bank_nonnegative RHS = %v, want 1000", c.RHS)
	}
	if _, ok := p.Constraint("budget_cap"); ok {
		t.Error("budget_cap should not exist for an initial squad")
	}
}

func TestOpposingPairs(t *testing.T) {
	a := mkPlayer(1, Midfielder, 1, "6.0", 6)
	a.OpponentID = 2
	b := mkPlayer(2, Forward, 2, "7.0", 6)
	b.OpponentID = 1
	c := mkPlayer(3, Defender, 1, "4.5", 3)
	c.OpponentID = 2
	c.Availability = Injured
	d := mkPlayer(4, Defender, 3, "4.5", 3)
	d.OpponentID = 4
	e := mkPlayer(5, Defender, 2, "4.5", 3)
	e.OpponentID = 1

	params := plainParams()
	params.OpposingPenalty = 1
	m, err := NewModel(mustDataset([]Player{a, b, c, d, e}), Roster{}, params)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	pairs := m.Pairs()
	if len(pairs) != 2 {
		t.Fatalf("len(Pairs) = %d, want 2", len(pairs))
	}
	if pairs[0].A != 0 || pairs[0].B != 1 || pairs[1].A != 0 || pairs[1].B != 4 {
		t.Errorf("pairs = %+v, want (0,1) and (0,4)", pairs)
	}
	if err := m.Encode(); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for _, suffix := range []string{"_a", "_b", "_both"} {
		if _, ok := m.Problem().Constraint("opposing_1_2" + suffix); !ok {
			t.Errorf("constraint opposing_1_2%s missing", suffix)
		}
	}
	if coef := m.Problem().Objective().Coef(pairs[0].Var); coef != -1 {
		t.Errorf("pair objective coefficient = %v, want -1", coef)
	}

	params.OpposingPenalty = 0
	m, _ = NewModel(mustDataset([]Player{a, b}), Roster{}, params)
	if len(m.Pairs()) != 0 {
		t.Errorf("zero penalty declared %d pairs", len(m.Pairs()))
	}
}

func TestFixtureAdjustment(t *testing.T) {
	tests := map[float64]float64{0: 0, 1: 2, 2: 1, 2.5: 0.5, 3: 0, 4: -1, 5: -2}
	for fdr, want := range tests {
		if got := FixtureAdjustment(fdr); math.Abs(got-want) > 1e-12 {
			t.Errorf("FixtureAdjustment(%v) = %v, want %v", fdr, got, want)
		}
	}
}

func TestObjectiveCoefficients(t *testing.T) {
	players, roster := incumbentPool()
	players[15].FixtureDifficulty = 2 // player 16

	params := plainParams()
	params.FDRWeight = 0.5
	m, err := NewModel(mustDataset(players), roster, params)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	obj := m.objective()

	i, _ := m.Dataset().Index(16)
	tests := map[Category]float64{
		InStartingFree:  7.5,
		InStartingPaid:  3.5,
		InBenchFree:     0,
		InBenchPaid:     -4,
		Captain:         7,
		StayBench:       0,
		OutStartingFree: 0,
	}
	for c, want := range tests {
		if got := obj.Coef(m.Var(i, c)); math.Abs(got-want) > 1e-12 {
			t.Errorf("coefficient of %s = %v, want %v", c, got, want)
		}
	}

	j, _ := m.Dataset().Index(3)
	if got := obj.Coef(m.Var(j, StayStarting)); got != 4 {
		t.Errorf("coefficient of stay_starting_3 = %v, want 4", got)
	}
}
