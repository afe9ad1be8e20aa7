package squad

import (
	"math"
	"strings"
	"testing"

	"github.com/albapepper/fpl-optimizer/internal/milp"
)

// replacementAssignment sells the injured player 8 for player 16 with a free
// transfer and captains the newcomer.
func replacementAssignment(t *testing.T, m *Model) []float64 {
	t.Helper()
	values := make([]float64, m.Problem().NumVars())
	set := func(id int, c Category) {
		i, ok := m.Dataset().Index(id)
		if !ok {
			t.Fatalf("player %d not in dataset", id)
		}
		values[m.Var(i, c)] = 1
	}
	for _, id := range []int{1, 3, 4, 5, 6, 9, 10, 11, 13, 14} {
		set(id, StayStarting)
	}
	for _, id := range []int{2, 7, 12, 15} {
		set(id, StayBench)
	}
	set(8, OutStartingFree)
	set(16, InStartingFree)
	set(16, Captain)
	return values
}

func encodedIncumbentModel(t *testing.T) *Model {
	t.Helper()
	players, roster := incumbentPool()
	m, err := NewModel(mustDataset(players), roster, plainParams())
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if err := m.Encode(); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return m
}

func TestExtractReplacement(t *testing.T) {
	m := encodedIncumbentModel(t)
	values := replacementAssignment(t, m)

	if v := m.Problem().Violations(values, 1e-9); len(v) != 0 {
		t.Fatalf("assignment violates %v", v)
	}
	obj := m.Problem().Objective().Eval(values)
	if math.Abs(obj-62) > 1e-9 {
		t.Fatalf("objective = %v, want 62", obj)
	}

	res := Extract(m, &milp.Solution{Status: milp.StatusOptimal, Objective: obj, Values: values})
	if len(res.Violations) != 0 {
		t.Fatalf("Violations = %v", res.Violations)
	}
	if res.Captain != 16 || res.ViceCaptain != 13 {
		t.Errorf("captain, vice = %d, %d; want 16, 13", res.Captain, res.ViceCaptain)
	}
	if res.Formation.String() != "4-4-2" {
		t.Errorf("formation = %s, want 4-4-2", res.Formation)
	}
	if !res.TotalCost.Equal(dec("79")) || !res.Bank.IsZero() {
		t.Errorf("cost, bank = %s, %s; want 79, 0", res.TotalCost, res.Bank)
	}
	if len(res.Transfers) != 2 || res.Transfers[0].Direction != TransferOut || res.Transfers[0].PlayerID != 8 ||
		res.Transfers[1].Direction != TransferIn || res.Transfers[1].PlayerID != 16 {
		t.Errorf("transfers = %+v, want out 8 then in 16", res.Transfers)
	}
	if res.FreeTransfers != 1 || res.PaidTransfers != 0 || res.NextFreeTransfers != 1 {
		t.Errorf("free, paid, next = %d, %d, %d; want 1, 0, 1", res.FreeTransfers, res.PaidTransfers, res.NextFreeTransfers)
	}
	if math.Abs(res.ProjectedPoints-62) > 1e-9 {
		t.Errorf("ProjectedPoints = %v, want 62", res.ProjectedPoints)
	}
	if res.Bench[0].Position != Goalkeeper {
		t.Errorf("first substitute is %s, want goalkeeper", res.Bench[0].Position)
	}
	if res.Starting[0].PlayerID != 1 {
		t.Errorf("first starter = %d, want goalkeeper 1", res.Starting[0].PlayerID)
	}

	next := res.NextRoster()
	if err := next.Validate(); err != nil {
		t.Fatalf("NextRoster invalid: %v", err)
	}
	if pk, ok := next.Pick(16); !ok || !pk.PurchasePrice.Equal(dec("5.0")) || !pk.Captain {
		t.Errorf("next pick 16 = %+v, %v", pk, ok)
	}
	if _, ok := next.Pick(8); ok {
		t.Error("sold player 8 still in next roster")
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	m := encodedIncumbentModel(t)
	sol := &milp.Solution{Status: milp.StatusOptimal, Values: replacementAssignment(t, m)}
	first := Extract(m, sol)
	for k := 0; k < 5; k++ {
		again := Extract(m, sol)
		if again.ViceCaptain != first.ViceCaptain || again.Summary() != first.Summary() {
			t.Fatalf("run %d: %s vice %d, want %s vice %d", k, again.Summary(), again.ViceCaptain, first.Summary(), first.ViceCaptain)
		}
		for j := range first.Bench {
			if again.Bench[j].PlayerID != first.Bench[j].PlayerID {
				t.Fatalf("run %d: bench order differs", k)
			}
		}
	}
}

func TestExtractReportsViolations(t *testing.T) {
	m := encodedIncumbentModel(t)
	values := replacementAssignment(t, m)

	// A second captain and a player holding two roles.
	i13, _ := m.Dataset().Index(13)
	values[m.Var(i13, Captain)] = 1
	i9, _ := m.Dataset().Index(9)
	values[m.Var(i9, StartingToBench)] = 1

	res := Extract(m, &milp.Solution{Status: milp.StatusOptimal, Values: values})
	joined := strings.Join(res.Violations, "\n")
	for _, want := range []string{"2 captains selected", "player 9 holds 2 roles"} {
		if !strings.Contains(joined, want) {
			t.Errorf("violations %q missing %q", joined, want)
		}
	}
	if res.Captain != 13 && res.Captain != 16 {
		t.Errorf("captain = %d, want one of the selected captains", res.Captain)
	}
}

func TestExtractEmptyAssignment(t *testing.T) {
	m := encodedIncumbentModel(t)
	res := Extract(m, &milp.Solution{Status: milp.StatusOptimal, Values: make([]float64, m.Problem().NumVars())})
	if len(res.Violations) == 0 {
		t.Fatal("empty assignment produced no violations")
	}
	if res.ViceCaptain != 0 {
		t.Errorf("ViceCaptain = %d, want 0", res.ViceCaptain)
	}
}

func TestViceCaptain(t *testing.T) {
	starting := []Selection{
		{PlayerID: 1, TeamID: 1, ExpectedPoints: 9},
		{PlayerID: 2, TeamID: 1, ExpectedPoints: 8},
		{PlayerID: 5, TeamID: 2, ExpectedPoints: 6},
		{PlayerID: 3, TeamID: 3, ExpectedPoints: 6},
	}
	if got := ViceCaptain(starting, 1); got != 3 {
		t.Errorf("ViceCaptain = %d, want 3 (different team, lower id on tie)", got)
	}
	if got := ViceCaptain(starting, 5); got != 1 {
		t.Errorf("ViceCaptain = %d, want 1", got)
	}
	sameTeam := []Selection{
		{PlayerID: 1, TeamID: 1, ExpectedPoints: 9},
		{PlayerID: 2, TeamID: 1, ExpectedPoints: 8},
	}
	if got := ViceCaptain(sameTeam, 1); got != 2 {
		t.Errorf("ViceCaptain = %d, want 2 when every starter shares the captain's team", got)
	}
	if got := ViceCaptain(starting[:1], 1); got != 0 {
		t.Errorf("ViceCaptain = %d, want 0 with no other starter", got)
	}
}

func TestOrderBench(t *testing.T) {
	bench := []Selection{
		{PlayerID: 7, Position: Defender, ExpectedPoints: 2},
		{PlayerID: 4, Position: Midfielder, ExpectedPoints: 3},
		{PlayerID: 2, Position: Goalkeeper, ExpectedPoints: 1},
		{PlayerID: 3, Position: Forward, ExpectedPoints: 2},
	}
	OrderBench(bench)
	want := []int{2, 4, 3, 7}
	for k, id := range want {
		if bench[k].PlayerID != id {
			t.Fatalf("bench order = %v, want %v", bench, want)
		}
	}
}
