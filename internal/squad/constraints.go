package squad

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/albapepper/fpl-optimizer/internal/milp"
)

// encodeConstraints asserts the league rules. Each rule is a named
// constraint or a family of constraints suffixed with a player or team ID.
func (m *Model) encodeConstraints() {
	m.squadComposition()
	m.startingComposition()
	m.roleExclusivity()
	m.teamQuota()
	m.provenance()
	m.retention()
	m.availability()
	m.benchEligibility()
	m.captaincy()
	m.transferFlow()
	m.budgetRules()
	m.opposingLinks()
	m.lockedAndExcluded()
}

func (m *Model) add(name string, e milp.Expr, s milp.Sense, rhs float64) {
	m.problem.AddConstraint(name, e, s, rhs)
}

func positionKey(p Position) string { return strings.ToLower(p.String()) }

// squadComposition requires 2 goalkeepers, 5 defenders, 5 midfielders and 3
// forwards across the new squad.
func (m *Model) squadComposition() {
	for _, pos := range Positions {
		var e milp.Expr
		for i := 0; i < m.data.Len(); i++ {
			if m.data.At(i).Position == pos {
				e.AddExpr(m.InSquad(i), 1)
			}
		}
		m.add("squad_"+positionKey(pos), e, milp.Equal, float64(squadQuota[pos]))
	}
}

// startingComposition bounds starters per position and fixes the starting XI
// and bench sizes.
func (m *Model) startingComposition() {
	var starters, bench milp.Expr
	for _, pos := range Positions {
		var e milp.Expr
		for i := 0; i < m.data.Len(); i++ {
			if m.data.At(i).Position == pos {
				e.AddExpr(m.Starting(i), 1)
			}
		}
		bounds := startingBounds[pos]
		if bounds[0] == bounds[1] {
			m.add("starting_"+positionKey(pos), e, milp.Equal, float64(bounds[0]))
			continue
		}
		m.add("starting_"+positionKey(pos)+"_min", e, milp.GreaterEq, float64(bounds[0]))
		m.add("starting_"+positionKey(pos)+"_max", e, milp.LessEq, float64(bounds[1]))
	}
	for i := 0; i < m.data.Len(); i++ {
		starters.AddExpr(m.Starting(i), 1)
		bench.AddExpr(m.Bench(i), 1)
	}
	m.add("starting_total", starters, milp.Equal, StartingSize)
	m.add("bench_total", bench, milp.Equal, BenchSize)
}

// roleExclusivity lets a player hold at most one role.
func (m *Model) roleExclusivity() {
	for i := 0; i < m.data.Len(); i++ {
		m.add(fmt.Sprintf("exclusive_%d", m.data.At(i).ID), m.sum(i, roleCategories), milp.LessEq, 1)
	}
}

// teamQuota caps the players selected from one team.
func (m *Model) teamQuota() {
	byTeam := make(map[int]*milp.Expr)
	for i := 0; i < m.data.Len(); i++ {
		team := m.data.At(i).TeamID
		if byTeam[team] == nil {
			byTeam[team] = &milp.Expr{}
		}
		byTeam[team].AddExpr(m.InSquad(i), 1)
	}
	for _, team := range m.data.TeamIDs() {
		m.add(fmt.Sprintf("team_quota_%d", team), *byTeam[team], milp.LessEq, float64(m.params.MaxPerTeam))
	}
}

// provenance forbids stay, swap and sale roles for players who did not hold
// the matching incumbent role, and purchases of players already owned.
func (m *Model) provenance() {
	for i := 0; i < m.data.Len(); i++ {
		id := m.data.At(i).ID
		pk, owned := m.owned[i]
		if !owned || !pk.Starting {
			m.add(fmt.Sprintf("not_starting_%d", id), m.sum(i, incumbentStartingOnly), milp.Equal, 0)
		}
		if !owned || pk.Starting {
			m.add(fmt.Sprintf("not_bench_%d", id), m.sum(i, incumbentBenchOnly), milp.Equal, 0)
		}
		if owned {
			m.add(fmt.Sprintf("no_reacquire_%d", id), m.sum(i, inCategories), milp.Equal, 0)
		}
	}
}

// retention makes every owned player either stay in the squad or be sold.
func (m *Model) retention() {
	for i := 0; i < m.data.Len(); i++ {
		if _, owned := m.owned[i]; !owned {
			continue
		}
		e := m.InSquad(i)
		e.AddExpr(m.Out(i), 1)
		m.add(fmt.Sprintf("retain_or_sell_%d", m.data.At(i).ID), e, milp.Equal, 1)
	}
}

// availability excludes every player who is not available.
func (m *Model) availability() {
	for i := 0; i < m.data.Len(); i++ {
		p := m.data.At(i)
		if p.Available() {
			continue
		}
		e := m.InSquad(i)
		e.Add(m.vars[i][Captain], 1)
		m.add(fmt.Sprintf("unavailable_%d", p.ID), e, milp.Equal, 0)
	}
}

// benchEligibility only lets players who met the minutes threshold in the
// last completed gameweek sit on the bench.
func (m *Model) benchEligibility() {
	if m.eligible == nil {
		return
	}
	for i := 0; i < m.data.Len(); i++ {
		p := m.data.At(i)
		limit := 0.0
		if p.Minutes >= m.params.BenchMinMinutes {
			limit = 1
		}
		m.add(fmt.Sprintf("eligible_%d", p.ID), milp.Term(m.eligible[i], 1), milp.LessEq, limit)
		e := m.Bench(i)
		e.Add(m.eligible[i], -1)
		m.add(fmt.Sprintf("bench_minutes_%d", p.ID), e, milp.LessEq, 0)
	}
}

// captaincy picks exactly one captain from the starting XI.
func (m *Model) captaincy() {
	var total milp.Expr
	for i := 0; i < m.data.Len(); i++ {
		total.Add(m.vars[i][Captain], 1)
		e := milp.Term(m.vars[i][Captain], 1)
		e.AddExpr(m.Starting(i), -1)
		m.add(fmt.Sprintf("captain_starts_%d", m.data.At(i).ID), e, milp.LessEq, 0)
	}
	m.add("captain_total", total, milp.Equal, 1)
}

// transferFlow balances purchases against sales and caps free transfers.
// Building from an empty roster makes every purchase free.
func (m *Model) transferFlow() {
	var freeIn, freeOut, paidIn, paidOut milp.Expr
	for i := 0; i < m.data.Len(); i++ {
		freeIn.AddExpr(m.sum(i, freeInCategories), 1)
		freeOut.AddExpr(m.sum(i, freeOutCategories), 1)
		paidIn.AddExpr(m.sum(i, paidInCategories), 1)
		paidOut.AddExpr(m.sum(i, paidOutCategories), 1)
	}
	if m.initial {
		m.add("no_paid_transfers", paidIn, milp.Equal, 0)
		return
	}
	balance := freeIn.Clone()
	balance.AddExpr(freeOut, -1)
	m.add("free_transfer_balance", balance, milp.Equal, 0)
	m.add("free_transfer_cap", freeIn, milp.LessEq, float64(m.roster.AvailableFreeTransfers()))
	paid := paidIn.Clone()
	paid.AddExpr(paidOut, -1)
	m.add("paid_transfer_balance", paid, milp.Equal, 0)
}

// tenths converts money to integer tenths so money rows have integral
// coefficients.
func tenths(d decimal.Decimal) float64 {
	return float64(d.Shift(1).Round(0).IntPart())
}

// budgetRules keeps the bank non-negative after sales and purchases, and caps
// the squad cost (kept players at purchase price, new players at current
// price) plus the remaining bank at the budget. Purchases add to the cost what
// they take from the bank, so the cap row reduces to kept purchase prices plus
// sale proceeds. An initial squad has nothing to keep or sell and the bank
// row alone bounds it.
func (m *Model) budgetRules() {
	var spend, cost milp.Expr
	for i := 0; i < m.data.Len(); i++ {
		price := tenths(m.data.At(i).Price)
		for _, c := range inCategories {
			spend.Add(m.vars[i][c], price)
			cost.Add(m.vars[i][c], price)
		}
	}
	for i := 0; i < m.data.Len(); i++ {
		pk, owned := m.owned[i]
		if !owned {
			continue
		}
		sale := tenths(SellingPrice(pk.PurchasePrice, m.data.At(i).Price))
		for _, c := range outCategories {
			spend.Add(m.vars[i][c], -sale)
		}
		purchase := tenths(pk.PurchasePrice)
		for _, c := range keptCategories {
			cost.Add(m.vars[i][c], purchase)
		}
	}
	m.add("bank_nonnegative", spend, milp.LessEq, tenths(m.bank))
	if m.initial {
		return
	}
	// cost + (bank - spend) <= budget
	cost.AddExpr(spend, -1)
	m.add("budget_cap", cost, milp.LessEq, tenths(m.budget)-tenths(m.bank))
}

// opposingLinks ties each pair indicator to "both players start" with the
// three-inequality AND linearization.
func (m *Model) opposingLinks() {
	for _, pr := range m.pairs {
		name := fmt.Sprintf("opposing_%d_%d", m.data.At(pr.A).ID, m.data.At(pr.B).ID)

		a := milp.Term(pr.Var, 1)
		a.AddExpr(m.Starting(pr.A), -1)
		m.add(name+"_a", a, milp.LessEq, 0)

		b := milp.Term(pr.Var, 1)
		b.AddExpr(m.Starting(pr.B), -1)
		m.add(name+"_b", b, milp.LessEq, 0)

		both := milp.Term(pr.Var, 1)
		both.AddExpr(m.Starting(pr.A), -1)
		both.AddExpr(m.Starting(pr.B), -1)
		m.add(name+"_both", both, milp.GreaterEq, -1)
	}
}

func (m *Model) lockedAndExcluded() {
	seen := make(map[int]bool)
	for _, id := range m.params.Locked {
		if seen[id] {
			continue
		}
		seen[id] = true
		i, _ := m.data.Index(id)
		m.add(fmt.Sprintf("locked_%d", id), m.InSquad(i), milp.Equal, 1)
	}
	for _, id := range m.params.Excluded {
		if seen[id] {
			continue
		}
		seen[id] = true
		if i, ok := m.data.Index(id); ok {
			m.add(fmt.Sprintf("excluded_%d", id), m.InSquad(i), milp.Equal, 0)
		}
	}
}
