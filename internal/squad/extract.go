package squad

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/albapepper/fpl-optimizer/internal/milp"
)

// Extract reads a solved assignment back into a Result. A malformed
// assignment is never corrected: every broken squad invariant is listed in
// Result.Violations and the first captain found is kept.
func Extract(m *Model, sol *milp.Solution) *Result {
	res := &Result{
		Status:    sol.Status,
		Objective: sol.Objective,
		Budget:    m.budget,
	}

	bank := m.bank
	total := decimal.Zero
	var captains []int
	var sold, bought []Transfer

	for i := 0; i < m.data.Len(); i++ {
		p := m.data.At(i)
		if sol.IsSet(m.vars[i][Captain]) {
			captains = append(captains, p.ID)
		}

		var fired []Category
		for _, c := range roleCategories {
			if sol.IsSet(m.vars[i][c]) {
				fired = append(fired, c)
			}
		}
		if len(fired) == 0 {
			continue
		}
		if len(fired) > 1 {
			res.Violations = append(res.Violations, fmt.Sprintf("player %d holds %d roles %v", p.ID, len(fired), fired))
		}

		c := fired[0]
		pk := m.owned[i]
		sel := Selection{
			PlayerID:       p.ID,
			Name:           p.Name,
			Position:       p.Position,
			Team:           p.Team,
			TeamID:         p.TeamID,
			Price:          p.Price,
			PurchasePrice:  pk.PurchasePrice,
			ExpectedPoints: p.ExpectedPoints,
			Transition:     c,
			Label:          c.Label(),
		}

		switch {
		case c.Out():
			sale := SellingPrice(pk.PurchasePrice, p.Price)
			bank = bank.Add(sale)
			sold = append(sold, newTransfer(p, TransferOut, sale, c.Paid()))
			continue
		case c.In():
			sel.PurchasePrice = p.Price
			bank = bank.Sub(p.Price)
			bought = append(bought, newTransfer(p, TransferIn, p.Price, c.Paid()))
			if c.Paid() {
				res.PaidTransfers++
			} else {
				res.FreeTransfers++
			}
		}

		if !p.Available() {
			res.Violations = append(res.Violations, fmt.Sprintf("player %d is %s but selected", p.ID, p.Availability))
		}
		total = total.Add(sel.PurchasePrice)
		if c.Starting() {
			res.Starting = append(res.Starting, sel)
		} else {
			res.Bench = append(res.Bench, sel)
		}
	}

	res.Transfers = append(sold, bought...)
	res.TotalCost = total
	res.Bank = bank
	res.TransferHit = float64(res.PaidTransfers) * m.params.TransferHit

	if len(captains) != 1 {
		res.Violations = append(res.Violations, fmt.Sprintf("%d captains selected, want 1", len(captains)))
	}
	if len(captains) > 0 {
		res.Captain = captains[0]
	}

	OrderStarting(res.Starting)
	OrderBench(res.Bench)
	res.ViceCaptain = ViceCaptain(res.Starting, res.Captain)

	captainStarts := false
	for k := range res.Starting {
		s := &res.Starting[k]
		s.Captain = s.PlayerID == res.Captain
		s.ViceCaptain = s.PlayerID == res.ViceCaptain
		captainStarts = captainStarts || s.Captain
		res.ProjectedPoints += s.ExpectedPoints
		if s.Captain {
			res.ProjectedPoints += s.ExpectedPoints
		}
		switch s.Position {
		case Defender:
			res.Formation.Defenders++
		case Midfielder:
			res.Formation.Midfielders++
		case Forward:
			res.Formation.Forwards++
		}
	}
	res.ProjectedPoints -= res.TransferHit
	if res.Captain != 0 && !captainStarts {
		res.Violations = append(res.Violations, fmt.Sprintf("captain %d is not in the starting XI", res.Captain))
	}

	if m.initial {
		res.NextFreeTransfers = 1
	} else {
		remaining := m.roster.AvailableFreeTransfers() - res.FreeTransfers
		if remaining < 0 {
			remaining = 0
		}
		res.NextFreeTransfers = min(remaining+1, MaxFreeTransfers)
	}

	res.Violations = append(res.Violations, m.shapeViolations(res)...)
	return res
}

func newTransfer(p Player, dir Direction, price decimal.Decimal, paid bool) Transfer {
	return Transfer{
		Direction: dir,
		PlayerID:  p.ID,
		Name:      p.Name,
		Position:  p.Position,
		Team:      p.Team,
		Price:     price,
		Paid:      paid,
	}
}

// shapeViolations checks the extracted squad against the league rules the
// constraints were meant to enforce.
func (m *Model) shapeViolations(res *Result) []string {
	var out []string
	if len(res.Starting) != StartingSize {
		out = append(out, fmt.Sprintf("%d starters, want %d", len(res.Starting), StartingSize))
	}
	if len(res.Bench) != BenchSize {
		out = append(out, fmt.Sprintf("%d substitutes, want %d", len(res.Bench), BenchSize))
	}

	squadCount := make(map[Position]int)
	startCount := make(map[Position]int)
	teamCount := make(map[int]int)
	for _, s := range res.Squad() {
		squadCount[s.Position]++
		teamCount[s.TeamID]++
		if s.Transition.Starting() {
			startCount[s.Position]++
		}
	}
	for _, pos := range Positions {
		if squadCount[pos] != squadQuota[pos] {
			out = append(out, fmt.Sprintf("%d %s in squad, want %d", squadCount[pos], pos, squadQuota[pos]))
		}
		b := startingBounds[pos]
		if startCount[pos] < b[0] || startCount[pos] > b[1] {
			out = append(out, fmt.Sprintf("%d %s starting, want %d-%d", startCount[pos], pos, b[0], b[1]))
		}
	}
	for team, n := range teamCount {
		if n > m.params.MaxPerTeam {
			out = append(out, fmt.Sprintf("%d players from team %d, max %d", n, team, m.params.MaxPerTeam))
		}
	}
	if res.Bank.IsNegative() {
		out = append(out, fmt.Sprintf("negative bank %s", res.Bank))
	}
	if res.TotalCost.Add(res.Bank).GreaterThan(m.budget) {
		out = append(out, fmt.Sprintf("squad cost %s plus bank %s exceeds budget %s", res.TotalCost, res.Bank, m.budget))
	}
	if !m.initial && res.FreeTransfers > m.roster.AvailableFreeTransfers() {
		out = append(out, fmt.Sprintf("%d free transfers used, %d available", res.FreeTransfers, m.roster.AvailableFreeTransfers()))
	}
	sort.Strings(out)
	return out
}

// OrderStarting sorts starters by position, then expected points descending,
// then player ID.
func OrderStarting(starting []Selection) {
	sort.SliceStable(starting, func(a, b int) bool {
		x, y := starting[a], starting[b]
		if x.Position != y.Position {
			return x.Position < y.Position
		}
		if x.ExpectedPoints != y.ExpectedPoints {
			return x.ExpectedPoints > y.ExpectedPoints
		}
		return x.PlayerID < y.PlayerID
	})
}

// OrderBench sorts substitutes into automatic-substitution priority: the
// goalkeeper first, then outfielders by expected points descending.
func OrderBench(bench []Selection) {
	sort.SliceStable(bench, func(a, b int) bool {
		x, y := bench[a], bench[b]
		xg, yg := x.Position == Goalkeeper, y.Position == Goalkeeper
		if xg != yg {
			return xg
		}
		if x.ExpectedPoints != y.ExpectedPoints {
			return x.ExpectedPoints > y.ExpectedPoints
		}
		return x.PlayerID < y.PlayerID
	})
}

// ViceCaptain picks the highest expected-points starter other than the
// captain, preferring one from a different team to the captain. Ties go to
// the lower player ID. It returns 0 when there is no other starter.
func ViceCaptain(starting []Selection, captainID int) int {
	captainTeam := 0
	var candidates []Selection
	for _, s := range starting {
		if s.PlayerID == captainID {
			captainTeam = s.TeamID
			continue
		}
		candidates = append(candidates, s)
	}
	if len(candidates) == 0 {
		return 0
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].ExpectedPoints != candidates[b].ExpectedPoints {
			return candidates[a].ExpectedPoints > candidates[b].ExpectedPoints
		}
		return candidates[a].PlayerID < candidates[b].PlayerID
	})
	for _, s := range candidates {
		if captainTeam == 0 || s.TeamID != captainTeam {
			return s.PlayerID
		}
	}
	return candidates[0].PlayerID
}
