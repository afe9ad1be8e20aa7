package squad

import (
	"math"

	"github.com/albapepper/fpl-optimizer/internal/milp"
)

// FixtureAdjustment maps a team's average fixture difficulty to a per-starter
// bonus: 1 yields +2, 3 yields 0 and 5 yields -2, clamped to [-2, 2]. An
// unknown difficulty (zero) yields no adjustment.
func FixtureAdjustment(difficulty float64) float64 {
	if difficulty <= 0 {
		return 0
	}
	return math.Max(-2, math.Min(2, 3-difficulty))
}

// objective composes every scoring term in one expression: expected points
// of starters, the captain's doubled points, transfer hits, the fixture
// adjustment and the opposing-pair penalty.
func (m *Model) objective() milp.Expr {
	var obj milp.Expr
	hit := m.params.TransferHit
	for i := 0; i < m.data.Len(); i++ {
		p := m.data.At(i)
		xp := p.ExpectedPoints

		obj.Add(m.vars[i][StayStarting], xp)
		obj.Add(m.vars[i][BenchToStarting], xp)
		obj.Add(m.vars[i][InStartingFree], xp)
		obj.Add(m.vars[i][InStartingPaid], xp-hit)
		obj.Add(m.vars[i][InBenchPaid], -hit)
		obj.Add(m.vars[i][Captain], xp)

		if adj := m.params.FDRWeight * FixtureAdjustment(p.FixtureDifficulty); adj != 0 {
			for _, c := range startingCategories {
				obj.Add(m.vars[i][c], adj)
			}
		}
	}
	for _, pr := range m.pairs {
		obj.Add(pr.Var, -m.params.OpposingPenalty)
	}
	return obj
}
