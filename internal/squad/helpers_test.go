package squad

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/albapepper/fpl-optimizer/internal/milp"
)

func mkPlayer(id int, pos Position, team int, price string, xp float64) Player {
	return Player{
		ID:             id,
		Name:           fmt.Sprintf("P%d", id),
		Position:       pos,
		Team:           fmt.Sprintf("T%d", team),
		TeamID:         team,
		Price:          decimal.RequireFromString(price),
		ExpectedPoints: xp,
		Availability:   Available,
		Minutes:        90,
	}
}

func mustDataset(players []Player) *Dataset {
	d, err := NewDataset(players)
	if err != nil {
		panic(err)
	}
	return d
}

func plainParams() Params {
	p := DefaultParams()
	p.OpposingPenalty = 0
	p.FDRWeight = 0
	return p
}

func newTestOptimizer(params Params) *Optimizer {
	return NewOptimizer(milp.NewBranchAndBound(0, nil), params, 0, nil)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// incumbentPool is a 4-4-2 roster of players 1-15 on distinct teams with
// player 8 (a 5.0 midfielder projected for 8 points) injured, plus
// replacements 16-19 on the market.
func incumbentPool() ([]Player, Roster) {
	players := []Player{
		mkPlayer(1, Goalkeeper, 1, "5.0", 5),
		mkPlayer(2, Goalkeeper, 2, "4.0", 1),
		mkPlayer(3, Defender, 3, "5.0", 4),
		mkPlayer(4, Defender, 4, "5.0", 4),
		mkPlayer(5, Defender, 5, "5.0", 4),
		mkPlayer(6, Defender, 6, "5.0", 4),
		mkPlayer(7, Defender, 7, "4.0", 1),
		mkPlayer(8, Midfielder, 8, "5.0", 8),
		mkPlayer(9, Midfielder, 9, "6.0", 5),
		mkPlayer(10, Midfielder, 10, "6.0", 5),
		mkPlayer(11, Midfielder, 11, "6.0", 5),
		mkPlayer(12, Midfielder, 12, "4.5", 1),
		mkPlayer(13, Forward, 13, "7.0", 6),
		mkPlayer(14, Forward, 14, "7.0", 6),
		mkPlayer(15, Forward, 15, "4.5", 1),
		mkPlayer(16, Midfielder, 16, "5.0", 7),
		mkPlayer(17, Midfielder, 17, "4.5", 6),
		mkPlayer(18, Defender, 18, "4.0", 2),
		mkPlayer(19, Forward, 19, "4.5", 3),
	}
	players[7].Availability = Injured

	bench := map[int]bool{2: true, 7: true, 12: true, 15: true}
	roster := Roster{Bank: decimal.Zero, FreeTransfers: 1}
	for _, p := range players[:15] {
		roster.Picks = append(roster.Picks, Pick{
			PlayerID:      p.ID,
			Starting:      !bench[p.ID],
			PurchasePrice: p.Price,
			Captain:       p.ID == 8,
			ViceCaptain:   p.ID == 13,
		})
	}
	return players, roster
}
