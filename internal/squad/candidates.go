package squad

import "sort"

// Candidates narrows data to the players plausibly in contention: every
// rostered or locked player, plus, per position, the perPosition available
// players with the most expected points and the perPosition available players
// with the most expected points per unit of price. Excluded players are
// dropped unless rostered. perPosition <= 0 returns data unchanged.
func Candidates(data *Dataset, roster Roster, params Params, perPosition int) (*Dataset, error) {
	if perPosition <= 0 {
		return data, nil
	}

	keep := make(map[int]bool)
	for _, pk := range roster.Picks {
		keep[pk.PlayerID] = true
	}
	for _, id := range params.Locked {
		keep[id] = true
	}
	excluded := make(map[int]bool, len(params.Excluded))
	for _, id := range params.Excluded {
		excluded[id] = true
	}

	byPos := make(map[Position][]Player)
	for _, p := range data.players {
		if p.Available() && !excluded[p.ID] {
			byPos[p.Position] = append(byPos[p.Position], p)
		}
	}
	for _, pos := range Positions {
		pool := byPos[pos]
		sort.SliceStable(pool, func(a, b int) bool {
			if pool[a].ExpectedPoints != pool[b].ExpectedPoints {
				return pool[a].ExpectedPoints > pool[b].ExpectedPoints
			}
			return pool[a].ID < pool[b].ID
		})
		for k := 0; k < len(pool) && k < perPosition; k++ {
			keep[pool[k].ID] = true
		}
		sort.SliceStable(pool, func(a, b int) bool {
			va := pool[a].ExpectedPoints / pool[a].Price.InexactFloat64()
			vb := pool[b].ExpectedPoints / pool[b].Price.InexactFloat64()
			if va != vb {
				return va > vb
			}
			return pool[a].ID < pool[b].ID
		})
		for k := 0; k < len(pool) && k < perPosition; k++ {
			keep[pool[k].ID] = true
		}
	}

	var players []Player
	for _, p := range data.players {
		if keep[p.ID] {
			players = append(players, p)
		}
	}
	return NewDataset(players)
}
