package squad

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Squad shape and league caps.
const (
	SquadSize        = 15
	StartingSize     = 11
	BenchSize        = 4
	MaxFreeTransfers = 5
)

var squadQuota = map[Position]int{
	Goalkeeper: 2,
	Defender:   5,
	Midfielder: 5,
	Forward:    3,
}

// startingBounds holds the inclusive [min, max] starters per position.
var startingBounds = map[Position][2]int{
	Goalkeeper: {1, 1},
	Defender:   {3, 5},
	Midfielder: {2, 5},
	Forward:    {1, 3},
}

// Pick is one owned player in a roster.
type Pick struct {
	PlayerID      int             `json:"player_id"`
	Starting      bool            `json:"starting"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	Captain       bool            `json:"captain,omitempty"`
	ViceCaptain   bool            `json:"vice_captain,omitempty"`
}

// Roster is the incumbent squad of a manager before a gameweek's transfers.
// An empty roster means the squad is being built from scratch.
type Roster struct {
	Picks         []Pick          `json:"picks"`
	Bank          decimal.Decimal `json:"bank"`
	FreeTransfers int             `json:"free_transfers"`
}

// Empty reports whether the roster owns no players.
func (r Roster) Empty() bool { return len(r.Picks) == 0 }

// Validate checks the roster shape: exactly 11 starters and 4 substitutes
// with unique players, positive purchase prices, at most one captain and vice
// captain, and a non-negative bank and free-transfer count.
func (r Roster) Validate() error {
	if r.Bank.IsNegative() {
		return fmt.Errorf("%w: negative bank %s", ErrInvalidRoster, r.Bank)
	}
	if r.FreeTransfers < 0 {
		return fmt.Errorf("%w: negative free transfers %d", ErrInvalidRoster, r.FreeTransfers)
	}
	if r.Empty() {
		return nil
	}
	if len(r.Picks) != SquadSize {
		return fmt.Errorf("%w: %d players, want %d", ErrInvalidRoster, len(r.Picks), SquadSize)
	}
	seen := make(map[int]bool, len(r.Picks))
	starters, captains, vices := 0, 0, 0
	for _, p := range r.Picks {
		if seen[p.PlayerID] {
			return fmt.Errorf("%w: player %d listed twice", ErrInvalidRoster, p.PlayerID)
		}
		seen[p.PlayerID] = true
		if !p.PurchasePrice.IsPositive() {
			return fmt.Errorf("%w: player %d has purchase price %s", ErrInvalidRoster, p.PlayerID, p.PurchasePrice)
		}
		if p.Starting {
			starters++
		}
		if p.Captain {
			captains++
		}
		if p.ViceCaptain {
			vices++
		}
	}
	if starters != StartingSize {
		return fmt.Errorf("%w: %d starters, want %d", ErrInvalidRoster, starters, StartingSize)
	}
	if captains > 1 || vices > 1 {
		return fmt.Errorf("%w: %d captains and %d vice captains", ErrInvalidRoster, captains, vices)
	}
	return nil
}

// Pick returns the pick for a player ID.
func (r Roster) Pick(playerID int) (Pick, bool) {
	for _, p := range r.Picks {
		if p.PlayerID == playerID {
			return p, true
		}
	}
	return Pick{}, false
}

// AvailableFreeTransfers returns the usable free transfers, capped at
// MaxFreeTransfers.
func (r Roster) AvailableFreeTransfers() int {
	switch {
	case r.FreeTransfers < 0:
		return 0
	case r.FreeTransfers > MaxFreeTransfers:
		return MaxFreeTransfers
	default:
		return r.FreeTransfers
	}
}

// SellingPrice applies the profit-split resale rule: a player bought below
// the current price sells for the purchase price plus half the rise, rounded
// down to 0.1; otherwise for the current price.
func SellingPrice(purchase, current decimal.Decimal) decimal.Decimal {
	if !current.GreaterThan(purchase) {
		return current
	}
	profit := current.Sub(purchase).Div(decimal.NewFromInt(2)).RoundFloor(1)
	return purchase.Add(profit)
}
