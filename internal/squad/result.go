package squad

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/albapepper/fpl-optimizer/internal/milp"
)

// Selection is one player in the resulting squad.
type Selection struct {
	PlayerID       int             `json:"player_id"`
	Name           string          `json:"name"`
	Position       Position        `json:"position"`
	Team           string          `json:"team"`
	TeamID         int             `json:"team_id"`
	Price          decimal.Decimal `json:"price"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	ExpectedPoints float64         `json:"expected_points"`
	Transition     Category        `json:"transition"`
	Label          string          `json:"label"`
	Captain        bool            `json:"captain,omitempty"`
	ViceCaptain    bool            `json:"vice_captain,omitempty"`
}

// Direction tells whether a transfer buys or sells a player.
type Direction string

const (
	TransferIn  Direction = "in"
	TransferOut Direction = "out"
)

// Transfer is one purchase or sale in the plan. Price is the purchase price
// for transfers in and the selling price for transfers out.
type Transfer struct {
	Direction Direction       `json:"direction"`
	PlayerID  int             `json:"player_id"`
	Name      string          `json:"name"`
	Position  Position        `json:"position"`
	Team      string          `json:"team"`
	Price     decimal.Decimal `json:"price"`
	Paid      bool            `json:"paid"`
}

// Formation counts outfield starters.
type Formation struct {
	Defenders   int `json:"defenders"`
	Midfielders int `json:"midfielders"`
	Forwards    int `json:"forwards"`
}

// String renders the formation as D-M-F, e.g. 3-4-3.
func (f Formation) String() string {
	return fmt.Sprintf("%d-%d-%d", f.Defenders, f.Midfielders, f.Forwards)
}

func (f Formation) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Formation) UnmarshalText(b []byte) error {
	_, err := fmt.Sscanf(string(b), "%d-%d-%d", &f.Defenders, &f.Midfielders, &f.Forwards)
	return err
}

// Result is the squad and transfer plan read back from a solved model.
// Starting is ordered by position then expected points; Bench is in
// automatic-substitution order.
type Result struct {
	Status            milp.Status     `json:"status"`
	Objective         float64         `json:"objective"`
	ProjectedPoints   float64         `json:"projected_points"`
	Starting          []Selection     `json:"starting"`
	Bench             []Selection     `json:"bench"`
	Captain           int             `json:"captain"`
	ViceCaptain       int             `json:"vice_captain"`
	Formation         Formation       `json:"formation"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	Bank              decimal.Decimal `json:"bank"`
	Budget            decimal.Decimal `json:"budget"`
	Transfers         []Transfer      `json:"transfers"`
	FreeTransfers     int             `json:"free_transfers_used"`
	PaidTransfers     int             `json:"paid_transfers"`
	TransferHit       float64         `json:"transfer_hit"`
	NextFreeTransfers int             `json:"next_free_transfers"`
	Violations        []string        `json:"violations,omitempty"`
}

// Summary returns a human-readable summary.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"status=%s objective=%.2f formation=%s cost=%s bank=%s transfers=%d free=%d paid=%d hit=%.0f",
		r.Status, r.Objective, r.Formation, r.TotalCost.StringFixed(1), r.Bank.StringFixed(1),
		len(r.Transfers), r.FreeTransfers, r.PaidTransfers, r.TransferHit)
}

// Squad returns the starting XI followed by the bench.
func (r *Result) Squad() []Selection {
	out := make([]Selection, 0, len(r.Starting)+len(r.Bench))
	out = append(out, r.Starting...)
	return append(out, r.Bench...)
}

// NextRoster derives the roster the following gameweek's run starts from.
func (r *Result) NextRoster() Roster {
	next := Roster{Bank: r.Bank, FreeTransfers: r.NextFreeTransfers}
	for _, s := range r.Squad() {
		next.Picks = append(next.Picks, Pick{
			PlayerID:      s.PlayerID,
			Starting:      s.Transition.Starting(),
			PurchasePrice: s.PurchasePrice,
			Captain:       s.Captain,
			ViceCaptain:   s.ViceCaptain,
		})
	}
	return next
}
