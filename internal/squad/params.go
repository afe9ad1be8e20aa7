package squad

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Defaults for Params.
const (
	DefaultTransferHit     = 4.0
	DefaultOpposingPenalty = 0.5
	DefaultFDRWeight       = 0.5
	DefaultBenchMinMinutes = 59
	DefaultMaxPerTeam      = 3
)

// DefaultBudget is the league's total squad budget.
var DefaultBudget = decimal.NewFromInt(100)

// Params are the externally supplied weights and caps of one optimization.
//
// A zero OpposingPenalty disables opposing-fixture pairs, a zero FDRWeight
// disables the fixture adjustment, and BenchEligibility toggles the minutes
// rule for substitutes.
type Params struct {
	TransferHit      float64         `json:"transfer_hit"`
	OpposingPenalty  float64         `json:"opposing_penalty"`
	FDRWeight        float64         `json:"fdr_weight"`
	BenchEligibility bool            `json:"bench_eligibility"`
	BenchMinMinutes  int             `json:"bench_min_minutes"`
	MaxPerTeam       int             `json:"max_per_team"`
	Budget           decimal.Decimal `json:"budget"`

	// Locked players must be in the resulting squad; Excluded must not.
	Locked   []int `json:"locked,omitempty"`
	Excluded []int `json:"excluded,omitempty"`
}

// DefaultParams returns the league defaults.
func DefaultParams() Params {
	return Params{
		TransferHit:     DefaultTransferHit,
		OpposingPenalty: DefaultOpposingPenalty,
		FDRWeight:       DefaultFDRWeight,
		BenchMinMinutes: DefaultBenchMinMinutes,
		MaxPerTeam:      DefaultMaxPerTeam,
		Budget:          DefaultBudget,
	}
}

// Validate rejects negative weights and impossible caps.
func (p Params) Validate() error {
	switch {
	case p.TransferHit < 0:
		return fmt.Errorf("%w: negative transfer hit %v", ErrInvalidParams, p.TransferHit)
	case p.OpposingPenalty < 0:
		return fmt.Errorf("%w: negative opposing penalty %v", ErrInvalidParams, p.OpposingPenalty)
	case p.FDRWeight < 0:
		return fmt.Errorf("%w: negative fdr weight %v", ErrInvalidParams, p.FDRWeight)
	case p.BenchMinMinutes < 0:
		return fmt.Errorf("%w: negative bench minutes %d", ErrInvalidParams, p.BenchMinMinutes)
	case p.MaxPerTeam < 1:
		return fmt.Errorf("%w: max per team %d", ErrInvalidParams, p.MaxPerTeam)
	case !p.Budget.IsPositive():
		return fmt.Errorf("%w: budget %s", ErrInvalidParams, p.Budget)
	}
	locked := make(map[int]bool, len(p.Locked))
	for _, id := range p.Locked {
		locked[id] = true
	}
	for _, id := range p.Excluded {
		if locked[id] {
			return fmt.Errorf("%w: player %d both locked and excluded", ErrInvalidParams, id)
		}
	}
	return nil
}
