package planner

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/albapepper/fpl-optimizer/internal/provider/fpl"
	"github.com/albapepper/fpl-optimizer/internal/squad"
)

// Holding is one player in an entry's squad with its prices.
type Holding struct {
	squad.Player
	Starting      bool            `json:"starting"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	Captain       bool            `json:"captain,omitempty"`
	ViceCaptain   bool            `json:"vice_captain,omitempty"`
}

// EntryView is an entry's squad going into the next gameweek.
type EntryView struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Manager       string          `json:"manager"`
	OverallPoints int             `json:"overall_points"`
	OverallRank   int             `json:"overall_rank,omitempty"`
	Gameweek      int             `json:"gameweek"`
	Bank          decimal.Decimal `json:"bank"`
	FreeTransfers int             `json:"free_transfers"`
	SquadValue    decimal.Decimal `json:"squad_value"`
	Squad         []Holding       `json:"squad"`
	Warnings      []string        `json:"warnings,omitempty"`
}

// Summary returns a human-readable summary.
func (v *EntryView) Summary() string {
	return fmt.Sprintf("entry=%d name=%q gw=%d players=%d bank=%s value=%s free_transfers=%d",
		v.ID, v.Name, v.Gameweek, len(v.Squad), v.Bank.StringFixed(1), v.SquadValue.StringFixed(1), v.FreeTransfers)
}

// Entry returns the entry's squad with purchase and selling prices. The
// squad value counts selling prices plus the bank.
func (p *Planner) Entry(ctx context.Context, entryID int) (*EntryView, error) {
	snap, err := p.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var (
		info     *fpl.Entry
		roster   squad.Roster
		warnings []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if info, err = p.source.Entry(gctx, entryID); err != nil {
			return fmt.Errorf("%w: entry %d: %w", ErrUpstream, entryID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		roster, warnings, err = p.loadRoster(gctx, snap, entryID, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &EntryView{
		ID:            info.ID,
		Name:          info.Name,
		Manager:       info.PlayerFirstName + " " + info.PlayerLastName,
		Gameweek:      snap.Gameweek,
		Bank:          roster.Bank,
		FreeTransfers: roster.FreeTransfers,
		SquadValue:    roster.Bank,
		Warnings:      warnings,
	}
	if info.SummaryOverallPoints != nil {
		view.OverallPoints = *info.SummaryOverallPoints
	}
	if info.SummaryOverallRank != nil {
		view.OverallRank = *info.SummaryOverallRank
	}
	for _, pk := range roster.Picks {
		player, ok := snap.Players.Lookup(pk.PlayerID)
		if !ok {
			return nil, fmt.Errorf("%w: picked player %d", squad.ErrMissingPlayer, pk.PlayerID)
		}
		sale := squad.SellingPrice(pk.PurchasePrice, player.Price)
		view.SquadValue = view.SquadValue.Add(sale)
		view.Squad = append(view.Squad, Holding{
			Player:        player,
			Starting:      pk.Starting,
			PurchasePrice: pk.PurchasePrice,
			SellingPrice:  sale,
			Captain:       pk.Captain,
			ViceCaptain:   pk.ViceCaptain,
		})
	}
	return view, nil
}
