package fpl

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/albapepper/fpl-optimizer/internal/fixture"
	"github.com/albapepper/fpl-optimizer/internal/provider"
	"github.com/albapepper/fpl-optimizer/internal/squad"
)

// --------------------------------------------------------------------------
// Gameweeks
// --------------------------------------------------------------------------

// NextEvent returns the gameweek transfers are planned for: the event flagged
// is_next, else the first unfinished event. ok is false once the season is
// over.
func NextEvent(events []Event) (int, bool) {
	for _, e := range events {
		if e.IsNext {
			return e.ID, true
		}
	}
	for _, e := range sortedEvents(events) {
		if !e.Finished {
			return e.ID, true
		}
	}
	return 0, false
}

// CurrentEvent returns the gameweek flagged is_current, or 0 before the
// season starts.
func CurrentEvent(events []Event) int {
	for _, e := range events {
		if e.IsCurrent {
			return e.ID
		}
	}
	return 0
}

// LastFinished returns the latest finished gameweek, or 0 if none.
func LastFinished(events []Event) int {
	last := 0
	for _, e := range events {
		if e.Finished && e.ID > last {
			last = e.ID
		}
	}
	return last
}

func sortedEvents(events []Event) []Event {
	out := append([]Event(nil), events...)
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// --------------------------------------------------------------------------
// Players
// --------------------------------------------------------------------------

// PositionFromElementType maps FPL element types 1-4 onto positions.
func PositionFromElementType(t int) (squad.Position, error) {
	p := squad.Position(t)
	if !p.Valid() {
		return 0, fmt.Errorf("unknown element type %d", t)
	}
	return p, nil
}

// Money converts an FPL amount in tenths into a decimal.
func Money(tenths int) decimal.Decimal {
	return decimal.New(int64(tenths), -1)
}

// BuildPlayers maps bootstrap elements onto squad players for gameweek. The
// fixture difficulty is each team's average over window gameweeks from
// gameweek, and minutes come from live, the last completed gameweek (nil
// before the first one).
func BuildPlayers(b *Bootstrap, fixtures []fixture.Fixture, live *Live, gameweek, window int) ([]squad.Player, error) {
	teams := make(map[int]string, len(b.Teams))
	for _, t := range b.Teams {
		teams[t.ID] = t.Name
	}
	minutes := make(map[int]int)
	if live != nil {
		for _, el := range live.Elements {
			minutes[el.ID] = el.Stats.Minutes
		}
	}
	opponents := fixture.Opponents(fixtures, gameweek)
	difficulty := fixture.AverageDifficulty(fixtures, gameweek, window)

	players := make([]squad.Player, 0, len(b.Elements))
	for _, el := range b.Elements {
		pos, err := PositionFromElementType(el.ElementType)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", el.ID, err)
		}
		if el.NowCost <= 0 {
			continue
		}
		xp, _ := provider.ExtractValue(el.EPNext)
		players = append(players, squad.Player{
			ID:                el.ID,
			Name:              el.WebName,
			Position:          pos,
			Team:              teams[el.Team],
			TeamID:            el.Team,
			OpponentID:        opponents[el.Team],
			Price:             Money(el.NowCost),
			ExpectedPoints:    xp,
			Availability:      squad.ParseAvailability(el.Status),
			Minutes:           minutes[el.ID],
			FixtureDifficulty: difficulty[el.Team],
		})
	}
	return players, nil
}

// --------------------------------------------------------------------------
// Rosters
// --------------------------------------------------------------------------

// PurchasePrices returns the price each player was last bought for.
func PurchasePrices(transfers []Transfer) map[int]decimal.Decimal {
	sorted := append([]Transfer(nil), transfers...)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Event != sorted[b].Event {
			return sorted[a].Event < sorted[b].Event
		}
		return sorted[a].Time.Before(sorted[b].Time)
	})
	out := make(map[int]decimal.Decimal)
	for _, t := range sorted {
		out[t.ElementIn] = Money(t.ElementInCost)
	}
	return out
}

// BuildRoster maps an entry's picks onto a roster. Players never transferred
// in were bought at their current price.
func BuildRoster(picks *Picks, transfers []Transfer, data *squad.Dataset, freeTransfers int) (squad.Roster, error) {
	bought := PurchasePrices(transfers)
	roster := squad.Roster{
		Bank:          Money(picks.EntryHistory.Bank),
		FreeTransfers: freeTransfers,
	}
	for _, p := range picks.Picks {
		price, ok := bought[p.Element]
		if !ok {
			player, found := data.Lookup(p.Element)
			if !found {
				return squad.Roster{}, fmt.Errorf("%w: picked player %d", squad.ErrMissingPlayer, p.Element)
			}
			price = player.Price
		}
		roster.Picks = append(roster.Picks, squad.Pick{
			PlayerID:      p.Element,
			Starting:      p.Position <= squad.StartingSize,
			PurchasePrice: price,
			Captain:       p.IsCaptain,
			ViceCaptain:   p.IsViceCaptain,
		})
	}
	return roster, nil
}

// Chips that replace a gameweek's transfers without consuming free ones.
var freeChips = map[string]bool{"wildcard": true, "freehit": true}

// EstimateFreeTransfers replays an entry's history to estimate the free
// transfers banked for nextEvent. The first gameweek played builds the
// squad; every later gameweek spends free transfers and then banks one more,
// up to the league cap.
func EstimateFreeTransfers(h *History, nextEvent int) int {
	if h == nil || len(h.Current) == 0 {
		return 1
	}
	chips := make(map[int]bool)
	for _, c := range h.Chips {
		if freeChips[c.Name] {
			chips[c.Event] = true
		}
	}
	played := append([]EntryHistory(nil), h.Current...)
	sort.Slice(played, func(a, b int) bool { return played[a].Event < played[b].Event })

	ft := 0
	for k, gw := range played {
		if gw.Event >= nextEvent {
			break
		}
		if k > 0 && !chips[gw.Event] {
			ft -= min(gw.EventTransfers, ft)
		}
		ft = min(ft+1, squad.MaxFreeTransfers)
	}
	return max(ft, 1)
}
