package fpl

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/albapepper/fpl-optimizer/internal/fixture"
	"github.com/albapepper/fpl-optimizer/internal/squad"
)

func TestEvents(t *testing.T) {
	events := []Event{
		{ID: 1, Finished: true},
		{ID: 2, Finished: true, IsCurrent: true},
		{ID: 3},
	}
	if next, ok := NextEvent(events); !ok || next != 3 {
		t.Errorf("NextEvent without is_next = %d, %v; want 3, true", next, ok)
	}
	if got := LastFinished(events); got != 2 {
		t.Errorf("LastFinished = %d, want 2", got)
	}
	if got := CurrentEvent(events); got != 2 {
		t.Errorf("CurrentEvent = %d, want 2", got)
	}
	if _, ok := NextEvent([]Event{{ID: 38, Finished: true}}); ok {
		t.Error("NextEvent after the season should fail")
	}
}

func TestBuildPlayers(t *testing.T) {
	var b Bootstrap
	if err := json.Unmarshal([]byte(bootstrapJSON), &b); err != nil {
		t.Fatalf("decode bootstrap: %v", err)
	}
	var fs []fixture.Fixture
	if err := json.Unmarshal([]byte(fixturesJSON), &fs); err != nil {
		t.Fatalf("decode fixtures: %v", err)
	}
	live := &Live{Elements: []LiveElement{{ID: 10}}}
	live.Elements[0].Stats.Minutes = 90

	players, err := BuildPlayers(&b, fs, live, 3, 5)
	if err != nil {
		t.Fatalf("BuildPlayers: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("len = %d, want 2", len(players))
	}

	raya := players[0]
	if raya.Position != squad.Goalkeeper || raya.Team != "Arsenal" || !raya.Price.Equal(Money(55)) {
		t.Errorf("raya = %+v", raya)
	}
	if raya.ExpectedPoints != 4.5 || raya.OpponentID != 2 || raya.FixtureDifficulty != 2 || raya.Minutes != 90 {
		t.Errorf("raya xp/opponent/fdr/minutes = %v/%d/%v/%d", raya.ExpectedPoints, raya.OpponentID, raya.FixtureDifficulty, raya.Minutes)
	}
	wissa := players[1]
	if wissa.ExpectedPoints != 0 || wissa.Availability != squad.Injured || wissa.Minutes != 0 {
		t.Errorf("wissa = %+v", wissa)
	}

	b.Elements[0].ElementType = 7
	if _, err := BuildPlayers(&b, fs, nil, 3, 5); err == nil {
		t.Error("unknown element type should fail")
	}
}

func TestBuildRoster(t *testing.T) {
	data, err := squad.NewDataset([]squad.Player{
		{ID: 10, Position: squad.Goalkeeper, Price: Money(55), TeamID: 1},
		{ID: 20, Position: squad.Forward, Price: Money(62), TeamID: 2},
	})
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	day := func(d int) time.Time { return time.Date(2025, time.September, d, 10, 0, 0, 0, time.UTC) }
	transfers := []Transfer{
		{ElementIn: 20, ElementInCost: 58, Event: 4, Time: day(10)},
		{ElementIn: 20, ElementInCost: 60, Event: 6, Time: day(24)},
		{ElementIn: 99, ElementInCost: 45, Event: 5, Time: day(17)},
	}
	picks := &Picks{
		EntryHistory: EntryHistory{Bank: 15},
		Picks: []Pick{
			{Element: 10, Position: 1, IsCaptain: true},
			{Element: 20, Position: 12, IsViceCaptain: true},
		},
	}

	roster, err := BuildRoster(picks, transfers, data, 2)
	if err != nil {
		t.Fatalf("BuildRoster: %v", err)
	}
	if !roster.Bank.Equal(Money(15)) || roster.FreeTransfers != 2 {
		t.Errorf("bank, ft = %s, %d", roster.Bank, roster.FreeTransfers)
	}
	gk, _ := roster.Pick(10)
	if !gk.Starting || !gk.Captain || !gk.PurchasePrice.Equal(Money(55)) {
		t.Errorf("pick 10 = %+v", gk)
	}
	fwd, _ := roster.Pick(20)
	if fwd.Starting || !fwd.ViceCaptain || !fwd.PurchasePrice.Equal(Money(60)) {
		t.Errorf("pick 20 = %+v, want bench at latest purchase 6.0", fwd)
	}

	picks.Picks = append(picks.Picks, Pick{Element: 77, Position: 2})
	if _, err := BuildRoster(picks, transfers, data, 1); !errors.Is(err, squad.ErrMissingPlayer) {
		t.Errorf("unknown pick: err = %v, want ErrMissingPlayer", err)
	}
}

func TestEstimateFreeTransfers(t *testing.T) {
	tests := []struct {
		name    string
		history *History
		next    int
		want    int
	}{
		{"no history", nil, 1, 1},
		{"after first gameweek", &History{Current: []EntryHistory{{Event: 1, EventTransfers: 0}}}, 2, 1},
		{"banked two", &History{Current: []EntryHistory{{Event: 1}, {Event: 2}}}, 3, 2},
		{"spent one", &History{Current: []EntryHistory{{Event: 1}, {Event: 2}, {Event: 3, EventTransfers: 1}}}, 4, 2},
		{"took a hit", &History{Current: []EntryHistory{{Event: 1}, {Event: 2, EventTransfers: 3}}}, 3, 1},
		{"capped", &History{Current: []EntryHistory{{Event: 1}, {Event: 2}, {Event: 3}, {Event: 4}, {Event: 5}, {Event: 6}, {Event: 7}}}, 8, 5},
		{"wildcard keeps bank", &History{
			Current: []EntryHistory{{Event: 1}, {Event: 2}, {Event: 3, EventTransfers: 9}},
			Chips:   []Chip{{Name: "wildcard", Event: 3}},
		}, 4, 3},
		{"ignores future", &History{Current: []EntryHistory{{Event: 1}, {Event: 2}, {Event: 3}}}, 3, 2},
	}
	for _, tt := range tests {
		if got := EstimateFreeTransfers(tt.history, tt.next); got != tt.want {
			t.Errorf("%s: EstimateFreeTransfers = %d, want %d", tt.name, got, tt.want)
		}
	}
}
