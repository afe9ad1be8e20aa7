// Package planner loads a gameweek snapshot from the FPL API, narrows it to
// the players in contention, and runs the squad optimizer for an entry or a
// fresh squad. Runs are recorded when a Recorder is configured.
package planner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/albapepper/fpl-optimizer/internal/fixture"
	"github.com/albapepper/fpl-optimizer/internal/provider/fpl"
	"github.com/albapepper/fpl-optimizer/internal/squad"
	"github.com/albapepper/fpl-optimizer/internal/store"
)

var (
	// ErrUpstream wraps every failure to fetch from the FPL API.
	ErrUpstream = errors.New("fpl api request failed")
	// ErrSeasonOver is returned when no gameweek remains to plan for.
	ErrSeasonOver = errors.New("no upcoming gameweek")
)

// Source is the FPL API surface the planner reads. *fpl.Client satisfies it.
type Source interface {
	Bootstrap(ctx context.Context) (*fpl.Bootstrap, error)
	Fixtures(ctx context.Context) ([]fixture.Fixture, error)
	Entry(ctx context.Context, entryID int) (*fpl.Entry, error)
	Picks(ctx context.Context, entryID, gameweek int) (*fpl.Picks, error)
	Transfers(ctx context.Context, entryID int) ([]fpl.Transfer, error)
	History(ctx context.Context, entryID int) (*fpl.History, error)
	Live(ctx context.Context, gameweek int) (*fpl.Live, error)
}

// Recorder persists runs. *store.Runs satisfies it.
type Recorder interface {
	SaveRun(ctx context.Context, run *store.Run) error
	SavePlayers(ctx context.Context, gameweek int, players []squad.Player) error
}

// Options tune snapshot loading and candidate selection.
type Options struct {
	// Window is the number of gameweeks averaged for fixture difficulty.
	Window int
	// CandidatesPerPosition bounds the model size; zero keeps every player.
	CandidatesPerPosition int
	// SnapshotTTL is how long a loaded snapshot is reused; zero reloads
	// on every call.
	SnapshotTTL time.Duration
}

// Snapshot is the player dataset and fixture list for the next gameweek.
type Snapshot struct {
	Gameweek     int
	Current      int
	LastFinished int
	Events       []fpl.Event
	Teams        map[int]string
	Fixtures     []fixture.Fixture
	Players      *squad.Dataset
	LoadedAt     time.Time
}

// Planner is safe for concurrent use.
type Planner struct {
	source    Source
	optimizer *squad.Optimizer
	recorder  Recorder
	opts      Options
	logger    *slog.Logger
	now       func() time.Time

	mu   sync.Mutex
	snap *Snapshot
}

// New creates a Planner. recorder may be nil to disable persistence.
func New(source Source, optimizer *squad.Optimizer, recorder Recorder, opts Options, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Window < 1 {
		opts.Window = fixture.DefaultWindow
	}
	return &Planner{
		source:    source,
		optimizer: optimizer,
		recorder:  recorder,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Snapshot returns the cached snapshot, loading a new one when it is
// missing or older than the snapshot TTL.
func (p *Planner) Snapshot(ctx context.Context) (*Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snap != nil && p.opts.SnapshotTTL > 0 && p.now().Sub(p.snap.LoadedAt) < p.opts.SnapshotTTL {
		return p.snap, nil
	}
	snap, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	p.snap = snap
	return snap, nil
}

// Refresh loads a new snapshot regardless of age.
func (p *Planner) Refresh(ctx context.Context) (*Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	p.snap = snap
	return snap, nil
}

func (p *Planner) load(ctx context.Context) (*Snapshot, error) {
	start := p.now()

	var (
		boot     *fpl.Bootstrap
		fixtures []fixture.Fixture
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if boot, err = p.source.Bootstrap(gctx); err != nil {
			return fmt.Errorf("%w: bootstrap: %w", ErrUpstream, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if fixtures, err = p.source.Fixtures(gctx); err != nil {
			return fmt.Errorf("%w: fixtures: %w", ErrUpstream, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	gw, ok := fpl.NextEvent(boot.Events)
	if !ok {
		return nil, ErrSeasonOver
	}

	// Minutes come from the last completed gameweek; none exist pre-season.
	var live *fpl.Live
	last := fpl.LastFinished(boot.Events)
	if last > 0 {
		var err error
		if live, err = p.source.Live(ctx, last); err != nil {
			return nil, fmt.Errorf("%w: live gameweek %d: %w", ErrUpstream, last, err)
		}
	}

	players, err := fpl.BuildPlayers(boot, fixtures, live, gw, p.opts.Window)
	if err != nil {
		return nil, fmt.Errorf("map players: %w", err)
	}
	data, err := squad.NewDataset(players)
	if err != nil {
		return nil, err
	}

	teams := make(map[int]string, len(boot.Teams))
	for _, t := range boot.Teams {
		teams[t.ID] = t.Name
	}

	snap := &Snapshot{
		Gameweek:     gw,
		Current:      fpl.CurrentEvent(boot.Events),
		LastFinished: last,
		Events:       boot.Events,
		Teams:        teams,
		Fixtures:     fixtures,
		Players:      data,
		LoadedAt:     p.now(),
	}
	p.logger.Info("Snapshot loaded",
		"gameweek", gw,
		"last_finished", last,
		"players", data.Len(),
		"fixtures", len(fixtures),
		"duration", p.now().Sub(start).Round(time.Millisecond))
	return snap, nil
}

// Difficulty returns the fixture difficulty table for window gameweeks from
// start. Zero values default to the next gameweek and the configured window.
func (p *Planner) Difficulty(ctx context.Context, start, window int) (*fixture.Report, error) {
	begin := p.now()
	snap, err := p.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if start <= 0 {
		start = snap.Gameweek
	}
	if window <= 0 {
		window = p.opts.Window
	}
	report := fixture.Ratings(snap.Fixtures, snap.Teams, start, window)
	report.Duration = p.now().Sub(begin)
	return report, nil
}
