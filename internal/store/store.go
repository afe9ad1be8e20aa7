// Package store persists optimization runs and the player snapshots they
// were solved against. All statements are prepared by internal/db.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/albapepper/fpl-optimizer/internal/db"
	"github.com/albapepper/fpl-optimizer/internal/squad"
)

// ErrNotFound is returned when no run matches a lookup.
var ErrNotFound = errors.New("run not found")

// Querier is the subset of *pgxpool.Pool the store needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Run is one recorded optimization. Params and Result hold the JSON the
// run was requested with and produced.
type Run struct {
	ID              uuid.UUID       `json:"id"`
	Kind            string          `json:"kind"`
	EntryID         *int            `json:"entry_id,omitempty"`
	Gameweek        int             `json:"gameweek"`
	Status          string          `json:"status"`
	Objective       float64         `json:"objective"`
	ProjectedPoints float64         `json:"projected_points"`
	Params          json.RawMessage `json:"params"`
	Result          json.RawMessage `json:"result"`
	Duration        time.Duration   `json:"duration_ns"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Runs reads and writes optimization_runs and player_snapshots.
type Runs struct {
	q Querier
}

// New creates a store over q.
func New(q Querier) *Runs {
	return &Runs{q: q}
}

// SaveRun inserts run, assigning an ID when it has none and filling
// CreatedAt from the database.
func (s *Runs) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	params, result := []byte(run.Params), []byte(run.Result)
	if len(params) == 0 {
		params = []byte("{}")
	}
	if len(result) == 0 {
		result = []byte("{}")
	}
	err := s.q.QueryRow(ctx, db.StmtInsertRun,
		run.ID, run.Kind, run.EntryID, run.Gameweek, run.Status,
		run.Objective, run.ProjectedPoints, params, result,
		run.Duration.Milliseconds(),
	).Scan(&run.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// LatestRun returns the most recent run for entryID, or across all runs
// when entryID is zero.
func (s *Runs) LatestRun(ctx context.Context, entryID int) (*Run, error) {
	var row pgx.Row
	if entryID > 0 {
		row = s.q.QueryRow(ctx, db.StmtLatestEntryRun, entryID)
	} else {
		row = s.q.QueryRow(ctx, db.StmtLatestRun)
	}

	var (
		run            Run
		params, result []byte
		durationMS     int64
	)
	err := row.Scan(&run.ID, &run.Kind, &run.EntryID, &run.Gameweek, &run.Status,
		&run.Objective, &run.ProjectedPoints, &params, &result, &durationMS, &run.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	run.Params = json.RawMessage(params)
	run.Result = json.RawMessage(result)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}

// Prune deletes runs older than retention and returns how many were removed.
func (s *Runs) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	tag, err := s.q.Exec(ctx, db.StmtPruneRuns, time.Now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SavePlayers upserts the gameweek's player snapshot in one batch.
func (s *Runs) SavePlayers(ctx context.Context, gameweek int, players []squad.Player) error {
	if len(players) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range players {
		batch.Queue(db.StmtUpsertPlayer,
			gameweek, p.ID, p.Name, p.TeamID, p.Position.String(), p.Price,
			p.ExpectedPoints, p.Availability.String(), p.Minutes, p.FixtureDifficulty)
	}

	br := s.q.SendBatch(ctx, batch)
	defer br.Close()
	for _, p := range players {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert player %d: %w", p.ID, err)
		}
	}
	return nil
}
