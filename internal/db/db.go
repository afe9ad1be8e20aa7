// Package db provides a pgxpool-based connection pool with prepared statement
// registration, schema migration and health checking.
package db

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/fpl-optimizer/internal/config"
)

//go:embed schema.sql
var schema string

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New migrates the schema, then creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	// Statements are prepared on connect, so the tables must exist first.
	if err := Migrate(ctx, cfg.DatabaseURL); err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Migrate applies the embedded schema over a single connection. Every
// statement is idempotent.
func Migrate(ctx context.Context, databaseURL string) error {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect for migration: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// Statement names used by internal/store.
const (
	StmtInsertRun      = "insert_run"
	StmtLatestRun      = "latest_run"
	StmtLatestEntryRun = "latest_entry_run"
	StmtPruneRuns      = "prune_runs"
	StmtUpsertPlayer   = "upsert_player_snapshot"
)

const runColumns = "id, kind, entry_id, gameweek, status, objective, projected_points, params, result, duration_ms, created_at"

func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Runs
		StmtInsertRun: `INSERT INTO ` + config.RunsTable + ` (id, kind, entry_id, gameweek, status, objective, projected_points, params, result, duration_ms)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING created_at`,
		StmtLatestRun:      "SELECT " + runColumns + " FROM " + config.RunsTable + " ORDER BY created_at DESC LIMIT 1",
		StmtLatestEntryRun: "SELECT " + runColumns + " FROM " + config.RunsTable + " WHERE entry_id = $1 ORDER BY created_at DESC LIMIT 1",
		StmtPruneRuns:      "DELETE FROM " + config.RunsTable + " WHERE created_at < $1",

		// Player snapshots
		StmtUpsertPlayer: `INSERT INTO ` + config.PlayerSnapshotsTable + ` (gameweek, player_id, name, team_id, position, price, expected_points, status, minutes, fixture_difficulty)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (gameweek, player_id) DO UPDATE SET
				name = EXCLUDED.name,
				team_id = EXCLUDED.team_id,
				position = EXCLUDED.position,
				price = EXCLUDED.price,
				expected_points = EXCLUDED.expected_points,
				status = EXCLUDED.status,
				minutes = EXCLUDED.minutes,
				fixture_difficulty = EXCLUDED.fixture_difficulty,
				updated_at = NOW()`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
