// Package maintenance runs periodic background tasks as Go tickers: cache
// sweeping, run-history retention and snapshot warming.
package maintenance

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/albapepper/fpl-optimizer/internal/cache"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	SweepInterval time.Duration // Expired cache entries
	PruneInterval time.Duration // Runs older than Retention
	WarmInterval  time.Duration // Reload the gameweek snapshot
	Retention     time.Duration
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		SweepInterval: 5 * time.Minute,
		PruneInterval: 6 * time.Hour,
		WarmInterval:  30 * time.Minute,
		Retention:     30 * 24 * time.Hour,
	}
}

// Pruner deletes old runs. *store.Runs satisfies it.
type Pruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// Tasks are the targets of the tickers. A nil target disables its task.
type Tasks struct {
	Cache     *cache.Cache
	Runs      Pruner
	Snapshots SnapshotLoader
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, tasks Tasks, cfg Config, logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger.Info("Maintenance tickers started",
		"sweep", cfg.SweepInterval,
		"prune", cfg.PruneInterval,
		"warm", cfg.WarmInterval)

	tickers := make([]*time.Ticker, 0, 3)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	// Sweep: drop expired cache entries
	if cfg.SweepInterval > 0 && tasks.Cache != nil {
		t := time.NewTicker(cfg.SweepInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, "sweep", func() { sweep(tasks.Cache, logger) })
	}

	// Prune: delete run history past retention
	if cfg.PruneInterval > 0 && cfg.Retention > 0 && tasks.Runs != nil {
		t := time.NewTicker(cfg.PruneInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, "prune", func() { prune(ctx, tasks.Runs, cfg.Retention, logger) })
	}

	// Warm: reload prices, availability and fixtures ahead of requests
	if cfg.WarmInterval > 0 && tasks.Snapshots != nil {
		t := time.NewTicker(cfg.WarmInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, "warm", func() {
			if err := WarmSnapshot(ctx, tasks.Snapshots, tasks.Cache, logger); err != nil {
				logger.Warn("Warm: snapshot reload failed", "error", err)
			}
		})
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, name string, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

func sweep(c *cache.Cache, logger *slog.Logger) {
	if n := c.Sweep(); n > 0 {
		logger.Info("Sweep: dropped expired cache entries", "count", n)
	}
}

func prune(ctx context.Context, runs Pruner, retention time.Duration, logger *slog.Logger) {
	n, err := runs.Prune(ctx, retention)
	if err != nil {
		logger.Warn("Prune: failed to delete old runs", "error", err)
		return
	}
	if n > 0 {
		logger.Info("Prune: deleted old runs", "count", n, "retention", retention)
	}
}
