package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/albapepper/fpl-optimizer/internal/cache"
	"github.com/albapepper/fpl-optimizer/internal/planner"
)

// SnapshotLoader reloads the gameweek snapshot. *planner.Planner satisfies it.
type SnapshotLoader interface {
	Refresh(ctx context.Context) (*planner.Snapshot, error)
}

// Cache key prefixes of responses derived from the snapshot.
var snapshotKeys = []string{"entry:", "fdr:"}

// WarmSnapshot reloads the snapshot and drops cached responses built from
// the previous one. Call it after a deadline passes or prices change.
func WarmSnapshot(ctx context.Context, loader SnapshotLoader, c *cache.Cache, logger *slog.Logger) error {
	start := time.Now()
	snap, err := loader.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh snapshot: %w", err)
	}

	dropped := 0
	if c != nil {
		for _, prefix := range snapshotKeys {
			dropped += c.Invalidate(prefix)
		}
	}
	logger.Info("Snapshot warmed",
		"gameweek", snap.Gameweek,
		"players", snap.Players.Len(),
		"invalidated", dropped,
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}
