// Package handler provides HTTP handlers for all API endpoints.
// Handlers call the planner directly; there is no service layer.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/albapepper/fpl-optimizer/internal/api/respond"
	"github.com/albapepper/fpl-optimizer/internal/cache"
	"github.com/albapepper/fpl-optimizer/internal/fixture"
	"github.com/albapepper/fpl-optimizer/internal/planner"
	"github.com/albapepper/fpl-optimizer/internal/store"
)

// Planner is the planning surface the handlers use. *planner.Planner
// satisfies it.
type Planner interface {
	PlanTransfers(ctx context.Context, entryID int, req planner.Request) (*planner.Plan, error)
	BuildSquad(ctx context.Context, req planner.Request) (*planner.Plan, error)
	Entry(ctx context.Context, entryID int) (*planner.EntryView, error)
	Difficulty(ctx context.Context, start, window int) (*fixture.Report, error)
}

// RunStore reads recorded runs. *store.Runs satisfies it.
type RunStore interface {
	LatestRun(ctx context.Context, entryID int) (*store.Run, error)
}

// HealthChecker reports database reachability. *db.Pool satisfies it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds shared dependencies for all endpoint handlers. runs and db
// are nil when no database is configured.
type Handler struct {
	planner Planner
	runs    RunStore
	db      HealthChecker
	cache   *cache.Cache
	logger  *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(p Planner, runs RunStore, db HealthChecker, c *cache.Cache, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{
		planner: p,
		runs:    runs,
		db:      db,
		cache:   c,
		logger:  logger,
	}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":        "FPL Optimizer API",
		"version":     "1.0.0",
		"status":      "running",
		"persistence": h.runs != nil,
		"endpoints": []string{
			"GET /api/v1/entry/{entryID}",
			"POST /api/v1/entry/{entryID}/plan",
			"GET /api/v1/entry/{entryID}/runs/latest",
			"POST /api/v1/squad",
			"GET /api/v1/fdr",
			"GET /api/v1/runs/latest",
		},
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"database":  "disabled",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	if err := h.db.HealthCheck(r.Context()); err != nil {
		h.logger.Warn("Database health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
