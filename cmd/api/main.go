// Command api is the FPL optimizer API server.
//
// Usage:
//
//	fplopt-api
//	API_PORT=8080 DATABASE_URL=postgres://localhost/fpl fplopt-api
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/fpl-optimizer/internal/api"
	"github.com/albapepper/fpl-optimizer/internal/cache"
	"github.com/albapepper/fpl-optimizer/internal/config"
	"github.com/albapepper/fpl-optimizer/internal/db"
	"github.com/albapepper/fpl-optimizer/internal/listener"
	"github.com/albapepper/fpl-optimizer/internal/maintenance"
	"github.com/albapepper/fpl-optimizer/internal/milp"
	"github.com/albapepper/fpl-optimizer/internal/planner"
	"github.com/albapepper/fpl-optimizer/internal/provider/fpl"
	"github.com/albapepper/fpl-optimizer/internal/squad"
	"github.com/albapepper/fpl-optimizer/internal/store"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	deps := api.Deps{Logger: logger}
	tasks := maintenance.Tasks{}

	// Connect to database (optional: run history is disabled without it)
	var recorder planner.Recorder
	if cfg.HasDatabase() {
		logger.Info("Connecting to database...")
		pool, err := db.New(ctx, cfg)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("Database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)

		runs := store.New(pool)
		recorder = runs
		deps.Runs = runs
		deps.DB = pool
		tasks.Runs = runs
	} else {
		logger.Info("Persistence disabled (no DATABASE_URL)")
	}

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	deps.Cache = appCache
	tasks.Cache = appCache
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Planner: FPL client, solver and optimizer
	client := fpl.NewClient(cfg.FPLBaseURL, cfg.FPLRequestsPerSecond, cfg.FPLTimeout, logger)
	optimizer := squad.NewOptimizer(milp.NewBranchAndBound(cfg.SolverMaxNodes, logger), cfg.OptimizerParams(), cfg.SolveTimeout, logger)
	plan := planner.New(client, optimizer, recorder, planner.Options{
		Window:                cfg.FDRWindow,
		CandidatesPerPosition: cfg.CandidatesPerPosition,
		SnapshotTTL:           cfg.SnapshotTTL,
	}, logger)
	deps.Planner = plan
	tasks.Snapshots = plan

	// Warm the snapshot so the first request does not pay for it
	if err := maintenance.WarmSnapshot(ctx, plan, appCache, logger); err != nil {
		logger.Warn("Initial snapshot load failed; retrying on first request", "error", err)
	}

	// Start maintenance tickers (cache sweep, run retention, snapshot warm)
	mcfg := maintenance.DefaultConfig()
	mcfg.SweepInterval = cfg.CacheSweepInterval
	mcfg.Retention = cfg.RunRetention
	if cfg.SnapshotTTL > 0 {
		mcfg.WarmInterval = cfg.SnapshotTTL
	}
	go maintenance.Start(ctx, tasks, mcfg, logger)

	// Reload the snapshot when another process publishes a refresh
	if cfg.HasDatabase() {
		go listener.Start(ctx, cfg.DatabaseURL, func(ctx context.Context, ev listener.RefreshEvent) {
			if err := maintenance.WarmSnapshot(ctx, plan, appCache, logger); err != nil {
				logger.Warn("Snapshot refresh failed", "reason", ev.Reason, "error", err)
			}
		}, logger)
	}

	// Create router
	router := api.NewRouter(deps, cfg)

	// Create HTTP server. Writes wait for a full solve.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.SolveTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting FPL optimizer API",
			"addr", srv.Addr,
			"environment", cfg.Environment,
			"persistence", cfg.HasDatabase())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
