package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/albapepper/fpl-optimizer/internal/api/handler"
	"github.com/albapepper/fpl-optimizer/internal/cache"
	"github.com/albapepper/fpl-optimizer/internal/config"
)

// Deps are the services the routes are served from. Runs and DB are nil
// when no database is configured.
type Deps struct {
	Planner handler.Planner
	Runs    handler.RunStore
	DB      handler.HealthChecker
	Cache   *cache.Cache
	Logger  *slog.Logger
}

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(deps Deps, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(deps.Planner, deps.Runs, deps.DB, deps.Cache, deps.Logger)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Fixtures
		r.Get("/fdr", h.GetDifficulty)

		// Entries
		r.Route("/entry/{entryID}", func(r chi.Router) {
			r.Get("/", h.GetEntry)
			r.Post("/plan", h.PostPlan)
			r.Get("/runs/latest", h.GetLatestEntryRun)
		})

		// Fresh squads
		r.Post("/squad", h.PostSquad)

		// Run history
		r.Get("/runs/latest", h.GetLatestRun)
	})

	return r
}
