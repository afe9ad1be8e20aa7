// Package config provides centralized configuration loaded from environment
// variables, with optimizer weights optionally overridden by a YAML profile.
// Shared by both cmd/api and cmd/fplopt.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/albapepper/fpl-optimizer/internal/squad"
)

// --------------------------------------------------------------------------
// Table names, matching the schema in internal/db
// --------------------------------------------------------------------------

const (
	RunsTable            = "optimization_runs"
	PlayerSnapshotsTable = "player_snapshots"
)

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database (optional: persistence is disabled without it)
	DatabaseURL    string        `envconfig:"DATABASE_URL"`
	DBPoolMinConns int           `envconfig:"DB_POOL_MIN_CONNS" default:"1"`
	DBPoolMaxConns int           `envconfig:"DB_POOL_MAX_CONNS" default:"5"`
	DBPoolMaxLife  time.Duration `envconfig:"DB_POOL_MAX_LIFE" default:"30m"`

	// API server
	APIHost     string `envconfig:"API_HOST" default:"0.0.0.0"`
	APIPort     int    `envconfig:"API_PORT" default:"8000"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// CORS
	CORSAllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`

	// Rate limiting
	RateLimitEnabled  bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"100"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"60s"`

	// Cache
	CacheEnabled       bool          `envconfig:"CACHE_ENABLED" default:"true"`
	CacheSweepInterval time.Duration `envconfig:"CACHE_SWEEP_INTERVAL" default:"5m"`

	// Upstream FPL API
	FPLBaseURL           string        `envconfig:"FPL_BASE_URL" default:"https://fantasy.premierleague.com/api"`
	FPLRequestsPerSecond float64       `envconfig:"FPL_REQUESTS_PER_SECOND" default:"2"`
	FPLTimeout           time.Duration `envconfig:"FPL_TIMEOUT" default:"20s"`
	SnapshotTTL          time.Duration `envconfig:"SNAPSHOT_TTL" default:"10m"`

	// Solver
	SolveTimeout          time.Duration `envconfig:"SOLVE_TIMEOUT" default:"60s"`
	SolverMaxNodes        int           `envconfig:"SOLVER_MAX_NODES" default:"200000"`
	CandidatesPerPosition int           `envconfig:"CANDIDATES_PER_POSITION" default:"12"`

	// Run history
	RunRetention time.Duration `envconfig:"RUN_RETENTION" default:"720h"`

	// Optimizer weights
	OptimizerProfile string          `envconfig:"OPTIMIZER_PROFILE"`
	TransferHit      float64         `envconfig:"TRANSFER_HIT" default:"4"`
	OpposingPenalty  float64         `envconfig:"OPPOSING_PENALTY" default:"0.5"`
	FDRWeight        float64         `envconfig:"FDR_WEIGHT" default:"0.5"`
	FDRWindow        int             `envconfig:"FDR_WINDOW" default:"5"`
	BenchEligibility bool            `envconfig:"BENCH_ELIGIBILITY" default:"false"`
	BenchMinMinutes  int             `envconfig:"BENCH_MIN_MINUTES" default:"59"`
	MaxPerTeam       int             `envconfig:"MAX_PER_TEAM" default:"3"`
	Budget           decimal.Decimal `envconfig:"BUDGET" default:"100"`
}

// Load reads configuration from environment variables, applies the optimizer
// profile named by OPTIMIZER_PROFILE if any, and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if cfg.OptimizerProfile != "" {
		p, err := LoadProfile(cfg.OptimizerProfile)
		if err != nil {
			return nil, err
		}
		p.apply(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasDatabase reports whether run persistence is configured.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// Addr returns the API listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}

// SlogLevel maps LOG_LEVEL onto a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OptimizerParams returns the configured optimizer defaults.
func (c *Config) OptimizerParams() squad.Params {
	return squad.Params{
		TransferHit:      c.TransferHit,
		OpposingPenalty:  c.OpposingPenalty,
		FDRWeight:        c.FDRWeight,
		BenchEligibility: c.BenchEligibility,
		BenchMinMinutes:  c.BenchMinMinutes,
		MaxPerTeam:       c.MaxPerTeam,
		Budget:           c.Budget,
	}
}
