package config

import (
	"errors"
	"fmt"
)

// Validate checks that values are usable.
func (c *Config) Validate() error {
	if c.APIPort < 1 || c.APIPort > 65535 {
		return fmt.Errorf("API_PORT must be between 1 and 65535, got %d", c.APIPort)
	}
	if c.TransferHit < 0 || c.OpposingPenalty < 0 || c.FDRWeight < 0 {
		return errors.New("optimizer weights must be non-negative")
	}
	if c.FDRWindow < 1 {
		return fmt.Errorf("FDR_WINDOW must be >= 1, got %d", c.FDRWindow)
	}
	if c.MaxPerTeam < 1 {
		return fmt.Errorf("MAX_PER_TEAM must be >= 1, got %d", c.MaxPerTeam)
	}
	if !c.Budget.IsPositive() {
		return fmt.Errorf("BUDGET must be positive, got %s", c.Budget)
	}
	if c.BenchMinMinutes < 0 {
		return fmt.Errorf("BENCH_MIN_MINUTES must be >= 0, got %d", c.BenchMinMinutes)
	}
	if c.CandidatesPerPosition < 0 {
		return fmt.Errorf("CANDIDATES_PER_POSITION must be >= 0, got %d", c.CandidatesPerPosition)
	}
	if c.SolverMaxNodes < 0 {
		return fmt.Errorf("SOLVER_MAX_NODES must be >= 0, got %d", c.SolverMaxNodes)
	}
	if c.FPLRequestsPerSecond <= 0 {
		return fmt.Errorf("FPL_REQUESTS_PER_SECOND must be positive, got %v", c.FPLRequestsPerSecond)
	}
	if c.RateLimitEnabled && (c.RateLimitRequests < 1 || c.RateLimitWindow <= 0) {
		return errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	return nil
}
