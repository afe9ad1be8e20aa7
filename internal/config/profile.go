package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Profile is a YAML file of optimizer weights. Only the keys present
// override the environment. Values may reference environment variables as
// ${NAME}.
//
//	transfer_hit: 4
//	opposing_penalty: 1.0
//	fdr_weight: 0.25
//	fdr_window: 6
//	bench_eligibility: true
type Profile struct {
	TransferHit           *float64 `yaml:"transfer_hit"`
	OpposingPenalty       *float64 `yaml:"opposing_penalty"`
	FDRWeight             *float64 `yaml:"fdr_weight"`
	FDRWindow             *int     `yaml:"fdr_window"`
	BenchEligibility      *bool    `yaml:"bench_eligibility"`
	BenchMinMinutes       *int     `yaml:"bench_min_minutes"`
	MaxPerTeam            *int     `yaml:"max_per_team"`
	Budget                *float64 `yaml:"budget"`
	CandidatesPerPosition *int     `yaml:"candidates_per_position"`
}

// LoadProfile reads and parses a profile file.
func LoadProfile(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read optimizer profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &p); err != nil {
		return nil, fmt.Errorf("parse optimizer profile %s: %w", path, err)
	}
	return &p, nil
}

func (p *Profile) apply(c *Config) {
	if p.TransferHit != nil {
		c.TransferHit = *p.TransferHit
	}
	if p.OpposingPenalty != nil {
		c.OpposingPenalty = *p.OpposingPenalty
	}
	if p.FDRWeight != nil {
		c.FDRWeight = *p.FDRWeight
	}
	if p.FDRWindow != nil {
		c.FDRWindow = *p.FDRWindow
	}
	if p.BenchEligibility != nil {
		c.BenchEligibility = *p.BenchEligibility
	}
	if p.BenchMinMinutes != nil {
		c.BenchMinMinutes = *p.BenchMinMinutes
	}
	if p.MaxPerTeam != nil {
		c.MaxPerTeam = *p.MaxPerTeam
	}
	if p.Budget != nil {
		c.Budget = decimal.NewFromFloat(*p.Budget).Round(1)
	}
	if p.CandidatesPerPosition != nil {
		c.CandidatesPerPosition = *p.CandidatesPerPosition
	}
}
