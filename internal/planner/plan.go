package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/albapepper/fpl-optimizer/internal/milp"
	"github.com/albapepper/fpl-optimizer/internal/provider/fpl"
	"github.com/albapepper/fpl-optimizer/internal/squad"
	"github.com/albapepper/fpl-optimizer/internal/store"
)

// Run kinds.
const (
	KindTransfers = "transfers"
	KindSquad     = "squad"
)

// StatusDegenerate is the recorded status of a solve the solver reported
// optimal but whose assignment breaks a squad invariant.
const StatusDegenerate = "degenerate"

// Request overrides the optimizer defaults for one run. Nil fields keep the
// default. Lock and Exclude take player names or IDs.
type Request struct {
	FreeTransfers    *int             `json:"free_transfers,omitempty"`
	TransferHit      *float64         `json:"transfer_hit,omitempty"`
	OpposingPenalty  *float64         `json:"opposing_penalty,omitempty"`
	FDRWeight        *float64         `json:"fdr_weight,omitempty"`
	BenchEligibility *bool            `json:"bench_eligibility,omitempty"`
	BenchMinMinutes  *int             `json:"bench_min_minutes,omitempty"`
	MaxPerTeam       *int             `json:"max_per_team,omitempty"`
	Budget           *decimal.Decimal `json:"budget,omitempty"`
	Lock             []string         `json:"lock,omitempty"`
	Exclude          []string         `json:"exclude,omitempty"`
}

func (r Request) apply(base squad.Params) squad.Params {
	p := base
	if r.TransferHit != nil {
		p.TransferHit = *r.TransferHit
	}
	if r.OpposingPenalty != nil {
		p.OpposingPenalty = *r.OpposingPenalty
	}
	if r.FDRWeight != nil {
		p.FDRWeight = *r.FDRWeight
	}
	if r.BenchEligibility != nil {
		p.BenchEligibility = *r.BenchEligibility
	}
	if r.BenchMinMinutes != nil {
		p.BenchMinMinutes = *r.BenchMinMinutes
	}
	if r.MaxPerTeam != nil {
		p.MaxPerTeam = *r.MaxPerTeam
	}
	if r.Budget != nil {
		p.Budget = *r.Budget
	}
	return p
}

// Plan is the outcome of one planner run.
type Plan struct {
	RunID      string        `json:"run_id,omitempty"`
	Kind       string        `json:"kind"`
	EntryID    int           `json:"entry_id,omitempty"`
	Gameweek   int           `json:"gameweek"`
	Players    int           `json:"players"`
	Candidates int           `json:"candidates"`
	Params     squad.Params  `json:"params"`
	Roster     squad.Roster  `json:"roster"`
	Result     *squad.Result `json:"result"`
	Warnings   []string      `json:"warnings,omitempty"`
	Duration   time.Duration `json:"-"`
}

// Summary returns a human-readable summary.
func (p *Plan) Summary() string {
	s := fmt.Sprintf("kind=%s gw=%d players=%d candidates=%d warnings=%d dur=%s",
		p.Kind, p.Gameweek, p.Players, p.Candidates, len(p.Warnings), p.Duration.Round(time.Millisecond))
	if p.EntryID > 0 {
		s = fmt.Sprintf("entry=%d %s", p.EntryID, s)
	}
	if p.Result != nil {
		s += " " + p.Result.Summary()
	}
	return s
}

// PlanTransfers optimizes the next gameweek's transfers, lineup and
// captaincy for an entry.
func (p *Planner) PlanTransfers(ctx context.Context, entryID int, req Request) (*Plan, error) {
	snap, err := p.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	roster, warnings, err := p.loadRoster(ctx, snap, entryID, req.FreeTransfers)
	if err != nil {
		return nil, err
	}
	plan := &Plan{Kind: KindTransfers, EntryID: entryID, Warnings: warnings}
	return p.run(ctx, snap, roster, req, plan)
}

// BuildSquad selects a fresh squad within the budget.
func (p *Planner) BuildSquad(ctx context.Context, req Request) (*Plan, error) {
	snap, err := p.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return p.run(ctx, snap, squad.Roster{}, req, &Plan{Kind: KindSquad})
}

func (p *Planner) run(ctx context.Context, snap *Snapshot, roster squad.Roster, req Request, plan *Plan) (*Plan, error) {
	start := p.now()
	params := req.apply(p.optimizer.Params())

	var err error
	if params.Locked, err = ResolvePlayers(snap.Players, req.Lock); err != nil {
		return nil, fmt.Errorf("resolve locked players: %w", err)
	}
	if params.Excluded, err = ResolvePlayers(snap.Players, req.Exclude); err != nil {
		return nil, fmt.Errorf("resolve excluded players: %w", err)
	}
	if params.BenchEligibility && snap.LastFinished == 0 {
		params.BenchEligibility = false
		plan.Warnings = append(plan.Warnings, "no gameweek finished yet; bench eligibility disabled")
	}

	cands, err := squad.Candidates(snap.Players, roster, params, p.opts.CandidatesPerPosition)
	if err != nil {
		return nil, err
	}

	plan.Gameweek = snap.Gameweek
	plan.Players = snap.Players.Len()
	plan.Candidates = cands.Len()
	plan.Params = params
	plan.Roster = roster

	p.logger.Info("Planning",
		"kind", plan.Kind,
		"entry", plan.EntryID,
		"gameweek", plan.Gameweek,
		"candidates", plan.Candidates,
		"roster", len(roster.Picks))

	res, solveErr := p.optimizer.OptimizeWith(ctx, cands, roster, params)
	plan.Result = res
	plan.Duration = p.now().Sub(start)

	status := milp.StatusOptimal.String()
	recorded := res
	var oe *squad.OptimizationError
	switch {
	case solveErr == nil:
	case errors.As(solveErr, &oe) && errors.Is(solveErr, squad.ErrDegenerate):
		status = StatusDegenerate
		recorded = oe.Result
		if recorded == nil {
			recorded = &squad.Result{Status: oe.Status, Violations: oe.Violations}
		}
	case errors.As(solveErr, &oe):
		status = oe.Status.String()
	default:
		return nil, solveErr
	}
	p.record(ctx, snap, plan, status, recorded)
	if solveErr != nil {
		return nil, solveErr
	}
	return plan, nil
}

// record persists the run. Failures are logged and noted on the plan; a
// run is never failed because it could not be stored.
func (p *Planner) record(ctx context.Context, snap *Snapshot, plan *Plan, status string, res *squad.Result) {
	if p.recorder == nil {
		return
	}
	params, err := json.Marshal(plan.Params)
	if err != nil {
		p.logger.Warn("Run not recorded", "error", err)
		return
	}
	result := []byte("{}")
	if res != nil {
		if result, err = json.Marshal(res); err != nil {
			p.logger.Warn("Run not recorded", "error", err)
			return
		}
	}

	run := &store.Run{
		Kind:     plan.Kind,
		Gameweek: plan.Gameweek,
		Status:   status,
		Params:   params,
		Result:   result,
		Duration: plan.Duration,
	}
	if plan.EntryID > 0 {
		entry := plan.EntryID
		run.EntryID = &entry
	}
	if res != nil {
		run.Objective = res.Objective
		run.ProjectedPoints = res.ProjectedPoints
	}

	if err := p.recorder.SavePlayers(ctx, snap.Gameweek, snap.Players.Players()); err != nil {
		p.logger.Warn("Player snapshot not recorded", "gameweek", snap.Gameweek, "error", err)
	}
	if err := p.recorder.SaveRun(ctx, run); err != nil {
		p.logger.Warn("Run not recorded", "error", err)
		plan.Warnings = append(plan.Warnings, "run not recorded")
		return
	}
	plan.RunID = run.ID.String()
}

// loadRoster builds the entry's roster going into the next gameweek. An
// entry with no gameweek played yet has an empty roster. A free hit played
// in the current gameweek reverts, so the previous gameweek's squad is used.
func (p *Planner) loadRoster(ctx context.Context, snap *Snapshot, entryID int, freeTransfers *int) (squad.Roster, []string, error) {
	var warnings []string
	if snap.Current == 0 {
		warnings = append(warnings, "season not started; building an initial squad")
		return squad.Roster{}, warnings, nil
	}

	var (
		picks     *fpl.Picks
		transfers []fpl.Transfer
		history   *fpl.History
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if picks, err = p.source.Picks(gctx, entryID, snap.Current); err != nil {
			return fmt.Errorf("%w: picks for entry %d: %w", ErrUpstream, entryID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if transfers, err = p.source.Transfers(gctx, entryID); err != nil {
			return fmt.Errorf("%w: transfers for entry %d: %w", ErrUpstream, entryID, err)
		}
		return nil
	})
	if freeTransfers == nil {
		g.Go(func() error {
			var err error
			if history, err = p.source.History(gctx, entryID); err != nil {
				return fmt.Errorf("%w: history for entry %d: %w", ErrUpstream, entryID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return squad.Roster{}, nil, err
	}

	if picks.ActiveChip != nil && strings.EqualFold(*picks.ActiveChip, "freehit") && snap.Current > 1 {
		prev := snap.Current - 1
		var err error
		if picks, err = p.source.Picks(ctx, entryID, prev); err != nil {
			return squad.Roster{}, nil, fmt.Errorf("%w: picks for entry %d: %w", ErrUpstream, entryID, err)
		}
		warnings = append(warnings, fmt.Sprintf("free hit played in gameweek %d; planning from the gameweek %d squad", snap.Current, prev))
	}

	var ft int
	if freeTransfers != nil {
		ft = *freeTransfers
	} else {
		ft = fpl.EstimateFreeTransfers(history, snap.Gameweek)
	}

	roster, err := fpl.BuildRoster(picks, transfers, snap.Players, ft)
	if err != nil {
		return squad.Roster{}, nil, err
	}
	if err := roster.Validate(); err != nil {
		return squad.Roster{}, nil, err
	}
	return roster, warnings, nil
}
