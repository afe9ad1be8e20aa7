// Command fplopt is the FPL squad optimizer CLI.
//
// Usage:
//
//	fplopt transfers 123456
//	fplopt transfers 123456 --free-transfers 2 --hit 4 --lock Salah --exclude 351
//	fplopt squad --budget 100 --json
//	fplopt fdr --window 6
//	fplopt entry 123456
//	fplopt migrate
//	fplopt refresh --reason deadline
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/albapepper/fpl-optimizer/internal/config"
	"github.com/albapepper/fpl-optimizer/internal/db"
	"github.com/albapepper/fpl-optimizer/internal/listener"
	"github.com/albapepper/fpl-optimizer/internal/milp"
	"github.com/albapepper/fpl-optimizer/internal/planner"
	"github.com/albapepper/fpl-optimizer/internal/provider/fpl"
	"github.com/albapepper/fpl-optimizer/internal/squad"
	"github.com/albapepper/fpl-optimizer/internal/store"
)

// Logs go to stderr so --json output stays parseable.
var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

var asJSON bool

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "fplopt",
		Short:        "Fantasy Premier League squad and transfer optimizer",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	root.AddCommand(transfersCmd())
	root.AddCommand(squadCmd())
	root.AddCommand(fdrCmd())
	root.AddCommand(entryCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(refreshCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// transfers command
// --------------------------------------------------------------------------

func transfersCmd() *cobra.Command {
	var (
		opts   requestFlags
		free   int
		record bool
	)
	cmd := &cobra.Command{
		Use:   "transfers <entry-id>",
		Short: "Plan next gameweek's transfers, lineup and captain for an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			req, err := opts.request(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("free-transfers") {
				if free < 0 {
					return fmt.Errorf("--free-transfers must be >= 0")
				}
				req.FreeTransfers = &free
			}
			return runPlanner(record, func(ctx context.Context, p *planner.Planner) error {
				plan, err := p.PlanTransfers(ctx, entryID, req)
				if err != nil {
					return err
				}
				logger.Info("Transfers planned", "summary", plan.Summary())
				return output(plan, func(w io.Writer) error { return printPlan(w, plan) })
			})
		},
	}
	opts.register(cmd)
	cmd.Flags().IntVar(&free, "free-transfers", 0, "Free transfers available (default: estimated from history)")
	cmd.Flags().BoolVar(&record, "record", false, "Store the run (requires DATABASE_URL)")
	return cmd
}

// --------------------------------------------------------------------------
// squad command
// --------------------------------------------------------------------------

func squadCmd() *cobra.Command {
	var (
		opts   requestFlags
		record bool
	)
	cmd := &cobra.Command{
		Use:   "squad",
		Short: "Build the best fresh squad within the budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(cmd)
			if err != nil {
				return err
			}
			return runPlanner(record, func(ctx context.Context, p *planner.Planner) error {
				plan, err := p.BuildSquad(ctx, req)
				if err != nil {
					return err
				}
				logger.Info("Squad built", "summary", plan.Summary())
				return output(plan, func(w io.Writer) error { return printPlan(w, plan) })
			})
		},
	}
	opts.register(cmd)
	cmd.Flags().BoolVar(&record, "record", false, "Store the run (requires DATABASE_URL)")
	return cmd
}

// --------------------------------------------------------------------------
// fdr command
// --------------------------------------------------------------------------

func fdrCmd() *cobra.Command {
	var start, window int
	cmd := &cobra.Command{
		Use:   "fdr",
		Short: "Show fixture difficulty by team, easiest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if start < 0 || window < 0 {
				return fmt.Errorf("--start and --window must be >= 0")
			}
			return runPlanner(false, func(ctx context.Context, p *planner.Planner) error {
				report, err := p.Difficulty(ctx, start, window)
				if err != nil {
					return err
				}
				logger.Info("Difficulty computed", "summary", report.Summary())
				return output(report, func(w io.Writer) error { return printDifficulty(w, report) })
			})
		},
	}
	cmd.Flags().IntVar(&start, "start", 0, "First gameweek (default: next gameweek)")
	cmd.Flags().IntVar(&window, "window", 0, "Number of gameweeks (default: FDR_WINDOW)")
	return cmd
}

// --------------------------------------------------------------------------
// entry command
// --------------------------------------------------------------------------

func entryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entry <entry-id>",
		Short: "Show an entry's squad, bank and free transfers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			return runPlanner(false, func(ctx context.Context, p *planner.Planner) error {
				view, err := p.Entry(ctx, entryID)
				if err != nil {
					return err
				}
				logger.Info("Entry loaded", "summary", view.Summary())
				return output(view, func(w io.Writer) error { return printEntry(w, view) })
			})
		},
	}
}

// --------------------------------------------------------------------------
// migrate command
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the run history tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cfg.HasDatabase() {
				return fmt.Errorf("DATABASE_URL is required")
			}
			if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
				return err
			}
			logger.Info("Schema applied")
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// refresh command
// --------------------------------------------------------------------------

func refreshCmd() *cobra.Command {
	var reason string
	var gameweek int

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Tell running API servers to reload the gameweek snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cfg.HasDatabase() {
				return fmt.Errorf("DATABASE_URL is required")
			}
			conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer conn.Close(context.Background())

			if err := listener.Notify(ctx, conn, listener.RefreshEvent{Reason: reason, Gameweek: gameweek}); err != nil {
				return err
			}
			logger.Info("Refresh published", "channel", listener.Channel, "reason", reason)
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "manual", "Why the snapshot is stale")
	cmd.Flags().IntVar(&gameweek, "gameweek", 0, "Gameweek the refresh concerns (0 for unspecified)")
	return cmd
}

// --------------------------------------------------------------------------
// Request flags
// --------------------------------------------------------------------------

type requestFlags struct {
	hit, opposing, fdrWeight float64
	benchEligibility         bool
	benchMinutes, maxPerTeam int
	budget                   string
	lock, exclude            []string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.hit, "hit", squad.DefaultTransferHit, "Points cost per paid transfer")
	cmd.Flags().Float64Var(&f.opposing, "opposing", squad.DefaultOpposingPenalty, "Penalty per pair of starters facing each other")
	cmd.Flags().Float64Var(&f.fdrWeight, "fdr-weight", squad.DefaultFDRWeight, "Weight of the fixture difficulty adjustment")
	cmd.Flags().BoolVar(&f.benchEligibility, "bench-eligibility", false, "Require substitutes to have played in the last gameweek")
	cmd.Flags().IntVar(&f.benchMinutes, "bench-minutes", squad.DefaultBenchMinMinutes, "Minutes a substitute must exceed when --bench-eligibility is set")
	cmd.Flags().IntVar(&f.maxPerTeam, "max-per-team", squad.DefaultMaxPerTeam, "Maximum players from one club")
	cmd.Flags().StringVar(&f.budget, "budget", squad.DefaultBudget.String(), "Squad budget in millions")
	cmd.Flags().StringSliceVar(&f.lock, "lock", nil, "Players (name or id) that must be in the squad")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Players (name or id) that must not be in the squad")
}

// request copies only the flags set on the command line; the rest keep the
// configured defaults.
func (f *requestFlags) request(cmd *cobra.Command) (planner.Request, error) {
	req := planner.Request{Lock: f.lock, Exclude: f.exclude}
	flags := cmd.Flags()
	if flags.Changed("hit") {
		req.TransferHit = &f.hit
	}
	if flags.Changed("opposing") {
		req.OpposingPenalty = &f.opposing
	}
	if flags.Changed("fdr-weight") {
		req.FDRWeight = &f.fdrWeight
	}
	if flags.Changed("bench-eligibility") {
		req.BenchEligibility = &f.benchEligibility
	}
	if flags.Changed("bench-minutes") {
		req.BenchMinMinutes = &f.benchMinutes
	}
	if flags.Changed("max-per-team") {
		req.MaxPerTeam = &f.maxPerTeam
	}
	if flags.Changed("budget") {
		b, err := decimal.NewFromString(f.budget)
		if err != nil {
			return planner.Request{}, fmt.Errorf("--budget: %w", err)
		}
		req.Budget = &b
	}
	return req, nil
}

func parseEntryID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("entry id must be a positive integer, got %q", s)
	}
	return id, nil
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runPlanner handles config loading, planner construction, the optional
// database connection, and context cancellation.
func runPlanner(record bool, fn func(ctx context.Context, p *planner.Planner) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	var recorder planner.Recorder
	if record {
		if !cfg.HasDatabase() {
			return fmt.Errorf("--record requires DATABASE_URL")
		}
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		recorder = store.New(pool)
	}

	client := fpl.NewClient(cfg.FPLBaseURL, cfg.FPLRequestsPerSecond, cfg.FPLTimeout, logger)
	optimizer := squad.NewOptimizer(milp.NewBranchAndBound(cfg.SolverMaxNodes, logger), cfg.OptimizerParams(), cfg.SolveTimeout, logger)
	p := planner.New(client, optimizer, recorder, planner.Options{
		Window:                cfg.FDRWindow,
		CandidatesPerPosition: cfg.CandidatesPerPosition,
	}, logger)

	return fn(ctx, p)
}

// output prints v as indented JSON with --json, else through text.
func output(v any, text func(io.Writer) error) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(os.Stdout)
}
