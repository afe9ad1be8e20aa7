package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/albapepper/fpl-optimizer/internal/fixture"
	"github.com/albapepper/fpl-optimizer/internal/planner"
	"github.com/albapepper/fpl-optimizer/internal/squad"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func role(captain, vice bool) string {
	switch {
	case captain:
		return "C"
	case vice:
		return "V"
	}
	return ""
}

func printPlan(w io.Writer, plan *planner.Plan) error {
	res := plan.Result
	fmt.Fprintf(w, "Gameweek %d %s plan (%d of %d players considered)\n", plan.Gameweek, plan.Kind, plan.Candidates, plan.Players)
	for _, warn := range plan.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}

	fmt.Fprintf(w, "\nStarting XI (%s)\n", res.Formation)
	if err := printSelections(w, res.Starting); err != nil {
		return err
	}
	fmt.Fprintln(w, "\nBench")
	if err := printSelections(w, res.Bench); err != nil {
		return err
	}

	if len(res.Transfers) > 0 {
		fmt.Fprintln(w, "\nTransfers")
		tw := newTable(w)
		fmt.Fprintln(tw, "DIR\tPOS\tPLAYER\tTEAM\tPRICE\tCOST")
		for _, t := range res.Transfers {
			cost := "free"
			if t.Paid {
				cost = "paid"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", t.Direction, t.Position, t.Name, t.Team, t.Price.StringFixed(1), cost)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\nProjected points %.2f, objective %.2f\n", res.ProjectedPoints, res.Objective)
	fmt.Fprintf(w, "Squad cost %s, bank %s, budget %s\n", res.TotalCost.StringFixed(1), res.Bank.StringFixed(1), res.Budget.StringFixed(1))
	fmt.Fprintf(w, "Transfers: %d free, %d paid (-%.0f); %d free next gameweek\n",
		res.FreeTransfers, res.PaidTransfers, res.TransferHit, res.NextFreeTransfers)
	if plan.RunID != "" {
		fmt.Fprintf(w, "Recorded as run %s\n", plan.RunID)
	}
	return nil
}

func printSelections(w io.Writer, sel []squad.Selection) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "POS\tPLAYER\tTEAM\tPRICE\tXP\tROLE\tMOVE")
	for _, s := range sel {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
			s.Position, s.Name, s.Team, s.Price.StringFixed(1), s.ExpectedPoints,
			role(s.Captain, s.ViceCaptain), s.Label)
	}
	return tw.Flush()
}

func printDifficulty(w io.Writer, report *fixture.Report) error {
	fmt.Fprintf(w, "Fixture difficulty, gameweeks %d-%d\n", report.Start, report.End)
	tw := newTable(w)
	fmt.Fprintln(tw, "RANK\tTEAM\tAVG\tFIXTURES")
	for i, r := range report.Ratings {
		ds := make([]string, len(r.Difficulties))
		for k, d := range r.Difficulties {
			ds[k] = fmt.Sprint(d)
		}
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%s\n", i+1, r.Team, r.Average, strings.Join(ds, " "))
	}
	return tw.Flush()
}

func printEntry(w io.Writer, v *planner.EntryView) error {
	fmt.Fprintf(w, "%s (%s), %d points", v.Name, v.Manager, v.OverallPoints)
	if v.OverallRank > 0 {
		fmt.Fprintf(w, ", rank %d", v.OverallRank)
	}
	fmt.Fprintln(w)
	for _, warn := range v.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "POS\tPLAYER\tTEAM\tSTATUS\tBOUGHT\tNOW\tSELL\tXP\tROLE\tXI")
	for _, h := range v.Squad {
		xi := "bench"
		if h.Starting {
			xi = "start"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
			h.Position, h.Name, h.Team, h.Availability,
			h.PurchasePrice.StringFixed(1), h.Price.StringFixed(1), h.SellingPrice.StringFixed(1),
			h.ExpectedPoints, role(h.Captain, h.ViceCaptain), xi)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nGameweek %d: bank %s, squad value %s, %d free transfers\n",
		v.Gameweek, v.Bank.StringFixed(1), v.SquadValue.StringFixed(1), v.FreeTransfers)
	return nil
}
