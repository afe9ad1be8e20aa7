// Package fixture aggregates fixture difficulty ratings (FDR) over a window
// of gameweeks and resolves which team each team faces in a gameweek.
//
// A team without a fixture in a gameweek (a blank) has no opponent and no
// rating. A team with two fixtures (a double) is matched against the first
// by kickoff.
package fixture

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

// DefaultWindow is the number of gameweeks averaged for a team's rating.
const DefaultWindow = 5

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Fixture is one scheduled match. Field tags follow the FPL fixtures feed;
// Event is 0 for a fixture not yet assigned to a gameweek.
type Fixture struct {
	ID              int        `json:"id"`
	Event           int        `json:"event"`
	TeamH           int        `json:"team_h"`
	TeamA           int        `json:"team_a"`
	TeamHDifficulty int        `json:"team_h_difficulty"`
	TeamADifficulty int        `json:"team_a_difficulty"`
	Kickoff         *time.Time `json:"kickoff_time"`
	Finished        bool       `json:"finished"`
}

// TeamRating is one team's difficulty over the window.
type TeamRating struct {
	TeamID       int     `json:"team_id"`
	Team         string  `json:"team"`
	Average      float64 `json:"average"`
	Difficulties []int   `json:"difficulties"`
}

// Report is the difficulty table for a window of gameweeks, easiest first.
type Report struct {
	Start    int           `json:"start"`
	End      int           `json:"end"`
	Ratings  []TeamRating  `json:"ratings"`
	Duration time.Duration `json:"-"`
}

// Summary returns a human-readable summary.
func (r *Report) Summary() string {
	easiest, hardest := "-", "-"
	if len(r.Ratings) > 0 {
		easiest = r.Ratings[0].Team
		hardest = r.Ratings[len(r.Ratings)-1].Team
	}
	return fmt.Sprintf("gameweeks=%d-%d teams=%d easiest=%s hardest=%s dur=%s",
		r.Start, r.End, len(r.Ratings), easiest, hardest, r.Duration.Round(time.Millisecond))
}

// --------------------------------------------------------------------------
// Aggregation
// --------------------------------------------------------------------------

// inWindow returns the fixtures of gameweeks start through start+window-1.
func inWindow(fixtures []Fixture, start, window int) []Fixture {
	if window < 1 {
		window = 1
	}
	end := start + window - 1
	var out []Fixture
	for _, f := range fixtures {
		if f.Event >= start && f.Event <= end {
			out = append(out, f)
		}
	}
	return out
}

// difficulties collects each team's difficulty per fixture in the window,
// in gameweek then kickoff order.
func difficulties(fixtures []Fixture, start, window int) map[int][]int {
	matches := inWindow(fixtures, start, window)
	sortFixtures(matches)
	out := make(map[int][]int)
	for _, f := range matches {
		out[f.TeamH] = append(out[f.TeamH], f.TeamHDifficulty)
		out[f.TeamA] = append(out[f.TeamA], f.TeamADifficulty)
	}
	return out
}

// AverageDifficulty returns each team's mean difficulty over the window,
// rounded to two decimals. Teams without a fixture in the window are absent.
func AverageDifficulty(fixtures []Fixture, start, window int) map[int]float64 {
	out := make(map[int]float64)
	for team, ds := range difficulties(fixtures, start, window) {
		sum := 0
		for _, d := range ds {
			sum += d
		}
		out[team] = math.Round(float64(sum)/float64(len(ds))*100) / 100
	}
	return out
}

// Opponents maps each team to the team it faces in gameweek gw.
func Opponents(fixtures []Fixture, gw int) map[int]int {
	matches := inWindow(fixtures, gw, 1)
	sortFixtures(matches)
	out := make(map[int]int)
	for _, f := range matches {
		if _, seen := out[f.TeamH]; !seen {
			out[f.TeamH] = f.TeamA
		}
		if _, seen := out[f.TeamA]; !seen {
			out[f.TeamA] = f.TeamH
		}
	}
	return out
}

// Ratings builds the difficulty report for a window. teams maps team IDs to
// names; teams missing from it are labelled by ID.
func Ratings(fixtures []Fixture, teams map[int]string, start, window int) *Report {
	began := time.Now()
	if window < 1 {
		window = 1
	}
	report := &Report{Start: start, End: start + window - 1}
	averages := AverageDifficulty(fixtures, start, window)
	for team, ds := range difficulties(fixtures, start, window) {
		name := teams[team]
		if name == "" {
			name = fmt.Sprintf("team %d", team)
		}
		report.Ratings = append(report.Ratings, TeamRating{
			TeamID:       team,
			Team:         name,
			Average:      averages[team],
			Difficulties: ds,
		})
	}
	sort.Slice(report.Ratings, func(a, b int) bool {
		x, y := report.Ratings[a], report.Ratings[b]
		if x.Average != y.Average {
			return x.Average < y.Average
		}
		return strings.Compare(x.Team, y.Team) < 0
	})
	report.Duration = time.Since(began)
	return report
}

// sortFixtures orders fixtures by gameweek, kickoff (unknown last) and ID.
func sortFixtures(fs []Fixture) {
	sort.SliceStable(fs, func(a, b int) bool {
		x, y := fs[a], fs[b]
		if x.Event != y.Event {
			return x.Event < y.Event
		}
		switch {
		case x.Kickoff != nil && y.Kickoff != nil && !x.Kickoff.Equal(*y.Kickoff):
			return x.Kickoff.Before(*y.Kickoff)
		case x.Kickoff != nil && y.Kickoff == nil:
			return true
		case x.Kickoff == nil && y.Kickoff != nil:
			return false
		}
		return x.ID < y.ID
	})
}
