package planner

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/albapepper/fpl-optimizer/internal/squad"
)

var (
	ErrUnknownPlayer   = errors.New("no player matches")
	ErrAmbiguousPlayer = errors.New("player name is ambiguous")
)

// ResolvePlayers maps each query to a player ID. A numeric query is taken as
// an ID. Otherwise an exact case-insensitive name match wins, then the
// closest fuzzy match by edit distance. Ties between different players are
// reported as ambiguous.
func ResolvePlayers(data *squad.Dataset, queries []string) ([]int, error) {
	players := data.Players()
	names := make([]string, len(players))
	for i, pl := range players {
		names[i] = pl.Name
	}

	ids := make([]int, 0, len(queries))
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		id, err := resolveOne(data, players, names, q)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func resolveOne(data *squad.Dataset, players []squad.Player, names []string, q string) (int, error) {
	if id, err := strconv.Atoi(q); err == nil {
		if _, ok := data.Lookup(id); !ok {
			return 0, fmt.Errorf("%w: %d", squad.ErrMissingPlayer, id)
		}
		return id, nil
	}

	var exact []squad.Player
	for _, pl := range players {
		if strings.EqualFold(pl.Name, q) {
			exact = append(exact, pl)
		}
	}
	switch len(exact) {
	case 1:
		return exact[0].ID, nil
	case 0:
	default:
		return 0, ambiguous(q, exact)
	}

	ranks := fuzzy.RankFindNormalizedFold(q, names)
	if len(ranks) == 0 {
		return 0, fmt.Errorf("%w %q", ErrUnknownPlayer, q)
	}
	sort.Sort(ranks)
	best := []squad.Player{players[ranks[0].OriginalIndex]}
	for _, r := range ranks[1:] {
		if r.Distance != ranks[0].Distance {
			break
		}
		best = append(best, players[r.OriginalIndex])
	}
	if len(best) > 1 {
		return 0, ambiguous(q, best)
	}
	return best[0].ID, nil
}

func ambiguous(q string, matches []squad.Player) error {
	desc := make([]string, len(matches))
	for i, pl := range matches {
		desc[i] = fmt.Sprintf("%s (%d, %s)", pl.Name, pl.ID, pl.Team)
	}
	return fmt.Errorf("%w: %q matches %s", ErrAmbiguousPlayer, q, strings.Join(desc, ", "))
}
