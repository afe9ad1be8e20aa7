// Package squad encodes Fantasy Premier League squad selection and weekly
// transfers as a 0/1 integer program and turns solved assignments back into a
// squad and a transfer plan.
//
// Every player gets one binary variable per transition category (stay,
// swap, transfer in or out, free or paid, captain). League rules become named
// constraints over those variables; expected points, captaincy, transfer hits
// and fixture adjustments become a single objective.
package squad

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// --------------------------------------------------------------------------
// Position
// --------------------------------------------------------------------------

// Position is a player's playing position.
type Position int

const (
	Goalkeeper Position = iota + 1
	Defender
	Midfielder
	Forward
)

// Positions lists every position in squad order.
var Positions = []Position{Goalkeeper, Defender, Midfielder, Forward}

var positionCodes = map[Position]string{
	Goalkeeper: "GKP",
	Defender:   "DEF",
	Midfielder: "MID",
	Forward:    "FWD",
}

var positionNames = map[Position]string{
	Goalkeeper: "Goalkeeper",
	Defender:   "Defender",
	Midfielder: "Midfielder",
	Forward:    "Forward",
}

// String returns the short position code (GKP, DEF, MID, FWD).
func (p Position) String() string {
	if code, ok := positionCodes[p]; ok {
		return code
	}
	return fmt.Sprintf("Position(%d)", int(p))
}

// Name returns the long position name.
func (p Position) Name() string {
	if name, ok := positionNames[p]; ok {
		return name
	}
	return p.String()
}

// Valid reports whether p is one of the four positions.
func (p Position) Valid() bool {
	return p >= Goalkeeper && p <= Forward
}

// ParsePosition accepts a short code or long name, case-insensitively.
func ParsePosition(s string) (Position, error) {
	s = strings.TrimSpace(s)
	for _, p := range Positions {
		if strings.EqualFold(s, positionCodes[p]) || strings.EqualFold(s, positionNames[p]) {
			return p, nil
		}
	}
	if strings.EqualFold(s, "GK") {
		return Goalkeeper, nil
	}
	return 0, fmt.Errorf("unknown position %q", s)
}

func (p Position) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid position %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Position) UnmarshalText(b []byte) error {
	v, err := ParsePosition(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// --------------------------------------------------------------------------
// Availability
// --------------------------------------------------------------------------

// Availability is a player's fitness status for the upcoming gameweek.
type Availability int

const (
	Unknown Availability = iota
	Available
	Injured
	Suspended
)

// ParseAvailability maps an FPL status code to an Availability. Doubtful,
// unavailable and unrecognised codes map to Unknown.
func ParseAvailability(code string) Availability {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "a", "available":
		return Available
	case "i", "injured":
		return Injured
	case "s", "suspended":
		return Suspended
	default:
		return Unknown
	}
}

func (a Availability) String() string {
	switch a {
	case Available:
		return "available"
	case Injured:
		return "injured"
	case Suspended:
		return "suspended"
	default:
		return "unknown"
	}
}

func (a Availability) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Availability) UnmarshalText(b []byte) error {
	*a = ParseAvailability(string(b))
	return nil
}

// --------------------------------------------------------------------------
// Player
// --------------------------------------------------------------------------

// Player is one row of the per-gameweek player dataset.
//
// OpponentID is zero when the team has no fixture in the gameweek.
// FixtureDifficulty is the team's average difficulty over the lookahead
// window, zero when unknown.
type Player struct {
	ID                int             `json:"id"`
	Name              string          `json:"name"`
	Position          Position        `json:"position"`
	Team              string          `json:"team"`
	TeamID            int             `json:"team_id"`
	OpponentID        int             `json:"opponent_id,omitempty"`
	Price             decimal.Decimal `json:"price"`
	ExpectedPoints    float64         `json:"expected_points"`
	Availability      Availability    `json:"status"`
	Minutes           int             `json:"minutes"`
	FixtureDifficulty float64         `json:"fixture_difficulty,omitempty"`
}

// Available reports whether the player may be selected at all.
func (p Player) Available() bool {
	return p.Availability == Available
}

// Dataset is an immutable, validated set of players indexed by position in
// the set and by player ID.
type Dataset struct {
	players []Player
	index   map[int]int
}

// NewDataset validates players and builds a Dataset. Player order is kept.
func NewDataset(players []Player) (*Dataset, error) {
	d := &Dataset{
		players: make([]Player, len(players)),
		index:   make(map[int]int, len(players)),
	}
	copy(d.players, players)
	for i, p := range d.players {
		switch {
		case p.ID <= 0:
			return nil, fmt.Errorf("%w: player %q has non-positive id %d", ErrInvalidDataset, p.Name, p.ID)
		case !p.Position.Valid():
			return nil, fmt.Errorf("%w: player %d has invalid position %d", ErrInvalidDataset, p.ID, int(p.Position))
		case !p.Price.IsPositive():
			return nil, fmt.Errorf("%w: player %d has non-positive price %s", ErrInvalidDataset, p.ID, p.Price)
		case !p.Price.Equal(p.Price.Round(1)):
			return nil, fmt.Errorf("%w: player %d price %s has more than one decimal", ErrInvalidDataset, p.ID, p.Price)
		case p.FixtureDifficulty < 0 || p.FixtureDifficulty > 5:
			return nil, fmt.Errorf("%w: player %d fixture difficulty %v outside [0,5]", ErrInvalidDataset, p.ID, p.FixtureDifficulty)
		}
		if _, dup := d.index[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate player id %d", ErrInvalidDataset, p.ID)
		}
		d.index[p.ID] = i
	}
	return d, nil
}

// Len returns the number of players.
func (d *Dataset) Len() int { return len(d.players) }

// At returns the player at index i.
func (d *Dataset) At(i int) Player { return d.players[i] }

// Players returns a copy of all players.
func (d *Dataset) Players() []Player {
	out := make([]Player, len(d.players))
	copy(out, d.players)
	return out
}

// Index returns the index of the player with the given ID.
func (d *Dataset) Index(id int) (int, bool) {
	i, ok := d.index[id]
	return i, ok
}

// Lookup returns the player with the given ID.
func (d *Dataset) Lookup(id int) (Player, bool) {
	i, ok := d.index[id]
	if !ok {
		return Player{}, false
	}
	return d.players[i], true
}

// TeamIDs returns the distinct team IDs in ascending order.
func (d *Dataset) TeamIDs() []int {
	seen := make(map[int]bool)
	var ids []int
	for _, p := range d.players {
		if !seen[p.TeamID] {
			seen[p.TeamID] = true
			ids = append(ids, p.TeamID)
		}
	}
	sort.Ints(ids)
	return ids
}
