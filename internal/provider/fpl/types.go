package fpl

import "time"

// Bootstrap is the bootstrap-static document.
type Bootstrap struct {
	Events       []Event       `json:"events"`
	Teams        []Team        `json:"teams"`
	Elements     []Element     `json:"elements"`
	ElementTypes []ElementType `json:"element_types"`
}

// Event is a gameweek.
type Event struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	DeadlineTime time.Time `json:"deadline_time"`
	Finished     bool      `json:"finished"`
	IsPrevious   bool      `json:"is_previous"`
	IsCurrent    bool      `json:"is_current"`
	IsNext       bool      `json:"is_next"`
}

// Team is a Premier League club.
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// ElementType is a playing position; IDs 1-4 are GKP, DEF, MID, FWD.
type ElementType struct {
	ID                int    `json:"id"`
	SingularName      string `json:"singular_name"`
	SingularNameShort string `json:"singular_name_short"`
}

// Element is a player. EPNext is the projected points for the next gameweek
// and arrives as a decimal string or null.
type Element struct {
	ID          int    `json:"id"`
	WebName     string `json:"web_name"`
	FirstName   string `json:"first_name"`
	SecondName  string `json:"second_name"`
	Team        int    `json:"team"`
	ElementType int    `json:"element_type"`
	NowCost     int    `json:"now_cost"`
	EPNext      any    `json:"ep_next"`
	Status      string `json:"status"`
	News        string `json:"news"`
	Minutes     int    `json:"minutes"`
}

// Entry is a manager's team summary. Bank and value fields are in tenths.
type Entry struct {
	ID                         int    `json:"id"`
	Name                       string `json:"name"`
	PlayerFirstName            string `json:"player_first_name"`
	PlayerLastName             string `json:"player_last_name"`
	CurrentEvent               *int   `json:"current_event"`
	SummaryOverallPoints       *int   `json:"summary_overall_points"`
	SummaryOverallRank         *int   `json:"summary_overall_rank"`
	LastDeadlineBank           *int   `json:"last_deadline_bank"`
	LastDeadlineValue          *int   `json:"last_deadline_value"`
	LastDeadlineTotalTransfers int    `json:"last_deadline_total_transfers"`
}

// Picks is the squad an entry fielded in a gameweek.
type Picks struct {
	ActiveChip   *string      `json:"active_chip"`
	EntryHistory EntryHistory `json:"entry_history"`
	Picks        []Pick       `json:"picks"`
}

// EntryHistory is an entry's state in one gameweek. Money is in tenths.
type EntryHistory struct {
	Event              int `json:"event"`
	Points             int `json:"points"`
	TotalPoints        int `json:"total_points"`
	Bank               int `json:"bank"`
	Value              int `json:"value"`
	EventTransfers     int `json:"event_transfers"`
	EventTransfersCost int `json:"event_transfers_cost"`
}

// Pick is one squad slot; positions 1-11 start, 12-15 are the bench.
type Pick struct {
	Element       int  `json:"element"`
	Position      int  `json:"position"`
	Multiplier    int  `json:"multiplier"`
	IsCaptain     bool `json:"is_captain"`
	IsViceCaptain bool `json:"is_vice_captain"`
}

// Transfer is one completed transfer. Costs are in tenths.
type Transfer struct {
	ElementIn      int       `json:"element_in"`
	ElementInCost  int       `json:"element_in_cost"`
	ElementOut     int       `json:"element_out"`
	ElementOutCost int       `json:"element_out_cost"`
	Entry          int       `json:"entry"`
	Event          int       `json:"event"`
	Time           time.Time `json:"time"`
}

// History is an entry's season history.
type History struct {
	Current []EntryHistory `json:"current"`
	Chips   []Chip         `json:"chips"`
}

// Chip is a played chip.
type Chip struct {
	Name  string `json:"name"`
	Event int    `json:"event"`
}

// Live is the event live document.
type Live struct {
	Elements []LiveElement `json:"elements"`
}

// LiveElement is one player's statistics in a gameweek.
type LiveElement struct {
	ID    int `json:"id"`
	Stats struct {
		Minutes     int `json:"minutes"`
		TotalPoints int `json:"total_points"`
	} `json:"stats"`
}
