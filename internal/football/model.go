package football

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when the upstream has no record for the requested id.
	ErrNotFound = errors.New("football: not found")

	// ErrUpstream is returned when the football data API fails or reports errors.
	ErrUpstream = errors.New("football: upstream error")
)

// Status short codes reported by the data API while a match is in play.
var liveStatuses = map[string]struct{}{
	"1H": {}, "HT": {}, "2H": {}, "ET": {}, "BT": {}, "P": {}, "SUSP": {}, "INT": {}, "LIVE": {},
}

type Match struct {
	ID      int         `json:"id"`
	Kickoff time.Time   `json:"kickoff"`
	Status  MatchStatus `json:"status"`
	League  LeagueRef   `json:"league"`
	Home    TeamRef     `json:"home"`
	Away    TeamRef     `json:"away"`
	Score   Score       `json:"score"`
	Venue   Venue       `json:"venue"`
	Referee string      `json:"referee,omitempty"`
}

func (m Match) IsLive() bool {
	_, ok := liveStatuses[m.Status.Short]
	return ok
}

type MatchStatus struct {
	Short   string `json:"short"`
	Long    string `json:"long"`
	Elapsed int    `json:"elapsed,omitempty"`
}

type LeagueRef struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Logo    string `json:"logo,omitempty"`
	Season  int    `json:"season"`
	Round   string `json:"round,omitempty"`
}

type TeamRef struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Logo   string `json:"logo,omitempty"`
	Winner *bool  `json:"winner,omitempty"`
}

// Score holds goals; nil until the match has started.
type Score struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type Venue struct {
	ID       int    `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	City     string `json:"city,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
}

type Team struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code,omitempty"`
	Country  string `json:"country"`
	Founded  int    `json:"founded,omitempty"`
	National bool   `json:"national"`
	Logo     string `json:"logo,omitempty"`
	Venue    Venue  `json:"venue"`
}

type League struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Logo          string `json:"logo,omitempty"`
	Country       string `json:"country"`
	CountryCode   string `json:"countryCode,omitempty"`
	Flag          string `json:"flag,omitempty"`
	CurrentSeason int    `json:"currentSeason,omitempty"`
}

// MatchFilter narrows a fixtures listing. Zero fields are not sent upstream.
type MatchFilter struct {
	Date     string // YYYY-MM-DD
	LeagueID int
	Season   int
	TeamID   int
}
