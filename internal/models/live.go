package models

import (
	"database/sql"
	"time"
)

// Match status codes as reported by the fixtures API.
const (
	MatchStatusNotStarted  = "NS"
	MatchStatusFirstHalf   = "1H"
	MatchStatusHalftime    = "HT"
	MatchStatusSecondHalf  = "2H"
	MatchStatusExtraTime   = "ET"
	MatchStatusPenalties   = "PEN"
	MatchStatusFullTime    = "FT"
	MatchStatusAfterExtra  = "AET"
	MatchStatusBreakTime   = "BT"
	MatchStatusSuspended   = "SUSP"
	MatchStatusInterrupted = "INT"
	MatchStatusPostponed   = "PST"
	MatchStatusCancelled   = "CANC"
	MatchStatusAbandoned   = "ABD"
	MatchStatusAwarded     = "AWD"
	MatchStatusWalkover    = "WO"
	MatchStatusLive        = "LIVE"
)

var terminalStatuses = map[string]struct{}{
	MatchStatusFullTime:   {},
	MatchStatusAfterExtra: {},
	MatchStatusPenalties:  {},
	"FINISHED":            {},
}

// IsTerminalStatus reports whether a status code means the match is over.
func IsTerminalStatus(status string) bool {
	_, ok := terminalStatuses[status]
	return ok
}

// EventType identifies a live match event.
type EventType string

const (
	EventGoal        EventType = "goal"
	EventRedCard     EventType = "red_card"
	EventPenaltyMiss EventType = "penalty_miss"
	EventVAR         EventType = "var"
	EventHalftime    EventType = "halftime"
	EventFinal       EventType = "final"
)

// LiveMatch is the last observed snapshot of a tracked fixture.
type LiveMatch struct {
	ID              int64        `db:"id"`
	MatchID         string       `db:"match_id"`
	LeagueID        int          `db:"league_id"`
	LeagueName      string       `db:"league_name"`
	HomeTeam        string       `db:"home_team"`
	AwayTeam        string       `db:"away_team"`
	HomeScore       int          `db:"home_score"`
	AwayScore       int          `db:"away_score"`
	MatchStatus     string       `db:"match_status"`
	CurrentMinute   int          `db:"current_minute"`
	IsTopTeamMatch  bool         `db:"is_top_team_match"`
	EventsPublished int          `db:"events_published"`
	LastEventAt     sql.NullTime `db:"last_event_at"`
	MatchStart      sql.NullTime `db:"match_start"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at"`
}

// Finished reports whether the snapshot is in a terminal status.
func (m *LiveMatch) Finished() bool {
	return IsTerminalStatus(m.MatchStatus)
}

// LiveEvent is a single publishable occurrence within a match.
// Minute and Player are nil when the upstream feed omits them.
type LiveEvent struct {
	MatchID    string
	LeagueID   int
	LeagueName string
	HomeTeam   string
	AwayTeam   string
	HomeScore  int
	AwayScore  int
	Type       EventType
	Minute     *int
	Player     *string
	Detail     string
}

// LiveEventRow is the persisted form of a LiveEvent.
type LiveEventRow struct {
	ID                int64          `db:"id"`
	MatchID           string         `db:"match_id"`
	LeagueID          int            `db:"league_id"`
	LeagueName        string         `db:"league_name"`
	Teams             string         `db:"teams"`
	Scores            string         `db:"scores"`
	EventType         string         `db:"event_type"`
	EventMinute       sql.NullInt64  `db:"event_minute"`
	EventPlayer       sql.NullString `db:"event_player"`
	EventDetail       sql.NullString `db:"event_detail"`
	TelegramMessageID sql.NullInt64  `db:"telegram_message_id"`
	TelegramChatID    sql.NullString `db:"telegram_chat_id"`
	IsPublished       bool           `db:"is_published"`
	PublishedAt       sql.NullTime   `db:"published_at"`
	CreatedAt         time.Time      `db:"created_at"`
}
