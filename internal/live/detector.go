package live

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"goalwire/bot/internal/models"
)

const finalMinute = 90

// leagueKeywords admit competitions not listed by ID.
var leagueKeywords = []string{
	"champions", "ucl", "uefa champions",
	"laliga", "la liga", "primera division", "primera división",
	"premier league", "serie a", "bundesliga",
}

// Fetcher is the API surface the detector polls.
type Fetcher interface {
	LiveMatches(ctx context.Context) ([]models.LiveMatch, error)
	MatchEvents(ctx context.Context, matchID string) ([]models.LiveEvent, error)
}

// MatchStore persists per-match snapshots between polls.
type MatchStore interface {
	GetLiveMatch(ctx context.Context, matchID string) (*models.LiveMatch, error)
	UpsertLiveMatch(ctx context.Context, match *models.LiveMatch) error
	MatchEventRows(ctx context.Context, matchID string) ([]models.LiveEventRow, error)
}

// Detected pairs an event with the match snapshot it belongs to.
type Detected struct {
	Match models.LiveMatch
	Event models.LiveEvent
}

// Detector compares each poll against the stored snapshot. Score increases
// become goal events, a transition into a terminal status becomes a final,
// and detailed API events are diffed by identity.
type Detector struct {
	fetcher        Fetcher
	store          MatchStore
	topTeams       []string
	trackedLeagues map[int]string
	log            zerolog.Logger
}

func NewDetector(fetcher Fetcher, store MatchStore, topTeams []string, trackedLeagues map[int]string, logger zerolog.Logger) *Detector {
	return &Detector{
		fetcher:        fetcher,
		store:          store,
		topTeams:       topTeams,
		trackedLeagues: trackedLeagues,
		log:            logger.With().Str("component", "live-detector").Logger(),
	}
}

// Detect polls once and returns the new publishable events. The stored
// snapshot is updated even when a match produces no events.
func (d *Detector) Detect(ctx context.Context) ([]Detected, error) {
	matches, err := d.fetcher.LiveMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching live matches: %w", err)
	}

	var detected []Detected
	for i := range matches {
		match := matches[i]

		if !d.IsTrackedLeague(match.LeagueName, match.LeagueID) {
			continue
		}
		if !d.isTopTeamMatch(match.HomeTeam, match.AwayTeam) {
			continue
		}
		match.IsTopTeamMatch = true
		if match.LeagueName == "" {
			match.LeagueName = d.leagueName(match.LeagueID)
		}

		events, err := d.detectForMatch(ctx, &match)
		if err != nil {
			d.log.Warn().Err(err).Str("match_id", match.MatchID).Msg("Match detection failed")
			continue
		}
		detected = append(detected, events...)
	}
	return detected, nil
}

func (d *Detector) detectForMatch(ctx context.Context, match *models.LiveMatch) ([]Detected, error) {
	previous, err := d.store.GetLiveMatch(ctx, match.MatchID)
	if err != nil {
		return nil, fmt.Errorf("loading match state: %w", err)
	}

	var previousRows []models.LiveEventRow
	if previous != nil {
		previousRows, err = d.store.MatchEventRows(ctx, match.MatchID)
		if err != nil {
			d.log.Warn().Err(err).Str("match_id", match.MatchID).Msg("Could not load prior events")
		}
	}

	if err := d.store.UpsertLiveMatch(ctx, match); err != nil {
		return nil, fmt.Errorf("saving match state: %w", err)
	}

	var detected []Detected

	if previous != nil && match.Finished() && !previous.Finished() {
		minute := finalMinute
		detected = append(detected, Detected{
			Match: *match,
			Event: models.LiveEvent{
				MatchID:    match.MatchID,
				LeagueID:   match.LeagueID,
				LeagueName: match.LeagueName,
				HomeTeam:   match.HomeTeam,
				AwayTeam:   match.AwayTeam,
				HomeScore:  match.HomeScore,
				AwayScore:  match.AwayScore,
				Type:       models.EventFinal,
				Minute:     &minute,
			},
		})
	}

	if previous != nil {
		detected = append(detected, d.goalEvents(match, previous.HomeScore, match.HomeScore, match.HomeTeam)...)
		detected = append(detected, d.goalEvents(match, previous.AwayScore, match.AwayScore, match.AwayTeam)...)
	}

	detected = append(detected, d.secondaryEvents(ctx, match, previousRows)...)

	return detected, nil
}

// goalEvents emits one goal per point of score increase, stamped with the
// current minute and scoreline.
func (d *Detector) goalEvents(match *models.LiveMatch, before, after int, team string) []Detected {
	var events []Detected
	for i := 0; i < after-before; i++ {
		var minute *int
		if match.CurrentMinute > 0 {
			m := match.CurrentMinute
			minute = &m
		}
		events = append(events, Detected{
			Match: *match,
			Event: models.LiveEvent{
				MatchID:    match.MatchID,
				LeagueID:   match.LeagueID,
				LeagueName: match.LeagueName,
				HomeTeam:   match.HomeTeam,
				AwayTeam:   match.AwayTeam,
				HomeScore:  match.HomeScore,
				AwayScore:  match.AwayScore,
				Type:       models.EventGoal,
				Minute:     minute,
				Detail:     team,
			},
		})
	}
	return events
}

// secondaryEvents diffs detailed API events against the stored rows. Goals
// are excluded here because the score comparison already covers them.
func (d *Detector) secondaryEvents(ctx context.Context, match *models.LiveMatch, previousRows []models.LiveEventRow) []Detected {
	current, err := d.fetcher.MatchEvents(ctx, match.MatchID)
	if err != nil {
		d.log.Warn().Err(err).Str("match_id", match.MatchID).Msg("Event fetch failed")
		return nil
	}
	if len(current) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(previousRows))
	for _, row := range previousRows {
		seen[rowIdentity(&row)] = struct{}{}
	}

	var detected []Detected
	for _, event := range current {
		if event.Type == models.EventGoal {
			continue
		}
		if _, dup := seen[eventIdentity(&event)]; dup {
			continue
		}

		event.LeagueID = match.LeagueID
		event.LeagueName = match.LeagueName
		event.HomeTeam = match.HomeTeam
		event.AwayTeam = match.AwayTeam
		event.HomeScore = match.HomeScore
		event.AwayScore = match.AwayScore
		detected = append(detected, Detected{Match: *match, Event: event})
	}
	return detected
}

func (d *Detector) isTopTeamMatch(home, away string) bool {
	homeLower := strings.ToLower(home)
	awayLower := strings.ToLower(away)
	for _, team := range d.topTeams {
		teamLower := strings.ToLower(team)
		if strings.Contains(homeLower, teamLower) || strings.Contains(awayLower, teamLower) {
			return true
		}
	}
	return false
}

func (d *Detector) leagueName(leagueID int) string {
	if name, ok := d.trackedLeagues[leagueID]; ok {
		return name
	}
	return "Football"
}

// IsTrackedLeague matches by configured ID or by competition name keywords.
func (d *Detector) IsTrackedLeague(leagueName string, leagueID int) bool {
	if _, ok := d.trackedLeagues[leagueID]; ok {
		return true
	}
	lower := strings.ToLower(leagueName)
	for _, kw := range leagueKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func eventIdentity(event *models.LiveEvent) string {
	minute := ""
	if event.Minute != nil {
		minute = fmt.Sprintf("%d", *event.Minute)
	}
	player := ""
	if event.Player != nil {
		player = *event.Player
	}
	return string(event.Type) + "_" + minute + "_" + player
}

func rowIdentity(row *models.LiveEventRow) string {
	minute := ""
	if row.EventMinute.Valid {
		minute = fmt.Sprintf("%d", row.EventMinute.Int64)
	}
	player := ""
	if row.EventPlayer.Valid {
		player = row.EventPlayer.String
	}
	return row.EventType + "_" + minute + "_" + player
}
