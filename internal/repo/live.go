package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"goalwire/bot/internal/models"
)

// GetLiveMatch returns the stored snapshot for a match, or nil when the
// match has not been seen yet.
func (r *Repo) GetLiveMatch(ctx context.Context, matchID string) (*models.LiveMatch, error) {
	var match models.LiveMatch
	err := r.db.GetContext(ctx, &match, `SELECT * FROM live_matches WHERE match_id = ?`, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("live match lookup: %w", err)
	}
	return &match, nil
}

// UpsertLiveMatch stores the latest snapshot. The publication counters
// (events_published, last_event_at) are preserved on update; they only move
// through RecordLiveEvent.
func (r *Repo) UpsertLiveMatch(ctx context.Context, match *models.LiveMatch) error {
	now := r.now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO live_matches (
			match_id, league_id, league_name, home_team, away_team,
			home_score, away_score, match_status, current_minute,
			is_top_team_match, match_start, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id) DO UPDATE SET
			league_id = excluded.league_id,
			league_name = excluded.league_name,
			home_team = excluded.home_team,
			away_team = excluded.away_team,
			home_score = excluded.home_score,
			away_score = excluded.away_score,
			match_status = excluded.match_status,
			current_minute = excluded.current_minute,
			is_top_team_match = excluded.is_top_team_match,
			updated_at = excluded.updated_at`,
		match.MatchID, match.LeagueID, match.LeagueName, match.HomeTeam,
		match.AwayTeam, match.HomeScore, match.AwayScore, match.MatchStatus,
		match.CurrentMinute, match.IsTopTeamMatch, match.MatchStart, now, now)
	if err != nil {
		return fmt.Errorf("upserting live match: %w", err)
	}
	return nil
}

// MatchEventRows returns the published events of a match.
func (r *Repo) MatchEventRows(ctx context.Context, matchID string) ([]models.LiveEventRow, error) {
	var rows []models.LiveEventRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM live_events
		WHERE match_id = ? AND is_published = 1
		ORDER BY created_at ASC`, matchID)
	if err != nil {
		return nil, fmt.Errorf("match events query: %w", err)
	}
	return rows, nil
}

// IsEventPublished checks whether an equivalent event was already sent.
// Finals are unique per match; every other type matches on the full
// (type, minute, player) identity with NULL-safe comparison.
func (r *Repo) IsEventPublished(ctx context.Context, matchID string, eventType models.EventType, minute *int, player *string) (bool, error) {
	var query string
	var args []any

	if eventType == models.EventFinal {
		query = `SELECT 1 FROM live_events WHERE match_id = ? AND event_type = ? AND is_published = 1 LIMIT 1`
		args = []any{matchID, string(eventType)}
	} else {
		query = `SELECT 1 FROM live_events
			WHERE match_id = ? AND event_type = ?
			  AND event_minute IS ? AND event_player IS ?
			  AND is_published = 1
			LIMIT 1`
		args = []any{matchID, string(eventType), minute, player}
	}

	var exists int
	err := r.db.GetContext(ctx, &exists, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("event published lookup: %w", err)
	}
	return true, nil
}

// MatchEventCount counts published events for a match.
func (r *Repo) MatchEventCount(ctx context.Context, matchID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM live_events
		WHERE match_id = ? AND is_published = 1`, matchID)
	if err != nil {
		return 0, fmt.Errorf("event count query: %w", err)
	}
	return count, nil
}

// LastEventTime returns when the match last had a published event.
func (r *Repo) LastEventTime(ctx context.Context, matchID string) (*time.Time, error) {
	var lastEvent sql.NullTime
	err := r.db.GetContext(ctx, &lastEvent, `
		SELECT last_event_at FROM live_matches WHERE match_id = ?`, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last event lookup: %w", err)
	}
	if !lastEvent.Valid {
		return nil, nil
	}
	t := lastEvent.Time
	return &t, nil
}

// RecordLiveEvent stores a published event and bumps the per-match
// publication counters in the same transaction.
func (r *Repo) RecordLiveEvent(ctx context.Context, event *models.LiveEvent, messageID int64, chatID string) error {
	now := r.now().UTC()

	var minute sql.NullInt64
	if event.Minute != nil {
		minute = sql.NullInt64{Int64: int64(*event.Minute), Valid: true}
	}
	var player sql.NullString
	if event.Player != nil {
		player = sql.NullString{String: *event.Player, Valid: true}
	}
	var detail sql.NullString
	if event.Detail != "" {
		detail = sql.NullString{String: event.Detail, Valid: true}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting event transaction: %w", err)
	}
	defer tx.Rollback()

	teams := event.HomeTeam + " vs " + event.AwayTeam
	scores := fmt.Sprintf("%d-%d", event.HomeScore, event.AwayScore)

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO live_events (
			match_id, league_id, league_name, teams, scores, event_type,
			event_minute, event_player, event_detail, telegram_message_id,
			telegram_chat_id, is_published, published_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		event.MatchID, event.LeagueID, event.LeagueName, teams, scores,
		string(event.Type), minute, player, detail, messageID, chatID,
		now, now); err != nil {
		return fmt.Errorf("inserting live event: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE live_matches
		SET events_published = events_published + 1,
		    last_event_at = ?,
		    updated_at = ?
		WHERE match_id = ?`, now, now, event.MatchID); err != nil {
		return fmt.Errorf("updating match counters: %w", err)
	}

	return tx.Commit()
}
