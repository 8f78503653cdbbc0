package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"goalwire/bot/internal/models"
)

const statsDateLayout = "2006-01-02"

func (r *Repo) bumpDailyStat(ctx context.Context, column string, n int) error {
	now := r.now().UTC()
	date := now.Format(statsDateLayout)
	query := fmt.Sprintf(`
		INSERT INTO daily_stats (date, %s, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			%s = %s + excluded.%s,
			updated_at = excluded.updated_at`, column, column, column, column)
	if _, err := r.db.ExecContext(ctx, query, date, n, now); err != nil {
		return fmt.Errorf("updating daily stats %s: %w", column, err)
	}
	return nil
}

// IncrementArticlesFetched adds to today's fetched-article counter.
func (r *Repo) IncrementArticlesFetched(ctx context.Context, n int) error {
	return r.bumpDailyStat(ctx, "articles_fetched", n)
}

// IncrementArticlesDuplicated adds to today's duplicate counter.
func (r *Repo) IncrementArticlesDuplicated(ctx context.Context, n int) error {
	return r.bumpDailyStat(ctx, "articles_duplicated", n)
}

// IncrementPostCount bumps today's published post counter.
func (r *Repo) IncrementPostCount(ctx context.Context) error {
	return r.bumpDailyStat(ctx, "post_count", 1)
}

// IncrementDigestCount bumps today's digest counter.
func (r *Repo) IncrementDigestCount(ctx context.Context) error {
	return r.bumpDailyStat(ctx, "digest_count", 1)
}

// GetDailyStats returns the counters for a date (UTC, "2006-01-02"). A day
// with no activity yields a zeroed row.
func (r *Repo) GetDailyStats(ctx context.Context, date string) (*models.DailyStats, error) {
	var stats models.DailyStats
	err := r.db.GetContext(ctx, &stats, `SELECT * FROM daily_stats WHERE date = ?`, date)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.DailyStats{Date: date}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("daily stats query: %w", err)
	}
	return &stats, nil
}

// GetSetting reads a key from the settings table, returning "" when unset.
func (r *Repo) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("setting lookup: %w", err)
	}
	return value, nil
}

// SetSetting stores a key/value pair.
func (r *Repo) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("storing setting: %w", err)
	}
	return nil
}
