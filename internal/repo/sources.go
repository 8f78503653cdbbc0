package repo

import (
	"context"
	"fmt"

	"goalwire/bot/internal/config"
	"goalwire/bot/internal/models"
)

// SeedSources inserts the configured feed list when the stored set does not
// match it. Existing rows are updated by name so edits to the config take
// effect on restart.
func (r *Repo) SeedSources(ctx context.Context, sources []config.SourceConfig) error {
	now := r.now().UTC()
	for _, s := range sources {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO sources (name, url, sport_hint, weight, active, created_at)
			VALUES (?, ?, ?, ?, 1, ?)
			ON CONFLICT(name) DO UPDATE SET
				url = excluded.url,
				sport_hint = excluded.sport_hint,
				weight = excluded.weight,
				active = 1`,
			s.Name, s.URL, s.SportHint, s.Weight, now)
		if err != nil {
			return fmt.Errorf("seeding source %q: %w", s.Name, err)
		}
	}
	return nil
}

// ActiveSources returns all sources enabled for polling.
func (r *Repo) ActiveSources(ctx context.Context) ([]models.Source, error) {
	var sources []models.Source
	err := r.db.SelectContext(ctx, &sources, `
		SELECT * FROM sources WHERE active = 1 ORDER BY weight DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("active sources query: %w", err)
	}
	return sources, nil
}

// TouchSourceFetched records a successful fetch for a source.
func (r *Repo) TouchSourceFetched(ctx context.Context, sourceID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sources SET last_fetched_at = ? WHERE id = ?`, r.now().UTC(), sourceID)
	if err != nil {
		return fmt.Errorf("touching source: %w", err)
	}
	return nil
}
