package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"goalwire/bot/internal/models"
)

// UpsertArticle inserts a candidate or refreshes the mutable fields of the
// row with the same canonical URL, returning the article ID either way.
func (r *Repo) UpsertArticle(ctx context.Context, item *models.CandidateItem) (int64, error) {
	now := r.now().UTC()

	var publishedAt sql.NullTime
	if item.PublishedAt != nil {
		publishedAt = sql.NullTime{Time: item.PublishedAt.UTC(), Valid: true}
	}
	var imageURL sql.NullString
	if item.ImageURL != "" {
		imageURL = sql.NullString{String: item.ImageURL, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO articles (
			title, normalized_title, link, canonical_url, summary, published_at,
			sport, category, status, score, content_hash, image_url,
			source_name, source_domain, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(canonical_url) DO UPDATE SET
			title = excluded.title,
			normalized_title = excluded.normalized_title,
			summary = excluded.summary,
			sport = excluded.sport,
			category = excluded.category,
			status = excluded.status,
			score = excluded.score,
			image_url = excluded.image_url,
			updated_at = excluded.updated_at`,
		item.Title, item.NormalizedTitle, item.Link, item.CanonicalURL,
		item.Summary, publishedAt, item.Sport, item.Category, string(item.Status),
		item.Score, item.ContentHash, imageURL, item.SourceName,
		item.SourceDomain, now, now)
	if err != nil {
		return 0, fmt.Errorf("upserting article: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, `SELECT id FROM articles WHERE canonical_url = ?`, item.CanonicalURL); err != nil {
		return 0, fmt.Errorf("resolving article id: %w", err)
	}
	return id, nil
}

// PurgeOldArticles deletes articles created before the retention cutoff and
// returns how many rows were removed. Posts and digests keep their own rows.
func (r *Repo) PurgeOldArticles(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("retentionDays must be positive")
	}

	cutoff := r.now().UTC().AddDate(0, 0, -retentionDays)
	result, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging articles: %w", err)
	}
	return result.RowsAffected()
}

// HasCanonicalURL reports whether an article with this canonical URL exists.
func (r *Repo) HasCanonicalURL(ctx context.Context, url string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM articles WHERE canonical_url = ? LIMIT 1`, url)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("canonical URL lookup: %w", err)
	}
	return true, nil
}

// HasContentHash reports whether an article with this content hash exists.
func (r *Repo) HasContentHash(ctx context.Context, hash string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM articles WHERE content_hash = ? LIMIT 1`, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("content hash lookup: %w", err)
	}
	return true, nil
}

// RecentNormalizedTitles returns the newest normalized titles since the
// given time, for fuzzy duplicate matching.
func (r *Repo) RecentNormalizedTitles(ctx context.Context, since time.Time, limit int) ([]string, error) {
	var titles []string
	err := r.db.SelectContext(ctx, &titles, `
		SELECT normalized_title FROM articles
		WHERE created_at >= ?
		ORDER BY created_at DESC
		LIMIT ?`, since.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("recent titles query: %w", err)
	}
	return titles, nil
}

// DigestCandidates returns unposted, unduplicated, undigested articles of
// one sport inside the score band, newest high scores first.
func (r *Repo) DigestCandidates(ctx context.Context, sport string, since time.Time, scoreMin, scoreMax, limit int) ([]models.CandidateItem, error) {
	var rows []models.Article
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM articles
		WHERE sport = ?
		  AND is_posted = 0 AND is_duplicate = 0 AND is_digested = 0
		  AND score BETWEEN ? AND ?
		  AND created_at >= ?
		ORDER BY score DESC
		LIMIT ?`, sport, scoreMin, scoreMax, since.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("digest candidates query: %w", err)
	}

	items := make([]models.CandidateItem, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].Candidate())
	}
	return items, nil
}

// MarkPosted flags articles as published.
func (r *Repo) MarkPosted(ctx context.Context, articleIDs []int64) error {
	return r.markFlag(ctx, "is_posted", articleIDs)
}

// MarkDigested flags articles as folded into a digest.
func (r *Repo) MarkDigested(ctx context.Context, articleIDs []int64) error {
	return r.markFlag(ctx, "is_digested", articleIDs)
}

func (r *Repo) markFlag(ctx context.Context, column string, articleIDs []int64) error {
	now := r.now().UTC()
	for _, id := range articleIDs {
		query := fmt.Sprintf(`UPDATE articles SET %s = 1, updated_at = ? WHERE id = ?`, column)
		if _, err := r.db.ExecContext(ctx, query, now, id); err != nil {
			return fmt.Errorf("marking article %d: %w", id, err)
		}
	}
	return nil
}
