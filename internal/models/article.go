package models

import (
	"database/sql"
	"time"
)

// Article is the persisted row backing a CandidateItem.
type Article struct {
	ID              int64          `db:"id"`
	SourceID        sql.NullInt64  `db:"source_id"`
	Title           string         `db:"title"`
	NormalizedTitle string         `db:"normalized_title"`
	Link            string         `db:"link"`
	CanonicalURL    string         `db:"canonical_url"`
	Summary         string         `db:"summary"`
	PublishedAt     sql.NullTime   `db:"published_at"`
	Sport           string         `db:"sport"`
	Category        string         `db:"category"`
	Status          string         `db:"status"`
	Score           int            `db:"score"`
	ContentHash     string         `db:"content_hash"`
	ImageURL        sql.NullString `db:"image_url"`
	SourceName      string         `db:"source_name"`
	SourceDomain    string         `db:"source_domain"`
	IsDuplicate     bool           `db:"is_duplicate"`
	IsPosted        bool           `db:"is_posted"`
	IsDigested      bool           `db:"is_digested"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// Candidate converts a stored article back into its pipeline form.
func (a *Article) Candidate() CandidateItem {
	c := CandidateItem{
		ArticleID:       a.ID,
		Title:           a.Title,
		NormalizedTitle: a.NormalizedTitle,
		Link:            a.Link,
		CanonicalURL:    a.CanonicalURL,
		Summary:         a.Summary,
		ContentHash:     a.ContentHash,
		SourceName:      a.SourceName,
		SourceDomain:    a.SourceDomain,
		Sport:           a.Sport,
		Category:        a.Category,
		Status:          Status(a.Status),
		Score:           a.Score,
	}
	if a.PublishedAt.Valid {
		t := a.PublishedAt.Time
		c.PublishedAt = &t
	}
	if a.ImageURL.Valid {
		c.ImageURL = a.ImageURL.String
	}
	return c
}
