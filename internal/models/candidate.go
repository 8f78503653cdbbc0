package models

import "time"

// Status is the verification level attached to a candidate article.
type Status string

const (
	StatusConfirmed  Status = "CONFIRMED"
	StatusRumor      Status = "RUMOR"
	StatusDeveloping Status = "DEVELOPING"
)

// CandidateItem is a normalized article moving through the pipeline.
// NormalizedTitle, CanonicalURL and ContentHash are pure functions of the
// raw entry; recomputing them is deterministic.
type CandidateItem struct {
	ArticleID int64

	Title           string
	NormalizedTitle string
	Link            string
	CanonicalURL    string
	Summary         string
	PublishedAt     *time.Time
	ImageURL        string
	ContentHash     string

	SourceName      string
	SourceDomain    string
	SourceSportHint string
	SourceWeight    int
	Tags            []string

	// Filled by the classifier.
	Sport    string
	Category string
	Status   Status

	// Filled by the scorer.
	Score int
}
