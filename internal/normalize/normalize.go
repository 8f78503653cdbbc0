// Package normalize turns raw feed entries into canonical candidate items.
// All derived fields are deterministic so reprocessing an entry yields the
// same canonical URL and content hash.
package normalize

import (
	"time"

	"goalwire/bot/internal/feed"
	"goalwire/bot/internal/models"
)

const summaryMaxRunes = 500

// Normalizer builds candidate items from collected feed entries.
type Normalizer struct {
	now func() time.Time
}

func New() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Normalize derives the canonical fields for one entry. Timestamps are kept
// in UTC.
func (n *Normalizer) Normalize(item feed.Item) models.CandidateItem {
	title := CleanHTML(item.Title)
	normalizedTitle := Title(title)
	summary := TruncateSummary(CleanHTML(item.Summary), summaryMaxRunes)
	domain := Domain(item.Link)

	var published *time.Time
	if item.Published != nil {
		utc := item.Published.UTC()
		published = &utc
	}

	return models.CandidateItem{
		Title:           title,
		NormalizedTitle: normalizedTitle,
		Link:            item.Link,
		CanonicalURL:    CanonicalURL(item.Link),
		Summary:         summary,
		PublishedAt:     published,
		ImageURL:        item.ImageURL,
		ContentHash:     ContentHash(normalizedTitle, domain, published, n.now().UTC()),
		SourceName:      item.SourceName,
		SourceDomain:    domain,
		SourceSportHint: item.SourceSportHint,
		SourceWeight:    item.SourceWeight,
		Tags:            item.Tags,
	}
}

// NormalizeAll maps a batch, preserving collection order.
func (n *Normalizer) NormalizeAll(items []feed.Item) []models.CandidateItem {
	out := make([]models.CandidateItem, 0, len(items))
	for _, item := range items {
		out = append(out, n.Normalize(item))
	}
	return out
}
