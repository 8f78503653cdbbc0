// Package dedupe filters out articles already stored or repeated within a
// collection batch. Exact matches use the canonical URL and content hash;
// near-duplicates use fuzzy title similarity against recent history.
package dedupe

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"goalwire/bot/internal/models"
)

// updateKeywords mark a near-duplicate as a genuine follow-up. Stored
// duplicates carrying one of these pass through; batch-internal repeats
// never do.
var updateKeywords = []string{
	"confirmado", "confirmed", "oficial", "official",
	"parte medico", "medical report", "comunicado", "announcement",
	"actualización", "update", "última hora", "breaking",
	"definitivo", "final", "done deal",
}

// History is the slice of article storage dedupe needs.
type History interface {
	HasCanonicalURL(ctx context.Context, url string) (bool, error)
	HasContentHash(ctx context.Context, hash string) (bool, error)
	RecentNormalizedTitles(ctx context.Context, since time.Time, limit int) ([]string, error)
}

// Deduper rejects exact and fuzzy duplicates.
type Deduper struct {
	history   History
	threshold float64
	window    time.Duration
	limit     int
	now       func() time.Time
	log       zerolog.Logger
}

func New(history History, threshold float64, window time.Duration, limit int, logger zerolog.Logger) *Deduper {
	return &Deduper{
		history:   history,
		threshold: threshold,
		window:    window,
		limit:     limit,
		now:       time.Now,
		log:       logger.With().Str("component", "dedupe").Logger(),
	}
}

// Filter returns the unique items of a batch in input order, plus the number
// rejected. Storage read errors are logged and treated as no-match so a
// degraded database never blocks the pipeline.
func (d *Deduper) Filter(ctx context.Context, items []models.CandidateItem) ([]models.CandidateItem, int) {
	since := d.now().UTC().Add(-d.window)
	recentTitles, err := d.history.RecentNormalizedTitles(ctx, since, d.limit)
	if err != nil {
		d.log.Warn().Err(err).Msg("Could not load recent titles, fuzzy dedupe degraded")
		recentTitles = nil
	}

	seenURLs := make(map[string]struct{})
	var seenTitles []string

	unique := make([]models.CandidateItem, 0, len(items))
	duplicates := 0

	for _, item := range items {
		if d.isDuplicate(ctx, &item, seenURLs, seenTitles, recentTitles) {
			duplicates++
			continue
		}
		seenURLs[item.CanonicalURL] = struct{}{}
		seenTitles = append(seenTitles, item.NormalizedTitle)
		unique = append(unique, item)
	}

	return unique, duplicates
}

func (d *Deduper) isDuplicate(ctx context.Context, item *models.CandidateItem, seenURLs map[string]struct{}, seenTitles, recentTitles []string) bool {
	if _, seen := seenURLs[item.CanonicalURL]; seen {
		return true
	}

	if d.storedExactMatch(ctx, item) {
		return true
	}

	// Fuzzy match against stored history. A high-similarity hit still passes
	// when the item reads as an update to the earlier story.
	if best := bestRatio(item.NormalizedTitle, recentTitles); best >= d.threshold {
		if !hasUpdateKeyword(item.Title, item.Summary) {
			d.log.Debug().Str("title", item.Title).Float64("similarity", best).Msg("Fuzzy duplicate of stored article")
			return true
		}
	}

	// Within one batch the update exception does not apply: two versions of
	// the same story fetched together are redundant regardless of wording.
	if best := bestRatio(item.NormalizedTitle, seenTitles); best >= d.threshold {
		d.log.Debug().Str("title", item.Title).Float64("similarity", best).Msg("Fuzzy duplicate within batch")
		return true
	}

	return false
}

func (d *Deduper) storedExactMatch(ctx context.Context, item *models.CandidateItem) bool {
	if found, err := d.history.HasCanonicalURL(ctx, item.CanonicalURL); err != nil {
		d.log.Warn().Err(err).Msg("Canonical URL lookup failed")
	} else if found {
		return true
	}

	if found, err := d.history.HasContentHash(ctx, item.ContentHash); err != nil {
		d.log.Warn().Err(err).Msg("Content hash lookup failed")
	} else if found {
		return true
	}

	return false
}

func bestRatio(title string, against []string) float64 {
	best := 0.0
	for _, other := range against {
		if r := Ratio(title, other); r > best {
			best = r
		}
	}
	return best
}

func hasUpdateKeyword(title, summary string) bool {
	text := strings.ToLower(title + " " + summary)
	for _, kw := range updateKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
