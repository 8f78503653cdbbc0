// Package rank scores candidate items from 0 to 100 and orders them for
// the planner. The score blends recency, source weight, entity relevance,
// category, exclusivity signals and a repetition penalty.
package rank

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"goalwire/bot/internal/classify"
	"goalwire/bot/internal/models"
)

// staleMinutes stands in for items without a publication timestamp so they
// land in the zero-recency band.
const staleMinutes = 9999

var categoryBonuses = map[string]int{
	classify.CategoryBreaking:    18,
	classify.CategoryRumor:       15,
	classify.CategoryTransfer:    12,
	classify.CategoryInjury:      10,
	classify.CategoryControversy: 8,
	classify.CategoryMatchResult: 5,
	classify.CategoryStats:       3,
}

// PostHistory exposes the recently published titles used for the
// repetition penalty.
type PostHistory interface {
	RecentPostTitles(ctx context.Context, since time.Time) ([]string, error)
}

// Scorer ranks candidate items.
type Scorer struct {
	posts             PostHistory
	specialistDomains map[string]struct{}
	now               func() time.Time
	log               zerolog.Logger
}

func New(posts PostHistory, specialistDomains []string, logger zerolog.Logger) *Scorer {
	domains := make(map[string]struct{}, len(specialistDomains))
	for _, d := range specialistDomains {
		domains[strings.ToLower(d)] = struct{}{}
	}
	return &Scorer{
		posts:             posts,
		specialistDomains: domains,
		now:               time.Now,
		log:               logger.With().Str("component", "rank").Logger(),
	}
}

// RankAll scores every item and returns them sorted by score descending.
// The sort is stable so equal scores keep collection order.
func (s *Scorer) RankAll(ctx context.Context, items []models.CandidateItem) []models.CandidateItem {
	recent := s.recentTitles(ctx)

	for i := range items {
		items[i].Score = s.score(&items[i], recent)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	return items
}

// Score computes a single item's score.
func (s *Scorer) Score(ctx context.Context, item *models.CandidateItem) int {
	return s.score(item, s.recentTitles(ctx))
}

func (s *Scorer) recentTitles(ctx context.Context) []string {
	since := s.now().UTC().Add(-24 * time.Hour)
	titles, err := s.posts.RecentPostTitles(ctx, since)
	if err != nil {
		s.log.Warn().Err(err).Msg("Could not load recent posts, repetition penalty disabled")
		return nil
	}
	return titles
}

func (s *Scorer) score(item *models.CandidateItem, recentTitles []string) int {
	recency := recencyScore(item.PublishedAt, s.now().UTC())
	source := sourceScore(item.SourceWeight)
	entity := entityScore(item)
	category := categoryBonuses[item.Category]
	exclusivity := s.exclusivityScore(item)
	penalty := repetitionPenalty(item.NormalizedTitle, recentTitles)

	total := recency + source + entity + category + exclusivity + penalty
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	s.log.Debug().
		Str("title", item.Title).
		Int("recency", recency).
		Int("source", source).
		Int("entity", entity).
		Int("category", category).
		Int("exclusivity", exclusivity).
		Int("penalty", penalty).
		Int("total", total).
		Msg("Scored item")

	return total
}

// recencyScore decays in steps from 30 points for sub-30-minute items to
// zero after twelve hours.
func recencyScore(published *time.Time, now time.Time) int {
	minutes := float64(staleMinutes)
	if published != nil {
		minutes = now.Sub(*published).Minutes()
	}

	switch {
	case minutes < 30:
		return 30
	case minutes < 60:
		return 25
	case minutes < 120:
		return 20
	case minutes < 240:
		return 15
	case minutes < 480:
		return 10
	case minutes < 720:
		return 5
	default:
		return 0
	}
}

func sourceScore(weight int) int {
	if weight < 0 {
		return 0
	}
	if weight > 25 {
		return 25
	}
	return weight
}

// entityScore awards 5 points per distinct big entity in the text, capped
// at 25. Entities sharing a first word count once.
func entityScore(item *models.CandidateItem) int {
	tokens := classify.Tokenize(strings.ToLower(item.Title + " " + item.Summary))
	matched := make(map[string]struct{})

	for _, entity := range bigEntities[item.Sport] {
		entityTokens := classify.Tokenize(entity)
		if len(entityTokens) == 0 || !containsSequence(tokens, entityTokens) {
			continue
		}
		matched[entityTokens[0]] = struct{}{}
	}

	score := len(matched) * 5
	if score > 25 {
		return 25
	}
	return score
}

// exclusivityScore adds up to 10 points for first-hand market reporting:
// a specialist outlet, exclusivity wording, or a named transfer reporter.
func (s *Scorer) exclusivityScore(item *models.CandidateItem) int {
	text := strings.ToLower(item.Title + " " + item.Summary)
	score := 0

	if _, ok := s.specialistDomains[strings.ToLower(item.SourceDomain)]; ok {
		score += 4
	}
	for _, phrase := range exclusivityPhrases {
		if strings.Contains(text, phrase) {
			score += 3
			break
		}
	}
	for _, reporter := range specialistReporters {
		if strings.Contains(text, reporter) {
			score += 3
			break
		}
	}

	if score > 10 {
		return 10
	}
	return score
}

// repetitionPenalty discourages retelling stories already posted in the
// last day. Three shared title words mark a post as similar.
func repetitionPenalty(normalizedTitle string, recentTitles []string) int {
	if len(recentTitles) == 0 {
		return 0
	}

	itemWords := make(map[string]struct{})
	for _, w := range strings.Fields(normalizedTitle) {
		itemWords[w] = struct{}{}
	}

	similar := 0
	for _, title := range recentTitles {
		overlap := 0
		seen := make(map[string]struct{})
		for _, w := range strings.Fields(strings.ToLower(title)) {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			if _, ok := itemWords[w]; ok {
				overlap++
			}
		}
		if overlap >= 3 {
			similar++
		}
	}

	switch {
	case similar >= 2:
		return -10
	case similar == 1:
		return -5
	default:
		return 0
	}
}

func containsSequence(tokens, seq []string) bool {
	if len(seq) == 0 || len(tokens) < len(seq) {
		return false
	}
	for i := 0; i+len(seq) <= len(tokens); i++ {
		match := true
		for j := range seq {
			if tokens[i+j] != seq[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
