package schedule

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"goalwire/bot/internal/config"
	"goalwire/bot/internal/models"
)

const digestPriority = 50

// ArticleStore persists candidates ahead of planning.
type ArticleStore interface {
	UpsertArticle(ctx context.Context, item *models.CandidateItem) (int64, error)
	IncrementArticlesFetched(ctx context.Context, n int) error
}

// Plan is one publish action, either a single article or a digest.
type Plan struct {
	Type       string
	Items      []models.CandidateItem
	ArticleIDs []int64
	Sport      string
	Priority   int
	Reason     string
}

// Planner converts ranked candidates into an ordered publication plan.
type Planner struct {
	cfg      *config.Config
	rules    *RulesChecker
	articles ArticleStore
	log      zerolog.Logger
}

func NewPlanner(cfg *config.Config, rules *RulesChecker, articles ArticleStore, logger zerolog.Logger) *Planner {
	return &Planner{
		cfg:      cfg,
		rules:    rules,
		articles: articles,
		log:      logger.With().Str("component", "planner").Logger(),
	}
}

// SaveCandidates upserts every item so reruns are idempotent, recording the
// assigned article IDs back onto the items.
func (p *Planner) SaveCandidates(ctx context.Context, items []models.CandidateItem) []models.CandidateItem {
	saved := 0
	for i := range items {
		id, err := p.articles.UpsertArticle(ctx, &items[i])
		if err != nil {
			p.log.Error().Err(err).Str("title", items[i].Title).Msg("Error saving article")
			continue
		}
		items[i].ArticleID = id
		saved++
	}

	if saved > 0 {
		if err := p.articles.IncrementArticlesFetched(ctx, saved); err != nil {
			p.log.Warn().Err(err).Msg("Could not update fetch counter")
		}
	}
	return items
}

// PlanPublications stores the batch, folds mid-score clusters into digests
// and gates the remaining singles through the rules checker. The returned
// plans are sorted by priority and truncated to the available budget.
func (p *Planner) PlanPublications(ctx context.Context, items []models.CandidateItem) []Plan {
	items = p.SaveCandidates(ctx, items)

	bySport := make(map[string][]models.CandidateItem)
	var sportOrder []string
	for _, item := range items {
		if _, seen := bySport[item.Sport]; !seen {
			sportOrder = append(sportOrder, item.Sport)
		}
		bySport[item.Sport] = append(bySport[item.Sport], item)
	}

	var plans []Plan

	for _, sport := range sportOrder {
		shouldDigest, _ := p.rules.ShouldCreateDigest(ctx, sport)
		if !shouldDigest {
			continue
		}

		digestItems := p.digestSelection(bySport[sport])
		if len(digestItems) <= p.cfg.DigestTrigger {
			continue
		}
		if len(digestItems) > p.cfg.DigestMaxItems {
			digestItems = digestItems[:p.cfg.DigestMaxItems]
		}

		plans = append(plans, Plan{
			Type:       models.PostTypeDigest,
			Items:      digestItems,
			ArticleIDs: articleIDs(digestItems),
			Sport:      sport,
			Priority:   digestPriority,
			Reason:     "digest_aggregation",
		})
		bySport[sport] = removeItems(bySport[sport], digestItems)
		p.log.Info().Str("sport", sport).Int("items", len(digestItems)).Msg("Planned digest")
	}

	var remaining []models.CandidateItem
	for _, sport := range sportOrder {
		remaining = append(remaining, bySport[sport]...)
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Score > remaining[j].Score
	})

	for _, item := range remaining {
		canPublish, reason := p.rules.CanPublishNow(ctx, item.Score, item.Sport)
		if !canPublish {
			p.log.Debug().Str("title", item.Title).Str("reason", reason).Msg("Item held back")
			continue
		}
		plans = append(plans, Plan{
			Type:       models.PostTypeSingle,
			Items:      []models.CandidateItem{item},
			ArticleIDs: []int64{item.ArticleID},
			Sport:      item.Sport,
			Priority:   item.Score,
			Reason:     "single_article",
		})
	}

	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].Priority > plans[j].Priority
	})

	budget := p.rules.RemainingDaily(ctx)
	if hourly := p.rules.RemainingHourly(ctx); hourly < budget {
		budget = hourly
	}
	if len(plans) > budget {
		p.log.Info().Int("plans", len(plans)).Int("budget", budget).Msg("Limiting plans to publish budget")
		plans = plans[:budget]
	}

	p.log.Info().Int("plans", len(plans)).Msg("Created publication plans")
	return plans
}

// NextPublish returns only the highest-priority plan, re-checking the rules
// right before handing it out.
func (p *Planner) NextPublish(ctx context.Context, items []models.CandidateItem) *Plan {
	plans := p.PlanPublications(ctx, items)
	if len(plans) == 0 {
		return nil
	}

	next := plans[0]
	if canPublish, reason := p.rules.CanPublishNow(ctx, next.Priority, next.Sport); !canPublish {
		p.log.Info().Str("reason", reason).Msg("Cannot publish next item")
		return nil
	}
	return &next
}

func (p *Planner) digestSelection(items []models.CandidateItem) []models.CandidateItem {
	var selected []models.CandidateItem
	for _, item := range items {
		if item.Score >= p.cfg.DigestScoreMin && item.Score <= p.cfg.DigestScoreMax {
			selected = append(selected, item)
		}
	}
	return selected
}

func articleIDs(items []models.CandidateItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ArticleID)
	}
	return ids
}

func removeItems(items, toRemove []models.CandidateItem) []models.CandidateItem {
	removed := make(map[int64]struct{}, len(toRemove))
	for _, item := range toRemove {
		removed[item.ArticleID] = struct{}{}
	}

	kept := items[:0]
	for _, item := range items {
		if _, gone := removed[item.ArticleID]; !gone {
			kept = append(kept, item)
		}
	}
	return kept
}
