package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"goalwire/bot/internal/classify"
	"goalwire/bot/internal/config"
	"goalwire/bot/internal/database"
	"goalwire/bot/internal/dedupe"
	"goalwire/bot/internal/feed"
	"goalwire/bot/internal/models"
	"goalwire/bot/internal/normalize"
	"goalwire/bot/internal/rank"
	"goalwire/bot/internal/repo"
	"goalwire/bot/internal/schedule"
)

func pipelineConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.WindowStart = "00:00"
	cfg.WindowEnd = "23:59"
	return cfg
}

// Runs the whole news pipeline against a real database: three feed items,
// two already known by canonical URL, the survivor classified, scored and
// planned as a single post.
func TestNewsPipelineEndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := pipelineConfig()

	db, err := database.NewDB(database.NewConfig(filepath.Join(t.TempDir(), "pipeline.db")))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()
	r := repo.New(db)

	// Two stories the bot has already seen.
	for _, seen := range []struct{ title, url string }{
		{"Cristiano Ronaldo anuncia su retirada", "https://marca.com/futbol/cr7-retirada"},
		{"La NBA suspende el partido por la tormenta", "https://marca.com/baloncesto/nba-suspension"},
	} {
		item := models.CandidateItem{
			Title:           seen.title,
			NormalizedTitle: seen.title,
			Link:            seen.url,
			CanonicalURL:    seen.url,
			ContentHash:     "hash-" + seen.url,
			SourceName:      "Marca",
			SourceDomain:    "marca.com",
			Sport:           "football_eu",
			Category:        "breaking",
			Status:          models.StatusConfirmed,
			Score:           70,
		}
		if _, err := r.UpsertArticle(ctx, &item); err != nil {
			t.Fatalf("seeding history: %v", err)
		}
	}

	published := time.Now().UTC().Add(-5 * time.Minute)
	rawItems := []feed.Item{
		{
			Title:           "Cristiano Ronaldo anuncia su retirada",
			Link:            "https://marca.com/futbol/cr7-retirada",
			Summary:         "El portugués deja el fútbol.",
			Published:       &published,
			SourceName:      "Marca",
			SourceSportHint: "football_eu",
			SourceWeight:    22,
		},
		{
			Title:           "La NBA suspende el partido por la tormenta",
			Link:            "https://marca.com/baloncesto/nba-suspension",
			Summary:         "Aplazado por seguridad.",
			Published:       &published,
			SourceName:      "Marca",
			SourceSportHint: "nba",
			SourceWeight:    22,
		},
		{
			Title:           "Fichaje: el Barcelona abre el traspaso del delantero",
			Link:            "https://as.com/futbol/barcelona-delantero",
			Summary:         "El club azulgrana tantea un movimiento de mercado.",
			Published:       &published,
			SourceName:      "AS",
			SourceSportHint: "football_eu",
			SourceWeight:    20,
		},
	}

	candidates := normalize.New().NormalizeAll(rawItems)
	if len(candidates) != 3 {
		t.Fatalf("normalizer kept %d of 3 items", len(candidates))
	}

	deduper := dedupe.New(r, cfg.DedupeThreshold, cfg.DedupeWindow, cfg.DedupeLimit, zerolog.Nop())
	kept, duplicates := deduper.Filter(ctx, candidates)
	if len(kept) != 1 || duplicates != 2 {
		t.Fatalf("dedupe kept %d with %d duplicates, want 1 and 2", len(kept), duplicates)
	}

	classify.New(cfg.OfficialDomains).ClassifyAll(kept)
	item := kept[0]
	if item.Category != classify.CategoryTransfer {
		t.Errorf("category = %q, want transfer", item.Category)
	}
	if item.Status != models.StatusRumor {
		t.Errorf("status = %q, want RUMOR", item.Status)
	}
	if item.Sport != classify.SportFootball {
		t.Errorf("sport = %q, want football_eu", item.Sport)
	}

	// recency 30 + weight 20 + one big entity 5 + transfer bonus 12.
	kept = rank.New(r, cfg.SpecialistDomains, zerolog.Nop()).RankAll(ctx, kept)
	if kept[0].Score != 67 {
		t.Errorf("score = %d, want 67", kept[0].Score)
	}

	rules := schedule.NewRulesChecker(cfg, r, zerolog.Nop())
	planner := schedule.NewPlanner(cfg, rules, r, zerolog.Nop())

	plans := planner.PlanPublications(ctx, kept)
	if len(plans) != 1 {
		t.Fatalf("expected one plan, got %d", len(plans))
	}
	if plans[0].Type != models.PostTypeSingle {
		t.Errorf("plan type = %q, want single", plans[0].Type)
	}
	if plans[0].Priority != 67 {
		t.Errorf("plan priority = %d, want 67", plans[0].Priority)
	}
	if len(plans[0].ArticleIDs) != 1 || plans[0].ArticleIDs[0] == 0 {
		t.Fatalf("expected one planned article with an assigned ID, got %v", plans[0].ArticleIDs)
	}

	// Planning persists the batch itself; the fetched counter moves once.
	stats, err := r.GetDailyStats(ctx, time.Now().UTC().Format("2006-01-02"))
	if err != nil {
		t.Fatalf("loading stats: %v", err)
	}
	if stats.ArticlesFetched != 1 {
		t.Errorf("articles_fetched = %d, want 1", stats.ArticlesFetched)
	}
}
