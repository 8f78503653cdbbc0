package repo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"goalwire/bot/internal/config"
	"goalwire/bot/internal/database"
	"goalwire/bot/internal/models"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.NewDB(database.NewConfig(dbPath))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func testCandidate(title, canonicalURL, hash string) models.CandidateItem {
	return models.CandidateItem{
		Title:           title,
		NormalizedTitle: title,
		Link:            canonicalURL,
		CanonicalURL:    canonicalURL,
		Summary:         "summary",
		ContentHash:     hash,
		SourceName:      "Marca",
		SourceDomain:    "marca.com",
		Sport:           "football_eu",
		Category:        "transfer",
		Status:          models.StatusRumor,
		Score:           60,
	}
}

func TestUpsertArticleInsertThenUpdate(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	item := testCandidate("Mbappe to Madrid", "https://marca.com/a", "hash-a")
	id1, err := r.UpsertArticle(ctx, &item)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	item.Score = 85
	item.Status = models.StatusConfirmed
	id2, err := r.UpsertArticle(ctx, &item)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("upsert changed id: %d != %d", id1, id2)
	}

	rows, err := r.DigestCandidates(ctx, "football_eu", time.Now().Add(-time.Hour), 80, 100, 10)
	if err != nil {
		t.Fatalf("digest candidates: %v", err)
	}
	if len(rows) != 1 || rows[0].Score != 85 {
		t.Fatalf("expected updated score 85, got %+v", rows)
	}
}

func TestDuplicateLookups(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	item := testCandidate("benzema injury update", "https://as.com/b", "hash-b")
	if _, err := r.UpsertArticle(ctx, &item); err != nil {
		t.Fatal(err)
	}

	if ok, _ := r.HasCanonicalURL(ctx, "https://as.com/b"); !ok {
		t.Error("expected canonical URL hit")
	}
	if ok, _ := r.HasCanonicalURL(ctx, "https://as.com/other"); ok {
		t.Error("unexpected canonical URL hit")
	}
	if ok, _ := r.HasContentHash(ctx, "hash-b"); !ok {
		t.Error("expected content hash hit")
	}

	titles, err := r.RecentNormalizedTitles(ctx, time.Now().UTC().Add(-time.Hour), 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(titles) != 1 || titles[0] != "benzema injury update" {
		t.Errorf("unexpected titles: %v", titles)
	}
}

func TestDigestCandidatesFiltersFlags(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	inBand := testCandidate("mid score", "https://marca.com/mid", "h1")
	inBand.Score = 65
	tooHigh := testCandidate("high score", "https://marca.com/high", "h2")
	tooHigh.Score = 90
	posted := testCandidate("already posted", "https://marca.com/posted", "h3")
	posted.Score = 60

	var postedID int64
	for _, item := range []*models.CandidateItem{&inBand, &tooHigh, &posted} {
		id, err := r.UpsertArticle(ctx, item)
		if err != nil {
			t.Fatal(err)
		}
		if item == &posted {
			postedID = id
		}
	}
	if err := r.MarkPosted(ctx, []int64{postedID}); err != nil {
		t.Fatal(err)
	}

	rows, err := r.DigestCandidates(ctx, "football_eu", time.Now().Add(-time.Hour), 55, 75, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Title != "mid score" {
		t.Fatalf("expected only the in-band unposted article, got %+v", rows)
	}
}

func TestPostsCountersAndHistory(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	item := testCandidate("ancelotti presser", "https://marca.com/p", "h-p")
	articleID, err := r.UpsertArticle(ctx, &item)
	if err != nil {
		t.Fatal(err)
	}

	post := &models.Post{
		Sport:    "football_eu",
		PostType: models.PostTypeSingle,
		Caption:  "caption",
	}
	post.ArticleID.Int64 = articleID
	post.ArticleID.Valid = true
	if _, err := r.InsertPost(ctx, post); err != nil {
		t.Fatal(err)
	}

	count, err := r.CountPostsSince(ctx, time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 post, got %d", count)
	}

	last, err := r.LastPostTimeBySport(ctx, "football_eu")
	if err != nil {
		t.Fatal(err)
	}
	if last == nil {
		t.Fatal("expected a last post time")
	}
	if last, _ := r.LastPostTimeBySport(ctx, "nba"); last != nil {
		t.Error("expected no nba posts")
	}

	titles, err := r.RecentPostTitles(ctx, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(titles) != 1 || titles[0] != "ancelotti presser" {
		t.Errorf("unexpected post titles: %v", titles)
	}
}

func TestInsertDigestMarksArticles(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	var ids []int64
	for _, url := range []string{"https://as.com/1", "https://as.com/2"} {
		item := testCandidate("digest item "+url, url, "hash-"+url)
		id, err := r.UpsertArticle(ctx, &item)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	digest := &models.Digest{Sport: "football_eu", Caption: "resumen"}
	if _, err := r.InsertDigest(ctx, digest, ids); err != nil {
		t.Fatal(err)
	}
	if digest.ArticleCount != 2 {
		t.Errorf("expected article count 2, got %d", digest.ArticleCount)
	}

	rows, err := r.DigestCandidates(ctx, "football_eu", time.Now().Add(-time.Hour), 0, 100, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("digested articles should be excluded, got %d", len(rows))
	}
}

func TestLiveMatchUpsertPreservesCounters(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	match := &models.LiveMatch{
		MatchID:        "m1",
		LeagueID:       140,
		LeagueName:     "LaLiga",
		HomeTeam:       "Real Madrid",
		AwayTeam:       "Barcelona",
		MatchStatus:    models.MatchStatusFirstHalf,
		CurrentMinute:  12,
		IsTopTeamMatch: true,
	}
	if err := r.UpsertLiveMatch(ctx, match); err != nil {
		t.Fatal(err)
	}

	event := &models.LiveEvent{
		MatchID:    "m1",
		LeagueID:   140,
		LeagueName: "LaLiga",
		HomeTeam:   "Real Madrid",
		AwayTeam:   "Barcelona",
		HomeScore:  1,
		Type:       models.EventGoal,
		Detail:     "Gol de Real Madrid",
	}
	minute := 23
	event.Minute = &minute
	if err := r.RecordLiveEvent(ctx, event, 1001, "@chan"); err != nil {
		t.Fatal(err)
	}

	match.HomeScore = 1
	match.CurrentMinute = 24
	if err := r.UpsertLiveMatch(ctx, match); err != nil {
		t.Fatal(err)
	}

	stored, err := r.GetLiveMatch(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if stored == nil {
		t.Fatal("expected stored match")
	}
	if stored.EventsPublished != 1 {
		t.Errorf("snapshot upsert reset events_published: %d", stored.EventsPublished)
	}
	if !stored.LastEventAt.Valid {
		t.Error("snapshot upsert cleared last_event_at")
	}
	if stored.HomeScore != 1 || stored.CurrentMinute != 24 {
		t.Errorf("snapshot fields not updated: %+v", stored)
	}
}

func TestEventPublishedIdentity(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	match := &models.LiveMatch{MatchID: "m2", HomeTeam: "Atletico", AwayTeam: "Sevilla", MatchStatus: models.MatchStatusSecondHalf}
	if err := r.UpsertLiveMatch(ctx, match); err != nil {
		t.Fatal(err)
	}

	minute := 55
	player := "Griezmann"
	goal := &models.LiveEvent{MatchID: "m2", HomeTeam: "Atletico", AwayTeam: "Sevilla", HomeScore: 1, Type: models.EventGoal, Minute: &minute, Player: &player}
	if err := r.RecordLiveEvent(ctx, goal, 2001, "@chan"); err != nil {
		t.Fatal(err)
	}

	if ok, _ := r.IsEventPublished(ctx, "m2", models.EventGoal, &minute, &player); !ok {
		t.Error("exact goal identity should be published")
	}
	later := 78
	if ok, _ := r.IsEventPublished(ctx, "m2", models.EventGoal, &later, &player); ok {
		t.Error("later goal must not be treated as a duplicate")
	}
	if ok, _ := r.IsEventPublished(ctx, "m2", models.EventGoal, nil, nil); ok {
		t.Error("goal with no minute/player is a different identity")
	}

	final := &models.LiveEvent{MatchID: "m2", HomeTeam: "Atletico", AwayTeam: "Sevilla", HomeScore: 1, Type: models.EventFinal}
	fm := 90
	final.Minute = &fm
	if err := r.RecordLiveEvent(ctx, final, 2002, "@chan"); err != nil {
		t.Fatal(err)
	}
	other := 93
	if ok, _ := r.IsEventPublished(ctx, "m2", models.EventFinal, &other, nil); !ok {
		t.Error("final is unique per match regardless of minute")
	}

	count, err := r.MatchEventCount(ctx, "m2")
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected 2 published events, got %d", count)
	}

	last, err := r.LastEventTime(ctx, "m2")
	if err != nil {
		t.Fatal(err)
	}
	if last == nil {
		t.Error("expected a last event time")
	}
}

func TestDailyStatsAccumulate(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	fixed := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	if err := r.IncrementArticlesFetched(ctx, 12); err != nil {
		t.Fatal(err)
	}
	if err := r.IncrementArticlesFetched(ctx, 5); err != nil {
		t.Fatal(err)
	}
	if err := r.IncrementPostCount(ctx); err != nil {
		t.Fatal(err)
	}

	stats, err := r.GetDailyStats(ctx, "2025-03-10")
	if err != nil {
		t.Fatal(err)
	}
	if stats.ArticlesFetched != 17 || stats.PostCount != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	empty, err := r.GetDailyStats(ctx, "2025-03-11")
	if err != nil {
		t.Fatal(err)
	}
	if empty.PostCount != 0 {
		t.Errorf("expected zeroed stats for unseen day, got %+v", empty)
	}
}

func TestSeedSourcesIdempotent(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	cfgSources := []config.SourceConfig{
		{Name: "Marca", URL: "https://e00-marca.uecdn.es/rss/portada.xml", SportHint: "football_eu", Weight: 15},
		{Name: "AS", URL: "https://as.com/rss/tags/ultimas_noticias.xml", SportHint: "football_eu", Weight: 12},
	}
	if err := r.SeedSources(ctx, cfgSources); err != nil {
		t.Fatal(err)
	}
	if err := r.SeedSources(ctx, cfgSources); err != nil {
		t.Fatal(err)
	}

	active, err := r.ActiveSources(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != len(cfgSources) {
		t.Fatalf("expected %d sources, got %d", len(cfgSources), len(active))
	}
	if active[0].Weight < active[len(active)-1].Weight {
		t.Error("sources not ordered by weight")
	}

	if err := r.TouchSourceFetched(ctx, active[0].ID); err != nil {
		t.Fatal(err)
	}
	refreshed, err := r.ActiveSources(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range refreshed {
		if s.ID == active[0].ID && !s.LastFetchedAt.Valid {
			t.Error("last_fetched_at not set")
		}
	}
}

func TestPurgeOldArticles(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	old := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return old }
	stale := testCandidate("old news", "https://marca.com/old", "hash-old")
	if _, err := r.UpsertArticle(ctx, &stale); err != nil {
		t.Fatal(err)
	}

	r.now = time.Now
	fresh := testCandidate("fresh news", "https://marca.com/fresh", "hash-fresh")
	if _, err := r.UpsertArticle(ctx, &fresh); err != nil {
		t.Fatal(err)
	}

	purged, err := r.PurgeOldArticles(ctx, 7)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged row, got %d", purged)
	}

	if ok, _ := r.HasCanonicalURL(ctx, "https://marca.com/old"); ok {
		t.Error("stale article should be gone")
	}
	if ok, _ := r.HasCanonicalURL(ctx, "https://marca.com/fresh"); !ok {
		t.Error("fresh article should survive")
	}

	if _, err := r.PurgeOldArticles(ctx, 0); err == nil {
		t.Error("expected error for non-positive retention")
	}
}
