// Package app wires the collection pipeline and the live match tracker
// into one long-running bot process.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"goalwire/bot/internal/classify"
	"goalwire/bot/internal/config"
	"goalwire/bot/internal/database"
	"goalwire/bot/internal/dedupe"
	"goalwire/bot/internal/feed"
	"goalwire/bot/internal/live"
	"goalwire/bot/internal/media"
	"goalwire/bot/internal/models"
	"goalwire/bot/internal/normalize"
	"goalwire/bot/internal/publish"
	"goalwire/bot/internal/rank"
	"goalwire/bot/internal/repo"
	"goalwire/bot/internal/schedule"
)

// App owns every pipeline stage and drives them on two tickers, one for
// the news cycle and one for live match polling.
type App struct {
	cfg  *config.Config
	repo *repo.Repo

	collector  *feed.Collector
	normalizer *normalize.Normalizer
	deduper    *dedupe.Deduper
	classifier *classify.Classifier
	scorer     *rank.Scorer
	planner    *schedule.Planner

	liveClient *live.Client
	detector   *live.Detector
	liveRules  *live.Rules

	telegram *publish.Telegram
	captions *publish.CaptionWriter
	media    *media.Downloader

	log zerolog.Logger
}

// New builds the bot. Telegram credentials are required; everything else
// degrades gracefully.
func New(cfg *config.Config, db *database.DB, logger zerolog.Logger) (*App, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.ChatID == "" {
		return nil, fmt.Errorf("CHANNEL_CHAT_ID is required")
	}

	r := repo.New(db)
	rules := schedule.NewRulesChecker(cfg, r, logger)
	liveClient := live.NewClient(cfg.LiveAPIKey, cfg.LiveAPIHost, logger)

	return &App{
		cfg:        cfg,
		repo:       r,
		collector:  feed.NewCollector(cfg.FetchTimeout, logger),
		normalizer: normalize.New(),
		deduper:    dedupe.New(r, cfg.DedupeThreshold, cfg.DedupeWindow, cfg.DedupeLimit, logger),
		classifier: classify.New(cfg.OfficialDomains),
		scorer:     rank.New(r, cfg.SpecialistDomains, logger),
		planner:    schedule.NewPlanner(cfg, rules, r, logger),
		liveClient: liveClient,
		detector:   live.NewDetector(liveClient, r, cfg.TopTeams, cfg.TrackedLeagues, logger),
		liveRules:  live.NewRules(r, cfg.LiveMaxEvents, cfg.LiveCooldown, logger),
		telegram:   publish.NewTelegram(cfg.BotToken, cfg.ChatID, logger),
		captions:   publish.NewCaptionWriter(),
		media:      media.NewDownloader(logger),
		log:        logger.With().Str("component", "app").Logger(),
	}, nil
}

// SeedSources loads the sources file (falling back to the built-in list),
// applies its editorial overrides to the config, and syncs the source list
// into the database.
func SeedSources(ctx context.Context, cfg *config.Config, r *repo.Repo, logger zerolog.Logger) error {
	sources := config.DefaultSources()
	if file, err := config.LoadSourcesFile(cfg.SourcesPath); err == nil {
		cfg.ApplySourcesFile(file)
		if len(file.Sources) > 0 {
			sources = file.Sources
		}
		logger.Info().Str("path", cfg.SourcesPath).Int("sources", len(sources)).Msg("Loaded sources file")
	} else {
		logger.Warn().Err(err).Str("path", cfg.SourcesPath).Msg("Sources file not loaded, using built-in defaults")
	}

	if err := r.SeedSources(ctx, sources); err != nil {
		return fmt.Errorf("seeding sources: %w", err)
	}
	return nil
}

// Run starts both polling loops and blocks until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := SeedSources(ctx, a.cfg, a.repo, a.log); err != nil {
		return err
	}

	a.log.Info().
		Dur("poll_interval", a.cfg.PollInterval).
		Dur("live_poll_interval", a.cfg.LivePollInterval).
		Bool("live_enabled", a.liveClient.Enabled()).
		Msg("Bot starting")

	// First news cycle runs immediately, the rest on the ticker.
	a.newsCycle(ctx)

	newsTicker := time.NewTicker(a.cfg.PollInterval)
	defer newsTicker.Stop()
	liveTicker := time.NewTicker(a.cfg.LivePollInterval)
	defer liveTicker.Stop()

	for {
		select {
		case <-newsTicker.C:
			a.newsCycle(ctx)
		case <-liveTicker.C:
			a.liveCycle(ctx)
		case <-ctx.Done():
			a.log.Info().Msg("Bot shutting down")
			return nil
		}
	}
}

// newsCycle runs one full pass: collect, normalize, dedupe, classify,
// rank, plan, publish.
func (a *App) newsCycle(ctx context.Context) {
	started := time.Now()

	sources, err := a.repo.ActiveSources(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("Failed to load sources")
		return
	}

	rawItems, fetched := a.collector.CollectAll(ctx, sources)
	for _, sourceID := range fetched {
		if err := a.repo.TouchSourceFetched(ctx, sourceID); err != nil {
			a.log.Warn().Err(err).Int64("source_id", sourceID).Msg("Failed to record fetch time")
		}
	}
	if ctx.Err() != nil {
		return
	}

	candidates := a.normalizer.NormalizeAll(rawItems)
	kept, duplicates := a.deduper.Filter(ctx, candidates)
	if duplicates > 0 {
		if err := a.repo.IncrementArticlesDuplicated(ctx, duplicates); err != nil {
			a.log.Warn().Err(err).Msg("Failed to update duplicate stats")
		}
	}

	a.classifier.ClassifyAll(kept)
	kept = a.scorer.RankAll(ctx, kept)

	// PlanPublications persists the batch itself.
	plans := a.planner.PlanPublications(ctx, kept)

	published := 0
	for i := range plans {
		if ctx.Err() != nil {
			break
		}
		if err := a.executePlan(ctx, &plans[i]); err != nil {
			a.log.Error().Err(err).Str("type", plans[i].Type).Str("reason", plans[i].Reason).Msg("Plan execution failed")
			continue
		}
		published++
	}

	if purged, err := a.repo.PurgeOldArticles(ctx, a.cfg.RetentionDays); err != nil {
		a.log.Warn().Err(err).Msg("Article purge failed")
	} else if purged > 0 {
		a.log.Info().Int64("purged", purged).Int("retention_days", a.cfg.RetentionDays).Msg("Purged old articles")
	}

	a.log.Info().
		Int("sources", len(sources)).
		Int("fetched", len(rawItems)).
		Int("duplicates", duplicates).
		Int("candidates", len(kept)).
		Int("plans", len(plans)).
		Int("published", published).
		Dur("elapsed", time.Since(started)).
		Msg("News cycle complete")
}

func (a *App) executePlan(ctx context.Context, plan *schedule.Plan) error {
	switch plan.Type {
	case models.PostTypeDigest:
		return a.publishDigest(ctx, plan)
	default:
		return a.publishSingle(ctx, plan)
	}
}

func (a *App) publishSingle(ctx context.Context, plan *schedule.Plan) error {
	if len(plan.Items) == 0 {
		return fmt.Errorf("single plan with no items")
	}
	item := &plan.Items[0]
	caption := a.captions.Article(item)

	messageID, err := a.sendWithOptionalImage(ctx, caption, item)
	if err != nil {
		return err
	}

	post := &models.Post{
		Caption:  caption,
		Sport:    item.Sport,
		PostType: models.PostTypeSingle,
	}
	post.ArticleID.Int64 = item.ArticleID
	post.ArticleID.Valid = item.ArticleID != 0
	post.TelegramMessageID.Int64 = messageID
	post.TelegramMessageID.Valid = true
	post.TelegramChatID.String = a.cfg.ChatID
	post.TelegramChatID.Valid = true

	if _, err := a.repo.InsertPost(ctx, post); err != nil {
		return fmt.Errorf("recording post: %w", err)
	}
	if err := a.repo.MarkPosted(ctx, plan.ArticleIDs); err != nil {
		a.log.Warn().Err(err).Msg("Failed to mark article posted")
	}
	if err := a.repo.IncrementPostCount(ctx); err != nil {
		a.log.Warn().Err(err).Msg("Failed to update post stats")
	}

	a.log.Info().
		Int64("message_id", messageID).
		Str("sport", item.Sport).
		Int("score", item.Score).
		Str("title", item.Title).
		Msg("Published article")
	return nil
}

func (a *App) publishDigest(ctx context.Context, plan *schedule.Plan) error {
	caption := a.captions.Digest(plan.Items, plan.Sport, int(a.cfg.DigestWindow.Minutes()))

	// Digests link the top item as their source.
	sourceURL, sourceName := "", ""
	if len(plan.Items) > 0 {
		sourceURL = plan.Items[0].Link
		sourceName = plan.Items[0].SourceName
	}

	messageID, err := a.telegram.SendMessage(ctx, caption, sourceURL, sourceName)
	if err != nil {
		return fmt.Errorf("sending digest: %w", err)
	}

	digest := &models.Digest{
		Sport:   plan.Sport,
		Caption: caption,
	}
	digest.TelegramMessageID.Int64 = messageID
	digest.TelegramMessageID.Valid = true
	digest.TelegramChatID.String = a.cfg.ChatID
	digest.TelegramChatID.Valid = true

	if _, err := a.repo.InsertDigest(ctx, digest, plan.ArticleIDs); err != nil {
		return fmt.Errorf("recording digest: %w", err)
	}

	post := &models.Post{
		Caption:  caption,
		Sport:    plan.Sport,
		PostType: models.PostTypeDigest,
	}
	post.TelegramMessageID.Int64 = messageID
	post.TelegramMessageID.Valid = true
	post.TelegramChatID.String = a.cfg.ChatID
	post.TelegramChatID.Valid = true
	if _, err := a.repo.InsertPost(ctx, post); err != nil {
		return fmt.Errorf("recording digest post: %w", err)
	}

	if err := a.repo.IncrementPostCount(ctx); err != nil {
		a.log.Warn().Err(err).Msg("Failed to update post stats")
	}
	if err := a.repo.IncrementDigestCount(ctx); err != nil {
		a.log.Warn().Err(err).Msg("Failed to update digest stats")
	}

	a.log.Info().
		Int64("message_id", messageID).
		Str("sport", plan.Sport).
		Int("articles", len(plan.ArticleIDs)).
		Msg("Published digest")
	return nil
}

// sendWithOptionalImage tries the article image first and falls back to a
// text message when the download fails.
func (a *App) sendWithOptionalImage(ctx context.Context, caption string, item *models.CandidateItem) (int64, error) {
	if item.ImageURL != "" {
		imageData, err := a.media.Download(ctx, item.ImageURL)
		if err == nil {
			return a.telegram.SendPhoto(ctx, imageData, caption, item.Link, item.SourceName)
		}
		a.log.Warn().Err(err).Str("image_url", item.ImageURL).Msg("Image download failed, sending text only")
	}
	return a.telegram.SendMessage(ctx, caption, item.Link, item.SourceName)
}

// liveCycle polls the fixtures API and publishes any events that pass the
// live rules.
func (a *App) liveCycle(ctx context.Context) {
	if !a.liveClient.Enabled() {
		return
	}

	detected, err := a.detector.Detect(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("Live detection failed")
		return
	}
	if len(detected) == 0 {
		return
	}

	allowed := a.liveRules.Filter(ctx, detected)
	allowed = live.Prioritize(allowed)

	for i := range allowed {
		if ctx.Err() != nil {
			return
		}
		event := &allowed[i].Event
		caption := a.captions.Event(event)

		messageID, err := a.telegram.SendMessage(ctx, caption, "", "")
		if err != nil {
			a.log.Error().Err(err).Str("match_id", event.MatchID).Str("event", string(event.Type)).Msg("Live event send failed")
			continue
		}

		if err := a.repo.RecordLiveEvent(ctx, event, messageID, a.cfg.ChatID); err != nil {
			a.log.Error().Err(err).Str("match_id", event.MatchID).Msg("Failed to record live event")
			continue
		}

		a.log.Info().
			Int64("message_id", messageID).
			Str("match_id", event.MatchID).
			Str("event", string(event.Type)).
			Str("teams", event.HomeTeam+" vs "+event.AwayTeam).
			Msg("Published live event")
	}
}

// RunOnce seeds sources and runs a single news cycle, for the one-shot
// command.
func (a *App) RunOnce(ctx context.Context) error {
	if err := SeedSources(ctx, a.cfg, a.repo, a.log); err != nil {
		return err
	}
	a.newsCycle(ctx)
	return nil
}
