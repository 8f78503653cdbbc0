// Package schedule decides when articles become posts. The rules checker
// enforces publication budgets and the planner turns ranked candidates into
// an ordered list of publish actions.
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"goalwire/bot/internal/config"
	"goalwire/bot/internal/models"
)

// Store is the slice of storage the scheduler needs.
type Store interface {
	CountPostsSince(ctx context.Context, since time.Time) (int, error)
	LastPostTimeBySport(ctx context.Context, sport string) (*time.Time, error)
	DigestCandidates(ctx context.Context, sport string, since time.Time, scoreMin, scoreMax, limit int) ([]models.CandidateItem, error)
}

// RulesChecker gates publications on caps, the active window and per-sport
// cooldowns. All time comparisons happen in the configured timezone; stored
// timestamps stay UTC.
type RulesChecker struct {
	cfg   *config.Config
	store Store
	loc   *time.Location
	now   func() time.Time
	log   zerolog.Logger
}

func NewRulesChecker(cfg *config.Config, store Store, logger zerolog.Logger) *RulesChecker {
	return &RulesChecker{
		cfg:   cfg,
		store: store,
		loc:   cfg.Location(),
		now:   time.Now,
		log:   logger.With().Str("component", "rules").Logger(),
	}
}

// CanPublishNow runs every gate in order and returns the first failing
// reason. Count queries fail open: a read error never blocks publication.
func (r *RulesChecker) CanPublishNow(ctx context.Context, score int, sport string) (bool, string) {
	if ok, reason := r.checkDailyLimit(ctx); !ok {
		return false, reason
	}
	if ok, reason := r.checkHourlyLimit(ctx); !ok {
		return false, reason
	}
	if ok, reason := r.checkActiveWindow(score); !ok {
		return false, reason
	}
	if sport != "" {
		if ok, reason := r.checkSportCooldown(ctx, sport); !ok {
			return false, reason
		}
	}
	return true, "ok"
}

func (r *RulesChecker) checkDailyLimit(ctx context.Context) (bool, string) {
	postsToday := r.postsSince(ctx, r.startOfDay())
	if postsToday >= r.cfg.MaxPostsPerDay {
		return false, fmt.Sprintf("daily_limit_reached (%d/%d)", postsToday, r.cfg.MaxPostsPerDay)
	}
	return true, "ok"
}

func (r *RulesChecker) checkHourlyLimit(ctx context.Context) (bool, string) {
	postsHour := r.postsSince(ctx, r.now().UTC().Add(-time.Hour))
	if postsHour >= r.cfg.MaxPostsPerHour {
		return false, fmt.Sprintf("hourly_limit_reached (%d/%d)", postsHour, r.cfg.MaxPostsPerHour)
	}
	return true, "ok"
}

func (r *RulesChecker) checkActiveWindow(score int) (bool, string) {
	if r.withinActiveWindow() {
		return true, "ok"
	}
	if score >= r.cfg.OffhoursScore {
		r.log.Info().Int("score", score).Msg("Off-hours publish allowed due to high score")
		return true, "offhours_high_score"
	}
	return false, "outside_active_window"
}

func (r *RulesChecker) checkSportCooldown(ctx context.Context, sport string) (bool, string) {
	cooldown := r.cfg.CooldownFor(sport)

	lastPost, err := r.store.LastPostTimeBySport(ctx, sport)
	if err != nil {
		r.log.Warn().Err(err).Str("sport", sport).Msg("Last post lookup failed, allowing")
		return true, "ok"
	}
	if lastPost == nil {
		return true, "ok"
	}

	elapsed := r.now().UTC().Sub(lastPost.UTC())
	if elapsed < cooldown {
		remaining := int((cooldown - elapsed).Minutes())
		return false, fmt.Sprintf("sport_cooldown (%s, %dmin remaining)", sport, remaining)
	}
	return true, "ok"
}

// RemainingDaily returns how many posts fit before the daily cap.
func (r *RulesChecker) RemainingDaily(ctx context.Context) int {
	remaining := r.cfg.MaxPostsPerDay - r.postsSince(ctx, r.startOfDay())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RemainingHourly returns how many posts fit before the hourly cap.
func (r *RulesChecker) RemainingHourly(ctx context.Context) int {
	remaining := r.cfg.MaxPostsPerHour - r.postsSince(ctx, r.now().UTC().Add(-time.Hour))
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ShouldCreateDigest reports whether enough mid-score unposted articles
// accumulated for one sport, returning up to the configured maximum.
func (r *RulesChecker) ShouldCreateDigest(ctx context.Context, sport string) (bool, []models.CandidateItem) {
	since := r.now().UTC().Add(-r.cfg.DigestWindow)
	candidates, err := r.store.DigestCandidates(ctx, sport, since, r.cfg.DigestScoreMin, r.cfg.DigestScoreMax, r.digestQueryLimit())
	if err != nil {
		r.log.Warn().Err(err).Str("sport", sport).Msg("Digest candidate lookup failed")
		return false, nil
	}

	if len(candidates) > r.cfg.DigestTrigger {
		r.log.Info().Str("sport", sport).Int("candidates", len(candidates)).Msg("Digest trigger")
		if len(candidates) > r.cfg.DigestMaxItems {
			candidates = candidates[:r.cfg.DigestMaxItems]
		}
		return true, candidates
	}
	return false, nil
}

// digestQueryLimit fetches enough rows to fill a digest; it must also
// exceed the trigger threshold or the count check could never fire.
func (r *RulesChecker) digestQueryLimit() int {
	limit := r.cfg.DigestMaxItems
	if limit <= r.cfg.DigestTrigger {
		limit = r.cfg.DigestTrigger + 1
	}
	return limit
}

func (r *RulesChecker) postsSince(ctx context.Context, since time.Time) int {
	count, err := r.store.CountPostsSince(ctx, since)
	if err != nil {
		r.log.Warn().Err(err).Msg("Post count failed, assuming zero")
		return 0
	}
	return count
}

func (r *RulesChecker) startOfDay() time.Time {
	local := r.now().In(r.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, r.loc).UTC()
}

// withinActiveWindow compares wall-clock minutes in the configured
// timezone, inclusive on both ends.
func (r *RulesChecker) withinActiveWindow() bool {
	startMin, err := parseClock(r.cfg.WindowStart)
	if err != nil {
		return true
	}
	endMin, err := parseClock(r.cfg.WindowEnd)
	if err != nil {
		return true
	}

	local := r.now().In(r.loc)
	current := local.Hour()*60 + local.Minute()
	return current >= startMin && current <= endMin
}

func parseClock(s string) (int, error) {
	hh, mm, found := strings.Cut(s, ":")
	if !found {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	hours, err := strconv.Atoi(hh)
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil {
		return 0, err
	}
	return hours*60 + minutes, nil
}
