package live

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"goalwire/bot/internal/models"
)

// eventPriorities orders publication within one cycle. Lower goes first;
// unlisted types sink to the bottom.
var eventPriorities = map[models.EventType]int{
	models.EventFinal:       0,
	models.EventGoal:        1,
	models.EventRedCard:     2,
	models.EventPenaltyMiss: 3,
	models.EventVAR:         4,
	models.EventHalftime:    5,
}

const defaultEventPriority = 10

// EventLog exposes the published-event state the anti-spam rules need.
type EventLog interface {
	IsEventPublished(ctx context.Context, matchID string, eventType models.EventType, minute *int, player *string) (bool, error)
	MatchEventCount(ctx context.Context, matchID string) (int, error)
	LastEventTime(ctx context.Context, matchID string) (*time.Time, error)
}

// Rules applies the anti-spam gates to detected events. Finals bypass the
// per-match cap and the cooldown; nothing bypasses the duplicate check.
type Rules struct {
	log       zerolog.Logger
	events    EventLog
	maxEvents int
	cooldown  time.Duration
	now       func() time.Time
}

func NewRules(events EventLog, maxEvents int, cooldown time.Duration, logger zerolog.Logger) *Rules {
	return &Rules{
		events:    events,
		maxEvents: maxEvents,
		cooldown:  cooldown,
		now:       time.Now,
		log:       logger.With().Str("component", "live-rules").Logger(),
	}
}

// CanPublish checks one event against the duplicate, cap, cooldown and
// top-team gates, returning the blocking reason if any.
func (r *Rules) CanPublish(ctx context.Context, match *models.LiveMatch, event *models.LiveEvent) (bool, string) {
	published, err := r.events.IsEventPublished(ctx, match.MatchID, event.Type, event.Minute, event.Player)
	if err != nil {
		r.log.Warn().Err(err).Str("match_id", match.MatchID).Msg("Duplicate check failed")
	} else if published {
		return false, "event already published"
	}

	if event.Type != models.EventFinal {
		count, err := r.events.MatchEventCount(ctx, match.MatchID)
		if err != nil {
			r.log.Warn().Err(err).Str("match_id", match.MatchID).Msg("Event count failed")
		} else if count >= r.maxEvents {
			return false, fmt.Sprintf("max events (%d) reached for match", r.maxEvents)
		}

		lastEvent, err := r.events.LastEventTime(ctx, match.MatchID)
		if err != nil {
			r.log.Warn().Err(err).Str("match_id", match.MatchID).Msg("Last event lookup failed")
		} else if lastEvent != nil {
			cooldownEnd := lastEvent.Add(r.cooldown)
			if r.now().UTC().Before(cooldownEnd) {
				remaining := cooldownEnd.Sub(r.now().UTC()).Minutes()
				return false, fmt.Sprintf("cooldown active (%.1f min remaining)", remaining)
			}
		}
	}

	if !match.IsTopTeamMatch {
		return false, "not a top team match"
	}

	return true, ""
}

// Filter keeps only the publishable events.
func (r *Rules) Filter(ctx context.Context, detected []Detected) []Detected {
	var publishable []Detected
	for i := range detected {
		canPublish, reason := r.CanPublish(ctx, &detected[i].Match, &detected[i].Event)
		if canPublish {
			publishable = append(publishable, detected[i])
			r.log.Info().
				Str("event", string(detected[i].Event.Type)).
				Str("match", detected[i].Match.HomeTeam+" vs "+detected[i].Match.AwayTeam).
				Msg("Event eligible")
		} else {
			r.log.Debug().
				Str("event", string(detected[i].Event.Type)).
				Str("reason", reason).
				Msg("Event blocked")
		}
	}
	return publishable
}

// Prioritize orders events for publishing: finals, then goals, red cards,
// penalty misses, VAR and halftime. The sort is stable.
func Prioritize(detected []Detected) []Detected {
	sort.SliceStable(detected, func(i, j int) bool {
		return priorityOf(detected[i].Event.Type) < priorityOf(detected[j].Event.Type)
	})
	return detected
}

func priorityOf(eventType models.EventType) int {
	if p, ok := eventPriorities[eventType]; ok {
		return p
	}
	return defaultEventPriority
}
