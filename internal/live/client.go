// Package live tracks matches of top teams and turns score and status
// changes into publishable events.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"goalwire/bot/internal/models"
)

const requestTimeout = 15 * time.Second

// Client talks to the fixtures API. The free tier host exposes a by-date
// endpoint without per-event detail; the paid host adds fixture events.
type Client struct {
	apiKey     string
	apiHost    string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(apiKey, apiHost string, logger zerolog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		apiHost:    apiHost,
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        logger.With().Str("component", "live-client").Logger(),
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// LiveMatches returns the fixtures currently in play.
func (c *Client) LiveMatches(ctx context.Context) ([]models.LiveMatch, error) {
	if strings.Contains(c.apiHost, "free-api-live-football-data") {
		return c.liveMatchesFreeAPI(ctx)
	}
	return c.liveMatchesAPIFootball(ctx)
}

type freeMatchesResponse struct {
	Status   string `json:"status"`
	Response struct {
		Matches []freeMatch `json:"matches"`
	} `json:"response"`
}

type freeMatch struct {
	ID       json.Number `json:"id"`
	LeagueID int         `json:"leagueId"`
	Home     freeTeam    `json:"home"`
	Away     freeTeam    `json:"away"`
	Status   struct {
		Started   bool `json:"started"`
		Finished  bool `json:"finished"`
		Cancelled bool `json:"cancelled"`
		Reason    struct {
			Short string `json:"short"`
		} `json:"reason"`
	} `json:"status"`
}

type freeTeam struct {
	Name     string `json:"name"`
	LongName string `json:"longName"`
	Score    int    `json:"score"`
}

// liveMatchesFreeAPI lists today's fixtures and keeps the ones in play.
// The free tier reports no current minute.
func (c *Client) liveMatchesFreeAPI(ctx context.Context) ([]models.LiveMatch, error) {
	url := fmt.Sprintf("https://%s/football-get-matches-by-date?date=%s",
		c.apiHost, time.Now().UTC().Format("20060102"))

	var resp freeMatchesResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("fixtures API returned status %q", resp.Status)
	}

	var matches []models.LiveMatch
	for _, m := range resp.Response.Matches {
		if !m.Status.Started || m.Status.Finished || m.Status.Cancelled {
			continue
		}

		status := m.Status.Reason.Short
		if status == "" {
			status = models.MatchStatusLive
		}

		matches = append(matches, models.LiveMatch{
			MatchID:     m.ID.String(),
			LeagueID:    m.LeagueID,
			HomeTeam:    NormalizeTeamName(teamName(m.Home)),
			AwayTeam:    NormalizeTeamName(teamName(m.Away)),
			HomeScore:   m.Home.Score,
			AwayScore:   m.Away.Score,
			MatchStatus: status,
		})
	}
	return matches, nil
}

type fixturesResponse struct {
	Response []struct {
		Fixture struct {
			ID     json.Number `json:"id"`
			Status struct {
				Short   string `json:"short"`
				Elapsed int    `json:"elapsed"`
			} `json:"status"`
		} `json:"fixture"`
		League struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"league"`
		Teams struct {
			Home struct {
				Name string `json:"name"`
			} `json:"home"`
			Away struct {
				Name string `json:"name"`
			} `json:"away"`
		} `json:"teams"`
		Goals struct {
			Home int `json:"home"`
			Away int `json:"away"`
		} `json:"goals"`
	} `json:"response"`
}

func (c *Client) liveMatchesAPIFootball(ctx context.Context) ([]models.LiveMatch, error) {
	url := fmt.Sprintf("https://%s/v3/fixtures?live=all", c.apiHost)

	var resp fixturesResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	var matches []models.LiveMatch
	for _, f := range resp.Response {
		matches = append(matches, models.LiveMatch{
			MatchID:       f.Fixture.ID.String(),
			LeagueID:      f.League.ID,
			LeagueName:    f.League.Name,
			HomeTeam:      NormalizeTeamName(f.Teams.Home.Name),
			AwayTeam:      NormalizeTeamName(f.Teams.Away.Name),
			HomeScore:     f.Goals.Home,
			AwayScore:     f.Goals.Away,
			MatchStatus:   f.Fixture.Status.Short,
			CurrentMinute: f.Fixture.Status.Elapsed,
		})
	}
	return matches, nil
}

type eventsResponse struct {
	Response []struct {
		Type   string `json:"type"`
		Detail string `json:"detail"`
		Time   struct {
			Elapsed *int `json:"elapsed"`
		} `json:"time"`
		Player struct {
			Name string `json:"name"`
		} `json:"player"`
		Team struct {
			Name string `json:"name"`
		} `json:"team"`
	} `json:"response"`
}

// MatchEvents fetches detailed fixture events. Only the paid API exposes
// them; on the free tier this returns nothing.
func (c *Client) MatchEvents(ctx context.Context, matchID string) ([]models.LiveEvent, error) {
	if !strings.Contains(c.apiHost, "api-football-v1") {
		return nil, nil
	}

	url := fmt.Sprintf("https://%s/v3/fixtures/events?fixture=%s", c.apiHost, matchID)

	var resp eventsResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	var events []models.LiveEvent
	for _, ev := range resp.Response {
		detail := strings.ToLower(ev.Detail)

		var eventType models.EventType
		var eventDetail string
		switch {
		case strings.EqualFold(ev.Type, "goal"):
			eventType = models.EventGoal
			if strings.Contains(detail, "penalty") {
				eventDetail = "Penalty"
			} else if strings.Contains(detail, "own goal") {
				eventDetail = "Own Goal"
			}
		case strings.EqualFold(ev.Type, "card") && strings.Contains(detail, "red"):
			eventType = models.EventRedCard
			if strings.Contains(detail, "straight") {
				eventDetail = "Direct"
			} else {
				eventDetail = "Second Yellow"
			}
		case strings.EqualFold(ev.Type, "var"):
			eventType = models.EventVAR
			eventDetail = ev.Detail
		default:
			continue
		}

		event := models.LiveEvent{
			MatchID: matchID,
			Type:    eventType,
			Minute:  ev.Time.Elapsed,
			Detail:  eventDetail,
		}
		if ev.Player.Name != "" {
			player := ev.Player.Name
			event.Player = &player
		}
		events = append(events, event)
	}
	return events, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fixtures API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fixtures API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.Unmarshal(body, out)
}

func teamName(t freeTeam) string {
	if t.Name != "" {
		return t.Name
	}
	return t.LongName
}

// displayNames maps long official names to the short forms used in posts.
var displayNames = map[string]string{
	"FC Barcelona":            "Barcelona",
	"Real Madrid CF":          "Real Madrid",
	"Atletico Madrid":         "Atlético Madrid",
	"Club Atletico de Madrid": "Atlético Madrid",
	"Manchester United":       "Man United",
	"Manchester City":         "Man City",
	"Paris Saint Germain":     "PSG",
	"Paris Saint-Germain":     "PSG",
	"Bayern München":          "Bayern Munich",
	"Borussia Dortmund":       "Dortmund",
	"Inter Milan":             "Inter",
	"Internazionale":          "Inter",
	"AC Milan":                "Milan",
}

// NormalizeTeamName shortens well-known team names for display.
func NormalizeTeamName(name string) string {
	if name == "" {
		return "Unknown"
	}
	if short, ok := displayNames[name]; ok {
		return short
	}
	return name
}
