package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/hlog"

	"goalwire/bot/internal/models"
	"goalwire/bot/internal/server/storage"
)

const defaultLimit = 100
const maxLimit = 1000
const iso8601Format = time.RFC3339

// articleJSON is the wire shape of an article, with nullable columns
// flattened to pointers.
type articleJSON struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Link         string     `json:"link"`
	Summary      string     `json:"summary,omitempty"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	Sport        string     `json:"sport"`
	Category     string     `json:"category"`
	Status       string     `json:"status"`
	Score        int        `json:"score"`
	SourceName   string     `json:"source_name"`
	SourceDomain string     `json:"source_domain"`
	IsDuplicate  bool       `json:"is_duplicate"`
	IsPosted     bool       `json:"is_posted"`
	IsDigested   bool       `json:"is_digested"`
	CreatedAt    time.Time  `json:"created_at"`
}

type postJSON struct {
	ID                int64     `json:"id"`
	ArticleID         *int64    `json:"article_id,omitempty"`
	TelegramMessageID *int64    `json:"telegram_message_id,omitempty"`
	Sport             string    `json:"sport"`
	PostType          string    `json:"post_type"`
	PostedAt          time.Time `json:"posted_at"`
}

// ArticlesResponse is the paginated article listing.
type ArticlesResponse struct {
	Items      []articleJSON `json:"items"`
	NextCursor *string       `json:"next_cursor,omitempty"`
}

// PostsResponse lists recently published posts.
type PostsResponse struct {
	Items []postJSON `json:"items"`
}

// Handler serves the read-only status API.
type Handler struct {
	repo storage.ArticleRepository
}

func NewHandler(repo storage.ArticleRepository) *Handler {
	return &Handler{repo: repo}
}

func toArticleJSON(a *models.Article) articleJSON {
	out := articleJSON{
		ID:           a.ID,
		Title:        a.Title,
		Link:         a.Link,
		Summary:      a.Summary,
		Sport:        a.Sport,
		Category:     a.Category,
		Status:       a.Status,
		Score:        a.Score,
		SourceName:   a.SourceName,
		SourceDomain: a.SourceDomain,
		IsDuplicate:  a.IsDuplicate,
		IsPosted:     a.IsPosted,
		IsDigested:   a.IsDigested,
		CreatedAt:    a.CreatedAt,
	}
	if a.PublishedAt.Valid {
		t := a.PublishedAt.Time
		out.PublishedAt = &t
	}
	return out
}

func toPostJSON(p *models.Post) postJSON {
	out := postJSON{
		ID:       p.ID,
		Sport:    p.Sport,
		PostType: p.PostType,
		PostedAt: p.PostedAt,
	}
	if p.ArticleID.Valid {
		v := p.ArticleID.Int64
		out.ArticleID = &v
	}
	if p.TelegramMessageID.Valid {
		v := p.TelegramMessageID.Int64
		out.TelegramMessageID = &v
	}
	return out
}

func parseLimit(r *http.Request) (int, error) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > maxLimit {
		return 0, fmt.Errorf("invalid 'limit' parameter: must be between 1 and %d", maxLimit)
	}
	return limit, nil
}

// GetArticles handles paginated article listing requests.
func (h *Handler) GetArticles(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)
	log.Debug().Msg("Processing articles request")

	ctx := r.Context()
	query := r.URL.Query()
	sinceStr := query.Get("since")
	cursorStr := query.Get("cursor")

	limit, err := parseLimit(r)
	if err != nil {
		log.Warn().Err(err).Msg("Invalid 'limit' parameter value")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var since *time.Time
	var cursorTimestamp *time.Time
	var cursorID *int64

	if cursorStr != "" {
		ts, id, err := decodeCursor(cursorStr)
		if err != nil {
			log.Warn().Err(err).Str("cursor", cursorStr).Msg("Invalid 'cursor' parameter")
			http.Error(w, "Invalid 'cursor' parameter", http.StatusBadRequest)
			return
		}
		cursorTimestamp = &ts
		cursorID = &id
	} else if sinceStr != "" {
		parsedSince, err := time.Parse(iso8601Format, sinceStr)
		if err != nil {
			log.Warn().Err(err).Str("since", sinceStr).Msg("Invalid 'since' parameter format")
			http.Error(w, "Invalid 'since' parameter: use RFC3339 format (e.g., 2025-03-28T15:00:00Z)", http.StatusBadRequest)
			return
		}
		utcSince := parsedSince.UTC()
		since = &utcSince
	} else {
		log.Warn().Msg("Missing required parameter: 'since' or 'cursor'")
		http.Error(w, "Missing required parameter: 'since' or 'cursor'", http.StatusBadRequest)
		return
	}

	articles, err := h.repo.FetchArticles(ctx, limit+1, since, cursorTimestamp, cursorID) // Fetch one extra
	if err != nil {
		log.Error().Err(err).Str("cursor", cursorStr).Msg("Error fetching articles from repository")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var nextCursor *string
	hasNextPage := len(articles) > limit
	pageArticles := articles
	if hasNextPage {
		pageArticles = articles[:limit]
		if len(pageArticles) > 0 {
			last := pageArticles[len(pageArticles)-1]
			cursor := encodeCursor(last.CreatedAt.UTC(), last.ID)
			nextCursor = &cursor
		}
	}

	items := make([]articleJSON, 0, len(pageArticles))
	for i := range pageArticles {
		items = append(items, toArticleJSON(&pageArticles[i]))
	}

	writeJSON(w, r, ArticlesResponse{Items: items, NextCursor: nextCursor})
}

// GetPosts handles recent post listing requests.
func (h *Handler) GetPosts(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)
	log.Debug().Msg("Processing posts request")

	limit, err := parseLimit(r)
	if err != nil {
		log.Warn().Err(err).Msg("Invalid 'limit' parameter value")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	since := time.Now().UTC().Add(-24 * time.Hour)
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		parsed, err := time.Parse(iso8601Format, sinceStr)
		if err != nil {
			log.Warn().Err(err).Str("since", sinceStr).Msg("Invalid 'since' parameter format")
			http.Error(w, "Invalid 'since' parameter: use RFC3339 format", http.StatusBadRequest)
			return
		}
		since = parsed.UTC()
	}

	posts, err := h.repo.RecentPosts(r.Context(), since, limit)
	if err != nil {
		log.Error().Err(err).Msg("Error fetching posts from repository")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	items := make([]postJSON, 0, len(posts))
	for i := range posts {
		items = append(items, toPostJSON(&posts[i]))
	}

	writeJSON(w, r, PostsResponse{Items: items})
}

func writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	log := hlog.FromRequest(r)

	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Error marshaling JSON response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(jsonBytes); err != nil {
		log.Error().Err(err).Msg("Error writing JSON response body to client")
	}
	log.Debug().Int("bytes_written", len(jsonBytes)).Msg("Response completed")
}
