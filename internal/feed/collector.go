package feed

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"goalwire/bot/internal/models"
)

const userAgent = "GoalWireBot/1.0 (+https://goalwire.example)"

// Item is a raw feed entry before normalization, annotated with metadata
// of the source it came from.
type Item struct {
	Title     string
	Link      string
	Summary   string
	Published *time.Time
	ImageURL  string
	Tags      []string

	SourceID        int64
	SourceName      string
	SourceSportHint string
	SourceWeight    int
}

// Collector fetches and parses the configured RSS feeds.
type Collector struct {
	parser *gofeed.Parser
	log    zerolog.Logger
}

// NewCollector returns a collector with a per-request timeout.
func NewCollector(timeout time.Duration, logger zerolog.Logger) *Collector {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = userAgent

	return &Collector{
		parser: parser,
		log:    logger.With().Str("component", "collector").Logger(),
	}
}

// Collect fetches a single feed. Entries without a title or link are dropped.
func (c *Collector) Collect(ctx context.Context, source models.Source) ([]Item, error) {
	parsed, err := c.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if strings.TrimSpace(entry.Title) == "" || strings.TrimSpace(entry.Link) == "" {
			continue
		}

		item := Item{
			Title:           entry.Title,
			Link:            entry.Link,
			Summary:         entrySummary(entry),
			Published:       entry.PublishedParsed,
			ImageURL:        entryImage(entry),
			Tags:            entry.Categories,
			SourceID:        source.ID,
			SourceName:      source.Name,
			SourceSportHint: source.SportHint,
			SourceWeight:    source.Weight,
		}
		items = append(items, item)
	}
	return items, nil
}

const collectWorkers = 4

type collectResult struct {
	items    []Item
	sourceID int64
	name     string
	err      error
}

// CollectAll fetches every active source using a small worker pool. A failing
// feed is logged and skipped so one broken source never stalls the cycle.
// It returns the combined items plus the IDs of the sources that fetched
// successfully.
func (c *Collector) CollectAll(ctx context.Context, sources []models.Source) ([]Item, []int64) {
	if len(sources) == 0 {
		return nil, nil
	}

	workers := collectWorkers
	if len(sources) < workers {
		workers = len(sources)
	}

	sourceQueue := make(chan models.Source)
	results := make(chan collectResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for source := range sourceQueue {
				items, err := c.Collect(ctx, source)
				select {
				case results <- collectResult{items: items, sourceID: source.ID, name: source.Name, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(sourceQueue)
		for _, source := range sources {
			select {
			case sourceQueue <- source:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []Item
	var fetched []int64
	for res := range results {
		if res.err != nil {
			c.log.Warn().Err(res.err).Str("source", res.name).Msg("Feed fetch failed")
			continue
		}

		c.log.Debug().Str("source", res.name).Int("items", len(res.items)).Msg("Feed fetched")
		all = append(all, res.items...)
		fetched = append(fetched, res.sourceID)
	}
	return all, fetched
}

func entrySummary(entry *gofeed.Item) string {
	if entry.Description != "" {
		return entry.Description
	}
	return entry.Content
}

// entryImage pulls the first usable image URL from the entry, checking the
// channel image, enclosures and media extensions in that order.
func entryImage(entry *gofeed.Item) string {
	if entry.Image != nil && entry.Image.URL != "" {
		return entry.Image.URL
	}

	for _, enc := range entry.Enclosures {
		if enc == nil {
			continue
		}
		if strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}

	if media, ok := entry.Extensions["media"]; ok {
		for _, key := range []string{"content", "thumbnail"} {
			for _, ext := range media[key] {
				if url := ext.Attrs["url"]; url != "" {
					return url
				}
			}
		}
	}
	return ""
}
