package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"goalwire/bot/internal/models"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Deportes</title>
    <item>
      <title>Fichaje confirmado en el Real Madrid</title>
      <link>https://example.com/fichaje</link>
      <description>El club anuncia la llegada del delantero.</description>
    </item>
    <item>
      <title></title>
      <link>https://example.com/sin-titulo</link>
    </item>
    <item>
      <title>Lesión de última hora</title>
      <link>https://example.com/lesion</link>
    </item>
  </channel>
</rss>`

func newTestCollector() *Collector {
	return NewCollector(5*time.Second, zerolog.Nop())
}

func TestCollectDropsEntriesWithoutTitleOrLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, sampleRSS)
	}))
	defer server.Close()

	source := models.Source{ID: 7, Name: "Marca", URL: server.URL, SportHint: "football_eu", Weight: 20}

	items, err := newTestCollector().Collect(context.Background(), source)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Title != "Fichaje confirmado en el Real Madrid" {
		t.Errorf("unexpected first title: %q", items[0].Title)
	}
	if items[0].SourceID != 7 || items[0].SourceName != "Marca" || items[0].SourceWeight != 20 {
		t.Errorf("source metadata not propagated: %+v", items[0])
	}
}

func TestCollectAllSkipsFailingSources(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, sampleRSS)
	}))
	defer good.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	sources := []models.Source{
		{ID: 1, Name: "AS", URL: good.URL},
		{ID: 2, Name: "Roto", URL: broken.URL},
		{ID: 3, Name: "Sport", URL: good.URL},
	}

	items, fetched := newTestCollector().CollectAll(context.Background(), sources)
	if len(items) != 4 {
		t.Fatalf("expected 4 items from the two working feeds, got %d", len(items))
	}

	sort.Slice(fetched, func(i, j int) bool { return fetched[i] < fetched[j] })
	if len(fetched) != 2 || fetched[0] != 1 || fetched[1] != 3 {
		t.Errorf("expected fetched IDs [1 3], got %v", fetched)
	}
}

func TestCollectAllEmptySourceList(t *testing.T) {
	items, fetched := newTestCollector().CollectAll(context.Background(), nil)
	if items != nil || fetched != nil {
		t.Errorf("expected nil results for empty source list, got %v %v", items, fetched)
	}
}
