package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"goalwire/bot/internal/models"
)

type fakeHistory struct {
	urls   map[string]bool
	hashes map[string]bool
	titles []string
}

func (f *fakeHistory) HasCanonicalURL(_ context.Context, url string) (bool, error) {
	return f.urls[url], nil
}

func (f *fakeHistory) HasContentHash(_ context.Context, hash string) (bool, error) {
	return f.hashes[hash], nil
}

func (f *fakeHistory) RecentNormalizedTitles(_ context.Context, _ time.Time, _ int) ([]string, error) {
	return f.titles, nil
}

func newTestDeduper(h *fakeHistory) *Deduper {
	if h.urls == nil {
		h.urls = map[string]bool{}
	}
	if h.hashes == nil {
		h.hashes = map[string]bool{}
	}
	return New(h, 0.88, 6*time.Hour, 500, zerolog.Nop())
}

func item(title, normalized, url, hash string) models.CandidateItem {
	return models.CandidateItem{
		Title:           title,
		NormalizedTitle: normalized,
		CanonicalURL:    url,
		ContentHash:     hash,
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"mbappe scores twice against city", "mbappe scores twice against city", 1.0, 1.0},
		{"", "", 1.0, 1.0},
		{"abc", "xyz", 0.0, 0.0},
		{"mbappe scores twice against city", "mbappe scores twice vs city", 0.88, 1.0},
		{"real madrid wins the derby", "nadal advances in melbourne", 0.0, 0.75},
	}

	for _, tt := range tests {
		got := Ratio(tt.a, tt.b)
		if got < tt.min || got > tt.max {
			t.Errorf("Ratio(%q, %q) = %.3f, want in [%.2f, %.2f]", tt.a, tt.b, got, tt.min, tt.max)
		}
	}
}

func TestFilterExactURLMatch(t *testing.T) {
	h := &fakeHistory{urls: map[string]bool{"https://marca.com/a": true}}
	d := newTestDeduper(h)

	unique, dups := d.Filter(context.Background(), []models.CandidateItem{
		item("Fichaje", "fichaje", "https://marca.com/a", "h1"),
		item("Otro", "otro", "https://marca.com/b", "h2"),
	})

	if len(unique) != 1 || dups != 1 {
		t.Fatalf("got %d unique, %d duplicates, want 1 and 1", len(unique), dups)
	}
	if unique[0].CanonicalURL != "https://marca.com/b" {
		t.Errorf("wrong survivor: %s", unique[0].CanonicalURL)
	}
}

func TestFilterContentHashMatch(t *testing.T) {
	h := &fakeHistory{hashes: map[string]bool{"deadbeef": true}}
	d := newTestDeduper(h)

	_, dups := d.Filter(context.Background(), []models.CandidateItem{
		item("Repetida", "repetida", "https://as.com/x", "deadbeef"),
	})
	if dups != 1 {
		t.Fatalf("content hash duplicate not rejected")
	}
}

func TestFilterFuzzyAgainstStored(t *testing.T) {
	h := &fakeHistory{titles: []string{"mbappe scores twice against manchester city"}}
	d := newTestDeduper(h)

	_, dups := d.Filter(context.Background(), []models.CandidateItem{
		item("Mbappe scores twice against Manchester City!", "mbappe scores twice against manchester city", "https://as.com/1", "h1"),
	})
	if dups != 1 {
		t.Fatal("near-identical stored title should be rejected")
	}
}

func TestFilterUpdateKeywordBypassesStoredFuzzy(t *testing.T) {
	h := &fakeHistory{titles: []string{"mbappe al madrid por 200 millones"}}
	d := newTestDeduper(h)

	unique, dups := d.Filter(context.Background(), []models.CandidateItem{
		item("CONFIRMADO: Mbappe al Madrid por 200 millones", "mbappe al madrid por 200 millones", "https://as.com/2", "h2"),
	})
	if dups != 0 || len(unique) != 1 {
		t.Fatal("update keyword should let a stored near-duplicate through")
	}
}

func TestFilterBatchFuzzyIgnoresUpdateKeyword(t *testing.T) {
	d := newTestDeduper(&fakeHistory{})

	unique, dups := d.Filter(context.Background(), []models.CandidateItem{
		item("Mbappe al Madrid por 200 millones", "mbappe al madrid por 200 millones", "https://as.com/3", "h3"),
		item("CONFIRMADO: Mbappe al Madrid por 200 millones", "mbappe al madrid por 200 millones", "https://marca.com/3", "h4"),
	})
	if len(unique) != 1 || dups != 1 {
		t.Fatalf("batch-internal repeat must be rejected even with update wording, got %d unique %d dups", len(unique), dups)
	}
}

func TestFilterDistinctTitlesPass(t *testing.T) {
	h := &fakeHistory{titles: []string{"real madrid gana el derbi"}}
	d := newTestDeduper(h)

	unique, dups := d.Filter(context.Background(), []models.CandidateItem{
		item("Alcaraz avanza en Melbourne", "alcaraz avanza en melbourne", "https://as.com/t", "h5"),
	})
	if dups != 0 || len(unique) != 1 {
		t.Fatal("unrelated title should pass")
	}
}
