package normalize

import (
	"testing"
	"time"

	"goalwire/bot/internal/feed"
)

func TestTitleStripsLabelsAndPunctuation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"breaking prefix", "BREAKING: Mbappe signs!", "mbappe signs"},
		{"official prefix", "OFICIAL: Fichaje cerrado", "fichaje cerrado"},
		{"separators become spaces", "Real Madrid - Barcelona | Previa", "real madrid barcelona previa"},
		{"quotes removed", `"Bombazo" en el mercado`, "bombazo en el mercado"},
		{"stacked labels", "Breaking: Official: It is done", "it is done"},
		{"whitespace collapsed", "Gol   de    Vinicius", "gol de vinicius"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Title(tt.input)
			if got != tt.want {
				t.Errorf("Title(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTitleIdempotent(t *testing.T) {
	inputs := []string{
		"BREAKING: Mbappé to Real Madrid!",
		"Gol de Lamine Yamal - Barcelona 2-1 Inter",
		"VIDEO: resumen del partido",
		"  plain   title  ",
	}

	for _, input := range inputs {
		once := Title(input)
		twice := Title(once)
		if once != twice {
			t.Errorf("Title not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"tracking params stripped",
			"https://Marca.com/futbol/noticia?utm_source=tw&utm_medium=social&id=99",
			"https://marca.com/futbol/noticia?id=99",
		},
		{
			"fragment and trailing slash dropped",
			"https://as.com/futbol/articulo/#comentarios",
			"https://as.com/futbol/articulo",
		},
		{
			"blank values dropped",
			"https://sport.es/news?ref=&page=2",
			"https://sport.es/news?page=2",
		},
		{
			"param order preserved",
			"https://example.com/a?z=1&utm_campaign=x&a=2",
			"https://example.com/a?z=1&a=2",
		},
		{
			"no query untouched",
			"https://example.com/path",
			"https://example.com/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanonicalURL(tt.input)
			if got != tt.want {
				t.Errorf("CanonicalURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDomain(t *testing.T) {
	if got := Domain("https://www.Marca.com/futbol"); got != "marca.com" {
		t.Errorf("Domain = %q, want marca.com", got)
	}
	if got := Domain("https://feeds.as.com/x"); got != "feeds.as.com" {
		t.Errorf("Domain = %q, want feeds.as.com", got)
	}
}

func TestContentHashBuckets(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)
	published := time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)

	h1 := ContentHash("title", "marca.com", &published, now)
	h2 := ContentHash("title", "marca.com", &published, now.Add(time.Hour))
	if h1 != h2 {
		t.Error("hash should ignore current time when published is set")
	}

	sameHour := published.Add(20 * time.Minute)
	if ContentHash("title", "marca.com", &sameHour, now) != h1 {
		t.Error("same hour bucket should produce the same hash")
	}

	nextHour := published.Add(time.Hour)
	if ContentHash("title", "marca.com", &nextHour, now) == h1 {
		t.Error("different hour bucket should produce a different hash")
	}

	if ContentHash("title", "marca.com", nil, now) != ContentHash("title", "marca.com", &now, now) {
		t.Error("missing published should fall back to current time")
	}

	if len(h1) != 32 {
		t.Errorf("hash length = %d, want 32", len(h1))
	}
}

// Titles differing only in case or an editorial label must collide within
// the same hour bucket; the hash keys on the normalized title.
func TestNormalizeHashUsesNormalizedTitle(t *testing.T) {
	published := time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)
	n := New()

	labeled := n.Normalize(feed.Item{
		Title:     "BREAKING: Real Madrid ficha al delantero",
		Link:      "https://marca.com/futbol/fichaje",
		Published: &published,
	})
	plain := n.Normalize(feed.Item{
		Title:     "real madrid ficha al delantero",
		Link:      "https://marca.com/futbol/fichaje-portada",
		Published: &published,
	})

	if labeled.NormalizedTitle != plain.NormalizedTitle {
		t.Fatalf("normalized titles differ: %q vs %q", labeled.NormalizedTitle, plain.NormalizedTitle)
	}
	if labeled.ContentHash != plain.ContentHash {
		t.Errorf("content hashes differ for the same normalized title: %s vs %s",
			labeled.ContentHash, plain.ContentHash)
	}
}

func TestCleanHTML(t *testing.T) {
	input := "<p>Real Madrid &amp; Barcelona</p>\n<b>chocan</b>&nbsp;hoy"
	want := "Real Madrid & Barcelona chocan hoy"
	if got := CleanHTML(input); got != want {
		t.Errorf("CleanHTML = %q, want %q", got, want)
	}
}

func TestTruncateSummary(t *testing.T) {
	short := "corto"
	if got := TruncateSummary(short, 500); got != short {
		t.Errorf("short summary modified: %q", got)
	}

	long := ""
	for i := 0; i < 600; i++ {
		long += "á"
	}
	got := TruncateSummary(long, 500)
	if len([]rune(got)) != 503 {
		t.Errorf("truncated length = %d runes, want 503", len([]rune(got)))
	}
}
