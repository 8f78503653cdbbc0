package publish

import (
	"math/rand"
	"strings"
	"testing"

	"goalwire/bot/internal/models"
)

func fixedWriter() *CaptionWriter {
	return &CaptionWriter{rand: rand.New(rand.NewSource(1))}
}

func TestArticleCaptionStructure(t *testing.T) {
	w := fixedWriter()
	item := &models.CandidateItem{
		Title:      "Mbappé firma con el Real Madrid",
		Summary:    "El delantero francés llega libre tras acabar contrato.",
		Sport:      "football_eu",
		Category:   "transfer",
		Status:     models.StatusConfirmed,
		SourceName: "Marca",
	}

	caption := w.Article(item)

	if !strings.Contains(caption, "<b>") {
		t.Error("headline should be bold")
	}
	if !strings.Contains(caption, "Mbappé firma con el Real Madrid") {
		t.Error("caption should contain the title")
	}
	if !strings.Contains(caption, "<i>El delantero francés llega libre tras acabar contrato.</i>") {
		t.Errorf("caption should contain the italic summary: %s", caption)
	}
	if !strings.Contains(caption, "<b>Estado:</b> ✅ CONFIRMADO") {
		t.Errorf("missing status line: %s", caption)
	}
	if !strings.Contains(caption, "#Fútbol") || !strings.Contains(caption, "#Fichajes") {
		t.Errorf("missing hashtags: %s", caption)
	}
	if !strings.Contains(caption, "#GoalWire") {
		t.Error("missing channel hashtag")
	}
	if !strings.Contains(caption, "<b>Vía:</b> Marca") {
		t.Errorf("missing source line: %s", caption)
	}
}

func TestArticleCaptionEscapesHTML(t *testing.T) {
	w := fixedWriter()
	item := &models.CandidateItem{
		Title:    "Madrid & Barça <en directo>",
		Sport:    "football_eu",
		Category: "default",
		Status:   models.StatusRumor,
	}

	caption := w.Article(item)
	if strings.Contains(caption, "<en directo>") {
		t.Error("title HTML not escaped")
	}
	if !strings.Contains(caption, "&amp;") {
		t.Error("ampersand not escaped")
	}
}

func TestArticleCaptionLengthCap(t *testing.T) {
	w := fixedWriter()
	item := &models.CandidateItem{
		Title:    strings.Repeat("muy ", 60),
		Summary:  strings.Repeat("larga ", 300),
		Sport:    "football_eu",
		Category: "breaking",
		Status:   models.StatusDeveloping,
	}

	caption := w.Article(item)
	if n := len([]rune(caption)); n > 1024 {
		t.Errorf("caption exceeds limit: %d runes", n)
	}
}

func TestHeadlineUsesCategoryTemplate(t *testing.T) {
	w := fixedWriter()
	item := &models.CandidateItem{Title: "Lesión de Vinicius", Category: "injury"}

	headline := w.Headline(item)
	injuryMarkers := []string{"PARTE MÉDICO", "LESIÓN", "BAJA", "MALAS NOTICIAS"}
	found := false
	for _, marker := range injuryMarkers {
		if strings.Contains(headline, marker) {
			found = true
		}
	}
	if !found {
		t.Errorf("headline did not use an injury template: %s", headline)
	}
}

func TestDigestCaption(t *testing.T) {
	w := fixedWriter()
	items := []models.CandidateItem{
		{Title: "Noticia uno", Status: models.StatusConfirmed},
		{Title: "Noticia dos", Status: models.StatusRumor},
		{Title: "Noticia tres", Status: models.StatusDeveloping},
	}

	caption := w.Digest(items, "football_eu", 20)

	if !strings.Contains(caption, "Resumen Fútbol") {
		t.Errorf("missing digest header: %s", caption)
	}
	if !strings.Contains(caption, "(últimos 20 min)") {
		t.Error("missing window note")
	}
	for _, marker := range []string{"1. ⚽", "2. ⚽", "3. ⚽"} {
		if !strings.Contains(caption, marker) {
			t.Errorf("missing numbered entry %q", marker)
		}
	}
	if !strings.Contains(caption, "#Resumen #GoalWire") {
		t.Error("missing digest hashtags")
	}
}

func TestGoalEventCaption(t *testing.T) {
	w := fixedWriter()
	minute := 34
	player := "Jude Bellingham"
	event := &models.LiveEvent{
		LeagueName: "UEFA Champions League",
		HomeTeam:   "Real Madrid",
		AwayTeam:   "Bayern Munich",
		HomeScore:  1,
		AwayScore:  0,
		Type:       models.EventGoal,
		Minute:     &minute,
		Player:     &player,
	}

	caption := w.Event(event)

	if !strings.Contains(caption, "⚽ <b>GOL</b> | UEFA Champions League") {
		t.Errorf("missing goal header: %s", caption)
	}
	if !strings.Contains(caption, "<b>Real Madrid</b> 1–0 <b>Bayern Munich</b>") {
		t.Errorf("missing score line: %s", caption)
	}
	if !strings.Contains(caption, "Min 34' | Jude Bellingham") {
		t.Errorf("missing detail line: %s", caption)
	}
	if !strings.Contains(caption, "#UCL #ChampionsLeague #GoalWire") {
		t.Errorf("missing league hashtags: %s", caption)
	}
}

func TestFinalEventCaption(t *testing.T) {
	w := fixedWriter()
	event := &models.LiveEvent{
		LeagueName: "LaLiga",
		HomeTeam:   "Girona",
		AwayTeam:   "Real Madrid",
		HomeScore:  0,
		AwayScore:  2,
		Type:       models.EventFinal,
	}

	caption := w.Event(event)
	if !strings.Contains(caption, "🏁 <b>FINAL</b> | LaLiga") {
		t.Errorf("missing final header: %s", caption)
	}
	if !strings.Contains(caption, "🏆 Victoria visitante") {
		t.Errorf("missing winner line: %s", caption)
	}
	if !strings.Contains(caption, "#LaLiga") {
		t.Errorf("missing league hashtag: %s", caption)
	}
}

func TestRedCardEventCaption(t *testing.T) {
	w := fixedWriter()
	minute := 67
	event := &models.LiveEvent{
		LeagueName: "LaLiga",
		HomeTeam:   "Barcelona",
		AwayTeam:   "Sevilla",
		HomeScore:  1,
		AwayScore:  1,
		Type:       models.EventRedCard,
		Minute:     &minute,
		Detail:     "Second Yellow card",
	}

	caption := w.Event(event)
	if !strings.Contains(caption, "🟥 <b>EXPULSIÓN</b>") {
		t.Errorf("missing red card header: %s", caption)
	}
	if !strings.Contains(caption, "📒📒 Doble amarilla") {
		t.Errorf("missing double yellow note: %s", caption)
	}
}
