package publish

import (
	"fmt"
	"html"
	"math/rand"
	"strings"
	"time"

	"goalwire/bot/internal/models"
	"goalwire/bot/internal/normalize"
)

const (
	captionMaxRunes  = 1024
	headlineMaxRunes = 100
	digestTitleRunes = 80
)

var headlineTemplates = map[string][]string{
	"breaking": {
		"🚨 ÚLTIMA HORA: %s",
		"⚡ BOMBAZO: %s",
		"🔴 URGENTE: %s",
		"📢 OFICIAL: %s",
	},
	"transfer": {
		"💰 FICHAJE: %s",
		"🔄 MOVIMIENTO: %s",
		"✍️ SE CIERRA: %s",
		"🎯 OBJETIVO: %s",
	},
	"injury": {
		"🏥 PARTE MÉDICO: %s",
		"⚠️ LESIÓN: %s",
		"❌ BAJA: %s",
		"💔 MALAS NOTICIAS: %s",
	},
	"match_result": {
		"⚽ RESULTADO: %s",
		"🏆 VICTORIA: %s",
		"📊 MARCADOR FINAL: %s",
	},
	"controversy": {
		"😱 POLÉMICA: %s",
		"🔥 SE VIENE LÍO: %s",
		"👀 OJO A ESTO: %s",
		"⚠️ ESCÁNDALO: %s",
	},
	"rumor": {
		"🔮 RUMOR: %s",
		"👂 SE DICE: %s",
		"🗣️ SE RUMOREA: %s",
	},
	"stats": {
		"📈 RÉCORD: %s",
		"📊 HISTÓRICO: %s",
		"🏅 DATO: %s",
	},
	"schedule": {
		"📅 AGENDA: %s",
		"⏰ PRÓXIMAMENTE: %s",
		"📋 CONVOCATORIA: %s",
	},
	"default": {
		"📰 %s",
		"🔔 %s",
		"➡️ %s",
	},
}

type statusDisplay struct {
	emoji string
	label string
	tag   string
}

var statusDisplays = map[models.Status]statusDisplay{
	models.StatusConfirmed:  {emoji: "✅", label: "CONFIRMADO", tag: "#Confirmado"},
	models.StatusRumor:      {emoji: "🔮", label: "RUMOR", tag: "#Rumor"},
	models.StatusDeveloping: {emoji: "🔄", label: "EN DESARROLLO", tag: "#EnDesarrollo"},
}

type sportDisplay struct {
	name    string
	hashtag string
	emoji   string
}

var sportDisplays = map[string]sportDisplay{
	"football_eu": {name: "Fútbol", hashtag: "#Fútbol", emoji: "⚽"},
	"nba":         {name: "NBA", hashtag: "#NBA", emoji: "🏀"},
	"tennis":      {name: "Tenis", hashtag: "#Tenis", emoji: "🎾"},
}

var categoryHashtags = map[string]string{
	"transfer":     "#Fichajes",
	"injury":       "#Lesión",
	"match_result": "#Resultados",
	"controversy":  "#Polémica",
	"breaking":     "#ÚltimaHora",
	"rumor":        "#Rumores",
	"stats":        "#Estadísticas",
	"schedule":     "#Calendario",
}

// CaptionWriter builds the HTML captions posted to the channel. Headline
// templates are picked at random so back-to-back posts do not read alike.
type CaptionWriter struct {
	rand *rand.Rand
}

func NewCaptionWriter() *CaptionWriter {
	return &CaptionWriter{rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Headline wraps the article title in an emoji template for its category.
func (w *CaptionWriter) Headline(item *models.CandidateItem) string {
	templates, ok := headlineTemplates[item.Category]
	if !ok {
		templates = headlineTemplates["default"]
	}
	template := templates[w.rand.Intn(len(templates))]

	title := normalize.CleanHTML(item.Title)
	title = truncateRunes(title, headlineMaxRunes)
	title = html.EscapeString(title)

	return "<b>" + fmt.Sprintf(template, title) + "</b>"
}

func statusLine(status models.Status) string {
	display, ok := statusDisplays[status]
	if !ok {
		display = statusDisplays[models.StatusRumor]
	}
	return fmt.Sprintf("<b>Estado:</b> %s %s", display.emoji, display.label)
}

func hashtags(item *models.CandidateItem) string {
	sport, ok := sportDisplays[item.Sport]
	if !ok {
		sport = sportDisplays["football_eu"]
	}
	tags := []string{sport.hashtag}
	if tag, ok := categoryHashtags[item.Category]; ok {
		tags = append(tags, tag)
	}
	if display, ok := statusDisplays[item.Status]; ok {
		tags = append(tags, display.tag)
	}
	tags = append(tags, "#GoalWire")
	return strings.Join(tags, " ")
}

func sourceLine(item *models.CandidateItem) string {
	source := item.SourceName
	if source == "" {
		source = item.SourceDomain
	}
	if source == "" {
		source = "Fuente"
	}
	return "📰 <b>Vía:</b> " + html.EscapeString(source)
}

// Article builds the full caption for a single-article post.
func (w *CaptionWriter) Article(item *models.CandidateItem) string {
	parts := []string{w.Headline(item), ""}

	summary := normalize.CleanHTML(item.Summary)
	if summary != "" && summary != item.Title {
		summary = truncateRunes(summary, 600)
		parts = append(parts, "<i>"+html.EscapeString(summary)+"</i>", "")
	}

	parts = append(parts,
		statusLine(item.Status),
		"",
		hashtags(item),
		sourceLine(item),
	)

	return truncateRunes(strings.Join(parts, "\n"), captionMaxRunes)
}

// Digest builds the caption for an aggregated post, a numbered list of
// headlines under a sport header.
func (w *CaptionWriter) Digest(items []models.CandidateItem, sport string, windowMinutes int) string {
	display, ok := sportDisplays[sport]
	if !ok {
		display = sportDisplays["football_eu"]
	}

	parts := []string{
		fmt.Sprintf("📋 <b>GoalWire | Resumen %s</b> <i>(últimos %d min)</i>", display.name, windowMinutes),
		"",
	}

	for i := range items {
		title := normalize.CleanHTML(items[i].Title)
		title = truncateRunes(title, digestTitleRunes)
		title = html.EscapeString(title)

		statusEmoji := ""
		if sd, ok := statusDisplays[items[i].Status]; ok {
			statusEmoji = " " + sd.emoji
		}
		parts = append(parts, fmt.Sprintf("%d. %s <b>%s</b>%s", i+1, display.emoji, title, statusEmoji))
	}

	parts = append(parts, "", display.hashtag+" #Resumen #GoalWire")
	return truncateRunes(strings.Join(parts, "\n"), captionMaxRunes)
}

// Event builds the caption for a live match event.
func (w *CaptionWriter) Event(event *models.LiveEvent) string {
	switch event.Type {
	case models.EventGoal:
		return eventCaption("⚽ <b>GOL</b>", event, goalExtras(event))
	case models.EventRedCard:
		return eventCaption("🟥 <b>EXPULSIÓN</b>", event, redCardExtras(event))
	case models.EventFinal:
		return eventCaption("🏁 <b>FINAL</b>", event, finalExtras(event))
	case models.EventPenaltyMiss:
		return eventCaption("❌ <b>PENALTI FALLADO</b>", event, nil)
	case models.EventVAR:
		extras := []string{}
		if event.Detail != "" {
			extras = append(extras, "⚖️ Decisión: "+html.EscapeString(event.Detail))
		}
		return eventCaption("📺 <b>VAR</b>", event, extras)
	case models.EventHalftime:
		return eventCaption("⏸️ <b>DESCANSO</b>", event, nil)
	default:
		return fmt.Sprintf("📢 %s\n%s %d–%d %s",
			html.EscapeString(event.LeagueName),
			html.EscapeString(event.HomeTeam), event.HomeScore,
			event.AwayScore, html.EscapeString(event.AwayTeam))
	}
}

func eventCaption(header string, event *models.LiveEvent, extras []string) string {
	lines := []string{
		header + " | " + html.EscapeString(event.LeagueName),
		fmt.Sprintf("<b>%s</b> %d–%d <b>%s</b>",
			html.EscapeString(event.HomeTeam), event.HomeScore,
			event.AwayScore, html.EscapeString(event.AwayTeam)),
	}

	var details []string
	if event.Minute != nil && *event.Minute > 0 {
		details = append(details, fmt.Sprintf("Min %d'", *event.Minute))
	}
	if event.Player != nil && *event.Player != "" {
		details = append(details, html.EscapeString(*event.Player))
	}
	if len(details) > 0 && event.Type != models.EventFinal {
		lines = append(lines, strings.Join(details, " | "))
	}

	lines = append(lines, extras...)
	lines = append(lines, "", leagueHashtags(event.LeagueName))
	return strings.Join(lines, "\n")
}

func goalExtras(event *models.LiveEvent) []string {
	detail := strings.ToLower(event.Detail)
	var extras []string
	if strings.Contains(detail, "penalty") || strings.Contains(detail, "penalti") {
		extras = append(extras, "⚡ Penalti")
	} else if strings.Contains(detail, "own goal") || strings.Contains(detail, "autogol") {
		extras = append(extras, "🔴 Autogol")
	}
	return extras
}

func redCardExtras(event *models.LiveEvent) []string {
	detail := strings.ToLower(event.Detail)
	if strings.Contains(detail, "second") || strings.Contains(detail, "yellow") {
		return []string{"📒📒 Doble amarilla"}
	}
	return []string{"🔴 Roja directa"}
}

func finalExtras(event *models.LiveEvent) []string {
	switch {
	case event.HomeScore > event.AwayScore:
		return []string{"🏆 Victoria local"}
	case event.AwayScore > event.HomeScore:
		return []string{"🏆 Victoria visitante"}
	default:
		return []string{"🤝 Empate"}
	}
}

func leagueHashtags(leagueName string) string {
	name := strings.ToLower(leagueName)
	var base string
	switch {
	case strings.Contains(name, "champions"):
		base = "#UCL #ChampionsLeague"
	case strings.Contains(name, "laliga") || strings.Contains(name, "la liga"):
		base = "#LaLiga #FútbolEspañol"
	case strings.Contains(name, "premier"):
		base = "#PremierLeague"
	case strings.Contains(name, "bundesliga"):
		base = "#Bundesliga"
	case strings.Contains(name, "serie a"):
		base = "#SerieA"
	default:
		base = "#Fútbol"
	}
	return base + " #GoalWire"
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
