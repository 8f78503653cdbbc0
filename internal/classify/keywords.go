package classify

import (
	"strings"
	"unicode"
)

// Sports recognized by the pipeline.
const (
	SportFootball = "football_eu"
	SportNBA      = "nba"
	SportTennis   = "tennis"
)

// Categories, in override priority order where it matters.
const (
	CategoryBreaking    = "breaking"
	CategoryRumor       = "rumor"
	CategoryTransfer    = "transfer"
	CategoryInjury      = "injury"
	CategoryMatchResult = "match_result"
	CategoryControversy = "controversy"
	CategoryStats       = "stats"
	CategorySchedule    = "schedule"
	CategoryDefault     = "default"
)

// sportOrder fixes tie-breaking during sport detection.
var sportOrder = []string{SportNBA, SportTennis, SportFootball}

var sportKeywords = map[string][]string{
	SportNBA: {
		"nba", "lakers", "warriors", "celtics", "bulls", "knicks", "nets",
		"heat", "bucks", "suns", "nuggets", "clippers", "mavericks", "spurs",
		"lebron", "curry", "durant", "giannis", "jokic", "embiid", "luka",
		"basketball", "baloncesto", "canasta", "triple", "slam dunk",
		"all-star", "playoffs nba", "mvp nba", "draft",
	},
	SportTennis: {
		"atp", "wta", "grand slam", "roland garros", "wimbledon", "us open",
		"australian open", "federer", "nadal", "djokovic", "alcaraz", "sinner",
		"swiatek", "sabalenka", "gauff", "rybakina", "medvedev", "zverev",
		"tenis", "tennis", "raqueta", "ace", "break point", "match point",
		"set", "tie break", "deuce",
	},
	SportFootball: {
		"futbol", "fútbol", "football", "soccer", "liga", "premier league",
		"champions", "europa league", "laliga", "serie a", "bundesliga",
		"ligue 1", "real madrid", "barcelona", "atletico", "manchester",
		"liverpool", "chelsea", "arsenal", "juventus", "milan", "inter",
		"psg", "bayern", "dortmund", "messi", "ronaldo", "mbappe", "haaland",
		"bellingham", "vinicius", "gol", "fichaje", "transfer", "penalty",
		"penalti", "red card", "tarjeta roja", "portero", "goalkeeper",
		"mundial", "eurocopa", "copa del rey", "fa cup",
	},
}

// categoryOrder fixes tie-breaking during category scoring.
var categoryOrder = []string{
	CategoryBreaking, CategoryRumor, CategoryTransfer, CategoryInjury,
	CategoryMatchResult, CategoryControversy, CategoryStats, CategorySchedule,
}

var categoryKeywords = map[string][]string{
	CategoryTransfer: {
		"fichaje", "transfer", "signing", "firma", "contrato", "contract",
		"traspaso", "cesión", "loan", "llegada", "salida", "venta", "compra",
		"acuerdo", "deal", "negociación", "negotiations", "interés", "interest",
		"pretende", "quiere fichar", "wants to sign", "target", "objetivo",
	},
	CategoryRumor: {
		"rumor", "rumour", "rumores", "podría", "podria", "could",
		"según", "segun", "reportedly", "se habla", "suena", "vincula",
		"linked", "tantea", "sondea", "en la agenda", "interesa",
	},
	CategoryInjury: {
		"lesión", "injury", "injured", "lesionado", "baja", "out", "rotura",
		"esguince", "fractura", "operación", "surgery", "recuperación",
		"recovery", "parte médico", "medical report", "muscular", "rodilla",
		"knee", "tobillo", "ankle", "semanas de baja", "weeks out",
	},
	CategoryMatchResult: {
		"resultado", "result", "ganó", "won", "perdió", "lost", "empate",
		"draw", "victoria", "victory", "derrota", "defeat", "goles", "goals",
		"marcador", "score", "final", "partido", "match", "game", "encuentro",
	},
	CategoryControversy: {
		"polémica", "controversy", "escándalo", "scandal", "sanción",
		"suspension", "expulsión", "red card", "var", "arbitraje", "referee",
		"injusticia", "injustice", "protesta", "protest", "denuncia",
		"investigación", "investigation", "dopaje", "doping",
	},
	CategoryBreaking: {
		"última hora", "breaking", "urgente", "urgent", "oficial", "official",
		"comunicado", "announcement", "confirmado", "confirmed", "ya es",
		"done deal", "cerrado", "exclusiva", "exclusive", "bombazo", "shock",
	},
	CategoryStats: {
		"récord", "record", "estadísticas", "statistics", "stats", "histórico",
		"historic", "mejor", "best", "peor", "worst", "ranking", "clasificación",
		"standing", "tabla", "table", "promedio", "average", "racha", "streak",
	},
	CategorySchedule: {
		"calendario", "schedule", "fixture", "horario", "hora", "time",
		"fecha", "date", "jornada", "matchday", "convocatoria", "squad",
		"alineación", "lineup", "once", "starting eleven", "previa", "preview",
	},
}

var developingKeywords = []string{
	"en desarrollo", "breaking", "última hora", "developing", "live",
	"en vivo", "directo", "ahora mismo", "just in", "en curso", "ongoing",
}

var confirmKeywords = []string{
	"oficial", "official", "confirmado", "confirmed", "comunicado",
	"announcement", "done deal", "ya es", "firma", "signed", "agree",
	"acuerdo cerrado",
}

var (
	sportTokenSets    = tokenizeKeywordSets(sportKeywords)
	categoryTokenSets = tokenizeKeywordSets(categoryKeywords)
)

// tokenizeKeywordSets pre-tokenizes every keyword so matching respects word
// boundaries, including accented characters.
func tokenizeKeywordSets(sets map[string][]string) map[string][][]string {
	compiled := make(map[string][][]string, len(sets))
	for name, keywords := range sets {
		tokenized := make([][]string, 0, len(keywords))
		for _, kw := range keywords {
			tokenized = append(tokenized, Tokenize(kw))
		}
		compiled[name] = tokenized
	}
	return compiled
}

// Tokenize splits lowercased text into words on any non-letter,
// non-digit rune.
func Tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// countMatches counts non-overlapping occurrences of each keyword token
// sequence in the token stream.
func countMatches(keywordSet [][]string, tokens []string) int {
	count := 0
	for _, kw := range keywordSet {
		count += countSequence(tokens, kw)
	}
	return count
}

func countSequence(tokens, kw []string) int {
	if len(kw) == 0 || len(tokens) < len(kw) {
		return 0
	}

	count := 0
	for i := 0; i+len(kw) <= len(tokens); {
		if matchesAt(tokens, kw, i) {
			count++
			i += len(kw)
		} else {
			i++
		}
	}
	return count
}

func matchesAt(tokens, kw []string, at int) bool {
	for j, w := range kw {
		if tokens[at+j] != w {
			return false
		}
	}
	return true
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
