// Package classify labels candidate items with a sport, a content category
// and a verification status. Purely lexical, no network calls.
package classify

import (
	"strings"

	"goalwire/bot/internal/models"
)

// Classifier assigns sport, category and status labels.
type Classifier struct {
	officialDomains map[string]struct{}
}

func New(officialDomains []string) *Classifier {
	domains := make(map[string]struct{}, len(officialDomains))
	for _, d := range officialDomains {
		domains[strings.ToLower(d)] = struct{}{}
	}
	return &Classifier{officialDomains: domains}
}

// Classify labels one item in place.
func (c *Classifier) Classify(item *models.CandidateItem) {
	combined := combinedText(item)

	item.Sport = c.Sport(item.SourceSportHint, combined)
	item.Category = c.Category(strings.ToLower(item.Title), combined)
	item.Status = c.Status(item.SourceDomain, combined)
}

// ClassifyAll labels a batch in place.
func (c *Classifier) ClassifyAll(items []models.CandidateItem) {
	for i := range items {
		c.Classify(&items[i])
	}
}

// Sport resolves the sport, trusting the source hint when it names a known
// sport and falling back to keyword counting.
func (c *Classifier) Sport(hint, combined string) string {
	switch hint {
	case SportFootball, SportNBA, SportTennis:
		return hint
	}

	tokens := Tokenize(combined)
	bestSport := SportFootball
	bestCount := 0
	for _, sport := range sportOrder {
		if count := countMatches(sportTokenSets[sport], tokens); count > bestCount {
			bestSport = sport
			bestCount = count
		}
	}
	return bestSport
}

// Category scores every category by keyword frequency, with title matches
// counting double. Strong breaking, rumor or transfer signals override the
// plain maximum.
func (c *Classifier) Category(titleLower, combined string) string {
	combinedTokens := Tokenize(combined)
	titleTokens := Tokenize(titleLower)

	scores := make(map[string]int, len(categoryOrder))
	for _, category := range categoryOrder {
		set := categoryTokenSets[category]
		scores[category] = countMatches(set, combinedTokens) + 2*countMatches(set, titleTokens)
	}

	for _, category := range []string{CategoryBreaking, CategoryRumor, CategoryTransfer} {
		if scores[category] >= 2 {
			return category
		}
	}

	best := CategoryDefault
	bestScore := 0
	for _, category := range categoryOrder {
		if scores[category] > bestScore {
			best = category
			bestScore = scores[category]
		}
	}
	return best
}

// Status grades how settled a story is. Official club and league domains
// are always confirmed; otherwise live-coverage wording marks a developing
// story and confirmation wording a confirmed one. Everything else is rumor.
func (c *Classifier) Status(sourceDomain, combined string) models.Status {
	if _, official := c.officialDomains[strings.ToLower(sourceDomain)]; official {
		return models.StatusConfirmed
	}
	if containsAny(combined, developingKeywords) {
		return models.StatusDeveloping
	}
	if containsAny(combined, confirmKeywords) {
		return models.StatusConfirmed
	}
	return models.StatusRumor
}

func combinedText(item *models.CandidateItem) string {
	parts := []string{item.Title, item.Summary}
	parts = append(parts, item.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}
