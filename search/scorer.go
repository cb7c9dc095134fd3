package search

import (
	"travelrules/core"
)

// Field weights. Title matches dominate; severity and popularity are
// secondary signals bounded so they cannot outweigh a strong text match.
const (
	titleWeight       = 10
	descriptionWeight = 5
	detailsWeight     = 2

	// popularityDivisor / popularityCap bound the views bonus:
	// min(views/100, 5).
	popularityDivisor = 100
	popularityCap     = 5
)

// Score computes the relevance of a rule for a query. The value is
// unitless and used only for relative ordering. Each language's title,
// description and details contribute independently, so a bilingual title
// hit is worth twice a single-language one.
func Score(rule core.Rule, query string) float64 {
	var score float64

	for _, lang := range core.Languages() {
		content := rule.Content.For(lang)
		if Matches(content.Title, query) {
			score += titleWeight
		}
		if Matches(content.Description, query) {
			score += descriptionWeight
		}
		if Matches(content.Details, query) {
			score += detailsWeight
		}
	}

	score += float64(rule.Severity.Weight())

	popularity := float64(rule.Views) / popularityDivisor
	if popularity > popularityCap {
		popularity = popularityCap
	}
	score += popularity

	return score
}
