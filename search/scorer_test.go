package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"travelrules/core"
)

func bilingualRule(titleEN, titleRU string) core.Rule {
	return core.Rule{
		Severity: core.SeverityLow,
		Content: core.RuleContent{
			EN: core.LocalizedText{Title: titleEN},
			RU: core.LocalizedText{Title: titleRU},
		},
	}
}

func TestScore_TitleMatch(t *testing.T) {
	rule := bilingualRule("Alcohol limits", "Лимиты алкоголя")

	// Only the english title matches; severity low adds nothing.
	assert.Equal(t, 10.0, Score(rule, "alcohol"))
}

// TestScore_BilingualHitCountsTwice verifies each language's fields
// contribute independently.
func TestScore_BilingualHitCountsTwice(t *testing.T) {
	rule := bilingualRule("Drone rules 250", "Правила дронов 250")

	assert.Equal(t, 20.0, Score(rule, "250"), "numeric query hits both titles")
}

func TestScore_FieldWeights(t *testing.T) {
	rule := core.Rule{
		Severity: core.SeverityLow,
		Content: core.RuleContent{
			EN: core.LocalizedText{
				Title:       "Alcohol limits",
				Description: "Alcohol may not exceed one liter",
				Details:     "Alcohol fines reach 500 EUR",
			},
			RU: core.LocalizedText{Title: "Лимиты"},
		},
	}

	// 10 (title) + 5 (description) + 2 (details), english only.
	assert.Equal(t, 17.0, Score(rule, "alcohol"))
}

func TestScore_SeverityBonus(t *testing.T) {
	for _, tc := range []struct {
		severity core.Severity
		want     float64
	}{
		{core.SeverityLow, 10.0},
		{core.SeverityMedium, 11.0},
		{core.SeverityHigh, 12.0},
		{core.SeverityCritical, 13.0},
	} {
		rule := bilingualRule("Alcohol", "Алкоголь")
		rule.Severity = tc.severity
		assert.Equal(t, tc.want, Score(rule, "alcohol"), "severity %s", tc.severity)
	}
}

// TestScore_PopularityCapped verifies the views bonus saturates at 5.
func TestScore_PopularityCapped(t *testing.T) {
	rule := bilingualRule("Alcohol", "Алкоголь")

	rule.Views = 250
	assert.Equal(t, 12.5, Score(rule, "alcohol"), "250 views adds 2.5")

	rule.Views = 100000
	assert.Equal(t, 15.0, Score(rule, "alcohol"), "views bonus caps at 5")
}

func TestScore_NoTextMatch(t *testing.T) {
	rule := bilingualRule("Alcohol", "Алкоголь")
	rule.Severity = core.SeverityCritical
	rule.Views = 10000

	// Severity and popularity still contribute even with zero field hits.
	assert.Equal(t, 8.0, Score(rule, "drone"))
}
