package search

import (
	"strings"

	"travelrules/core"
)

// Matches reports whether text satisfies query.
//
// Both sides are normalized first. A direct substring hit wins; otherwise
// every whitespace-delimited query word must appear somewhere in the text
// (AND semantics, order-independent), so "alcohol limit" matches a text
// where the words occur in any order. An empty query vacuously matches —
// callers enforce the minimum query length before searching.
func Matches(text, query string) bool {
	normText := Normalize(text)
	normQuery := Normalize(query)

	if strings.Contains(normText, normQuery) {
		return true
	}

	for _, word := range strings.Fields(normQuery) {
		if !strings.Contains(normText, word) {
			return false
		}
	}
	return true
}

// RuleMatches reports whether any of the rule's six text fields (title,
// description, details in each language) satisfies the query. Absent
// details fields are empty strings and simply never match.
func RuleMatches(rule core.Rule, query string) bool {
	for _, lang := range core.Languages() {
		content := rule.Content.For(lang)
		if Matches(content.Title, query) ||
			Matches(content.Description, query) ||
			Matches(content.Details, query) {
			return true
		}
	}
	return false
}
