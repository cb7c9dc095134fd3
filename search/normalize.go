package search

import "strings"

// punctuation stripped before matching. Anything else (letters in either
// alphabet, digits, hyphens) survives normalization.
const punctuation = ".,!?;:()"

// Normalize prepares free text for matching: lowercase, punctuation
// stripped, whitespace runs collapsed to single spaces, ends trimmed.
// Total function; empty input yields empty output.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	lowered := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if strings.ContainsRune(punctuation, r) {
			continue
		}
		b.WriteRune(r)
	}

	// Fields both collapses interior whitespace and trims the ends.
	return strings.Join(strings.Fields(b.String()), " ")
}
