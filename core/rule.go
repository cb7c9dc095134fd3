package core

import (
	"fmt"
	"time"
)

// Severity classifies how serious a violation of a rule is for a traveler.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Weight returns the ordinal weight of the severity, from 0 (low) to
// 3 (critical). It is used both as a display sort key and as the severity
// bonus in relevance scoring.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether s is one of the known severity levels.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Language identifies one of the two content languages carried by every rule.
type Language string

const (
	LanguageEN Language = "en"
	LanguageRU Language = "ru"
)

// Languages returns all supported content languages. Matching always runs
// against every language regardless of the requester's preference.
func Languages() []Language {
	return []Language{LanguageEN, LanguageRU}
}

// ParseLanguage converts a user-supplied language code to a Language,
// falling back to English for anything unknown.
func ParseLanguage(code string) Language {
	if Language(code) == LanguageRU {
		return LanguageRU
	}
	return LanguageEN
}

// LocalizedText is the text bundle of a rule in a single language.
// Details may be empty; matching treats it as an empty string.
type LocalizedText struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Details     string `json:"details,omitempty" yaml:"details,omitempty"`
}

// RuleContent holds the bilingual text bundles of a rule.
type RuleContent struct {
	EN LocalizedText `json:"en" yaml:"en"`
	RU LocalizedText `json:"ru" yaml:"ru"`
}

// For returns the text bundle for the given language. Unknown values fall
// back to English.
func (c RuleContent) For(lang Language) LocalizedText {
	switch lang {
	case LanguageRU:
		return c.RU
	default:
		return c.EN
	}
}

// RuleSource is a reference backing a rule (law text, government page).
type RuleSource struct {
	Type  string `json:"type" yaml:"type"`
	URL   string `json:"url" yaml:"url"`
	Title string `json:"title" yaml:"title"`
}

// Rule is a single jurisdiction-specific regulation record.
// The search core only ever reads rules; the views counter is bumped by the
// storage layer, never by ranking code.
type Rule struct {
	ID          string       `json:"id" yaml:"id"`
	CountryCode string       `json:"country_code" yaml:"country_code"`
	Category    string       `json:"category" yaml:"category"`
	Severity    Severity     `json:"severity" yaml:"severity"`
	Content     RuleContent  `json:"content" yaml:"content"`
	Sources     []RuleSource `json:"sources,omitempty" yaml:"sources,omitempty"`

	// Optional fine range; all three are zero when the rule carries no fine.
	FineMin      int    `json:"fine_min,omitempty" yaml:"fine_min,omitempty"`
	FineMax      int    `json:"fine_max,omitempty" yaml:"fine_max,omitempty"`
	FineCurrency string `json:"fine_currency,omitempty" yaml:"fine_currency,omitempty"`

	Views     int64     `json:"views" yaml:"-"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// Validate checks the invariants every stored rule must hold.
func (r *Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule ID is required")
	}
	if r.CountryCode == "" {
		return fmt.Errorf("rule %s: country code is required", r.ID)
	}
	if r.Category == "" {
		return fmt.Errorf("rule %s: category is required", r.ID)
	}
	if !r.Severity.IsValid() {
		return fmt.Errorf("rule %s: invalid severity %q", r.ID, r.Severity)
	}
	if r.Content.EN.Title == "" {
		return fmt.Errorf("rule %s: english title is required", r.ID)
	}
	if r.Content.RU.Title == "" {
		return fmt.Errorf("rule %s: russian title is required", r.ID)
	}
	return nil
}

// SearchFilters narrows a candidate set by exact match before any text
// matching happens. Empty fields mean "no filter".
type SearchFilters struct {
	CountryCode string `json:"country_code,omitempty"`
	Category    string `json:"category,omitempty"`
}

// IsZero reports whether no filter is set.
func (f SearchFilters) IsZero() bool {
	return f.CountryCode == "" && f.Category == ""
}
