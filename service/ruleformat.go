package service

import (
	"fmt"
	"strings"

	"travelrules/core"
)

// severityLabel carries the display marker and per-language label for one
// severity level.
type severityLabel struct {
	emoji  string
	textEN string
	textRU string
}

var severityLabels = map[core.Severity]severityLabel{
	core.SeverityCritical: {emoji: "🔴", textEN: "Critical", textRU: "Критично"},
	core.SeverityHigh:     {emoji: "🟠", textEN: "High", textRU: "Высокий"},
	core.SeverityMedium:   {emoji: "🟡", textEN: "Medium", textRU: "Средний"},
	core.SeverityLow:      {emoji: "🟢", textEN: "Low", textRU: "Низкий"},
}

// SeverityEmoji returns the colored marker for a severity level.
func SeverityEmoji(s core.Severity) string {
	return severityLabels[s].emoji
}

// SeverityText returns the severity label in the given language.
func SeverityText(s core.Severity, lang core.Language) string {
	if lang == core.LanguageRU {
		return severityLabels[s].textRU
	}
	return severityLabels[s].textEN
}

// FormatFine renders a rule's fine range, or "" when the rule carries no
// fine.
func FormatFine(rule core.Rule, lang core.Language) string {
	if rule.FineMin == 0 || rule.FineMax == 0 || rule.FineCurrency == "" {
		return ""
	}

	symbol := rule.FineCurrency
	if symbol == "EUR" {
		symbol = "€"
	}
	label := "Fine"
	if lang == core.LanguageRU {
		label = "Штраф"
	}
	return fmt.Sprintf("%s: %s%d - %s%d", label, symbol, rule.FineMin, symbol, rule.FineMax)
}

// FormatRuleDetailed renders the full detail view of a rule as
// Telegram-flavored HTML: title, severity, description, detail bullets,
// fine and sources.
func FormatRuleDetailed(rule core.Rule, lang core.Language) string {
	content := rule.Content.For(lang)

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s</b>\n\n", SeverityEmoji(rule.Severity), content.Title)

	severityLabel := "Severity"
	if lang == core.LanguageRU {
		severityLabel = "Серьезность"
	}
	fmt.Fprintf(&b, "📊 %s: %s\n\n", severityLabel, SeverityText(rule.Severity, lang))

	fmt.Fprintf(&b, "📝 %s\n\n", content.Description)

	if strings.TrimSpace(content.Details) != "" {
		detailsTitle := "ℹ️ Details:"
		if lang == core.LanguageRU {
			detailsTitle = "ℹ️ Подробности:"
		}
		fmt.Fprintf(&b, "<b>%s</b>\n", detailsTitle)
		for _, line := range strings.Split(content.Details, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			fmt.Fprintf(&b, "• %s\n", line)
		}
		b.WriteString("\n")
	}

	if rule.FineMin != 0 && rule.FineMax != 0 {
		fineLabel := "Fine"
		if lang == core.LanguageRU {
			fineLabel = "Штраф"
		}
		fmt.Fprintf(&b, "💰 <b>%s:</b> %d-%d %s\n\n",
			fineLabel, rule.FineMin, rule.FineMax, rule.FineCurrency)
	}

	if len(rule.Sources) > 0 {
		sourcesTitle := "Sources"
		if lang == core.LanguageRU {
			sourcesTitle = "Источники"
		}
		fmt.Fprintf(&b, "📚 <b>%s:</b>\n", sourcesTitle)
		for i, src := range rule.Sources {
			fmt.Fprintf(&b, "%d. <a href=\"%s\">%s</a>\n", i+1, src.URL, src.Title)
		}
	}

	return b.String()
}
