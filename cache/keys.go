package cache

import (
	"fmt"
	"strings"
)

// Key helpers keep cache keys consistent across callers and out of
// collision range of each other. Keys are caller-constructed; on a
// collision the last Set wins.

// KeyPopularRules is the key for the most-viewed rules list.
const KeyPopularRules = "popular_rules"

// KeyRulesByCountryCategory builds the key for a country+category rule list.
func KeyRulesByCountryCategory(country, category string) string {
	return fmt.Sprintf("rules:%s:%s", country, category)
}

// KeySearchResults builds the key for a memoized search result set.
func KeySearchResults(query, country, category string) string {
	parts := []string{"search", query}
	if country != "" {
		parts = append(parts, country)
	}
	if category != "" {
		parts = append(parts, category)
	}
	return strings.Join(parts, ":")
}

// KeyUserStats builds the key for a user's usage statistics.
func KeyUserStats(userID int64) string {
	return fmt.Sprintf("user_stats:%d", userID)
}
