package core

import "time"

// User is a traveler profile with the preferences the service needs to
// render rules: language and (optionally) a default country.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username,omitempty"`
	Language       Language  `json:"language_code"`
	CountryCode    string    `json:"country_code,omitempty"`
	TotalSearches  int64     `json:"total_searches"`
	OnboardingDone bool      `json:"onboarding_done"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
