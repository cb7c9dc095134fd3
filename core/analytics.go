package core

import "time"

// EventType enumerates the analytics events the service records.
// Events are fire-and-forget; a failed write never surfaces to the user.
type EventType string

const (
	EventUserStarted       EventType = "user_started"
	EventLanguageSelected  EventType = "language_selected"
	EventCountrySelected   EventType = "country_selected"
	EventCategorySelected  EventType = "category_selected"
	EventRuleViewed        EventType = "rule_viewed"
	EventSearchPerformed   EventType = "search_performed"
	EventFeedbackSubmitted EventType = "feedback_submitted"
)

// AnalyticsEvent is a single recorded usage event.
// Payload carries event-specific details (query, result count, filters).
type AnalyticsEvent struct {
	ID        string         `json:"id"`
	UserID    int64          `json:"user_id"`
	Type      EventType      `json:"event_type"`
	Payload   map[string]any `json:"event_data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
