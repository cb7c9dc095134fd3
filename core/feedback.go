package core

import "time"

// FeedbackType describes what kind of feedback a user left.
type FeedbackType string

const (
	FeedbackHelpful    FeedbackType = "helpful"
	FeedbackNotHelpful FeedbackType = "not_helpful"
	FeedbackOutdated   FeedbackType = "outdated"
	FeedbackIncorrect  FeedbackType = "incorrect"
	FeedbackSuggestion FeedbackType = "suggestion"
	FeedbackGeneral    FeedbackType = "general"
)

// IsValid reports whether t is a known feedback type.
func (t FeedbackType) IsValid() bool {
	switch t {
	case FeedbackHelpful, FeedbackNotHelpful, FeedbackOutdated,
		FeedbackIncorrect, FeedbackSuggestion, FeedbackGeneral:
		return true
	}
	return false
}

// FeedbackStatus is the review state of a feedback entry.
type FeedbackStatus string

const (
	FeedbackPending   FeedbackStatus = "pending"
	FeedbackReviewed  FeedbackStatus = "reviewed"
	FeedbackResolved  FeedbackStatus = "resolved"
	FeedbackDismissed FeedbackStatus = "dismissed"
)

// Feedback is a user's verdict on a rule, or a general note about the
// service when RuleID is empty.
type Feedback struct {
	ID          int64          `json:"id"`
	UserID      int64          `json:"user_id"`
	RuleID      string         `json:"rule_id,omitempty"`
	Type        FeedbackType   `json:"feedback_type"`
	Message     string         `json:"message,omitempty"`
	UserContact string         `json:"user_contact,omitempty"`
	Status      FeedbackStatus `json:"status"`
	Priority    int            `json:"priority"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
