package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"travelrules/core"
	"travelrules/metrics"
)

// FeedbackInput is what a caller provides when submitting feedback.
type FeedbackInput struct {
	UserID      int64  `json:"user_id" validate:"required,gt=0"`
	RuleID      string `json:"rule_id,omitempty" validate:"max=100"`
	Type        string `json:"feedback_type" validate:"required"`
	Message     string `json:"message,omitempty" validate:"max=2000"`
	UserContact string `json:"user_contact,omitempty" validate:"max=200"`
	Priority    int    `json:"priority,omitempty" validate:"gte=0,lte=10"`
}

// FeedbackWriter persists feedback entries.
type FeedbackWriter interface {
	Submit(ctx context.Context, fb *core.Feedback) error
}

// FeedbackService validates and stores user feedback.
type FeedbackService struct {
	store    FeedbackWriter
	events   EventTracker
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

// NewFeedbackService creates a feedback service.
func NewFeedbackService(store FeedbackWriter, events EventTracker, logger *zap.SugaredLogger) *FeedbackService {
	if store == nil {
		panic("store is required")
	}
	if events == nil {
		panic("events is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &FeedbackService{
		store:    store,
		events:   events,
		validate: validator.New(),
		logger:   logger,
	}
}

// Submit validates the input and stores the feedback entry.
// storage.ErrDuplicateFeedback passes through untouched so callers can
// answer "you already rated this rule" instead of a generic failure.
func (s *FeedbackService) Submit(ctx context.Context, input FeedbackInput) (*core.Feedback, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid feedback: %w", err)
	}

	ftype := core.FeedbackType(input.Type)
	if !ftype.IsValid() {
		return nil, fmt.Errorf("invalid feedback type %q", input.Type)
	}
	// Text-bearing types must actually carry text.
	if (ftype == core.FeedbackSuggestion || ftype == core.FeedbackGeneral) && input.Message == "" {
		return nil, fmt.Errorf("feedback type %q requires a message", input.Type)
	}

	fb := &core.Feedback{
		UserID:      input.UserID,
		RuleID:      input.RuleID,
		Type:        ftype,
		Message:     input.Message,
		UserContact: input.UserContact,
		Priority:    input.Priority,
	}

	if err := s.store.Submit(ctx, fb); err != nil {
		return nil, err
	}

	metrics.FeedbackSubmitted.WithLabelValues(string(ftype)).Inc()
	if err := s.events.TrackEvent(ctx, input.UserID, core.EventFeedbackSubmitted, map[string]any{
		"rule_id": input.RuleID,
		"type":    string(ftype),
	}); err != nil {
		s.logger.Warnw("failed to track feedback event", "user_id", input.UserID, "error", err)
	}

	return fb, nil
}
