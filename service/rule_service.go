package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"travelrules/core"
)

// RuleReader defines the rule storage operations the service needs.
// Defined here, in the consumer package; storage.RuleStorage satisfies it.
type RuleReader interface {
	GetRule(ctx context.Context, id string) (*core.Rule, error)
	GetRulesByCountryAndCategory(ctx context.Context, countryCode, category string) ([]core.Rule, error)
	IncrementViews(ctx context.Context, id string) error
}

// EventTracker records analytics events.
type EventTracker interface {
	TrackEvent(ctx context.Context, userID int64, eventType core.EventType, payload map[string]any) error
}

// RuleService is the read-side business logic for rule browsing: fetching
// a rule for display, bumping its popularity, and recording the view.
type RuleService struct {
	rules  RuleReader
	events EventTracker
	logger *zap.SugaredLogger
}

// NewRuleService creates a rule service. All dependencies are required.
func NewRuleService(rules RuleReader, events EventTracker, logger *zap.SugaredLogger) *RuleService {
	if rules == nil {
		panic("rules is required")
	}
	if events == nil {
		panic("events is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &RuleService{rules: rules, events: events, logger: logger}
}

// ViewRule returns a rule for detail display. The view counter bump and
// the analytics event are non-critical: their failures are logged and
// swallowed, never surfaced to the viewer.
func (s *RuleService) ViewRule(ctx context.Context, ruleID string, userID int64) (*core.Rule, error) {
	if ruleID == "" {
		return nil, fmt.Errorf("ruleID is required")
	}

	rule, err := s.rules.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	if err := s.rules.IncrementViews(ctx, ruleID); err != nil {
		s.logger.Warnw("failed to increment rule views", "rule_id", ruleID, "error", err)
	}
	if err := s.events.TrackEvent(ctx, userID, core.EventRuleViewed, map[string]any{
		"rule_id":  ruleID,
		"country":  rule.CountryCode,
		"category": rule.Category,
	}); err != nil {
		s.logger.Warnw("failed to track rule view", "rule_id", ruleID, "error", err)
	}

	return rule, nil
}

// BrowseRules returns the rule listing for one country and category,
// most severe first.
func (s *RuleService) BrowseRules(ctx context.Context, countryCode, category string) ([]core.Rule, error) {
	if !core.KnownCountry(countryCode) {
		return nil, fmt.Errorf("unknown country code %q", countryCode)
	}
	if !core.KnownCategory(category) {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	return s.rules.GetRulesByCountryAndCategory(ctx, countryCode, category)
}
