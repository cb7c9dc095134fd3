package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"travelrules/core"
	"travelrules/storage"
)

// UserStore defines the profile operations the service needs.
type UserStore interface {
	Upsert(ctx context.Context, user *core.User) error
	Get(ctx context.Context, id int64) (*core.User, error)
	SetLanguage(ctx context.Context, id int64, lang core.Language) error
	IncrementSearches(ctx context.Context, id int64) error
}

// UserService manages traveler profiles: first contact, language choice
// and profile reads.
type UserService struct {
	users  UserStore
	events EventTracker
	logger *zap.SugaredLogger
}

// NewUserService creates a user service.
func NewUserService(users UserStore, events EventTracker, logger *zap.SugaredLogger) *UserService {
	if users == nil {
		panic("users is required")
	}
	if events == nil {
		panic("events is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &UserService{users: users, events: events, logger: logger}
}

// Register creates or refreshes a profile. The started event fires only on
// first contact so returning users do not inflate the counter.
func (s *UserService) Register(ctx context.Context, user *core.User) (*core.User, error) {
	if user.ID <= 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if user.CountryCode != "" && !core.KnownCountry(user.CountryCode) {
		return nil, fmt.Errorf("unknown country code %q", user.CountryCode)
	}

	_, err := s.users.Get(ctx, user.ID)
	firstContact := errors.Is(err, storage.ErrUserNotFound)
	if err != nil && !firstContact {
		return nil, err
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, err
	}

	if firstContact {
		if err := s.events.TrackEvent(ctx, user.ID, core.EventUserStarted, nil); err != nil {
			s.logger.Warnw("failed to track user start", "user_id", user.ID, "error", err)
		}
	}

	return s.users.Get(ctx, user.ID)
}

// Get returns a profile, or storage.ErrUserNotFound.
func (s *UserService) Get(ctx context.Context, id int64) (*core.User, error) {
	return s.users.Get(ctx, id)
}

// RecordSearch notes a completed search against the user's profile.
// Entirely best-effort: counters and events fail silently so bookkeeping
// never degrades the search itself.
func (s *UserService) RecordSearch(ctx context.Context, userID int64, query string, results int) {
	if userID <= 0 {
		return
	}

	if err := s.users.IncrementSearches(ctx, userID); err != nil {
		s.logger.Warnw("failed to bump search counter", "user_id", userID, "error", err)
	}
	if err := s.events.TrackEvent(ctx, userID, core.EventSearchPerformed, map[string]any{
		"query":   query,
		"results": results,
	}); err != nil {
		s.logger.Warnw("failed to track search", "user_id", userID, "error", err)
	}
}

// SetLanguage switches a user's display language.
func (s *UserService) SetLanguage(ctx context.Context, id int64, code string) error {
	lang := core.ParseLanguage(code)
	if err := s.users.SetLanguage(ctx, id, lang); err != nil {
		return err
	}

	if err := s.events.TrackEvent(ctx, id, core.EventLanguageSelected, map[string]any{
		"language": string(lang),
	}); err != nil {
		s.logger.Warnw("failed to track language change", "user_id", id, "error", err)
	}
	return nil
}
