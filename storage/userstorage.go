package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"travelrules/core"
)

// UserStorage persists traveler profiles and preferences.
type UserStorage struct {
	db     *SQLite
	logger *zap.SugaredLogger
}

// NewUserStorage creates a user storage backed by db.
func NewUserStorage(db *SQLite, logger *zap.SugaredLogger) *UserStorage {
	if db == nil {
		panic("db is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &UserStorage{db: db, logger: logger}
}

// Upsert creates the user on first contact and refreshes the mutable
// profile fields afterwards. Search counters are never reset here.
func (s *UserStorage) Upsert(ctx context.Context, user *core.User) error {
	if user.Language == "" {
		user.Language = core.LanguageEN
	}

	_, err := s.db.DB.ExecContext(ctx, `
		INSERT INTO users (id, username, language_code, country_code, onboarding_done)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			language_code = excluded.language_code,
			country_code = excluded.country_code,
			onboarding_done = excluded.onboarding_done,
			updated_at = CURRENT_TIMESTAMP`,
		user.ID, user.Username, string(user.Language), user.CountryCode, user.OnboardingDone,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", user.ID, err)
	}
	return nil
}

// Get returns a user profile, or ErrUserNotFound.
func (s *UserStorage) Get(ctx context.Context, id int64) (*core.User, error) {
	var user core.User
	err := s.db.DB.QueryRowContext(ctx, `
		SELECT id, username, language_code, country_code, total_searches,
			onboarding_done, created_at, updated_at
		FROM users WHERE id = ?`, id).Scan(
		&user.ID, &user.Username, &user.Language, &user.CountryCode,
		&user.TotalSearches, &user.OnboardingDone, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

// SetLanguage updates a user's preferred display language.
func (s *UserStorage) SetLanguage(ctx context.Context, id int64, lang core.Language) error {
	res, err := s.db.DB.ExecContext(ctx, `
		UPDATE users SET language_code = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, string(lang), id)
	if err != nil {
		return fmt.Errorf("failed to set language for user %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// IncrementSearches bumps a user's lifetime search counter.
func (s *UserStorage) IncrementSearches(ctx context.Context, id int64) error {
	_, err := s.db.DB.ExecContext(ctx, `
		UPDATE users SET total_searches = total_searches + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment searches for user %d: %w", id, err)
	}
	return nil
}

// CountUsers returns the number of known users.
func (s *UserStorage) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
