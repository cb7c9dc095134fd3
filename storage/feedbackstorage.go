package storage

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"travelrules/core"
)

// FeedbackStorage persists user feedback on rules and on the service.
type FeedbackStorage struct {
	db     *SQLite
	logger *zap.SugaredLogger
}

// NewFeedbackStorage creates a feedback storage backed by db.
func NewFeedbackStorage(db *SQLite, logger *zap.SugaredLogger) *FeedbackStorage {
	if db == nil {
		panic("db is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &FeedbackStorage{db: db, logger: logger}
}

// Submit inserts a feedback entry and fills in its generated ID and
// timestamps. A second entry of the same type by the same user on the same
// rule returns ErrDuplicateFeedback.
func (s *FeedbackStorage) Submit(ctx context.Context, fb *core.Feedback) error {
	if fb.Status == "" {
		fb.Status = core.FeedbackPending
	}
	if fb.Priority == 0 {
		fb.Priority = 5
	}

	// NULL rule_id keeps general feedback out of the per-rule unique index.
	var ruleID any
	if fb.RuleID != "" {
		ruleID = fb.RuleID
	}

	res, err := s.db.DB.ExecContext(ctx, `
		INSERT INTO feedback (user_id, rule_id, feedback_type, message, user_contact, status, priority)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fb.UserID, ruleID, string(fb.Type), fb.Message, fb.UserContact, string(fb.Status), fb.Priority,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateFeedback
		}
		return fmt.Errorf("failed to submit feedback: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read feedback id: %w", err)
	}
	fb.ID = id

	s.logger.Infow("feedback submitted",
		"feedback_id", fb.ID,
		"user_id", fb.UserID,
		"rule_id", fb.RuleID,
		"type", fb.Type,
	)
	return nil
}

// ListByStatus returns feedback entries in one review state, newest first.
func (s *FeedbackStorage) ListByStatus(ctx context.Context, status core.FeedbackStatus, limit int) ([]core.Feedback, error) {
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT id, user_id, COALESCE(rule_id, ''), feedback_type, message,
			user_contact, status, priority, created_at, updated_at
		FROM feedback
		WHERE status = ?
		ORDER BY priority, created_at DESC
		LIMIT ?`, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	entries := make([]core.Feedback, 0)
	for rows.Next() {
		var fb core.Feedback
		if err := rows.Scan(
			&fb.ID, &fb.UserID, &fb.RuleID, &fb.Type, &fb.Message,
			&fb.UserContact, &fb.Status, &fb.Priority, &fb.CreatedAt, &fb.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		entries = append(entries, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback rows: %w", err)
	}
	return entries, nil
}

// CountByType returns how many feedback entries of each type exist.
func (s *FeedbackStorage) CountByType(ctx context.Context) (map[core.FeedbackType]int64, error) {
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT feedback_type, COUNT(*) FROM feedback GROUP BY feedback_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count feedback: %w", err)
	}
	defer rows.Close()

	counts := make(map[core.FeedbackType]int64)
	for rows.Next() {
		var (
			t string
			n int64
		)
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("failed to scan feedback count: %w", err)
		}
		counts[core.FeedbackType(t)] = n
	}
	return counts, rows.Err()
}
