package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"travelrules/core"
	"travelrules/metrics"
)

// AnalyticsStorage appends usage events. Writes are fire-and-forget from
// the caller's point of view: the service layer logs failures and moves on,
// so a broken analytics table never breaks a conversation.
type AnalyticsStorage struct {
	db     *SQLite
	logger *zap.SugaredLogger
}

// NewAnalyticsStorage creates an analytics storage backed by db.
func NewAnalyticsStorage(db *SQLite, logger *zap.SugaredLogger) *AnalyticsStorage {
	if db == nil {
		panic("db is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &AnalyticsStorage{db: db, logger: logger}
}

// TrackEvent records one usage event with an optional payload.
func (s *AnalyticsStorage) TrackEvent(ctx context.Context, userID int64, eventType core.EventType, payload map[string]any) error {
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode event payload: %w", err)
	}

	_, err = s.db.DB.ExecContext(ctx, `
		INSERT INTO analytics_events (id, user_id, event_type, event_data)
		VALUES (?, ?, ?, ?)`,
		uuid.NewString(), userID, string(eventType), string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to track event %s: %w", eventType, err)
	}

	metrics.EventsTracked.WithLabelValues(string(eventType)).Inc()
	return nil
}

// GetUserEvents returns a user's most recent events, newest first.
func (s *AnalyticsStorage) GetUserEvents(ctx context.Context, userID int64, limit int) ([]core.AnalyticsEvent, error) {
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT id, user_id, event_type, event_data, created_at
		FROM analytics_events
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user events: %w", err)
	}
	defer rows.Close()

	events := make([]core.AnalyticsEvent, 0)
	for rows.Next() {
		var (
			ev   core.AnalyticsEvent
			data string
		)
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.Type, &data, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &ev.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode event payload: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// CountEventsByType returns totals per event type across all users.
func (s *AnalyticsStorage) CountEventsByType(ctx context.Context) (map[core.EventType]int64, error) {
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT event_type, COUNT(*) FROM analytics_events GROUP BY event_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[core.EventType]int64)
	for rows.Next() {
		var (
			t string
			n int64
		)
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("failed to scan event count: %w", err)
		}
		counts[core.EventType(t)] = n
	}
	return counts, rows.Err()
}
