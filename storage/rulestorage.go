package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"travelrules/core"
	"travelrules/metrics"
)

// severityRank orders rules critical-first in SQL without a lookup table.
const severityRank = `CASE severity
	WHEN 'critical' THEN 3
	WHEN 'high' THEN 2
	WHEN 'medium' THEN 1
	ELSE 0 END`

const ruleColumns = `id, country_code, category, severity,
	title_en, description_en, details_en,
	title_ru, description_ru, details_ru,
	fine_min, fine_max, fine_currency, sources, views, created_at, updated_at`

// RuleStorage reads and writes rule records. Everything the search core
// sees goes through here; soft-deleted rows never leave this layer.
type RuleStorage struct {
	db     *SQLite
	logger *zap.SugaredLogger
}

// NewRuleStorage creates a rule storage backed by db.
func NewRuleStorage(db *SQLite, logger *zap.SugaredLogger) *RuleStorage {
	if db == nil {
		panic("db is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &RuleStorage{db: db, logger: logger}
}

// CreateRule inserts a rule, or updates its content in place when the ID
// already exists. Views and creation time survive re-imports.
func (s *RuleStorage) CreateRule(ctx context.Context, rule *core.Rule) error {
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	sources, err := json.Marshal(rule.Sources)
	if err != nil {
		return fmt.Errorf("failed to encode rule sources: %w", err)
	}

	_, err = s.db.DB.ExecContext(ctx, `
		INSERT INTO rules (
			id, country_code, category, severity,
			title_en, description_en, details_en,
			title_ru, description_ru, details_ru,
			fine_min, fine_max, fine_currency, sources
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			country_code = excluded.country_code,
			category = excluded.category,
			severity = excluded.severity,
			title_en = excluded.title_en,
			description_en = excluded.description_en,
			details_en = excluded.details_en,
			title_ru = excluded.title_ru,
			description_ru = excluded.description_ru,
			details_ru = excluded.details_ru,
			fine_min = excluded.fine_min,
			fine_max = excluded.fine_max,
			fine_currency = excluded.fine_currency,
			sources = excluded.sources,
			updated_at = CURRENT_TIMESTAMP,
			deleted_at = NULL`,
		rule.ID, rule.CountryCode, rule.Category, string(rule.Severity),
		rule.Content.EN.Title, rule.Content.EN.Description, rule.Content.EN.Details,
		rule.Content.RU.Title, rule.Content.RU.Description, rule.Content.RU.Details,
		rule.FineMin, rule.FineMax, rule.FineCurrency, string(sources),
	)
	if err != nil {
		return fmt.Errorf("failed to store rule %s: %w", rule.ID, err)
	}
	return nil
}

// GetRule returns a rule by ID, or ErrRuleNotFound.
func (s *RuleStorage) GetRule(ctx context.Context, id string) (*core.Rule, error) {
	row := s.db.DB.QueryRowContext(ctx, `
		SELECT `+ruleColumns+`
		FROM rules
		WHERE id = ? AND deleted_at IS NULL`, id)

	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule %s: %w", id, err)
	}
	return rule, nil
}

// GetCandidates returns up to limit raw rules for client-side matching,
// with exact-match country/category filters applied. The order is the
// store's insertion order (creation time, then ID) so repeated fetches of
// an unchanged table are byte-identical — the stable tie-break the search
// engine relies on.
func (s *RuleStorage) GetCandidates(ctx context.Context, filters core.SearchFilters, limit int) ([]core.Rule, error) {
	defer s.observe("get_candidates")()

	var (
		conds = []string{"deleted_at IS NULL"}
		args  []any
	)
	if filters.CountryCode != "" {
		conds = append(conds, "country_code = ?")
		args = append(args, filters.CountryCode)
	}
	if filters.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filters.Category)
	}
	args = append(args, limit)

	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM rules
		WHERE `+strings.Join(conds, " AND ")+`
		ORDER BY created_at, id
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}
	defer rows.Close()

	return collectRules(rows)
}

// GetRulesByCountryAndCategory returns the browse listing for one country
// and category, most severe first.
func (s *RuleStorage) GetRulesByCountryAndCategory(ctx context.Context, countryCode, category string) ([]core.Rule, error) {
	defer s.observe("rules_by_country_category")()

	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM rules
		WHERE country_code = ? AND category = ? AND deleted_at IS NULL
		ORDER BY `+severityRank+` DESC, id`, countryCode, category)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rules for %s/%s: %w", countryCode, category, err)
	}
	defer rows.Close()

	return collectRules(rows)
}

// GetPopularRules returns the most viewed rules, up to limit.
func (s *RuleStorage) GetPopularRules(ctx context.Context, limit int) ([]core.Rule, error) {
	defer s.observe("popular_rules")()

	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM rules
		WHERE deleted_at IS NULL
		ORDER BY views DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch popular rules: %w", err)
	}
	defer rows.Close()

	return collectRules(rows)
}

// IncrementViews bumps a rule's popularity counter. Callers treat this as
// non-critical and wrap it in a silent-fail helper.
func (s *RuleStorage) IncrementViews(ctx context.Context, id string) error {
	res, err := s.db.DB.ExecContext(ctx, `
		UPDATE rules SET views = views + 1
		WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to increment views for %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRuleNotFound
	}
	metrics.RuleViews.Inc()
	return nil
}

// DeleteRule soft-deletes a rule; it disappears from every read path but
// keeps its row (and view history) for audit.
func (s *RuleStorage) DeleteRule(ctx context.Context, id string) error {
	res, err := s.db.DB.ExecContext(ctx, `
		UPDATE rules SET deleted_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// CountRules returns the number of live rules.
func (s *RuleStorage) CountRules(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rules WHERE deleted_at IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rules: %w", err)
	}
	return count, nil
}

func (s *RuleStorage) observe(query string) func() {
	start := time.Now()
	return func() {
		metrics.StoreQueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
	}
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*core.Rule, error) {
	var (
		rule    core.Rule
		sources string
	)
	err := row.Scan(
		&rule.ID, &rule.CountryCode, &rule.Category, &rule.Severity,
		&rule.Content.EN.Title, &rule.Content.EN.Description, &rule.Content.EN.Details,
		&rule.Content.RU.Title, &rule.Content.RU.Description, &rule.Content.RU.Details,
		&rule.FineMin, &rule.FineMax, &rule.FineCurrency,
		&sources, &rule.Views, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(sources), &rule.Sources); err != nil {
		return nil, fmt.Errorf("failed to decode sources for rule %s: %w", rule.ID, err)
	}
	return &rule, nil
}

func collectRules(rows *sql.Rows) ([]core.Rule, error) {
	rules := make([]core.Rule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule row: %w", err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rule rows: %w", err)
	}
	return rules, nil
}
