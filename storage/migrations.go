package storage

import "fmt"

// migration is one schema version. Statements run inside a single
// transaction together with the version bump.
type migration struct {
	version    int
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS rules (
				id TEXT PRIMARY KEY,
				country_code TEXT NOT NULL,
				category TEXT NOT NULL,
				severity TEXT NOT NULL,
				title_en TEXT NOT NULL,
				description_en TEXT NOT NULL DEFAULT '',
				details_en TEXT NOT NULL DEFAULT '',
				title_ru TEXT NOT NULL,
				description_ru TEXT NOT NULL DEFAULT '',
				details_ru TEXT NOT NULL DEFAULT '',
				fine_min INTEGER NOT NULL DEFAULT 0,
				fine_max INTEGER NOT NULL DEFAULT 0,
				fine_currency TEXT NOT NULL DEFAULT '',
				sources TEXT NOT NULL DEFAULT '[]',
				views INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				deleted_at TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_rules_country_category
				ON rules(country_code, category) WHERE deleted_at IS NULL`,
			`CREATE INDEX IF NOT EXISTS idx_rules_views
				ON rules(views DESC) WHERE deleted_at IS NULL`,
			`CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY,
				username TEXT NOT NULL DEFAULT '',
				language_code TEXT NOT NULL DEFAULT 'en',
				country_code TEXT NOT NULL DEFAULT '',
				total_searches INTEGER NOT NULL DEFAULT 0,
				onboarding_done INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS feedback (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				rule_id TEXT,
				feedback_type TEXT NOT NULL,
				message TEXT NOT NULL DEFAULT '',
				user_contact TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'pending',
				priority INTEGER NOT NULL DEFAULT 5,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(user_id, rule_id, feedback_type)
			)`,
			`CREATE TABLE IF NOT EXISTS analytics_events (
				id TEXT PRIMARY KEY,
				user_id INTEGER NOT NULL,
				event_type TEXT NOT NULL,
				event_data TEXT NOT NULL DEFAULT '{}',
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_events_user
				ON analytics_events(user_id, created_at DESC)`,
		},
	},
}

// migrate brings the schema up to the latest version. Each migration runs
// in its own transaction so a failure leaves the version table consistent.
func (s *SQLite) migrate() error {
	_, err := s.DB.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var current int
	if err := s.DB.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := s.DB.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.version, err)
		}

		for _, stmt := range m.statements {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}

		s.Logger.Infow("applied migration", "version", m.version)
	}

	return nil
}
