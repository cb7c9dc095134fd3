package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLite holds the database connection for all persistent state: rules,
// feedback, analytics events and user profiles.
type SQLite struct {
	DB     *sql.DB
	Path   string
	Logger *zap.SugaredLogger
}

// NewSQLite opens (creating if necessary) the database at path, applies the
// connection pragmas and runs pending migrations. Use ":memory:" for tests.
func NewSQLite(path string, logger *zap.SugaredLogger) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// modernc's driver serializes per connection; a single connection
	// avoids table-lock contention between writers entirely. Reads are
	// cheap at this database's size.
	db.SetMaxOpenConns(1)

	if err := configureConnection(db, path); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLite{DB: db, Path: path, Logger: logger}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Infow("SQLite database ready", "path", path)
	return s, nil
}

// configureConnection sets up WAL mode, foreign keys and a busy timeout.
// Connection-string pragmas are unreliable across drivers, so they are
// executed explicitly and the critical ones verified.
func configureConnection(db *sql.DB, path string) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	var fkEnabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		return fmt.Errorf("failed to verify foreign keys: %w", err)
	}
	if fkEnabled != 1 {
		return fmt.Errorf("foreign keys not enabled (got %d)", fkEnabled)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	// In-memory databases report journal_mode "memory"; that is fine.
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to query journal mode: %w", err)
	}
	if path != ":memory:" && journalMode != "wal" {
		return fmt.Errorf("WAL mode not enabled (got %s)", journalMode)
	}

	return nil
}

// Close closes the underlying connection pool.
func (s *SQLite) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
