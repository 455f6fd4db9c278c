// Package archive keeps past reports in a local SQLite database so earlier
// runs can be listed and re-rendered.
package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id            TEXT PRIMARY KEY,
		generated_at  TEXT NOT NULL,
		source_path   TEXT NOT NULL DEFAULT '',
		source_format TEXT NOT NULL DEFAULT '',
		first_day     TEXT NOT NULL DEFAULT '',
		last_day      TEXT NOT NULL DEFAULT '',
		total_seconds INTEGER NOT NULL DEFAULT 0,
		days          INTEGER NOT NULL DEFAULT 0,
		diagnostics   INTEGER NOT NULL DEFAULT 0,
		payload       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON runs(generated_at)`,
	`CREATE TABLE IF NOT EXISTS day_totals (
		run_id         TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		date           TEXT NOT NULL,
		active_seconds INTEGER NOT NULL,
		break_seconds  INTEGER NOT NULL,
		unterminated   INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_day_totals_date ON day_totals(date)`,
}

// openDB opens the SQLite database at path with WAL and foreign keys on and
// the schema applied. ":memory:" opens a private in-memory database.
func openDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	if path == ":memory:" {
		// Every connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// DefaultPath returns $XDG_DATA_HOME/worktime/archive.db, falling back to
// ~/.local/share.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "worktime", "archive.db"), nil
}
