package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection. Parent directories of a
// file database are created as needed.
func New(dataSourceName string) (*DB, error) {
	if dataSourceName != ":memory:" {
		if dir := filepath.Dir(dataSourceName); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer, and every ":memory:" connection is a
	// separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &DB{db}, nil
}

// Migrate creates the schema. It is safe to run on every start.
func (db *DB) Migrate() error {
	migration := `
-- Recognition rules
CREATE TABLE IF NOT EXISTS recognition_rules (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    priority INTEGER NOT NULL,
    criteria TEXT NOT NULL CHECK(criteria IN ('process_name_only', 'window_title_only', 'both')),
    process_pattern TEXT,
    process_match_mode TEXT,
    process_case_sensitive INTEGER NOT NULL DEFAULT 0,
    title_pattern TEXT,
    title_match_mode TEXT,
    title_case_sensitive INTEGER NOT NULL DEFAULT 0,
    match_count INTEGER NOT NULL DEFAULT 0,
    last_matched_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rules_priority ON recognition_rules(priority, created_at);

-- Ended meetings
CREATE TABLE IF NOT EXISTS ended_meetings (
    guid TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    custom_description TEXT NOT NULL DEFAULT '',
    start_date TIMESTAMP NOT NULL,
    end_date TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_meetings_end_date ON ended_meetings(end_date);

-- Activity log
CREATE TABLE IF NOT EXISTS activity_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    meeting_id TEXT,
    activity_type TEXT NOT NULL,
    summary TEXT NOT NULL,
    details TEXT,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activity_meeting ON activity_log(meeting_id);
CREATE INDEX IF NOT EXISTS idx_activity_created_at ON activity_log(created_at);
`

	if _, err := db.Exec(migration); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
