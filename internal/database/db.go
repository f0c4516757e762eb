package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"netdash/internal/models"
)

var _ models.Archive = (*DB)(nil)

// DB is the local snapshot archive
type DB struct {
	*sql.DB
}

// New opens the archive at path and creates the schema if needed
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("database open failed: %w", err)
	}

	// Enable WAL mode for better concurrent access
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA synchronous=NORMAL")
	db.Exec("PRAGMA busy_timeout=5000")

	d := &DB{db}
	if err := d.InitSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// InitSchema creates all necessary tables. Times are stored as unix milliseconds.
func (db *DB) InitSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS snapshots (
        id TEXT PRIMARY KEY,
        fetched_at INTEGER NOT NULL,
        period TEXT NOT NULL,
        window_from INTEGER NOT NULL,
        window_to INTEGER NOT NULL,
        status TEXT NOT NULL,
        success_rate REAL NOT NULL,
        uptime_24h REAL NOT NULL,
        outage_count INTEGER NOT NULL,
        payload TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_snapshots_fetched_at ON snapshots(fetched_at);

    CREATE TABLE IF NOT EXISTS daily_summaries (
        date TEXT PRIMARY KEY, -- YYYY-MM-DD, UTC
        snapshots INTEGER NOT NULL,
        avg_success_rate REAL NOT NULL,
        min_uptime_24h REAL NOT NULL,
        max_outages INTEGER NOT NULL
    );

    CREATE TABLE IF NOT EXISTS exports (
        id TEXT PRIMARY KEY,
        format TEXT NOT NULL,
        filename TEXT NOT NULL,
        path TEXT NOT NULL,
        location TEXT,
        size INTEGER NOT NULL,
        captured_at INTEGER NOT NULL
    );
    `

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	return nil
}
