// Package trackdb persists tracking sessions to SQLite: per-track
// snapshots, per-frame observations, and the minimal restore records
// needed to resume a stream under prior identities.
package trackdb

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle for tracking persistence.
type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the tracking database at path.
// Use ":memory:" for an ephemeral database in tests.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open tracking db: %w", err)
	}

	// WAL keeps readers from blocking the per-frame writer; foreign
	// keys guard session/track/observation integrity.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}

	return &DB{db}, nil
}
