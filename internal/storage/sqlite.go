package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: `
		CREATE TABLE IF NOT EXISTS layouts (
			user_id       TEXT PRIMARY KEY,
			document      TEXT NOT NULL,
			section_count INTEGER NOT NULL,
			element_count INTEGER NOT NULL,
			saved_at      INTEGER NOT NULL
		)`,
	upsert: `INSERT INTO layouts (user_id, document, section_count, element_count, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			document = excluded.document,
			section_count = excluded.section_count,
			element_count = excluded.element_count,
			saved_at = excluded.saved_at`,
}

// SQLiteStore keeps layouts in a SQLite database file.
type SQLiteStore struct {
	*sqlStore
}

// NewSQLiteStore opens (or creates) the SQLite file at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	store, err := newSQLStore(conn, sqliteDialect)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &SQLiteStore{sqlStore: store}, nil
}
