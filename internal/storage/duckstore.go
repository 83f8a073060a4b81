package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marcboeker/go-duckdb"
)

var duckDialect = dialect{
	name: "duckdb",
	schema: `
		CREATE TABLE IF NOT EXISTS layouts (
			user_id       VARCHAR PRIMARY KEY,
			document      VARCHAR NOT NULL,
			section_count INTEGER NOT NULL,
			element_count INTEGER NOT NULL,
			saved_at      BIGINT NOT NULL
		)`,
	upsert: `INSERT OR REPLACE INTO layouts (user_id, document, section_count, element_count, saved_at)
		VALUES (?, ?, ?, ?, ?)`,
}

// DuckStore keeps layouts in a DuckDB database file.
type DuckStore struct {
	*sqlStore
	dbPath string
}

// NewDuckStore opens (or creates) the DuckDB file at dbPath.
func NewDuckStore(dbPath string) (*DuckStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return fmt.Errorf("%s: %w", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	store, err := newSQLStore(db, duckDialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &DuckStore{sqlStore: store, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *DuckStore) Path() string { return s.dbPath }
