package storage

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// Open builds the backend named by kind under dataDir.
func Open(kind, dataDir string, logger *zap.Logger) (Store, error) {
	var (
		store Store
		err   error
	)
	switch kind {
	case "", "local":
		store, err = NewLocalStore(filepath.Join(dataDir, "layouts"), logger)
	case "duckdb":
		store, err = NewDuckStore(filepath.Join(dataDir, "layouts.duckdb"))
	case "sqlite":
		store, err = NewSQLiteStore(filepath.Join(dataDir, "layouts.db"))
	case "memory":
		store = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

var (
	_ Store = (*LocalStore)(nil)
	_ Store = (*DuckStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
