// Package storage persists layouts for the remote layout store, keyed by
// user id.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/page-builder/backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no layout is stored for a user.
var ErrNotFound = errors.New("layout not found")

// Store defines the interface for layout storage.
type Store interface {
	Get(ctx context.Context, userID string) (*models.LayoutRecord, error)
	Put(ctx context.Context, userID string, layout models.Layout) (*models.LayoutRecord, error)
	List(ctx context.Context, limit int) ([]*models.LayoutInfo, error)
	Delete(ctx context.Context, userID string) error
	Close() error
}

// layoutNamespace derives stable file names from user ids.
var layoutNamespace = uuid.MustParse("6f1c2a8e-4d0b-4b7e-9a53-2f8d9c1e7b40")

const layoutExt = ".msgpack"

// LocalStore implements Store with one msgpack file per user.
type LocalStore struct {
	mu      sync.RWMutex
	dir     string
	records map[string]*models.LayoutInfo
	logger  *zap.Logger
}

// NewLocalStore creates a LocalStore and indexes any layouts already in dir.
func NewLocalStore(dir string, logger *zap.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating layout directory: %w", err)
	}

	s := &LocalStore{
		dir:     dir,
		records: make(map[string]*models.LayoutInfo),
		logger:  logger.Named("localstore"),
	}
	if err := s.index(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *LocalStore) index() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("reading layout directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), layoutExt) {
			continue
		}
		rec, err := readRecord(filepath.Join(s.dir, e.Name()))
		if err != nil {
			s.logger.Warn("skipping unreadable layout",
				zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		s.records[rec.UserID] = rec.Info()
	}
	return nil
}

func (s *LocalStore) path(userID string) string {
	return filepath.Join(s.dir, uuid.NewSHA1(layoutNamespace, []byte(userID)).String()+layoutExt)
}

// Get reads the stored layout for userID.
func (s *LocalStore) Get(_ context.Context, userID string) (*models.LayoutRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.records[userID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, userID)
	}
	return readRecord(s.path(userID))
}

// Put replaces the stored layout for userID.
func (s *LocalStore) Put(_ context.Context, userID string, layout models.Layout) (*models.LayoutRecord, error) {
	rec := &models.LayoutRecord{
		UserID:  userID,
		Layout:  layout,
		SavedAt: time.Now().UTC(),
	}
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding layout: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write then rename so a reader never sees a half-written file.
	path := s.path(userID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return nil, fmt.Errorf("writing layout: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("committing layout: %w", err)
	}

	s.records[userID] = rec.Info()
	return rec, nil
}

// List returns the most recently saved layouts first.
func (s *LocalStore) List(_ context.Context, limit int) ([]*models.LayoutInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.LayoutInfo, 0, len(s.records))
	for _, info := range s.records {
		cp := *info
		list = append(list, &cp)
	}
	sortBySavedAt(list)

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Delete removes the layout for userID.
func (s *LocalStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[userID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, userID)
	}
	if err := os.Remove(s.path(userID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting layout: %w", err)
	}
	delete(s.records, userID)
	return nil
}

// Close is a no-op for the file store.
func (s *LocalStore) Close() error { return nil }

func readRecord(path string) (*models.LayoutRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout: %w", err)
	}
	rec := &models.LayoutRecord{}
	if err := msgpack.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decoding layout: %w", err)
	}
	return rec, nil
}

func sortBySavedAt(list []*models.LayoutInfo) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].SavedAt.Equal(list[j].SavedAt) {
			return list[i].UserID < list[j].UserID
		}
		return list[i].SavedAt.After(list[j].SavedAt)
	})
}
