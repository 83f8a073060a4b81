package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/page-builder/backend/internal/models"
)

// MemoryStore keeps layouts in process memory only.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.LayoutRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*models.LayoutRecord)}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (*models.LayoutRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, userID)
	}
	return &models.LayoutRecord{UserID: rec.UserID, Layout: rec.Layout.Clone(), SavedAt: rec.SavedAt}, nil
}

func (s *MemoryStore) Put(_ context.Context, userID string, layout models.Layout) (*models.LayoutRecord, error) {
	rec := &models.LayoutRecord{UserID: userID, Layout: layout.Clone(), SavedAt: time.Now().UTC()}
	s.mu.Lock()
	s.records[userID] = rec
	s.mu.Unlock()
	return &models.LayoutRecord{UserID: userID, Layout: layout.Clone(), SavedAt: rec.SavedAt}, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]*models.LayoutInfo, error) {
	s.mu.RLock()
	list := make([]*models.LayoutInfo, 0, len(s.records))
	for _, rec := range s.records {
		list = append(list, rec.Info())
	}
	s.mu.RUnlock()

	sortBySavedAt(list)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[userID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, userID)
	}
	delete(s.records, userID)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
