// mock_storage.go - Mock storage implementation for testing
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/page-builder/backend/internal/models"
	"github.com/page-builder/backend/internal/storage"
)

// ErrInjected is returned by mocks configured to fail.
var ErrInjected = errors.New("injected failure")

// MockStorage implements storage.Store for testing. It wraps a
// MemoryStore and can be told to fail individual operations.
type MockStorage struct {
	*storage.MemoryStore

	mu       sync.Mutex
	failGet  bool
	failPut  bool
	putCalls int
}

// NewMockStorage creates an empty mock storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{MemoryStore: storage.NewMemoryStore()}
}

// FailGet makes every Get return ErrInjected.
func (m *MockStorage) FailGet(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failGet = fail
}

// FailPut makes every Put return ErrInjected.
func (m *MockStorage) FailPut(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPut = fail
}

// PutCalls returns how many times Put was called.
func (m *MockStorage) PutCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.putCalls
}

func (m *MockStorage) Get(ctx context.Context, userID string) (*models.LayoutRecord, error) {
	m.mu.Lock()
	fail := m.failGet
	m.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}
	return m.MemoryStore.Get(ctx, userID)
}

func (m *MockStorage) Put(ctx context.Context, userID string, layout models.Layout) (*models.LayoutRecord, error) {
	m.mu.Lock()
	m.putCalls++
	fail := m.failPut
	m.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}
	return m.MemoryStore.Put(ctx, userID, layout)
}

// Seed stores a layout directly.
func (m *MockStorage) Seed(userID string, layout models.Layout) {
	_, _ = m.MemoryStore.Put(context.Background(), userID, layout)
}

// Ensure MockStorage implements storage.Store
var _ storage.Store = (*MockStorage)(nil)
