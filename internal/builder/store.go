// Package builder holds the page builder's in-memory layout model and the
// drag, drop, reorder and edit rules that mutate it.
package builder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/page-builder/backend/internal/models"
	"github.com/page-builder/backend/internal/remote"
	"go.uber.org/zap"
)

var (
	ErrSectionNotFound = errors.New("section not found")
	ErrElementNotFound = errors.New("element not found")
	// ErrWrongElementType is returned when an edit does not apply to the
	// element's type.
	ErrWrongElementType = errors.New("wrong element type")
)

// LoadPolicy decides what happens when a load result arrives after the
// user has already changed the layout.
type LoadPolicy string

const (
	// LoadWins overwrites local edits with the late load result.
	LoadWins LoadPolicy = "load-wins"
	// LocalWins discards a load result once any local mutation happened.
	LocalWins LoadPolicy = "local-wins"
)

// ParseLoadPolicy maps a config value to a policy, defaulting to LocalWins.
func ParseLoadPolicy(s string) LoadPolicy {
	if LoadPolicy(s) == LoadWins {
		return LoadWins
	}
	return LocalWins
}

// Remote is the layout store collaborator reached by user id.
type Remote interface {
	Load(ctx context.Context, userID string) (*models.LayoutDocument, error)
	Save(ctx context.Context, userID string, layout models.Layout) (*remote.Ack, error)
}

// Store owns the layout. Callers never get a writable alias to the live
// collections: reads return copies and every write replaces a collection
// wholesale through a transform.
type Store struct {
	mu       sync.RWMutex
	sections []models.Section
	elements models.ElementMap
	mutated  bool
	version  uint64

	remote Remote
	policy LoadPolicy
	logger *zap.Logger

	obsMu     sync.Mutex
	nextObsID int
	observers map[int]func(models.Layout)

	// notifyMu serializes delivery; notified is the last version delivered.
	notifyMu sync.Mutex
	notified uint64
}

// NewStore creates a store seeded with sections and an empty element map.
func NewStore(r Remote, seed []models.Section, policy LoadPolicy, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if seed == nil {
		seed = models.DefaultSections()
	}
	return &Store{
		sections:  models.CloneSections(seed),
		elements:  models.ElementMap{},
		remote:    r,
		policy:    policy,
		logger:    logger.Named("layout"),
		observers: make(map[int]func(models.Layout)),
	}
}

// Layout returns a copy of the current state.
func (s *Store) Layout() models.Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Layout{
		Sections: models.CloneSections(s.sections),
		Elements: s.elements.Clone(),
	}
}

// Version increases by one on every committed change.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Mutated reports whether a local mutation has been committed.
func (s *Store) Mutated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mutated
}

// ReplaceSections replaces the section list with fn's result. fn receives
// a copy it may modify freely.
func (s *Store) ReplaceSections(fn func([]models.Section) []models.Section) {
	s.update(func(l *models.Layout) bool {
		l.Sections = fn(l.Sections)
		return true
	})
}

// ReplaceElements replaces the element map with fn's result. fn receives a
// copy it may modify freely.
func (s *Store) ReplaceElements(fn func(models.ElementMap) models.ElementMap) {
	s.update(func(l *models.Layout) bool {
		l.Elements = fn(l.Elements)
		return true
	})
}

// update applies fn to a copy of both halves and commits it as one change
// when fn reports true. Nothing is committed or announced otherwise.
func (s *Store) update(fn func(*models.Layout) bool) bool {
	s.mu.Lock()
	next := models.Layout{
		Sections: models.CloneSections(s.sections),
		Elements: s.elements.Clone(),
	}
	if !fn(&next) {
		s.mu.Unlock()
		return false
	}
	if next.Elements == nil {
		next.Elements = models.ElementMap{}
	}
	s.sections = next.Sections
	s.elements = next.Elements
	s.mutated = true
	s.version++
	version := s.version
	snapshot := next.Clone()
	s.mu.Unlock()

	s.notify(version, snapshot)
	return true
}

// Load fetches the layout for userID and applies it on completion. Only
// the fields present in the response replace local state. A failure
// leaves state unchanged and is logged as a warning.
func (s *Store) Load(ctx context.Context, userID string) *remote.Task[*models.LayoutDocument] {
	return remote.Go(ctx, func(ctx context.Context) (*models.LayoutDocument, error) {
		return s.remote.Load(ctx, userID)
	}, func(r remote.Result[*models.LayoutDocument]) {
		if r.Err != nil {
			s.logger.Warn("could not load layout, keeping current state",
				zap.String("userId", userID), zap.Error(r.Err))
			return
		}
		s.applyLoaded(userID, r.Value)
	})
}

func (s *Store) applyLoaded(userID string, doc *models.LayoutDocument) {
	if doc == nil || (doc.Sections == nil && doc.Elements == nil) {
		s.logger.Info("no stored layout, keeping current state", zap.String("userId", userID))
		return
	}

	s.mu.Lock()
	if s.mutated && s.policy != LoadWins {
		s.mu.Unlock()
		s.logger.Warn("discarding late layout load, local edits already made",
			zap.String("userId", userID))
		return
	}
	if doc.Sections != nil {
		s.sections = models.CloneSections(doc.Sections)
	}
	if doc.Elements != nil {
		s.elements = doc.Elements.Clone()
	}
	s.version++
	version := s.version
	snapshot := models.Layout{
		Sections: models.CloneSections(s.sections),
		Elements: s.elements.Clone(),
	}
	s.mu.Unlock()

	if dangling := snapshot.DanglingIDs(); len(dangling) > 0 {
		s.logger.Warn("loaded layout references missing elements",
			zap.String("userId", userID), zap.Strings("ids", dangling))
	}
	s.logger.Info("layout loaded",
		zap.String("userId", userID),
		zap.Int("sections", len(snapshot.Sections)),
		zap.Int("elements", len(snapshot.Elements)))
	s.notify(version, snapshot)
}

// Save sends the current layout for userID. The outcome is logged and
// returned through the task; local state is never rolled back. Concurrent
// saves are independent of each other.
func (s *Store) Save(ctx context.Context, userID string) *remote.Task[*remote.Ack] {
	layout := s.Layout()
	return remote.Go(ctx, func(ctx context.Context) (*remote.Ack, error) {
		return s.remote.Save(ctx, userID, layout)
	}, func(r remote.Result[*remote.Ack]) {
		if r.Err != nil {
			s.logger.Error("save failed", zap.String("userId", userID), zap.Error(r.Err))
			return
		}
		s.logger.Info("layout saved",
			zap.String("userId", userID),
			zap.Int("status", r.Value.StatusCode),
			zap.ByteString("ack", r.Value.Body))
	})
}

// Subscribe registers fn to receive a copy of the layout after every
// committed change. Deliveries never go backwards: a snapshot older than
// one already delivered is dropped, so the last call always carries the
// current layout. fn must not write to the store. The returned func
// removes the subscription.
func (s *Store) Subscribe(fn func(models.Layout)) func() {
	s.obsMu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *Store) notify(version uint64, l models.Layout) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if version <= s.notified {
		return
	}
	s.notified = version

	s.obsMu.Lock()
	fns := make([]func(models.Layout), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.Unlock()

	for _, fn := range fns {
		fn(l)
	}
}

// section returns a copy of the section with id.
func (s *Store) section(id string) (models.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sec := range s.sections {
		if sec.ID == id {
			return sec.Clone(), nil
		}
	}
	return models.Section{}, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
}

// element returns the element with id.
func (s *Store) element(id string) (models.Element, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	el, ok := s.elements[id]
	if !ok {
		return models.Element{}, fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	return el, nil
}
