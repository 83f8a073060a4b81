// fake_remote.go - In-process stand-in for the remote layout store
package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/page-builder/backend/internal/models"
	"github.com/page-builder/backend/internal/remote"
)

// FakeRemote is an in-memory remote layout store with controllable
// failures and an optional gate to hold loads until released.
type FakeRemote struct {
	mu        sync.Mutex
	docs      map[string]models.LayoutDocument
	loadErr   error
	saveErr   error
	loadGate  chan struct{}
	loads     int
	saves     int
	lastSaved *models.Layout
}

// NewFakeRemote creates an empty fake.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{docs: make(map[string]models.LayoutDocument)}
}

// Put stores a document for userID.
func (f *FakeRemote) Put(userID string, doc models.LayoutDocument) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[userID] = doc
}

// FailLoad makes Load return err (nil clears it).
func (f *FakeRemote) FailLoad(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadErr = err
}

// FailSave makes Save return err (nil clears it).
func (f *FakeRemote) FailSave(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveErr = err
}

// HoldLoads blocks Load calls until the returned func is called.
func (f *FakeRemote) HoldLoads() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.loadGate = gate
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// Calls returns the number of Load and Save calls seen.
func (f *FakeRemote) Calls() (loads, saves int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads, f.saves
}

// LastSaved returns the most recently saved layout.
func (f *FakeRemote) LastSaved() *models.Layout {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSaved
}

func (f *FakeRemote) Load(ctx context.Context, userID string) (*models.LayoutDocument, error) {
	f.mu.Lock()
	f.loads++
	gate := f.loadGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	doc, ok := f.docs[userID]
	if !ok {
		return &models.LayoutDocument{}, nil
	}
	cp := models.LayoutDocument{}
	if doc.Sections != nil {
		cp.Sections = models.CloneSections(doc.Sections)
	}
	if doc.Elements != nil {
		cp.Elements = doc.Elements.Clone()
	}
	return &cp, nil
}

func (f *FakeRemote) Save(_ context.Context, userID string, layout models.Layout) (*remote.Ack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	saved := layout.Clone()
	f.lastSaved = &saved
	f.docs[userID] = models.LayoutDocument{Sections: saved.Sections, Elements: saved.Elements}

	body, _ := json.Marshal(map[string]any{"userId": userID, "ok": true})
	return &remote.Ack{StatusCode: http.StatusOK, Body: body}, nil
}
