package builder

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/page-builder/backend/internal/models"
)

// EmptySectionHint is shown for a section with nothing to render.
const EmptySectionHint = "Drop elements here…"

// Section is the container for one named region of the canvas. It holds no
// state of its own; everything lives in the Store.
type Section struct {
	id    string
	store *Store
	newID func() string
}

// NewSection binds a container to the section with id.
func NewSection(store *Store, id string) *Section {
	return &Section{
		id:    id,
		store: store,
		newID: func() string { return uuid.New().String() },
	}
}

// ID returns the section id.
func (c *Section) ID() string { return c.id }

// OnExternalDrop creates a new element from a palette payload and appends
// it to this section. The element is written to the map and its id to the
// section in one store update, so no section ever sees the id first.
func (c *Section) OnExternalDrop(raw []byte) (models.Element, error) {
	payload, err := DecodeDropPayload(raw)
	if err != nil {
		return models.Element{}, err
	}

	el := models.Element{ID: c.newID(), Type: payload.Type}
	found := false
	c.store.update(func(l *models.Layout) bool {
		for i := range l.Sections {
			if l.Sections[i].ID != c.id {
				continue
			}
			found = true
			l.Elements[el.ID] = el
			l.Sections[i].ElementIDs = append(l.Sections[i].ElementIDs, el.ID)
			return true
		}
		return false
	})
	if !found {
		return models.Element{}, fmt.Errorf("%w: %s", ErrSectionNotFound, c.id)
	}
	return el, nil
}

// OnReorder moves activeID to overID's position. It is a no-op, reporting
// false, when either id is absent or both sit at the same position.
func (c *Section) OnReorder(activeID, overID string) (bool, error) {
	found := false
	moved := c.store.update(func(l *models.Layout) bool {
		for i := range l.Sections {
			if l.Sections[i].ID != c.id {
				continue
			}
			found = true
			ids := l.Sections[i].ElementIDs
			from, to := indexOf(ids, activeID), indexOf(ids, overID)
			if from < 0 || to < 0 || from == to {
				return false
			}
			l.Sections[i].ElementIDs = moveItem(ids, from, to)
			return true
		}
		return false
	})
	if !found {
		return false, fmt.Errorf("%w: %s", ErrSectionNotFound, c.id)
	}
	return moved, nil
}

// Items resolves the section's ids against the element map in order.
// Ids with no element are skipped.
func (c *Section) Items() ([]models.Element, error) {
	l := c.store.Layout()
	for _, sec := range l.Sections {
		if sec.ID == c.id {
			return resolve(sec, l.Elements), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, c.id)
}

func resolve(sec models.Section, elements models.ElementMap) []models.Element {
	items := make([]models.Element, 0, len(sec.ElementIDs))
	for _, id := range sec.ElementIDs {
		if el, ok := elements[id]; ok {
			items = append(items, el)
		}
	}
	return items
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// moveItem returns a new slice with the entry at from relocated to to and
// every other entry kept in relative order.
func moveItem(ids []string, from, to int) []string {
	out := make([]string, 0, len(ids))
	out = append(out, ids[:from]...)
	out = append(out, ids[from+1:]...)

	moved := ids[from]
	out = append(out, "")
	copy(out[to+1:], out[to:])
	out[to] = moved
	return out
}
