package builder

import (
	"context"

	"github.com/page-builder/backend/internal/models"
	"github.com/page-builder/backend/internal/remote"
)

// App composes the palette with the ordered section containers and owns
// the startup load and the manual save for one user.
type App struct {
	store   *Store
	palette *Palette
	userID  string
}

// NewApp creates the shell. The store is constructed by the caller and
// shared with anything else that needs it.
func NewApp(store *Store, palette *Palette, userID string) *App {
	return &App{store: store, palette: palette, userID: userID}
}

// Store returns the layout store backing the app.
func (a *App) Store() *Store { return a.store }

// Palette returns the palette.
func (a *App) Palette() *Palette { return a.palette }

// UserID returns the user the layout is loaded and saved for.
func (a *App) UserID() string { return a.userID }

// Start fires the single startup load.
func (a *App) Start(ctx context.Context) *remote.Task[*models.LayoutDocument] {
	return a.store.Load(ctx, a.userID)
}

// Save sends the current layout. Each call is independent.
func (a *App) Save(ctx context.Context) *remote.Task[*remote.Ack] {
	return a.store.Save(ctx, a.userID)
}

// Section returns the container for id.
func (a *App) Section(id string) (*Section, error) {
	if _, err := a.store.section(id); err != nil {
		return nil, err
	}
	return NewSection(a.store, id), nil
}

// SectionView is one rendered section of the canvas.
type SectionView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Items []View `json:"items"`
	Hint  string `json:"hint,omitempty"`
}

// Canvas renders every section in order from one consistent snapshot.
func (a *App) Canvas() []SectionView {
	l := a.store.Layout()
	out := make([]SectionView, 0, len(l.Sections))
	for _, sec := range l.Sections {
		items := resolve(sec, l.Elements)
		sv := SectionView{ID: sec.ID, Name: sec.Name, Items: make([]View, 0, len(items))}
		for _, el := range items {
			sv.Items = append(sv.Items, Render(el))
		}
		if len(sv.Items) == 0 {
			sv.Hint = EmptySectionHint
		}
		out = append(out, sv)
	}
	return out
}

// RenderElement renders the element with id.
func (a *App) RenderElement(id string) (View, error) {
	el, err := a.store.element(id)
	if err != nil {
		return nil, err
	}
	return Render(el), nil
}

// EditText applies a text edit to the element with id and returns its view.
func (a *App) EditText(id, content string) (View, error) {
	ed, err := NewTextEditor(a.store, id)
	if err != nil {
		return nil, err
	}
	ed.Focus()
	if err := ed.Input(content); err != nil {
		return nil, err
	}
	return a.RenderElement(id)
}
