package builder

import "github.com/page-builder/backend/internal/models"

// Palette is the fixed catalog of creatable element kinds.
type Palette struct {
	items []models.PaletteItem
}

// NewPalette creates a palette; nil items fall back to the built-in list.
func NewPalette(items []models.PaletteItem) *Palette {
	if len(items) == 0 {
		items = models.DefaultPalette()
	}
	cp := make([]models.PaletteItem, len(items))
	copy(cp, items)
	return &Palette{items: cp}
}

// Items returns the palette entries in display order.
func (p *Palette) Items() []models.PaletteItem {
	out := make([]models.PaletteItem, len(p.items))
	copy(out, p.items)
	return out
}

// DragStart returns the creation payload for t. It carries no destination;
// whichever section receives the drop decides where the element goes.
func (p *Palette) DragStart(t models.ElementType) ([]byte, error) {
	return EncodeDropPayload(t)
}
