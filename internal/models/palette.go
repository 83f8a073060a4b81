package models

// PaletteItem is one creatable element kind offered by the palette.
type PaletteItem struct {
	Type  ElementType `json:"type" yaml:"type"`
	Label string      `json:"label" yaml:"label"`
}

// DefaultPalette returns the built-in creatable kinds.
func DefaultPalette() []PaletteItem {
	return []PaletteItem{
		{Type: ElementTypeText, Label: "Text"},
		{Type: ElementTypeImage, Label: "Image"},
		{Type: ElementTypeButton, Label: "Button"},
	}
}
