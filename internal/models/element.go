// Package models contains domain types for the page builder.
package models

// ElementType names the kind of a placeable element.
type ElementType string

const (
	ElementTypeText   ElementType = "text"
	ElementTypeImage  ElementType = "image"
	ElementTypeButton ElementType = "button"
)

// Known reports whether t is one of the creatable element kinds.
func (t ElementType) Known() bool {
	switch t {
	case ElementTypeText, ElementTypeImage, ElementTypeButton:
		return true
	}
	return false
}

// Element is one placeable content unit. Fields other than ID and Type are
// payload specific to the type and are omitted from the wire when unset.
type Element struct {
	ID      string      `json:"id" msgpack:"id"`
	Type    ElementType `json:"type" msgpack:"type"`
	Content string      `json:"content,omitempty" msgpack:"content,omitempty"` // text
	Src     string      `json:"src,omitempty" msgpack:"src,omitempty"`         // image, usually a data URL
	Label   string      `json:"label,omitempty" msgpack:"label,omitempty"`     // button
	Size    float64     `json:"size,omitempty" msgpack:"size,omitempty"`       // font size
	Color   string      `json:"color,omitempty" msgpack:"color,omitempty"`
}

// ElementMap is the flat id -> element map. It is the sole owner of element
// values; sections only hold ids into it.
type ElementMap map[string]Element

// Clone returns a shallow copy of the map. Element is a value type so the
// copy shares nothing mutable with m.
func (m ElementMap) Clone() ElementMap {
	out := make(ElementMap, len(m))
	for id, el := range m {
		out[id] = el
	}
	return out
}
