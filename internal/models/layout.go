package models

import "time"

// Section is a named, ordered placement region. ElementIDs is the only
// ordering authority for the elements it shows.
type Section struct {
	ID         string   `json:"id" msgpack:"id"`
	Name       string   `json:"name" msgpack:"name"`
	ElementIDs []string `json:"elementIds" msgpack:"elementIds"`
}

// Clone returns a copy of s with its own ElementIDs backing array.
func (s Section) Clone() Section {
	ids := make([]string, len(s.ElementIDs))
	copy(ids, s.ElementIDs)
	s.ElementIDs = ids
	return s
}

// CloneSections deep-copies a section list.
func CloneSections(sections []Section) []Section {
	out := make([]Section, len(sections))
	for i, s := range sections {
		out[i] = s.Clone()
	}
	return out
}

// Layout is the full working and persisted state: sections plus elements.
type Layout struct {
	Sections []Section  `json:"sections" msgpack:"sections"`
	Elements ElementMap `json:"elements" msgpack:"elements"`
}

// Clone deep-copies the layout.
func (l Layout) Clone() Layout {
	return Layout{
		Sections: CloneSections(l.Sections),
		Elements: l.Elements.Clone(),
	}
}

// DanglingIDs returns element ids referenced by a section but missing from
// the element map, in section order.
func (l Layout) DanglingIDs() []string {
	var missing []string
	for _, s := range l.Sections {
		for _, id := range s.ElementIDs {
			if _, ok := l.Elements[id]; !ok {
				missing = append(missing, id)
			}
		}
	}
	return missing
}

// LayoutDocument is the remote store's wire document. Both fields are
// optional: an absent field means "leave the receiver's half untouched".
type LayoutDocument struct {
	Sections []Section  `json:"sections,omitempty" msgpack:"sections,omitempty"`
	Elements ElementMap `json:"elements,omitempty" msgpack:"elements,omitempty"`
}

// LayoutRecord is a stored layout with its owner and save time.
type LayoutRecord struct {
	UserID  string    `json:"userId" msgpack:"userId"`
	Layout  Layout    `json:"layout" msgpack:"layout"`
	SavedAt time.Time `json:"savedAt" msgpack:"savedAt"`
}

// LayoutInfo is listing metadata about a stored layout.
type LayoutInfo struct {
	UserID       string    `json:"userId"`
	SectionCount int       `json:"sections"`
	ElementCount int       `json:"elements"`
	SavedAt      time.Time `json:"savedAt"`
}

// Info summarizes the record for listings and acknowledgements.
func (r *LayoutRecord) Info() *LayoutInfo {
	return &LayoutInfo{
		UserID:       r.UserID,
		SectionCount: len(r.Layout.Sections),
		ElementCount: len(r.Layout.Elements),
		SavedAt:      r.SavedAt,
	}
}

// DefaultSections returns the seed canvas: three empty sections.
func DefaultSections() []Section {
	return []Section{
		{ID: "sec-header", Name: "Header", ElementIDs: []string{}},
		{ID: "sec-main", Name: "Main", ElementIDs: []string{}},
		{ID: "sec-footer", Name: "Footer", ElementIDs: []string{}},
	}
}

// DefaultLayout returns the default sections with an empty element map.
func DefaultLayout() Layout {
	return Layout{Sections: DefaultSections(), Elements: ElementMap{}}
}
