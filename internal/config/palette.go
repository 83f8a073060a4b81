package config

import (
	"fmt"
	"os"

	"github.com/page-builder/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// SectionSeed names one canvas section in the palette file.
type SectionSeed struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// PaletteFile is the optional YAML file that overrides the built-in
// palette and the default canvas sections.
type PaletteFile struct {
	Palette  []models.PaletteItem `yaml:"palette"`
	Sections []SectionSeed        `yaml:"sections"`
}

// LoadPalette reads the palette file at path. An empty path returns the
// built-in palette and sections.
func LoadPalette(path string) ([]models.PaletteItem, []models.Section, error) {
	if path == "" {
		return models.DefaultPalette(), models.DefaultSections(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading palette file: %w", err)
	}
	return ParsePalette(data)
}

// ParsePalette decodes palette YAML. Missing lists fall back to defaults.
func ParsePalette(data []byte) ([]models.PaletteItem, []models.Section, error) {
	var f PaletteFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("parsing palette file: %w", err)
	}

	palette := f.Palette
	if len(palette) == 0 {
		palette = models.DefaultPalette()
	}
	for i, item := range palette {
		if item.Type == "" {
			return nil, nil, fmt.Errorf("palette entry %d: missing type", i)
		}
		if item.Label == "" {
			palette[i].Label = string(item.Type)
		}
	}

	if len(f.Sections) == 0 {
		return palette, models.DefaultSections(), nil
	}
	seen := make(map[string]bool, len(f.Sections))
	sections := make([]models.Section, 0, len(f.Sections))
	for i, s := range f.Sections {
		if s.ID == "" {
			return nil, nil, fmt.Errorf("section %d: missing id", i)
		}
		if seen[s.ID] {
			return nil, nil, fmt.Errorf("section %d: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = true
		name := s.Name
		if name == "" {
			name = s.ID
		}
		sections = append(sections, models.Section{ID: s.ID, Name: name, ElementIDs: []string{}})
	}
	return palette, sections, nil
}
