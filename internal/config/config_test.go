package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/page-builder/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PageBuilder.config")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, "123", cfg.Builder.UserID)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.GetDataDir())

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Server, again.Server)
	assert.Equal(t, cfg.Builder, again.Builder)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PageBuilder.config")
	require.NoError(t, os.WriteFile(path, []byte(`<PageBuilder>
  <Server><Port>9999</Port></Server>
  <Storage><Backend>sqlite</Backend></Storage>
  <Builder><PaletteFile>palette.yaml</PaletteFile></Builder>
</PageBuilder>`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "local-wins", cfg.Builder.LoadPolicy)
	assert.Equal(t, filepath.Join(dir, "palette.yaml"), cfg.Builder.PaletteFile)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "7001")
	t.Setenv("LAYOUT_REMOTE_URL", "http://store:8090")
	t.Setenv("LAYOUT_USER_ID", "abc")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "PageBuilder.config"))
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Server.Port)
	assert.Equal(t, "http://store:8090", cfg.Builder.RemoteURL)
	assert.Equal(t, "abc", cfg.Builder.UserID)
	assert.Equal(t, "collector:4318", cfg.Advanced.OTLPEndpoint)
	assert.Equal(t, "0.0.0.0:7001", cfg.GetServerAddr())
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PageBuilder.config")
	require.NoError(t, os.WriteFile(path, []byte("<PageBuilder><Server>"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestParsePalette(t *testing.T) {
	palette, sections, err := ParsePalette([]byte(`
palette:
  - type: text
    label: Paragraph
  - type: hero
sections:
  - id: sec-top
    name: Top
  - id: sec-body
`))
	require.NoError(t, err)
	assert.Equal(t, []models.PaletteItem{
		{Type: models.ElementTypeText, Label: "Paragraph"},
		{Type: "hero", Label: "hero"},
	}, palette)
	assert.Equal(t, []models.Section{
		{ID: "sec-top", Name: "Top", ElementIDs: []string{}},
		{ID: "sec-body", Name: "sec-body", ElementIDs: []string{}},
	}, sections)
}

func TestParsePalette_Defaults(t *testing.T) {
	palette, sections, err := ParsePalette([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPalette(), palette)
	assert.Equal(t, models.DefaultSections(), sections)

	palette, sections, err = LoadPalette("")
	require.NoError(t, err)
	assert.Len(t, palette, 3)
	assert.Len(t, sections, 3)
}

func TestParsePalette_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":          "palette: [",
		"missing type":      "palette:\n  - label: X\n",
		"missing id":        "sections:\n  - name: X\n",
		"duplicate section": "sections:\n  - id: a\n  - id: a\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParsePalette([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadPalette_MissingFile(t *testing.T) {
	_, _, err := LoadPalette(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	got, err := ResolvePath("/etc/builder.config")
	require.NoError(t, err)
	assert.Equal(t, "/etc/builder.config", got)

	exe, err := os.Executable()
	require.NoError(t, err)
	got, err = ResolvePath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(exe), ConfigFileName), got)
}
