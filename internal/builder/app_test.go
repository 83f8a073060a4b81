package builder

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/page-builder/backend/internal/models"
	"github.com/page-builder/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) (*App, *testutil.FakeRemote) {
	t.Helper()
	fake := testutil.NewFakeRemote()
	store := NewStore(fake, nil, LocalWins, zap.NewNop())
	return NewApp(store, NewPalette(nil), "123"), fake
}

func TestApp_DropEditSaveReload(t *testing.T) {
	app, fake := newTestApp(t)

	_, err := app.Start(context.Background()).Wait(waitCtx(t))
	require.NoError(t, err)

	payload, err := app.Palette().DragStart(models.ElementTypeText)
	require.NoError(t, err)

	main, err := app.Section("sec-main")
	require.NoError(t, err)
	el, err := main.OnExternalDrop(payload)
	require.NoError(t, err)

	l := app.Store().Layout()
	require.Len(t, l.Sections[1].ElementIDs, 1)
	assert.Equal(t, models.Element{ID: el.ID, Type: models.ElementTypeText}, l.Elements[el.ID])

	view, err := app.EditText(el.ID, "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello", view.(TextView).Text)
	assert.Equal(t, "Hello", app.Store().Layout().Elements[el.ID].Content)

	ack, err := app.Save(context.Background()).Wait(waitCtx(t))
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":"123","ok":true}`, string(ack.Body))

	reloaded := NewApp(NewStore(fake, nil, LocalWins, zap.NewNop()), NewPalette(nil), "123")
	_, err = reloaded.Start(context.Background()).Wait(waitCtx(t))
	require.NoError(t, err)

	rl := reloaded.Store().Layout()
	require.Len(t, rl.Sections[1].ElementIDs, 1)
	assert.Equal(t, "Hello", rl.Elements[rl.Sections[1].ElementIDs[0]].Content)
}

func TestApp_Canvas(t *testing.T) {
	app, _ := newTestApp(t)
	main, err := app.Section("sec-main")
	require.NoError(t, err)
	_, err = main.OnExternalDrop([]byte(`{"type":"button"}`))
	require.NoError(t, err)

	canvas := app.Canvas()
	require.Len(t, canvas, 3)

	assert.Equal(t, "Header", canvas[0].Name)
	assert.Empty(t, canvas[0].Items)
	assert.Equal(t, EmptySectionHint, canvas[0].Hint)

	require.Len(t, canvas[1].Items, 1)
	assert.Empty(t, canvas[1].Hint)
	assert.IsType(t, ButtonView{}, canvas[1].Items[0])

	raw, err := json.Marshal(canvas[1])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"kind":"button"`)
	assert.Contains(t, string(raw), `"label":"Click"`)
}

func TestApp_UnknownIDs(t *testing.T) {
	app, _ := newTestApp(t)

	_, err := app.Section("sec-nope")
	assert.ErrorIs(t, err, ErrSectionNotFound)

	_, err = app.RenderElement("nope")
	assert.ErrorIs(t, err, ErrElementNotFound)

	_, err = app.EditText("nope", "x")
	assert.ErrorIs(t, err, ErrElementNotFound)
}

func TestPalette(t *testing.T) {
	p := NewPalette(nil)
	items := p.Items()
	require.Len(t, items, 3)
	assert.Equal(t, models.PaletteItem{Type: models.ElementTypeText, Label: "Text"}, items[0])

	items[0].Label = "changed"
	assert.Equal(t, "Text", p.Items()[0].Label)

	custom := NewPalette([]models.PaletteItem{{Type: "hero", Label: "Hero"}})
	assert.Len(t, custom.Items(), 1)

	payload, err := p.DragStart(models.ElementTypeImage)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"image"}`, string(payload))
}

func TestDecodeDropPayload(t *testing.T) {
	p, err := DecodeDropPayload([]byte("  {\"type\":\"button\"}\n"))
	require.NoError(t, err)
	assert.Equal(t, models.ElementTypeButton, p.Type)

	_, err = DecodeDropPayload([]byte(`{"activeId":"a","overId":"b"}`))
	assert.ErrorIs(t, err, ErrMalformedPayload, "a reorder shape is not a creation payload")
}
