package builder

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/page-builder/backend/internal/models"
)

// Render defaults for element payload fields.
const (
	TextPlaceholder  = "Editable text"
	DefaultTextSize  = 18
	DefaultTextColor = "#111"
	ImagePlaceholder = "https://picsum.photos/300"
	DefaultLabel     = "Click"
)

// View is the presentation of one element. The set of implementations is
// closed: TextView, ImageView, ButtonView and UnknownView.
type View interface {
	ElementID() string
	view()
}

type TextView struct {
	Kind  string  `json:"kind"`
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Size  float64 `json:"size"`
	Color string  `json:"color"`
}

type ImageView struct {
	Kind        string `json:"kind"`
	ID          string `json:"id"`
	Src         string `json:"src"`
	Placeholder bool   `json:"placeholder"`
}

type ButtonView struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	Label string `json:"label"`
}

// UnknownView is the terminal fallback for a type the builder does not know.
type UnknownView struct {
	Kind    string             `json:"kind"`
	ID      string             `json:"id"`
	Type    models.ElementType `json:"type"`
	Message string             `json:"message"`
}

func (v TextView) ElementID() string    { return v.ID }
func (v ImageView) ElementID() string   { return v.ID }
func (v ButtonView) ElementID() string  { return v.ID }
func (v UnknownView) ElementID() string { return v.ID }

func (TextView) view()    {}
func (ImageView) view()   {}
func (ButtonView) view()  {}
func (UnknownView) view() {}

// Render maps an element to its view.
func Render(el models.Element) View {
	switch el.Type {
	case models.ElementTypeText:
		v := TextView{Kind: "text", ID: el.ID, Text: el.Content, Size: el.Size, Color: el.Color}
		if v.Text == "" {
			v.Text = TextPlaceholder
		}
		if v.Size == 0 {
			v.Size = DefaultTextSize
		}
		if v.Color == "" {
			v.Color = DefaultTextColor
		}
		return v
	case models.ElementTypeImage:
		if el.Src == "" {
			return ImageView{Kind: "image", ID: el.ID, Src: ImagePlaceholder, Placeholder: true}
		}
		return ImageView{Kind: "image", ID: el.ID, Src: el.Src}
	case models.ElementTypeButton:
		label := el.Label
		if label == "" {
			label = DefaultLabel
		}
		return ButtonView{Kind: "button", ID: el.ID, Label: label}
	default:
		return UnknownView{Kind: "unknown", ID: el.ID, Type: el.Type, Message: "Unknown element"}
	}
}

// TextEditor edits a text element. It keeps a local echo of the value so
// callers need not re-read the store per keystroke, but every input is
// forwarded to the store, which stays the source of truth.
type TextEditor struct {
	store *Store
	id    string
	echo  string
}

// NewTextEditor opens an editor for the text element with id.
func NewTextEditor(store *Store, id string) (*TextEditor, error) {
	el, err := store.element(id)
	if err != nil {
		return nil, err
	}
	if el.Type != models.ElementTypeText {
		return nil, fmt.Errorf("%w: %s is %q, not text", ErrWrongElementType, id, el.Type)
	}
	echo := el.Content
	if echo == "" {
		echo = TextPlaceholder
	}
	return &TextEditor{store: store, id: id, echo: echo}, nil
}

// Value returns the local echo.
func (e *TextEditor) Value() string { return e.echo }

// Focus clears the placeholder so the first keystroke replaces it.
func (e *TextEditor) Focus() {
	if e.echo == TextPlaceholder {
		e.echo = ""
	}
}

// Input pushes the full current text as the element's content.
func (e *TextEditor) Input(text string) error {
	e.echo = text
	return setField(e.store, e.id, models.ElementTypeText, func(el *models.Element) { el.Content = text })
}

// Sync reconciles the echo with the store's value.
func (e *TextEditor) Sync() error {
	el, err := e.store.element(e.id)
	if err != nil {
		return err
	}
	e.echo = el.Content
	if e.echo == "" {
		e.echo = TextPlaceholder
	}
	return nil
}

// SelectImage reads a selected file and stores it inline on the element as
// a data URL. There is no size limit and no compression. An empty
// mimeType is sniffed from the content.
func SelectImage(store *Store, id string, r io.Reader, mimeType string) (string, error) {
	el, err := store.element(id)
	if err != nil {
		return "", err
	}
	if el.Type != models.ElementTypeImage {
		return "", fmt.Errorf("%w: %s is %q, not image", ErrWrongElementType, id, el.Type)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	src := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
	if err := setField(store, id, models.ElementTypeImage, func(el *models.Element) { el.Src = src }); err != nil {
		return "", err
	}
	return src, nil
}

// setField updates one element of type want, addressed by id, never by
// position.
func setField(store *Store, id string, want models.ElementType, fn func(*models.Element)) error {
	var err error
	store.update(func(l *models.Layout) bool {
		el, ok := l.Elements[id]
		if !ok {
			err = fmt.Errorf("%w: %s", ErrElementNotFound, id)
			return false
		}
		if el.Type != want {
			err = fmt.Errorf("%w: %s is %q, not %s", ErrWrongElementType, id, el.Type, want)
			return false
		}
		fn(&el)
		l.Elements[id] = el
		return true
	})
	return err
}
