// handlers_builder.go - Editing shell handlers
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/page-builder/backend/internal/builder"
	"go.uber.org/zap"
)

// maxDropPayload bounds the drag data read from a drop request.
const maxDropPayload = 4 * 1024

// BuilderHandlerImpl implements the BuilderHandler interface
type BuilderHandlerImpl struct {
	app         *builder.App
	saveTimeout time.Duration
	logger      *zap.Logger
}

// NewBuilderHandler creates a new builder handler. saveTimeout bounds how
// long a save request waits for the layout store.
func NewBuilderHandler(app *builder.App, saveTimeout time.Duration, logger *zap.Logger) BuilderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if saveTimeout <= 0 {
		saveTimeout = 30 * time.Second
	}
	return &BuilderHandlerImpl{app: app, saveTimeout: saveTimeout, logger: logger.Named("builder")}
}

// HandleGetPalette returns the creatable element kinds
func (h *BuilderHandlerImpl) HandleGetPalette(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"mediaType": builder.DragMediaType,
		"items":     h.app.Palette().Items(),
	})
}

// HandleGetLayout returns the raw layout
func (h *BuilderHandlerImpl) HandleGetLayout(c echo.Context) error {
	return c.JSON(http.StatusOK, h.app.Store().Layout())
}

// HandleGetCanvas returns every section with its rendered elements
func (h *BuilderHandlerImpl) HandleGetCanvas(c echo.Context) error {
	return c.JSON(http.StatusOK, h.app.Canvas())
}

// HandleDrop creates an element from a palette payload. A malformed
// payload is ignored rather than rejected.
func (h *BuilderHandlerImpl) HandleDrop(c echo.Context) error {
	section, err := h.app.Section(c.Param("sectionId"))
	if err != nil {
		return NewNotFoundError("section", c.Param("sectionId"))
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxDropPayload))
	if err != nil {
		return NewBadRequestError("failed to read drop payload", err)
	}

	el, err := section.OnExternalDrop(raw)
	switch {
	case errors.Is(err, builder.ErrMalformedPayload):
		h.logger.Debug("ignoring malformed drop payload", zap.String("section", section.ID()), zap.Error(err))
		return c.JSON(http.StatusOK, map[string]interface{}{"created": false})
	case errors.Is(err, builder.ErrSectionNotFound):
		return NewNotFoundError("section", section.ID())
	case err != nil:
		return NewInternalError("failed to drop element", err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"created": true,
		"element": el,
		"view":    builder.Render(el),
	})
}

// HandleReorder moves one element within a section
func (h *BuilderHandlerImpl) HandleReorder(c echo.Context) error {
	section, err := h.app.Section(c.Param("sectionId"))
	if err != nil {
		return NewNotFoundError("section", c.Param("sectionId"))
	}

	var req builder.ReorderRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.ActiveID == "" {
		return NewValidationError("activeId")
	}
	if req.OverID == "" {
		return NewValidationError("overId")
	}

	moved, err := section.OnReorder(req.ActiveID, req.OverID)
	if err != nil {
		return NewNotFoundError("section", section.ID())
	}

	ids := []string{}
	for _, s := range h.app.Store().Layout().Sections {
		if s.ID == section.ID() {
			ids = s.ElementIDs
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"moved":      moved,
		"elementIds": ids,
	})
}

type editTextRequest struct {
	Content *string `json:"content"`
}

// HandleEditText replaces a text element's content
func (h *BuilderHandlerImpl) HandleEditText(c echo.Context) error {
	id := c.Param("elementId")

	var req editTextRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Content == nil {
		return NewValidationError("content")
	}

	view, err := h.app.EditText(id, *req.Content)
	switch {
	case errors.Is(err, builder.ErrElementNotFound):
		return NewNotFoundError("element", id)
	case errors.Is(err, builder.ErrWrongElementType):
		return NewUnprocessableError("element is not a text element", err)
	case err != nil:
		return NewInternalError("failed to edit element", err)
	}
	return c.JSON(http.StatusOK, view)
}

// HandleSelectImage stores an uploaded image inline on an element
func (h *BuilderHandlerImpl) HandleSelectImage(c echo.Context) error {
	id := c.Param("elementId")

	fh, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("missing file", err)
	}
	f, err := fh.Open()
	if err != nil {
		return NewBadRequestError("failed to open file", err)
	}
	defer f.Close()

	if _, err := builder.SelectImage(h.app.Store(), id, f, fh.Header.Get("Content-Type")); err != nil {
		if errors.Is(err, builder.ErrElementNotFound) {
			return NewNotFoundError("element", id)
		}
		if errors.Is(err, builder.ErrWrongElementType) {
			return NewUnprocessableError("element is not an image element", err)
		}
		return NewInternalError("failed to store image", err)
	}

	view, err := h.app.RenderElement(id)
	if err != nil {
		return NewNotFoundError("element", id)
	}
	return c.JSON(http.StatusOK, view)
}

// HandleSave sends the current layout to the layout store and reports the
// outcome. Local state is kept whatever the result.
func (h *BuilderHandlerImpl) HandleSave(c echo.Context) error {
	// The save runs detached from the request so a client disconnect
	// cannot abort it half way.
	task := h.app.Save(context.WithoutCancel(c.Request().Context()))

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.saveTimeout)
	defer cancel()

	ack, err := task.Wait(ctx)
	if err != nil {
		return NewBadGatewayError("failed to save layout", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"saved":  true,
		"userId": h.app.UserID(),
		"ack":    ack,
	})
}
