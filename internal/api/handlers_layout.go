// handlers_layout.go - Remote layout store handlers
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/page-builder/backend/internal/models"
	"github.com/page-builder/backend/internal/storage"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// LayoutHandlerImpl implements the LayoutHandler interface
type LayoutHandlerImpl struct {
	store  storage.Store
	logger *zap.Logger
}

// NewLayoutHandler creates a new layout store handler
func NewLayoutHandler(store storage.Store, logger *zap.Logger) LayoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LayoutHandlerImpl{store: store, logger: logger.Named("layouts")}
}

// HandleGetLayout returns the stored layout, or {} when nothing is stored
func (h *LayoutHandlerImpl) HandleGetLayout(c echo.Context) error {
	doc, err := h.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// HandleGetLayoutMsgpack returns the stored layout msgpack-encoded
func (h *LayoutHandlerImpl) HandleGetLayoutMsgpack(c echo.Context) error {
	doc, err := h.lookup(c)
	if err != nil {
		return err
	}
	data, err := msgpack.Marshal(doc)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

func (h *LayoutHandlerImpl) lookup(c echo.Context) (*models.LayoutDocument, error) {
	userID, err := userIDParam(c)
	if err != nil {
		return nil, err
	}

	rec, err := h.store.Get(c.Request().Context(), userID)
	if errors.Is(err, storage.ErrNotFound) {
		return &models.LayoutDocument{}, nil
	}
	if err != nil {
		return nil, NewInternalError("failed to load layout", err)
	}

	doc := &models.LayoutDocument{Sections: rec.Layout.Sections, Elements: rec.Layout.Elements}
	if doc.Sections == nil {
		doc.Sections = []models.Section{}
	}
	if doc.Elements == nil {
		doc.Elements = models.ElementMap{}
	}
	return doc, nil
}

// HandleSaveLayout replaces the stored layout with the request body
func (h *LayoutHandlerImpl) HandleSaveLayout(c echo.Context) error {
	userID, err := userIDParam(c)
	if err != nil {
		return err
	}

	var req models.LayoutDocument
	dec := json.NewDecoder(c.Request().Body)
	if err := dec.Decode(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	layout := models.Layout{Sections: req.Sections, Elements: req.Elements}
	if layout.Sections == nil {
		layout.Sections = []models.Section{}
	}
	if layout.Elements == nil {
		layout.Elements = models.ElementMap{}
	}

	rec, err := h.store.Put(c.Request().Context(), userID, layout)
	if err != nil {
		return NewInternalError("failed to save layout", err)
	}

	h.logger.Info("layout stored",
		zap.String("userId", userID),
		zap.Int("sections", len(layout.Sections)),
		zap.Int("elements", len(layout.Elements)))
	return c.JSON(http.StatusOK, rec.Info())
}

// HandleDeleteLayout removes a stored layout
func (h *LayoutHandlerImpl) HandleDeleteLayout(c echo.Context) error {
	userID, err := userIDParam(c)
	if err != nil {
		return err
	}

	if err := h.store.Delete(c.Request().Context(), userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NewNotFoundError("layout", userID)
		}
		return NewInternalError("failed to delete layout", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleListLayouts lists stored layouts, most recent first
func (h *LayoutHandlerImpl) HandleListLayouts(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return NewValidationError("limit")
		}
		limit = n
	}

	list, err := h.store.List(c.Request().Context(), limit)
	if err != nil {
		return NewInternalError("failed to list layouts", err)
	}
	return c.JSON(http.StatusOK, list)
}

func userIDParam(c echo.Context) (string, error) {
	userID := c.Param("userId")
	if v, err := url.PathUnescape(userID); err == nil {
		userID = v
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", NewValidationError("userId")
	}
	return userID, nil
}
