package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/page-builder/backend/internal/models"
	"github.com/page-builder/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

func sampleLayout() models.Layout {
	return models.Layout{
		Sections: []models.Section{
			{ID: "sec-main", Name: "Main", ElementIDs: []string{"el-1"}},
		},
		Elements: models.ElementMap{
			"el-1": {ID: "el-1", Type: models.ElementTypeText, Content: "Hello"},
		},
	}
}

func newLayoutContext(method, target, userID string, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.SetParamNames("userId")
		c.SetParamValues(userID)
	}
	return c, rec
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	assert.Equal(t, status, apiErr.Status)
	assert.Equal(t, code, apiErr.Code)
}

func TestHandleGetLayout(t *testing.T) {
	store := testutil.NewMockStorage()
	store.Seed("123", sampleLayout())
	store.Seed("blank", models.Layout{})
	h := NewLayoutHandler(store, zap.NewNop())

	tests := []struct {
		name     string
		userID   string
		wantKeys []string
	}{
		{name: "stored layout", userID: "123", wantKeys: []string{"sections", "elements"}},
		{name: "nothing stored", userID: "nobody", wantKeys: nil},
		{name: "empty layout keeps both fields", userID: "blank", wantKeys: []string{"sections", "elements"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newLayoutContext(http.MethodGet, "/api/layout/"+tt.userID, tt.userID, "")
			require.NoError(t, h.HandleGetLayout(c))
			assert.Equal(t, http.StatusOK, rec.Code)

			var body map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Len(t, body, len(tt.wantKeys))
			for _, k := range tt.wantKeys {
				assert.Contains(t, body, k)
			}
		})
	}
}

func TestHandleGetLayout_StoredContent(t *testing.T) {
	store := testutil.NewMockStorage()
	store.Seed("123", sampleLayout())
	h := NewLayoutHandler(store, zap.NewNop())

	c, rec := newLayoutContext(http.MethodGet, "/api/layout/123", "123", "")
	require.NoError(t, h.HandleGetLayout(c))

	var doc models.LayoutDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, []string{"el-1"}, doc.Sections[0].ElementIDs)
	assert.Equal(t, "Hello", doc.Elements["el-1"].Content)
}

func TestHandleGetLayout_StoreFailure(t *testing.T) {
	store := testutil.NewMockStorage()
	store.FailGet(true)
	h := NewLayoutHandler(store, zap.NewNop())

	c, _ := newLayoutContext(http.MethodGet, "/api/layout/123", "123", "")
	requireAPIError(t, h.HandleGetLayout(c), http.StatusInternalServerError, "INTERNAL_ERROR")
}

func TestHandleGetLayoutMsgpack(t *testing.T) {
	store := testutil.NewMockStorage()
	store.Seed("123", sampleLayout())
	h := NewLayoutHandler(store, zap.NewNop())

	c, rec := newLayoutContext(http.MethodGet, "/api/layout/123/msgpack", "123", "")
	require.NoError(t, h.HandleGetLayoutMsgpack(c))
	assert.Equal(t, "application/msgpack", rec.Header().Get(echo.HeaderContentType))

	var doc models.LayoutDocument
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, models.ElementTypeText, doc.Elements["el-1"].Type)
}

func TestHandleSaveLayout(t *testing.T) {
	tests := []struct {
		name         string
		userID       string
		body         string
		wantStatus   int
		wantCode     string
		wantSections int
		wantElements int
	}{
		{
			name:         "full document",
			userID:       "123",
			body:         `{"sections":[{"id":"sec-main","name":"Main","elementIds":["a"]}],"elements":{"a":{"id":"a","type":"button","label":"Go"}}}`,
			wantStatus:   http.StatusOK,
			wantSections: 1,
			wantElements: 1,
		},
		{
			name:       "absent fields stored empty",
			userID:     "123",
			body:       `{}`,
			wantStatus: http.StatusOK,
		},
		{
			name:     "invalid json",
			userID:   "123",
			body:     `{"sections":`,
			wantCode: "BAD_REQUEST",
		},
		{
			name:     "not an object",
			userID:   "123",
			body:     `[1,2]`,
			wantCode: "BAD_REQUEST",
		},
		{
			name:     "blank user id",
			userID:   "%20",
			body:     `{}`,
			wantCode: "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMockStorage()
			h := NewLayoutHandler(store, zap.NewNop())

			c, rec := newLayoutContext(http.MethodPost, "/api/layout/x", tt.userID, tt.body)
			err := h.HandleSaveLayout(c)
			if tt.wantCode != "" {
				requireAPIError(t, err, http.StatusBadRequest, tt.wantCode)
				assert.Zero(t, store.PutCalls())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var info models.LayoutInfo
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
			assert.Equal(t, tt.userID, info.UserID)
			assert.Equal(t, tt.wantSections, info.SectionCount)
			assert.Equal(t, tt.wantElements, info.ElementCount)

			stored, err := store.Get(context.Background(), tt.userID)
			require.NoError(t, err)
			assert.NotNil(t, stored.Layout.Sections)
			assert.NotNil(t, stored.Layout.Elements)
		})
	}
}

func TestHandleSaveLayout_StoreFailure(t *testing.T) {
	store := testutil.NewMockStorage()
	store.FailPut(true)
	h := NewLayoutHandler(store, zap.NewNop())

	c, _ := newLayoutContext(http.MethodPost, "/api/layout/123", "123", `{}`)
	requireAPIError(t, h.HandleSaveLayout(c), http.StatusInternalServerError, "INTERNAL_ERROR")
	assert.Equal(t, 1, store.PutCalls())
}

func TestHandleDeleteLayout(t *testing.T) {
	store := testutil.NewMockStorage()
	store.Seed("123", sampleLayout())
	h := NewLayoutHandler(store, zap.NewNop())

	c, rec := newLayoutContext(http.MethodDelete, "/api/layout/123", "123", "")
	require.NoError(t, h.HandleDeleteLayout(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, _ = newLayoutContext(http.MethodDelete, "/api/layout/123", "123", "")
	requireAPIError(t, h.HandleDeleteLayout(c), http.StatusNotFound, "NOT_FOUND")
}

func TestHandleListLayouts(t *testing.T) {
	store := testutil.NewMockStorage()
	store.Seed("a", sampleLayout())
	store.Seed("b", models.Layout{})
	h := NewLayoutHandler(store, zap.NewNop())

	c, rec := newLayoutContext(http.MethodGet, "/api/layouts", "", "")
	require.NoError(t, h.HandleListLayouts(c))

	var list []models.LayoutInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	c, rec = newLayoutContext(http.MethodGet, "/api/layouts?limit=1", "", "")
	require.NoError(t, h.HandleListLayouts(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	c, _ = newLayoutContext(http.MethodGet, "/api/layouts?limit=nope", "", "")
	requireAPIError(t, h.HandleListLayouts(c), http.StatusBadRequest, "VALIDATION_ERROR")
}
