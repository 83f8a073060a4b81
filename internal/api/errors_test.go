package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "api error",
			err:        NewNotFoundError("section", "sec-x"),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"code":"NOT_FOUND","message":"section not found: sec-x"}`,
		},
		{
			name:       "wrapped api error",
			err:        fmt.Errorf("handler: %w", NewValidationError("userId")),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"code":"VALIDATION_ERROR","message":"validation failed for field: userId"}`,
		},
		{
			name:       "bad gateway carries cause",
			err:        NewBadGatewayError("failed to save layout", errors.New("connection refused")),
			wantStatus: http.StatusBadGateway,
			wantBody:   `{"code":"BAD_GATEWAY","message":"failed to save layout","details":"connection refused"}`,
		},
		{
			name:       "unprocessable",
			err:        NewUnprocessableError("element is not a text element", nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"code":"UNPROCESSABLE","message":"element is not a text element"}`,
		},
		{
			name:       "echo error",
			err:        echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request Entity Too Large"),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantBody:   `{"code":"HTTP_ERROR","message":"Request Entity Too Large"}`,
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"code":"UNKNOWN_ERROR","message":"An unexpected error occurred","details":"boom"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			ErrorHandler(tt.err, c)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestHealth(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHealthHandler("layout-store", "1.2.3")
	if assert.NoError(t, h.HandleHealth(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ok"`)
		assert.Contains(t, rec.Body.String(), `"version":"1.2.3"`)
	}
}
