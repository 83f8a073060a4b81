// handlers_health.go - Health check handlers
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	service string
	started time.Time
}

// NewHealthHandler creates a new health handler for the named service
func NewHealthHandler(service, version string) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		service: service,
		started: time.Now(),
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": h.service,
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}
