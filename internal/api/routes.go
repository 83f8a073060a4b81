// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/page-builder/backend/internal/builder"
	"github.com/page-builder/backend/internal/storage"
	"go.uber.org/zap"
)

// Dependencies holds all handler dependencies. Store serves the layout
// store routes, App the builder routes; either may be nil.
type Dependencies struct {
	Store       storage.Store
	App         *builder.App
	SaveTimeout time.Duration
	Logger      *zap.Logger
	Service     string
	Version     string
}

// Handlers holds all handler instances
type Handlers struct {
	Health  HealthHandler
	Layout  LayoutHandler
	Builder BuilderHandler
	Hub     *Hub
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &Handlers{
		Health: NewHealthHandler(deps.Service, deps.Version),
	}
	if deps.Store != nil {
		h.Layout = NewLayoutHandler(deps.Store, logger)
	}
	if deps.App != nil {
		h.Builder = NewBuilderHandler(deps.App, deps.SaveTimeout, logger)
		h.Hub = NewHub(deps.App.Store(), logger)
	}
	return h
}

// Close releases handler resources
func (h *Handlers) Close() {
	if h.Hub != nil {
		h.Hub.Close()
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)

	if handlers.Layout != nil {
		RegisterLayoutRoutes(e, handlers.Layout)
	}
	if handlers.Builder != nil {
		RegisterBuilderRoutes(e, handlers.Builder)
	}
	if handlers.Hub != nil {
		RegisterWebSocketRoutes(e, handlers.Hub)
	}
}

// RegisterLayoutRoutes registers the remote layout store routes
func RegisterLayoutRoutes(e *echo.Echo, h LayoutHandler) {
	apiGroup := e.Group("/api")
	apiGroup.GET("/layouts", h.HandleListLayouts)
	apiGroup.GET("/layout/:userId", h.HandleGetLayout)
	apiGroup.GET("/layout/:userId/msgpack", h.HandleGetLayoutMsgpack)
	apiGroup.POST("/layout/:userId", h.HandleSaveLayout)
	apiGroup.DELETE("/layout/:userId", h.HandleDeleteLayout)
}

// RegisterBuilderRoutes registers the editing shell routes
func RegisterBuilderRoutes(e *echo.Echo, h BuilderHandler) {
	builderGroup := e.Group("/builder")
	builderGroup.GET("/palette", h.HandleGetPalette)
	builderGroup.GET("/layout", h.HandleGetLayout)
	builderGroup.GET("/sections", h.HandleGetCanvas)
	builderGroup.POST("/sections/:sectionId/drop", h.HandleDrop)
	builderGroup.POST("/sections/:sectionId/reorder", h.HandleReorder)
	builderGroup.PUT("/elements/:elementId/text", h.HandleEditText)
	builderGroup.POST("/elements/:elementId/image", h.HandleSelectImage)
	builderGroup.POST("/save", h.HandleSave)
}

// RegisterWebSocketRoutes registers WebSocket routes
func RegisterWebSocketRoutes(e *echo.Echo, hub *Hub) {
	e.GET("/builder/ws", hub.HandleWebSocket)
}

// MiddlewareConfig carries the settings SetupMiddleware needs
type MiddlewareConfig struct {
	Logger         *zap.Logger
	RequestLogging bool
	BodyLimit      string
	EnableCORS     bool
	AllowOrigins   string
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg MiddlewareConfig) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	httpLog := logger.Named("http")

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging if disabled in config
			if !cfg.RequestLogging {
				return true
			}
			return c.Request().URL.Path == "/api/health"
		},
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
				httpLog.Warn("request", fields...)
				return nil
			}
			httpLog.Info("request", fields...)
			return nil
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	if cfg.EnableCORS {
		origins := strings.Split(cfg.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 1 && origins[0] == "" {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}
