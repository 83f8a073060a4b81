// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import "github.com/labstack/echo/v4"

// LayoutHandler serves the remote layout store
type LayoutHandler interface {
	HandleGetLayout(c echo.Context) error
	HandleGetLayoutMsgpack(c echo.Context) error
	HandleSaveLayout(c echo.Context) error
	HandleDeleteLayout(c echo.Context) error
	HandleListLayouts(c echo.Context) error
}

// BuilderHandler serves the editing shell
type BuilderHandler interface {
	HandleGetPalette(c echo.Context) error
	HandleGetLayout(c echo.Context) error
	HandleGetCanvas(c echo.Context) error
	HandleDrop(c echo.Context) error
	HandleReorder(c echo.Context) error
	HandleEditText(c echo.Context) error
	HandleSelectImage(c echo.Context) error
	HandleSave(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
