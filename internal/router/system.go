package router

import (
	"strings"

	"github.com/deppfellow/obs-live-suite/internal/handler"
	"github.com/deppfellow/obs-live-suite/internal/service"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers the routes outside /api/v1: health, docs,
// static files, the asset library and the overlay socket.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers, services *service.Services) {
	r.GET("/status", h.Health.CheckHealth)

	r.Static("/static", handler.StaticDir)
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)

	r.Static(strings.TrimSuffix(service.AssetURLPrefix, "/"), services.Assets.Dir())

	r.GET("/ws", h.WS.Serve)
}
