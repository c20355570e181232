package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/labstack/echo/v4"
)

// StaticDir holds openapi.html and openapi.json.
const StaticDir = "static"

// OpenAPIHandler serves the API reference UI. The page loads the viewer
// from a CDN and reads /static/openapi.json.
type OpenAPIHandler struct {
	Handler
	dir string
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
		dir:     StaticDir,
	}
}

func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	templateBytes, err := os.ReadFile(filepath.Join(h.dir, "openapi.html"))

	c.Response().Header().Set("Cache-Control", "no-cache")

	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	if err := c.HTML(http.StatusOK, string(templateBytes)); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}

	return nil
}
