package handler

import (
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/deppfellow/obs-live-suite/internal/service"
	"github.com/labstack/echo/v4"
)

// ThemeHandler serves /api/v1/themes.
type ThemeHandler struct {
	Handler
	themes *service.ThemeService
}

func NewThemeHandler(s *server.Server, themes *service.ThemeService) *ThemeHandler {
	return &ThemeHandler{Handler: NewHandler(s), themes: themes}
}

func (h *ThemeHandler) ListThemes(c echo.Context, _ *model.EmptyPayload) ([]model.Theme, error) {
	return h.themes.List(c.Request().Context())
}

func (h *ThemeHandler) GetTheme(c echo.Context, p *model.IDPayload) (*model.Theme, error) {
	return h.themes.Get(c.Request().Context(), p.ID)
}

func (h *ThemeHandler) CreateTheme(c echo.Context, p *model.CreateThemePayload) (*model.Theme, error) {
	return h.themes.Create(c.Request().Context(), p)
}

func (h *ThemeHandler) UpdateTheme(c echo.Context, p *model.UpdateThemePayload) (*model.Theme, error) {
	return h.themes.Update(c.Request().Context(), p)
}

func (h *ThemeHandler) DeleteTheme(c echo.Context, p *model.IDPayload) error {
	return h.themes.Delete(c.Request().Context(), p.ID)
}
