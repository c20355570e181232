package handler

import (
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/deppfellow/obs-live-suite/internal/service"
	"github.com/labstack/echo/v4"
)

// SettingHandler exposes the key/value settings. Secrets come back masked.
type SettingHandler struct {
	Handler
	settings *service.SettingService
}

func NewSettingHandler(s *server.Server, settings *service.SettingService) *SettingHandler {
	return &SettingHandler{Handler: NewHandler(s), settings: settings}
}

func (h *SettingHandler) ListSettings(c echo.Context, _ *model.EmptyPayload) ([]model.Setting, error) {
	return h.settings.List(c.Request().Context())
}

func (h *SettingHandler) GetOBSSettings(c echo.Context, _ *model.EmptyPayload) (*model.OBSSettings, error) {
	return h.settings.GetOBS(c.Request().Context())
}

func (h *SettingHandler) PutOBSSettings(c echo.Context, p *model.OBSSettings) (*model.Setting, error) {
	return h.settings.PutOBS(c.Request().Context(), p)
}

func (h *SettingHandler) GetSetting(c echo.Context, p *model.SettingKeyPayload) (*model.Setting, error) {
	return h.settings.Get(c.Request().Context(), p.Key)
}

func (h *SettingHandler) PutSetting(c echo.Context, p *model.PutSettingPayload) (*model.Setting, error) {
	return h.settings.Put(c.Request().Context(), p.Key, p.Value)
}

func (h *SettingHandler) DeleteSetting(c echo.Context, p *model.SettingKeyPayload) error {
	return h.settings.Delete(c.Request().Context(), p.Key)
}
