package handler

import (
	"github.com/deppfellow/obs-live-suite/internal/lib/obs"
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/deppfellow/obs-live-suite/internal/service"
	"github.com/labstack/echo/v4"
)

// OBSHandler proxies a small set of obs-websocket requests. Requests made
// while OBS is disconnected fail with 503.
type OBSHandler struct {
	Handler
	obs *service.OBSService
}

func NewOBSHandler(s *server.Server, obsService *service.OBSService) *OBSHandler {
	return &OBSHandler{Handler: NewHandler(s), obs: obsService}
}

func (h *OBSHandler) GetStatus(c echo.Context, _ *model.EmptyPayload) (obs.Status, error) {
	return h.obs.Status(), nil
}

func (h *OBSHandler) Reconnect(c echo.Context, _ *model.EmptyPayload) (obs.Status, error) {
	return h.obs.Reconnect(c.Request().Context())
}

func (h *OBSHandler) ListScenes(c echo.Context, _ *model.EmptyPayload) (*obs.SceneList, error) {
	return h.obs.Scenes(c.Request().Context())
}

func (h *OBSHandler) SetScene(c echo.Context, p *model.SetScenePayload) error {
	return h.obs.SetScene(c.Request().Context(), p)
}

func (h *OBSHandler) GetStreamStatus(c echo.Context, _ *model.EmptyPayload) (*obs.OutputStatus, error) {
	return h.obs.StreamStatus(c.Request().Context())
}

func (h *OBSHandler) StartStream(c echo.Context, _ *model.EmptyPayload) error {
	return h.obs.StartStream(c.Request().Context())
}

func (h *OBSHandler) StopStream(c echo.Context, _ *model.EmptyPayload) error {
	return h.obs.StopStream(c.Request().Context())
}

func (h *OBSHandler) GetRecordStatus(c echo.Context, _ *model.EmptyPayload) (*obs.OutputStatus, error) {
	return h.obs.RecordStatus(c.Request().Context())
}

func (h *OBSHandler) StartRecord(c echo.Context, _ *model.EmptyPayload) error {
	return h.obs.StartRecord(c.Request().Context())
}

func (h *OBSHandler) StopRecord(c echo.Context, _ *model.EmptyPayload) error {
	return h.obs.StopRecord(c.Request().Context())
}
