package handler

import (
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/deppfellow/obs-live-suite/internal/service"
	"github.com/labstack/echo/v4"
)

// MediaHandler serves /api/v1/media.
type MediaHandler struct {
	Handler
	media *service.MediaService
}

func NewMediaHandler(s *server.Server, media *service.MediaService) *MediaHandler {
	return &MediaHandler{Handler: NewHandler(s), media: media}
}

func (h *MediaHandler) GetState(c echo.Context, _ *model.EmptyPayload) (model.MediaState, error) {
	return h.media.State(), nil
}

func (h *MediaHandler) Load(c echo.Context, p *model.LoadPlaylistPayload) (*model.MediaState, error) {
	return h.media.Load(c.Request().Context(), p)
}

func (h *MediaHandler) Play(c echo.Context, _ *model.EmptyPayload) (*model.MediaState, error) {
	return h.media.Play()
}

func (h *MediaHandler) Pause(c echo.Context, _ *model.EmptyPayload) (*model.MediaState, error) {
	return h.media.Pause()
}

func (h *MediaHandler) Next(c echo.Context, _ *model.EmptyPayload) (*model.MediaState, error) {
	return h.media.Next()
}

func (h *MediaHandler) Previous(c echo.Context, _ *model.EmptyPayload) (*model.MediaState, error) {
	return h.media.Previous()
}

func (h *MediaHandler) Select(c echo.Context, p *model.SelectMediaPayload) (*model.MediaState, error) {
	return h.media.Select(p)
}
