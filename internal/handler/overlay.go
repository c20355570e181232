package handler

import (
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/deppfellow/obs-live-suite/internal/service"
	"github.com/labstack/echo/v4"
)

// OverlayHandler drives the lower third, poster and countdown overlays.
type OverlayHandler struct {
	Handler
	overlay *service.OverlayService
}

func NewOverlayHandler(s *server.Server, overlay *service.OverlayService) *OverlayHandler {
	return &OverlayHandler{Handler: NewHandler(s), overlay: overlay}
}

func (h *OverlayHandler) GetState(c echo.Context, _ *model.EmptyPayload) (model.OverlayState, error) {
	return h.overlay.State(), nil
}

func (h *OverlayHandler) ShowLowerThird(c echo.Context, p *model.ShowLowerThirdPayload) (*model.LowerThirdState, error) {
	return h.overlay.ShowLowerThird(c.Request().Context(), p)
}

func (h *OverlayHandler) HideLowerThird(c echo.Context, _ *model.EmptyPayload) (*model.LowerThirdState, error) {
	return h.overlay.HideLowerThird(), nil
}

func (h *OverlayHandler) ShowPoster(c echo.Context, p *model.ShowPosterPayload) (*model.PosterState, error) {
	return h.overlay.ShowPoster(c.Request().Context(), p.PosterID)
}

func (h *OverlayHandler) HidePoster(c echo.Context, _ *model.EmptyPayload) (*model.PosterState, error) {
	return h.overlay.HidePoster(), nil
}

func (h *OverlayHandler) NextPoster(c echo.Context, _ *model.EmptyPayload) (*model.PosterState, error) {
	return h.overlay.NextPoster(c.Request().Context())
}

func (h *OverlayHandler) StartRotation(c echo.Context, p *model.StartRotationPayload) (*model.PosterState, error) {
	return h.overlay.StartRotation(c.Request().Context(), p)
}

func (h *OverlayHandler) StopRotation(c echo.Context, _ *model.EmptyPayload) (*model.PosterState, error) {
	return h.overlay.StopRotation(), nil
}

func (h *OverlayHandler) StartCountdown(c echo.Context, p *model.StartCountdownPayload) (*model.CountdownState, error) {
	return h.overlay.StartCountdown(p), nil
}

func (h *OverlayHandler) PauseCountdown(c echo.Context, _ *model.EmptyPayload) (*model.CountdownState, error) {
	return h.overlay.PauseCountdown()
}

func (h *OverlayHandler) ResumeCountdown(c echo.Context, _ *model.EmptyPayload) (*model.CountdownState, error) {
	return h.overlay.ResumeCountdown()
}

func (h *OverlayHandler) ResetCountdown(c echo.Context, _ *model.EmptyPayload) (*model.CountdownState, error) {
	return h.overlay.ResetCountdown(), nil
}

func (h *OverlayHandler) AddCountdown(c echo.Context, p *model.AddCountdownPayload) (*model.CountdownState, error) {
	return h.overlay.AddCountdown(p)
}
