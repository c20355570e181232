package handler

import (
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/deppfellow/obs-live-suite/internal/service"
	"github.com/labstack/echo/v4"
)

// GuestHandler serves /api/v1/guests.
type GuestHandler struct {
	Handler
	guests *service.GuestService
}

func NewGuestHandler(s *server.Server, guests *service.GuestService) *GuestHandler {
	return &GuestHandler{Handler: NewHandler(s), guests: guests}
}

func (h *GuestHandler) ListGuests(c echo.Context, p *model.ListPayload) (*model.PaginatedResponse[model.Guest], error) {
	return h.guests.List(c.Request().Context(), p)
}

func (h *GuestHandler) GetGuest(c echo.Context, p *model.IDPayload) (*model.Guest, error) {
	return h.guests.Get(c.Request().Context(), p.ID)
}

func (h *GuestHandler) CreateGuest(c echo.Context, p *model.CreateGuestPayload) (*model.Guest, error) {
	return h.guests.Create(c.Request().Context(), p)
}

func (h *GuestHandler) UpdateGuest(c echo.Context, p *model.UpdateGuestPayload) (*model.Guest, error) {
	return h.guests.Update(c.Request().Context(), p)
}

func (h *GuestHandler) DeleteGuest(c echo.Context, p *model.IDPayload) error {
	return h.guests.Delete(c.Request().Context(), p.ID)
}
