package handler

import (
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/deppfellow/obs-live-suite/internal/service"
	"github.com/labstack/echo/v4"
)

// PosterHandler serves /api/v1/posters.
type PosterHandler struct {
	Handler
	posters *service.PosterService
}

func NewPosterHandler(s *server.Server, posters *service.PosterService) *PosterHandler {
	return &PosterHandler{Handler: NewHandler(s), posters: posters}
}

func (h *PosterHandler) ListPosters(c echo.Context, p *model.ListPayload) (*model.PaginatedResponse[model.Poster], error) {
	return h.posters.List(c.Request().Context(), p)
}

func (h *PosterHandler) GetPoster(c echo.Context, p *model.IDPayload) (*model.Poster, error) {
	return h.posters.Get(c.Request().Context(), p.ID)
}

func (h *PosterHandler) CreatePoster(c echo.Context, p *model.CreatePosterPayload) (*model.Poster, error) {
	return h.posters.Create(c.Request().Context(), p)
}

func (h *PosterHandler) UpdatePoster(c echo.Context, p *model.UpdatePosterPayload) (*model.Poster, error) {
	return h.posters.Update(c.Request().Context(), p)
}

func (h *PosterHandler) DeletePoster(c echo.Context, p *model.IDPayload) error {
	return h.posters.Delete(c.Request().Context(), p.ID)
}
