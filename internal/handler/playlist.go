package handler

import (
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/deppfellow/obs-live-suite/internal/service"
	"github.com/labstack/echo/v4"
)

// PlaylistHandler serves /api/v1/playlists.
type PlaylistHandler struct {
	Handler
	playlists *service.PlaylistService
}

func NewPlaylistHandler(s *server.Server, playlists *service.PlaylistService) *PlaylistHandler {
	return &PlaylistHandler{Handler: NewHandler(s), playlists: playlists}
}

func (h *PlaylistHandler) ListPlaylists(c echo.Context, _ *model.EmptyPayload) ([]model.Playlist, error) {
	return h.playlists.List(c.Request().Context())
}

func (h *PlaylistHandler) GetPlaylist(c echo.Context, p *model.IDPayload) (*model.Playlist, error) {
	return h.playlists.Get(c.Request().Context(), p.ID)
}

func (h *PlaylistHandler) CreatePlaylist(c echo.Context, p *model.CreatePlaylistPayload) (*model.Playlist, error) {
	return h.playlists.Create(c.Request().Context(), p)
}

func (h *PlaylistHandler) UpdatePlaylist(c echo.Context, p *model.UpdatePlaylistPayload) (*model.Playlist, error) {
	return h.playlists.Update(c.Request().Context(), p)
}

func (h *PlaylistHandler) DeletePlaylist(c echo.Context, p *model.IDPayload) error {
	return h.playlists.Delete(c.Request().Context(), p.ID)
}
