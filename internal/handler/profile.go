package handler

import (
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/deppfellow/obs-live-suite/internal/service"
	"github.com/labstack/echo/v4"
)

// ProfileHandler serves /api/v1/profiles.
type ProfileHandler struct {
	Handler
	profiles *service.ProfileService
}

func NewProfileHandler(s *server.Server, profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{Handler: NewHandler(s), profiles: profiles}
}

func (h *ProfileHandler) ListProfiles(c echo.Context, _ *model.EmptyPayload) ([]model.Profile, error) {
	return h.profiles.List(c.Request().Context())
}

func (h *ProfileHandler) GetActiveProfile(c echo.Context, _ *model.EmptyPayload) (*model.Profile, error) {
	return h.profiles.Active(c.Request().Context())
}

func (h *ProfileHandler) GetProfile(c echo.Context, p *model.IDPayload) (*model.Profile, error) {
	return h.profiles.Get(c.Request().Context(), p.ID)
}

func (h *ProfileHandler) CreateProfile(c echo.Context, p *model.CreateProfilePayload) (*model.Profile, error) {
	return h.profiles.Create(c.Request().Context(), p)
}

func (h *ProfileHandler) UpdateProfile(c echo.Context, p *model.UpdateProfilePayload) (*model.Profile, error) {
	return h.profiles.Update(c.Request().Context(), p)
}

func (h *ProfileHandler) DeleteProfile(c echo.Context, p *model.IDPayload) error {
	return h.profiles.Delete(c.Request().Context(), p.ID)
}

// ActivateProfile applies the profile's theme and poster rotation.
func (h *ProfileHandler) ActivateProfile(c echo.Context, p *model.IDPayload) (*model.Profile, error) {
	return h.profiles.Activate(c.Request().Context(), p.ID)
}
