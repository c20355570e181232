package handler

import (
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/deppfellow/obs-live-suite/internal/service"
)

// Handlers groups every HTTP handler so the router receives one value.
type Handlers struct {
	Health    *HealthHandler
	OpenAPI   *OpenAPIHandler
	WS        *WSHandler
	Guests    *GuestHandler
	Posters   *PosterHandler
	Themes    *ThemeHandler
	Profiles  *ProfileHandler
	Playlists *PlaylistHandler
	Overlay   *OverlayHandler
	Media     *MediaHandler
	Quiz      *QuizHandler
	OBS       *OBSHandler
	Settings  *SettingHandler
	Assets    *AssetHandler
	Actions   *ActionHandler
}

// NewHandlers builds every handler from the service container.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(s, services.Health),
		OpenAPI:   NewOpenAPIHandler(s),
		WS:        NewWSHandler(s),
		Guests:    NewGuestHandler(s, services.Guests),
		Posters:   NewPosterHandler(s, services.Posters),
		Themes:    NewThemeHandler(s, services.Themes),
		Profiles:  NewProfileHandler(s, services.Profiles),
		Playlists: NewPlaylistHandler(s, services.Playlists),
		Overlay:   NewOverlayHandler(s, services.Overlay),
		Media:     NewMediaHandler(s, services.Media),
		Quiz:      NewQuizHandler(s, services.QuizBank, services.Quiz),
		OBS:       NewOBSHandler(s, services.OBS),
		Settings:  NewSettingHandler(s, services.Settings),
		Assets:    NewAssetHandler(s, services.Assets),
		Actions:   NewActionHandler(s, services.Actions),
	}
}
