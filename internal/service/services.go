package service

import (
	"context"

	"github.com/deppfellow/obs-live-suite/internal/lib/obs"
	"github.com/deppfellow/obs-live-suite/internal/repository"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/rs/zerolog"
)

// Services holds every service the handlers call.
type Services struct {
	Auth      *AuthService
	Guests    *GuestService
	Posters   *PosterService
	Themes    *ThemeService
	Profiles  *ProfileService
	Playlists *PlaylistService
	Overlay   *OverlayService
	Media     *MediaService
	QuizBank  *QuizBankService
	Quiz      *QuizService
	OBS       *OBSService
	Settings  *SettingService
	Assets    *AssetService
	Actions   *ActionService
	Health    *HealthService

	logger *zerolog.Logger
}

// NewServices wires every service. Job handlers are registered here, so it
// must run before s.StartBackground.
func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	cfg := s.Config
	logger := s.Logger

	overlay := NewOverlayService(OverlayDeps{
		Guests:             repos.Guests,
		Posters:            repos.Posters,
		Themes:             repos.Themes,
		Hub:                s.Hub,
		Jobs:               s.Scheduler,
		Periodic:           s.Cron,
		Logger:             logger,
		LowerThirdDuration: cfg.Overlay.LowerThirdDuration,
	})

	quizService := NewQuizService(QuizDeps{
		Questions:        repos.QuizQuestions,
		Players:          repos.QuizPlayers,
		Sessions:         repos.QuizSessions,
		Hub:              s.Hub,
		Jobs:             s.Scheduler,
		Logger:           logger,
		DefaultTimeLimit: cfg.Quiz.DefaultTimeLimit,
	})

	media := NewMediaService(repos.Playlists, s.Hub, logger)
	obsService := NewOBSService(s.OBS, repos.Settings, cfg.OBS, logger)
	profiles := NewProfileService(repos.Profiles, repos.Themes, overlay, s.Hub, logger)

	health := NewHealthService(
		cfg.Primary.Env,
		cfg.Observability.HealthChecks,
		healthChecks(s),
		s.Hub.Stats,
		s.LoggerService,
		logger,
	)

	return &Services{
		Auth:      NewAuthService(cfg.Auth, logger),
		Guests:    NewGuestService(repos.Guests),
		Posters:   NewPosterService(repos.Posters),
		Themes:    NewThemeService(repos.Themes, s.Hub, logger),
		Profiles:  profiles,
		Playlists: NewPlaylistService(repos.Playlists),
		Overlay:   overlay,
		Media:     media,
		QuizBank:  NewQuizBankService(repos.QuizQuestions, repos.QuizPlayers, repos.QuizSessions),
		Quiz:      quizService,
		OBS:       obsService,
		Settings:  NewSettingService(repos.Settings, obsService, logger),
		Assets:    NewAssetService(cfg.Media.AssetsDir, cfg.Media.MaxUploadBytes, s.Hub, logger),
		Actions:   NewActionService(overlay, media, quizService, obsService, profiles),
		Health:    health,
		logger:    logger,
	}, nil
}

// healthChecks checks the database (critical), Redis and OBS.
func healthChecks(s *server.Server) []HealthCheck {
	return []HealthCheck{
		{Name: "database", Critical: true, Run: s.DB.Ping},
		{Name: "redis", Run: func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}},
		{Name: "obs", Run: func(ctx context.Context) error {
			if !s.OBS.Connected() {
				return obs.ErrNotConnected
			}
			return nil
		}},
	}
}

// Restore brings back state that outlives a restart: the OBS target, the
// active quiz session and the active profile. Failures are logged so a
// broken row never blocks boot.
func (svc *Services) Restore(ctx context.Context) {
	if err := svc.OBS.ApplyStored(ctx); err != nil {
		svc.logger.Error().Err(err).Msg("failed to apply stored OBS settings")
	}
	if err := svc.Quiz.Restore(ctx); err != nil {
		svc.logger.Error().Err(err).Msg("failed to restore quiz session")
	}
	if err := svc.Profiles.RestoreActive(ctx); err != nil {
		svc.logger.Error().Err(err).Msg("failed to restore active profile")
	}
}

// Close stops the asset watcher.
func (svc *Services) Close() error {
	return svc.Assets.Close()
}
