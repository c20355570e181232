package service

import (
	"context"

	"github.com/deppfellow/obs-live-suite/internal/hub"
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RotationController starts and stops the poster rotation.
// *OverlayService satisfies it.
type RotationController interface {
	StartRotation(ctx context.Context, p *model.StartRotationPayload) (*model.PosterState, error)
	StopRotation() *model.PosterState
}

// ProfileActivated is broadcast on system/profile.activated.
type ProfileActivated struct {
	ProfileID uuid.UUID       `json:"profile_id"`
	Name      string          `json:"name"`
	AudioCues model.AudioCues `json:"audio_cues"`
}

// ProfileService manages profiles and applies the active one to the
// overlays.
type ProfileService struct {
	profiles ProfileStore
	themes   ThemeStore
	rotation RotationController
	hub      hub.Broadcaster
	logger   *zerolog.Logger
}

func NewProfileService(profiles ProfileStore, themes ThemeStore, rotation RotationController, b hub.Broadcaster, logger *zerolog.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		themes:   themes,
		rotation: rotation,
		hub:      b,
		logger:   logger,
	}
}

func (s *ProfileService) List(ctx context.Context) ([]model.Profile, error) {
	return s.profiles.List(ctx)
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

func (s *ProfileService) Active(ctx context.Context) (*model.Profile, error) {
	return s.profiles.GetActive(ctx)
}

func (s *ProfileService) Create(ctx context.Context, p *model.CreateProfilePayload) (*model.Profile, error) {
	if err := s.checkTheme(ctx, p.ThemeID); err != nil {
		return nil, err
	}
	return s.profiles.Create(ctx, p.Profile())
}

// Update saves the profile and re-applies it when it is the active one.
func (s *ProfileService) Update(ctx context.Context, p *model.UpdateProfilePayload) (*model.Profile, error) {
	if err := s.checkTheme(ctx, p.ThemeID); err != nil {
		return nil, err
	}

	profile, err := s.profiles.Update(ctx, p.Profile())
	if err != nil {
		return nil, err
	}

	if profile.IsActive {
		s.apply(ctx, profile)
	}
	return profile, nil
}

// Delete removes a profile. Deleting the active one stops its rotation.
func (s *ProfileService) Delete(ctx context.Context, id uuid.UUID) error {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.profiles.Delete(ctx, id); err != nil {
		return err
	}
	if profile.IsActive {
		s.rotation.StopRotation()
	}
	return nil
}

// Activate makes id the only active profile and applies it to the overlays.
func (s *ProfileService) Activate(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	profile, err := s.profiles.Activate(ctx, id)
	if err != nil {
		return nil, err
	}

	s.apply(ctx, profile)

	s.logger.Info().
		Str("profile_id", profile.ID.String()).
		Str("name", profile.Name).
		Msg("profile activated")

	return profile, nil
}

// RestoreActive re-applies the active profile after a restart.
func (s *ProfileService) RestoreActive(ctx context.Context) error {
	profile, err := s.profiles.GetActive(ctx)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil
		}
		return err
	}

	s.apply(ctx, profile)
	return nil
}

// apply broadcasts the theme, starts or stops poster rotation and
// broadcasts the activation with the audio cue settings. Failures are
// logged: the profile is active either way.
func (s *ProfileService) apply(ctx context.Context, profile *model.Profile) {
	theme := s.resolveTheme(ctx, profile)
	publish(s.hub, s.logger, hub.ChannelSystem, "theme.changed", theme)

	rot := profile.Settings.PosterRotation
	if rot.Enabled && rot.IntervalSeconds > 0 {
		_, err := s.rotation.StartRotation(ctx, &model.StartRotationPayload{
			PosterIDs:       rot.PosterIDs,
			IntervalSeconds: rot.IntervalSeconds,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("profile_id", profile.ID.String()).Msg("could not start poster rotation")
		}
	} else {
		s.rotation.StopRotation()
	}

	publish(s.hub, s.logger, hub.ChannelSystem, "profile.activated", ProfileActivated{
		ProfileID: profile.ID,
		Name:      profile.Name,
		AudioCues: profile.Settings.AudioCues,
	})
}

// resolveTheme returns the profile theme, else the default theme, else nil.
func (s *ProfileService) resolveTheme(ctx context.Context, profile *model.Profile) *model.Theme {
	if profile.ThemeID != nil {
		theme, err := s.themes.GetByID(ctx, *profile.ThemeID)
		if err == nil {
			return theme
		}
		s.logger.Warn().Err(err).Str("theme_id", profile.ThemeID.String()).Msg("profile theme unavailable, using default")
	}

	theme, err := s.themes.GetDefault(ctx)
	if err != nil {
		if !sqlerr.IsNotFound(err) {
			s.logger.Error().Err(err).Msg("failed to load default theme")
		}
		return nil
	}
	return theme
}

func (s *ProfileService) checkTheme(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := s.themes.GetByID(ctx, *id)
	return err
}
