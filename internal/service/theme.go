package service

import (
	"context"

	"github.com/deppfellow/obs-live-suite/internal/hub"
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ThemeService manages themes. Edits are broadcast as system/theme.updated
// so overlays showing that theme restyle without a profile switch.
type ThemeService struct {
	themes ThemeStore
	hub    hub.Broadcaster
	logger *zerolog.Logger
}

func NewThemeService(themes ThemeStore, b hub.Broadcaster, logger *zerolog.Logger) *ThemeService {
	return &ThemeService{themes: themes, hub: b, logger: logger}
}

func (s *ThemeService) List(ctx context.Context) ([]model.Theme, error) {
	return s.themes.List(ctx)
}

func (s *ThemeService) Get(ctx context.Context, id uuid.UUID) (*model.Theme, error) {
	return s.themes.GetByID(ctx, id)
}

func (s *ThemeService) Create(ctx context.Context, p *model.CreateThemePayload) (*model.Theme, error) {
	return s.themes.Create(ctx, p.Theme())
}

func (s *ThemeService) Update(ctx context.Context, p *model.UpdateThemePayload) (*model.Theme, error) {
	theme, err := s.themes.Update(ctx, p.Theme())
	if err != nil {
		return nil, err
	}

	publish(s.hub, s.logger, hub.ChannelSystem, "theme.updated", theme)
	return theme, nil
}

// Delete refuses to remove the default theme; profiles fall back to it.
func (s *ThemeService) Delete(ctx context.Context, id uuid.UUID) error {
	theme, err := s.themes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if theme.IsDefault {
		return conflict("THEME_IS_DEFAULT", "The default theme cannot be deleted")
	}
	return s.themes.Delete(ctx, id)
}
