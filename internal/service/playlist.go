package service

import (
	"context"

	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/google/uuid"
)

// PlaylistService manages stored playlists. Playback lives in MediaService.
type PlaylistService struct {
	playlists PlaylistStore
}

func NewPlaylistService(playlists PlaylistStore) *PlaylistService {
	return &PlaylistService{playlists: playlists}
}

func (s *PlaylistService) List(ctx context.Context) ([]model.Playlist, error) {
	return s.playlists.List(ctx)
}

func (s *PlaylistService) Get(ctx context.Context, id uuid.UUID) (*model.Playlist, error) {
	return s.playlists.GetByID(ctx, id)
}

func (s *PlaylistService) Create(ctx context.Context, p *model.CreatePlaylistPayload) (*model.Playlist, error) {
	return s.playlists.Create(ctx, p.Playlist())
}

func (s *PlaylistService) Update(ctx context.Context, p *model.UpdatePlaylistPayload) (*model.Playlist, error) {
	return s.playlists.Update(ctx, p.Playlist())
}

func (s *PlaylistService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.playlists.Delete(ctx, id)
}
