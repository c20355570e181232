package service

import (
	"context"
	"sync"

	"github.com/deppfellow/obs-live-suite/internal/hub"
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/rs/zerolog"
)

// MediaService drives the media overlay through a loaded playlist.
type MediaService struct {
	mu sync.Mutex

	playlists PlaylistStore
	hub       hub.Broadcaster
	logger    *zerolog.Logger

	playlist *model.Playlist
	index    int
	playing  bool
}

func NewMediaService(playlists PlaylistStore, b hub.Broadcaster, logger *zerolog.Logger) *MediaService {
	return &MediaService{playlists: playlists, hub: b, logger: logger}
}

func (s *MediaService) stateLocked() model.MediaState {
	if s.playlist == nil {
		return model.MediaState{}
	}

	id := s.playlist.ID
	item := s.playlist.Items[s.index]
	return model.MediaState{
		PlaylistID: &id,
		Name:       s.playlist.Name,
		Loop:       s.playlist.Loop,
		Index:      s.index,
		Playing:    s.playing,
		Current:    &item,
		Total:      len(s.playlist.Items),
	}
}

func (s *MediaService) State() model.MediaState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Load selects a playlist and rewinds to its first item.
func (s *MediaService) Load(ctx context.Context, p *model.LoadPlaylistPayload) (*model.MediaState, error) {
	playlist, err := s.playlists.GetByID(ctx, p.PlaylistID)
	if err != nil {
		return nil, err
	}
	if len(playlist.Items) == 0 {
		return nil, badRequest("PLAYLIST_EMPTY", "This playlist has no items")
	}

	return s.apply("media.load", func() error {
		s.playlist = playlist
		s.index = 0
		s.playing = p.Autoplay
		return nil
	})
}

func (s *MediaService) Play() (*model.MediaState, error) {
	return s.apply("media.play", func() error {
		s.playing = true
		return nil
	})
}

func (s *MediaService) Pause() (*model.MediaState, error) {
	return s.apply("media.pause", func() error {
		s.playing = false
		return nil
	})
}

// Next advances one item. Past the end it wraps when the playlist loops,
// otherwise it stays on the last item and stops.
func (s *MediaService) Next() (*model.MediaState, error) {
	return s.apply("media.next", func() error {
		if s.index+1 < len(s.playlist.Items) {
			s.index++
			return nil
		}
		if s.playlist.Loop {
			s.index = 0
			return nil
		}
		s.playing = false
		return nil
	})
}

// Previous goes back one item, wrapping to the last one when looping.
func (s *MediaService) Previous() (*model.MediaState, error) {
	return s.apply("media.previous", func() error {
		switch {
		case s.index > 0:
			s.index--
		case s.playlist.Loop:
			s.index = len(s.playlist.Items) - 1
		}
		return nil
	})
}

func (s *MediaService) Select(p *model.SelectMediaPayload) (*model.MediaState, error) {
	return s.apply("media.select", func() error {
		if p.Index >= len(s.playlist.Items) {
			return badRequest("MEDIA_INDEX_OUT_OF_RANGE", "There is no item at this index")
		}
		s.index = p.Index
		return nil
	})
}

// apply runs fn on a loaded playlist and broadcasts the new state as typ.
func (s *MediaService) apply(typ string, fn func() error) (*model.MediaState, error) {
	s.mu.Lock()
	if s.playlist == nil && typ != "media.load" {
		s.mu.Unlock()
		return nil, conflict("MEDIA_NOT_LOADED", "No playlist is loaded")
	}
	if err := fn(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	state := s.stateLocked()
	s.mu.Unlock()

	publish(s.hub, s.logger, hub.ChannelMedia, typ, state)
	return &state, nil
}
