package service

import (
	"context"
	"time"

	"github.com/deppfellow/obs-live-suite/internal/hub"
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/google/uuid"
)

func (s *OverlayService) posterStateLocked() model.PosterState {
	state := s.poster
	if s.rotation != nil {
		rot := *s.rotation
		rot.PosterIDs = append([]uuid.UUID(nil), s.rotation.PosterIDs...)
		state.Rotation = &rot
	}
	return state
}

// ShowPoster displays an enabled poster.
func (s *OverlayService) ShowPoster(ctx context.Context, posterID uuid.UUID) (*model.PosterState, error) {
	poster, err := s.posters.GetByID(ctx, posterID)
	if err != nil {
		return nil, err
	}
	if !poster.IsEnabled {
		return nil, badRequest("POSTER_DISABLED", "This poster is disabled")
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	return s.showPosterLocked(poster), nil
}

// showPosterLocked needs publishMu held.
func (s *OverlayService) showPosterLocked(poster *model.Poster) *model.PosterState {
	s.mu.Lock()
	s.poster = model.PosterState{Visible: true, Poster: poster}
	state := s.posterStateLocked()
	s.mu.Unlock()

	publish(s.hub, s.logger, hub.ChannelPoster, "poster.show", state)
	return &state
}

// HidePoster hides the poster. Rotation keeps running and shows the next
// poster on its next tick.
func (s *OverlayService) HidePoster() *model.PosterState {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	if !s.poster.Visible {
		state := s.posterStateLocked()
		s.mu.Unlock()
		return &state
	}
	s.poster = model.PosterState{}
	state := s.posterStateLocked()
	s.mu.Unlock()

	publish(s.hub, s.logger, hub.ChannelPoster, "poster.hide", state)
	return &state
}

// NextPoster shows the poster after the current one, taken from the
// rotation list when it has one, otherwise from all enabled posters.
func (s *OverlayService) NextPoster(ctx context.Context) (*model.PosterState, error) {
	candidates, err := s.posterCandidates(ctx)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, conflict("NO_POSTERS", "There are no enabled posters to show")
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	next := 0
	if s.poster.Poster != nil {
		for i, p := range candidates {
			if p.ID == s.poster.Poster.ID {
				next = (i + 1) % len(candidates)
				break
			}
		}
	}
	s.mu.Unlock()

	poster := candidates[next]
	return s.showPosterLocked(&poster), nil
}

// posterCandidates returns enabled posters in rotation order.
func (s *OverlayService) posterCandidates(ctx context.Context) ([]model.Poster, error) {
	enabled, err := s.posters.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	var ids []uuid.UUID
	if s.rotation != nil {
		ids = append(ids, s.rotation.PosterIDs...)
	}
	s.mu.Unlock()

	if len(ids) == 0 {
		return enabled, nil
	}

	byID := make(map[uuid.UUID]model.Poster, len(enabled))
	for _, p := range enabled {
		byID[p.ID] = p
	}

	ordered := make([]model.Poster, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// StartRotation shows the first poster right away, then advances every
// interval. Starting again replaces the running rotation.
func (s *OverlayService) StartRotation(ctx context.Context, p *model.StartRotationPayload) (*model.PosterState, error) {
	rotation := &model.PosterRotation{
		Enabled:         true,
		IntervalSeconds: p.IntervalSeconds,
		PosterIDs:       append([]uuid.UUID{}, p.PosterIDs...),
	}

	s.mu.Lock()
	previous := s.rotation
	s.rotation = rotation
	s.mu.Unlock()

	state, err := s.NextPoster(ctx)
	if err != nil {
		s.mu.Lock()
		s.rotation = previous
		s.mu.Unlock()
		return nil, err
	}

	interval := time.Duration(p.IntervalSeconds) * time.Second
	if err := s.periodic.Every(posterRotationJob, interval, s.rotate); err != nil {
		s.mu.Lock()
		s.rotation = previous
		s.mu.Unlock()
		return nil, badRequest("INVALID_ROTATION", err.Error())
	}

	s.publishMu.Lock()
	s.mu.Lock()
	current := s.posterStateLocked()
	s.mu.Unlock()
	publish(s.hub, s.logger, hub.ChannelPoster, "poster.rotation", current.Rotation)
	s.publishMu.Unlock()
	state.Rotation = current.Rotation

	s.logger.Info().
		Int("interval_seconds", p.IntervalSeconds).
		Int("posters", len(p.PosterIDs)).
		Msg("poster rotation started")

	return state, nil
}

// StopRotation stops the rotation and leaves the current poster on screen.
func (s *OverlayService) StopRotation() *model.PosterState {
	s.periodic.Remove(posterRotationJob)

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	wasRunning := s.rotation != nil
	s.rotation = nil
	state := s.posterStateLocked()
	s.mu.Unlock()

	if wasRunning {
		publish(s.hub, s.logger, hub.ChannelPoster, "poster.rotation", nil)
		s.logger.Info().Msg("poster rotation stopped")
	}
	return &state
}

// rotate is the cron callback.
func (s *OverlayService) rotate() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.NextPoster(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("poster rotation tick failed")
	}
}
