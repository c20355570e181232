package service

import (
	"context"
	"sync"
	"time"

	"github.com/deppfellow/obs-live-suite/internal/hub"
	"github.com/deppfellow/obs-live-suite/internal/lib/job"
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// posterRotationJob is the cron entry name of the poster rotation.
const posterRotationJob = "poster-rotation"

// OverlayService owns the runtime state of the lower third, poster and
// countdown overlays. State lives in memory; every change is broadcast on
// the overlay's hub channel.
type OverlayService struct {
	// publishMu is held from a state change through its broadcast, so the
	// envelope the hub retains for each channel matches State. Lock it
	// before mu.
	publishMu sync.Mutex
	mu        sync.Mutex

	guests  GuestStore
	posters PosterStore
	themes  ThemeStore

	hub      hub.Broadcaster
	jobs     job.Scheduler
	periodic Periodic
	logger   *zerolog.Logger
	now      clock

	// lowerThirdDuration applies when a show request has no duration.
	lowerThirdDuration time.Duration

	lower     model.LowerThirdState
	poster    model.PosterState
	rotation  *model.PosterRotation
	countdown countdownRun
}

// OverlayDeps are the stores and infrastructure NewOverlayService wires in.
// Periodic runs the poster rotation; Jobs runs lower third auto-hide and the
// countdown finish.
type OverlayDeps struct {
	Guests             GuestStore
	Posters            PosterStore
	Themes             ThemeStore
	Hub                hub.Broadcaster
	Jobs               job.Scheduler
	Periodic           Periodic
	Logger             *zerolog.Logger
	LowerThirdDuration time.Duration
}

// NewOverlayService builds the service and registers its delayed task
// handlers on d.Jobs. Handlers must be registered before the job worker
// starts.
func NewOverlayService(d OverlayDeps) *OverlayService {
	s := &OverlayService{
		guests:             d.Guests,
		posters:            d.Posters,
		themes:             d.Themes,
		hub:                d.Hub,
		jobs:               d.Jobs,
		periodic:           d.Periodic,
		logger:             d.Logger,
		now:                time.Now,
		lowerThirdDuration: d.LowerThirdDuration,
		countdown:          countdownRun{status: model.CountdownIdle},
	}

	s.jobs.Handle(job.TaskLowerThirdHide, s.handleLowerThirdHide)
	s.jobs.Handle(job.TaskCountdownFinish, s.handleCountdownFinish)

	return s
}

// State returns every overlay state handled here. Media is filled by the
// caller that owns it.
func (s *OverlayService) State() model.OverlayState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return model.OverlayState{
		LowerThird: s.lower,
		Poster:     s.posterStateLocked(),
		Countdown:  s.countdownStateLocked(),
	}
}

// schedule enqueues a delayed task. Failures are logged: the overlay is
// already on screen and the operator can still hide it by hand.
func (s *OverlayService) schedule(task *asynq.Task, err error, delay time.Duration) {
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
		defer cancel()
		err = s.jobs.Schedule(ctx, task, delay)
	}
	if err != nil {
		s.logger.Error().Err(err).Dur("delay", delay).Msg("failed to schedule overlay task")
	}
}

// ---------------------------------------------------------------- lower third

// ShowLowerThird displays a guest (which must be enabled) or a free title.
// The payload title and subtitle override the guest's.
func (s *OverlayService) ShowLowerThird(ctx context.Context, p *model.ShowLowerThirdPayload) (*model.LowerThirdState, error) {
	state := model.LowerThirdState{Visible: true, ShowID: uuid.New()}

	if p.GuestID != nil {
		guest, err := s.guests.GetByID(ctx, *p.GuestID)
		if err != nil {
			return nil, err
		}
		if !guest.IsEnabled {
			return nil, badRequest("GUEST_DISABLED", "This guest is disabled")
		}
		id := guest.ID
		state.GuestID = &id
		state.Title = guest.DisplayName
		state.Subtitle = guest.Subtitle
		state.Avatar = guest.AvatarURL
		state.Accent = guest.AccentColor
	}
	if p.Title != "" {
		state.Title = p.Title
	}
	if p.Subtitle != "" {
		state.Subtitle = p.Subtitle
	}

	if p.ThemeID != nil {
		theme, err := s.themes.GetByID(ctx, *p.ThemeID)
		if err != nil {
			return nil, err
		}
		state.Theme = theme
	}

	duration := s.lowerThirdDuration
	if p.DurationSeconds != nil {
		duration = time.Duration(*p.DurationSeconds) * time.Second
	}

	now := s.now()
	state.ShownAt = &now
	if duration > 0 {
		hideAt := now.Add(duration)
		state.HideAt = &hideAt
	}

	s.publishMu.Lock()
	s.mu.Lock()
	s.lower = state
	s.mu.Unlock()
	publish(s.hub, s.logger, hub.ChannelLower, "lower.show", state)
	s.publishMu.Unlock()

	if duration > 0 {
		task, err := job.NewLowerThirdHideTask(state.ShowID)
		s.schedule(task, err, duration)
	}

	return &state, nil
}

// HideLowerThird hides the lower third. Hiding when nothing is shown is a
// no-op and broadcasts nothing.
func (s *OverlayService) HideLowerThird() *model.LowerThirdState {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	if !s.lower.Visible {
		state := s.lower
		s.mu.Unlock()
		return &state
	}
	showID := s.lower.ShowID
	s.lower = model.LowerThirdState{}
	s.mu.Unlock()

	publish(s.hub, s.logger, hub.ChannelLower, "lower.hide", map[string]uuid.UUID{"show_id": showID})
	return &model.LowerThirdState{}
}

// hideLowerThirdShow hides only if showID is still on screen.
func (s *OverlayService) hideLowerThirdShow(showID uuid.UUID) bool {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	if !s.lower.Visible || s.lower.ShowID != showID {
		s.mu.Unlock()
		return false
	}
	s.lower = model.LowerThirdState{}
	s.mu.Unlock()

	publish(s.hub, s.logger, hub.ChannelLower, "lower.hide", map[string]uuid.UUID{"show_id": showID})
	return true
}

func (s *OverlayService) handleLowerThirdHide(_ context.Context, task *asynq.Task) error {
	payload, err := job.DecodePayload[job.LowerThirdHidePayload](task)
	if err != nil {
		return err
	}

	if s.hideLowerThirdShow(payload.ShowID) {
		s.logger.Debug().Str("show_id", payload.ShowID.String()).Msg("lower third auto-hidden")
	}
	return nil
}
