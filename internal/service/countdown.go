package service

import (
	"context"
	"math"
	"time"

	"github.com/deppfellow/obs-live-suite/internal/hub"
	"github.com/deppfellow/obs-live-suite/internal/lib/job"
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// countdownRun is the countdown as kept in memory. runID changes whenever a
// pending finish task must be ignored.
type countdownRun struct {
	status    model.CountdownStatus
	label     string
	duration  time.Duration
	remaining time.Duration // used while paused or idle
	endsAt    time.Time     // used while running
	runID     uuid.UUID
}

func (s *OverlayService) countdownStateLocked() model.CountdownState {
	c := s.countdown
	state := model.CountdownState{
		Status:          c.status,
		Label:           c.label,
		DurationSeconds: int(c.duration / time.Second),
		RunID:           c.runID,
	}

	remaining := c.remaining
	if c.status == model.CountdownRunning {
		endsAt := c.endsAt
		state.EndsAt = &endsAt
		remaining = c.endsAt.Sub(s.now())
	}
	state.RemainingSeconds = ceilSeconds(remaining)

	return state
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

// StartCountdown (re)starts the countdown from seconds.
func (s *OverlayService) StartCountdown(p *model.StartCountdownPayload) *model.CountdownState {
	duration := time.Duration(p.Seconds) * time.Second

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	s.countdown = countdownRun{
		status:   model.CountdownRunning,
		label:    p.Label,
		duration: duration,
		endsAt:   s.now().Add(duration),
		runID:    uuid.New(),
	}
	state := s.countdownStateLocked()
	s.mu.Unlock()

	s.scheduleFinish(state.RunID, duration)
	publish(s.hub, s.logger, hub.ChannelCountdown, "countdown.start", state)
	return &state
}

// PauseCountdown freezes the remaining time. Only a running countdown can
// be paused.
func (s *OverlayService) PauseCountdown() (*model.CountdownState, error) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	if s.countdown.status != model.CountdownRunning {
		s.mu.Unlock()
		return nil, conflict("COUNTDOWN_NOT_RUNNING", "The countdown is not running")
	}
	s.countdown.remaining = s.countdown.endsAt.Sub(s.now())
	s.countdown.endsAt = time.Time{}
	s.countdown.status = model.CountdownPaused
	s.countdown.runID = uuid.New()
	state := s.countdownStateLocked()
	s.mu.Unlock()

	publish(s.hub, s.logger, hub.ChannelCountdown, "countdown.pause", state)
	return &state, nil
}

// ResumeCountdown continues a paused countdown.
func (s *OverlayService) ResumeCountdown() (*model.CountdownState, error) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	if s.countdown.status != model.CountdownPaused {
		s.mu.Unlock()
		return nil, conflict("COUNTDOWN_NOT_PAUSED", "The countdown is not paused")
	}
	remaining := s.countdown.remaining
	s.countdown.endsAt = s.now().Add(remaining)
	s.countdown.remaining = 0
	s.countdown.status = model.CountdownRunning
	s.countdown.runID = uuid.New()
	state := s.countdownStateLocked()
	s.mu.Unlock()

	s.scheduleFinish(state.RunID, remaining)
	publish(s.hub, s.logger, hub.ChannelCountdown, "countdown.resume", state)
	return &state, nil
}

// ResetCountdown stops the countdown and rewinds it to its full duration.
func (s *OverlayService) ResetCountdown() *model.CountdownState {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	s.countdown = countdownRun{
		status:    model.CountdownIdle,
		label:     s.countdown.label,
		duration:  s.countdown.duration,
		remaining: s.countdown.duration,
		runID:     uuid.New(),
	}
	state := s.countdownStateLocked()
	s.mu.Unlock()

	publish(s.hub, s.logger, hub.ChannelCountdown, "countdown.reset", state)
	return &state
}

// AddCountdown adds seconds (negative removes) to a running or paused
// countdown. Reaching zero finishes it.
func (s *OverlayService) AddCountdown(p *model.AddCountdownPayload) (*model.CountdownState, error) {
	delta := time.Duration(p.Seconds) * time.Second
	now := s.now()

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	c := &s.countdown

	var reschedule time.Duration
	switch c.status {
	case model.CountdownRunning:
		c.endsAt = c.endsAt.Add(delta)
		reschedule = c.endsAt.Sub(now)
	case model.CountdownPaused:
		c.remaining += delta
	default:
		s.mu.Unlock()
		return nil, conflict("COUNTDOWN_NOT_ACTIVE", "The countdown is not running or paused")
	}

	c.duration += delta
	if c.duration < 0 {
		c.duration = 0
	}
	c.runID = uuid.New()

	finished := (c.status == model.CountdownRunning && reschedule <= 0) ||
		(c.status == model.CountdownPaused && c.remaining <= 0)
	if finished {
		c.status = model.CountdownFinished
		c.remaining = 0
		c.endsAt = time.Time{}
	}

	state := s.countdownStateLocked()
	running := c.status == model.CountdownRunning
	s.mu.Unlock()

	if finished {
		publish(s.hub, s.logger, hub.ChannelCountdown, "countdown.finish", state)
		return &state, nil
	}
	if running {
		s.scheduleFinish(state.RunID, reschedule)
	}
	publish(s.hub, s.logger, hub.ChannelCountdown, "countdown.add", state)
	return &state, nil
}

func (s *OverlayService) scheduleFinish(runID uuid.UUID, delay time.Duration) {
	task, err := job.NewCountdownFinishTask(runID)
	s.schedule(task, err, delay)
}

// finishCountdown marks runID finished if it is still the running one.
func (s *OverlayService) finishCountdown(runID uuid.UUID) bool {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	if s.countdown.status != model.CountdownRunning || s.countdown.runID != runID {
		s.mu.Unlock()
		return false
	}
	s.countdown.status = model.CountdownFinished
	s.countdown.remaining = 0
	s.countdown.endsAt = time.Time{}
	state := s.countdownStateLocked()
	s.mu.Unlock()

	publish(s.hub, s.logger, hub.ChannelCountdown, "countdown.finish", state)
	return true
}

func (s *OverlayService) handleCountdownFinish(_ context.Context, task *asynq.Task) error {
	payload, err := job.DecodePayload[job.CountdownFinishPayload](task)
	if err != nil {
		return err
	}

	if s.finishCountdown(payload.RunID) {
		s.logger.Debug().Str("run_id", payload.RunID.String()).Msg("countdown finished")
	}
	return nil
}
