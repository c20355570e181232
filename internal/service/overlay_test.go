package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/deppfellow/obs-live-suite/internal/hub"
	"github.com/deppfellow/obs-live-suite/internal/lib/job"
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/google/uuid"
)

type overlayFixture struct {
	svc      *OverlayService
	hub      *fakeHub
	jobs     *fakeJobs
	periodic *fakePeriodic
	now      time.Time
}

func newOverlayFixture(guests []model.Guest, posters []model.Poster) *overlayFixture {
	f := &overlayFixture{
		hub:      &fakeHub{},
		jobs:     newFakeJobs(),
		periodic: newFakePeriodic(),
		now:      time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC),
	}
	f.svc = NewOverlayService(OverlayDeps{
		Guests:             newFakeGuests(guests...),
		Posters:            newFakePosters(posters...),
		Themes:             newFakeThemes(),
		Hub:                f.hub,
		Jobs:               f.jobs,
		Periodic:           f.periodic,
		Logger:             testLogger(),
		LowerThirdDuration: 8 * time.Second,
	})
	f.svc.now = func() time.Time { return f.now }
	return f
}

func intPtr(v int) *int { return &v }

func TestShowLowerThirdGuestAutoHides(t *testing.T) {
	guestID := uuid.New()
	f := newOverlayFixture([]model.Guest{{
		Base:        model.Base{ID: guestID},
		DisplayName: "Ada Lovelace",
		Subtitle:    "Mathematician",
		IsEnabled:   true,
	}}, nil)

	state, err := f.svc.ShowLowerThird(context.Background(), &model.ShowLowerThirdPayload{GuestID: &guestID})
	if err != nil {
		t.Fatalf("ShowLowerThird: %v", err)
	}
	if !state.Visible || state.Title != "Ada Lovelace" || state.Subtitle != "Mathematician" {
		t.Fatalf("state = %+v", state)
	}
	if state.HideAt == nil || !state.HideAt.Equal(f.now.Add(8*time.Second)) {
		t.Fatalf("hide_at = %v", state.HideAt)
	}
	if f.hub.count("lower.show") != 1 {
		t.Fatalf("events = %v", f.hub.types())
	}

	tasks := f.jobs.ofType(job.TaskLowerThirdHide)
	if len(tasks) != 1 || tasks[0].delay != 8*time.Second {
		t.Fatalf("scheduled = %+v", tasks)
	}

	f.jobs.run(t, tasks[0])

	if f.svc.State().LowerThird.Visible {
		t.Fatalf("lower third still visible after hide task")
	}
	if f.hub.count("lower.hide") != 1 {
		t.Fatalf("events = %v", f.hub.types())
	}
}

func TestStaleLowerThirdHideIsIgnored(t *testing.T) {
	f := newOverlayFixture(nil, nil)
	ctx := context.Background()

	if _, err := f.svc.ShowLowerThird(ctx, &model.ShowLowerThirdPayload{Title: "First"}); err != nil {
		t.Fatalf("show first: %v", err)
	}
	second, err := f.svc.ShowLowerThird(ctx, &model.ShowLowerThirdPayload{Title: "Second"})
	if err != nil {
		t.Fatalf("show second: %v", err)
	}

	tasks := f.jobs.ofType(job.TaskLowerThirdHide)
	if len(tasks) != 2 {
		t.Fatalf("scheduled = %d tasks", len(tasks))
	}
	f.jobs.run(t, tasks[0])

	current := f.svc.State().LowerThird
	if !current.Visible || current.ShowID != second.ShowID {
		t.Fatalf("stale hide task hid the current lower third: %+v", current)
	}
	if f.hub.count("lower.hide") != 0 {
		t.Fatalf("events = %v", f.hub.types())
	}
}

func TestShowLowerThirdZeroDurationStays(t *testing.T) {
	f := newOverlayFixture(nil, nil)

	state, err := f.svc.ShowLowerThird(context.Background(), &model.ShowLowerThirdPayload{Title: "Live", DurationSeconds: intPtr(0)})
	if err != nil {
		t.Fatalf("ShowLowerThird: %v", err)
	}
	if state.HideAt != nil {
		t.Fatalf("hide_at = %v, want nil", state.HideAt)
	}
	if len(f.jobs.ofType(job.TaskLowerThirdHide)) != 0 {
		t.Fatalf("no hide task expected")
	}
}

func TestShowLowerThirdDisabledGuest(t *testing.T) {
	guestID := uuid.New()
	f := newOverlayFixture([]model.Guest{{Base: model.Base{ID: guestID}, DisplayName: "Off"}}, nil)

	_, err := f.svc.ShowLowerThird(context.Background(), &model.ShowLowerThirdPayload{GuestID: &guestID})
	assertHTTPError(t, err, http.StatusBadRequest, "GUEST_DISABLED")
}

func TestShowLowerThirdUnknownGuest(t *testing.T) {
	f := newOverlayFixture(nil, nil)
	id := uuid.New()

	_, err := f.svc.ShowLowerThird(context.Background(), &model.ShowLowerThirdPayload{GuestID: &id})
	if err == nil {
		t.Fatalf("expected not found error")
	}
}

func TestHideLowerThirdWhenHiddenBroadcastsNothing(t *testing.T) {
	f := newOverlayFixture(nil, nil)

	state := f.svc.HideLowerThird()
	if state.Visible {
		t.Fatalf("state = %+v", state)
	}
	if len(f.hub.types()) != 0 {
		t.Fatalf("events = %v", f.hub.types())
	}
}

func TestCountdownLifecycle(t *testing.T) {
	f := newOverlayFixture(nil, nil)

	state := f.svc.StartCountdown(&model.StartCountdownPayload{Seconds: 60, Label: "Break"})
	if state.Status != model.CountdownRunning || state.RemainingSeconds != 60 {
		t.Fatalf("start = %+v", state)
	}
	startTasks := f.jobs.ofType(job.TaskCountdownFinish)
	if len(startTasks) != 1 || startTasks[0].delay != 60*time.Second {
		t.Fatalf("scheduled = %+v", startTasks)
	}

	f.now = f.now.Add(10 * time.Second)
	paused, err := f.svc.PauseCountdown()
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if paused.Status != model.CountdownPaused || paused.RemainingSeconds != 50 {
		t.Fatalf("paused = %+v", paused)
	}

	// The finish task of the first run must not end a paused countdown.
	f.jobs.run(t, startTasks[0])
	if f.svc.State().Countdown.Status != model.CountdownPaused {
		t.Fatalf("stale finish task changed the countdown")
	}

	if _, err := f.svc.PauseCountdown(); err == nil {
		t.Fatalf("pausing twice should fail")
	}

	f.now = f.now.Add(time.Hour)
	resumed, err := f.svc.ResumeCountdown()
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.RemainingSeconds != 50 {
		t.Fatalf("resumed = %+v", resumed)
	}

	tasks := f.jobs.ofType(job.TaskCountdownFinish)
	if len(tasks) != 2 || tasks[1].delay != 50*time.Second {
		t.Fatalf("scheduled = %+v", tasks)
	}

	f.now = f.now.Add(50 * time.Second)
	f.jobs.run(t, tasks[1])

	finished := f.svc.State().Countdown
	if finished.Status != model.CountdownFinished || finished.RemainingSeconds != 0 {
		t.Fatalf("finished = %+v", finished)
	}
	if f.hub.count("countdown.finish") != 1 {
		t.Fatalf("events = %v", f.hub.types())
	}
}

func TestCountdownResetKeepsDuration(t *testing.T) {
	f := newOverlayFixture(nil, nil)

	f.svc.StartCountdown(&model.StartCountdownPayload{Seconds: 90})
	f.now = f.now.Add(30 * time.Second)

	state := f.svc.ResetCountdown()
	if state.Status != model.CountdownIdle || state.RemainingSeconds != 90 || state.EndsAt != nil {
		t.Fatalf("reset = %+v", state)
	}
	if _, err := f.svc.ResumeCountdown(); err == nil {
		t.Fatalf("resume after reset should fail")
	}
}

func TestCountdownAdd(t *testing.T) {
	f := newOverlayFixture(nil, nil)

	_, err := f.svc.AddCountdown(&model.AddCountdownPayload{Seconds: 10})
	assertHTTPError(t, err, http.StatusConflict, "COUNTDOWN_NOT_ACTIVE")

	f.svc.StartCountdown(&model.StartCountdownPayload{Seconds: 30})

	state, err := f.svc.AddCountdown(&model.AddCountdownPayload{Seconds: 15})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if state.RemainingSeconds != 45 || state.DurationSeconds != 45 {
		t.Fatalf("after add = %+v", state)
	}

	state, err = f.svc.AddCountdown(&model.AddCountdownPayload{Seconds: -60})
	if err != nil {
		t.Fatalf("subtract: %v", err)
	}
	if state.Status != model.CountdownFinished {
		t.Fatalf("subtracting past zero should finish: %+v", state)
	}
}

func posterFixture() []model.Poster {
	return []model.Poster{
		{Base: model.Base{ID: uuid.New()}, Title: "One", Kind: model.PosterKindImage, IsEnabled: true},
		{Base: model.Base{ID: uuid.New()}, Title: "Two", Kind: model.PosterKindImage, IsEnabled: true},
		{Base: model.Base{ID: uuid.New()}, Title: "Off", Kind: model.PosterKindImage},
	}
}

func TestShowPosterDisabled(t *testing.T) {
	posters := posterFixture()
	f := newOverlayFixture(nil, posters)

	_, err := f.svc.ShowPoster(context.Background(), posters[2].ID)
	assertHTTPError(t, err, http.StatusBadRequest, "POSTER_DISABLED")

	state, err := f.svc.ShowPoster(context.Background(), posters[1].ID)
	if err != nil {
		t.Fatalf("ShowPoster: %v", err)
	}
	if !state.Visible || state.Poster.ID != posters[1].ID {
		t.Fatalf("state = %+v", state)
	}
}

func TestNextPosterWithoutPosters(t *testing.T) {
	f := newOverlayFixture(nil, nil)

	_, err := f.svc.NextPoster(context.Background())
	assertHTTPError(t, err, http.StatusConflict, "NO_POSTERS")
}

func TestPosterRotationCyclesEnabledPosters(t *testing.T) {
	posters := posterFixture()
	f := newOverlayFixture(nil, posters)

	state, err := f.svc.StartRotation(context.Background(), &model.StartRotationPayload{IntervalSeconds: 10})
	if err != nil {
		t.Fatalf("StartRotation: %v", err)
	}
	if state.Poster.ID != posters[0].ID || state.Rotation == nil || state.Rotation.IntervalSeconds != 10 {
		t.Fatalf("state = %+v", state)
	}
	if f.periodic.jobs[posterRotationJob] != 10*time.Second {
		t.Fatalf("periodic jobs = %+v", f.periodic.jobs)
	}

	f.periodic.tick(t, posterRotationJob)
	if got := f.svc.State().Poster.Poster.ID; got != posters[1].ID {
		t.Fatalf("after first tick poster = %s", got)
	}

	// The disabled poster is skipped and the rotation wraps.
	f.periodic.tick(t, posterRotationJob)
	if got := f.svc.State().Poster.Poster.ID; got != posters[0].ID {
		t.Fatalf("after second tick poster = %s", got)
	}

	stopped := f.svc.StopRotation()
	if stopped.Rotation != nil || f.periodic.Has(posterRotationJob) {
		t.Fatalf("rotation still running")
	}
	if !stopped.Visible {
		t.Fatalf("stopping rotation should keep the poster on screen")
	}
}

func TestPosterRotationFollowsGivenOrder(t *testing.T) {
	posters := posterFixture()
	f := newOverlayFixture(nil, posters)

	_, err := f.svc.StartRotation(context.Background(), &model.StartRotationPayload{
		PosterIDs:       []uuid.UUID{posters[1].ID, posters[2].ID, posters[0].ID},
		IntervalSeconds: 30,
	})
	if err != nil {
		t.Fatalf("StartRotation: %v", err)
	}
	if got := f.svc.State().Poster.Poster.ID; got != posters[1].ID {
		t.Fatalf("first poster = %s", got)
	}

	f.periodic.tick(t, posterRotationJob)
	if got := f.svc.State().Poster.Poster.ID; got != posters[0].ID {
		t.Fatalf("second poster = %s", got)
	}
}

// gateHub holds the first broadcast until release is closed.
type gateHub struct {
	fakeHub
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gateHub) Publish(ctx context.Context, channel hub.Channel, typ string, payload any) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.fakeHub.Publish(ctx, channel, typ, payload)
}

func TestConcurrentLowerThirdShowsBroadcastInStateOrder(t *testing.T) {
	f := newOverlayFixture(nil, nil)
	gate := &gateHub{entered: make(chan struct{}), release: make(chan struct{})}
	f.svc.hub = gate
	ctx := context.Background()

	first := make(chan error, 1)
	go func() {
		_, err := f.svc.ShowLowerThird(ctx, &model.ShowLowerThirdPayload{Title: "A"})
		first <- err
	}()
	<-gate.entered

	second := make(chan error, 1)
	go func() {
		_, err := f.svc.ShowLowerThird(ctx, &model.ShowLowerThirdPayload{Title: "B"})
		second <- err
	}()

	select {
	case <-second:
		t.Fatalf("second show finished while the first broadcast was still pending")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate.release)
	if err := <-first; err != nil {
		t.Fatalf("first show: %v", err)
	}
	if err := <-second; err != nil {
		t.Fatalf("second show: %v", err)
	}

	last, ok := gate.last("lower.show")
	if !ok {
		t.Fatalf("no lower.show broadcast")
	}
	broadcast := last.Payload.(model.LowerThirdState)
	if state := f.svc.State().LowerThird; broadcast.Title != state.Title || state.Title != "B" {
		t.Fatalf("state title = %q, last broadcast title = %q", state.Title, broadcast.Title)
	}
}
