package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	logger := zerolog.Nop()
	s := New(&logger)
	s.Start()
	t.Cleanup(s.Stop)
	return s
}

func TestEveryRuns(t *testing.T) {
	s := newTestScheduler(t)

	var runs atomic.Int32
	if err := s.Every("tick", time.Second, func() { runs.Add(1) }); err != nil {
		t.Fatalf("Every: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if runs.Load() == 0 {
		t.Fatalf("entry never ran")
	}
}

func TestEveryReplacesByName(t *testing.T) {
	s := newTestScheduler(t)

	if err := s.Every("rotation", time.Hour, func() {}); err != nil {
		t.Fatalf("Every: %v", err)
	}
	first := s.Next("rotation")

	if err := s.Every("rotation", 2*time.Hour, func() {}); err != nil {
		t.Fatalf("Every: %v", err)
	}

	if len(s.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(s.entries))
	}
	if !s.Next("rotation").After(first) {
		t.Fatalf("replacement did not take the new interval")
	}
}

func TestEveryRejectsSubSecond(t *testing.T) {
	s := newTestScheduler(t)
	if err := s.Every("fast", 10*time.Millisecond, func() {}); err == nil {
		t.Fatalf("expected error for sub-second interval")
	}
}

func TestRemove(t *testing.T) {
	s := newTestScheduler(t)

	_ = s.Every("rotation", time.Minute, func() {})
	s.Remove("rotation")
	s.Remove("missing")

	if s.Has("rotation") {
		t.Fatalf("entry still present after Remove")
	}
	if !s.Next("rotation").IsZero() {
		t.Fatalf("Next of removed entry should be zero")
	}
}

func TestCronInvalidSpec(t *testing.T) {
	s := newTestScheduler(t)
	if err := s.Cron("bad", "every now and then", func() {}); err == nil {
		t.Fatalf("expected parse error")
	}
}
