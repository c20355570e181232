package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func startWatcher(t *testing.T, dir string, onChange func()) *Watcher {
	t.Helper()

	logger := zerolog.Nop()
	w, err := New(dir, 50*time.Millisecond, onChange, &logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	go w.Run()
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestBurstIsDebounced(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int32
	startWatcher(t, dir, func() { calls.Add(1) })

	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, "poster"+string(rune('a'+i))+".png")
		if err := os.WriteFile(name, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Fatalf("onChange called %d times, want 1", got)
	}
}

func TestNewSubdirectoryIsWatched(t *testing.T) {
	dir := t.TempDir()

	changed := make(chan struct{}, 8)
	startWatcher(t, dir, func() { changed <- struct{}{} })

	sub := filepath.Join(dir, "avatars")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	waitChange(t, changed)

	if err := os.WriteFile(filepath.Join(sub, "ada.png"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitChange(t, changed)
}

func TestCloseIsIdempotent(t *testing.T) {
	w := startWatcher(t, t.TempDir(), func() {})
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestNewMissingDirectory(t *testing.T) {
	logger := zerolog.Nop()
	if _, err := New(filepath.Join(t.TempDir(), "missing"), 0, func() {}, &logger); err == nil {
		t.Fatalf("expected error for a missing directory")
	}
}

func waitChange(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("no change reported")
	}
}
