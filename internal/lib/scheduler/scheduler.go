// Package scheduler runs periodic in-process work on robfig/cron.
//
// Entries are named. Adding an entry under an existing name replaces it, so
// callers can re-schedule (e.g. a new poster rotation interval) without
// tracking cron entry ids.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler runs named periodic jobs on a cron.
type Scheduler struct {
	cron    *cron.Cron
	mu      sync.Mutex
	entries map[string]cron.EntryID
	logger  *zerolog.Logger
}

// New builds a stopped scheduler.
func New(logger *zerolog.Logger) *Scheduler {
	l := logger.With().Str("component", "scheduler").Logger()

	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cronLogger{&l})),
		),
		entries: make(map[string]cron.EntryID),
		logger:  &l,
	}
}

// Every runs fn every interval under name. Intervals below one second are
// rejected because the cron parser works in seconds.
func (s *Scheduler) Every(name string, interval time.Duration, fn func()) error {
	if interval < time.Second {
		return fmt.Errorf("interval %s for %q is below one second", interval, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(name)
	s.entries[name] = s.cron.Schedule(cron.Every(interval), cron.FuncJob(fn))

	s.logger.Debug().Str("entry", name).Dur("interval", interval).Msg("entry scheduled")
	return nil
}

// Cron runs fn on a cron spec (with seconds field) under name.
func (s *Scheduler) Cron(name, spec string, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(name)
	id, err := s.cron.AddFunc(spec, fn)
	if err != nil {
		return fmt.Errorf("invalid cron spec for %q: %w", name, err)
	}
	s.entries[name] = id

	return nil
}

// Remove deletes the entry under name. Unknown names are ignored.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(name)
}

// Has reports whether an entry exists under name.
func (s *Scheduler) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[name]
	return ok
}

// Next returns the next run time of name, zero when it does not exist.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entries[name]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

func (s *Scheduler) removeLocked(name string) {
	if id, ok := s.entries[name]; ok {
		s.cron.Remove(id)
		delete(s.entries, name)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger *zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
