package job

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Scheduler runs a task after a delay.
//
// JobService is the Redis-backed implementation. LocalScheduler runs tasks
// in-process and is used when Redis is unreachable at boot and in tests.
type Scheduler interface {
	Handle(taskType string, handler asynq.HandlerFunc)
	Schedule(ctx context.Context, task *asynq.Task, delay time.Duration) error
}

// LocalScheduler runs tasks with time.AfterFunc. Pending tasks are lost on
// restart, which only means an overlay stays up until hidden by hand.
type LocalScheduler struct {
	mu       sync.Mutex
	handlers map[string]asynq.HandlerFunc
	timers   map[*time.Timer]struct{}
	stopped  bool
	logger   *zerolog.Logger
}

var _ Scheduler = (*LocalScheduler)(nil)

// NewLocalScheduler returns an empty in-process scheduler.
func NewLocalScheduler(logger *zerolog.Logger) *LocalScheduler {
	return &LocalScheduler{
		handlers: make(map[string]asynq.HandlerFunc),
		timers:   make(map[*time.Timer]struct{}),
		logger:   logger,
	}
}

// Handle registers handler for taskType.
func (s *LocalScheduler) Handle(taskType string, handler asynq.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[taskType] = handler
}

// Schedule runs the handler registered for task after delay.
func (s *LocalScheduler) Schedule(_ context.Context, task *asynq.Task, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return fmt.Errorf("scheduler stopped")
	}

	handler, ok := s.handlers[task.Type()]
	if !ok {
		return fmt.Errorf("no handler registered for %s", task.Type())
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, timer)
		s.mu.Unlock()

		if err := handler(context.Background(), task); err != nil {
			s.logger.Error().Str("task", task.Type()).Err(err).Msg("background task failed")
		}
	})
	s.timers[timer] = struct{}{}

	return nil
}

// Stop cancels every pending task.
func (s *LocalScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for t := range s.timers {
		t.Stop()
	}
	s.timers = map[*time.Timer]struct{}{}
}

// Pending reports how many tasks are waiting to run.
func (s *LocalScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func sprint(args []interface{}) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return strings.Join(parts, " ")
}
