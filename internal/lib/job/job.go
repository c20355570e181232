// Package job provides delayed background work using Asynq.
//
// Asynq is a Redis-backed job queue:
//   - Services enqueue tasks (producer) through the Scheduler interface.
//   - The worker server runs the handlers services registered (consumer).
//
// Every task in this application is a "do X later, unless things moved on"
// timer: hide a lower third, finish a countdown, lock quiz answers. Handlers
// therefore re-check the current state before acting.
package job

import (
	"context"
	"time"

	"github.com/deppfellow/obs-live-suite/internal/config"
	"github.com/hibiken/asynq"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// JobService holds the Asynq client (enqueue) and server (worker execution).
//
// Handlers are registered with Handle before Start is called. Registering
// after Start has no effect on the running worker.
type JobService struct {
	// Client is used to enqueue tasks into Redis.
	Client *asynq.Client

	// server runs worker processes that pull tasks from Redis and execute handlers.
	server *asynq.Server

	// mux routes task type -> handler, filled by services at construction.
	mux *asynq.ServeMux

	logger *zerolog.Logger
}

var _ Scheduler = (*JobService)(nil)

// NewJobService creates a JobService configured to use Redis from cfg.
//
// Queue weights favour "critical", where every overlay timer lives: a lower
// third hiding two seconds late is visible on stream.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
			Logger:   newAsynqLogger(logger),
			LogLevel: asynq.WarnLevel,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error().
					Str("task", task.Type()).
					Err(err).
					Msg("background task failed")
			}),
		},
	)

	return &JobService{
		Client: client,
		server: server,
		mux:    asynq.NewServeMux(),
		logger: logger,
	}
}

// Handle registers handler for taskType.
func (j *JobService) Handle(taskType string, handler asynq.HandlerFunc) {
	j.mux.HandleFunc(taskType, handler)
}

// Schedule enqueues task to run after delay.
func (j *JobService) Schedule(ctx context.Context, task *asynq.Task, delay time.Duration) error {
	info, err := j.Client.EnqueueContext(ctx, task, asynq.ProcessIn(delay))
	if err != nil {
		return errors.Wrapf(err, "enqueue %s", task.Type())
	}

	j.logger.Debug().
		Str("task", task.Type()).
		Str("task_id", info.ID).
		Dur("delay", delay).
		Msg("task scheduled")

	return nil
}

// Start starts the background worker server with every registered handler.
// It returns once the workers are running.
func (j *JobService) Start() error {
	j.logger.Info().Msg("Starting background job server")

	if err := j.server.Start(j.mux); err != nil {
		return errors.Wrap(err, "start asynq server")
	}

	return nil
}

// Stop gracefully stops the job server and closes client resources.
func (j *JobService) Stop() {
	j.logger.Info().Msg("Stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Warn().Err(err).Msg("closing asynq client")
	}
}

// asynqLogger routes asynq's internal logging through zerolog.
type asynqLogger struct {
	logger zerolog.Logger
}

func newAsynqLogger(logger *zerolog.Logger) *asynqLogger {
	return &asynqLogger{logger: logger.With().Str("component", "asynq").Logger()}
}

func (l *asynqLogger) Debug(args ...interface{}) { l.logger.Debug().Msg(sprint(args)) }
func (l *asynqLogger) Info(args ...interface{})  { l.logger.Info().Msg(sprint(args)) }
func (l *asynqLogger) Warn(args ...interface{})  { l.logger.Warn().Msg(sprint(args)) }
func (l *asynqLogger) Error(args ...interface{}) { l.logger.Error().Msg(sprint(args)) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.logger.Fatal().Msg(sprint(args)) }
