// Package server defines the core Server struct that composes the app's main dependencies.
//
// It contains the initialization logic to spin up the HTTP server
// and handles graceful shutdowns.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - database pool
//   - redis client
//   - delayed jobs (asynq, or in-process when Redis is down)
//   - periodic jobs (cron)
//   - the overlay WebSocket hub
//   - the OBS websocket client
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/deppfellow/obs-live-suite/internal/config"
	"github.com/deppfellow/obs-live-suite/internal/database"
	"github.com/deppfellow/obs-live-suite/internal/hub"
	"github.com/deppfellow/obs-live-suite/internal/lib/job"
	"github.com/deppfellow/obs-live-suite/internal/lib/obs"
	"github.com/deppfellow/obs-live-suite/internal/lib/scheduler"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/obs-live-suite/internal/logger"
)

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself.
type Server struct {
	// Config holds all environment/config values for the app.
	Config *config.Config

	// Logger is the application's main structured logger.
	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	LoggerService *loggerPkg.LoggerService

	// DB holds the PostgreSQL pool wrapper.
	DB *database.Database

	// Redis is the Redis client. It stays set even when the boot ping failed
	// so the health check can report it.
	Redis *redis.Client

	// Job is the asynq service, nil when Redis was unreachable at boot.
	Job *job.JobService

	// Scheduler runs delayed tasks: Job when Redis is up, an in-process
	// scheduler otherwise. Services register their handlers on it.
	Scheduler job.Scheduler
	localJobs *job.LocalScheduler

	// Cron runs periodic work (poster rotation, health checks).
	Cron *scheduler.Scheduler

	// Hub fans envelopes out to overlays.
	Hub *hub.Hub

	// OBS is the obs-websocket client.
	OBS *obs.Client

	httpServer *http.Server

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a Server and initializes core dependencies.
//
// It does NOT start anything. Services register job handlers first, then
// StartBackground and Start run the workers and the HTTP server.
//
// A Redis outage at boot is not fatal: delayed jobs fall back to the
// in-process scheduler and the hub delivers locally.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	// This also pings the DB to ensure connectivity.
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	})

	// Hooks instrument Redis operations so they show up in traces.
	if loggerService.GetApplication() != nil {
		redisClient.AddHook(nrredis.NewHook(redisClient.Options()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisUp := true
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisUp = false
		logger.Error().Err(err).Msg("Failed to connect to Redis, continuing with in-process jobs and local hub")
	}

	s := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
		Redis:         redisClient,
		Cron:          scheduler.New(logger),
	}

	if redisUp {
		s.Job = job.NewJobService(logger, cfg)
		s.Scheduler = s.Job
		s.Hub = hub.New(redisClient, hub.Options{}, logger)
	} else {
		s.localJobs = job.NewLocalScheduler(logger)
		s.Scheduler = s.localJobs
		s.Hub = hub.New(nil, hub.Options{}, logger)
	}

	s.OBS = obs.NewClient(obs.Options{
		URL:               cfg.OBS.URL,
		Password:          cfg.OBS.Password,
		RequestTimeout:    cfg.OBS.RequestTimeout,
		ReconnectInterval: cfg.OBS.ReconnectInterval,
		OnEvent:           s.relayOBSEvent,
		OnStatus:          s.relayOBSStatus,
	}, logger)

	return s, nil
}

// relayOBSEvent forwards OBS events to overlays and the admin UI.
func (s *Server) relayOBSEvent(ev obs.Event) {
	if err := s.Hub.Publish(context.Background(), hub.ChannelSystem, "obs.event", ev); err != nil {
		s.Logger.Warn().Err(err).Str("event", ev.EventType).Msg("failed to relay OBS event")
	}
}

func (s *Server) relayOBSStatus(st obs.Status) {
	if err := s.Hub.Publish(context.Background(), hub.ChannelSystem, "obs.status", st); err != nil {
		s.Logger.Warn().Err(err).Msg("failed to relay OBS status")
	}
}

// StartBackground starts job workers, cron, the hub relay and, when
// configured, the OBS reconnect loop. Job handlers must be registered first.
func (s *Server) StartBackground() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	if s.Job != nil {
		if err := s.Job.Start(); err != nil {
			cancel()
			return err
		}
	}

	s.Cron.Start()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Hub.Run(ctx); err != nil {
			s.Logger.Error().Err(err).Msg("hub redis relay stopped")
		}
	}()

	if s.Config.OBS.AutoConnect {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.OBS.Run(ctx)
		}()
	}

	return nil
}

// SetupHTTPServer configures the internal net/http server.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:    ":" + s.Config.Server.Port,
		Handler: handler,

		// Config stores int values, interpreted here as seconds.
		ReadTimeout: time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		// WebSocket connections are hijacked, so WriteTimeout only bounds
		// regular responses.
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and its dependencies, in
// reverse start order.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.cancel != nil {
		s.cancel()
	}
	s.Hub.Close()
	s.OBS.Close()
	s.Cron.Stop()
	s.wg.Wait()

	if s.Job != nil {
		s.Job.Stop()
	}
	if s.localJobs != nil {
		s.localJobs.Stop()
	}

	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	if err := s.Redis.Close(); err != nil {
		s.Logger.Warn().Err(err).Msg("closing redis client")
	}

	return nil
}
