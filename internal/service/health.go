package service

import (
	"context"
	"sync"
	"time"

	"github.com/deppfellow/obs-live-suite/internal/config"
	"github.com/deppfellow/obs-live-suite/internal/hub"
	"github.com/rs/zerolog"
)

const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
	// HealthStatusDegraded means an optional dependency is down.
	HealthStatusDegraded = "degraded"
)

// CheckFunc checks one dependency.
type CheckFunc func(ctx context.Context) error

// HealthCheck is a named check. Only critical checks make the service
// unhealthy.
type HealthCheck struct {
	Name     string
	Critical bool
	Run      CheckFunc
}

// EventRecorder records custom APM events. *logger.LoggerService satisfies it.
type EventRecorder interface {
	RecordEvent(eventType string, params map[string]interface{})
}

// CheckResult is the outcome of one dependency check.
type CheckResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// HealthReport is the body of /status.
type HealthReport struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]CheckResult `json:"checks"`
	Hub         *hub.Stats             `json:"hub,omitempty"`
}

// Healthy is false only when a critical check failed.
func (r *HealthReport) Healthy() bool {
	return r.Status != HealthStatusUnhealthy
}

// HealthService checks the database, Redis and OBS.
type HealthService struct {
	environment string
	cfg         config.HealthChecksConfig
	checks      []HealthCheck
	stats       func() hub.Stats
	events      EventRecorder
	logger      *zerolog.Logger

	mu   sync.RWMutex
	last *HealthReport
}

// NewHealthService keeps only the checks enabled in cfg.Checks.
func NewHealthService(environment string, cfg config.HealthChecksConfig, checks []HealthCheck, stats func() hub.Stats, events EventRecorder, logger *zerolog.Logger) *HealthService {
	enabled := make(map[string]bool, len(cfg.Checks))
	for _, name := range cfg.Checks {
		enabled[name] = true
	}

	s := &HealthService{
		environment: environment,
		cfg:         cfg,
		stats:       stats,
		events:      events,
		logger:      logger,
	}
	for _, c := range checks {
		if enabled[c.Name] {
			s.checks = append(s.checks, c)
		}
	}
	return s
}

// Check runs every enabled check and stores the report for Last.
func (s *HealthService) Check(ctx context.Context) *HealthReport {
	start := time.Now()

	report := &HealthReport{
		Status:      HealthStatusHealthy,
		Timestamp:   start.UTC(),
		Environment: s.environment,
		Checks:      make(map[string]CheckResult, len(s.checks)),
	}

	for _, c := range s.checks {
		result := s.run(ctx, c)
		report.Checks[c.Name] = result

		if result.Status == HealthStatusHealthy {
			continue
		}
		if c.Critical {
			report.Status = HealthStatusUnhealthy
		} else if report.Status == HealthStatusHealthy {
			report.Status = HealthStatusDegraded
		}
	}

	if s.stats != nil {
		stats := s.stats()
		report.Hub = &stats
	}

	if !report.Healthy() {
		s.logger.Warn().Dur("total_duration", time.Since(start)).Msg("health check failed")
		s.record(map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})
	}

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	return report
}

func (s *HealthService) run(ctx context.Context, c HealthCheck) CheckResult {
	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := c.Run(ctx)
	elapsed := time.Since(start)

	if err != nil {
		s.logger.Error().
			Err(err).
			Str("check", c.Name).
			Dur("response_time", elapsed).
			Msg("health check failed")

		s.record(map[string]interface{}{
			"check_type":       c.Name,
			"operation":        "health_check",
			"error_type":       c.Name + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})

		return CheckResult{Status: HealthStatusUnhealthy, ResponseTime: elapsed.String(), Error: err.Error()}
	}

	s.logger.Debug().Str("check", c.Name).Dur("response_time", elapsed).Msg("health check passed")
	return CheckResult{Status: HealthStatusHealthy, ResponseTime: elapsed.String()}
}

func (s *HealthService) record(params map[string]interface{}) {
	if s.events != nil {
		s.events.RecordEvent("HealthCheckError", params)
	}
}

// Last returns the most recent report, nil before the first check.
func (s *HealthService) Last() *HealthReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// StartPeriodic runs Check on the configured interval.
func (s *HealthService) StartPeriodic(periodic Periodic) error {
	if !s.cfg.Enabled {
		return nil
	}
	return periodic.Every("health-checks", s.cfg.Interval, func() {
		s.Check(context.Background())
	})
}
