package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/obs-live-suite/internal/config"
	"github.com/deppfellow/obs-live-suite/internal/hub"
)

type recordedEvents struct {
	events []map[string]interface{}
}

func (r *recordedEvents) RecordEvent(_ string, params map[string]interface{}) {
	r.events = append(r.events, params)
}

func healthConfig(checks ...string) config.HealthChecksConfig {
	return config.HealthChecksConfig{
		Enabled:  true,
		Interval: 30 * time.Second,
		Timeout:  time.Second,
		Checks:   checks,
	}
}

func passing(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("down") }

func TestHealthOptionalFailureDegrades(t *testing.T) {
	events := &recordedEvents{}
	svc := NewHealthService("local", healthConfig("database", "redis"), []HealthCheck{
		{Name: "database", Critical: true, Run: passing},
		{Name: "redis", Run: failing},
	}, func() hub.Stats { return hub.Stats{Clients: 2} }, events, testLogger())

	report := svc.Check(context.Background())
	if report.Status != HealthStatusDegraded || !report.Healthy() {
		t.Fatalf("status = %s", report.Status)
	}
	if report.Checks["redis"].Error != "down" {
		t.Fatalf("checks = %+v", report.Checks)
	}
	if report.Hub == nil || report.Hub.Clients != 2 {
		t.Fatalf("hub stats = %+v", report.Hub)
	}
	if len(events.events) != 1 || events.events[0]["check_type"] != "redis" {
		t.Fatalf("events = %+v", events.events)
	}
	if svc.Last() != report {
		t.Fatalf("Last should return the latest report")
	}
}

func TestHealthCriticalFailure(t *testing.T) {
	svc := NewHealthService("local", healthConfig("database"), []HealthCheck{
		{Name: "database", Critical: true, Run: failing},
	}, nil, nil, testLogger())

	report := svc.Check(context.Background())
	if report.Healthy() {
		t.Fatalf("status = %s", report.Status)
	}
}

func TestHealthSkipsDisabledChecks(t *testing.T) {
	svc := NewHealthService("local", healthConfig("database"), []HealthCheck{
		{Name: "database", Critical: true, Run: passing},
		{Name: "obs", Run: failing},
	}, nil, nil, testLogger())

	report := svc.Check(context.Background())
	if _, ok := report.Checks["obs"]; ok || report.Status != HealthStatusHealthy {
		t.Fatalf("report = %+v", report)
	}
}

func TestHealthCheckTimeout(t *testing.T) {
	svc := NewHealthService("local", healthConfig("database"), []HealthCheck{
		{Name: "database", Critical: true, Run: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}},
	}, nil, nil, testLogger())

	start := time.Now()
	report := svc.Check(context.Background())
	if report.Healthy() || time.Since(start) > 3*time.Second {
		t.Fatalf("timeout not applied: %+v", report)
	}
}

func TestHealthStartPeriodic(t *testing.T) {
	periodic := newFakePeriodic()

	svc := NewHealthService("local", healthConfig("database"), []HealthCheck{
		{Name: "database", Critical: true, Run: passing},
	}, nil, nil, testLogger())
	if err := svc.StartPeriodic(periodic); err != nil {
		t.Fatalf("StartPeriodic: %v", err)
	}
	periodic.tick(t, "health-checks")
	if svc.Last() == nil {
		t.Fatalf("periodic check did not run")
	}

	disabled := healthConfig("database")
	disabled.Enabled = false
	off := NewHealthService("local", disabled, nil, nil, nil, testLogger())
	other := newFakePeriodic()
	if err := off.StartPeriodic(other); err != nil || other.Has("health-checks") {
		t.Fatalf("disabled health checks were scheduled")
	}
}
