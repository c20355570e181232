package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	required := map[string]string{
		"OBSLIVE_PRIMARY.ENV":                 "local",
		"OBSLIVE_SERVER.PORT":                 "8080",
		"OBSLIVE_SERVER.READ_TIMEOUT":         "30",
		"OBSLIVE_SERVER.WRITE_TIMEOUT":        "30",
		"OBSLIVE_SERVER.IDLE_TIMEOUT":         "60",
		"OBSLIVE_SERVER.CORS_ALLOWED_ORIGINS": "http://localhost:3000",
		"OBSLIVE_DATABASE.HOST":               "localhost",
		"OBSLIVE_DATABASE.PORT":               "5432",
		"OBSLIVE_DATABASE.USER":               "postgres",
		"OBSLIVE_DATABASE.PASSWORD":           "postgres",
		"OBSLIVE_DATABASE.NAME":               "obslive",
		"OBSLIVE_DATABASE.SSL_MODE":           "disable",
		"OBSLIVE_DATABASE.MAX_OPEN_CONNS":     "10",
		"OBSLIVE_DATABASE.MAX_IDLE_CONNS":     "5",
		"OBSLIVE_DATABASE.CONN_MAX_LIFETIME":  "300",
		"OBSLIVE_DATABASE.CONN_MAX_IDLE_TIME": "300",
		"OBSLIVE_REDIS.ADDRESS":               "localhost:6379",
	}
	for k, v := range required {
		t.Setenv(k, v)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Observability == nil || cfg.Observability.ServiceName != ServiceName {
		t.Fatalf("observability defaults not applied: %+v", cfg.Observability)
	}
	if cfg.Observability.Environment != "local" {
		t.Fatalf("environment = %q, want local", cfg.Observability.Environment)
	}
	if cfg.OBS.URL != "ws://127.0.0.1:4455" {
		t.Fatalf("obs url = %q", cfg.OBS.URL)
	}
	if cfg.Media.MaxUploadBytes != 50<<20 {
		t.Fatalf("max upload = %d", cfg.Media.MaxUploadBytes)
	}
	if cfg.Overlay.LowerThirdDuration != 8*time.Second {
		t.Fatalf("lower third duration = %s", cfg.Overlay.LowerThirdDuration)
	}
	if cfg.Auth.Enabled() {
		t.Fatalf("auth should be disabled without a secret key")
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OBSLIVE_SERVER.PORT", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected validation error for missing server.port")
	}
}

func TestObservabilityValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ObservabilityConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *ObservabilityConfig) {}},
		{name: "bad level", mutate: func(c *ObservabilityConfig) { c.Logging.Level = "loud" }, wantErr: true},
		{name: "negative threshold", mutate: func(c *ObservabilityConfig) { c.Logging.SlowQueryThreshold = -time.Second }, wantErr: true},
		{name: "unknown check", mutate: func(c *ObservabilityConfig) { c.HealthChecks.Checks = []string{"kafka"} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultObservabilityConfig()
			tt.mutate(c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
