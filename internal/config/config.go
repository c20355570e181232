// Package config manages environment variables.
//
// It reads variables from the `.env` file,
// loads them into structured Go types (struct), and
// validates that required values are present so they
// can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (obs, media, overlay,
//     quiz, observability).
package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

/*
	Env vars are read using the prefix OBSLIVE_.
	Keys are lowercased with the prefix removed, and "." is the nesting
	delimiter:

		OBSLIVE_SERVER.PORT      -> server.port      -> Config.Server.Port
		OBSLIVE_OBS.URL          -> obs.url          -> Config.OBS.URL
		OBSLIVE_MEDIA.ASSETS_DIR -> media.assets_dir -> Config.Media.AssetsDir
*/

// EnvPrefix is the prefix every environment variable read by the app carries.
const EnvPrefix = "OBSLIVE_"

// ServiceName tags logs, traces and New Relic events.
const ServiceName = "obs-live-suite"

// Config is the root configuration object for the application.
//
// Pointer blocks are optional. When absent they are replaced with defaults
// in LoadConfig.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth"`
	OBS           *OBSConfig           `koanf:"obs"`
	Media         *MediaConfig         `koanf:"media"`
	Overlay       *OverlayConfig       `koanf:"overlay"`
	Quiz          *QuizConfig          `koanf:"quiz"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
	// RateLimit is requests per second per client IP, RateBurst the burst
	// allowed above it.
	RateLimit float64 `koanf:"rate_limit" validate:"min=0"`
	RateBurst int     `koanf:"rate_burst" validate:"min=0"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig contains Redis connection details.
// Address is "host:port". Redis backs the job queue and the hub fan-out.
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig stores authentication-related secrets.
//
// SecretKey is the Clerk secret key. When it is empty the API runs without
// authentication, which is the common setup for a control panel reachable
// only from the streaming machine.
type AuthConfig struct {
	SecretKey string `koanf:"secret_key"`
}

// Enabled reports whether Clerk authentication should guard the API.
func (a AuthConfig) Enabled() bool {
	return a.SecretKey != ""
}

// OBSConfig describes how to reach obs-websocket (v5).
//
// These values are the boot defaults. The operator can override URL and
// password at runtime through the "obs" setting.
type OBSConfig struct {
	URL               string        `koanf:"url" validate:"required,url"`
	Password          string        `koanf:"password"`
	ReconnectInterval time.Duration `koanf:"reconnect_interval" validate:"min=1s"`
	RequestTimeout    time.Duration `koanf:"request_timeout" validate:"min=100ms"`
	AutoConnect       bool          `koanf:"auto_connect"`
}

// MediaConfig controls the asset library (posters, avatars, media files).
type MediaConfig struct {
	AssetsDir      string `koanf:"assets_dir" validate:"required"`
	WatchEnabled   bool   `koanf:"watch_enabled"`
	MaxUploadBytes int64  `koanf:"max_upload_bytes" validate:"min=1"`
}

// OverlayConfig holds overlay behaviour defaults.
type OverlayConfig struct {
	// LowerThirdDuration is how long a lower third stays on screen when the
	// request does not say. Zero keeps it until hidden.
	LowerThirdDuration time.Duration `koanf:"lower_third_duration" validate:"min=0"`
}

// QuizConfig holds quiz defaults.
type QuizConfig struct {
	// DefaultTimeLimit applies to questions stored without a time limit.
	// Zero leaves them untimed.
	DefaultTimeLimit time.Duration `koanf:"default_time_limit" validate:"min=0"`
}

// DefaultOBSConfig targets a local OBS with obs-websocket on its default port.
func DefaultOBSConfig() *OBSConfig {
	return &OBSConfig{
		URL:               "ws://127.0.0.1:4455",
		ReconnectInterval: 5 * time.Second,
		RequestTimeout:    5 * time.Second,
		AutoConnect:       true,
	}
}

// DefaultMediaConfig stores assets next to the binary.
func DefaultMediaConfig() *MediaConfig {
	return &MediaConfig{
		AssetsDir:      "data/assets",
		WatchEnabled:   true,
		MaxUploadBytes: 50 << 20,
	}
}

// DefaultOverlayConfig keeps lower thirds on screen for eight seconds.
func DefaultOverlayConfig() *OverlayConfig {
	return &OverlayConfig{LowerThirdDuration: 8 * time.Second}
}

// DefaultQuizConfig leaves questions untimed.
func DefaultQuizConfig() *QuizConfig {
	return &QuizConfig{}
}

// applyDefaults fills every optional block that was not provided.
func (c *Config) applyDefaults() {
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 20
	}
	if c.Server.RateBurst == 0 {
		c.Server.RateBurst = 40
	}
	if c.OBS == nil {
		c.OBS = DefaultOBSConfig()
	}
	if c.OBS.ReconnectInterval == 0 {
		c.OBS.ReconnectInterval = DefaultOBSConfig().ReconnectInterval
	}
	if c.OBS.RequestTimeout == 0 {
		c.OBS.RequestTimeout = DefaultOBSConfig().RequestTimeout
	}
	if c.Media == nil {
		c.Media = DefaultMediaConfig()
	}
	if c.Media.MaxUploadBytes == 0 {
		c.Media.MaxUploadBytes = DefaultMediaConfig().MaxUploadBytes
	}
	if c.Overlay == nil {
		c.Overlay = DefaultOverlayConfig()
	}
	if c.Quiz == nil {
		c.Quiz = DefaultQuizConfig()
	}
	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}

	// Service name is fixed; environment always follows primary.env so
	// logs and traces agree.
	c.Observability.ServiceName = ServiceName
	c.Observability.Environment = c.Primary.Env
}

// Load reads the environment into a Config, applies defaults and validates
// it. It returns an error instead of exiting so callers (and tests) decide.
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not load env variables")
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, errors.Wrap(err, "could not unmarshal main config")
	}

	mainConfig.applyDefaults()

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid observability config")
	}

	return mainConfig, nil
}

// LoadConfig loads configuration and exits the process on any failure.
//
// It is the entry point used by the binary: a control panel that starts with
// a broken config is worse than one that refuses to start.
func LoadConfig() *Config {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Could not load config.")
	}

	return cfg
}
