package service

import (
	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/obs-live-suite/internal/config"
	"github.com/rs/zerolog"
)

// AuthService configures Clerk when a secret key is set. Without one the
// control API is open and the auth middleware lets every request through.
type AuthService struct {
	enabled bool
}

func NewAuthService(cfg config.AuthConfig, logger *zerolog.Logger) *AuthService {
	if !cfg.Enabled() {
		logger.Warn().Msg("auth.secret_key not set, control API runs without authentication")
		return &AuthService{}
	}

	clerk.SetKey(cfg.SecretKey)
	return &AuthService{enabled: true}
}

// Enabled reports whether requests must carry a Clerk session token.
func (s *AuthService) Enabled() bool {
	return s.enabled
}
