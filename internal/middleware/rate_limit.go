package middleware

import (
	"time"

	"github.com/deppfellow/obs-live-suite/internal/errs"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
	}
}

// Limit applies a per-IP token bucket using Echo's in-memory store.
// Rejections are answered with 429 and recorded as New Relic events.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	cfg := r.server.Config.Server

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/status"
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.RateLimit),
			Burst:     cfg.RateBurst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewForbiddenError("Could not identify client", false)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			GetLogger(c).Warn().
				Str("ip", identifier).
				Str("path", c.Path()).
				Msg("rate limit exceeded")

			return errs.NewTooManyRequestsError("Too many requests, slow down")
		},
	})
}

func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	r.server.LoggerService.RecordEvent("RateLimitHit", map[string]interface{}{
		"endpoint": endpoint,
	})
}
