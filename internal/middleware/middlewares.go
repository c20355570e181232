package middleware

import (
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Middlewares groups every middleware component so the router receives one
// value.
type Middlewares struct {
	Global          *GlobalMiddlewares
	Auth            *AuthMiddleware
	ContextEnhancer *ContextEnhancer
	Tracing         *TracingMiddleware
	RateLimit       *RateLimitMiddleware
	BodyLimit       *BodyLimitMiddleware
}

// NewMiddlewares builds the middleware set. Tracing degrades to a no-op
// when New Relic is not configured.
func NewMiddlewares(s *server.Server) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		Auth:            NewAuthMiddleware(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		RateLimit:       NewRateLimitMiddleware(s),
		BodyLimit:       NewBodyLimitMiddleware(s),
	}
}
