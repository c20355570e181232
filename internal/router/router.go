// Package router builds the Echo instance: global middleware, system
// routes and the /api/v1 groups.
package router

import (
	"github.com/deppfellow/obs-live-suite/internal/handler"
	"github.com/deppfellow/obs-live-suite/internal/middleware"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/deppfellow/obs-live-suite/internal/service"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the echo instance with global middleware, system routes
// and the /api/v1 routes.
func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the request logger and tracing read the request id,
	// and the context logger needs the New Relic transaction.
	router.Use(
		middlewares.RateLimit.Limit(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h, services)

	v1 := router.Group("/api/v1", middlewares.Auth.RequireAuth)
	registerV1Routes(v1, h, middlewares)

	return router
}
