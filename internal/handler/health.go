package handler

import (
	"net/http"

	"github.com/deppfellow/obs-live-suite/internal/middleware"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/deppfellow/obs-live-suite/internal/service"
	"github.com/labstack/echo/v4"
)

// HealthHandler reports dependency health for monitors and the admin UI.
type HealthHandler struct {
	Handler
	health *service.HealthService
}

func NewHealthHandler(s *server.Server, health *service.HealthService) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
		health:  health,
	}
}

// CheckHealth runs every enabled check. It answers 503 when a critical
// check fails and 200 otherwise, including "degraded".
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	report := h.health.Check(c.Request().Context())

	if !report.Healthy() {
		logger.Warn().Str("status", report.Status).Msg("health check failed")
		return c.JSON(http.StatusServiceUnavailable, report)
	}

	logger.Debug().Str("status", report.Status).Msg("health check passed")
	return c.JSON(http.StatusOK, report)
}
