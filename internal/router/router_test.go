package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/deppfellow/obs-live-suite/internal/config"
	"github.com/deppfellow/obs-live-suite/internal/errs"
	"github.com/deppfellow/obs-live-suite/internal/handler"
	"github.com/deppfellow/obs-live-suite/internal/hub"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/deppfellow/obs-live-suite/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	return newTestRouterWithAssets(t, t.TempDir())
}

func newTestRouterWithAssets(t *testing.T, assetsDir string) *echo.Echo {
	t.Helper()

	logger := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server: config.ServerConfig{
				CORSAllowedOrigins: []string{"*"},
				RateLimit:          100,
				RateBurst:          100,
			},
			Media: &config.MediaConfig{AssetsDir: assetsDir, MaxUploadBytes: 1 << 20},
		},
		Logger: &logger,
		Hub:    hub.New(nil, hub.Options{}, &logger),
	}

	services := &service.Services{
		Assets: service.NewAssetService(s.Config.Media.AssetsDir, s.Config.Media.MaxUploadBytes, s.Hub, &logger),
	}

	return NewRouter(s, handler.NewHandlers(s, services), services)
}

func TestRoutesRegistered(t *testing.T) {
	e := newTestRouter(t)

	registered := map[string]bool{}
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	want := []string{
		"GET /status",
		"GET /docs",
		"GET /ws",
		"GET /api/v1/guests",
		"POST /api/v1/guests",
		"DELETE /api/v1/guests/:id",
		"POST /api/v1/profiles/:id/activate",
		"POST /api/v1/overlays/lower/show",
		"POST /api/v1/overlays/countdown/add",
		"POST /api/v1/media/load",
		"POST /api/v1/quiz/answers",
		"GET /api/v1/quiz/leaderboard.csv",
		"POST /api/v1/obs/scene",
		"PUT /api/v1/settings/obs",
		"POST /api/v1/assets",
		"DELETE /api/v1/assets/*",
		"GET /api/v1/actions",
		"POST /api/v1/actions/:action",
	}
	for _, route := range want {
		if !registered[route] {
			t.Errorf("route %q not registered", route)
		}
	}
}

func TestUnknownRouteUsesErrorShape(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}

	var body errs.HTTPError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "NOT_FOUND" || body.Message != "Route not found" {
		t.Fatalf("body = %+v", body)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}
}

func TestAssetsServedStatically(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "logo.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	r := newTestRouterWithAssets(t, dir)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/logo.png", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "png-bytes" {
		t.Fatalf("status = %d body = %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/missing.png", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing asset status = %d", rec.Code)
	}
}
