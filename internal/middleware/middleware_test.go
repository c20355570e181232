package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/obs-live-suite/internal/config"
	"github.com/deppfellow/obs-live-suite/internal/errs"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newTestServer() *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Server: config.ServerConfig{
				CORSAllowedOrigins: []string{"*"},
				RateLimit:          1,
				RateBurst:          1,
			},
			Media: &config.MediaConfig{MaxUploadBytes: 10},
		},
		Logger: &logger,
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()

	var body errs.HTTPError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestRequestIDGeneratedAndReused(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(RequestIDHeader)
	if generated == "" || rec.Body.String() != generated {
		t.Fatalf("generated id header %q body %q", generated, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("incoming id not reused: %q", rec.Header().Get(RequestIDHeader))
	}
}

func TestGlobalErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "http error",
			err:        errs.NewConflictError("busy", true, nil),
			wantStatus: http.StatusConflict,
			wantCode:   "CONFLICT",
		},
		{
			name:       "no rows",
			err:        pgx.ErrNoRows,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "echo error",
			err:        echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"),
			wantStatus: http.StatusMethodNotAllowed,
			wantCode:   "METHOD_NOT_ALLOWED",
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	global := NewGlobalMiddlewares(newTestServer())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			global.GlobalErrorHandler(tt.err, c)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if body := decodeError(t, rec); body.Code != tt.wantCode {
				t.Fatalf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

func TestGlobalErrorHandlerRouteNotFound(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(newTestServer()).GlobalErrorHandler

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Message != "Route not found" {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestRequireAuthPassesThroughWhenDisabled(t *testing.T) {
	auth := NewAuthMiddleware(newTestServer())

	called := false
	h := auth.RequireAuth(func(c echo.Context) error {
		called = true
		return nil
	})

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("handler not called with auth disabled")
	}
}

func TestBodyLimitRejectsDeclaredLength(t *testing.T) {
	s := newTestServer()
	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	e.POST("/upload", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, NewBodyLimitMiddleware(s).Upload())

	body := strings.Repeat("x", multipartOverhead+11)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(body)))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("small")))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("small body status = %d", rec.Code)
	}
}

func TestRateLimitDenies(t *testing.T) {
	s := newTestServer()
	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	e.Use(NewRateLimitMiddleware(s).Limit())
	e.GET("/api", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	statuses := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api", nil))
		statuses = append(statuses, rec.Code)
	}

	if statuses[0] != http.StatusNoContent {
		t.Fatalf("first request status = %d", statuses[0])
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Fatalf("statuses = %v, want a 429 once the burst is spent", statuses)
	}
}

func TestGetLoggerFallsBackToNop(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if GetLogger(c) == nil {
		t.Fatalf("GetLogger returned nil")
	}
	if LoggerFromContext(c.Request().Context()) == nil {
		t.Fatalf("LoggerFromContext returned nil")
	}
}
