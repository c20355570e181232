package middleware

import (
	"fmt"
	"net/http"

	"github.com/deppfellow/obs-live-suite/internal/errs"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/labstack/echo/v4"
)

// multipartOverhead covers boundaries and part headers around the file.
const multipartOverhead = 1 << 20

// defaultJSONBodyLimit caps JSON bodies on the rest of the API.
const defaultJSONBodyLimit = 1 << 20

// BodyLimitMiddleware caps request bodies per route group.
type BodyLimitMiddleware struct {
	server *server.Server
}

func NewBodyLimitMiddleware(s *server.Server) *BodyLimitMiddleware {
	return &BodyLimitMiddleware{server: s}
}

// JSON limits request bodies on regular API routes.
func (b *BodyLimitMiddleware) JSON() echo.MiddlewareFunc {
	return limitBody(defaultJSONBodyLimit)
}

// Upload limits multipart uploads to the configured asset size.
func (b *BodyLimitMiddleware) Upload() echo.MiddlewareFunc {
	return limitBody(b.server.Config.Media.MaxUploadBytes + multipartOverhead)
}

// limitBody rejects requests whose declared length exceeds limit and caps
// the body reader for chunked requests.
func limitBody(limit int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.ContentLength > limit {
				return errs.NewPayloadTooLargeError(fmt.Sprintf("Request body exceeds %d bytes", limit))
			}

			req.Body = http.MaxBytesReader(c.Response(), req.Body, limit)
			return next(c)
		}
	}
}
