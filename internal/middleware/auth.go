package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/deppfellow/obs-live-suite/internal/errs"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/labstack/echo/v4"
)

// AuthMiddleware guards /api/v1 with Clerk sessions when auth is configured.
type AuthMiddleware struct {
	server *server.Server
}

func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
	}
}

// RequireAuth validates the Clerk session token in the Authorization header
// and stores user_id, user_role and permissions on the Echo context.
//
// Without a Clerk secret key the API is open and RequireAuth passes every
// request through.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	if !auth.server.Config.Auth.Enabled() {
		return next
	}

	return echo.WrapMiddleware(
		clerkhttp.WithHeaderAuthorization(
			clerkhttp.AuthorizationFailureHandler(http.HandlerFunc(auth.writeUnauthorized))))(
		func(c echo.Context) error {
			start := time.Now()

			claims, ok := clerk.SessionClaimsFromContext(c.Request().Context())
			if !ok {
				auth.server.Logger.Error().
					Str("function", "RequireAuth").
					Str("request_id", GetRequestID(c)).
					Dur("duration", time.Since(start)).
					Msg("could not get session claims from context")

				return errs.NewUnauthorizedError("Unauthorized", false)
			}

			c.Set(UserIDKey, claims.Subject)
			c.Set(UserRoleKey, claims.ActiveOrganizationRole)
			c.Set(PermissionsKey, claims.Claims.ActiveOrganizationPermissions)

			auth.server.Logger.Debug().
				Str("function", "RequireAuth").
				Str("user_id", claims.Subject).
				Str("request_id", GetRequestID(c)).
				Dur("duration", time.Since(start)).
				Msg("user authenticated successfully")

			return next(c)
		})
}

// writeUnauthorized runs outside Echo, so it writes the HTTPError shape
// itself instead of returning it to the global error handler.
func (auth *AuthMiddleware) writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	response := errs.NewUnauthorizedError("Unauthorized", false)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		auth.server.Logger.Error().
			Err(err).
			Str("function", "RequireAuth").
			Msg("failed to write JSON response")
		return
	}

	auth.server.Logger.Warn().
		Str("function", "RequireAuth").
		Str("path", r.URL.Path).
		Msg("rejected request without a valid session token")
}
