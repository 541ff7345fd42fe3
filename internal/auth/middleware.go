package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// SessionChecker resolves a session ID to the user who owns it.
// A zero user ID means the session does not exist or has expired.
type SessionChecker interface {
	SessionUserID(ctx context.Context, sessionID string) (int64, error)
}

// Middleware returns an Echo middleware that requires both a valid access
// token and a live session belonging to the same user. The token comes from
// the Authorization header ("Bearer <token>") or the "token" query parameter;
// the session ID comes from the X-Session-Id header or the "session_id"
// query parameter. Query fallbacks exist for redirect-driven clients that
// cannot set headers. On success it sets "user_id" and "session_id" in the
// Echo context.
func Middleware(ts *TokenService, sessions SessionChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := requestToken(c)
			if token == "" {
				return unauthorized(c, "AUTH_REQUIRED", "authentication required")
			}
			claims, err := ts.ValidateAccessToken(token)
			if err != nil {
				return unauthorized(c, "INVALID_TOKEN", "invalid or expired token")
			}

			sessionID := requestSessionID(c)
			if sessionID == "" {
				return unauthorized(c, "AUTH_REQUIRED", "session required")
			}
			userID, err := sessions.SessionUserID(c.Request().Context(), sessionID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, errorEnvelope("INTERNAL", "could not verify session"))
			}
			if userID == 0 {
				return unauthorized(c, "INVALID_SESSION", "session expired or revoked")
			}
			if userID != claims.UserID {
				return unauthorized(c, "INVALID_SESSION", "session does not match token")
			}

			c.Set("user_id", claims.UserID)
			c.Set("session_id", sessionID)
			return next(c)
		}
	}
}

func requestToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if token, found := strings.CutPrefix(header, "Bearer "); found && token != "" {
		return token
	}
	return c.QueryParam("token")
}

func requestSessionID(c echo.Context) string {
	if id := c.Request().Header.Get("X-Session-Id"); id != "" {
		return id
	}
	return c.QueryParam("session_id")
}

func unauthorized(c echo.Context, code, message string) error {
	return c.JSON(http.StatusUnauthorized, errorEnvelope(code, message))
}

// errorEnvelope mirrors the api package's error shape. Declared here because
// api imports auth.
func errorEnvelope(code, message string) map[string]any {
	return map[string]any{
		"error": map[string]string{"code": code, "message": message},
	}
}

// GetUserID extracts the authenticated user ID from the Echo context.
func GetUserID(c echo.Context) int64 {
	return c.Get("user_id").(int64)
}

// GetSessionID extracts the session ID from the Echo context.
func GetSessionID(c echo.Context) string {
	return c.Get("session_id").(string)
}
