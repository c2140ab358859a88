package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/v4entertainments/ticket-checkin/internal/session"
)

// RequireSession returns a middleware that enforces a live station session
// and, when a permission name is given, that the session carries it.  The
// JWT middleware authenticates the token; this middleware additionally
// rejects requests once the session has been logged out or has expired,
// which a still-valid token cannot convey on its own.
func RequireSession(store *session.Store, permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := store.Current()
			if s == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired"})
			}
			if permission != "" && !hasPermission(s, permission) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// hasPermission reports whether the session grants the named permission.
func hasPermission(s *session.StaffSession, name string) bool {
	for _, p := range s.Permissions {
		if p == name {
			return true
		}
	}
	return false
}
