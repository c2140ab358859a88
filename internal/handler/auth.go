package handler

import (
	"context"  // context with cancellation for storage calls
	"errors"   // errors.Is comparisons against sentinel values
	"net/http" // HTTP status codes and primitives
	"time"     // timeouts for storage calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/v4entertainments/ticket-checkin/internal/session"
)

// AuthHandler bundles the session store for login/logout endpoints.
type AuthHandler struct {
	Sessions *session.Store
}

func NewAuthHandler(sessions *session.Store) *AuthHandler {
	if sessions == nil {
		panic("nil session store passed to NewAuthHandler")
	}
	return &AuthHandler{Sessions: sessions}
}

// sessionResp is the wire shape of a staff session.
type sessionResp struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
	StaffID     string    `json:"staffId"`
	StaffName   string    `json:"staffName"`
	EventID     string    `json:"eventId"`
	EventName   string    `json:"eventName"`
	Permissions []string  `json:"permissions"`
}

func toSessionResp(s *session.StaffSession) sessionResp {
	perms := s.Permissions
	if perms == nil {
		perms = []string{}
	}
	return sessionResp{
		Token:       s.Token,
		ExpiresAt:   s.ExpiresAt,
		StaffID:     s.StaffID,
		StaffName:   s.StaffName,
		EventID:     s.EventID,
		EventName:   s.EventName,
		Permissions: perms,
	}
}

// Login handles POST /v1/auth/login.  It exchanges staff credentials plus an
// event selection for a station session.  The new session replaces any prior
// one.
func (h *AuthHandler) Login(c echo.Context) error {
	var creds session.Credentials
	if err := c.Bind(&creds); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if creds.Email == "" || creds.Password == "" || creds.EventID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and event_id are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Sessions.Login(ctx, creds)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		if errors.Is(err, session.ErrEventNotAssigned) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not assigned to this event"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	return c.JSON(http.StatusOK, toSessionResp(s))
}

// Logout handles POST /v1/auth/logout.  Idempotent: logging out with no
// session is still a 204.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Sessions.Logout(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Session handles GET /v1/auth/session.  It re-reads durable storage first
// so a session replaced by another process (or a rehydrated one after a
// restart) is picked up, then reports the live session or 401.
func (h *AuthHandler) Session(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Sessions.Refresh(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session read failed"})
	}
	s := h.Sessions.Current()
	if s == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no active session"})
	}
	return c.JSON(http.StatusOK, toSessionResp(s))
}
