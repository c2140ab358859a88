// Package session owns the station's staff session: the identity every
// check-in is attributed to.  One session is active per process; it is kept
// in memory for reads and mirrored to durable storage so a process restart
// rehydrates it without re-authenticating, until it expires.
package session

import (
	"context"
	"errors"
	"time"
)

// StaffSession carries the authenticated staff identity, the event context
// selected at login, the bearer token issued for the session, and its expiry.
type StaffSession struct {
	StaffID     string    `json:"staffId"`
	StaffName   string    `json:"staffName"`
	EventID     string    `json:"eventId"`
	EventName   string    `json:"eventName"`
	Token       string    `json:"token"`
	Permissions []string  `json:"permissions"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *StaffSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Credentials are what a staff member presents at login: their account
// email and password plus the event they are opening the station for.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	EventID  string `json:"event_id"`
}

// ErrInvalidCredentials is returned by an Authenticator when the email or
// password does not match an active staff account.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEventNotAssigned is returned by an Authenticator when the staff member
// exists but is not assigned to the requested event.
var ErrEventNotAssigned = errors.New("staff not assigned to event")

// Authenticator exchanges credentials for a fully populated session.  It is
// implemented by the auth package against the staff repository; the store
// depends only on this interface.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (*StaffSession, error)
}
