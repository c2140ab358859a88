// Package auth verifies staff credentials and constructs station sessions.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/v4entertainments/ticket-checkin/internal/repository"
	"github.com/v4entertainments/ticket-checkin/internal/session"
	"github.com/v4entertainments/ticket-checkin/internal/utils"
)

// StaffAuthenticator implements session.Authenticator against the staff
// repository: bcrypt credential check, event assignment check, JWT issue.
type StaffAuthenticator struct {
	Staff     *repository.StaffRepo
	JWTSecret string
	TTLHours  int
}

// NewStaffAuthenticator constructs an authenticator.  ttlHours governs the
// session lifetime; the reference shift length is 12 hours.
func NewStaffAuthenticator(staff *repository.StaffRepo, jwtSecret string, ttlHours int) *StaffAuthenticator {
	if staff == nil {
		panic("nil StaffRepo passed to NewStaffAuthenticator")
	}
	return &StaffAuthenticator{Staff: staff, JWTSecret: jwtSecret, TTLHours: ttlHours}
}

// Authenticate exchanges credentials for a populated StaffSession.  The
// staff member must exist, be active, match the password, and be assigned
// to the requested event.  Credential failures are indistinguishable to the
// caller: both unknown email and wrong password map to
// session.ErrInvalidCredentials.
func (a *StaffAuthenticator) Authenticate(ctx context.Context, creds session.Credentials) (*session.StaffSession, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || creds.Password == "" || strings.TrimSpace(creds.EventID) == "" {
		return nil, session.ErrInvalidCredentials
	}

	staff, err := a.Staff.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrStaffNotFound) {
			return nil, session.ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.VerifyPassword(staff.PasswordHash, creds.Password) {
		return nil, session.ErrInvalidCredentials
	}

	assignment, err := a.Staff.EventAssignment(ctx, staff.ID, strings.TrimSpace(creds.EventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrEventNotAssigned
		}
		return nil, err
	}

	tok, err := utils.NewSessionToken(a.JWTSecret, staff.ID, staff.Name, assignment.EventID, a.TTLHours)
	if err != nil {
		return nil, err
	}

	return &session.StaffSession{
		StaffID:     staff.ID,
		StaffName:   staff.Name,
		EventID:     assignment.EventID,
		EventName:   assignment.EventName,
		Token:       tok.Token,
		Permissions: splitPermissions(assignment.Permissions),
		ExpiresAt:   tok.Exp,
	}, nil
}

// splitPermissions turns the stored comma-separated permission list into a
// slice, dropping empties.
func splitPermissions(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
