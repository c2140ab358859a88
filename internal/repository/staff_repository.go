package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/v4entertainments/ticket-checkin/internal/model"
)

// StaffRepo provides lookup access to staff accounts and their event
// assignments.
type StaffRepo struct{ DB *sql.DB }

func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{DB: db} }

// GetByEmail fetches an active staff account by normalized email.  Returns
// ErrStaffNotFound when no active account matches.
func (r *StaffRepo) GetByEmail(ctx context.Context, email string) (model.Staff, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var s model.Staff
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,is_active,created_at,updated_at FROM staff WHERE email=? AND is_active=1 LIMIT 1",
		email).Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Staff{}, ErrStaffNotFound
	}
	return s, err
}

// Create inserts a new active staff account and returns it with the
// generated ID.  The email is normalized before storage; a duplicate email
// surfaces as the driver's unique-constraint error.
func (r *StaffRepo) Create(ctx context.Context, name, email, passwordHash string) (model.Staff, error) {
	s := model.Staff{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	s.UpdatedAt = s.CreatedAt
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO staff (id,name,email,password_hash,is_active,created_at,updated_at) VALUES (?,?,?,?,?,?,?)",
		s.ID, s.Name, s.Email, s.PasswordHash, s.IsActive, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return model.Staff{}, err
	}
	return s, nil
}

// AssignEvent grants a staff member access to an event with the given
// comma-separated permissions, replacing any prior assignment for the pair.
func (r *StaffRepo) AssignEvent(ctx context.Context, staffID, eventID, eventName, permissions string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO staff_events (staff_id,event_id,event_name,permissions,granted_at)
         VALUES (?,?,?,?,?)
         ON DUPLICATE KEY UPDATE event_name=VALUES(event_name), permissions=VALUES(permissions)`,
		staffID, eventID, eventName, permissions, time.Now().UTC())
	return err
}

// EventAssignment fetches the staff member's assignment for one event.
// Returns sql.ErrNoRows when the staff member is not assigned to it.
func (r *StaffRepo) EventAssignment(ctx context.Context, staffID, eventID string) (model.StaffEvent, error) {
	var a model.StaffEvent
	err := r.DB.QueryRowContext(ctx,
		"SELECT staff_id,event_id,event_name,permissions,granted_at FROM staff_events WHERE staff_id=? AND event_id=? LIMIT 1",
		staffID, eventID).Scan(&a.StaffID, &a.EventID, &a.EventName, &a.Permissions, &a.GrantedAt)
	return a, err
}
