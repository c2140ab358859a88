package model

import "time"

// Staff represents a staff account as stored in the `staff` table.  Staff
// authenticate with email and password and are assigned to the events they
// may check attendees in for.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name recorded against every check-in they perform.
//  Email        – unique login email.
//  PasswordHash – bcrypt hashed password.
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Staff struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StaffEvent is a row in `staff_events` assigning a staff member to an event
// with a set of permissions.  A staff member can only open a station session
// for an event they are assigned to.
//
// Fields:
//  StaffID     – staff member being assigned.
//  EventID     – event the assignment covers.
//  EventName   – denormalised event title for session display.
//  Permissions – comma-separated permission names (e.g. "checkin,stats").
//  GrantedAt   – when the assignment was created.
type StaffEvent struct {
	StaffID     string
	EventID     string
	EventName   string
	Permissions string
	GrantedAt   time.Time
}
