// Package checkin implements the seat-level check-in confirmation engine:
// request validation, the per-flow state machine, and the aggregation rules
// for partially successful confirmations.
package checkin

import (
	"errors"
	"fmt"
	"time"

	"github.com/v4entertainments/ticket-checkin/internal/model"
)

// Validation errors raised before any network or database call.
var (
	ErrNoSeatsSelected    = errors.New("no seats selected")
	ErrSeatNotInOrder     = errors.New("seat does not belong to order")
	ErrSeatAlreadyChecked = errors.New("seat already checked in")
)

// Request is a validated seat-subset check-in.  Construct it with
// NewRequest; a Request in circulation always names a non-empty subset of
// the order's not-yet-checked-in seats.
type Request struct {
	OrderID   string
	EventID   string
	StaffID   string
	StaffName string
	SeatIDs   []string
}

// SelectedCount returns how many seats the request names.
func (r Request) SelectedCount() int {
	return len(r.SeatIDs)
}

// NewRequest validates a seat selection against the order and builds the
// request.  Duplicate seat IDs collapse to one.  It rejects an empty
// selection, a seat ID the order does not contain, and a seat that is
// already checked in (already-checked seats must never be silently
// included).
func NewRequest(order *model.Order, staffID, staffName string, seatIDs []string) (Request, error) {
	unique := make([]string, 0, len(seatIDs))
	seen := make(map[string]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return Request{}, ErrNoSeatsSelected
	}
	for _, id := range unique {
		seat := order.SeatByID(id)
		if seat == nil {
			return Request{}, fmt.Errorf("%w: %s", ErrSeatNotInOrder, id)
		}
		if seat.IsCheckedIn {
			return Request{}, fmt.Errorf("%w: %s", ErrSeatAlreadyChecked, seat.SeatNumber)
		}
	}
	return Request{
		OrderID:   order.ID,
		EventID:   order.EventID,
		StaffID:   staffID,
		StaffName: staffName,
		SeatIDs:   unique,
	}, nil
}

// Result is the backend's verdict for one requested seat.  Seats that were
// already checked in before the request come back as failures with a
// distinguishing message; they are never silently dropped.
type Result struct {
	SeatID      string     `json:"seatId"`
	SeatNumber  string     `json:"seatNumber"`
	Success     bool       `json:"success"`
	Message     string     `json:"message"`
	CheckedInAt *time.Time `json:"checkedInAt,omitempty"`
	CheckedInBy *string    `json:"checkedInBy,omitempty"`
}

// Outcome aggregates one confirmation call.  CheckedInCount never exceeds
// TotalSelected, and TotalSelected equals the number of requested seats.
// A partially failed outcome is a normal outcome, not an error.
type Outcome struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message,omitempty"`
	CheckedInCount int      `json:"checkedInCount"`
	TotalSelected  int      `json:"totalSelected"`
	Results        []Result `json:"results"`
}

// FailedSeats returns the per-seat failures in the outcome.
func (o Outcome) FailedSeats() []Result {
	failed := make([]Result, 0)
	for _, r := range o.Results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}

// ApplyOutcome flips IsCheckedIn on exactly the seats the server confirmed,
// copying the server's timestamp and staff attribution.  Seats outside the
// outcome are untouched and no seat is ever un-checked, so applying an
// outcome is monotonic and independent of result ordering.
func ApplyOutcome(order *model.Order, outcome Outcome) {
	for _, res := range outcome.Results {
		if !res.Success {
			continue
		}
		seat := order.SeatByID(res.SeatID)
		if seat == nil {
			continue
		}
		seat.IsCheckedIn = true
		seat.CheckedInAt = res.CheckedInAt
		seat.CheckedInBy = res.CheckedInBy
	}
}
