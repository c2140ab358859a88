package checkin

import (
	"errors"
	"testing"
	"time"

	"github.com/v4entertainments/ticket-checkin/internal/model"
)

func testOrder() *model.Order {
	return &model.Order{
		ID:          "ORD-1",
		OrderNumber: "V4-0001",
		EventID:     "EVT-1",
		EventName:   "Summer Gala",
		Status:      "confirmed",
		Seats: []model.Seat{
			{ID: "seat-a", SeatNumber: "A1"},
			{ID: "seat-b", SeatNumber: "A2"},
			{ID: "seat-c", SeatNumber: "A3"},
		},
	}
}

func TestNewRequestValidation(t *testing.T) {
	t.Parallel()

	order := testOrder()

	if _, err := NewRequest(order, "s1", "Ann", nil); !errors.Is(err, ErrNoSeatsSelected) {
		t.Errorf("empty selection: err = %v, want ErrNoSeatsSelected", err)
	}
	if _, err := NewRequest(order, "s1", "Ann", []string{"", ""}); !errors.Is(err, ErrNoSeatsSelected) {
		t.Errorf("blank IDs: err = %v, want ErrNoSeatsSelected", err)
	}
	if _, err := NewRequest(order, "s1", "Ann", []string{"seat-a", "ghost"}); !errors.Is(err, ErrSeatNotInOrder) {
		t.Errorf("unknown seat: err = %v, want ErrSeatNotInOrder", err)
	}

	order.Seats[1].IsCheckedIn = true
	if _, err := NewRequest(order, "s1", "Ann", []string{"seat-b"}); !errors.Is(err, ErrSeatAlreadyChecked) {
		t.Errorf("checked seat: err = %v, want ErrSeatAlreadyChecked", err)
	}
}

func TestNewRequestCollapsesDuplicates(t *testing.T) {
	t.Parallel()

	req, err := NewRequest(testOrder(), "s1", "Ann", []string{"seat-a", "seat-a", "seat-c"})
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if req.SelectedCount() != 2 {
		t.Errorf("SelectedCount = %d, want 2", req.SelectedCount())
	}
	if req.OrderID != "ORD-1" || req.EventID != "EVT-1" {
		t.Errorf("request not bound to order: %+v", req)
	}
	if req.StaffID != "s1" || req.StaffName != "Ann" {
		t.Errorf("request not attributed to staff: %+v", req)
	}
}

func TestApplyOutcomeFlipsOnlyConfirmedSeats(t *testing.T) {
	t.Parallel()

	order := testOrder()
	at := time.Date(2026, 8, 30, 19, 4, 0, 0, time.UTC)
	by := "Ann"
	outcome := Outcome{
		Success:        true,
		CheckedInCount: 2,
		TotalSelected:  3,
		Results: []Result{
			{SeatID: "seat-c", Success: true, CheckedInAt: &at, CheckedInBy: &by},
			{SeatID: "seat-a", Success: true, CheckedInAt: &at, CheckedInBy: &by},
			{SeatID: "seat-b", Success: false, Message: "Seat already checked in"},
		},
	}
	ApplyOutcome(order, outcome)

	for _, id := range []string{"seat-a", "seat-c"} {
		seat := order.SeatByID(id)
		if !seat.IsCheckedIn {
			t.Errorf("seat %s not flipped", id)
		}
		if seat.CheckedInAt == nil || !seat.CheckedInAt.Equal(at) {
			t.Errorf("seat %s missing server timestamp", id)
		}
		if seat.CheckedInBy == nil || *seat.CheckedInBy != by {
			t.Errorf("seat %s missing staff attribution", id)
		}
	}
	if order.SeatByID("seat-b").IsCheckedIn {
		t.Error("failed seat was flipped")
	}
}

func TestApplyOutcomeMonotonic(t *testing.T) {
	t.Parallel()

	order := testOrder()
	at := time.Now().UTC()
	by := "Ann"
	order.Seats[0].IsCheckedIn = true
	order.Seats[0].CheckedInAt = &at
	order.Seats[0].CheckedInBy = &by

	// A later outcome reporting the seat as a failure must not un-check it.
	ApplyOutcome(order, Outcome{Results: []Result{
		{SeatID: "seat-a", Success: false, Message: "Seat already checked in"},
	}})
	if !order.Seats[0].IsCheckedIn {
		t.Error("checked-in seat was reset by a failure result")
	}

	// Results for seats the order does not contain are ignored.
	ApplyOutcome(order, Outcome{Results: []Result{
		{SeatID: "ghost", Success: true},
	}})
	if order.CheckedInCount() != 1 {
		t.Errorf("CheckedInCount = %d, want 1", order.CheckedInCount())
	}
}

func TestOutcomeFailedSeats(t *testing.T) {
	t.Parallel()

	o := Outcome{Results: []Result{
		{SeatID: "a", Success: true},
		{SeatID: "b", Success: false},
		{SeatID: "c", Success: false},
	}}
	failed := o.FailedSeats()
	if len(failed) != 2 {
		t.Fatalf("FailedSeats = %d results, want 2", len(failed))
	}
	if failed[0].SeatID != "b" || failed[1].SeatID != "c" {
		t.Errorf("FailedSeats = %v", failed)
	}
}

func TestOrderDerivedCounts(t *testing.T) {
	t.Parallel()

	order := testOrder()
	if order.CheckedInCount() != 0 || order.RemainingCount() != 3 || order.AllCheckedIn() {
		t.Fatalf("fresh order counts wrong: %d/%d", order.CheckedInCount(), order.RemainingCount())
	}
	order.Seats[0].IsCheckedIn = true
	order.Seats[1].IsCheckedIn = true
	if order.CheckedInCount() != 2 || order.RemainingCount() != 1 || order.AllCheckedIn() {
		t.Errorf("partial counts wrong: %d/%d", order.CheckedInCount(), order.RemainingCount())
	}
	order.Seats[2].IsCheckedIn = true
	if !order.AllCheckedIn() {
		t.Error("AllCheckedIn false with every seat checked")
	}
}
