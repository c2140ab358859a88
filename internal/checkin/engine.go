package checkin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/v4entertainments/ticket-checkin/internal/model"
)

// FlowState tracks one order-confirmation flow from load to outcome.
type FlowState string

const (
	StateLoading         FlowState = "LOADING"
	StateReady           FlowState = "READY"
	StateConfirming      FlowState = "CONFIRMING"
	StateSucceeded       FlowState = "SUCCEEDED"
	StatePartiallyFailed FlowState = "PARTIALLY_FAILED"
	StateFailed          FlowState = "FAILED"
)

// Engine errors.
var (
	// ErrNoActiveFlow is returned when an operation needs a loaded order
	// and none is loaded.
	ErrNoActiveFlow = errors.New("no order loaded")
	// ErrWrongOrder is returned when a request targets an order other than
	// the one the active flow holds.
	ErrWrongOrder = errors.New("request does not match loaded order")
	// ErrConfirmInFlight is returned when Confirm is called while a prior
	// confirmation is still awaiting the backend.
	ErrConfirmInFlight = errors.New("confirmation already in flight")
)

// OrderStore is the authoritative backend the engine confirms against.  The
// MySQL repository implements it; tests substitute a fake.
type OrderStore interface {
	// GetByID returns the order aggregate or repository.ErrOrderNotFound.
	GetByID(ctx context.Context, orderID string) (*model.Order, error)
	// CheckinSeats executes one confirmation transaction.  It must be safe
	// to retry at the seat level: a seat that is already checked in yields
	// a per-seat failure result, never an error or a duplicate success.
	CheckinSeats(ctx context.Context, req Request) (Outcome, error)
}

// EventContext supplies the station's currently selected event, used for the
// informational cross-check when an order is loaded.  The session store
// satisfies it.
type EventContext interface {
	SelectedEvent() (eventID, eventName string)
}

// Engine drives the station's single active confirmation flow.  Loading a
// different order discards the prior flow's local state; the local Order
// copy belongs exclusively to the active flow.  At most one Confirm call is
// in flight at a time; a second invocation is rejected, never run
// concurrently.
type Engine struct {
	store OrderStore
	event EventContext

	mu            sync.Mutex
	state         FlowState
	order         *model.Order
	outcome       *Outcome
	eventMismatch bool
}

// NewEngine builds an Engine over the given backend and event context.
func NewEngine(store OrderStore, event EventContext) *Engine {
	if store == nil {
		panic("nil OrderStore passed to NewEngine")
	}
	return &Engine{store: store, event: event}
}

// LoadOrder fetches the order and starts (or restarts) a flow for it.  The
// returned mismatch flag reports that the order belongs to a different event
// than the station's selected one; the order is still returned and shown,
// check-in is blocked later by the repository's own authorization.  On
// failure the prior flow, if any, is left untouched.
func (e *Engine) LoadOrder(ctx context.Context, orderID string) (order *model.Order, eventMismatch bool, err error) {
	e.mu.Lock()
	if e.state == StateConfirming {
		e.mu.Unlock()
		return nil, false, ErrConfirmInFlight
	}
	e.mu.Unlock()

	fetched, err := e.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}

	mismatch := false
	if e.event != nil {
		if eventID, _ := e.event.SelectedEvent(); eventID != "" && eventID != fetched.EventID {
			mismatch = true
		}
	}

	e.mu.Lock()
	// A load that raced a Confirm on the previous flow loses: keep the
	// confirming flow intact.
	if e.state == StateConfirming {
		e.mu.Unlock()
		return nil, false, ErrConfirmInFlight
	}
	e.order = fetched
	e.outcome = nil
	e.eventMismatch = mismatch
	e.state = StateReady
	e.mu.Unlock()
	return snapshotOrder(fetched), mismatch, nil
}

// SelectSeats validates a seat selection against the active flow's order and
// attributes it to the given staff identity.  Purely local; no I/O.
func (e *Engine) SelectSeats(staffID, staffName string, seatIDs []string) (Request, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.order == nil {
		return Request{}, ErrNoActiveFlow
	}
	if e.state == StateConfirming {
		return Request{}, ErrConfirmInFlight
	}
	return NewRequest(e.order, staffID, staffName, seatIDs)
}

// Confirm executes one confirmation call against the backend.  On a
// transport failure the flow returns to Ready with no local state mutated,
// so the operator can retry safely.  On an outcome the local order copy is
// updated for exactly the server-confirmed seats and the flow is classified:
// every seat confirmed -> Succeeded, some -> PartiallyFailed (failed seats
// stay selectable for retry), none with the success flag down -> Failed.  A
// success reported without per-seat detail counts as every requested seat
// succeeding and is itemised as such before being applied.
func (e *Engine) Confirm(ctx context.Context, req Request) (Outcome, error) {
	e.mu.Lock()
	if e.order == nil {
		e.mu.Unlock()
		return Outcome{}, ErrNoActiveFlow
	}
	if req.OrderID != e.order.ID {
		e.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: %s", ErrWrongOrder, req.OrderID)
	}
	if e.state == StateConfirming {
		e.mu.Unlock()
		return Outcome{}, ErrConfirmInFlight
	}
	e.state = StateConfirming
	e.mu.Unlock()

	outcome, err := e.store.CheckinSeats(ctx, req)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = StateReady
		return Outcome{}, err
	}
	if outcome.Success && len(outcome.Results) == 0 {
		outcome = itemizeBareSuccess(e.order, req, outcome)
	}
	ApplyOutcome(e.order, outcome)
	e.outcome = &outcome
	e.state = classify(outcome)
	return outcome, nil
}

// itemizeBareSuccess expands a success outcome the backend returned without
// per-seat detail: every requested seat counts as checked in by the
// requesting staff, so the local order copy and the derived counts stay
// consistent with the Succeeded classification.
func itemizeBareSuccess(order *model.Order, req Request, o Outcome) Outcome {
	now := time.Now().UTC()
	o.Results = make([]Result, 0, len(req.SeatIDs))
	for _, id := range req.SeatIDs {
		at := now
		by := req.StaffName
		res := Result{
			SeatID:      id,
			Success:     true,
			Message:     "Checked in",
			CheckedInAt: &at,
			CheckedInBy: &by,
		}
		if seat := order.SeatByID(id); seat != nil {
			res.SeatNumber = seat.SeatNumber
		}
		o.Results = append(o.Results, res)
	}
	o.CheckedInCount = len(req.SeatIDs)
	o.TotalSelected = len(req.SeatIDs)
	return o
}

// classify maps an outcome onto the flow state per the aggregation rules.
func classify(o Outcome) FlowState {
	switch {
	case o.TotalSelected > 0 && o.CheckedInCount == o.TotalSelected:
		return StateSucceeded
	case o.CheckedInCount > 0:
		return StatePartiallyFailed
	case o.Success:
		// A success flag with no detail is itemised before it gets here,
		// but keep the mapping total.
		return StateSucceeded
	default:
		return StateFailed
	}
}

// Snapshot is the engine's observable surface for the presentation layer:
// the flow state, the evolving order copy, the latest outcome, and the
// derived seat counts.
type Snapshot struct {
	State         FlowState    `json:"state"`
	Order         *model.Order `json:"order,omitempty"`
	Outcome       *Outcome     `json:"outcome,omitempty"`
	EventMismatch bool         `json:"eventMismatch"`
	CheckedIn     int          `json:"checkedIn"`
	Remaining     int          `json:"remaining"`
	AllCheckedIn  bool         `json:"allCheckedIn"`
}

// Snapshot returns a copy of the current flow for presentation.  The
// returned order is detached from the engine's copy.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := Snapshot{State: e.state, EventMismatch: e.eventMismatch}
	if e.state == "" {
		snap.State = StateLoading
	}
	if e.order != nil {
		snap.Order = snapshotOrder(e.order)
		snap.CheckedIn = e.order.CheckedInCount()
		snap.Remaining = e.order.RemainingCount()
		snap.AllCheckedIn = e.order.AllCheckedIn()
	}
	if e.outcome != nil {
		cp := *e.outcome
		snap.Outcome = &cp
	}
	return snap
}

// snapshotOrder deep-copies an order so callers cannot mutate the flow's
// local cache behind the engine's back.
func snapshotOrder(o *model.Order) *model.Order {
	cp := *o
	cp.Seats = make([]model.Seat, len(o.Seats))
	copy(cp.Seats, o.Seats)
	return &cp
}
