package model

import "time"

// Order is the aggregate the check-in flow operates on.  It mirrors the
// `orders` table plus the seats that belong to it.  The engine holds a local
// copy of one Order per confirmation flow; the repository owns the
// authoritative rows.
//
// Fields:
//  ID            – primary key (orders.id, opaque string identifier).
//  OrderNumber   – human-facing order reference printed on tickets.
//  EventID       – event the order was purchased for.
//  EventName     – denormalised event title for display.
//  CustomerName  – purchaser name shown to staff during check-in.
//  CustomerEmail – purchaser email.
//  Venue         – venue name for display.
//  Status        – order state (PENDING, CONFIRMED, CANCELLED, REFUNDED).
//  VerificationCode – shared secret printed into the order's QR codes;
//                     checked on scan, never serialised to clients.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
//  Seats         – every seat on the order; never empty for a valid order.
type Order struct {
	ID               string    `json:"orderId"`
	OrderNumber      string    `json:"orderNumber"`
	EventID          string    `json:"eventId"`
	EventName        string    `json:"eventName"`
	CustomerName     string    `json:"customerName"`
	CustomerEmail    string    `json:"customerEmail"`
	Venue            string    `json:"venue"`
	Status           string    `json:"status"`
	VerificationCode string    `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	Seats            []Seat    `json:"seats"`
}

// Seat is the smallest check-in unit.  Once IsCheckedIn is true the engine
// never resets it; CheckedInAt and CheckedInBy are set iff IsCheckedIn is set.
//
// Fields:
//  ID           – primary key (order_seats.id), unique within the order.
//  SeatNumber   – seat label shown to staff (e.g. "B12").
//  SectionName  – section the seat belongs to.
//  TicketNumber – ticket reference printed on the individual ticket.
//  IsCheckedIn  – whether the seat has been checked in.
//  CheckedInAt  – when the seat was checked in (nil until then).
//  CheckedInBy  – staff name that performed the check-in (nil until then).
type Seat struct {
	ID           string     `json:"seatId"`
	SeatNumber   string     `json:"seatNumber"`
	SectionName  string     `json:"sectionName"`
	TicketNumber string     `json:"ticketNumber"`
	IsCheckedIn  bool       `json:"isCheckedIn"`
	CheckedInAt  *time.Time `json:"checkedInAt,omitempty"`
	CheckedInBy  *string    `json:"checkedInBy,omitempty"`
}

// CheckedInCount returns how many of the order's seats are checked in.
func (o *Order) CheckedInCount() int {
	n := 0
	for _, s := range o.Seats {
		if s.IsCheckedIn {
			n++
		}
	}
	return n
}

// RemainingCount returns how many seats are still eligible for check-in.
func (o *Order) RemainingCount() int {
	return len(o.Seats) - o.CheckedInCount()
}

// AllCheckedIn reports whether every seat on the order is checked in.
func (o *Order) AllCheckedIn() bool {
	return len(o.Seats) > 0 && o.RemainingCount() == 0
}

// SeatByID returns the seat with the given ID, or nil when the order has no
// such seat.
func (o *Order) SeatByID(id string) *Seat {
	for i := range o.Seats {
		if o.Seats[i].ID == id {
			return &o.Seats[i]
		}
	}
	return nil
}
