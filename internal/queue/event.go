// Package queue defines message payloads exchanged over the message broker.
package queue

// CheckinConfirmedEvent is published after a confirmation that checked in at
// least one seat.  It carries enough information for downstream consumers to
// build an audit trail or live attendance stats without querying the primary
// database.
type CheckinConfirmedEvent struct {
	OrderID        string   `json:"order_id"`
	OrderNumber    string   `json:"order_number"`
	EventID        string   `json:"event_id"`
	EventName      string   `json:"event_name"`
	StaffID        string   `json:"staff_id"`
	StaffName      string   `json:"staff_name"`
	SeatNumbers    []string `json:"seats"`
	CheckedInCount int      `json:"checked_in_count"`
	TotalSelected  int      `json:"total_selected"`
	ConfirmedAt    string   `json:"confirmed_at"`
}
