package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/v4entertainments/ticket-checkin/internal/checkin"
	"github.com/v4entertainments/ticket-checkin/internal/model"
)

// OrderRepo provides read access to orders and executes the seat-level
// check-in transaction.  It is the authoritative backend the engine
// confirms against; all timestamps are stored in UTC.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns an OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying handle for callers that need to coordinate
// transactions across repositories.
func (r *OrderRepo) DB() *sql.DB { return r.db }

// GetByID fetches the order aggregate: the order row plus every seat on it.
// Returns ErrOrderNotFound when no such order exists.
func (r *OrderRepo) GetByID(ctx context.Context, orderID string) (*model.Order, error) {
	const q = `SELECT id, order_number, event_id, event_name, customer_name, customer_email,
               venue, status, verification_code, created_at, updated_at
        FROM orders WHERE id = ? LIMIT 1`
	var o model.Order
	var code sql.NullString
	err := r.db.QueryRowContext(ctx, q, orderID).Scan(
		&o.ID, &o.OrderNumber, &o.EventID, &o.EventName, &o.CustomerName, &o.CustomerEmail,
		&o.Venue, &o.Status, &code, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	o.VerificationCode = code.String
	seats, err := r.seatsForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Seats = seats
	return &o, nil
}

func (r *OrderRepo) seatsForOrder(ctx context.Context, orderID string) ([]model.Seat, error) {
	const q = `SELECT id, seat_number, section_name, ticket_number, is_checked_in, checked_in_at, checked_in_by
        FROM order_seats WHERE order_id = ? ORDER BY seat_number`
	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]model.Seat, 0)
	for rows.Next() {
		var (
			s  model.Seat
			at sql.NullTime
			by sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.SeatNumber, &s.SectionName, &s.TicketNumber, &s.IsCheckedIn, &at, &by); err != nil {
			return nil, err
		}
		if at.Valid {
			t := at.Time
			s.CheckedInAt = &t
		}
		if by.Valid {
			v := by.String
			s.CheckedInBy = &v
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// seatRow is the slice of an order_seats row the check-in transaction needs.
type seatRow struct {
	id          string
	seatNumber  string
	isCheckedIn bool
	checkedInAt sql.NullTime
	checkedInBy sql.NullString
}

// CheckinSeats executes one confirmation transaction.  Within a single
// transaction it locks the requested seat rows, flips each seat that is not
// yet checked in, and reports every other requested seat as a per-seat
// failure ("already checked in" with the existing stamps, or not part of the
// order).  Re-submitting an already-checked-in seat therefore never errors
// and never double-counts.  The transaction commits even when every seat
// failed; failures are data in the outcome, not errors.
//
// The order's event is checked against the request's event first: a
// mismatch means the staff session is not authorized for this order and the
// whole call is refused with ErrForbidden.
func (r *OrderRepo) CheckinSeats(ctx context.Context, req checkin.Request) (checkin.Outcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return checkin.Outcome{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var orderEventID string
	err = tx.QueryRowContext(ctx, `SELECT event_id FROM orders WHERE id = ? FOR UPDATE`, req.OrderID).Scan(&orderEventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return checkin.Outcome{}, ErrOrderNotFound
		}
		return checkin.Outcome{}, err
	}
	if orderEventID != req.EventID {
		return checkin.Outcome{}, ErrForbidden
	}

	current, err := lockSeatsTx(ctx, tx, req.OrderID, req.SeatIDs)
	if err != nil {
		return checkin.Outcome{}, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	results := make([]checkin.Result, 0, len(req.SeatIDs))
	checked := 0
	for _, seatID := range req.SeatIDs {
		row, ok := current[seatID]
		if !ok {
			results = append(results, checkin.Result{
				SeatID:  seatID,
				Success: false,
				Message: "Seat is not part of this order",
			})
			continue
		}
		if row.isCheckedIn {
			res := checkin.Result{
				SeatID:     seatID,
				SeatNumber: row.seatNumber,
				Success:    false,
				Message:    "Seat already checked in",
			}
			if row.checkedInAt.Valid {
				t := row.checkedInAt.Time
				res.CheckedInAt = &t
			}
			if row.checkedInBy.Valid {
				v := row.checkedInBy.String
				res.CheckedInBy = &v
			}
			results = append(results, res)
			continue
		}
		// The WHERE guard keeps the update idempotent even if a concurrent
		// transaction slipped in between the lock and this statement.
		const upd = `UPDATE order_seats
            SET is_checked_in = 1, checked_in_at = ?, checked_in_by = ?
            WHERE id = ? AND order_id = ? AND is_checked_in = 0`
		res, err := tx.ExecContext(ctx, upd, now, req.StaffName, seatID, req.OrderID)
		if err != nil {
			return checkin.Outcome{}, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return checkin.Outcome{}, err
		}
		if n == 0 {
			results = append(results, checkin.Result{
				SeatID:     seatID,
				SeatNumber: row.seatNumber,
				Success:    false,
				Message:    "Seat already checked in",
			})
			continue
		}
		staff := req.StaffName
		at := now
		results = append(results, checkin.Result{
			SeatID:      seatID,
			SeatNumber:  row.seatNumber,
			Success:     true,
			Message:     "Checked in",
			CheckedInAt: &at,
			CheckedInBy: &staff,
		})
		checked++
	}

	if err := tx.Commit(); err != nil {
		return checkin.Outcome{}, err
	}
	committed = true

	outcome := checkin.Outcome{
		Success:        checked > 0,
		CheckedInCount: checked,
		TotalSelected:  len(req.SeatIDs),
		Results:        results,
	}
	switch {
	case checked == len(req.SeatIDs):
		outcome.Message = fmt.Sprintf("Checked in %d seat(s)", checked)
	case checked > 0:
		outcome.Message = fmt.Sprintf("Checked in %d of %d seat(s)", checked, len(req.SeatIDs))
	default:
		outcome.Message = "No seats were checked in"
	}
	return outcome, nil
}

// lockSeatsTx reads and row-locks the requested seats so the per-seat
// verdicts and updates see a consistent view.
func lockSeatsTx(ctx context.Context, tx *sql.Tx, orderID string, seatIDs []string) (map[string]seatRow, error) {
	if len(seatIDs) == 0 {
		return map[string]seatRow{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(seatIDs)), ",")
	q := `SELECT id, seat_number, is_checked_in, checked_in_at, checked_in_by
        FROM order_seats WHERE order_id = ? AND id IN (` + placeholders + `) FOR UPDATE`
	args := make([]interface{}, 0, len(seatIDs)+1)
	args = append(args, orderID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]seatRow, len(seatIDs))
	for rows.Next() {
		var row seatRow
		if err := rows.Scan(&row.id, &row.seatNumber, &row.isCheckedIn, &row.checkedInAt, &row.checkedInBy); err != nil {
			return nil, err
		}
		out[row.id] = row
	}
	return out, rows.Err()
}
