package handler

import (
	"context"  // detached context for best-effort event publishing
	"errors"   // errors.Is comparisons against sentinel values
	"net/http" // HTTP status codes
	"time"     // timeouts and event timestamps

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/v4entertainments/ticket-checkin/internal/checkin"
	"github.com/v4entertainments/ticket-checkin/internal/model"
	"github.com/v4entertainments/ticket-checkin/internal/qr"
	"github.com/v4entertainments/ticket-checkin/internal/queue"
	"github.com/v4entertainments/ticket-checkin/internal/repository"
	"github.com/v4entertainments/ticket-checkin/internal/scan"
	queue_publisher "github.com/v4entertainments/ticket-checkin/internal/service"
	"github.com/v4entertainments/ticket-checkin/internal/session"
)

// CheckinHandler wires the scan gate, the QR parser, the confirmation engine
// and the session store into the station's HTTP surface.  The session store
// supplies staff attribution for every confirmation.
type CheckinHandler struct {
	Gate     *scan.Gate
	Parser   *qr.Parser
	Engine   *checkin.Engine
	Sessions *session.Store
}

// NewCheckinHandler constructs the handler.  All dependencies must be non-nil.
func NewCheckinHandler(gate *scan.Gate, parser *qr.Parser, engine *checkin.Engine, sessions *session.Store) *CheckinHandler {
	if gate == nil || parser == nil || engine == nil || sessions == nil {
		panic("nil dependency passed to NewCheckinHandler")
	}
	return &CheckinHandler{Gate: gate, Parser: parser, Engine: engine, Sessions: sessions}
}

// orderResp builds the order-with-summary payload shared by the scan and
// load endpoints.
func orderResp(order *model.Order, mismatch bool, snap checkin.Snapshot) echo.Map {
	resp := echo.Map{
		"state":          snap.State,
		"order":          order,
		"event_mismatch": mismatch,
		"summary": echo.Map{
			"checked_in":     snap.CheckedIn,
			"remaining":      snap.Remaining,
			"total":          len(order.Seats),
			"all_checked_in": snap.AllCheckedIn,
		},
	}
	if mismatch {
		resp["warning"] = "order belongs to a different event than this station"
	}
	return resp
}

// Scan handles POST /v1/scan.  The gate admits one decode at a time: a
// duplicate event while a lookup is in flight is dropped with 409.  A
// recognised payload loads the referenced order; an unrecognised one returns
// 422 with the raw data so the operator can inspect it.  The gate is reset
// on every terminal path.
func (h *CheckinHandler) Scan(c echo.Context) error {
	var body struct {
		Payload string `json:"payload"`
	}
	if err := c.Bind(&body); err != nil || body.Payload == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payload is required"})
	}

	if !h.Gate.OnDecoded(body.Payload) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "scan already in progress"})
	}
	defer h.Gate.Reset()

	ref, ok := h.Parser.Parse(body.Payload)
	if !ok {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error": "unrecognized payload",
			"raw":   body.Payload,
		})
	}
	return h.load(c, ref.OrderID, &ref)
}

// GetOrder handles GET /v1/orders/:id.  It (re)loads the order into the
// engine's flow, for manual lookups and for refreshing after a partial
// failure.
func (h *CheckinHandler) GetOrder(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	return h.load(c, orderID, nil)
}

func (h *CheckinHandler) load(c echo.Context, orderID string, ref *qr.TicketReference) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	order, mismatch, err := h.Engine.LoadOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		if errors.Is(err, checkin.ErrConfirmInFlight) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "confirmation in progress"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order"})
	}
	if ref != nil && !ticketVerifies(order, ref) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error": "ticket verification failed",
		})
	}
	resp := orderResp(order, mismatch, h.Engine.Snapshot())
	if ref != nil {
		resp["ticket"] = echo.Map{
			"orderId":  ref.OrderID,
			"ticketId": ref.TicketID,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// ticketVerifies checks a scanned reference against the order: the
// verification code must match the one printed into the order's QR codes and
// the ticket must belong to one of the order's seats.  Orders recorded
// without a code or without ticket numbers skip the respective check.
func ticketVerifies(order *model.Order, ref *qr.TicketReference) bool {
	if order.VerificationCode != "" && ref.VerificationCode != order.VerificationCode {
		return false
	}
	hasNumbers := false
	for _, s := range order.Seats {
		if s.TicketNumber == "" {
			continue
		}
		hasNumbers = true
		if s.TicketNumber == ref.TicketID {
			return true
		}
	}
	return !hasNumbers
}

// Confirm handles POST /v1/orders/:id/checkin.  It reads the staff identity
// from the session, validates the seat selection locally, executes the
// confirmation, and answers with the aggregated per-seat results.  A partial
// failure is a 200 with an itemised failure list, never an error status.
func (h *CheckinHandler) Confirm(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var body struct {
		SeatIDs []string `json:"seat_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	s := h.Sessions.Current()
	if s == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired"})
	}

	req, err := h.Engine.SelectSeats(s.StaffID, s.StaffName, body.SeatIDs)
	if err != nil {
		switch {
		case errors.Is(err, checkin.ErrNoActiveFlow):
			return c.JSON(http.StatusConflict, echo.Map{"error": "no order loaded; scan or load it first"})
		case errors.Is(err, checkin.ErrConfirmInFlight):
			return c.JSON(http.StatusConflict, echo.Map{"error": "confirmation in progress"})
		default:
			// Selection validation failures: empty set, unknown seat, seat
			// already checked in.  No network call was made.
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
	}
	if req.OrderID != orderID {
		return c.JSON(http.StatusConflict, echo.Map{"error": "a different order is loaded"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	outcome, err := h.Engine.Confirm(ctx, req)
	if err != nil {
		if errors.Is(err, checkin.ErrConfirmInFlight) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "confirmation in progress"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized for this order's event"})
		}
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		// Transport-level failure: nothing was mutated locally, the flow is
		// back in Ready and the operator may retry.
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "check-in failed, no seats were recorded; safe to retry"})
	}

	snap := h.Engine.Snapshot()
	if outcome.CheckedInCount > 0 && snap.Order != nil {
		h.publishConfirmed(snap.Order, s, req, outcome)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": outcome.Success,
		"message": outcome.Message,
		"state":   snap.State,
		"data": echo.Map{
			"orderId":        req.OrderID,
			"orderNumber":    snap.Order.OrderNumber,
			"checkedInCount": outcome.CheckedInCount,
			"totalSelected":  outcome.TotalSelected,
			"results":        outcome.Results,
		},
		"summary": echo.Map{
			"checked_in":     snap.CheckedIn,
			"remaining":      snap.Remaining,
			"all_checked_in": snap.AllCheckedIn,
		},
	})
}

// Flow handles GET /v1/flow, exposing the engine's observable state for the
// presentation layer.
func (h *CheckinHandler) Flow(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Engine.Snapshot())
}

// publishConfirmed emits the audit event best-effort; a broker outage must
// never fail a completed check-in.
func (h *CheckinHandler) publishConfirmed(order *model.Order, s *session.StaffSession, req checkin.Request, outcome checkin.Outcome) {
	seats := make([]string, 0, len(outcome.Results))
	for _, r := range outcome.Results {
		if r.Success {
			seats = append(seats, r.SeatNumber)
		}
	}
	ev := queue.CheckinConfirmedEvent{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		EventID:        order.EventID,
		EventName:      order.EventName,
		StaffID:        s.StaffID,
		StaffName:      s.StaffName,
		SeatNumbers:    seats,
		CheckedInCount: outcome.CheckedInCount,
		TotalSelected:  outcome.TotalSelected,
		ConfirmedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishCheckinConfirmed(ctx, ev)
	}()
}
