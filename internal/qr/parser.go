// Package qr interprets scanned QR payloads.  A payload is recognised when it
// carries an order ID, a ticket ID and a verification code under one of the
// supported encodings; everything else is reported as unrecognised rather
// than as an error, so callers can show the raw data to the operator.
package qr

import (
	"encoding/json"
	"net/url"
	"strings"
)

// TicketReference is the canonical result of a successful parse.  All three
// fields are always non-empty; the parser never constructs a partial
// reference.
type TicketReference struct {
	OrderID          string
	TicketID         string
	VerificationCode string
}

// Parser decodes raw QR payloads against a fixed allow-list of booking and
// check-in domains.  It is stateless after construction and safe for
// concurrent use.
type Parser struct {
	domains map[string]bool
}

// NewParser builds a Parser from the allow-listed hostnames.  Hostnames are
// compared case-insensitively.
func NewParser(domains []string) *Parser {
	allowed := make(map[string]bool, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			allowed[d] = true
		}
	}
	return &Parser{domains: allowed}
}

// Parse attempts the supported encodings in order and returns the first
// reference with all three fields present:
//
//  1. an absolute URL whose host is on the allow-list, with orderId,
//     ticketId and code in the query string
//  2. a bare query string carrying the same three keys
//  3. a JSON object (or array of objects) carrying the same three keys
//
// The second return value is false when no encoding matches or a required
// field is missing or empty.
func (p *Parser) Parse(raw string) (TicketReference, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TicketReference{}, false
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return p.parseURL(raw)
	}
	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		return parseJSON(raw)
	}
	return parseQuery(raw)
}

func (p *Parser) parseURL(raw string) (TicketReference, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return TicketReference{}, false
	}
	if !p.domains[strings.ToLower(u.Hostname())] {
		return TicketReference{}, false
	}
	q := u.Query()
	return makeRef(q.Get("orderId"), q.Get("ticketId"), q.Get("code"))
}

func parseQuery(raw string) (TicketReference, bool) {
	q, err := url.ParseQuery(raw)
	if err != nil {
		return TicketReference{}, false
	}
	return makeRef(q.Get("orderId"), q.Get("ticketId"), q.Get("code"))
}

func parseJSON(raw string) (TicketReference, bool) {
	var obj map[string]json.RawMessage
	if strings.HasPrefix(raw, "[") {
		var arr []map[string]json.RawMessage
		if err := json.Unmarshal([]byte(raw), &arr); err != nil || len(arr) == 0 {
			return TicketReference{}, false
		}
		obj = arr[0]
	} else if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return TicketReference{}, false
	}
	return makeRef(jsonString(obj["orderId"]), jsonString(obj["ticketId"]), jsonString(obj["code"]))
}

// jsonString unwraps a JSON value into a string, accepting only string
// values; numbers and other types do not identify tickets.
func jsonString(v json.RawMessage) string {
	if v == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}

// makeRef assembles a reference, rejecting any empty field so a partial
// reference can never escape the package.
func makeRef(orderID, ticketID, code string) (TicketReference, bool) {
	if orderID == "" || ticketID == "" || code == "" {
		return TicketReference{}, false
	}
	return TicketReference{OrderID: orderID, TicketID: ticketID, VerificationCode: code}, true
}
