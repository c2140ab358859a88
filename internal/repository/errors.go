// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that a check-in was attempted against
// an order belonging to a different event than the one the staff
// session is scoped to.
package repository

import "errors"

// ErrOrderNotFound is returned when no order exists for the given ID.
// Handlers should translate this into an HTTP 404 response.
var ErrOrderNotFound = errors.New("order not found")

// ErrStaffNotFound is returned when no staff account matches a lookup.
// Handlers should treat this the same as bad credentials.
var ErrStaffNotFound = errors.New("staff not found")

// ErrForbidden is returned when a check-in targets an order outside the
// event the staff session is scoped to. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")
