// Package repository defines sentinel errors shared across the data
// access layer. Higher layers compare against these with errors.Is
// to distinguish business outcomes from transport failures. Absence
// and foreign ownership are deliberately collapsed into the same
// not-found error so that callers cannot probe for reservations they
// do not own.
package repository

import "errors"

// ErrNoTableAvailable is returned when no table (or seat allocation
// within a table) can satisfy a booking request under the current
// occupancy. Handlers should translate this into an HTTP 400
// response.
var ErrNoTableAvailable = errors.New("no suitable table available")

// ErrReservationNotFound is returned when a reservation does not
// exist or belongs to a different user. The two cases are not
// distinguishable from the caller's perspective. Handlers should
// translate this into an HTTP 404 response.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrTableNotFound is returned when a table lookup by id matches no
// row.
var ErrTableNotFound = errors.New("table not found")

// ErrTxConflict is returned when the database aborts a transaction
// because of a lock conflict (deadlock or lock wait timeout). The
// booking service retries serializable transactions a bounded number
// of times on this error; anything else is fatal to the request.
var ErrTxConflict = errors.New("transaction conflict")

// ErrEmailExists is returned when registration collides with an
// existing email address.
var ErrEmailExists = errors.New("email already exists")
