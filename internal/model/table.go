package model

import "time"

// Table represents a physical restaurant table with a fixed number of
// seats.  Tables are provisioned by administrators and are never
// deleted by the booking flow.  The IsReserved flag is only
// meaningful under the exclusive-occupancy allocation policy; the
// shared-seating policy derives availability from the seat totals of
// active reservations instead.
//
// Fields:
//  ID         – primary key identifier.
//  Seats      – fixed seat capacity (4–10 by convention).
//  IsReserved – whether the table is wholly occupied (exclusive policy).
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Table struct {
    ID         uint64    `json:"id"`          // tables.id
    Seats      int       `json:"seats"`       // tables.seats
    IsReserved bool      `json:"is_reserved"` // tables.is_reserved
    CreatedAt  time.Time `json:"created"`     // tables.created_at
    UpdatedAt  time.Time `json:"modified"`    // tables.updated_at
}
