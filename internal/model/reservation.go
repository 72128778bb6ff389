package model

import "time"

// Reservation binds a user to seats on a single table at a fixed
// cost.  A reservation is created only by a successful booking and
// destroyed only by a cancellation; none of its fields change in
// between.  Cost is computed once at booking time and never
// recomputed.
//
// Fields:
//  ID               – primary key identifier.
//  ConfirmationCode – UUID surfaced to clients and event consumers.
//  UserID           – owner of the reservation.
//  TableID          – table the reservation occupies.
//  NumberOfSeats    – seats allocated to this reservation (>= 1).
//  Cost             – total price, fixed at creation.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Reservation struct {
    ID               uint64    // reservations.id
    ConfirmationCode string    // reservations.confirmation_code
    UserID           uint64    // reservations.user_id
    TableID          uint64    // reservations.table_id
    NumberOfSeats    int       // reservations.number_of_seats
    Cost             int       // reservations.cost
    CreatedAt        time.Time // reservations.created_at
    UpdatedAt        time.Time // reservations.updated_at
}
