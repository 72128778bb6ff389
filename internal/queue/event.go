// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationBookedEvent is published when a table is successfully
// allocated. It carries enough information for downstream consumers
// to log, notify, or trigger analytics without querying the primary
// database.
type ReservationBookedEvent struct {
    ReservationID    uint64 `json:"reservation_id"`
    ConfirmationCode string `json:"confirmation_code"`
    UserID           uint64 `json:"user_id"`
    TableID          uint64 `json:"table_id"`
    TableSeats       int    `json:"table_seats"`
    NumberOfSeats    int    `json:"number_of_seats"`
    Cost             int    `json:"cost"`
    BookedAt         string `json:"booked_at"`
}

// ReservationCancelledEvent is published when a reservation is
// released and its capacity returned to the pool.
type ReservationCancelledEvent struct {
    ReservationID    uint64 `json:"reservation_id"`
    ConfirmationCode string `json:"confirmation_code"`
    UserID           uint64 `json:"user_id"`
    TableID          uint64 `json:"table_id"`
    NumberOfSeats    int    `json:"number_of_seats"`
    CancelledAt      string `json:"cancelled_at"`
}
