package repository

import (
    "context"

    "github.com/restobook/restaurant-booking/internal/model"
)

// TableOccupancy reports a table's fixed capacity together with the
// seats currently claimed by active reservations. The shared-seating
// allocator derives availability from it as Seats - SeatsTaken.
type TableOccupancy struct {
    TableID    uint64
    Seats      int
    SeatsTaken int
}

// TableDetail is the table portion of a reservation response,
// mirroring what clients need to identify where they are seated.
type TableDetail struct {
    ID    uint64 `json:"id"`
    Seats int    `json:"seats"`
}

// ReservationDetail is a reservation as presented to its owner:
// audit timestamps in RFC3339 and the embedded table summary.
type ReservationDetail struct {
    ID               uint64      `json:"id"`
    ConfirmationCode string      `json:"confirmation_code"`
    UserID           uint64      `json:"user"`
    NumberOfSeats    int         `json:"number_of_seats"`
    Cost             int         `json:"cost"`
    Created          string      `json:"created"`
    Modified         string      `json:"modified"`
    Table            TableDetail `json:"table"`
}

// AdminReservationDetail extends ReservationDetail with the owner's
// email for administrative listings.
type AdminReservationDetail struct {
    ReservationDetail
    UserEmail string `json:"user_email"`
}

// Store is the persistence contract consumed by the booking service.
// The production implementation is BookingStore backed by MySQL; the
// service tests run against an in-memory implementation with the
// same first-committer-wins semantics.
type Store interface {
    // Begin opens a transaction. When serializable is true the
    // transaction must run at an isolation level that prevents two
    // concurrent read-compute-write sequences from over-allocating a
    // table, surfacing conflicts as ErrTxConflict.
    Begin(ctx context.Context, serializable bool) (Tx, error)

    // ListReservationsByUser returns the caller's reservations in
    // reverse chronological order of creation.
    ListReservationsByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error)

    // ReservationDetailForUser returns one owned reservation, or
    // ErrReservationNotFound when it is absent or foreign.
    ReservationDetailForUser(ctx context.Context, id, userID uint64) (*ReservationDetail, error)

    // CreateTable provisions a new free table.
    CreateTable(ctx context.Context, seats int) (*model.Table, error)

    // ListTables returns all tables, newest first, optionally
    // filtered by the is_reserved flag.
    ListTables(ctx context.Context, reserved *bool) ([]model.Table, error)

    // ListAllReservations returns every active reservation, newest
    // first, for administrative inspection.
    ListAllReservations(ctx context.Context) ([]AdminReservationDetail, error)
}

// Tx is one atomic unit of booking work. Implementations must make
// the whole sequence between Begin and Commit all-or-nothing; a
// failed call followed by Rollback leaves no observable state.
type Tx interface {
    Commit() error
    Rollback() error

    // LockCheapestFreeTable selects and locks the free table with
    // the smallest sufficient capacity, skipping rows already locked
    // by concurrent transactions so that bookers race for distinct
    // tables instead of queueing. Returns ErrNoTableAvailable when
    // no unlocked candidate remains.
    LockCheapestFreeTable(ctx context.Context, minSeats int) (*model.Table, error)

    // SetTableReserved flips the exclusive-occupancy flag.
    SetTableReserved(ctx context.Context, tableID uint64, reserved bool) error

    // TableOccupancy returns the seat totals of every table under
    // the transaction's isolation level.
    TableOccupancy(ctx context.Context) ([]TableOccupancy, error)

    // CreateReservation inserts the reservation and populates its
    // generated ID and timestamps.
    CreateReservation(ctx context.Context, res *model.Reservation) error

    // OwnedReservation loads and locks a reservation owned by
    // userID, or ErrReservationNotFound (absence and foreign
    // ownership are indistinguishable).
    OwnedReservation(ctx context.Context, id, userID uint64) (*model.Reservation, error)

    // ReservationByID loads and locks a reservation regardless of
    // owner. Administrative release only.
    ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error)

    // DeleteReservation removes the reservation row.
    DeleteReservation(ctx context.Context, id uint64) error
}
