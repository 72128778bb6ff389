// Package service implements the allocation engine: booking a table
// for a party, releasing a reservation, and listing a user's
// reservations. The engine owns the policy decisions (which table,
// what cost) and delegates atomicity to the repository's transaction
// contract.
package service

import (
    "context"
    "errors"

    "github.com/google/uuid"

    "github.com/restobook/restaurant-booking/internal/allocation"
    "github.com/restobook/restaurant-booking/internal/model"
    "github.com/restobook/restaurant-booking/internal/repository"
)

// ErrInvalidPartySize is returned when the requested party size is
// below one. Handlers should translate it into an HTTP 400 response.
var ErrInvalidPartySize = errors.New("invalid party size")

// sharedRetries bounds how often a shared-seating booking is retried
// after the store aborts it with a lock conflict.
const sharedRetries = 3

// BookingService allocates tables to parties and releases
// reservations. It is safe for concurrent use; all serialization is
// delegated to the store's transactions.
type BookingService struct {
    store    repository.Store
    policy   allocation.Policy
    seatCost int
}

// NewBookingService constructs a BookingService. seatCost is the
// configured price per seat-unit; policy selects the occupancy model.
func NewBookingService(store repository.Store, policy allocation.Policy, seatCost int) *BookingService {
    if store == nil {
        panic("nil store passed to NewBookingService")
    }
    if !policy.Valid() {
        panic("unknown allocation policy: " + string(policy))
    }
    return &BookingService{store: store, policy: policy, seatCost: seatCost}
}

// Policy reports the occupancy model the service runs with.
func (s *BookingService) Policy() allocation.Policy { return s.policy }

// Book allocates the cheapest eligible table (or seat allocation) for
// a party of people and persists the reservation atomically. It
// returns repository.ErrNoTableAvailable when nothing in the pool can
// host the party, and ErrInvalidPartySize for party sizes below one.
func (s *BookingService) Book(ctx context.Context, userID uint64, people int) (*model.Reservation, *model.Table, error) {
    if people < 1 {
        return nil, nil, ErrInvalidPartySize
    }
    if s.policy == allocation.PolicyShared {
        // The read-compute-write sequence can lose a lock race under
        // serializable isolation; losing transactions are rolled back
        // by the store and retried here against fresh state.
        var (
            res *model.Reservation
            tb  *model.Table
            err error
        )
        for attempt := 0; attempt <= sharedRetries; attempt++ {
            res, tb, err = s.bookShared(ctx, userID, people)
            if !errors.Is(err, repository.ErrTxConflict) {
                break
            }
        }
        return res, tb, err
    }
    return s.bookExclusive(ctx, userID, people)
}

// bookExclusive selects the smallest sufficient free table under row
// locks that skip contended rows, marks it reserved, and records the
// reservation. Concurrent bookings race for distinct tables and
// never wait on each other.
func (s *BookingService) bookExclusive(ctx context.Context, userID uint64, people int) (*model.Reservation, *model.Table, error) {
    adjusted := allocation.AdjustSeats(allocation.PolicyExclusive, people)

    tx, err := s.store.Begin(ctx, false)
    if err != nil {
        return nil, nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    tb, err := tx.LockCheapestFreeTable(ctx, adjusted)
    if err != nil {
        return nil, nil, err
    }
    if err := tx.SetTableReserved(ctx, tb.ID, true); err != nil {
        return nil, nil, err
    }
    res := &model.Reservation{
        ConfirmationCode: uuid.NewString(),
        UserID:           userID,
        TableID:          tb.ID,
        NumberOfSeats:    adjusted,
        Cost:             allocation.Cost(adjusted, tb.Seats, s.seatCost),
    }
    if err := tx.CreateReservation(ctx, res); err != nil {
        return nil, nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, nil, err
    }
    committed = true
    return res, tb, nil
}

// bookShared derives per-table availability from reservation seat
// sums, prices every candidate, and records the cheapest allocation.
// The whole sequence runs in one serializable transaction.
func (s *BookingService) bookShared(ctx context.Context, userID uint64, people int) (*model.Reservation, *model.Table, error) {
    tx, err := s.store.Begin(ctx, true)
    if err != nil {
        return nil, nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    occ, err := tx.TableOccupancy(ctx)
    if err != nil {
        return nil, nil, err
    }
    cands := make([]allocation.Candidate, 0, len(occ))
    for _, o := range occ {
        cands = append(cands, allocation.Candidate{
            TableID:        o.TableID,
            Seats:          o.Seats,
            AvailableSeats: o.Seats - o.SeatsTaken,
        })
    }
    alloc, ok := allocation.ChooseShared(cands, people, s.seatCost)
    if !ok {
        return nil, nil, repository.ErrNoTableAvailable
    }
    res := &model.Reservation{
        ConfirmationCode: uuid.NewString(),
        UserID:           userID,
        TableID:          alloc.TableID,
        NumberOfSeats:    alloc.SeatsToAllocate,
        Cost:             alloc.Cost,
    }
    if err := tx.CreateReservation(ctx, res); err != nil {
        return nil, nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, nil, err
    }
    committed = true
    return res, &model.Table{ID: alloc.TableID, Seats: alloc.TableSeats}, nil
}

// Release frees the capacity held by a reservation owned by userID
// and deletes the record, all in one transaction. A reservation that
// does not exist or belongs to someone else fails with
// repository.ErrReservationNotFound either way.
func (s *BookingService) Release(ctx context.Context, userID, reservationID uint64) (*model.Reservation, error) {
    return s.release(ctx, reservationID, &userID)
}

// AdminRelease frees a reservation regardless of owner.
func (s *BookingService) AdminRelease(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
    return s.release(ctx, reservationID, nil)
}

func (s *BookingService) release(ctx context.Context, reservationID uint64, owner *uint64) (*model.Reservation, error) {
    tx, err := s.store.Begin(ctx, false)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    var res *model.Reservation
    if owner != nil {
        res, err = tx.OwnedReservation(ctx, reservationID, *owner)
    } else {
        res, err = tx.ReservationByID(ctx, reservationID)
    }
    if err != nil {
        return nil, err
    }
    if s.policy == allocation.PolicyExclusive {
        if err := tx.SetTableReserved(ctx, res.TableID, false); err != nil {
            return nil, err
        }
    }
    if err := tx.DeleteReservation(ctx, res.ID); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return res, nil
}

// ListReservations returns the caller's reservations, newest first.
func (s *BookingService) ListReservations(ctx context.Context, userID uint64) ([]repository.ReservationDetail, error) {
    return s.store.ListReservationsByUser(ctx, userID)
}

// GetReservation returns one owned reservation.
func (s *BookingService) GetReservation(ctx context.Context, reservationID, userID uint64) (*repository.ReservationDetail, error) {
    return s.store.ReservationDetailForUser(ctx, reservationID, userID)
}
