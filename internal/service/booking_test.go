package service

import (
    "context"
    "errors"
    "fmt"
    "sort"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/restobook/restaurant-booking/internal/allocation"
    "github.com/restobook/restaurant-booking/internal/model"
    "github.com/restobook/restaurant-booking/internal/repository"
)

// memStore is an in-memory repository.Store. A transaction holds the
// store mutex from Begin until Commit or Rollback, so transactions
// are fully serialized and rollback restores state via an undo
// journal. That matches the atomicity the service relies on without
// a database.
type memStore struct {
    mu          sync.Mutex
    tables      map[uint64]*model.Table
    resvs       map[uint64]*model.Reservation
    nextTableID uint64
    nextResvID  uint64
}

func newMemStore(seats ...int) *memStore {
    s := &memStore{
        tables: make(map[uint64]*model.Table),
        resvs:  make(map[uint64]*model.Reservation),
    }
    for _, n := range seats {
        s.nextTableID++
        s.tables[s.nextTableID] = &model.Table{ID: s.nextTableID, Seats: n}
    }
    return s
}

type memTx struct {
    s    *memStore
    done bool
    undo []func()
}

func (s *memStore) Begin(ctx context.Context, serializable bool) (repository.Tx, error) {
    s.mu.Lock()
    return &memTx{s: s}, nil
}

func (t *memTx) Commit() error {
    if t.done {
        return errors.New("tx already finished")
    }
    t.done = true
    t.s.mu.Unlock()
    return nil
}

func (t *memTx) Rollback() error {
    if t.done {
        return nil
    }
    for i := len(t.undo) - 1; i >= 0; i-- {
        t.undo[i]()
    }
    t.done = true
    t.s.mu.Unlock()
    return nil
}

func (t *memTx) LockCheapestFreeTable(ctx context.Context, minSeats int) (*model.Table, error) {
    var best *model.Table
    for _, tb := range t.s.tables {
        if tb.IsReserved || tb.Seats < minSeats {
            continue
        }
        if best == nil || tb.Seats < best.Seats || (tb.Seats == best.Seats && tb.ID < best.ID) {
            best = tb
        }
    }
    if best == nil {
        return nil, repository.ErrNoTableAvailable
    }
    cp := *best
    return &cp, nil
}

func (t *memTx) SetTableReserved(ctx context.Context, tableID uint64, reserved bool) error {
    tb, ok := t.s.tables[tableID]
    if !ok {
        return repository.ErrTableNotFound
    }
    prev := tb.IsReserved
    tb.IsReserved = reserved
    t.undo = append(t.undo, func() { tb.IsReserved = prev })
    return nil
}

func (t *memTx) TableOccupancy(ctx context.Context) ([]repository.TableOccupancy, error) {
    taken := make(map[uint64]int)
    for _, r := range t.s.resvs {
        taken[r.TableID] += r.NumberOfSeats
    }
    out := make([]repository.TableOccupancy, 0, len(t.s.tables))
    for _, tb := range t.s.tables {
        out = append(out, repository.TableOccupancy{TableID: tb.ID, Seats: tb.Seats, SeatsTaken: taken[tb.ID]})
    }
    sort.Slice(out, func(i, j int) bool { return out[i].TableID < out[j].TableID })
    return out, nil
}

func (t *memTx) CreateReservation(ctx context.Context, res *model.Reservation) error {
    t.s.nextResvID++
    res.ID = t.s.nextResvID
    res.CreatedAt = time.Now().UTC()
    res.UpdatedAt = res.CreatedAt
    cp := *res
    t.s.resvs[res.ID] = &cp
    id := res.ID
    t.undo = append(t.undo, func() { delete(t.s.resvs, id) })
    return nil
}

func (t *memTx) OwnedReservation(ctx context.Context, id, userID uint64) (*model.Reservation, error) {
    r, ok := t.s.resvs[id]
    if !ok || r.UserID != userID {
        return nil, repository.ErrReservationNotFound
    }
    cp := *r
    return &cp, nil
}

func (t *memTx) ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    r, ok := t.s.resvs[id]
    if !ok {
        return nil, repository.ErrReservationNotFound
    }
    cp := *r
    return &cp, nil
}

func (t *memTx) DeleteReservation(ctx context.Context, id uint64) error {
    r, ok := t.s.resvs[id]
    if !ok {
        return repository.ErrReservationNotFound
    }
    delete(t.s.resvs, id)
    t.undo = append(t.undo, func() { t.s.resvs[id] = r })
    return nil
}

func (s *memStore) detail(r *model.Reservation) repository.ReservationDetail {
    tb := s.tables[r.TableID]
    return repository.ReservationDetail{
        ID:               r.ID,
        ConfirmationCode: r.ConfirmationCode,
        UserID:           r.UserID,
        NumberOfSeats:    r.NumberOfSeats,
        Cost:             r.Cost,
        Created:          r.CreatedAt.Format(time.RFC3339),
        Modified:         r.UpdatedAt.Format(time.RFC3339),
        Table:            repository.TableDetail{ID: tb.ID, Seats: tb.Seats},
    }
}

func (s *memStore) ListReservationsByUser(ctx context.Context, userID uint64) ([]repository.ReservationDetail, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []repository.ReservationDetail
    for _, r := range s.resvs {
        if r.UserID == userID {
            out = append(out, s.detail(r))
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
    return out, nil
}

func (s *memStore) ReservationDetailForUser(ctx context.Context, id, userID uint64) (*repository.ReservationDetail, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    r, ok := s.resvs[id]
    if !ok || r.UserID != userID {
        return nil, repository.ErrReservationNotFound
    }
    d := s.detail(r)
    return &d, nil
}

func (s *memStore) CreateTable(ctx context.Context, seats int) (*model.Table, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.nextTableID++
    tb := &model.Table{ID: s.nextTableID, Seats: seats, CreatedAt: time.Now().UTC()}
    s.tables[tb.ID] = tb
    cp := *tb
    return &cp, nil
}

func (s *memStore) ListTables(ctx context.Context, reserved *bool) ([]model.Table, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []model.Table
    for _, tb := range s.tables {
        if reserved != nil && tb.IsReserved != *reserved {
            continue
        }
        out = append(out, *tb)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
    return out, nil
}

func (s *memStore) ListAllReservations(ctx context.Context) ([]repository.AdminReservationDetail, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []repository.AdminReservationDetail
    for _, r := range s.resvs {
        out = append(out, repository.AdminReservationDetail{
            ReservationDetail: s.detail(r),
            UserEmail:         fmt.Sprintf("user-%d@example.test", r.UserID),
        })
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
    return out, nil
}

// standardPool mirrors a realistic restaurant floor used across the
// booking scenarios below.
func standardPool() *memStore {
    return newMemStore(4, 4, 6, 5, 8, 9, 10, 6, 7, 10)
}

func newExclusiveService(s *memStore) *BookingService {
    return NewBookingService(s, allocation.PolicyExclusive, 100)
}

func newSharedService(s *memStore) *BookingService {
    return NewBookingService(s, allocation.PolicyShared, 100)
}

func TestNewBookingServicePanicsOnBadPolicy(t *testing.T) {
    assert.Panics(t, func() { NewBookingService(newMemStore(), allocation.Policy("bogus"), 100) })
    assert.Panics(t, func() { NewBookingService(nil, allocation.PolicyExclusive, 100) })
}

func TestBookRejectsInvalidPartySize(t *testing.T) {
    svc := newExclusiveService(standardPool())
    for _, people := range []int{0, -1, -10} {
        _, _, err := svc.Book(context.Background(), 1, people)
        assert.ErrorIs(t, err, ErrInvalidPartySize, "people=%d", people)
    }
}

func TestBookExclusiveSmallParty(t *testing.T) {
    store := standardPool()
    svc := newExclusiveService(store)

    // A party of 3 rounds up to 4 and takes the cheapest free table
    // that fits: the first 4-seater. Filling it exactly earns the
    // one-seat discount.
    res, tb, err := svc.Book(context.Background(), 1, 3)
    require.NoError(t, err)
    assert.Equal(t, uint64(1), tb.ID)
    assert.Equal(t, 4, tb.Seats)
    assert.Equal(t, 4, res.NumberOfSeats)
    assert.Equal(t, 300, res.Cost)
    assert.NotEmpty(t, res.ConfirmationCode)
    assert.True(t, store.tables[tb.ID].IsReserved)
}

func TestBookExclusiveOnlyLargeTablesLeft(t *testing.T) {
    // Only tables larger than 7 seats remain; a party of 3 still
    // rounds to 4 but pays per seat since the table is not filled.
    store := newMemStore(8, 9, 10)
    svc := newExclusiveService(store)

    res, tb, err := svc.Book(context.Background(), 1, 3)
    require.NoError(t, err)
    assert.Equal(t, 8, tb.Seats)
    assert.Equal(t, 4, res.NumberOfSeats)
    assert.Equal(t, 400, res.Cost)
}

func TestBookExclusiveNoTableFits(t *testing.T) {
    svc := newExclusiveService(standardPool())

    _, _, err := svc.Book(context.Background(), 1, 11)
    assert.ErrorIs(t, err, repository.ErrNoTableAvailable)
}

func TestBookExclusivePoolExhaustion(t *testing.T) {
    store := newMemStore(4, 6)
    svc := newExclusiveService(store)

    _, _, err := svc.Book(context.Background(), 1, 2)
    require.NoError(t, err)
    _, _, err = svc.Book(context.Background(), 2, 2)
    require.NoError(t, err)
    _, _, err = svc.Book(context.Background(), 3, 2)
    assert.ErrorIs(t, err, repository.ErrNoTableAvailable)
}

func TestBookCostDeterminism(t *testing.T) {
    // Identical pool states price identical requests identically.
    first, _, err := newExclusiveService(standardPool()).Book(context.Background(), 1, 5)
    require.NoError(t, err)
    second, _, err := newExclusiveService(standardPool()).Book(context.Background(), 2, 5)
    require.NoError(t, err)
    assert.Equal(t, first.Cost, second.Cost)
    assert.Equal(t, first.NumberOfSeats, second.NumberOfSeats)
    assert.Equal(t, first.TableID, second.TableID)
}

func TestReleaseFreesTable(t *testing.T) {
    store := standardPool()
    svc := newExclusiveService(store)

    res, tb, err := svc.Book(context.Background(), 1, 3)
    require.NoError(t, err)
    require.True(t, store.tables[tb.ID].IsReserved)

    released, err := svc.Release(context.Background(), 1, res.ID)
    require.NoError(t, err)
    assert.Equal(t, res.ID, released.ID)
    assert.False(t, store.tables[tb.ID].IsReserved)
    assert.Empty(t, store.resvs)
}

func TestReleaseIsNotIdempotentButSafe(t *testing.T) {
    store := standardPool()
    svc := newExclusiveService(store)

    res, _, err := svc.Book(context.Background(), 1, 3)
    require.NoError(t, err)

    _, err = svc.Release(context.Background(), 1, res.ID)
    require.NoError(t, err)

    // Releasing again reports not-found and changes nothing.
    _, err = svc.Release(context.Background(), 1, res.ID)
    assert.ErrorIs(t, err, repository.ErrReservationNotFound)
}

func TestReleaseHidesForeignReservations(t *testing.T) {
    store := standardPool()
    svc := newExclusiveService(store)

    res, tb, err := svc.Book(context.Background(), 1, 3)
    require.NoError(t, err)

    // Another user's attempt reads as not-found and must not free
    // the table.
    _, err = svc.Release(context.Background(), 2, res.ID)
    assert.ErrorIs(t, err, repository.ErrReservationNotFound)
    assert.True(t, store.tables[tb.ID].IsReserved)
    assert.Len(t, store.resvs, 1)
}

func TestAdminReleaseIgnoresOwnership(t *testing.T) {
    store := standardPool()
    svc := newExclusiveService(store)

    res, tb, err := svc.Book(context.Background(), 1, 3)
    require.NoError(t, err)

    released, err := svc.AdminRelease(context.Background(), res.ID)
    require.NoError(t, err)
    assert.Equal(t, res.ID, released.ID)
    assert.False(t, store.tables[tb.ID].IsReserved)
}

func TestConcurrentExclusiveBooking(t *testing.T) {
    // Ten tables, a hundred simultaneous bookers: exactly ten must
    // win, each on a distinct table, and the rest must see the pool
    // as exhausted.
    store := newMemStore(4, 4, 4, 4, 4, 4, 4, 4, 4, 4)
    svc := newExclusiveService(store)

    const workers = 100
    var wg sync.WaitGroup
    results := make(chan error, workers)
    tableIDs := make(chan uint64, workers)

    for i := 0; i < workers; i++ {
        wg.Add(1)
        go func(userID uint64) {
            defer wg.Done()
            _, tb, err := svc.Book(context.Background(), userID, 2)
            results <- err
            if err == nil {
                tableIDs <- tb.ID
            }
        }(uint64(i + 1))
    }
    wg.Wait()
    close(results)
    close(tableIDs)

    var wins, exhausted int
    for err := range results {
        switch {
        case err == nil:
            wins++
        case errors.Is(err, repository.ErrNoTableAvailable):
            exhausted++
        default:
            t.Fatalf("unexpected error: %v", err)
        }
    }
    assert.Equal(t, 10, wins)
    assert.Equal(t, 90, exhausted)

    seen := make(map[uint64]bool)
    for id := range tableIDs {
        assert.False(t, seen[id], "table %d allocated twice", id)
        seen[id] = true
    }
    assert.Len(t, store.resvs, 10)
}

func TestBookSharedFillsRemainder(t *testing.T) {
    store := newMemStore(6)
    svc := newSharedService(store)

    ctx := context.Background()
    for i := 0; i < 3; i++ {
        res, tb, err := svc.Book(ctx, uint64(i+1), 2)
        require.NoError(t, err)
        assert.Equal(t, uint64(1), tb.ID)
        assert.Equal(t, 2, res.NumberOfSeats)
        assert.Equal(t, 200, res.Cost)
    }

    // The table is now full.
    _, _, err := svc.Book(ctx, 9, 2)
    assert.ErrorIs(t, err, repository.ErrNoTableAvailable)
}

func TestBookSharedDiscountOnAdjustedFill(t *testing.T) {
    store := newMemStore(4)
    svc := newSharedService(store)

    // A party of 3 rounds to 4 and fills the empty 4-seater, earning
    // the discount.
    res, tb, err := svc.Book(context.Background(), 1, 3)
    require.NoError(t, err)
    assert.Equal(t, 4, tb.Seats)
    assert.Equal(t, 4, res.NumberOfSeats)
    assert.Equal(t, 300, res.Cost)
}

func TestConcurrentSharedCapacityInvariant(t *testing.T) {
    // Two 4-seaters, twenty bookers of 2: exactly four reservations
    // fit and no table may exceed its capacity.
    store := newMemStore(4, 4)
    svc := newSharedService(store)

    const workers = 20
    var wg sync.WaitGroup
    results := make(chan error, workers)
    for i := 0; i < workers; i++ {
        wg.Add(1)
        go func(userID uint64) {
            defer wg.Done()
            _, _, err := svc.Book(context.Background(), userID, 2)
            results <- err
        }(uint64(i + 1))
    }
    wg.Wait()
    close(results)

    var wins int
    for err := range results {
        if err == nil {
            wins++
        } else {
            assert.ErrorIs(t, err, repository.ErrNoTableAvailable)
        }
    }
    assert.Equal(t, 4, wins)

    taken := make(map[uint64]int)
    for _, r := range store.resvs {
        taken[r.TableID] += r.NumberOfSeats
    }
    for id, seats := range taken {
        assert.LessOrEqual(t, seats, store.tables[id].Seats, "table %d over capacity", id)
    }
}

func TestSharedReleaseReturnsCapacity(t *testing.T) {
    store := newMemStore(4)
    svc := newSharedService(store)
    ctx := context.Background()

    first, _, err := svc.Book(ctx, 1, 2)
    require.NoError(t, err)
    _, _, err = svc.Book(ctx, 2, 2)
    require.NoError(t, err)
    _, _, err = svc.Book(ctx, 3, 2)
    require.ErrorIs(t, err, repository.ErrNoTableAvailable)

    _, err = svc.Release(ctx, 1, first.ID)
    require.NoError(t, err)

    // Freed seats are immediately bookable again.
    res, _, err := svc.Book(ctx, 3, 2)
    require.NoError(t, err)
    assert.Equal(t, 200, res.Cost)
}

func TestListAndGetReservations(t *testing.T) {
    store := standardPool()
    svc := newExclusiveService(store)
    ctx := context.Background()

    first, _, err := svc.Book(ctx, 1, 2)
    require.NoError(t, err)
    second, _, err := svc.Book(ctx, 1, 5)
    require.NoError(t, err)
    _, _, err = svc.Book(ctx, 2, 4)
    require.NoError(t, err)

    mine, err := svc.ListReservations(ctx, 1)
    require.NoError(t, err)
    require.Len(t, mine, 2)
    // Newest first.
    assert.Equal(t, second.ID, mine[0].ID)
    assert.Equal(t, first.ID, mine[1].ID)

    got, err := svc.GetReservation(ctx, first.ID, 1)
    require.NoError(t, err)
    assert.Equal(t, first.ConfirmationCode, got.ConfirmationCode)

    // Foreign reservations stay hidden.
    _, err = svc.GetReservation(ctx, first.ID, 2)
    assert.ErrorIs(t, err, repository.ErrReservationNotFound)
}
