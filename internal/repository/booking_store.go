package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/go-sql-driver/mysql"

    "github.com/restobook/restaurant-booking/internal/model"
)

// BookingStore is the MySQL-backed implementation of Store. Tables
// and reservations live in the same schema and every booking or
// release mutates both inside one transaction, so a single store
// owns both. All timestamps are stored and compared in UTC.
type BookingStore struct {
    db *sql.DB
}

// NewBookingStore returns a BookingStore bound to the given database.
func NewBookingStore(db *sql.DB) *BookingStore { return &BookingStore{db: db} }

// DB exposes the underlying handle for health checks.
func (s *BookingStore) DB() *sql.DB { return s.db }

// MySQL error numbers that indicate the transaction lost a lock race
// and may be retried: 1213 deadlock, 1205 lock wait timeout.
func isLockConflict(err error) bool {
    var me *mysql.MySQLError
    if errors.As(err, &me) {
        return me.Number == 1213 || me.Number == 1205
    }
    return false
}

// Begin opens a transaction. Serializable isolation is requested for
// the shared-seating policy so that two concurrent bookings cannot
// both observe the same free capacity and over-allocate it; the
// resulting deadlock aborts one of them with ErrTxConflict.
func (s *BookingStore) Begin(ctx context.Context, serializable bool) (Tx, error) {
    var opts *sql.TxOptions
    if serializable {
        opts = &sql.TxOptions{Isolation: sql.LevelSerializable}
    }
    tx, err := s.db.BeginTx(ctx, opts)
    if err != nil {
        return nil, err
    }
    return &bookingTx{tx: tx}, nil
}

// bookingTx wraps *sql.Tx and translates driver lock conflicts into
// the retryable sentinel.
type bookingTx struct {
    tx *sql.Tx
}

func (t *bookingTx) Commit() error {
    if err := t.tx.Commit(); err != nil {
        if isLockConflict(err) {
            return ErrTxConflict
        }
        return err
    }
    return nil
}

func (t *bookingTx) Rollback() error { return t.tx.Rollback() }

// LockCheapestFreeTable picks the free table with the smallest
// sufficient capacity and locks its row. SKIP LOCKED excludes rows
// already locked by concurrent bookings, so two simultaneous callers
// see disjoint candidate sets and never block on each other.
func (t *bookingTx) LockCheapestFreeTable(ctx context.Context, minSeats int) (*model.Table, error) {
    const q = `SELECT id, seats, is_reserved, created_at, updated_at
               FROM tables
               WHERE is_reserved = FALSE AND seats >= ?
               ORDER BY seats ASC, id ASC
               LIMIT 1
               FOR UPDATE SKIP LOCKED`
    var tb model.Table
    err := t.tx.QueryRowContext(ctx, q, minSeats).Scan(
        &tb.ID, &tb.Seats, &tb.IsReserved, &tb.CreatedAt, &tb.UpdatedAt,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNoTableAvailable
        }
        if isLockConflict(err) {
            return nil, ErrTxConflict
        }
        return nil, err
    }
    return &tb, nil
}

// SetTableReserved flips the exclusive-occupancy flag on a table.
func (t *bookingTx) SetTableReserved(ctx context.Context, tableID uint64, reserved bool) error {
    res, err := t.tx.ExecContext(ctx,
        `UPDATE tables SET is_reserved = ? WHERE id = ?`, reserved, tableID)
    if err != nil {
        if isLockConflict(err) {
            return ErrTxConflict
        }
        return err
    }
    if n, err := res.RowsAffected(); err == nil && n == 0 {
        return ErrTableNotFound
    }
    return nil
}

// TableOccupancy sums the seats of active reservations per table.
// Under serializable isolation the read locks taken here are what
// force conflicting concurrent bookings to abort instead of both
// committing.
func (t *bookingTx) TableOccupancy(ctx context.Context) ([]TableOccupancy, error) {
    const q = `SELECT t.id, t.seats, COALESCE(SUM(r.number_of_seats), 0)
               FROM tables t
               LEFT JOIN reservations r ON r.table_id = t.id
               GROUP BY t.id, t.seats
               ORDER BY t.id`
    rows, err := t.tx.QueryContext(ctx, q)
    if err != nil {
        if isLockConflict(err) {
            return nil, ErrTxConflict
        }
        return nil, err
    }
    defer rows.Close()
    var occ []TableOccupancy
    for rows.Next() {
        var o TableOccupancy
        if err := rows.Scan(&o.TableID, &o.Seats, &o.SeatsTaken); err != nil {
            return nil, err
        }
        occ = append(occ, o)
    }
    if err := rows.Err(); err != nil {
        if isLockConflict(err) {
            return nil, ErrTxConflict
        }
        return nil, err
    }
    return occ, nil
}

// CreateReservation inserts the reservation row and queries it back
// to populate the generated ID and the DB-managed timestamps.
func (t *bookingTx) CreateReservation(ctx context.Context, res *model.Reservation) error {
    const q = `INSERT INTO reservations (confirmation_code, user_id, table_id, number_of_seats, cost)
               VALUES (?, ?, ?, ?, ?)`
    out, err := t.tx.ExecContext(ctx, q,
        res.ConfirmationCode, res.UserID, res.TableID, res.NumberOfSeats, res.Cost)
    if err != nil {
        if isLockConflict(err) {
            return ErrTxConflict
        }
        return err
    }
    id, err := out.LastInsertId()
    if err != nil {
        return err
    }
    res.ID = uint64(id)
    const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
    return t.tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt)
}

// scanReservation reads a full reservation row from a QueryRow result.
func scanReservation(row *sql.Row) (*model.Reservation, error) {
    var r model.Reservation
    err := row.Scan(&r.ID, &r.ConfirmationCode, &r.UserID, &r.TableID,
        &r.NumberOfSeats, &r.Cost, &r.CreatedAt, &r.UpdatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrReservationNotFound
        }
        if isLockConflict(err) {
            return nil, ErrTxConflict
        }
        return nil, err
    }
    return &r, nil
}

// OwnedReservation loads and locks a reservation restricted to its
// owner. A row owned by someone else matches nothing, so foreign
// ownership surfaces as ErrReservationNotFound just like absence.
func (t *bookingTx) OwnedReservation(ctx context.Context, id, userID uint64) (*model.Reservation, error) {
    const q = `SELECT id, confirmation_code, user_id, table_id, number_of_seats, cost, created_at, updated_at
               FROM reservations
               WHERE id = ? AND user_id = ?
               FOR UPDATE`
    return scanReservation(t.tx.QueryRowContext(ctx, q, id, userID))
}

// ReservationByID loads and locks a reservation without an ownership
// filter. Only the administrative release path uses it.
func (t *bookingTx) ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    const q = `SELECT id, confirmation_code, user_id, table_id, number_of_seats, cost, created_at, updated_at
               FROM reservations
               WHERE id = ?
               FOR UPDATE`
    return scanReservation(t.tx.QueryRowContext(ctx, q, id))
}

// DeleteReservation removes the reservation row.
func (t *bookingTx) DeleteReservation(ctx context.Context, id uint64) error {
    _, err := t.tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
    if err != nil && isLockConflict(err) {
        return ErrTxConflict
    }
    return err
}

// detailFromRow assembles the response shape from joined columns.
func detailFromRow(id uint64, code string, userID uint64, seatsBooked, cost int,
    created, modified time.Time, tableID uint64, tableSeats int) ReservationDetail {
    return ReservationDetail{
        ID:               id,
        ConfirmationCode: code,
        UserID:           userID,
        NumberOfSeats:    seatsBooked,
        Cost:             cost,
        Created:          created.UTC().Format(time.RFC3339),
        Modified:         modified.UTC().Format(time.RFC3339),
        Table:            TableDetail{ID: tableID, Seats: tableSeats},
    }
}

// ListReservationsByUser returns the caller's reservations with their
// table summaries, newest first.
func (s *BookingStore) ListReservationsByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
    const q = `SELECT r.id, r.confirmation_code, r.user_id, r.number_of_seats, r.cost,
                      r.created_at, r.updated_at, t.id, t.seats
               FROM reservations r
               JOIN tables t ON t.id = r.table_id
               WHERE r.user_id = ?
               ORDER BY r.created_at DESC, r.id DESC`
    rows, err := s.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    details := make([]ReservationDetail, 0)
    for rows.Next() {
        var (
            id, uid, tid       uint64
            code               string
            seatsBooked, cost  int
            tableSeats         int
            created, modified  time.Time
        )
        if err := rows.Scan(&id, &code, &uid, &seatsBooked, &cost, &created, &modified, &tid, &tableSeats); err != nil {
            return nil, err
        }
        details = append(details, detailFromRow(id, code, uid, seatsBooked, cost, created, modified, tid, tableSeats))
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return details, nil
}

// ReservationDetailForUser returns a single owned reservation.
func (s *BookingStore) ReservationDetailForUser(ctx context.Context, id, userID uint64) (*ReservationDetail, error) {
    const q = `SELECT r.id, r.confirmation_code, r.user_id, r.number_of_seats, r.cost,
                      r.created_at, r.updated_at, t.id, t.seats
               FROM reservations r
               JOIN tables t ON t.id = r.table_id
               WHERE r.id = ? AND r.user_id = ?`
    var (
        rid, uid, tid      uint64
        code               string
        seatsBooked, cost  int
        tableSeats         int
        created, modified  time.Time
    )
    err := s.db.QueryRowContext(ctx, q, id, userID).Scan(
        &rid, &code, &uid, &seatsBooked, &cost, &created, &modified, &tid, &tableSeats)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrReservationNotFound
        }
        return nil, err
    }
    det := detailFromRow(rid, code, uid, seatsBooked, cost, created, modified, tid, tableSeats)
    return &det, nil
}

// CreateTable provisions a new free table and reads back the row to
// populate timestamps.
func (s *BookingStore) CreateTable(ctx context.Context, seats int) (*model.Table, error) {
    out, err := s.db.ExecContext(ctx, `INSERT INTO tables (seats) VALUES (?)`, seats)
    if err != nil {
        return nil, err
    }
    id, err := out.LastInsertId()
    if err != nil {
        return nil, err
    }
    var tb model.Table
    const sel = `SELECT id, seats, is_reserved, created_at, updated_at FROM tables WHERE id = ?`
    if err := s.db.QueryRowContext(ctx, sel, id).Scan(
        &tb.ID, &tb.Seats, &tb.IsReserved, &tb.CreatedAt, &tb.UpdatedAt); err != nil {
        return nil, err
    }
    return &tb, nil
}

// ListTables returns all tables newest first, optionally filtered by
// the is_reserved flag.
func (s *BookingStore) ListTables(ctx context.Context, reserved *bool) ([]model.Table, error) {
    q := `SELECT id, seats, is_reserved, created_at, updated_at FROM tables`
    args := []interface{}{}
    if reserved != nil {
        q += ` WHERE is_reserved = ?`
        args = append(args, *reserved)
    }
    q += ` ORDER BY created_at DESC, id DESC`
    rows, err := s.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    tables := make([]model.Table, 0)
    for rows.Next() {
        var tb model.Table
        if err := rows.Scan(&tb.ID, &tb.Seats, &tb.IsReserved, &tb.CreatedAt, &tb.UpdatedAt); err != nil {
            return nil, err
        }
        tables = append(tables, tb)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return tables, nil
}

// ListAllReservations returns every reservation with owner email and
// table summary, newest first.
func (s *BookingStore) ListAllReservations(ctx context.Context) ([]AdminReservationDetail, error) {
    const q = `SELECT r.id, r.confirmation_code, r.user_id, u.email, r.number_of_seats, r.cost,
                      r.created_at, r.updated_at, t.id, t.seats
               FROM reservations r
               JOIN tables t ON t.id = r.table_id
               JOIN users u ON u.id = r.user_id
               ORDER BY r.created_at DESC, r.id DESC`
    rows, err := s.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    details := make([]AdminReservationDetail, 0)
    for rows.Next() {
        var (
            id, uid, tid       uint64
            code, email        string
            seatsBooked, cost  int
            tableSeats         int
            created, modified  time.Time
        )
        if err := rows.Scan(&id, &code, &uid, &email, &seatsBooked, &cost, &created, &modified, &tid, &tableSeats); err != nil {
            return nil, err
        }
        details = append(details, AdminReservationDetail{
            ReservationDetail: detailFromRow(id, code, uid, seatsBooked, cost, created, modified, tid, tableSeats),
            UserEmail:         email,
        })
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return details, nil
}
