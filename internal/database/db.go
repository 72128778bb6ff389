package database

import (
    "context"
    "database/sql"
    "fmt"
    "time"

    _ "github.com/go-sql-driver/mysql"
)

// Booking transactions are short: one locked table row plus one
// reservation insert. The pool therefore stays small and keeps idle
// connections warm so rush-hour bursts reuse them instead of dialing.
const (
    maxOpenConns    = 20
    maxIdleConns    = 10
    connMaxLifetime = 30 * time.Minute
)

// Open connects to MySQL and verifies the connection before any
// booking traffic is accepted. parseTime maps the DB-managed
// created_at/updated_at columns to time.Time, and loc=UTC keeps
// reservation timestamps comparable across replicas.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
    auth := user
    if pass != "" {
        auth = fmt.Sprintf("%s:%s", user, pass)
    }
    dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
        auth, host, port, name)

    db, err := sql.Open("mysql", dsn)
    if err != nil {
        return nil, err
    }

    db.SetMaxOpenConns(maxOpenConns)
    db.SetMaxIdleConns(maxIdleConns)
    db.SetConnMaxLifetime(connMaxLifetime)

    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := db.PingContext(ctx); err != nil {
        return nil, err
    }
    return db, nil
}
