// Package config loads application configuration from environment
// variables.
package config

import (
    "log"
    "os"
    "strconv"
)

// Config holds all runtime configuration. Each field corresponds to
// an environment variable. SeatCost and AllocationPolicy are
// business-level knobs: the price per seat-unit and the occupancy
// model the allocation engine runs with.
type Config struct {
    Env              string // application environment (e.g. "dev", "prod")
    Port             string // HTTP port to listen on
    DBUser           string // database username
    DBPass           string // database password (optional)
    DBHost           string // database host address
    DBPort           string // database port number
    DBName           string // database name
    JWTSecret        string // secret used to sign JWTs
    AccessTTLMin     int    // access token time-to-live in minutes
    RefreshTTLDays   int    // refresh token time-to-live in days
    BcryptCost       int    // bcrypt cost for password hashing
    SeatCost         int    // price per seat-unit used by the allocation engine
    AllocationPolicy string // occupancy model: "exclusive" or "shared"
}

// Load reads configuration from the environment. Required variables
// are enforced by must(); optional business knobs fall back to the
// reference policy (seat cost 100, exclusive occupancy).
func Load() Config {
    return Config{
        Env:              must("APP_ENV"),
        Port:             must("APP_PORT"),
        DBUser:           must("DB_USER"),
        DBPass:           os.Getenv("DB_PASS"),
        DBHost:           must("DB_HOST"),
        DBPort:           must("DB_PORT"),
        DBName:           must("DB_NAME"),
        JWTSecret:        must("JWT_SECRET"),
        AccessTTLMin:     mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays:   mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:       mustInt("BCRYPT_COST"),
        SeatCost:         intDefault("SEAT_COST", 100),
        AllocationPolicy: strDefault("ALLOCATION_POLICY", "exclusive"),
    }
}

// must retrieves a required environment variable or exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the value to an integer.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

func strDefault(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func intDefault(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, v)
    }
    return n
}
