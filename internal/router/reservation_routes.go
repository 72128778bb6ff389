package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/restobook/restaurant-booking/internal/config"
    "github.com/restobook/restaurant-booking/internal/handler"
    "github.com/restobook/restaurant-booking/internal/middleware"
)

// RegisterReservations registers the customer-facing reservation
// endpoints under /v1. All routes require a valid access token; both
// CUSTOMER and ADMIN roles may book for themselves. The booking and
// cancellation endpoints sit behind the Redis token-bucket rate
// limiter so a single client cannot monopolise the table pool during
// rush periods.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string, rdb *redis.Client) {
    g := e.Group("/v1")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))

    limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

    g.POST("/reservations/book", h.Book, limiter)
    g.POST("/reservations/cancel", h.Cancel, limiter)
    g.GET("/reservations", h.List)
    g.GET("/reservations/:id", h.Get)
}
