package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/restobook/restaurant-booking/internal/config"
    "github.com/restobook/restaurant-booking/internal/handler"
    "github.com/restobook/restaurant-booking/internal/middleware"
)

// RegisterAdmin registers the administrative endpoints under
// /v1/admin. Only the ADMIN role may manage the table pool or inspect
// reservations across users. Read endpoints are served through the
// Redis response cache; writes invalidate naturally via the cache TTL.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, rdb *redis.Client) {
    g := e.Group("/v1/admin")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole("ADMIN"))

    cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

    g.POST("/tables", h.CreateTable)
    g.GET("/tables", h.ListTables, cache)
    g.GET("/reservations", h.ListReservations, cache)
    g.DELETE("/reservations/:id", h.DeleteReservation)
}
