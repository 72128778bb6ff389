package main

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/restobook/restaurant-booking/internal/allocation"
    "github.com/restobook/restaurant-booking/internal/config"
    "github.com/restobook/restaurant-booking/internal/database"
    "github.com/restobook/restaurant-booking/internal/handler"
    "github.com/restobook/restaurant-booking/internal/queue"
    "github.com/restobook/restaurant-booking/internal/repository"
    "github.com/restobook/restaurant-booking/internal/router"
    "github.com/restobook/restaurant-booking/internal/service"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    rdb := config.NewRedisClient() // nil when Redis is unreachable; middlewares degrade to no-ops

    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    store := repository.NewBookingStore(db)
    svc := service.NewBookingService(store, allocation.Policy(cfg.AllocationPolicy), cfg.SeatCost)

    e := echo.New()
    router.RegisterRoutes(e)
    router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
    router.RegisterReservations(e, handler.NewReservationHandler(svc), cfg.JWTSecret, rdb)
    router.RegisterAdmin(e, handler.NewAdminHandler(store, svc), cfg.JWTSecret, rdb)

    // Background consumer appends booked/cancelled events to logs/booking.log.
    go queue.StartReservationConsumer()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s, policy=%s)", addr, cfg.Env, svc.Policy())

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
