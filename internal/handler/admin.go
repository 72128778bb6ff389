package handler

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/restobook/restaurant-booking/internal/queue"
    "github.com/restobook/restaurant-booking/internal/repository"
    "github.com/restobook/restaurant-booking/internal/service"
)

// Seat capacities tables are provisioned in.
const (
    minTableSeats = 4
    maxTableSeats = 10
)

// AdminHandler exposes the administrative surface: provisioning
// tables, inspecting the pool, and releasing any reservation
// regardless of owner. All routes behind it require the ADMIN role.
type AdminHandler struct {
    Store repository.Store
    Svc   *service.BookingService
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(store repository.Store, svc *service.BookingService) *AdminHandler {
    if store == nil || svc == nil {
        panic("nil dependency passed to NewAdminHandler")
    }
    return &AdminHandler{Store: store, Svc: svc}
}

// CreateTable handles POST /v1/admin/tables. The body must contain a
// "seats" count between 4 and 10. New tables start free.
func (h *AdminHandler) CreateTable(c echo.Context) error {
    var body struct {
        Seats int `json:"seats"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.Seats < minTableSeats || body.Seats > maxTableSeats {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats must be between 4 and 10"})
    }
    tb, err := h.Store.CreateTable(c.Request().Context(), body.Seats)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create table"})
    }
    return c.JSON(http.StatusCreated, tb)
}

// ListTables handles GET /v1/admin/tables. The optional ?reserved=
// query parameter filters by the exclusive-occupancy flag.
func (h *AdminHandler) ListTables(c echo.Context) error {
    var reserved *bool
    if q := c.QueryParam("reserved"); q != "" {
        b, err := strconv.ParseBool(q)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reserved filter"})
        }
        reserved = &b
    }
    tables, err := h.Store.ListTables(c.Request().Context(), reserved)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tables"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": tables})
}

// ListReservations handles GET /v1/admin/reservations. It returns all
// active reservations with owner emails, newest first.
func (h *AdminHandler) ListReservations(c echo.Context) error {
    details, err := h.Store.ListAllReservations(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": details})
}

// DeleteReservation handles DELETE /v1/admin/reservations/:id. It
// releases any user's reservation and frees the table capacity.
func (h *AdminHandler) DeleteReservation(c echo.Context) error {
    resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || resID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    ctx := c.Request().Context()
    res, err := h.Svc.AdminRelease(ctx, resID)
    if err != nil {
        if errors.Is(err, repository.ErrReservationNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release reservation"})
    }

    _ = queue.PublishReservationCancelled(ctx, queue.ReservationCancelledEvent{
        ReservationID:    res.ID,
        ConfirmationCode: res.ConfirmationCode,
        UserID:           res.UserID,
        TableID:          res.TableID,
        NumberOfSeats:    res.NumberOfSeats,
        CancelledAt:      time.Now().UTC().Format(time.RFC3339),
    })

    return c.NoContent(http.StatusNoContent)
}
