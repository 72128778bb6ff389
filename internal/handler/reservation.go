package handler

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/restobook/restaurant-booking/internal/model"
    "github.com/restobook/restaurant-booking/internal/queue"
    "github.com/restobook/restaurant-booking/internal/repository"
    "github.com/restobook/restaurant-booking/internal/service"
)

// ReservationHandler exposes the booking flow to customers: booking a
// table for a party, cancelling an owned reservation, and listing or
// fetching owned reservations. JWT authentication and role checks
// happen in middleware; each method only needs the verified user id
// from the context. Atomicity lives in the service layer.
type ReservationHandler struct {
    Svc *service.BookingService
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(svc *service.BookingService) *ReservationHandler {
    if svc == nil {
        panic("nil service passed to NewReservationHandler")
    }
    return &ReservationHandler{Svc: svc}
}

// reservationJSON renders a reservation with its table for API
// responses.
func reservationJSON(res *model.Reservation, tb *model.Table) repository.ReservationDetail {
    return repository.ReservationDetail{
        ID:               res.ID,
        ConfirmationCode: res.ConfirmationCode,
        UserID:           res.UserID,
        NumberOfSeats:    res.NumberOfSeats,
        Cost:             res.Cost,
        Created:          res.CreatedAt.UTC().Format(time.RFC3339),
        Modified:         res.UpdatedAt.UTC().Format(time.RFC3339),
        Table:            repository.TableDetail{ID: tb.ID, Seats: tb.Seats},
    }
}

// Book handles POST /v1/reservations/book. The body must contain a
// JSON object with a positive integer "number_of_people". On success
// it responds 200 OK with the created reservation; when no table can
// host the party it responds 400 with a "no capacity" message and no
// state is mutated.
func (h *ReservationHandler) Book(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        NumberOfPeople *int `json:"number_of_people"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.NumberOfPeople == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "number_of_people is required"})
    }

    ctx := c.Request().Context()
    res, tb, err := h.Svc.Book(ctx, userID, *body.NumberOfPeople)
    if err != nil {
        switch {
        case errors.Is(err, service.ErrInvalidPartySize):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "number_of_people must be at least 1"})
        case errors.Is(err, repository.ErrNoTableAvailable):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "no suitable table available"})
        case errors.Is(err, repository.ErrTxConflict):
            return c.JSON(http.StatusConflict, echo.Map{"error": "booking conflict, please retry"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
    }

    // Best effort; the reservation is already committed and a broker
    // outage must not fail the request.
    _ = queue.PublishReservationBooked(ctx, queue.ReservationBookedEvent{
        ReservationID:    res.ID,
        ConfirmationCode: res.ConfirmationCode,
        UserID:           res.UserID,
        TableID:          tb.ID,
        TableSeats:       tb.Seats,
        NumberOfSeats:    res.NumberOfSeats,
        Cost:             res.Cost,
        BookedAt:         res.CreatedAt.UTC().Format(time.RFC3339),
    })

    return c.JSON(http.StatusOK, reservationJSON(res, tb))
}

// Cancel handles POST /v1/reservations/cancel. The body must contain
// a "reservation_id". It frees the associated capacity and deletes
// the reservation. A reservation that does not exist or belongs to a
// different user yields 404 either way.
func (h *ReservationHandler) Cancel(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        ReservationID uint64 `json:"reservation_id"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.ReservationID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_id is required"})
    }

    ctx := c.Request().Context()
    res, err := h.Svc.Release(ctx, userID, body.ReservationID)
    if err != nil {
        if errors.Is(err, repository.ErrReservationNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancellation failed"})
    }

    _ = queue.PublishReservationCancelled(ctx, queue.ReservationCancelledEvent{
        ReservationID:    res.ID,
        ConfirmationCode: res.ConfirmationCode,
        UserID:           res.UserID,
        TableID:          res.TableID,
        NumberOfSeats:    res.NumberOfSeats,
        CancelledAt:      time.Now().UTC().Format(time.RFC3339),
    })

    return c.JSON(http.StatusOK, echo.Map{"detail": "reservation cancelled successfully"})
}

// List handles GET /v1/reservations. It returns the caller's
// reservations, newest first, with their table summaries.
func (h *ReservationHandler) List(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    details, err := h.Svc.ListReservations(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": details})
}

// Get handles GET /v1/reservations/:id. Reservations belonging to
// other users respond 404, indistinguishable from absence.
func (h *ReservationHandler) Get(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || resID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    detail, err := h.Svc.GetReservation(c.Request().Context(), resID, userID)
    if err != nil {
        if errors.Is(err, repository.ErrReservationNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": detail})
}
