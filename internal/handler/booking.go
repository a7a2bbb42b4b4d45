package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticket-booking/internal/apperr"
	"github.com/iliyamo/cinema-ticket-booking/internal/booking"
	"github.com/iliyamo/cinema-ticket-booking/internal/middleware"
	"github.com/iliyamo/cinema-ticket-booking/internal/model"
)

// BookingService is the booking lifecycle as seen by the HTTP layer.
type BookingService interface {
	Create(ctx context.Context, in booking.CreateInput) (*model.BookingDetail, error)
	Update(ctx context.Context, bookingID uint64, in booking.UpdateInput) (*model.BookingDetail, error)
	Cancel(ctx context.Context, bookingID uint64) error
	Get(ctx context.Context, id uint64) (*model.BookingDetail, error)
	List(ctx context.Context, page booking.Page) (*booking.PageResult, error)
	LatestForUserAndSchedule(ctx context.Context, userID, scheduleID uint64) (*model.BookingDetail, error)
	SelectionView(ctx context.Context, scheduleID uint64) (*booking.SelectionView, error)
}

// BookingHandler serves the /api/booking routes.  Every route runs
// behind JWTAuth.
type BookingHandler struct {
	svc BookingService
	log *slog.Logger
}

func NewBookingHandler(svc BookingService, log *slog.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, log: log}
}

type createBookingReq struct {
	UserID     uint64   `json:"user_id"`
	ScheduleID uint64   `json:"schedule_id" validate:"required,gt=0"`
	SeatIDs    []uint64 `json:"seat_id" validate:"required,min=1,dive,gt=0"`
	Services   []uint64 `json:"services" validate:"omitempty,dive,gt=0"`
}

type updateBookingReq struct {
	SeatIDs  []uint64 `json:"seat_id" validate:"required,min=1,dive,gt=0"`
	Services []uint64 `json:"services" validate:"omitempty,dive,gt=0"`
}

// List handles GET /api/booking/list?per_page=N&page=P.
func (h *BookingHandler) List(c echo.Context) error {
	page := booking.Page{
		Page:    queryInt(c, "page", 1),
		PerPage: queryInt(c, "per_page", booking.DefaultPerPage),
	}
	res, err := h.svc.List(c.Request().Context(), page)
	if err != nil {
		return respondError(c, h.log, err, http.StatusBadRequest)
	}
	return ok(c, http.StatusOK, res, "Booking list")
}

// Show handles GET /api/booking/:scheduleId, the seat selection view.
func (h *BookingHandler) Show(c echo.Context) error {
	id, err := pathID(c, "scheduleId")
	if err != nil {
		return respondError(c, h.log, err, http.StatusInternalServerError)
	}
	view, err := h.svc.SelectionView(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.log, err, http.StatusInternalServerError)
	}
	return ok(c, http.StatusOK, view, "Schedule detail")
}

// Store handles POST /api/booking.
func (h *BookingHandler) Store(c echo.Context) error {
	var req createBookingReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.log, err, http.StatusInternalServerError)
	}
	userID := req.UserID
	if userID == 0 {
		userID, _ = middleware.UserID(c)
	}
	b, err := h.svc.Create(c.Request().Context(), booking.CreateInput{
		UserID:     userID,
		ScheduleID: req.ScheduleID,
		SeatIDs:    req.SeatIDs,
		ServiceIDs: req.Services,
	})
	if err != nil {
		return respondError(c, h.log, err, http.StatusInternalServerError)
	}
	return ok(c, http.StatusCreated, b, "Booking created")
}

// Confirmation handles GET /api/booking/konfirmasi/:scheduleId: the
// caller's latest booking on the schedule.
func (h *BookingHandler) Confirmation(c echo.Context) error {
	id, err := pathID(c, "scheduleId")
	if err != nil {
		return respondError(c, h.log, err, http.StatusInternalServerError)
	}
	userID, _ := middleware.UserID(c)
	b, err := h.svc.LatestForUserAndSchedule(c.Request().Context(), userID, id)
	if err != nil {
		return respondError(c, h.log, err, http.StatusInternalServerError)
	}
	return ok(c, http.StatusOK, echo.Map{
		"booking":     b,
		"schedule":    b.Schedule,
		"seats":       b.Seats,
		"services":    b.Services,
		"total_price": b.TotalPrice,
	}, "Booking confirmation")
}

// Detail handles GET /api/booking/detail/:id.
func (h *BookingHandler) Detail(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.log, err, http.StatusInternalServerError)
	}
	b, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.log, err, http.StatusInternalServerError)
	}
	return ok(c, http.StatusOK, b, "Booking detail")
}

// Update handles PUT /api/booking/:id.
func (h *BookingHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.log, err, http.StatusInternalServerError)
	}
	var req updateBookingReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.log, err, http.StatusInternalServerError)
	}
	b, err := h.svc.Update(c.Request().Context(), id, booking.UpdateInput{
		SeatIDs:    req.SeatIDs,
		ServiceIDs: req.Services,
	})
	if err != nil {
		return respondError(c, h.log, err, http.StatusInternalServerError)
	}
	return ok(c, http.StatusOK, b, "Booking updated")
}

// Destroy handles DELETE /api/booking/:id.
func (h *BookingHandler) Destroy(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.log, err, http.StatusInternalServerError)
	}
	if err := h.svc.Cancel(c.Request().Context(), id); err != nil {
		return respondError(c, h.log, err, http.StatusInternalServerError)
	}
	return c.NoContent(http.StatusNoContent)
}

// pathID parses a positive numeric path parameter.  Anything else is
// treated as a reference to a missing record.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.New(apperr.NotFound, "Resource not found").WithField(name, c.Param(name))
	}
	return id, nil
}

// queryInt reads an integer query parameter, falling back to def when
// absent or malformed.  Range checks happen in booking.Page.
func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
