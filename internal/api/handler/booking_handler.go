package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/homeman/marketplace-api/internal/api/metrics"
	"github.com/homeman/marketplace-api/internal/core/domain"
	"github.com/homeman/marketplace-api/internal/core/ports"
)

// BookingHandler handles HTTP requests for the hire-request lifecycle.
type BookingHandler struct {
	service ports.BookingService
}

func NewBookingHandler(service ports.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Create handles POST /api/bookings.
//
// @Summary      Send a hire request to a professional
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createBookingRequest  true  "Target professional"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	target := req.target()
	if target == "" {
		return domain.NewValidationError("professionalId is required")
	}

	if _, err := h.service.CreateBooking(c.Request().Context(), caller.UserID, target); err != nil {
		metrics.BookingsRefusedTotal.WithLabelValues(refusalReason(err)).Inc()
		return err
	}

	metrics.BookingsCreatedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Hire request sent!"})
}

// Mine handles GET /api/bookings/my.
//
// @Summary      List the caller's bookings, newest first
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listBookingsResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/bookings/my [get]
func (h *BookingHandler) Mine(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	views, err := h.service.GetMyBookings(c.Request().Context(), caller)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listBookingsResponse{
		Success:  true,
		Bookings: toBookingResponses(views),
	})
}

// UpdateStatus handles PUT /api/bookings/status.
//
// @Summary      Approve or reject a booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateStatusRequest  true  "Booking decision"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/bookings/status [put]
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	if _, err := ctxIdentity(c); err != nil {
		return err
	}

	var req updateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	status := domain.BookingStatus(req.Status)
	if err := h.service.UpdateBookingStatus(c.Request().Context(), req.BookingID, status); err != nil {
		return err
	}

	metrics.BookingStatusUpdatesTotal.WithLabelValues(req.Status).Inc()
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Job " + req.Status})
}

// Rate handles POST /api/bookings/rate.
//
// @Summary      Rate a completed booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      rateRequest  true  "Rating"
// @Success      200   {object}  rateResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/bookings/rate [post]
func (h *BookingHandler) Rate(c echo.Context) error {
	if _, err := ctxIdentity(c); err != nil {
		return err
	}

	var req rateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.RatingValue == nil {
		return domain.NewValidationError("ratingValue is required")
	}

	avg, err := h.service.SubmitRating(c.Request().Context(), req.BookingID, *req.RatingValue)
	if err != nil {
		return err
	}

	metrics.RatingsSubmittedTotal.Inc()
	return c.JSON(http.StatusOK, rateResponse{
		Success:    true,
		Message:    "Rating submitted",
		NewAverage: avg,
	})
}

func refusalReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, domain.ErrProfessionalNotFound):
		return "professional_not_found"
	case errors.Is(err, domain.ErrLockNotAcquired):
		return "lock_timeout"
	default:
		return "error"
	}
}
