package handler

import (
	"strings"
	"time"
)

// --- Request types ---

// createBookingRequest accepts the professional under either key.
type createBookingRequest struct {
	ProfessionalID string `json:"professionalId"`
	ProID          string `json:"proId"`
}

func (r createBookingRequest) target() string {
	if id := strings.TrimSpace(r.ProfessionalID); id != "" {
		return id
	}
	return strings.TrimSpace(r.ProID)
}

type updateStatusRequest struct {
	BookingID string `json:"bookingId" validate:"required"`
	Status    string `json:"status"    validate:"required,oneof=approved rejected"`
}

type rateRequest struct {
	BookingID   string   `json:"bookingId"   validate:"required"`
	RatingValue *float64 `json:"ratingValue" validate:"required,gte=1,lte=5"`
}

// --- Response types ---

type profileResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Location    string   `json:"location"`
	Skills      []string `json:"skills,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"reviewCount,omitempty"`
}

type bookingResponse struct {
	ID           string           `json:"id"`
	Status       string           `json:"status"`
	Rating       *float64         `json:"rating"`
	CreatedAt    time.Time        `json:"createdAt"`
	Client       *profileResponse `json:"client"`
	Professional *profileResponse `json:"professional"`
}

type listBookingsResponse struct {
	Success  bool              `json:"success"`
	Bookings []bookingResponse `json:"bookings"`
}

type rateResponse struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	NewAverage float64 `json:"newAverage"`
}
