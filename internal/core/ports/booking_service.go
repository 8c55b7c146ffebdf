package ports

import (
	"context"
	"time"

	"github.com/homeman/marketplace-api/internal/core/domain"
)

// ProfileSnapshot is the read-only view of a booking counterpart.
// Skills, Rating and ReviewCount are only filled for professionals.
type ProfileSnapshot struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	Location    string
	Skills      []string
	Rating      float64
	ReviewCount int
}

// BookingView is a booking joined with both participants' profiles.
// A participant whose account no longer exists is nil.
type BookingView struct {
	ID           string
	Status       domain.BookingStatus
	Rating       *float64
	CreatedAt    time.Time
	Client       *ProfileSnapshot
	Professional *ProfileSnapshot
}

// BookingService defines the booking lifecycle use cases.
type BookingService interface {
	CreateBooking(ctx context.Context, clientID, professionalID string) (*domain.Booking, error)
	GetMyBookings(ctx context.Context, caller domain.Identity) ([]BookingView, error)
	UpdateBookingStatus(ctx context.Context, bookingID string, status domain.BookingStatus) error
	SubmitRating(ctx context.Context, bookingID string, rating float64) (float64, error)
}
