package ports

import (
	"context"
	"time"

	"github.com/homeman/marketplace-api/internal/core/domain"
)

// BookingRepository defines persistence operations for bookings.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	// FindLatestPendingByClient returns the client's most recently created
	// pending booking, or domain.ErrBookingNotFound.
	FindLatestPendingByClient(ctx context.Context, clientID string) (*domain.Booking, error)
	Delete(ctx context.Context, id string) error
	// CountByProfessionalBetween counts bookings with from <= created_at < to.
	CountByProfessionalBetween(ctx context.Context, professionalID string, from, to time.Time) (int64, error)
	// ListByClient and ListByProfessional return bookings newest first.
	ListByClient(ctx context.Context, clientID string) ([]*domain.Booking, error)
	ListByProfessional(ctx context.Context, professionalID string) ([]*domain.Booking, error)
	// UpdateStatus and SetRating return the booking as stored after the update.
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error)
	SetRating(ctx context.Context, id string, rating float64) (*domain.Booking, error)
	ListRatedByProfessional(ctx context.Context, professionalID string) ([]*domain.Booking, error)
}

// Locker serializes work on a key across processes.
type Locker interface {
	// Acquire blocks until the lock is held or ctx ends. The returned release
	// func must be called exactly once.
	Acquire(ctx context.Context, key string) (release func(context.Context) error, err error)
}
