package ports

import (
	"context"

	"github.com/homeman/marketplace-api/internal/core/domain"
)

// EventRepository persists the booking audit trail.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.BookingEvent) error
}
