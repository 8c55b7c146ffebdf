package ports

import (
	"context"

	"github.com/homeman/marketplace-api/internal/core/domain"
)

// EventPublisher hands booking events to the audit pipeline without blocking
// the request on persistence.
type EventPublisher interface {
	Publish(event domain.BookingEvent)
}

// BookingEventService processes a single audit event.
type BookingEventService interface {
	Process(ctx context.Context, event domain.BookingEvent) error
}
