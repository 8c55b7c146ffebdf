package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/homeman/marketplace-api/internal/core/domain"
	"github.com/homeman/marketplace-api/internal/core/ports"
)

const collectionBookingEvents = "booking_events"

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	db *mongo.Database
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) ports.EventRepository {
	return &EventRepository{db: db}
}

// InsertEvent appends a booking event to the booking_events audit collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.BookingEvent) error {
	doc := bson.M{
		"booking_id":      event.BookingID,
		"type":            string(event.Type),
		"client_id":       event.ClientID,
		"professional_id": event.ProfessionalID,
		"occurred_at":     event.OccurredAt.UTC(),
		"processed_at":    time.Now().UTC(),
	}
	if event.Detail != "" {
		doc["detail"] = event.Detail
	}

	_, err := r.db.Collection(collectionBookingEvents).InsertOne(ctx, doc)
	return err
}
