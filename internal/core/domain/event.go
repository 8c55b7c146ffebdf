package domain

import "time"

// BookingEventType names a booking mutation recorded in the audit trail.
type BookingEventType string

const (
	EventBookingCreated     BookingEventType = "created"
	EventDuplicateCancelled BookingEventType = "duplicate_cancelled"
	EventStatusChanged      BookingEventType = "status_changed"
	EventBookingRated       BookingEventType = "rated"
)

// BookingEvent is an audit record of a booking mutation.
type BookingEvent struct {
	BookingID      string
	Type           BookingEventType
	ClientID       string
	ProfessionalID string
	Detail         string
	OccurredAt     time.Time
}
