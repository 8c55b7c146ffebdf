package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/homeman/marketplace-api/internal/core/domain"
	"github.com/homeman/marketplace-api/internal/core/ports"
)

type eventService struct {
	repo ports.EventRepository
	log  zerolog.Logger
}

// NewEventService returns a BookingEventService that writes the audit trail.
func NewEventService(repo ports.EventRepository, log zerolog.Logger) ports.BookingEventService {
	return &eventService{repo: repo, log: log}
}

// Process validates and persists a single booking event.
func (s *eventService) Process(ctx context.Context, event domain.BookingEvent) error {
	if event.BookingID == "" || event.Type == "" {
		return fmt.Errorf("process event: %w", domain.NewValidationError("booking id and type are required"))
	}

	if err := s.repo.InsertEvent(ctx, &event); err != nil {
		return fmt.Errorf("process event: insert: %w", err)
	}

	s.log.Debug().
		Str("booking_id", event.BookingID).
		Str("type", string(event.Type)).
		Str("professional_id", event.ProfessionalID).
		Msg("booking event recorded")

	return nil
}
