package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/homeman/marketplace-api/internal/core/domain"
	"github.com/homeman/marketplace-api/internal/core/ports"
)

// BookingPolicy holds the tunables of the booking rules.
type BookingPolicy struct {
	// DailyLimit caps the requests a professional receives per calendar day.
	DailyLimit int
	// Location defines the calendar day used for the quota window.
	Location *time.Location
}

// BookingService implements the hire-request lifecycle and rating aggregation.
//
// CreateBooking and SubmitRating run their read-modify-write sequences while
// holding a lock keyed by professional id, so concurrent requests for the same
// professional cannot both pass the quota check or drop a rating from the
// aggregate.
type BookingService struct {
	bookings ports.BookingRepository
	users    ports.UserRepository
	locker   ports.Locker
	events   ports.EventPublisher
	policy   BookingPolicy
	now      func() time.Time
	log      zerolog.Logger
}

func NewBookingService(
	bookings ports.BookingRepository,
	users ports.UserRepository,
	locker ports.Locker,
	events ports.EventPublisher,
	policy BookingPolicy,
	log zerolog.Logger,
) *BookingService {
	if policy.DailyLimit <= 0 {
		policy.DailyLimit = domain.DefaultDailyLimit
	}
	if policy.Location == nil {
		policy.Location = time.Local
	}
	return &BookingService{
		bookings: bookings,
		users:    users,
		locker:   locker,
		events:   events,
		policy:   policy,
		now:      time.Now,
		log:      log,
	}
}

// WithClock replaces the time source.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// CreateBooking sends a hire request from clientID to professionalID.
//
// The client's latest pending request is deleted first when its professional
// shares a skill with the new target. The request is refused with
// domain.ErrQuotaExceeded once the professional has DailyLimit bookings today.
func (s *BookingService) CreateBooking(ctx context.Context, clientID, professionalID string) (*domain.Booking, error) {
	pro, err := s.users.FindByID(ctx, professionalID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrProfessionalNotFound
		}
		return nil, fmt.Errorf("create booking: find professional: %w", err)
	}
	if pro.Role != domain.RolePro {
		return nil, domain.ErrProfessionalNotFound
	}

	var (
		created *domain.Booking
		events  []domain.BookingEvent
	)
	err = s.withProfessionalLock(ctx, pro.ID, func() error {
		stale, err := s.cancelOverlappingPending(ctx, clientID, pro)
		if err != nil {
			return err
		}
		if stale != nil {
			events = append(events, s.event(stale, domain.EventDuplicateCancelled, "replaced by request to "+pro.ID))
		}

		now := s.now()
		from, to := domain.DayWindow(now, s.policy.Location)
		count, err := s.bookings.CountByProfessionalBetween(ctx, pro.ID, from, to)
		if err != nil {
			return fmt.Errorf("count daily: %w", err)
		}
		if count >= int64(s.policy.DailyLimit) {
			s.log.Info().
				Str("professional_id", pro.ID).
				Int64("count", count).
				Msg("daily booking limit reached")
			return domain.ErrQuotaExceeded
		}

		created, err = s.bookings.Create(ctx, &domain.Booking{
			ClientID:       clientID,
			ProfessionalID: pro.ID,
			Status:         domain.BookingPending,
			CreatedAt:      now.UTC(),
			UpdatedAt:      now.UTC(),
		})
		if err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		events = append(events, s.event(created, domain.EventBookingCreated, ""))
		return nil
	})
	// Events are handed off only once the lock is released.
	s.publish(events...)
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info().
		Str("booking_id", created.ID).
		Str("client_id", clientID).
		Str("professional_id", pro.ID).
		Msg("booking created")

	return created, nil
}

// cancelOverlappingPending deletes the client's latest pending booking when
// its professional's skills intersect target's skills. It returns the deleted
// booking, or nil when nothing was cancelled.
func (s *BookingService) cancelOverlappingPending(ctx context.Context, clientID string, target *domain.User) (*domain.Booking, error) {
	stale, err := s.bookings.FindLatestPendingByClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find pending: %w", err)
	}

	previous, err := s.users.FindByID(ctx, stale.ProfessionalID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find pending professional: %w", err)
	}

	if !domain.SkillsOverlap(previous.Skills, target.Skills) {
		return nil, nil
	}

	if err := s.bookings.Delete(ctx, stale.ID); err != nil && !errors.Is(err, domain.ErrBookingNotFound) {
		return nil, fmt.Errorf("delete pending: %w", err)
	}

	s.log.Info().
		Str("booking_id", stale.ID).
		Str("client_id", clientID).
		Msg("overlapping pending booking cancelled")
	return stale, nil
}

// GetMyBookings lists the caller's bookings newest first: as professional for
// pros, as client for everyone else.
func (s *BookingService) GetMyBookings(ctx context.Context, caller domain.Identity) ([]ports.BookingView, error) {
	var (
		list []*domain.Booking
		err  error
	)
	if caller.Role == domain.RolePro {
		list, err = s.bookings.ListByProfessional(ctx, caller.UserID)
	} else {
		list, err = s.bookings.ListByClient(ctx, caller.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	ids := make([]string, 0, len(list)*2)
	seen := make(map[string]struct{}, len(list)*2)
	for _, b := range list {
		for _, id := range []string{b.ClientID, b.ProfessionalID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	users := map[string]*domain.User{}
	if len(ids) > 0 {
		users, err = s.users.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("list bookings: load participants: %w", err)
		}
	}

	views := make([]ports.BookingView, 0, len(list))
	for _, b := range list {
		views = append(views, ports.BookingView{
			ID:           b.ID,
			Status:       b.Status,
			Rating:       b.Rating,
			CreatedAt:    b.CreatedAt,
			Client:       clientSnapshot(users[b.ClientID]),
			Professional: professionalSnapshot(users[b.ProfessionalID]),
		})
	}
	return views, nil
}

// UpdateBookingStatus records a professional's decision on a booking.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, bookingID string, status domain.BookingStatus) error {
	if _, err := domain.ParseDecision(string(status)); err != nil {
		return err
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID, status)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return err
		}
		return fmt.Errorf("update booking status: %w", err)
	}

	s.publish(s.event(updated, domain.EventStatusChanged, string(status)))
	s.log.Info().Str("booking_id", bookingID).Str("status", string(status)).Msg("booking status updated")
	return nil
}

// SubmitRating stores the rating on the booking and recomputes the
// professional's average over all rated bookings. Re-rating a booking
// overwrites its previous value.
func (s *BookingService) SubmitRating(ctx context.Context, bookingID string, rating float64) (float64, error) {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return 0, domain.NewValidationError(fmt.Sprintf("ratingValue must be between %d and %d", domain.MinRating, domain.MaxRating))
	}

	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("submit rating: %w", err)
	}

	var (
		updated *domain.Booking
		average float64
		count   int
	)
	err = s.withProfessionalLock(ctx, booking.ProfessionalID, func() error {
		var err error
		updated, err = s.bookings.SetRating(ctx, bookingID, rating)
		if err != nil {
			if errors.Is(err, domain.ErrBookingNotFound) {
				return err
			}
			return fmt.Errorf("set rating: %w", err)
		}

		rated, err := s.bookings.ListRatedByProfessional(ctx, updated.ProfessionalID)
		if err != nil {
			return fmt.Errorf("load ratings: %w", err)
		}
		average, count = domain.AverageRating(rated)

		if _, err := s.users.UpdateByID(ctx, updated.ProfessionalID, domain.UserPatch{
			Rating:      &average,
			ReviewCount: &count,
		}); err != nil {
			if !errors.Is(err, domain.ErrUserNotFound) {
				return fmt.Errorf("update aggregate: %w", err)
			}
			s.log.Warn().Str("professional_id", updated.ProfessionalID).Msg("rated booking references a missing professional")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("submit rating: %w", err)
	}

	s.publish(s.event(updated, domain.EventBookingRated, fmt.Sprintf("%.1f", rating)))
	s.log.Info().
		Str("booking_id", bookingID).
		Str("professional_id", updated.ProfessionalID).
		Float64("average", average).
		Int("review_count", count).
		Msg("rating submitted")

	return average, nil
}

// withProfessionalLock runs fn while holding the professional's lock.
func (s *BookingService) withProfessionalLock(ctx context.Context, professionalID string, fn func() error) error {
	release, err := s.locker.Acquire(ctx, lockKey(professionalID))
	if err != nil {
		return err
	}
	defer s.unlock(ctx, release, professionalID)
	return fn()
}

func (s *BookingService) event(b *domain.Booking, typ domain.BookingEventType, detail string) domain.BookingEvent {
	return domain.BookingEvent{
		BookingID:      b.ID,
		Type:           typ,
		ClientID:       b.ClientID,
		ProfessionalID: b.ProfessionalID,
		Detail:         detail,
		OccurredAt:     s.now().UTC(),
	}
}

// publish must not be called while a professional lock is held: the
// dispatcher blocks once a shard's buffer is full.
func (s *BookingService) publish(events ...domain.BookingEvent) {
	if s.events == nil {
		return
	}
	for _, e := range events {
		s.events.Publish(e)
	}
}

func (s *BookingService) unlock(ctx context.Context, release func(context.Context) error, professionalID string) {
	if err := release(context.WithoutCancel(ctx)); err != nil {
		s.log.Warn().Err(err).Str("professional_id", professionalID).Msg("failed to release professional lock")
	}
}

func lockKey(professionalID string) string {
	return "professional:" + professionalID
}

func clientSnapshot(u *domain.User) *ports.ProfileSnapshot {
	if u == nil {
		return nil
	}
	return &ports.ProfileSnapshot{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		Location: u.Location,
	}
}

func professionalSnapshot(u *domain.User) *ports.ProfileSnapshot {
	p := clientSnapshot(u)
	if p == nil {
		return nil
	}
	p.Skills = append([]string(nil), u.Skills...)
	p.Rating = u.Rating
	p.ReviewCount = u.ReviewCount
	return p
}
