package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/homeman/marketplace-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int
	err    error // if set, every call returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	c.Skills = append([]string(nil), u.Skills...)
	return &c
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailExists
		}
	}
	c := cloneUser(user)
	if c.ID == "" {
		r.nextID++
		c.ID = fmt.Sprintf("u%d", r.nextID)
	}
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) UpdateByID(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.Location != nil {
		u.Location = *patch.Location
	}
	if patch.Rating != nil {
		u.Rating = *patch.Rating
	}
	if patch.ReviewCount != nil {
		u.ReviewCount = *patch.ReviewCount
	}
	return cloneUser(u), nil
}

// seed stores u as-is and returns its id.
func (r *stubUserRepo) seed(u *domain.User) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = cloneUser(u)
	return u.ID
}

type stubBookingRepo struct {
	mu        sync.Mutex
	bookings  []*domain.Booking // insertion order
	nextID    int
	createErr error
	deleted   []string
}

func newStubBookingRepo() *stubBookingRepo {
	return &stubBookingRepo{}
}

func cloneBooking(b *domain.Booking) *domain.Booking {
	c := *b
	if b.Rating != nil {
		r := *b.Rating
		c.Rating = &r
	}
	return &c
}

func (r *stubBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	c := cloneBooking(b)
	r.nextID++
	c.ID = fmt.Sprintf("b%d", r.nextID)
	r.bookings = append(r.bookings, c)
	return cloneBooking(c), nil
}

func (r *stubBookingRepo) find(id string) (int, *domain.Booking) {
	for i, b := range r.bookings {
		if b.ID == id {
			return i, b
		}
	}
	return -1, nil
}

func (r *stubBookingRepo) FindByID(_ context.Context, id string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, b := r.find(id); b != nil {
		return cloneBooking(b), nil
	}
	return nil, domain.ErrBookingNotFound
}

func (r *stubBookingRepo) FindLatestPendingByClient(_ context.Context, clientID string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.Booking
	for _, b := range r.bookings {
		if b.ClientID != clientID || b.Status != domain.BookingPending {
			continue
		}
		if latest == nil || !b.CreatedAt.Before(latest.CreatedAt) {
			latest = b
		}
	}
	if latest == nil {
		return nil, domain.ErrBookingNotFound
	}
	return cloneBooking(latest), nil
}

func (r *stubBookingRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, b := r.find(id)
	if b == nil {
		return domain.ErrBookingNotFound
	}
	r.bookings = append(r.bookings[:i], r.bookings[i+1:]...)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubBookingRepo) CountByProfessionalBetween(_ context.Context, professionalID string, from, to time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if b.ProfessionalID == professionalID && !b.CreatedAt.Before(from) && b.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (r *stubBookingRepo) list(match func(*domain.Booking) bool) []*domain.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Booking
	for _, b := range r.bookings {
		if match(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *stubBookingRepo) ListByClient(_ context.Context, clientID string) ([]*domain.Booking, error) {
	return r.list(func(b *domain.Booking) bool { return b.ClientID == clientID }), nil
}

func (r *stubBookingRepo) ListByProfessional(_ context.Context, professionalID string) ([]*domain.Booking, error) {
	return r.list(func(b *domain.Booking) bool { return b.ProfessionalID == professionalID }), nil
}

func (r *stubBookingRepo) UpdateStatus(_ context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, b := r.find(id)
	if b == nil {
		return nil, domain.ErrBookingNotFound
	}
	b.Status = status
	return cloneBooking(b), nil
}

func (r *stubBookingRepo) SetRating(_ context.Context, id string, rating float64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, b := r.find(id)
	if b == nil {
		return nil, domain.ErrBookingNotFound
	}
	b.Rating = &rating
	return cloneBooking(b), nil
}

func (r *stubBookingRepo) ListRatedByProfessional(_ context.Context, professionalID string) ([]*domain.Booking, error) {
	return r.list(func(b *domain.Booking) bool { return b.ProfessionalID == professionalID && b.Rating != nil }), nil
}

func (r *stubBookingRepo) seed(b *domain.Booking) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := cloneBooking(b)
	if c.ID == "" {
		r.nextID++
		c.ID = fmt.Sprintf("b%d", r.nextID)
	}
	r.bookings = append(r.bookings, c)
	return c.ID
}

func (r *stubBookingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

// ---------------------------------------------------------------------------
// Collaborator stubs
// ---------------------------------------------------------------------------

type stubLocker struct {
	mu       sync.Mutex
	acquired []string
	released []string
	err      error
}

func (l *stubLocker) Acquire(_ context.Context, key string) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	l.acquired = append(l.acquired, key)
	l.mu.Unlock()
	return func(context.Context) error {
		l.mu.Lock()
		l.released = append(l.released, key)
		l.mu.Unlock()
		return nil
	}, nil
}

// held reports whether an acquired lock has not been released yet.
func (l *stubLocker) held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.acquired) > len(l.released)
}

type stubPublisher struct {
	mu     sync.Mutex
	events []domain.BookingEvent

	// locker, when set, lets the publisher count events sent under a lock.
	locker    *stubLocker
	underLock int
}

func (p *stubPublisher) Publish(e domain.BookingEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.locker != nil && p.locker.held() {
		p.underLock++
	}
	p.events = append(p.events, e)
}

func (p *stubPublisher) types() []domain.BookingEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.BookingEventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// prefixHasher is a reversible stand-in for bcrypt; service tests only need
// Hash and Compare to agree.
type prefixHasher struct {
	err error
}

func (h prefixHasher) Hash(plaintext string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + plaintext, nil
}

func (h prefixHasher) Compare(plaintext, hash string) bool {
	return strings.TrimPrefix(hash, "hashed:") == plaintext && strings.HasPrefix(hash, "hashed:")
}

var errStore = errors.New("store unavailable")
