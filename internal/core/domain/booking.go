package domain

import (
	"errors"
	"math"
	"time"
)

// BookingStatus represents the lifecycle state of a hire request.
type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingApproved BookingStatus = "approved"
	BookingRejected BookingStatus = "rejected"
)

// DefaultDailyLimit is the number of requests a professional may receive per day.
const DefaultDailyLimit = 3

const (
	MinRating = 1
	MaxRating = 5
)

var (
	ErrBookingNotFound      = errors.New("booking not found")
	ErrProfessionalNotFound = errors.New("professional not found")
	ErrQuotaExceeded        = errors.New("professional reached daily limit")
	ErrLockNotAcquired      = errors.New("professional is busy, lock not acquired")
)

// ParseDecision accepts only the statuses a professional may set.
func ParseDecision(s string) (BookingStatus, error) {
	switch st := BookingStatus(s); st {
	case BookingApproved, BookingRejected:
		return st, nil
	default:
		return "", NewValidationError("status must be one of: approved, rejected")
	}
}

// Booking is a hire request from a client to a professional.
type Booking struct {
	ID             string        `json:"id"`
	ClientID       string        `json:"client"`
	ProfessionalID string        `json:"professional"`
	Status         BookingStatus `json:"status"`
	Rating         *float64      `json:"rating"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// SkillsOverlap reports whether a and b share at least one skill.
func SkillsOverlap(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := set[s]; ok {
			return true
		}
	}
	return false
}

// DayWindow returns [start, end) of the calendar day containing t in loc.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// AverageRating returns the mean of the non-nil ratings rounded to one decimal,
// along with the number of ratings that contributed.
func AverageRating(bookings []*Booking) (float64, int) {
	var sum float64
	var n int
	for _, b := range bookings {
		if b == nil || b.Rating == nil {
			continue
		}
		sum += *b.Rating
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return RoundRating(sum / float64(n)), n
}

// RoundRating rounds half away from zero to one decimal place.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}
