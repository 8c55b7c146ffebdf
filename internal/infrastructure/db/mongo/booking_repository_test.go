package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/homeman/marketplace-api/internal/core/domain"
)

var day = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func newTestBookingRepo(t *testing.T) *BookingRepository {
	t.Helper()
	repo := NewBookingRepository(newTestDB(t))
	require.NoError(t, repo.EnsureIndexes(context.Background()))
	return repo
}

func newID() string { return primitive.NewObjectID().Hex() }

func insertBooking(t *testing.T, repo *BookingRepository, clientID, proID string, status domain.BookingStatus, createdAt time.Time) *domain.Booking {
	t.Helper()
	b, err := repo.Create(context.Background(), &domain.Booking{
		ClientID:       clientID,
		ProfessionalID: proID,
		Status:         status,
		CreatedAt:      createdAt,
	})
	require.NoError(t, err)
	return b
}

func bookingIDs(list []*domain.Booking) []string {
	out := make([]string, len(list))
	for i, b := range list {
		out[i] = b.ID
	}
	return out
}

func TestBookingRepository_CreateAndFind(t *testing.T) {
	repo := newTestBookingRepo(t)
	client, pro := newID(), newID()

	created := insertBooking(t, repo, client, pro, domain.BookingPending, day.Add(9*time.Hour))
	require.NotEmpty(t, created.ID)

	got, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, client, got.ClientID)
	require.Equal(t, pro, got.ProfessionalID)
	require.Equal(t, domain.BookingPending, got.Status)
	require.Nil(t, got.Rating)
	require.True(t, got.CreatedAt.Equal(day.Add(9*time.Hour)))

	_, err = repo.FindByID(context.Background(), newID())
	require.ErrorIs(t, err, domain.ErrBookingNotFound)
	_, err = repo.FindByID(context.Background(), "bogus")
	require.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestBookingRepository_CountByProfessionalBetween_HalfOpenWindow(t *testing.T) {
	repo := newTestBookingRepo(t)
	client, pro, other := newID(), newID(), newID()
	from, to := day, day.Add(24*time.Hour)

	insertBooking(t, repo, client, pro, domain.BookingPending, from.Add(-time.Millisecond))
	insertBooking(t, repo, client, pro, domain.BookingApproved, from)
	insertBooking(t, repo, client, pro, domain.BookingRejected, to.Add(-time.Millisecond))
	insertBooking(t, repo, client, pro, domain.BookingPending, to)
	insertBooking(t, repo, client, other, domain.BookingPending, from.Add(time.Hour))

	n, err := repo.CountByProfessionalBetween(context.Background(), pro, from, to)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestBookingRepository_ListsNewestFirst(t *testing.T) {
	repo := newTestBookingRepo(t)
	client, pro := newID(), newID()

	oldest := insertBooking(t, repo, client, pro, domain.BookingPending, day.Add(8*time.Hour))
	middle := insertBooking(t, repo, client, pro, domain.BookingApproved, day.Add(9*time.Hour))
	// Same timestamp as tieLater; insertion order breaks the tie.
	tieEarlier := insertBooking(t, repo, client, pro, domain.BookingPending, day.Add(10*time.Hour))
	tieLater := insertBooking(t, repo, client, pro, domain.BookingPending, day.Add(10*time.Hour))
	insertBooking(t, repo, newID(), newID(), domain.BookingPending, day.Add(11*time.Hour))

	want := []string{tieLater.ID, tieEarlier.ID, middle.ID, oldest.ID}

	byClient, err := repo.ListByClient(context.Background(), client)
	require.NoError(t, err)
	require.Equal(t, want, bookingIDs(byClient))

	byPro, err := repo.ListByProfessional(context.Background(), pro)
	require.NoError(t, err)
	require.Equal(t, want, bookingIDs(byPro))

	none, err := repo.ListByClient(context.Background(), newID())
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestBookingRepository_FindLatestPendingByClient(t *testing.T) {
	repo := newTestBookingRepo(t)
	client, pro := newID(), newID()

	insertBooking(t, repo, client, pro, domain.BookingPending, day.Add(8*time.Hour))
	latestPending := insertBooking(t, repo, client, pro, domain.BookingPending, day.Add(9*time.Hour))
	insertBooking(t, repo, client, pro, domain.BookingApproved, day.Add(10*time.Hour))
	insertBooking(t, repo, newID(), pro, domain.BookingPending, day.Add(11*time.Hour))

	got, err := repo.FindLatestPendingByClient(context.Background(), client)
	require.NoError(t, err)
	require.Equal(t, latestPending.ID, got.ID)

	_, err = repo.FindLatestPendingByClient(context.Background(), newID())
	require.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestBookingRepository_ListRatedByProfessional(t *testing.T) {
	repo := newTestBookingRepo(t)
	ctx := context.Background()
	client, pro := newID(), newID()

	first := insertBooking(t, repo, client, pro, domain.BookingApproved, day.Add(8*time.Hour))
	insertBooking(t, repo, client, pro, domain.BookingApproved, day.Add(9*time.Hour))
	third := insertBooking(t, repo, client, pro, domain.BookingApproved, day.Add(10*time.Hour))
	elsewhere := insertBooking(t, repo, client, newID(), domain.BookingApproved, day.Add(11*time.Hour))

	_, err := repo.SetRating(ctx, first.ID, 4)
	require.NoError(t, err)
	rated, err := repo.SetRating(ctx, third.ID, 5)
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	require.Equal(t, 5.0, *rated.Rating)
	_, err = repo.SetRating(ctx, elsewhere.ID, 1)
	require.NoError(t, err)

	list, err := repo.ListRatedByProfessional(ctx, pro)
	require.NoError(t, err)
	require.Equal(t, []string{third.ID, first.ID}, bookingIDs(list))

	avg, n := domain.AverageRating(list)
	require.Equal(t, 4.5, avg)
	require.Equal(t, 2, n)
}

func TestBookingRepository_UpdateStatusAndDelete(t *testing.T) {
	repo := newTestBookingRepo(t)
	ctx := context.Background()
	b := insertBooking(t, repo, newID(), newID(), domain.BookingPending, day.Add(8*time.Hour))

	updated, err := repo.UpdateStatus(ctx, b.ID, domain.BookingApproved)
	require.NoError(t, err)
	require.Equal(t, domain.BookingApproved, updated.Status)
	require.False(t, updated.UpdatedAt.IsZero())

	_, err = repo.UpdateStatus(ctx, newID(), domain.BookingRejected)
	require.ErrorIs(t, err, domain.ErrBookingNotFound)

	require.NoError(t, repo.Delete(ctx, b.ID))
	require.ErrorIs(t, repo.Delete(ctx, b.ID), domain.ErrBookingNotFound)
	_, err = repo.FindByID(ctx, b.ID)
	require.ErrorIs(t, err, domain.ErrBookingNotFound)
}
