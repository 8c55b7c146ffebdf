package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/homeman/marketplace-api/internal/core/domain"
)

type recordingService struct {
	mu     sync.Mutex
	seen   map[string][]string // professional id -> booking ids in processing order
	failOn string
}

func newRecordingService() *recordingService {
	return &recordingService{seen: make(map[string][]string)}
}

func (s *recordingService) Process(_ context.Context, e domain.BookingEvent) error {
	if e.BookingID == s.failOn {
		return errors.New("boom")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[e.ProfessionalID] = append(s.seen[e.ProfessionalID], e.BookingID)
	return nil
}

func TestDispatcher_PreservesPerProfessionalOrder(t *testing.T) {
	svc := newRecordingService()
	d := NewDispatcher(3, svc, zerolog.Nop())
	d.Start(context.Background())

	pros := []string{"p1", "p2", "p3", "p4"}
	for i := 0; i < 50; i++ {
		for _, p := range pros {
			d.Publish(domain.BookingEvent{BookingID: fmt.Sprintf("%s-%02d", p, i), ProfessionalID: p, Type: domain.EventBookingCreated})
		}
	}
	d.Stop()

	for _, p := range pros {
		got := svc.seen[p]
		require.Len(t, got, 50, p)
		for i, id := range got {
			require.Equal(t, fmt.Sprintf("%s-%02d", p, i), id)
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, newRecordingService(), zerolog.Nop())

	first := d.shardIndex("64b7f0c2a1e4d3f5a6b7c8d9")
	for i := 0; i < 10; i++ {
		require.Equal(t, first, d.shardIndex("64b7f0c2a1e4d3f5a6b7c8d9"))
	}
	require.GreaterOrEqual(t, first, 0)
	require.Less(t, first, 8)
}

func TestDispatcher_DefaultsWorkers(t *testing.T) {
	d := NewDispatcher(0, newRecordingService(), zerolog.Nop())
	require.Len(t, d.workers, defaultWorkers)
}

func TestDispatcher_FailureDoesNotStopWorker(t *testing.T) {
	svc := newRecordingService()
	svc.failOn = "bad"
	d := NewDispatcher(1, svc, zerolog.Nop())
	d.Start(context.Background())

	d.Publish(domain.BookingEvent{BookingID: "bad", ProfessionalID: "p1", Type: domain.EventBookingRated})
	d.Publish(domain.BookingEvent{BookingID: "good", ProfessionalID: "p1", Type: domain.EventBookingRated})
	d.Stop()

	require.Equal(t, []string{"good"}, svc.seen["p1"])
}

func TestDispatcher_PublishAfterStopIsDropped(t *testing.T) {
	svc := newRecordingService()
	d := NewDispatcher(2, svc, zerolog.Nop())
	d.Start(context.Background())
	d.Stop()

	require.NotPanics(t, func() {
		d.Publish(domain.BookingEvent{BookingID: "late", ProfessionalID: "p1", Type: domain.EventBookingCreated})
	})
	d.Stop()
	require.Empty(t, svc.seen)
}
