package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/homeman/marketplace-api/internal/api/metrics"
	"github.com/homeman/marketplace-api/internal/core/domain"
)

const (
	defaultLockTTL  = 10 * time.Second
	defaultLockWait = 5 * time.Second
	retryInterval   = 25 * time.Millisecond
	lockPrefix      = "lock:"
)

// releaseScript deletes the key only while it still holds our token, so a
// holder whose TTL lapsed cannot free a lock someone else has since taken.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a ports.Locker backed by Redis SET NX PX.
// Key format: lock:<key>
type Locker struct {
	client redis.UniversalClient
	ttl    time.Duration
	wait   time.Duration
}

// NewLocker creates a Locker. ttl bounds how long a crashed holder keeps the
// lock; wait bounds how long Acquire polls before giving up.
func NewLocker(client redis.UniversalClient, ttl, wait time.Duration) *Locker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if wait <= 0 {
		wait = defaultLockWait
	}
	return &Locker{client: client, ttl: ttl, wait: wait}
}

// Acquire polls until the lock for key is held, the wait budget is spent
// (domain.ErrLockNotAcquired) or ctx ends.
func (l *Locker) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	started := time.Now()
	token := uuid.NewString()
	redisKey := lockPrefix + key

	deadline := time.NewTimer(l.wait)
	defer deadline.Stop()
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			metrics.LockWaitDuration.WithLabelValues("error").Observe(time.Since(started).Seconds())
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			metrics.LockWaitDuration.WithLabelValues("acquired").Observe(time.Since(started).Seconds())
			return l.releaser(redisKey, token), nil
		}

		select {
		case <-ctx.Done():
			metrics.LockWaitDuration.WithLabelValues("cancelled").Observe(time.Since(started).Seconds())
			return nil, ctx.Err()
		case <-deadline.C:
			metrics.LockWaitDuration.WithLabelValues("timeout").Observe(time.Since(started).Seconds())
			return nil, domain.ErrLockNotAcquired
		case <-ticker.C:
		}
	}
}

func (l *Locker) releaser(redisKey, token string) func(context.Context) error {
	return func(ctx context.Context) error {
		err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("release lock: %w", err)
		}
		return nil
	}
}
