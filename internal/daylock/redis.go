// Package daylock serializes booking commits per calendar day across API
// replicas, closing the window between the fresh calendar read and the write.
package daylock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/dental-receptionist/internal/scheduling"
	"github.com/wolfman30/dental-receptionist/pkg/logging"
)

// ErrLockHeld is returned when another booking holds the day lock past the wait.
var ErrLockHeld = errors.New("daylock: booking day is locked")

const (
	defaultTTL  = 15 * time.Second
	defaultWait = 5 * time.Second
	defaultPoll = 50 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock re-acquired by another replica is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements scheduling.DayLocker with SET NX PX.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	poll   time.Duration
	logger *logging.Logger
	tracer trace.Tracer
}

// Option customizes a RedisLocker.
type Option func(*RedisLocker)

// WithTTL sets how long a lock survives a crashed holder.
func WithTTL(d time.Duration) Option {
	return func(l *RedisLocker) {
		if d > 0 {
			l.ttl = d
		}
	}
}

// WithWait bounds how long Lock waits for a held lock.
func WithWait(d time.Duration) Option {
	return func(l *RedisLocker) {
		if d >= 0 {
			l.wait = d
		}
	}
}

// WithPollInterval sets the retry interval while waiting.
func WithPollInterval(d time.Duration) Option {
	return func(l *RedisLocker) {
		if d > 0 {
			l.poll = d
		}
	}
}

// NewRedisLocker creates a locker on client.
func NewRedisLocker(client *redis.Client, logger *logging.Logger, opts ...Option) *RedisLocker {
	if client == nil {
		panic("daylock: redis client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	l := &RedisLocker{
		client: client,
		ttl:    defaultTTL,
		wait:   defaultWait,
		poll:   defaultPoll,
		logger: logger,
		tracer: otel.Tracer("dental.internal.daylock"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock acquires the lock for day, retrying until the wait elapses or ctx ends.
// The returned func releases the lock and is safe to call more than once.
func (l *RedisLocker) Lock(ctx context.Context, day scheduling.Date) (func(), error) {
	ctx, span := l.tracer.Start(ctx, "daylock.lock")
	defer span.End()
	span.SetAttributes(attribute.String("dental.date", day.String()))

	key := lockKey(day)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("daylock: acquire %s: %w", key, err)
		}
		if ok {
			return l.releaser(key, token), nil
		}
		if !time.Now().Before(deadline) {
			span.RecordError(ErrLockHeld)
			return nil, fmt.Errorf("%w: %s", ErrLockHeld, day)
		}
		timer := time.NewTimer(l.poll)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *RedisLocker) releaser(key, token string) func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true
		// Release even when the request context is already cancelled.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			l.logger.Warn("daylock release failed", "key", key, "error", err)
		}
	}
}

func lockKey(day scheduling.Date) string {
	return fmt.Sprintf("booking:lock:%s", day)
}
