package background

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"jobboard-api/pkg/utils"
)

// ErrSourceBusy is returned when a run is already in flight for a source.
var ErrSourceBusy = errors.New("a run is already in progress for this source")

// SourceLocker serializes runs per source. At most one run may hold the
// lock for a given source name at a time.
type SourceLocker interface {
	// Acquire takes the lock for a source. Returns ErrSourceBusy when the
	// lock is already held.
	Acquire(ctx context.Context, source string) error

	// Release frees the lock for a source
	Release(ctx context.Context, source string) error
}

// redisLocker implements SourceLocker with Redis SETNX so locks hold
// across multiple server instances. The TTL bounds lock lifetime if a
// process dies mid-run.
type redisLocker struct {
	client *utils.RedisClient
	ttl    time.Duration
}

// NewRedisLocker returns a Redis-backed source locker
func NewRedisLocker(client *utils.RedisClient, ttl time.Duration) SourceLocker {
	return &redisLocker{client: client, ttl: ttl}
}

func (l *redisLocker) lockKey(source string) string {
	return fmt.Sprintf("scrape:lock:%s", source)
}

func (l *redisLocker) Acquire(ctx context.Context, source string) error {
	ok, err := l.client.SetNX(ctx, l.lockKey(source), "1", l.ttl)
	if err != nil {
		return fmt.Errorf("acquire source lock: %w", err)
	}
	if !ok {
		return ErrSourceBusy
	}
	return nil
}

func (l *redisLocker) Release(ctx context.Context, source string) error {
	return l.client.Del(ctx, l.lockKey(source))
}

// memoryLocker is the in-process fallback used when Redis is disabled.
// Locks expire after the TTL so a leaked lock cannot wedge a source
// forever.
type memoryLocker struct {
	mu    sync.Mutex
	held  map[string]time.Time
	ttl   time.Duration
	clock func() time.Time
}

// NewMemoryLocker returns an in-process source locker
func NewMemoryLocker(ttl time.Duration) SourceLocker {
	return &memoryLocker{
		held:  make(map[string]time.Time),
		ttl:   ttl,
		clock: time.Now,
	}
}

func (l *memoryLocker) Acquire(_ context.Context, source string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if expires, ok := l.held[source]; ok && now.Before(expires) {
		return ErrSourceBusy
	}
	l.held[source] = now.Add(l.ttl)
	return nil
}

func (l *memoryLocker) Release(_ context.Context, source string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, source)
	return nil
}
