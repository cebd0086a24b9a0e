package payments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProcessedTracker dedupes provider webhook events so a replayed delivery is
// acknowledged without re-running its side effects.
type ProcessedTracker interface {
	AlreadyProcessed(ctx context.Context, provider, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, provider, eventID string) error
}

// processedTTL bounds how long event ids are remembered. Stripe retries for
// up to three days; a week of memory covers that comfortably.
const processedTTL = 7 * 24 * time.Hour

// RedisProcessedTracker stores seen event ids in Redis with a TTL, shared
// across API instances.
type RedisProcessedTracker struct {
	client *redis.Client
}

// NewRedisProcessedTracker creates a tracker backed by Redis.
func NewRedisProcessedTracker(client *redis.Client) *RedisProcessedTracker {
	if client == nil {
		panic("payments: redis client required")
	}
	return &RedisProcessedTracker{client: client}
}

func processedKey(provider, eventID string) string {
	return fmt.Sprintf("webhook:processed:%s:%s", provider, eventID)
}

// AlreadyProcessed checks whether the event id has been seen.
func (t *RedisProcessedTracker) AlreadyProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	n, err := t.client.Exists(ctx, processedKey(provider, eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("payments: check processed: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed records the event id.
func (t *RedisProcessedTracker) MarkProcessed(ctx context.Context, provider, eventID string) error {
	if err := t.client.Set(ctx, processedKey(provider, eventID), 1, processedTTL).Err(); err != nil {
		return fmt.Errorf("payments: mark processed: %w", err)
	}
	return nil
}

// InMemoryProcessedTracker is a single-process fallback for local dev and tests.
type InMemoryProcessedTracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewInMemoryProcessedTracker creates an in-memory tracker.
func NewInMemoryProcessedTracker() *InMemoryProcessedTracker {
	return &InMemoryProcessedTracker{seen: make(map[string]struct{})}
}

// AlreadyProcessed checks whether the event id has been seen.
func (t *InMemoryProcessedTracker) AlreadyProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.seen[processedKey(provider, eventID)]
	return ok, nil
}

// MarkProcessed records the event id.
func (t *InMemoryProcessedTracker) MarkProcessed(ctx context.Context, provider, eventID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen[processedKey(provider, eventID)] = struct{}{}
	return nil
}
