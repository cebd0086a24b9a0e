package payments

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisProcessedTracker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tracker := NewRedisProcessedTracker(client)
	ctx := context.Background()

	seen, err := tracker.AlreadyProcessed(ctx, "stripe", "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, tracker.MarkProcessed(ctx, "stripe", "evt_1"))

	seen, err = tracker.AlreadyProcessed(ctx, "stripe", "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)

	// Providers are namespaced.
	seen, err = tracker.AlreadyProcessed(ctx, "square", "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	// Entries expire.
	mr.FastForward(processedTTL + time.Minute)
	seen, err = tracker.AlreadyProcessed(ctx, "stripe", "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestInMemoryProcessedTracker(t *testing.T) {
	tracker := NewInMemoryProcessedTracker()
	ctx := context.Background()

	seen, err := tracker.AlreadyProcessed(ctx, "stripe", "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, tracker.MarkProcessed(ctx, "stripe", "evt_1"))
	seen, err = tracker.AlreadyProcessed(ctx, "stripe", "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)
}
