package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Config{Limit: 5, Window: time.Hour})

	for i := 0; i < 5; i++ {
		ok, err := store.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d should be allowed", i+1)
		require.NoError(t, store.Record(ctx, "1.2.3.4"))
	}

	ok, err := store.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok, "sixth attempt within the window must be rejected")

	// Other keys keep their own budget.
	ok, err = store.Allow(ctx, "9.9.9.9")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStoreAllowDoesNotConsume(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Config{Limit: 1, Window: time.Hour})

	for i := 0; i < 3; i++ {
		ok, err := store.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	require.NoError(t, store.Record(ctx, "k"))
	ok, err := store.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreWindowExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Config{Limit: 1, Window: 30 * time.Millisecond})

	require.NoError(t, store.Record(ctx, "k"))
	ok, err := store.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	time.Sleep(50 * time.Millisecond)

	ok, err = store.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok, "attempts outside the window must not count")
}
