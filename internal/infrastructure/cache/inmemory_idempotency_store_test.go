package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	ctx := context.Background()

	t.Run("first mark returns true", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		marked, err := store.MarkProcessed(ctx, "event-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, marked)
	})

	t.Run("second mark returns false", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		_, err := store.MarkProcessed(ctx, "event-1", time.Minute)
		require.NoError(t, err)

		marked, err := store.MarkProcessed(ctx, "event-1", time.Minute)
		require.NoError(t, err)
		assert.False(t, marked)
	})

	t.Run("expired entry can be marked again", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		_, err := store.MarkProcessed(ctx, "event-1", time.Millisecond)
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)

		marked, err := store.MarkProcessed(ctx, "event-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, marked)
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	ctx := context.Background()

	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	processed, err := store.IsProcessed(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, processed)

	_, err = store.MarkProcessed(ctx, "event-1", time.Minute)
	require.NoError(t, err)

	processed, err = store.IsProcessed(ctx, "event-1")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	ctx := context.Background()

	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	_, err := store.MarkProcessed(ctx, "event-1", time.Millisecond)
	require.NoError(t, err)
	_, err = store.MarkProcessed(ctx, "event-2", time.Hour)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
