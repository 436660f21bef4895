package di

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct{ hits, misses int }

func (r *countingRecorder) RecordCacheHit()  { r.hits++ }
func (r *countingRecorder) RecordCacheMiss() { r.misses++ }

func TestInMemoryCache_ExpiryAndCounts(t *testing.T) {
	rec := &countingRecorder{}
	cache := NewInMemoryCache(rec)
	defer cache.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "tags", []string{"go"}, 60))

	v, ok := cache.Get(ctx, "tags")
	require.True(t, ok)
	assert.Equal(t, []string{"go"}, v)

	now = now.Add(61 * time.Second)
	_, ok = cache.Get(ctx, "tags")
	assert.False(t, ok)

	_, ok = cache.Get(ctx, "absent")
	assert.False(t, ok)

	assert.Equal(t, 1, rec.hits)
	assert.Equal(t, 2, rec.misses)

	cache.sweep()
	assert.Equal(t, 0, cache.Len())
}

func TestInMemoryCache_DeleteAndClear(t *testing.T) {
	cache := NewInMemoryCache(nil)
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", 1, 60))
	require.NoError(t, cache.Set(ctx, "b", 2, 60))

	require.NoError(t, cache.Delete(ctx, "a"))
	_, ok := cache.Get(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, cache.Clear(ctx))
	assert.Equal(t, 0, cache.Len())

	cache.Close()
	cache.Close()
}
