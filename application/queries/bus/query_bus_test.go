package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countQuery struct{ UserID string }

func (q countQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

type mapCache map[string]interface{}

func (c mapCache) Get(_ context.Context, k string) (interface{}, bool) {
	v, ok := c[k]
	return v, ok
}

func (c mapCache) Set(_ context.Context, k string, v interface{}, _ int) error {
	c[k] = v
	return nil
}

type queryMetrics struct{ outcomes map[string]int }

func (m *queryMetrics) RecordQueryExecution(name string, err error) {
	if err != nil {
		name += ":error"
	}
	m.outcomes[name]++
}

func TestQueryBus_Ask(t *testing.T) {
	m := &queryMetrics{outcomes: map[string]int{}}
	b := NewQueryBus(m)

	calls := 0
	require.NoError(t, b.Register(countQuery{}, Handler(func(_ context.Context, q countQuery) (int, error) {
		calls++
		return calls, nil
	})))

	got, err := b.Ask(context.Background(), countQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	_, err = b.Ask(context.Background(), countQuery{})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, m.outcomes["countQuery"])

	_, err = NewQueryBus(nil).Ask(context.Background(), countQuery{UserID: "u1"})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
}

func TestCachingMiddleware(t *testing.T) {
	cache := mapCache{}
	calls := 0
	inner := Handler(func(_ context.Context, q countQuery) (int, error) {
		calls++
		return calls, nil
	})

	h := NewCachingMiddleware(cache, 60).Wrap(inner)
	for i := 0; i < 3; i++ {
		got, err := h.Handle(context.Background(), countQuery{UserID: "u1"})
		require.NoError(t, err)
		assert.Equal(t, 1, got)
	}
	assert.Contains(t, cache, CacheKey(countQuery{UserID: "u1"}))

	delete(cache, CacheKey(countQuery{UserID: "u1"}))
	got, err := h.Handle(context.Background(), countQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	uncached := NewCachingMiddleware(cache, 0).Wrap(inner)
	got, _ = uncached.Handle(context.Background(), countQuery{UserID: "u2"})
	assert.Equal(t, 3, got)
	assert.NotContains(t, cache, CacheKey(countQuery{UserID: "u2"}))
}
