package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestModuleCache_RoundTrip(t *testing.T) {
	_, client := setupMiniredis(t)
	cache := NewModuleCache(client)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache must miss")

	want := []domain.Module{{
		ID:         "m1",
		Slug:       "waste-basics",
		Title:      "Waste Basics",
		Difficulty: domain.DifficultyBeginner,
		Topics:     []string{"segregation", "composting"},
		Points:     50,
		Published:  true,
		CreatedAt:  time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, cache.Set(ctx, want, time.Minute))

	got, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want[0].Slug, got[0].Slug)
	assert.Equal(t, want[0].Topics, got[0].Topics)
	assert.True(t, want[0].CreatedAt.Equal(got[0].CreatedAt))
}

func TestModuleCache_ExpiresAndInvalidates(t *testing.T) {
	mr, client := setupMiniredis(t)
	cache := NewModuleCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, []domain.Module{{Slug: "a"}}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "entry must expire after ttl")

	require.NoError(t, cache.Set(ctx, []domain.Module{{Slug: "a"}}, time.Minute))
	require.NoError(t, cache.Invalidate(ctx))
	assert.False(t, mr.Exists(moduleListKey))
}

func TestModuleCache_CorruptValue(t *testing.T) {
	mr, client := setupMiniredis(t)
	cache := NewModuleCache(client)

	require.NoError(t, mr.Set(moduleListKey, "not-json"))
	_, ok, err := cache.Get(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestConnect_PingFailure(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = Connect(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
