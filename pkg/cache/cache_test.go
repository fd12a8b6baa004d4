package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	keys := []string{"2021-04-15/a.csv", "2021-04-15/b.csv"}
	require.NoError(t, c.Set(ctx, "list:2021-04-15", keys, time.Hour))

	var got []string
	require.NoError(t, c.Get(ctx, "list:2021-04-15", &got))
	assert.Equal(t, keys, got)

	var s string
	require.NoError(t, c.Set(ctx, "raw", "value", 0))
	require.NoError(t, c.Get(ctx, "raw", &s))
	assert.Equal(t, "value", s)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache()
	var got []string
	assert.ErrorIs(t, c.Get(context.Background(), "nope", &got), ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2021, 4, 20, 10, 0, 0, 0, time.UTC)
	c := NewMemoryCache(WithMemoryClock(func() time.Time { return now }))

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	now = now.Add(2 * time.Minute)

	var s string
	assert.ErrorIs(t, c.Get(ctx, "k", &s), ErrCacheMiss)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2021, 4, 20, 10, 0, 0, 0, time.UTC)
	c := NewMemoryCache(WithMemoryMaxSize(2), WithMemoryClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	}))

	require.NoError(t, c.Set(ctx, "a", "1", 0))
	require.NoError(t, c.Set(ctx, "b", "2", 0))
	var s string
	require.NoError(t, c.Get(ctx, "a", &s))
	require.NoError(t, c.Set(ctx, "c", "3", 0))

	assert.Equal(t, 2, c.Len())
	assert.ErrorIs(t, c.Get(ctx, "b", &s), ErrCacheMiss)
	assert.NoError(t, c.Get(ctx, "a", &s))
}

func TestMemoryCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	require.NoError(t, c.Set(ctx, "k", "v", 0))
	require.NoError(t, c.Delete(ctx, "k"))
	var s string
	assert.ErrorIs(t, c.Get(ctx, "k", &s), ErrCacheMiss)
}

func TestLayeredCacheFallsBackToRemote(t *testing.T) {
	ctx := context.Background()
	remote := NewMemoryCache()
	require.NoError(t, remote.Set(ctx, "k", []string{"x"}, 0))

	lc := NewLayeredCache(remote)
	var got []string
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, []string{"x"}, got)

	require.NoError(t, remote.Delete(ctx, "k"))
	got = nil
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, []string{"x"}, got)
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "xetrapull:list", GenerateKey("xetrapull", "list"))
	assert.Equal(t, "list", GenerateKey("", "list"))
	assert.Equal(t, "list:bucket:2021-04-15", GenerateKeyWithParams("list", "bucket", "2021-04-15"))
}
