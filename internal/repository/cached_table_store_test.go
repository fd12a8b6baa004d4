package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"XetraPull/pkg/cache"
)

func TestCachedTableStorePastPrefix(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryTableStore("src", nil)
	mem.PutObject("2021-04-15/a.csv", []byte("x\n1\n"))

	today := time.Date(2021, 4, 20, 9, 0, 0, 0, time.UTC)
	store := NewCachedTableStore(mem, cache.NewMemoryCache(), "src", nil,
		WithCacheClock(func() time.Time { return today }))

	for i := 0; i < 3; i++ {
		keys, err := store.List(ctx, "2021-04-15")
		require.NoError(t, err)
		assert.Equal(t, []string{"2021-04-15/a.csv"}, keys)
	}
	assert.Equal(t, 1, mem.Objects.ListCalls())
}

func TestCachedTableStoreEmptyPastPrefix(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryTableStore("src", nil)
	today := time.Date(2021, 4, 20, 9, 0, 0, 0, time.UTC)
	store := NewCachedTableStore(mem, cache.NewMemoryCache(), "src", nil,
		WithCacheClock(func() time.Time { return today }))

	for i := 0; i < 2; i++ {
		keys, err := store.List(ctx, "2021-04-17")
		require.NoError(t, err)
		assert.NotNil(t, keys)
		assert.Empty(t, keys)
	}
	assert.Equal(t, 1, mem.Objects.ListCalls())
}

func TestCachedTableStoreTodayIsNotCached(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryTableStore("src", nil)
	today := time.Date(2021, 4, 20, 9, 0, 0, 0, time.UTC)
	store := NewCachedTableStore(mem, cache.NewMemoryCache(), "src", nil,
		WithCacheClock(func() time.Time { return today }))

	_, err := store.List(ctx, "2021-04-20")
	require.NoError(t, err)
	mem.PutObject("2021-04-20/late.csv", []byte("x\n1\n"))
	keys, err := store.List(ctx, "2021-04-20")
	require.NoError(t, err)

	assert.Equal(t, []string{"2021-04-20/late.csv"}, keys)
	assert.Equal(t, 2, mem.Objects.ListCalls())
}

func TestCachedTableStoreNonDatePrefix(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryTableStore("src", nil)
	store := NewCachedTableStore(mem, cache.NewMemoryCache(), "src", nil)

	_, err := store.List(ctx, "report1/")
	require.NoError(t, err)
	_, err = store.List(ctx, "report1/")
	require.NoError(t, err)
	assert.Equal(t, 2, mem.Objects.ListCalls())
}

func TestCachedTableStoreNamespaces(t *testing.T) {
	ctx := context.Background()
	shared := cache.NewMemoryCache()
	today := time.Date(2021, 4, 20, 9, 0, 0, 0, time.UTC)
	clock := WithCacheClock(func() time.Time { return today })

	a := NewMemoryTableStore("a", nil)
	a.PutObject("2021-04-15/a.csv", []byte("x\n1\n"))
	b := NewMemoryTableStore("b", nil)
	b.PutObject("2021-04-15/b.csv", []byte("x\n1\n"))

	ka, err := NewCachedTableStore(a, shared, "a", nil, clock).List(ctx, "2021-04-15")
	require.NoError(t, err)
	kb, err := NewCachedTableStore(b, shared, "b", nil, clock).List(ctx, "2021-04-15")
	require.NoError(t, err)

	assert.Equal(t, []string{"2021-04-15/a.csv"}, ka)
	assert.Equal(t, []string{"2021-04-15/b.csv"}, kb)
}
