package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quote struct {
	Symbol string  `json:"symbol"`
	Close  float64 `json:"close"`
}

func TestMemoryCacheTypedRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "quote:RELIANCE:1D", quote{Symbol: "RELIANCE", Close: 2500.5}, time.Minute))

	var got quote
	require.NoError(t, mc.Get(ctx, "quote:RELIANCE:1D", &got))
	assert.Equal(t, "RELIANCE", got.Symbol)
	assert.InDelta(t, 2500.5, got.Close, 1e-9)
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	var v quote
	assert.ErrorIs(t, mc.Get(ctx, "nope", &v), ErrCacheMiss)

	require.NoError(t, mc.Set(ctx, "k", quote{}, time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	assert.ErrorIs(t, mc.Get(ctx, "k", &v), ErrCacheMiss)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", 1, time.Minute))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, mc.Set(ctx, "b", 2, time.Minute))
	time.Sleep(2 * time.Millisecond)
	var n int
	require.NoError(t, mc.Get(ctx, "a", &n))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, mc.Set(ctx, "c", 3, time.Minute))

	assert.Equal(t, 2, mc.Len())
	ok, _ := mc.Exists(ctx, "b")
	assert.False(t, ok)
	ok, _ = mc.Exists(ctx, "a", "c")
	assert.True(t, ok)
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "signal:TCS:1D", 1, time.Minute)
	_ = mc.Set(ctx, "signal:TCS:1H", 1, time.Minute)
	_ = mc.Set(ctx, "quote:TCS:1D", 1, time.Minute)

	require.NoError(t, mc.DeleteByPattern(ctx, BuildPattern("signal:TCS:")))
	assert.Equal(t, 1, mc.Len())
}

func TestGetOrLoad(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (quote, error) {
		calls++
		return quote{Symbol: "TCS", Close: 10}, nil
	}

	v, hit, err := GetOrLoad(ctx, mc, "q", time.Minute, load, nil)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "TCS", v.Symbol)

	v, hit, err = GetOrLoad(ctx, mc, "q", time.Minute, load, nil)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, calls)
	assert.InDelta(t, 10.0, v.Close, 1e-9)

	boom := errors.New("upstream down")
	_, _, err = GetOrLoad(ctx, mc, "other", time.Minute, func(context.Context) (quote, error) {
		return quote{}, boom
	}, nil)
	assert.ErrorIs(t, err, boom)
	ok, _ := mc.Exists(ctx, "other")
	assert.False(t, ok)
}

func TestGetOrLoadWithoutCache(t *testing.T) {
	v, hit, err := GetOrLoad[int](context.Background(), nil, "k", time.Minute,
		func(context.Context) (int, error) { return 7, nil }, nil)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 7, v)
}
