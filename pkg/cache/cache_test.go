// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkmk-mcp/core/pkg/config"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	c := New(config.CacheConfig{
		MaxSize:         100,
		DefaultTTL:      config.Duration(time.Minute),
		CleanupInterval: config.Duration(time.Minute),
	})
	t.Cleanup(c.Stop)
	return c
}

func TestCacheSetGet(t *testing.T) {
	c := testCache(t)
	c.Set("hosts:get:web01", "value", 0)

	got, ok := c.Get("hosts:get:web01")
	require.True(t, ok)
	assert.Equal(t, "value", got)

	_, ok = c.Get("hosts:get:web02")
	assert.False(t, ok)
}

func TestCacheEntryTTLExpiry(t *testing.T) {
	c := testCache(t)
	c.Set("short", "value", 20*time.Millisecond)

	_, ok := c.Get("short")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok = c.Get("short")
	assert.False(t, ok, "expired entries must never be returned")
}

func TestCacheGetOrFetchCoalescesConcurrentMisses(t *testing.T) {
	c := testCache(t)
	var fetches atomic.Int64

	fetch := func(context.Context) (any, error) {
		fetches.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "fetched", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.GetOrFetch(context.Background(), "hosts:list", time.Minute, fetch)
			assert.NoError(t, err)
			assert.Equal(t, "fetched", got)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), fetches.Load(), "concurrent misses must share one fetch")
}

func TestCacheGetOrFetchDoesNotStoreErrors(t *testing.T) {
	c := testCache(t)
	boom := errors.New("upstream down")

	_, err := c.GetOrFetch(context.Background(), "k", time.Minute, func(context.Context) (any, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	got, err := c.GetOrFetch(context.Background(), "k", time.Minute, func(context.Context) (any, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
}

func TestCacheInvalidatePattern(t *testing.T) {
	c := testCache(t)
	c.Set("hosts:get:web01", 1, 0)
	c.Set("hosts:get:web02", 2, 0)
	c.Set("hosts:list:/prod/web,10", 3, 0)
	c.Set("rules:schema:cpu", 4, 0)

	n := c.InvalidatePattern("hosts:*")
	assert.Equal(t, 3, n)

	_, ok := c.Get("hosts:get:web01")
	assert.False(t, ok)
	_, ok = c.Get("rules:schema:cpu")
	assert.True(t, ok, "non-matching keys must survive")
}

func TestCachePatternWildcardCrossesSlash(t *testing.T) {
	c := testCache(t)
	c.Set("hosts:list:/network/monitoring/", 1, 0)

	assert.Equal(t, 1, c.InvalidatePattern("hosts:list:*"))
}

func TestCacheClear(t *testing.T) {
	c := testCache(t)
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)

	assert.Equal(t, 2, c.Clear())
	_, ok := c.Get("a")
	assert.False(t, ok)

	// A cleared key refetches.
	var fetches atomic.Int64
	got, err := c.GetOrFetch(context.Background(), "a", time.Minute, func(context.Context) (any, error) {
		fetches.Add(1)
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
	assert.Equal(t, int64(1), fetches.Load())
}

func TestCacheStats(t *testing.T) {
	c := testCache(t)
	c.Set("a", 1, 0)
	c.Get("a")
	c.Get("missing")
	c.Invalidate("a")

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.GreaterOrEqual(t, stats.Misses, uint64(1))
	assert.Equal(t, uint64(1), stats.Invalidations)
	assert.Equal(t, 100, stats.MaxSize)
}

func TestGlobToRegexp(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		match   bool
	}{
		{"hosts:*", "hosts:get:web01", true},
		{"hosts:*", "events:list", false},
		{"hosts:get:web0?", "hosts:get:web01", true},
		{"hosts:get:web0?", "hosts:get:web011", false},
		{"exact", "exact", true},
		{"exact", "exact-not", false},
		{"a.b", "axb", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.match, globToRegexp(tt.pattern).MatchString(tt.key),
			"pattern %q against %q", tt.pattern, tt.key)
	}
}
