// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

// Package cache provides the size-bounded LRU cache with per-entry TTL that
// backs the read paths of the service layer. Concurrent misses for the same
// key are collapsed into a single upstream fetch.
package cache

import (
	"context"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"

	"github.com/checkmk-mcp/core/pkg/config"
	"github.com/checkmk-mcp/core/pkg/logging"
)

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Evictions     uint64 `json:"evictions"`
	Invalidations uint64 `json:"invalidations"`
	Size          int    `json:"size"`
	MaxSize       int    `json:"max_size"`
}

// Cache is a size-bounded LRU cache with per-entry TTL, glob-pattern
// invalidation, and single-flight fetch coalescing. All methods are safe for
// concurrent use.
type Cache struct {
	store      *ttlcache.Cache[string, any]
	group      singleflight.Group
	defaultTTL time.Duration
	maxSize    int

	invalidations atomic.Uint64

	sweepInterval time.Duration
	stopSweeper   chan struct{}
}

// New creates a Cache from the given configuration and starts its background
// sweeper. Call Stop when the cache is no longer needed.
func New(cfg config.CacheConfig) *Cache {
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = 1000
	}
	ttl := cfg.DefaultTTL.AsDuration()
	if ttl <= 0 {
		ttl = 300 * time.Second
	}
	sweep := cfg.CleanupInterval.AsDuration()
	if sweep <= 0 {
		sweep = time.Minute
	}

	c := &Cache{
		store: ttlcache.New[string, any](
			ttlcache.WithTTL[string, any](ttl),
			ttlcache.WithCapacity[string, any](uint64(maxSize)),
			ttlcache.WithDisableTouchOnHit[string, any](),
		),
		defaultTTL:    ttl,
		maxSize:       maxSize,
		sweepInterval: sweep,
		stopSweeper:   make(chan struct{}),
	}
	go c.sweep()
	return c
}

// sweep periodically removes expired entries so that memory is reclaimed even
// for keys that are never read again.
func (c *Cache) sweep() {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.store.DeleteExpired()
		case <-c.stopSweeper:
			return
		}
	}
}

// Stop terminates the background sweeper.
func (c *Cache) Stop() {
	close(c.stopSweeper)
}

// Get returns the cached value for key. Expired entries are never returned.
func (c *Cache) Get(key string) (any, bool) {
	item := c.store.Get(key)
	if item == nil || item.IsExpired() {
		return nil, false
	}
	return item.Value(), true
}

// Set stores value under key. A non-positive ttl uses the cache default.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = ttlcache.DefaultTTL
	}
	c.store.Set(key, value, ttl)
}

// GetOrFetch returns the cached value for key, or invokes fetch to populate
// it. Concurrent callers for the same missing key share one fetch; only the
// winning fetch's result is stored.
func (c *Cache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) (any, error)) (any, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check: another flight may have populated the key between the
		// miss above and acquiring the flight.
		if value, ok := c.Get(key); ok {
			return value, nil
		}
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, value, ttl)
		return value, nil
	})
	return value, err
}

// Invalidate removes a single key.
func (c *Cache) Invalidate(key string) {
	c.store.Delete(key)
	c.invalidations.Add(1)
}

// InvalidatePattern removes all keys matching the glob pattern, where `*`
// matches any run of characters and `?` a single character. It returns the
// number of keys removed.
func (c *Cache) InvalidatePattern(pattern string) int {
	re := globToRegexp(pattern)
	var matched []string
	c.store.Range(func(item *ttlcache.Item[string, any]) bool {
		if re.MatchString(item.Key()) {
			matched = append(matched, item.Key())
		}
		return true
	})
	for _, key := range matched {
		c.store.Delete(key)
	}
	c.invalidations.Add(uint64(len(matched)))
	return len(matched)
}

// Clear removes every entry and returns the number of entries removed.
func (c *Cache) Clear() int {
	n := c.store.Len()
	c.store.DeleteAll()
	c.invalidations.Add(uint64(n))
	return n
}

// Stats returns a snapshot of cache activity counters.
func (c *Cache) Stats() Stats {
	m := c.store.Metrics()
	return Stats{
		Hits:          m.Hits,
		Misses:        m.Misses,
		Evictions:     m.Evictions,
		Invalidations: c.invalidations.Load(),
		Size:          c.store.Len(),
		MaxSize:       c.maxSize,
	}
}

// globToRegexp compiles a glob pattern into an anchored regular expression.
// Unlike path.Match, the wildcard also crosses `/`, which appears inside
// folder-scoped cache keys.
func globToRegexp(pattern string) *regexp.Regexp {
	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	re, err := regexp.Compile(sb.String())
	if err != nil {
		// QuoteMeta makes compilation infallible; guard anyway.
		logging.GetLogger().Error("Failed to compile cache pattern", "pattern", pattern, "error", err)
		return regexp.MustCompile(`^\b$`)
	}
	return re
}
