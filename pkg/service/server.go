// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"

	"github.com/checkmk-mcp/core/pkg/appconsts"
	"github.com/checkmk-mcp/core/pkg/cache"
	"github.com/checkmk-mcp/core/pkg/checkmk"
	"github.com/checkmk-mcp/core/pkg/metrics"
	"github.com/checkmk-mcp/core/pkg/resilience"
)

// ServerService backs the introspection and maintenance tools.
type ServerService struct {
	client *checkmk.Client
	cache  *cache.Cache
	host   *HostService
}

// SystemInfo reports the Checkmk site version alongside this server's
// identity. The version read degrades to "unknown" when the breaker is open.
func (s *ServerService) SystemInfo(ctx context.Context) *Result {
	var warnings []string
	// Version runs inside the system-family breaker already; sharing the
	// family here means an open circuit short-circuits before any HTTP
	// attempt and the fallback kicks in.
	version, err := resilience.ExecuteWithFallback(ctx, s.client.Resilience(), "system",
		func(ctx context.Context) (*checkmk.VersionInfo, error) {
			return s.client.Version(ctx)
		},
		func(context.Context) (*checkmk.VersionInfo, error) {
			warnings = append(warnings, "circuit open, reporting degraded site info")
			return &checkmk.VersionInfo{Edition: "unknown"}, nil
		})
	if err != nil {
		return Fail(ctx, err)
	}

	return OK(ctx, map[string]any{
		"server": map[string]any{
			"name":    appconsts.Name,
			"version": appconsts.Version,
		},
		"checkmk": version,
	}, warnings...)
}

// ServerMetrics snapshots this server's own counters: cache statistics and
// the in-memory metric intervals.
func (s *ServerService) ServerMetrics(ctx context.Context) *Result {
	return OK(ctx, map[string]any{
		"cache":     s.cache.Stats(),
		"intervals": metrics.Snapshot(),
	})
}

// ClearCache drops all cached entries. Subsequent reads refetch.
func (s *ServerService) ClearCache(ctx context.Context, pattern string) *Result {
	var cleared int
	if pattern == "" || pattern == "*" {
		cleared = s.cache.Clear()
	} else {
		cleared = s.cache.InvalidatePattern(pattern)
	}
	return OK(ctx, map[string]any{
		"cleared": cleared,
		"pattern": pattern,
	})
}

// StreamHosts pages through the host inventory; see HostService.Stream.
func (s *ServerService) StreamHosts(ctx context.Context, search, folder string, batchSize, maxBatches int) *Result {
	return s.host.Stream(ctx, search, folder, batchSize, maxBatches)
}

// BatchCreateHosts bulk-creates hosts; see HostService.BatchCreate.
func (s *ServerService) BatchCreateHosts(ctx context.Context, items []BatchCreateItem) *Result {
	return s.host.BatchCreate(ctx, items)
}
