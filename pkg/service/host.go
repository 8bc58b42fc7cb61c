// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"

	"github.com/checkmk-mcp/core/pkg/batch"
	"github.com/checkmk-mcp/core/pkg/cache"
	"github.com/checkmk-mcp/core/pkg/checkmk"
	"github.com/checkmk-mcp/core/pkg/streaming"
)

const hostCacheTTL = 0 // 0 means the cache default TTL

// HostService backs the host configuration tools.
type HostService struct {
	client    *checkmk.Client
	cache     *cache.Cache
	batch     *batch.Executor
	batchSize int
}

// List returns configured hosts. Results are cached under the full query
// shape; any host mutation invalidates the listing keys.
func (s *HostService) List(ctx context.Context, q checkmk.ListHostsQuery) *Result {
	key := fmt.Sprintf("hosts:list:%s,%s,%d,%d,%t",
		q.Search, q.Folder, q.Limit, q.Offset, q.EffectiveAttributes)

	hosts, err := s.cache.GetOrFetch(ctx, key, hostCacheTTL, func(ctx context.Context) (any, error) {
		return s.client.ListHosts(ctx, q)
	})
	if err != nil {
		return Fail(ctx, err)
	}
	return OK(ctx, map[string]any{
		"hosts": hosts,
		"count": len(hosts.([]checkmk.Host)),
	})
}

// Get fetches one host, optionally with effective attributes.
func (s *HostService) Get(ctx context.Context, name string, effectiveAttributes bool) *Result {
	key := fmt.Sprintf("hosts:get:%s,%t", name, effectiveAttributes)

	host, err := s.cache.GetOrFetch(ctx, key, hostCacheTTL, func(ctx context.Context) (any, error) {
		return s.client.GetHost(ctx, name, effectiveAttributes)
	})
	if err != nil {
		return Fail(ctx, err)
	}
	return OK(ctx, host)
}

// Create adds a host and invalidates host caches.
func (s *HostService) Create(ctx context.Context, name, folder string, attributes map[string]any) *Result {
	host, err := s.client.CreateHost(ctx, name, folder, attributes)
	if err != nil {
		return Fail(ctx, err)
	}
	s.invalidateHost(name)
	return OK(ctx, host)
}

// Update modifies host attributes under etag concurrency. The etag is
// fetched fresh; hosts change rarely enough that a conflict surfaces to the
// caller rather than being retried.
func (s *HostService) Update(ctx context.Context, name string, attributes map[string]any) *Result {
	etag, err := s.client.GetHostEtag(ctx, name)
	if err != nil {
		return Fail(ctx, err)
	}
	host, err := s.client.UpdateHost(ctx, name, etag, attributes)
	if err != nil {
		return Fail(ctx, err)
	}
	s.invalidateHost(name)
	return OK(ctx, host)
}

// Delete removes a host and invalidates host caches.
func (s *HostService) Delete(ctx context.Context, name string) *Result {
	if err := s.client.DeleteHost(ctx, name); err != nil {
		return Fail(ctx, err)
	}
	s.invalidateHost(name)
	return OK(ctx, map[string]any{"deleted": name})
}

// ListServices returns the monitored services of one host.
func (s *HostService) ListServices(ctx context.Context, hostName string, columns []string) *Result {
	services, err := s.client.ListHostServices(ctx, hostName, columns)
	if err != nil {
		return Fail(ctx, err)
	}
	return OK(ctx, map[string]any{
		"host":     hostName,
		"services": services,
		"count":    len(services),
	})
}

// Stream pages through the host listing with constant memory and returns the
// collected batches with pagination metadata.
func (s *HostService) Stream(ctx context.Context, search, folder string, batchSize, maxBatches int) *Result {
	if batchSize <= 0 {
		batchSize = s.batchSize
	}

	fetch := func(ctx context.Context, offset, limit int) ([]checkmk.Host, bool, error) {
		hosts, err := s.client.ListHosts(ctx, checkmk.ListHostsQuery{
			Search: search,
			Folder: folder,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return nil, false, err
		}
		return hosts, len(hosts) == limit, nil
	}

	batches, err := streaming.Collect(ctx, fetch, batchSize, maxBatches)
	if err != nil {
		return Fail(ctx, err)
	}

	total := 0
	for _, b := range batches {
		total += len(b.Items)
	}
	return OK(ctx, map[string]any{
		"batches":     batches,
		"batch_size":  batchSize,
		"batch_count": len(batches),
		"total":       total,
	})
}

// BatchCreateItem is one host in a bulk creation request.
type BatchCreateItem struct {
	Name       string         `json:"name"`
	Folder     string         `json:"folder"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// BatchCreate creates many hosts with bounded concurrency and per-item
// retry. Individual failures do not abort the batch.
func (s *HostService) BatchCreate(ctx context.Context, items []BatchCreateItem) *Result {
	result, err := batch.Run(ctx, s.batch, items, func(ctx context.Context, item BatchCreateItem) error {
		_, err := s.client.CreateHost(ctx, item.Name, item.Folder, item.Attributes)
		return err
	}, batch.Options{})
	if err != nil {
		return Fail(ctx, err)
	}

	s.cache.InvalidatePattern("hosts:*")

	var warnings []string
	if failed := result.Progress.Failed; failed > 0 {
		warnings = append(warnings, fmt.Sprintf("%d of %d hosts failed to create", failed, len(items)))
	}
	return OK(ctx, result, warnings...)
}

func (s *HostService) invalidateHost(name string) {
	s.cache.InvalidatePattern("hosts:*" + name + "*")
	s.cache.InvalidatePattern("hosts:list:*")
}
