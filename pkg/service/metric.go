// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/checkmk-mcp/core/pkg/cache"
	"github.com/checkmk-mcp/core/pkg/checkmk"
)

// MetricService backs the metric tools.
type MetricService struct {
	client  *checkmk.Client
	cache   *cache.Cache
	enabled bool
}

const metricsFeature = "metrics API"

// TimeRange bounds a metric query. A zero Start defaults to End minus one
// hour; a zero End defaults to now.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

func (r TimeRange) normalized() (time.Time, time.Time) {
	end := r.End
	if end.IsZero() {
		end = time.Now()
	}
	start := r.Start
	if start.IsZero() {
		start = end.Add(-time.Hour)
	}
	return start, end
}

// ServiceMetrics returns the graph data for one (host, service).
func (s *MetricService) ServiceMetrics(ctx context.Context, hostName, serviceDescription, graphID string, tr TimeRange, reduce checkmk.Reduce) *Result {
	if !s.enabled {
		return Disabled(ctx, metricsFeature)
	}
	if !reduce.Valid() {
		return Fail(ctx, &checkmk.ValidationError{
			Message: fmt.Sprintf("reduce must be one of average, max, min; got %q", reduce),
		})
	}

	start, end := tr.normalized()
	key := fmt.Sprintf("metrics:graph:%s,%s,%s,%d,%d,%s",
		hostName, serviceDescription, graphID, start.Unix(), end.Unix(), reduce)

	result, err := s.cache.GetOrFetch(ctx, key, 0, func(ctx context.Context) (any, error) {
		return s.client.GetGraph(ctx, hostName, serviceDescription, graphID, start, end, reduce)
	})
	if err != nil {
		return Fail(ctx, err)
	}
	return metricResult(ctx, result.(*checkmk.MetricResult))
}

// MetricHistory returns one named metric's history.
func (s *MetricService) MetricHistory(ctx context.Context, hostName, serviceDescription, metricID string, tr TimeRange, reduce checkmk.Reduce) *Result {
	if !s.enabled {
		return Disabled(ctx, metricsFeature)
	}
	if !reduce.Valid() {
		return Fail(ctx, &checkmk.ValidationError{
			Message: fmt.Sprintf("reduce must be one of average, max, min; got %q", reduce),
		})
	}

	start, end := tr.normalized()
	key := fmt.Sprintf("metrics:history:%s,%s,%s,%d,%d,%s",
		hostName, serviceDescription, metricID, start.Unix(), end.Unix(), reduce)

	result, err := s.cache.GetOrFetch(ctx, key, 0, func(ctx context.Context) (any, error) {
		return s.client.GetMetricHistory(ctx, hostName, serviceDescription, metricID, start, end, reduce)
	})
	if err != nil {
		return Fail(ctx, err)
	}
	return metricResult(ctx, result.(*checkmk.MetricResult))
}

// metricResult shapes a metric reply; an empty series set is a success with
// count zero.
func metricResult(ctx context.Context, m *checkmk.MetricResult) *Result {
	data := map[string]any{
		"time_range": m.TimeRange,
		"step":       m.Step,
		"metrics":    m.Metrics,
		"count":      len(m.Metrics),
	}
	if len(m.Metrics) == 0 {
		data["message"] = "no metric data in range"
	}
	return OK(ctx, data)
}
