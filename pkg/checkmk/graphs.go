// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package checkmk

import (
	"context"
	"fmt"
	"time"
)

// Reduce selects how the metric endpoint aggregates data points per step.
type Reduce string

// Supported reduce functions.
const (
	ReduceAverage Reduce = "average"
	ReduceMax     Reduce = "max"
	ReduceMin     Reduce = "min"
)

// Valid reports whether r is a supported reduce function.
func (r Reduce) Valid() bool {
	switch r {
	case ReduceAverage, ReduceMax, ReduceMin, "":
		return true
	default:
		return false
	}
}

// GetGraph fetches a predefined graph of a service over the given range.
func (c *Client) GetGraph(ctx context.Context, hostName, serviceDescription, graphID string, start, end time.Time, reduce Reduce) (*MetricResult, error) {
	if !reduce.Valid() {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid reduce %q", reduce)}
	}
	if reduce == "" {
		reduce = ReduceAverage
	}

	body := map[string]any{
		"type":                "predefined_graph",
		"host_name":           hostName,
		"service_description": serviceDescription,
		"graph_id":            graphID,
		"reduce":              string(reduce),
		"time_range": map[string]any{
			"start": start.UTC().Format(time.RFC3339),
			"end":   end.UTC().Format(time.RFC3339),
		},
	}

	var result MetricResult
	_, err := c.do(ctx, &request{
		method:   "POST",
		path:     "/domain-types/metric/actions/get/invoke",
		body:     body,
		resource: fmt.Sprintf("graph %q of %q/%q", graphID, hostName, serviceDescription),
		family:   "metric",
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetMetricHistory fetches the history of a single metric of a service.
func (c *Client) GetMetricHistory(ctx context.Context, hostName, serviceDescription, metricID string, start, end time.Time, reduce Reduce) (*MetricResult, error) {
	if !reduce.Valid() {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid reduce %q", reduce)}
	}
	if reduce == "" {
		reduce = ReduceAverage
	}

	body := map[string]any{
		"type":                "single_metric",
		"host_name":           hostName,
		"service_description": serviceDescription,
		"metric_id":           metricID,
		"reduce":              string(reduce),
		"time_range": map[string]any{
			"start": start.UTC().Format(time.RFC3339),
			"end":   end.UTC().Format(time.RFC3339),
		},
	}

	var result MetricResult
	_, err := c.do(ctx, &request{
		method:   "POST",
		path:     "/domain-types/metric/actions/get/invoke",
		body:     body,
		resource: fmt.Sprintf("metric %q of %q/%q", metricID, hostName, serviceDescription),
		family:   "metric",
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
