// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package checkmk

import (
	"context"
)

// ListBIAggregations returns the computed state of all BI aggregations.
func (c *Client) ListBIAggregations(ctx context.Context) ([]BIAggregation, error) {
	var reply struct {
		Aggregations map[string]struct {
			State        *int `json:"state"`
			Acknowledged bool `json:"acknowledged"`
			InDowntime   bool `json:"in_downtime"`
		} `json:"aggregations"`
	}

	_, err := c.do(ctx, &request{
		method:   "POST",
		path:     "/domain-types/bi_aggregation/actions/aggregation_state/invoke",
		body:     map[string]any{},
		resource: "BI aggregations",
		family:   "bi",
	}, &reply)
	if err != nil {
		return nil, err
	}

	aggregations := make([]BIAggregation, 0, len(reply.Aggregations))
	for name, agg := range reply.Aggregations {
		state := 3
		if agg.State != nil {
			state = *agg.State
		}
		aggregations = append(aggregations, BIAggregation{
			Name:         name,
			State:        state,
			Acknowledged: agg.Acknowledged,
			InDowntime:   agg.InDowntime,
		})
	}
	return aggregations, nil
}
