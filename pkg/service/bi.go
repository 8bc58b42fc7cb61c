// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"github.com/checkmk-mcp/core/pkg/checkmk"
)

// BIService backs the business-intelligence tools.
type BIService struct {
	client  *checkmk.Client
	enabled bool
}

const biFeature = "business intelligence"

// StatusSummary aggregates BI aggregation states into counts.
func (s *BIService) StatusSummary(ctx context.Context) *Result {
	if !s.enabled {
		return Disabled(ctx, biFeature)
	}
	aggregations, err := s.client.ListBIAggregations(ctx)
	if err != nil {
		return Fail(ctx, err)
	}

	counts := map[string]int{"ok": 0, "warn": 0, "crit": 0, "unknown": 0}
	for _, agg := range aggregations {
		counts[strings.ToLower(checkmk.ServiceState(agg.State).Name())]++
	}

	return OK(ctx, map[string]any{
		"aggregations": aggregations,
		"count":        len(aggregations),
		"state_counts": counts,
	})
}

// CriticalAggregations lists unhandled critical BI aggregations.
func (s *BIService) CriticalAggregations(ctx context.Context) *Result {
	if !s.enabled {
		return Disabled(ctx, biFeature)
	}
	aggregations, err := s.client.ListBIAggregations(ctx)
	if err != nil {
		return Fail(ctx, err)
	}

	critical := lo.Filter(aggregations, func(agg checkmk.BIAggregation, _ int) bool {
		return checkmk.ServiceState(agg.State) == checkmk.StateCrit &&
			!agg.Acknowledged && !agg.InDowntime
	})

	return OK(ctx, map[string]any{
		"aggregations": critical,
		"count":        len(critical),
	})
}
