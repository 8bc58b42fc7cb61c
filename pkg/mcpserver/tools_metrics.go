// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package mcpserver

import (
	"context"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/checkmk-mcp/core/pkg/checkmk"
	"github.com/checkmk-mcp/core/pkg/service"
)

type serviceMetricsArgs struct {
	Host    string `json:"host"`
	Service string `json:"service"`
	GraphID string `json:"graph_id,omitempty"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
	Reduce  string `json:"reduce,omitempty"`
}

type metricHistoryArgs struct {
	Host     string `json:"host"`
	Service  string `json:"service"`
	MetricID string `json:"metric_id"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	Reduce   string `json:"reduce,omitempty"`
}

// metricQuerySchema builds the input schema the two metric tools share. The
// reduce enum is enforced at the schema level, so an invalid downsampling
// function is rejected before the tool handler runs.
func metricQuerySchema(idProperty, idDescription string, idRequired bool) *jsonschema.Schema {
	properties := map[string]*jsonschema.Schema{
		"host":     {Type: "string", Description: "Host name"},
		"service":  {Type: "string", Description: "Service description"},
		idProperty: {Type: "string", Description: idDescription},
		"start":    {Type: "string", Description: "Range start, RFC 3339; defaults to one hour before end"},
		"end":      {Type: "string", Description: "Range end, RFC 3339; defaults to now"},
		"reduce": {
			Type:        "string",
			Description: "Downsampling function",
			Enum:        []any{"average", "max", "min"},
		},
	}
	required := []string{"host", "service"}
	if idRequired {
		required = append(required, idProperty)
	}
	return &jsonschema.Schema{Type: "object", Properties: properties, Required: required}
}

func parseTimeRange(start, end string) service.TimeRange {
	var tr service.TimeRange
	if t, err := time.Parse(time.RFC3339, start); err == nil {
		tr.Start = t
	}
	if t, err := time.Parse(time.RFC3339, end); err == nil {
		tr.End = t
	}
	return tr
}

func parseReduce(raw string) checkmk.Reduce {
	if raw == "" {
		return checkmk.ReduceAverage
	}
	return checkmk.Reduce(raw)
}

func registerMetricTools(server *mcp.Server, metrics *service.MetricService) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_service_metrics",
		Description: "Fetch graph data for a service over a time range with a downsampling function.",
		InputSchema: metricQuerySchema("graph_id",
			"Graph identifier; defaults to the service's first graph", false),
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args serviceMetricsArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(metrics.ServiceMetrics(ctx, args.Host, args.Service, args.GraphID,
			parseTimeRange(args.Start, args.End), parseReduce(args.Reduce)))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_metric_history",
		Description: "Fetch one named metric's history for a service over a time range.",
		InputSchema: metricQuerySchema("metric_id",
			"Metric identifier, e.g. temp", true),
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args metricHistoryArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(metrics.MetricHistory(ctx, args.Host, args.Service, args.MetricID,
			parseTimeRange(args.Start, args.End), parseReduce(args.Reduce)))
	})
}
