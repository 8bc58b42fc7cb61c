// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/checkmk-mcp/core/pkg/service"
)

type serviceEventsArgs struct {
	Host    string `json:"host" jsonschema:"Host name"`
	Service string `json:"service" jsonschema:"Service or application name"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Maximum number of events to return"`
}

type hostEventsArgs struct {
	Host  string `json:"host" jsonschema:"Host name"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of events to return"`
}

type recentCriticalArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of events to return"`
}

type acknowledgeEventArgs struct {
	EventID string `json:"event_id" jsonschema:"Event console event identifier"`
	Comment string `json:"comment,omitempty" jsonschema:"Acknowledgement comment"`
}

type searchEventsArgs struct {
	Query string `json:"query" jsonschema:"Free-form event console query expression"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of events to return"`
}

func registerEventTools(server *mcp.Server, events *service.EventService) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_service_events",
		Description: "List event console events for one (host, service). An empty list is a normal result, not an error.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args serviceEventsArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(events.ListServiceEvents(ctx, args.Host, args.Service, args.Limit))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_host_events",
		Description: "List event console events for one host.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args hostEventsArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(events.ListHostEvents(ctx, args.Host, args.Limit))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_recent_critical_events",
		Description: "List open critical events across the event console.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args recentCriticalArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(events.RecentCritical(ctx, args.Limit))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "acknowledge_event",
		Description: "Acknowledge one event console event with a comment.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args acknowledgeEventArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(events.Acknowledge(ctx, args.EventID, args.Comment))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_events",
		Description: "Search event console events with a free-form query expression.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args searchEventsArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(events.Search(ctx, args.Query, args.Limit))
	})
}
