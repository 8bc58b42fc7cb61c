// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/checkmk-mcp/core/pkg/checkmk"
	"github.com/checkmk-mcp/core/pkg/service"
)

type listAllServicesArgs struct {
	Query   map[string]any `json:"query,omitempty" jsonschema:"Livestatus query expression as a JSON object"`
	Columns []string       `json:"columns,omitempty" jsonschema:"Livestatus columns to return"`
	Limit   int            `json:"limit,omitempty" jsonschema:"Maximum number of services to return"`
	Offset  int            `json:"offset,omitempty" jsonschema:"Number of services to skip"`
}

type acknowledgeServiceArgs struct {
	Host       string `json:"host" jsonschema:"Host name"`
	Service    string `json:"service" jsonschema:"Service description"`
	Comment    string `json:"comment" jsonschema:"Why the problem is acknowledged"`
	Sticky     bool   `json:"sticky,omitempty" jsonschema:"Keep the acknowledgement when the state worsens"`
	Persistent bool   `json:"persistent,omitempty" jsonschema:"Keep the comment after recovery"`
	Notify     bool   `json:"notify,omitempty" jsonschema:"Send a notification about the acknowledgement"`
	ExpireOn   string `json:"expire_on,omitempty" jsonschema:"RFC 3339 expiry for the acknowledgement (Checkmk 2.4+)"`
}

type createDowntimeArgs struct {
	Host      string `json:"host" jsonschema:"Host name"`
	Service   string `json:"service" jsonschema:"Service description"`
	StartTime string `json:"start_time" jsonschema:"Downtime start, RFC 3339"`
	EndTime   string `json:"end_time" jsonschema:"Downtime end, RFC 3339"`
	Comment   string `json:"comment,omitempty" jsonschema:"Reason for the downtime"`
}

func registerServiceTools(server *mcp.Server, services *service.ServiceService) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_all_services",
		Description: "List monitored services across all hosts, optionally filtered with a livestatus query expression.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args listAllServicesArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(services.ListAll(ctx, checkmk.ListServicesQuery{
			Query:   args.Query,
			Columns: args.Columns,
			Limit:   args.Limit,
			Offset:  args.Offset,
		}))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "acknowledge_service_problem",
		Description: "Acknowledge a service problem so it stops alerting. Requires a comment; acknowledging twice is harmless.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args acknowledgeServiceArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(services.Acknowledge(ctx, args.Host, args.Service, checkmk.AcknowledgeOptions{
			Comment:    args.Comment,
			Sticky:     args.Sticky,
			Persistent: args.Persistent,
			Notify:     args.Notify,
			ExpireOn:   args.ExpireOn,
		}))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_service_downtime",
		Description: "Schedule a downtime window for a service, suppressing notifications between start and end.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args createDowntimeArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(services.CreateDowntime(ctx, args.Host, args.Service, checkmk.DowntimeOptions{
			StartTime: args.StartTime,
			EndTime:   args.EndTime,
			Comment:   args.Comment,
		}))
	})
}
