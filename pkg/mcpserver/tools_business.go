// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/checkmk-mcp/core/pkg/service"
)

func registerBusinessTools(server *mcp.Server, bi *service.BIService) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_business_status_summary",
		Description: "Summarize the states of all BI aggregations, the business-level service views.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(bi.StatusSummary(ctx))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_critical_business_services",
		Description: "List BI aggregations currently critical and unhandled.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(bi.CriticalAggregations(ctx))
	})
}
