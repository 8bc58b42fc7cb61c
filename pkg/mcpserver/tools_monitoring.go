// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/checkmk-mcp/core/pkg/service"
)

type emptyArgs struct{}

type analyzeHostArgs struct {
	Host string `json:"host" jsonschema:"Host name to analyze"`
}

func registerMonitoringTools(server *mcp.Server, status *service.StatusService) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_health_dashboard",
		Description: "Aggregate all services into state counts, an overall grade (A+ to F), and a problem-category breakdown. Use for a one-shot health overview.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(status.Dashboard(ctx))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_critical_problems",
		Description: "List unhandled CRITICAL services (not acknowledged, not in downtime). Use to triage what needs attention right now.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(status.CriticalProblems(ctx))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_host_health",
		Description: "Summarize one host's service health: grade, OK percentage, and its problems categorized for triage.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args analyzeHostArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(status.AnalyzeHost(ctx, args.Host))
	})
}
