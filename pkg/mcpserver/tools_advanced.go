// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/checkmk-mcp/core/pkg/service"
)

type streamHostsArgs struct {
	Search     string `json:"search,omitempty" jsonschema:"Substring filter on host names"`
	Folder     string `json:"folder,omitempty" jsonschema:"Restrict to hosts in this folder path"`
	BatchSize  int    `json:"batch_size,omitempty" jsonschema:"Page size; defaults to the configured streaming batch size"`
	MaxBatches int    `json:"max_batches,omitempty" jsonschema:"Stop after this many pages; 0 means all"`
}

type batchCreateHostsArgs struct {
	Hosts []service.BatchCreateItem `json:"hosts" jsonschema:"Hosts to create, each with name, folder, and optional attributes"`
}

type clearCacheArgs struct {
	Pattern string `json:"pattern,omitempty" jsonschema:"Glob of cache keys to drop; empty clears everything"`
}

func registerAdvancedTools(server *mcp.Server, srv *service.ServerService) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_system_info",
		Description: "Report the Checkmk site version and edition together with this server's identity.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(srv.SystemInfo(ctx))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "stream_hosts",
		Description: "Page through the host inventory in constant memory. Use for large sites where list_hosts would be unwieldy.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args streamHostsArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(srv.StreamHosts(ctx, args.Search, args.Folder, args.BatchSize, args.MaxBatches))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "batch_create_hosts",
		Description: "Create many hosts with bounded concurrency, rate limiting, and per-item retry. Individual failures do not abort the batch.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args batchCreateHostsArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(srv.BatchCreateHosts(ctx, args.Hosts))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_server_metrics",
		Description: "Snapshot this server's own counters: cache hit rates and request metrics.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(srv.ServerMetrics(ctx))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clear_cache",
		Description: "Drop cached entries so subsequent reads refetch from Checkmk. Optionally scoped by a key glob.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args clearCacheArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(srv.ClearCache(ctx, args.Pattern))
	})
}
