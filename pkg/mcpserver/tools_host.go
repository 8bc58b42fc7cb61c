// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/checkmk-mcp/core/pkg/checkmk"
	"github.com/checkmk-mcp/core/pkg/service"
)

type listHostsArgs struct {
	Search              string `json:"search,omitempty" jsonschema:"Substring filter on host names"`
	Folder              string `json:"folder,omitempty" jsonschema:"Restrict to hosts in this folder path"`
	Limit               int    `json:"limit,omitempty" jsonschema:"Maximum number of hosts to return"`
	Offset              int    `json:"offset,omitempty" jsonschema:"Number of hosts to skip"`
	EffectiveAttributes bool   `json:"effective_attributes,omitempty" jsonschema:"Include attributes inherited from folders"`
}

type getHostArgs struct {
	Name                string `json:"name" jsonschema:"Host name"`
	EffectiveAttributes bool   `json:"effective_attributes,omitempty" jsonschema:"Include attributes inherited from folders"`
}

type createHostArgs struct {
	Name       string         `json:"name" jsonschema:"Host name"`
	Folder     string         `json:"folder" jsonschema:"Target folder path, e.g. /network/monitoring"`
	Attributes map[string]any `json:"attributes,omitempty" jsonschema:"Host attributes such as ipaddress or alias"`
}

type updateHostArgs struct {
	Name       string         `json:"name" jsonschema:"Host name"`
	Attributes map[string]any `json:"attributes" jsonschema:"Attributes to set on the host"`
}

type deleteHostArgs struct {
	Name string `json:"name" jsonschema:"Host name"`
}

type listHostServicesArgs struct {
	Host    string   `json:"host" jsonschema:"Host name"`
	Columns []string `json:"columns,omitempty" jsonschema:"Livestatus columns to return; defaults cover state and output"`
}

func registerHostTools(server *mcp.Server, hosts *service.HostService) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_hosts",
		Description: "List configured Checkmk hosts. Use when you need an inventory overview or to find a host by name fragment.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args listHostsArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(hosts.List(ctx, checkmk.ListHostsQuery{
			Search:              args.Search,
			Folder:              args.Folder,
			Limit:               args.Limit,
			Offset:              args.Offset,
			EffectiveAttributes: args.EffectiveAttributes,
		}))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_host",
		Description: "Fetch one host's configuration, optionally with folder-inherited effective attributes.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args getHostArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(hosts.Get(ctx, args.Name, args.EffectiveAttributes))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_host",
		Description: "Create a host in a folder. Requires an activation of changes in Checkmk before monitoring starts.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args createHostArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(hosts.Create(ctx, args.Name, args.Folder, args.Attributes))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_host",
		Description: "Update a host's attributes, e.g. its IP address or alias.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args updateHostArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(hosts.Update(ctx, args.Name, args.Attributes))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_host",
		Description: "Delete a host from the configuration. This cannot be undone through this server.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args deleteHostArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(hosts.Delete(ctx, args.Name))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_host_services",
		Description: "List the monitored services of one host with their current states.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args listHostServicesArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(hosts.ListServices(ctx, args.Host, args.Columns))
	})
}
