// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkmk-mcp/core/pkg/cache"
	"github.com/checkmk-mcp/core/pkg/config"
	"github.com/checkmk-mcp/core/pkg/requestid"
	"github.com/checkmk-mcp/core/pkg/service"
)

func testServices(t *testing.T) *service.Services {
	t.Helper()
	store := cache.New(config.CacheConfig{
		MaxSize:         100,
		DefaultTTL:      config.Duration(time.Minute),
		CleanupInterval: config.Duration(time.Minute),
	})
	t.Cleanup(store.Stop)
	return service.New(service.Deps{Cache: store})
}

func connectClient(t *testing.T, srv *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := srv.Server().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = clientSession.Close() })
	return clientSession
}

func TestNewRegistersFullToolCatalog(t *testing.T) {
	srv := New(testServices(t), Options{})
	session := connectClient(t, srv)

	listed, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, 0, len(listed.Tools))
	for _, tool := range listed.Tools {
		names = append(names, tool.Name)
	}

	expected := []string{
		// Host tools.
		"list_hosts", "get_host", "create_host", "update_host", "delete_host",
		"list_host_services",
		// Service tools.
		"list_all_services", "acknowledge_service_problem", "create_service_downtime",
		// Monitoring tools.
		"get_health_dashboard", "get_critical_problems", "analyze_host_health",
		// Parameter tools.
		"get_effective_parameters", "set_service_parameters", "discover_service_ruleset",
		"get_parameter_schema", "validate_service_parameters", "update_parameter_rule",
		"get_service_handler_info", "get_specialized_defaults", "validate_with_handler",
		"get_parameter_suggestions", "list_parameter_handlers",
		// Event tools.
		"list_service_events", "list_host_events", "get_recent_critical_events",
		"acknowledge_event", "search_events",
		// Metric tools.
		"get_service_metrics", "get_metric_history",
		// Business intelligence tools.
		"get_business_status_summary", "get_critical_business_services",
		// Advanced tools.
		"get_system_info", "stream_hosts", "batch_create_hosts",
		"get_server_metrics", "clear_cache",
	}
	assert.Len(t, names, 37)
	assert.ElementsMatch(t, expected, names)
}

func TestCallToolScopesEachCallWithFreshRequestID(t *testing.T) {
	srv := New(testServices(t), Options{})
	session := connectClient(t, srv)
	ctx := context.Background()

	callClearCache := func() service.Result {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "clear_cache",
			Arguments: map[string]any{"pattern": "*"},
		})
		require.NoError(t, err)
		require.False(t, res.IsError)
		require.Len(t, res.Content, 1)
		text, ok := res.Content[0].(*mcp.TextContent)
		require.True(t, ok)

		var envelope service.Result
		require.NoError(t, json.Unmarshal([]byte(text.Text), &envelope))
		return envelope
	}

	first := callClearCache()
	assert.True(t, first.Success)
	assert.True(t, strings.HasPrefix(first.RequestID, "req_"), "got %q", first.RequestID)

	second := callClearCache()
	assert.NotEqual(t, first.RequestID, second.RequestID, "each call gets its own id")
}

func TestMetricHistorySchemaRestrictsReduce(t *testing.T) {
	srv := New(testServices(t), Options{})
	session := connectClient(t, srv)

	listed, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	var schema string
	for _, tool := range listed.Tools {
		if tool.Name == "get_metric_history" {
			raw, err := json.Marshal(tool.InputSchema)
			require.NoError(t, err)
			schema = string(raw)
		}
	}
	require.NotEmpty(t, schema)
	assert.Contains(t, schema, `"enum"`)
	assert.Contains(t, schema, "average")
	assert.Contains(t, schema, "metric_id")
}

func TestNewCallTimeout(t *testing.T) {
	srv := New(testServices(t), Options{})
	assert.Equal(t, defaultCallTimeout, srv.callTimeout)

	srv = New(testServices(t), Options{CallTimeout: 5 * time.Second})
	assert.Equal(t, 5*time.Second, srv.callTimeout)
}

func TestRequestScopeMiddlewareScopesOnlyToolCalls(t *testing.T) {
	srv := New(testServices(t), Options{})

	var gotID string
	var hadDeadline bool
	wrapped := srv.requestScopeMiddleware(func(ctx context.Context, _ string, _ mcp.Request) (mcp.Result, error) {
		gotID, _ = requestid.FromContext(ctx)
		_, hadDeadline = ctx.Deadline()
		return &mcp.CallToolResult{}, nil
	})

	call := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Name: "list_hosts"}}
	_, err := wrapped(context.Background(), "tools/call", call)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gotID, "req_"), "got %q", gotID)
	assert.True(t, hadDeadline, "tool calls run under the call deadline")

	first := gotID
	_, err = wrapped(context.Background(), "tools/call", call)
	require.NoError(t, err)
	assert.NotEqual(t, first, gotID)

	gotID, hadDeadline = "", false
	_, err = wrapped(context.Background(), "tools/list", call)
	require.NoError(t, err)
	assert.Empty(t, gotID, "only tool calls are scoped")
	assert.False(t, hadDeadline)
}

func TestToolResultEnvelope(t *testing.T) {
	ok, _, err := toolResult(service.OK(context.Background(), map[string]any{"count": 0}))
	require.NoError(t, err)
	assert.False(t, ok.IsError)
	require.Len(t, ok.Content, 1)
	assert.Contains(t, ok.Content[0].(*mcp.TextContent).Text, `"success": true`)

	failed, _, err := toolResult(service.Disabled(context.Background(), "event console"))
	require.NoError(t, err)
	assert.True(t, failed.IsError)
}
