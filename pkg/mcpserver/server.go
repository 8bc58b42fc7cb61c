// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

// Package mcpserver exposes the Checkmk tool catalog over the Model Context
// Protocol. The catalog is fixed at startup: 37 tools across host, service,
// monitoring, parameter, event, metric, business, and advanced categories.
package mcpserver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/checkmk-mcp/core/pkg/appconsts"
	"github.com/checkmk-mcp/core/pkg/logging"
	"github.com/checkmk-mcp/core/pkg/metrics"
	"github.com/checkmk-mcp/core/pkg/requestid"
	"github.com/checkmk-mcp/core/pkg/service"
)

const (
	methodToolsCall = "tools/call"

	// defaultCallTimeout bounds a single tool call end to end, including
	// retries inside the REST client.
	defaultCallTimeout = 120 * time.Second
)

// Server wraps the MCP server with the Checkmk tool catalog.
type Server struct {
	server      *mcp.Server
	callTimeout time.Duration
}

// Options tunes the server construction.
type Options struct {
	// CallTimeout overrides the per-call deadline; zero keeps the default.
	CallTimeout time.Duration
}

// New builds the MCP server and registers the full tool catalog.
func New(services *service.Services, opts Options) *Server {
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    appconsts.Name,
			Version: appconsts.Version,
		}, &mcp.ServerOptions{
			HasTools: true,
		}),
		callTimeout: defaultCallTimeout,
	}
	if opts.CallTimeout > 0 {
		s.callTimeout = opts.CallTimeout
	}

	s.server.AddReceivingMiddleware(s.requestScopeMiddleware)

	registerHostTools(s.server, services.Host)
	registerServiceTools(s.server, services.Service)
	registerMonitoringTools(s.server, services.Status)
	registerParameterTools(s.server, services.Parameter)
	registerEventTools(s.server, services.Event)
	registerMetricTools(s.server, services.Metric)
	registerBusinessTools(s.server, services.BI)
	registerAdvancedTools(s.server, services.Server)

	return s
}

// Server exposes the underlying MCP server.
func (s *Server) Server() *mcp.Server { return s.server }

// Run serves MCP over the given transport until the context is cancelled or
// the peer disconnects.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// requestScopeMiddleware scopes every tool call with a fresh request id and
// a deadline. The id travels in the context and appears on every log line
// and outbound HTTP request of the call.
func (s *Server) requestScopeMiddleware(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		if method != methodToolsCall {
			return next(ctx, method, req)
		}

		ctx = requestid.NewContext(ctx, requestid.New())
		ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()

		toolName := ""
		if call, ok := req.(*mcp.CallToolRequest); ok {
			toolName = call.Params.Name
		}

		log := logging.GetLogger()
		log.InfoContext(ctx, "Tool call started", "tool", toolName)
		metrics.IncrCounter([]string{"tools", "call", "total"}, 1)
		metrics.IncrCounter([]string{"tool", toolName, "call", "total"}, 1)
		start := time.Now()
		defer metrics.MeasureSince([]string{"tools", "call", "latency"}, start)

		result, err := next(ctx, method, req)
		if err != nil {
			metrics.IncrCounter([]string{"tools", "call", "errors"}, 1)
			log.ErrorContext(ctx, "Tool call failed", "tool", toolName, "error", err)
			return result, err
		}
		log.InfoContext(ctx, "Tool call finished", "tool", toolName, "duration", time.Since(start))
		return result, nil
	}
}

// toolResult serializes a facade Result as the tool reply. Failed results
// are flagged IsError but still carry the structured envelope so the client
// sees kind, message, and request id.
func toolResult(res *service.Result) (*mcp.CallToolResult, any, error) {
	payload, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}},
		IsError: !res.Success,
	}, nil, nil
}
