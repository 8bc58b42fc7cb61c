// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

// Package app is the composition root: it builds the client, cache, batch
// executor, parameter engine, and domain facades from configuration and runs
// the MCP server over stdio.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/afero"

	"github.com/checkmk-mcp/core/pkg/batch"
	"github.com/checkmk-mcp/core/pkg/cache"
	"github.com/checkmk-mcp/core/pkg/checkmk"
	"github.com/checkmk-mcp/core/pkg/config"
	"github.com/checkmk-mcp/core/pkg/logging"
	"github.com/checkmk-mcp/core/pkg/mcpserver"
	"github.com/checkmk-mcp/core/pkg/metrics"
	"github.com/checkmk-mcp/core/pkg/params"
	"github.com/checkmk-mcp/core/pkg/params/handlers"
	"github.com/checkmk-mcp/core/pkg/resilience"
	"github.com/checkmk-mcp/core/pkg/service"
)

// Options configures a server run.
type Options struct {
	// ConfigPath is the YAML configuration file; empty uses defaults plus
	// environment variables.
	ConfigPath string
	// MetricsAddr, when set, serves Prometheus metrics on this address.
	MetricsAddr string
}

// Run builds the application from configuration and serves MCP on stdio
// until the context is cancelled or the client closes the pipe. A closed
// stdio pipe is a normal shutdown, not an error.
func Run(ctx context.Context, fs afero.Fs, opts Options) error {
	log := logging.GetLogger()

	cfg, err := config.Load(fs, opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if err := metrics.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	if opts.MetricsAddr != "" {
		go func() {
			if err := metrics.StartServer(opts.MetricsAddr); err != nil {
				log.Error("Metrics listener failed", "addr", opts.MetricsAddr, "error", err)
			}
		}()
	}

	if cfg.Historical.Source == config.SourceScraper {
		log.Warn("historical.source=scraper is unsupported in this build, using the REST API path")
	}

	services, stop, err := buildServices(cfg)
	if err != nil {
		return err
	}
	defer stop()

	srv := mcpserver.New(services, mcpserver.Options{})

	log.Info("Serving MCP on stdio",
		"site", cfg.Checkmk.Site, "server_url", cfg.Checkmk.ServerURL)

	err = srv.Run(ctx, &mcp.StdioTransport{})
	if err == nil || isExpectedShutdown(err) {
		log.Info("Server stopped")
		return nil
	}
	return err
}

// buildServices wires the shared components and domain facades. The returned
// stop function releases background resources (cache sweeper).
func buildServices(cfg *config.Config) (*service.Services, func(), error) {
	res := resilience.NewManager(cfg.Advanced.Recovery)

	client, err := checkmk.NewClient(cfg.Checkmk, res)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build Checkmk client: %w", err)
	}

	store := cache.New(cfg.Advanced.Cache)
	executor := batch.NewExecutor(cfg.Advanced.Batch)

	registry := handlers.DefaultRegistry()
	engine := params.NewEngine(client, registry, []params.Policy{
		params.TrendingParameterFilter{},
	})

	services := service.New(service.Deps{
		Client:   client,
		Cache:    store,
		Batch:    executor,
		Engine:   engine,
		Registry: registry,
		Config:   cfg,
	})

	return services, store.Stop, nil
}

// isExpectedShutdown reports whether the transport error is ordinary stdio
// teardown: the client closing the pipe mid-session. These exit 0.
func isExpectedShutdown(err error) bool {
	if errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "file already closed")
}

// Healthcheck verifies the configuration can reach the Checkmk site. Used by
// the validate subcommand; bounded to one quick round trip.
func Healthcheck(ctx context.Context, fs afero.Fs, configPath string) (*checkmk.VersionInfo, error) {
	cfg, err := config.Load(fs, configPath)
	if err != nil {
		return nil, err
	}

	client, err := checkmk.NewClient(cfg.Checkmk, resilience.NewManager(cfg.Advanced.Recovery))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return client.Version(ctx)
}
