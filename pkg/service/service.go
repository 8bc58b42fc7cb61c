// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"github.com/checkmk-mcp/core/pkg/batch"
	"github.com/checkmk-mcp/core/pkg/cache"
	"github.com/checkmk-mcp/core/pkg/checkmk"
	"github.com/checkmk-mcp/core/pkg/config"
	"github.com/checkmk-mcp/core/pkg/params"
)

// Services bundles all domain facades over one shared client, cache, and
// batch executor. Construct once at startup and pass to the tool layer.
type Services struct {
	Host      *HostService
	Service   *ServiceService
	Status    *StatusService
	Event     *EventService
	Metric    *MetricService
	BI        *BIService
	Parameter *ParameterService
	Server    *ServerService
}

// Deps are the shared components the facades are built from.
type Deps struct {
	Client   *checkmk.Client
	Cache    *cache.Cache
	Batch    *batch.Executor
	Engine   *params.Engine
	Registry *params.Registry
	Config   *config.Config
}

// New wires the domain facades.
func New(d Deps) *Services {
	features := config.FeaturesConfig{}
	if d.Config != nil {
		features = d.Config.Features
	}

	streamBatchSize := config.Default().Advanced.Streaming.DefaultBatchSize
	if d.Config != nil && d.Config.Advanced.Streaming.DefaultBatchSize > 0 {
		streamBatchSize = d.Config.Advanced.Streaming.DefaultBatchSize
	}

	host := &HostService{
		client:    d.Client,
		cache:     d.Cache,
		batch:     d.Batch,
		batchSize: streamBatchSize,
	}
	svc := &ServiceService{client: d.Client, cache: d.Cache}
	status := &StatusService{client: d.Client, cache: d.Cache}

	return &Services{
		Host:      host,
		Service:   svc,
		Status:    status,
		Event:     &EventService{client: d.Client, enabled: features.EventConsoleEnabled()},
		Metric:    &MetricService{client: d.Client, cache: d.Cache, enabled: features.MetricsAPIEnabled()},
		BI:        &BIService{client: d.Client, enabled: features.BusinessIntelligenceEnabled()},
		Parameter: &ParameterService{client: d.Client, engine: d.Engine, registry: d.Registry, cache: d.Cache},
		Server:    &ServerService{client: d.Client, cache: d.Cache, host: host},
	}
}
