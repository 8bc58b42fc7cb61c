// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"

	"github.com/checkmk-mcp/core/pkg/cache"
	"github.com/checkmk-mcp/core/pkg/checkmk"
)

// ServiceService backs the monitored-service tools.
type ServiceService struct {
	client *checkmk.Client
	cache  *cache.Cache
}

// ListAll lists monitored services across all hosts, optionally filtered to
// problem states.
func (s *ServiceService) ListAll(ctx context.Context, q checkmk.ListServicesQuery) *Result {
	services, err := s.client.ListAllServices(ctx, q)
	if err != nil {
		return Fail(ctx, err)
	}
	return OK(ctx, map[string]any{
		"services": services,
		"count":    len(services),
	})
}

// Acknowledge acknowledges a service problem.
func (s *ServiceService) Acknowledge(ctx context.Context, hostName, serviceDescription string, opts checkmk.AcknowledgeOptions) *Result {
	if opts.Comment == "" {
		return Fail(ctx, &checkmk.ValidationError{Message: "comment is required for acknowledgements"})
	}
	if err := s.client.AcknowledgeServiceProblem(ctx, hostName, serviceDescription, opts); err != nil {
		return Fail(ctx, err)
	}
	return OK(ctx, map[string]any{
		"acknowledged": true,
		"host":         hostName,
		"service":      serviceDescription,
	})
}

// CreateDowntime schedules a downtime for one service.
func (s *ServiceService) CreateDowntime(ctx context.Context, hostName, serviceDescription string, opts checkmk.DowntimeOptions) *Result {
	if opts.StartTime == "" || opts.EndTime == "" {
		return Fail(ctx, &checkmk.ValidationError{Message: "start_time and end_time are required"})
	}
	if err := s.client.CreateServiceDowntime(ctx, hostName, serviceDescription, opts); err != nil {
		return Fail(ctx, err)
	}
	return OK(ctx, map[string]any{
		"downtime_created": true,
		"host":             hostName,
		"service":          serviceDescription,
		"start_time":       opts.StartTime,
		"end_time":         opts.EndTime,
	})
}

// problemQuery builds a livestatus expression selecting non-OK services.
func problemQuery() map[string]any {
	return map[string]any{
		"op":    "!=",
		"left":  "state",
		"right": fmt.Sprintf("%d", checkmk.StateOK),
	}
}
