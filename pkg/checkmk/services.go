// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package checkmk

import (
	"context"
	"encoding/json"
	"fmt"
)

var defaultServiceColumns = []string{
	"host_name", "description", "state", "state_type", "acknowledged",
	"scheduled_downtime_depth", "last_check", "check_command", "plugin_output",
}

// ListServicesQuery filters the all-services listing.
type ListServicesQuery struct {
	// Query is a livestatus query expression, already JSON-shaped.
	Query   map[string]any `json:"query,omitempty"`
	Columns []string       `json:"columns,omitempty"`
	Limit   int            `json:"limit,omitempty"`
	Offset  int            `json:"offset,omitempty"`
}

// ListAllServices lists monitored services across all hosts via POST with a
// JSON query body.
func (c *Client) ListAllServices(ctx context.Context, q ListServicesQuery) ([]Service, error) {
	if len(q.Columns) == 0 {
		q.Columns = defaultServiceColumns
	}

	var coll collection
	_, err := c.do(ctx, &request{
		method:   "POST",
		path:     "/domain-types/service/collections/all",
		body:     q,
		resource: "services",
		family:   "monitoring",
	}, &coll)
	if err != nil {
		return nil, err
	}
	return decodeServices(coll)
}

// AcknowledgeServiceProblem acknowledges a service problem. Acknowledging is
// idempotent at the Checkmk level.
func (c *Client) AcknowledgeServiceProblem(ctx context.Context, hostName, serviceDescription string, opts AcknowledgeOptions) error {
	body := map[string]any{
		"acknowledge_type":    "service",
		"host_name":           hostName,
		"service_description": serviceDescription,
		"comment":             opts.Comment,
		"sticky":              opts.Sticky,
		"persistent":          opts.Persistent,
		"notify":              opts.Notify,
	}
	if opts.ExpireOn != "" {
		body["expire_on"] = opts.ExpireOn
	}

	_, err := c.do(ctx, &request{
		method:   "POST",
		path:     "/domain-types/acknowledge/collections/service",
		body:     body,
		resource: fmt.Sprintf("service %q on host %q", serviceDescription, hostName),
		family:   "monitoring",
	}, nil)
	return err
}

// CreateServiceDowntime schedules a downtime for one service.
func (c *Client) CreateServiceDowntime(ctx context.Context, hostName, serviceDescription string, opts DowntimeOptions) error {
	body := map[string]any{
		"downtime_type":        "service",
		"host_name":            hostName,
		"service_descriptions": []string{serviceDescription},
		"start_time":           opts.StartTime,
		"end_time":             opts.EndTime,
		"comment":              opts.Comment,
	}

	_, err := c.do(ctx, &request{
		method:   "POST",
		path:     "/domain-types/downtime/collections/service",
		body:     body,
		resource: fmt.Sprintf("downtime for %q on host %q", serviceDescription, hostName),
		family:   "monitoring",
	}, nil)
	return err
}

// ServiceDiscovery returns the discovery status of a host, including the
// effective parameters Checkmk computed for each discovered service.
func (c *Client) ServiceDiscovery(ctx context.Context, hostName string) ([]DiscoveredService, error) {
	var obj struct {
		Extensions struct {
			CheckTable map[string]struct {
				Extensions struct {
					ServiceName       string          `json:"service_name"`
					CheckPluginName   string          `json:"check_plugin_name"`
					ServiceParameters json.RawMessage `json:"service_parameters"`
					ServicePhase      string          `json:"service_phase"`
				} `json:"extensions"`
			} `json:"check_table"`
		} `json:"extensions"`
	}

	_, err := c.do(ctx, &request{
		method:   "GET",
		path:     "/objects/service_discovery/" + hostName,
		resource: fmt.Sprintf("service discovery for host %q", hostName),
		family:   "service_discovery",
	}, &obj)
	if err != nil {
		return nil, err
	}

	services := make([]DiscoveredService, 0, len(obj.Extensions.CheckTable))
	for _, entry := range obj.Extensions.CheckTable {
		ext := entry.Extensions
		var params map[string]any
		if len(ext.ServiceParameters) > 0 {
			// Parameters may be any valuespec shape; non-object values are
			// wrapped so callers always see a map.
			if err := json.Unmarshal(ext.ServiceParameters, &params); err != nil {
				var raw any
				if err := json.Unmarshal(ext.ServiceParameters, &raw); err == nil && raw != nil {
					params = map[string]any{"value": raw}
				}
			}
		}
		services = append(services, DiscoveredService{
			ServiceName: ext.ServiceName,
			CheckPlugin: ext.CheckPluginName,
			Parameters:  params,
			Phase:       ext.ServicePhase,
		})
	}
	return services, nil
}

func decodeServices(coll collection) ([]Service, error) {
	services := make([]Service, 0, len(coll.Value))
	for _, obj := range coll.Value {
		var ext serviceExtensions
		if err := json.Unmarshal(obj.Extensions, &ext); err != nil {
			return nil, fmt.Errorf("failed to decode service %q: %w", obj.ID, err)
		}

		// State 0 is a valid OK state; only a missing field maps to UNKNOWN.
		state := StateUnknown
		if ext.State != nil {
			state = ServiceState(*ext.State)
		}

		services = append(services, Service{
			HostName:     ext.HostName,
			Description:  ext.Description,
			State:        state,
			StateName:    state.Name(),
			StateType:    StateTypeName(ext.StateType),
			Acknowledged: ext.Acknowledged != 0,
			InDowntime:   ext.ScheduledDTDepth > 0,
			LastCheck:    ext.LastCheck,
			CheckCommand: ext.CheckCommand,
			PluginOutput: ext.PluginOutput,
		})
	}
	return services, nil
}
