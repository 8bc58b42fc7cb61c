// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package checkmk

import "encoding/json"

// domainObject is the envelope Checkmk wraps around every REST object.
type domainObject struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Extensions json.RawMessage `json:"extensions"`
}

// collection is the envelope for REST collections.
type collection struct {
	Value []domainObject `json:"value"`
}

// Host is a configured Checkmk host.
type Host struct {
	Name                string         `json:"name"`
	Folder              string         `json:"folder"`
	Attributes          map[string]any `json:"attributes"`
	EffectiveAttributes map[string]any `json:"effective_attributes,omitempty"`
}

// hostExtensions mirrors the extensions block of a host_config object.
type hostExtensions struct {
	Folder              string         `json:"folder"`
	Attributes          map[string]any `json:"attributes"`
	EffectiveAttributes map[string]any `json:"effective_attributes"`
}

// ServiceState is the numeric monitoring state of a service.
type ServiceState int

// Checkmk service states. Zero is OK, not "unset": state extraction must not
// rely on truthiness.
const (
	StateOK      ServiceState = 0
	StateWarn    ServiceState = 1
	StateCrit    ServiceState = 2
	StateUnknown ServiceState = 3
)

// Name returns the symbolic state name.
func (s ServiceState) Name() string {
	switch s {
	case StateOK:
		return "OK"
	case StateWarn:
		return "WARN"
	case StateCrit:
		return "CRIT"
	case StateUnknown:
		return "UNKNOWN"
	default:
		return "UNKNOWN"
	}
}

// StateTypeName maps Checkmk's numeric state_type to its symbolic form:
// 0 is soft, 1 is hard.
func StateTypeName(stateType int) string {
	if stateType == 1 {
		return "hard"
	}
	return "soft"
}

// Service is one monitored service on a host.
type Service struct {
	HostName     string       `json:"host_name"`
	Description  string       `json:"description"`
	State        ServiceState `json:"state"`
	StateName    string       `json:"state_name"`
	StateType    string       `json:"state_type"`
	Acknowledged bool         `json:"acknowledged"`
	InDowntime   bool         `json:"in_downtime"`
	LastCheck    int64        `json:"last_check"`
	CheckCommand string       `json:"check_command,omitempty"`
	PluginOutput string       `json:"plugin_output,omitempty"`
}

// serviceExtensions mirrors the extensions block of a monitored service.
type serviceExtensions struct {
	HostName         string `json:"host_name"`
	Description      string `json:"description"`
	State            *int   `json:"state"`
	StateType        int    `json:"state_type"`
	Acknowledged     int    `json:"acknowledged"`
	ScheduledDTDepth int    `json:"scheduled_downtime_depth"`
	LastCheck        int64  `json:"last_check"`
	CheckCommand     string `json:"check_command"`
	PluginOutput     string `json:"plugin_output"`
}

// Rule is one rule of a ruleset.
type Rule struct {
	ID         string         `json:"id"`
	Ruleset    string         `json:"ruleset"`
	Folder     string         `json:"folder"`
	Value      map[string]any `json:"value"`
	ValueRaw   string         `json:"value_raw,omitempty"`
	Conditions RuleConditions `json:"conditions"`
	Disabled   bool           `json:"disabled"`
	Etag       string         `json:"-"`
}

// RuleConditions scopes a rule to hosts and services.
type RuleConditions struct {
	HostName           *RuleCondition `json:"host_name,omitempty"`
	ServiceDescription *RuleCondition `json:"service_description,omitempty"`
}

// RuleCondition is a single match expression.
type RuleCondition struct {
	Match string   `json:"match_on,omitempty"`
	Op    string   `json:"operator,omitempty"`
	Value []string `json:"match_values,omitempty"`
}

// ruleExtensions mirrors the extensions block of a rule object.
type ruleExtensions struct {
	Ruleset    string `json:"ruleset"`
	Folder     string `json:"folder"`
	Properties struct {
		Disabled bool `json:"disabled"`
	} `json:"properties"`
	ValueRaw   string          `json:"value_raw"`
	Conditions json.RawMessage `json:"conditions"`
}

// RulesetInfo describes a ruleset, including its value schema.
type RulesetInfo struct {
	Name      string         `json:"name"`
	Title     string         `json:"title"`
	Valuespec map[string]any `json:"valuespec,omitempty"`
}

// DiscoveredService is one service as reported by service discovery, which
// includes the effective parameters Checkmk computed for it.
type DiscoveredService struct {
	ServiceName string         `json:"service_name"`
	CheckPlugin string         `json:"check_plugin_name"`
	Parameters  map[string]any `json:"service_parameters"`
	Phase       string         `json:"phase"`
}

// Event is one event-console event.
type Event struct {
	ID          string `json:"id"`
	HostName    string `json:"host_name"`
	ServiceName string `json:"service_name,omitempty"`
	State       int    `json:"state"`
	Phase       string `json:"phase"`
	Text        string `json:"text"`
	FirstTime   string `json:"first_time,omitempty"`
	LastTime    string `json:"last_time,omitempty"`
	Count       int    `json:"count,omitempty"`
}

// MetricSeries is one time series from the metric endpoint.
type MetricSeries struct {
	Title      string    `json:"title"`
	Color      string    `json:"color"`
	LineType   string    `json:"line_type"`
	DataPoints []float64 `json:"data_points"`
}

// MetricResult is the reply of a graph or single-metric request.
type MetricResult struct {
	TimeRange struct {
		Start int64 `json:"start"`
		End   int64 `json:"end"`
	} `json:"time_range"`
	Step    int64          `json:"step"`
	Metrics []MetricSeries `json:"metrics"`
}

// BIAggregation is the computed state of one BI aggregation.
type BIAggregation struct {
	Name         string `json:"name"`
	State        int    `json:"state"`
	Acknowledged bool   `json:"acknowledged"`
	InDowntime   bool   `json:"in_downtime"`
}

// VersionInfo is the reply of the version endpoint.
type VersionInfo struct {
	Site     string `json:"site"`
	Edition  string `json:"edition"`
	Versions struct {
		Checkmk string `json:"checkmk"`
	} `json:"versions"`
}

// AcknowledgeOptions configures a problem acknowledgment.
type AcknowledgeOptions struct {
	Comment    string `json:"comment"`
	Sticky     bool   `json:"sticky"`
	Persistent bool   `json:"persistent"`
	Notify     bool   `json:"notify"`
	// ExpireOn is an RFC 3339 timestamp; empty means no expiry. Requires
	// Checkmk >= 2.4.
	ExpireOn string `json:"expire_on,omitempty"`
}

// DowntimeOptions configures a scheduled downtime.
type DowntimeOptions struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Comment   string `json:"comment"`
}
