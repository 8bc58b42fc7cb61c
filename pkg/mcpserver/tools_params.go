// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/checkmk-mcp/core/pkg/params"
	"github.com/checkmk-mcp/core/pkg/service"
)

// handlerContextArgs is the deployment-context fragment shared by parameter
// tools; handlers use it to tighten or relax defaults.
type handlerContextArgs struct {
	Environment     string `json:"environment,omitempty" jsonschema:"Deployment environment, e.g. production or development"`
	Criticality     string `json:"criticality,omitempty" jsonschema:"Business criticality: high, medium, or low"`
	HardwareType    string `json:"hardware_type,omitempty" jsonschema:"Hardware class for temperature defaults: cpu, ambient, storage, chassis, psu, nic, gpu"`
	Location        string `json:"location,omitempty" jsonschema:"Physical location hint"`
	IncludeTrending bool   `json:"include_trending,omitempty" jsonschema:"Keep trend and prediction sub-parameters in generated rules"`
}

func (a handlerContextArgs) toContext() params.HandlerContext {
	return params.HandlerContext{
		Environment:     a.Environment,
		Criticality:     a.Criticality,
		HardwareType:    a.HardwareType,
		Location:        a.Location,
		IncludeTrending: a.IncludeTrending,
	}
}

type effectiveParamsArgs struct {
	Host    string `json:"host" jsonschema:"Host name"`
	Service string `json:"service" jsonschema:"Service description"`
}

type setParamsArgs struct {
	Host       string         `json:"host" jsonschema:"Host name the rule applies to"`
	Service    string         `json:"service" jsonschema:"Service description the rule applies to"`
	Parameters map[string]any `json:"parameters" jsonschema:"Parameter values to set"`
	Folder     string         `json:"folder,omitempty" jsonschema:"Target folder; / is auto-replaced by the host's folder"`
	Ruleset    string         `json:"ruleset,omitempty" jsonschema:"Explicit ruleset name; inferred from the service when omitted"`
	Comment    string         `json:"comment,omitempty" jsonschema:"Rule comment"`
	handlerContextArgs
}

type discoverRulesetArgs struct {
	Service string `json:"service" jsonschema:"Service description to resolve"`
}

type parameterSchemaArgs struct {
	Ruleset string `json:"ruleset" jsonschema:"Ruleset name, e.g. checkgroup_parameters:temperature"`
}

type validateParamsArgs struct {
	Service    string         `json:"service" jsonschema:"Service description"`
	Parameters map[string]any `json:"parameters" jsonschema:"Parameter values to validate"`
}

type updateRuleArgs struct {
	RuleID     string         `json:"rule_id" jsonschema:"Rule identifier returned by earlier calls"`
	Parameters map[string]any `json:"parameters" jsonschema:"Values to merge into the rule"`
	handlerContextArgs
}

type handlerInfoArgs struct {
	Service string `json:"service" jsonschema:"Service description"`
}

type specializedDefaultsArgs struct {
	Service string `json:"service" jsonschema:"Service description"`
	handlerContextArgs
}

type validateWithHandlerArgs struct {
	Handler    string         `json:"handler" jsonschema:"Handler name: temperature, database, network_services, or custom_checks"`
	Parameters map[string]any `json:"parameters" jsonschema:"Parameter values to validate"`
}

type suggestionsArgs struct {
	Host       string         `json:"host,omitempty" jsonschema:"Host name; used to look up current values when parameters are omitted"`
	Service    string         `json:"service" jsonschema:"Service description"`
	Parameters map[string]any `json:"parameters,omitempty" jsonschema:"Current values; looked up when omitted and a host is given"`
	handlerContextArgs
}

func registerParameterTools(server *mcp.Server, parameters *service.ParameterService) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_effective_parameters",
		Description: "Return the parameters Checkmk actually uses for a (host, service). Service discovery is authoritative; rule evaluation is the fallback.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args effectiveParamsArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(parameters.EffectiveParameters(ctx, args.Host, args.Service))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_service_parameters",
		Description: "Create a parameter rule for a (host, service). Values are normalized and validated by the matching handler before the rule is written.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args setParamsArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(parameters.SetParameters(ctx, params.WriteRequest{
			Host:       args.Host,
			Service:    args.Service,
			Parameters: args.Parameters,
			Folder:     args.Folder,
			Ruleset:    args.Ruleset,
			Comment:    args.Comment,
			Context:    args.toContext(),
		}))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "discover_service_ruleset",
		Description: "Resolve which ruleset governs a service's parameters, using handler hints, the static table, and ruleset search.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args discoverRulesetArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(parameters.DiscoverRuleset(ctx, args.Service))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_parameter_schema",
		Description: "Fetch a ruleset's valuespec, the schema describing the shape of its rule values.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args parameterSchemaArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(parameters.ParameterSchema(ctx, args.Ruleset))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_service_parameters",
		Description: "Validate parameter values for a service without writing anything. Returns normalized values and structured issues.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args validateParamsArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(parameters.ValidateParameters(ctx, args.Service, args.Parameters))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_parameter_rule",
		Description: "Merge values into an existing rule under optimistic concurrency. A concurrent change is retried once against the fresh version.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args updateRuleArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(parameters.UpdateRule(ctx, args.RuleID, args.Parameters, args.toContext()))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_service_handler_info",
		Description: "Report which specialized handler serves a service and its default ruleset.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args handlerInfoArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(parameters.HandlerInfo(ctx, args.Service))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_specialized_defaults",
		Description: "Return handler-recommended parameter defaults for a service, adjusted for environment, criticality, and hardware type.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args specializedDefaultsArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(parameters.SpecializedDefaults(ctx, args.Service, args.toContext()))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_with_handler",
		Description: "Validate parameter values with a named handler regardless of service matching. Useful to check values before picking a service.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args validateWithHandlerArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(parameters.ValidateWithHandler(ctx, args.Handler, args.Parameters))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_parameter_suggestions",
		Description: "Derive optimization hints from a service's current parameter values, e.g. thresholds too tight to act on.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args suggestionsArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(parameters.Suggestions(ctx, args.Host, args.Service, args.Parameters, args.toContext()))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_parameter_handlers",
		Description: "Enumerate the registered specialized parameter handlers and their priorities.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(parameters.ListHandlers(ctx))
	})
}
