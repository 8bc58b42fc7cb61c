// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"

	"github.com/checkmk-mcp/core/pkg/cache"
	"github.com/checkmk-mcp/core/pkg/checkmk"
	"github.com/checkmk-mcp/core/pkg/params"
)

// ParameterService backs the parameter tools on top of the engine and the
// handler registry.
type ParameterService struct {
	client   *checkmk.Client
	engine   *params.Engine
	registry *params.Registry
	cache    *cache.Cache
}

// EffectiveParameters returns the parameters Checkmk uses for one service.
func (s *ParameterService) EffectiveParameters(ctx context.Context, host, service string) *Result {
	eff, err := s.engine.GetEffectiveParameters(ctx, host, service)
	if err != nil {
		return Fail(ctx, err)
	}
	warnings := eff.Warnings
	eff.Warnings = nil
	return OK(ctx, eff, warnings...)
}

// SetParameters creates a parameter rule and invalidates rule caches.
func (s *ParameterService) SetParameters(ctx context.Context, req params.WriteRequest) *Result {
	result, err := s.engine.SetServiceParameters(ctx, req)
	if err != nil {
		return Fail(ctx, err)
	}
	s.cache.InvalidatePattern("rules:*")
	warnings := result.Warnings
	result.Warnings = nil
	return OK(ctx, result, warnings...)
}

// DiscoverRuleset resolves the ruleset governing a service.
func (s *ParameterService) DiscoverRuleset(ctx context.Context, service string) *Result {
	ruleset, err := s.engine.ResolveRuleset(ctx, service, "")
	if err != nil {
		return Fail(ctx, err)
	}
	if ruleset == "" {
		return Fail(ctx, &checkmk.NotFoundError{
			Resource: "ruleset",
			Message:  fmt.Sprintf("no ruleset found for service %q", service),
		})
	}
	return OK(ctx, map[string]any{
		"service": service,
		"ruleset": ruleset,
	})
}

// ParameterSchema returns the valuespec of a ruleset.
func (s *ParameterService) ParameterSchema(ctx context.Context, ruleset string) *Result {
	key := "rules:schema:" + ruleset
	info, err := s.cache.GetOrFetch(ctx, key, 0, func(ctx context.Context) (any, error) {
		return s.client.GetRulesetInfo(ctx, ruleset)
	})
	if err != nil {
		return Fail(ctx, err)
	}
	return OK(ctx, info)
}

// ValidateParameters validates values against the handler for a service and
// returns the structured issues without writing anything.
func (s *ParameterService) ValidateParameters(ctx context.Context, service string, values map[string]any) *Result {
	reg, ok := s.registry.Resolve(service, "")
	if !ok {
		return OK(ctx, map[string]any{
			"valid":  true,
			"issues": []params.Issue{},
		}, "no specialized handler matches this service; values passed through unvalidated")
	}

	normalized := reg.Handler.Normalize(values, params.HandlerContext{})
	issues := reg.Handler.Validate(normalized)
	valid := true
	for _, issue := range issues {
		if issue.Severity == params.SeverityError {
			valid = false
			break
		}
	}
	return OK(ctx, map[string]any{
		"valid":      valid,
		"handler":    reg.Handler.Name(),
		"normalized": normalized,
		"issues":     issues,
	})
}

// UpdateRule merges values into an existing rule under etag concurrency.
func (s *ParameterService) UpdateRule(ctx context.Context, ruleID string, values map[string]any, hctx params.HandlerContext) *Result {
	rule, err := s.engine.UpdateRule(ctx, ruleID, values, hctx)
	if err != nil {
		return Fail(ctx, err)
	}
	s.cache.InvalidatePattern("rules:*")
	return OK(ctx, rule)
}

// HandlerInfo describes which handler serves a service and why.
func (s *ParameterService) HandlerInfo(ctx context.Context, service string) *Result {
	reg, ok := s.registry.Resolve(service, "")
	if !ok {
		return OK(ctx, map[string]any{
			"service": service,
			"handler": nil,
			"message": "no specialized handler matches this service",
		})
	}
	return OK(ctx, map[string]any{
		"service":         service,
		"handler":         reg.Handler.Name(),
		"default_ruleset": reg.Handler.DefaultRuleset(service),
		"priority":        reg.Priority,
	})
}

// SpecializedDefaults returns the handler-recommended parameters for a
// service under the given context.
func (s *ParameterService) SpecializedDefaults(ctx context.Context, service string, hctx params.HandlerContext) *Result {
	reg, ok := s.registry.Resolve(service, "")
	if !ok {
		return Fail(ctx, &checkmk.NotFoundError{
			Resource: "handler",
			Message:  fmt.Sprintf("no specialized handler matches service %q", service),
		})
	}
	return OK(ctx, map[string]any{
		"service":  service,
		"handler":  reg.Handler.Name(),
		"defaults": reg.Handler.Defaults(service, hctx),
	})
}

// ValidateWithHandler validates values with a named handler regardless of
// service matching.
func (s *ParameterService) ValidateWithHandler(ctx context.Context, handlerName string, values map[string]any) *Result {
	for _, reg := range s.registry.List() {
		if reg.Handler.Name() != handlerName {
			continue
		}
		normalized := reg.Handler.Normalize(values, params.HandlerContext{})
		issues := reg.Handler.Validate(normalized)
		return OK(ctx, map[string]any{
			"handler":    handlerName,
			"normalized": normalized,
			"issues":     issues,
		})
	}
	return Fail(ctx, &checkmk.NotFoundError{
		Resource: "handler",
		Message:  fmt.Sprintf("no handler named %q", handlerName),
	})
}

// Suggestions returns optimization hints for a service's current values.
// When current is nil and a host is given, the effective parameters are
// looked up first.
func (s *ParameterService) Suggestions(ctx context.Context, host, service string, current map[string]any, hctx params.HandlerContext) *Result {
	reg, ok := s.registry.Resolve(service, "")
	if !ok {
		return OK(ctx, map[string]any{
			"service":     service,
			"suggestions": []params.Suggestion{},
		}, "no specialized handler matches this service")
	}
	if current == nil && host != "" {
		if eff, err := s.engine.GetEffectiveParameters(ctx, host, service); err == nil {
			current = eff.Parameters
		}
	}
	return OK(ctx, map[string]any{
		"service":     service,
		"handler":     reg.Handler.Name(),
		"suggestions": reg.Handler.Suggest(current, hctx),
	})
}

// ListHandlers enumerates the registered handlers.
func (s *ParameterService) ListHandlers(ctx context.Context) *Result {
	registrations := s.registry.List()
	handlers := make([]map[string]any, 0, len(registrations))
	for _, reg := range registrations {
		handlers = append(handlers, map[string]any{
			"name":     reg.Handler.Name(),
			"priority": reg.Priority,
		})
	}
	return OK(ctx, map[string]any{
		"handlers": handlers,
		"count":    len(handlers),
	})
}
