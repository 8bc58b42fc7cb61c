// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package params

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/checkmk-mcp/core/pkg/checkmk"
	"github.com/checkmk-mcp/core/pkg/logging"
	"github.com/checkmk-mcp/core/pkg/metrics"
)

// Source labels where effective parameters came from.
type Source string

// Effective-parameter sources.
const (
	SourceServiceDiscovery Source = "service_discovery"
	SourceRuleEval         Source = "rule_eval"
	SourceNotFound         Source = "not_found"
)

// EffectiveParameters is the result of a parameter lookup.
type EffectiveParameters struct {
	Host        string         `json:"host"`
	Service     string         `json:"service"`
	Parameters  map[string]any `json:"parameters"`
	Source      Source         `json:"source"`
	CheckPlugin string         `json:"check_plugin,omitempty"`
	Ruleset     string         `json:"ruleset,omitempty"`
	RuleCount   int            `json:"rule_count"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// API is the slice of the Checkmk client the engine depends on.
type API interface {
	ServiceDiscovery(ctx context.Context, hostName string) ([]checkmk.DiscoveredService, error)
	GetHost(ctx context.Context, name string, effectiveAttributes bool) (*checkmk.Host, error)
	ListRules(ctx context.Context, rulesetName string) ([]checkmk.Rule, error)
	GetRule(ctx context.Context, ruleID string) (*checkmk.Rule, error)
	CreateRule(ctx context.Context, req checkmk.CreateRuleRequest) (*checkmk.Rule, error)
	UpdateRule(ctx context.Context, ruleID, etag string, value map[string]any, ruleset string) (*checkmk.Rule, error)
	SearchRulesets(ctx context.Context, term string) ([]checkmk.RulesetInfo, error)
	GetRulesetInfo(ctx context.Context, name string) (*checkmk.RulesetInfo, error)
}

// Engine resolves and writes service parameters.
type Engine struct {
	api      API
	registry *Registry
	policies []Policy
}

// NewEngine creates an Engine with the given handler registry and policies.
func NewEngine(api API, registry *Registry, policies []Policy) *Engine {
	return &Engine{
		api:      api,
		registry: registry,
		policies: policies,
	}
}

// Registry exposes the handler registry for tools that introspect handlers.
func (e *Engine) Registry() *Registry { return e.registry }

// GetEffectiveParameters returns the parameters Checkmk uses for the given
// host and service. Service discovery is authoritative; rule evaluation is
// the fallback when discovery is unavailable or does not know the service.
func (e *Engine) GetEffectiveParameters(ctx context.Context, host, service string) (*EffectiveParameters, error) {
	log := logging.GetLogger().With("host", host, "service", service)

	discovered, err := e.api.ServiceDiscovery(ctx, host)
	if err == nil {
		for _, d := range discovered {
			if strings.EqualFold(d.ServiceName, service) {
				metrics.IncrCounter([]string{"params", "effective", "discovery"}, 1)
				return &EffectiveParameters{
					Host:        host,
					Service:     service,
					Parameters:  d.Parameters,
					Source:      SourceServiceDiscovery,
					CheckPlugin: d.CheckPlugin,
				}, nil
			}
		}
		log.DebugContext(ctx, "Service not present in discovery output, falling back to rule evaluation")
	} else {
		var notFound *checkmk.NotFoundError
		if !errors.As(err, &notFound) {
			log.WarnContext(ctx, "Service discovery unavailable, falling back to rule evaluation", "error", err)
		}
	}

	return e.evaluateRules(ctx, host, service)
}

// evaluateRules computes effective parameters from the matching ruleset's
// rules using folder precedence. Operators relying on this path as a source
// of truth get a warning in the result.
func (e *Engine) evaluateRules(ctx context.Context, host, service string) (*EffectiveParameters, error) {
	ruleset, err := e.ResolveRuleset(ctx, service, "")
	if err != nil {
		return nil, err
	}

	result := &EffectiveParameters{
		Host:    host,
		Service: service,
		Ruleset: ruleset,
		Source:  SourceNotFound,
		Warnings: []string{
			"parameters derived by rule evaluation, not by Checkmk service discovery",
		},
	}

	if ruleset == "" {
		result.Warnings = append(result.Warnings, fmt.Sprintf("no ruleset found for service %q", service))
		e.fillHandlerDefaults(result, service)
		return result, nil
	}

	rules, err := e.api.ListRules(ctx, ruleset)
	if err != nil {
		return nil, err
	}

	hostFolder := "/"
	if h, err := e.api.GetHost(ctx, host, false); err == nil {
		hostFolder = h.Folder
	}

	matching := lo.Filter(rules, func(rule checkmk.Rule, _ int) bool {
		return !rule.Disabled && ruleMatches(rule, host, service)
	})
	matching = SortRulesByFolderPrecedence(matching, hostFolder)

	if len(matching) == 0 {
		metrics.IncrCounter([]string{"params", "effective", "not_found"}, 1)
		e.fillHandlerDefaults(result, service)
		return result, nil
	}

	metrics.IncrCounter([]string{"params", "effective", "rule_eval"}, 1)
	result.Source = SourceRuleEval
	result.RuleCount = len(matching)
	result.Parameters = matching[0].Value
	return result, nil
}

func (e *Engine) fillHandlerDefaults(result *EffectiveParameters, service string) {
	if reg, ok := e.registry.Resolve(service, result.Ruleset); ok {
		defaults := reg.Handler.Defaults(service, HandlerContext{})
		if len(defaults) > 0 {
			result.Parameters = defaults
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("showing %s handler defaults, no rule matched", reg.Handler.Name()))
		}
	}
}

// ResolveRuleset determines the ruleset for a service. Resolution order:
// explicit caller choice, handler hint, static table, dynamic discovery.
func (e *Engine) ResolveRuleset(ctx context.Context, service, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if reg, ok := e.registry.Resolve(service, ""); ok {
		if ruleset := reg.Handler.DefaultRuleset(service); ruleset != "" {
			return ruleset, nil
		}
	}

	if ruleset := StaticRulesetFor(service); ruleset != "" {
		return ruleset, nil
	}

	infos, err := e.api.SearchRulesets(ctx, DiscoveryTermFor(service))
	if err != nil {
		var notFound *checkmk.NotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", err
	}

	for _, info := range infos {
		if strings.HasPrefix(info.Name, "checkgroup_parameters:") {
			return info.Name, nil
		}
	}
	if len(infos) > 0 {
		return infos[0].Name, nil
	}
	return "", nil
}

// WriteRequest describes a rule create on the write path.
type WriteRequest struct {
	Host       string
	Service    string
	Parameters map[string]any
	// Folder is the caller's target folder; root plus a known host
	// auto-substitutes the host's own folder.
	Folder  string
	Ruleset string
	Comment string
	Context HandlerContext
}

// WriteResult reports the created rule and any non-fatal findings.
type WriteResult struct {
	RuleID   string         `json:"rule_id"`
	Ruleset  string         `json:"ruleset"`
	Folder   string         `json:"folder"`
	Value    map[string]any `json:"value"`
	Warnings []string       `json:"warnings,omitempty"`
}

// SetServiceParameters creates a parameter rule for (host, service). Values
// pass through handler normalization, the policy chain, and handler
// validation; error-severity issues abort the write.
func (e *Engine) SetServiceParameters(ctx context.Context, req WriteRequest) (*WriteResult, error) {
	ruleset, err := e.ResolveRuleset(ctx, req.Service, req.Ruleset)
	if err != nil {
		return nil, err
	}
	if ruleset == "" {
		return nil, &checkmk.ValidationError{
			Message: fmt.Sprintf("could not determine ruleset for service %q; pass one explicitly", req.Service),
		}
	}

	folder := normalizeFolder(req.Folder)
	var warnings []string
	if folder == "/" && req.Host != "" {
		// Root placement would make the rule lose to any folder-level rule;
		// substituting the host's folder gives it host-level precedence.
		host, err := e.api.GetHost(ctx, req.Host, false)
		if err != nil {
			return nil, err
		}
		if host.Folder != "/" {
			folder = host.Folder
			warnings = append(warnings, fmt.Sprintf("folder / replaced by host folder %s", folder))
		}
	}

	value := req.Parameters
	reg, handled := e.registry.Resolve(req.Service, ruleset)
	if handled {
		value = reg.Handler.Normalize(value, req.Context)
		defer func() {
			metrics.IncrCounter([]string{"params", "write", reg.Handler.Name()}, 1)
		}()
	}

	// Policies run before validation so the handler judges the value that
	// will actually be written.
	value = ApplyPolicies(e.policies, value, PolicyContext{HandlerContext: req.Context})

	var issues []Issue
	if handled {
		issues = reg.Handler.Validate(value)
	}

	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return nil, &checkmk.ValidationError{
				Message: fmt.Sprintf("%s: %s", issue.Path, issue.Message),
			}
		}
		warnings = append(warnings, fmt.Sprintf("%s: %s", issue.Path, issue.Message))
	}

	rule, err := e.api.CreateRule(ctx, checkmk.CreateRuleRequest{
		Ruleset: ruleset,
		Folder:  folder,
		Value:   value,
		Conditions: checkmk.RuleConditions{
			HostName: &checkmk.RuleCondition{
				Op:    "one_of",
				Value: []string{req.Host},
			},
			ServiceDescription: &checkmk.RuleCondition{
				Op:    "one_of",
				Value: []string{regexp.QuoteMeta(req.Service) + "$"},
			},
		},
		Comment: req.Comment,
	})
	if err != nil {
		return nil, err
	}

	return &WriteResult{
		RuleID:   rule.ID,
		Ruleset:  ruleset,
		Folder:   folder,
		Value:    rule.Value,
		Warnings: warnings,
	}, nil
}

// UpdateRule merges new values into an existing rule under etag optimistic
// concurrency. A stale etag is refreshed and retried once before the
// conflict is surfaced.
func (e *Engine) UpdateRule(ctx context.Context, ruleID string, newValues map[string]any, hctx HandlerContext) (*checkmk.Rule, error) {
	const conflictRetries = 1

	var lastErr error
	for attempt := 0; attempt <= conflictRetries; attempt++ {
		current, err := e.api.GetRule(ctx, ruleID)
		if err != nil {
			return nil, err
		}

		merged := make(map[string]any, len(current.Value)+len(newValues))
		for k, v := range current.Value {
			merged[k] = v
		}
		for k, v := range newValues {
			merged[k] = v
		}

		if reg, ok := e.registry.Resolve("", current.Ruleset); ok {
			merged = reg.Handler.Normalize(merged, hctx)
		}
		merged = ApplyPolicies(e.policies, merged, PolicyContext{
			HandlerContext: hctx,
			Existing:       current.Value,
		})

		updated, err := e.api.UpdateRule(ctx, ruleID, current.Etag, merged, current.Ruleset)
		if err == nil {
			return updated, nil
		}

		var conflict *checkmk.ConflictError
		if !errors.As(err, &conflict) {
			return nil, err
		}
		lastErr = err
		logging.GetLogger().WarnContext(ctx, "Etag conflict on rule update, refetching", "ruleID", ruleID, "attempt", attempt)
	}
	return nil, lastErr
}

// ruleMatches evaluates a rule's conditions against a host and service.
// Host conditions compare literally; service conditions are Checkmk-style
// prefix regexes.
func ruleMatches(rule checkmk.Rule, host, service string) bool {
	if !conditionMatches(rule.Conditions.HostName, host, false) {
		return false
	}
	return conditionMatches(rule.Conditions.ServiceDescription, service, true)
}

func conditionMatches(cond *checkmk.RuleCondition, value string, asRegex bool) bool {
	if cond == nil || len(cond.Value) == 0 {
		// No condition means the rule applies to everything.
		return true
	}

	matched := false
	for _, candidate := range cond.Value {
		if asRegex {
			if re, err := regexp.Compile("^" + candidate); err == nil && re.MatchString(value) {
				matched = true
				break
			}
		}
		if candidate == value {
			matched = true
			break
		}
	}

	switch cond.Op {
	case "none_of", "is_not":
		return !matched
	default:
		return matched
	}
}
