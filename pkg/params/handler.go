// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

// Package params computes and writes effective service parameters. It
// resolves rulesets, evaluates folder precedence, and delegates value
// normalization and validation to specialized handlers registered for
// service families (temperature, database, network, custom checks).
package params

import (
	"regexp"
)

// Severity grades a validation issue.
type Severity string

// Issue severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one structured validation finding.
type Issue struct {
	Severity     Severity `json:"severity"`
	Path         string   `json:"path"`
	Message      string   `json:"message"`
	SuggestedFix string   `json:"suggested_fix,omitempty"`
}

// Suggestion is one optimization hint a handler derives from current values.
type Suggestion struct {
	Parameter string `json:"parameter"`
	Current   any    `json:"current,omitempty"`
	Suggested any    `json:"suggested,omitempty"`
	Reason    string `json:"reason"`
}

// HandlerContext carries deployment hints that let handlers tighten or relax
// their defaults.
type HandlerContext struct {
	// Environment is e.g. "production" or "development".
	Environment string `json:"environment,omitempty"`
	// Criticality is e.g. "high", "medium", "low".
	Criticality string `json:"criticality,omitempty"`
	// HardwareType selects a temperature profile: cpu, ambient, storage,
	// chassis, psu, nic, gpu.
	HardwareType string `json:"hardware_type,omitempty"`
	Location     string `json:"location,omitempty"`
	// IncludeTrending re-includes trend sub-parameters that the trending
	// filter policy would otherwise drop.
	IncludeTrending bool `json:"include_trending,omitempty"`
}

// Handler owns defaults, normalization, validation, and suggestions for one
// family of service types.
type Handler interface {
	// Name returns the handler's human name, e.g. "temperature".
	Name() string
	// DefaultRuleset returns the ruleset this handler writes to for the
	// given service, or empty when it has no static hint.
	DefaultRuleset(service string) string
	// Defaults produces recommended parameters for the service.
	Defaults(service string, hctx HandlerContext) map[string]any
	// Normalize canonicalizes caller-supplied values (unit conversion,
	// int-to-float coercion). It must not mutate its input.
	Normalize(parameters map[string]any, hctx HandlerContext) map[string]any
	// Validate checks parameters and returns structured issues. An empty
	// slice means the parameters are acceptable.
	Validate(parameters map[string]any) []Issue
	// Suggest derives optimization hints from current parameters.
	Suggest(current map[string]any, hctx HandlerContext) []Suggestion
}

// Registration binds a handler to the service-name and ruleset patterns it
// matches, with a priority for tie-breaking.
type Registration struct {
	Handler         Handler
	ServicePatterns []*regexp.Regexp
	RulesetPatterns []*regexp.Regexp
	// Priority orders competing matches; higher wins.
	Priority int
}

// MatchesService reports whether any service pattern matches.
func (r *Registration) MatchesService(service string) bool {
	for _, re := range r.ServicePatterns {
		if re.MatchString(service) {
			return true
		}
	}
	return false
}

// MatchesRuleset reports whether any ruleset pattern matches.
func (r *Registration) MatchesRuleset(ruleset string) bool {
	for _, re := range r.RulesetPatterns {
		if re.MatchString(ruleset) {
			return true
		}
	}
	return false
}

// MustPatterns compiles a list of regular expressions, panicking on invalid
// input. Built-in handler patterns are compile-time constants.
func MustPatterns(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}
