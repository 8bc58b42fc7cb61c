// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package params

import (
	"strings"
)

// Policy filters or rewrites generated parameters. Policies run in order
// after handler normalization and before validation.
type Policy interface {
	Name() string
	Apply(parameters map[string]any, hctx PolicyContext) map[string]any
}

// PolicyContext carries the inputs policies decide on.
type PolicyContext struct {
	HandlerContext
	// Existing holds the current rule value when updating; nil on create.
	Existing map[string]any
}

// ApplyPolicies runs all policies in order over the parameters.
func ApplyPolicies(policies []Policy, parameters map[string]any, hctx PolicyContext) map[string]any {
	out := parameters
	for _, p := range policies {
		out = p.Apply(out, hctx)
	}
	return out
}

// trendingKeyFragments identify trend-related sub-parameters such as
// prediction horizons and rate-of-change windows.
var trendingKeyFragments = []string{
	"trend", "prediction", "predictive", "horizon", "rate_of_change",
}

// TrendingParameterFilter omits trend-related sub-parameters from generated
// rules. Overrides: include_trending in the context re-includes them, and
// keys already present on the rule being updated are preserved.
type TrendingParameterFilter struct{}

// Name returns the policy name.
func (TrendingParameterFilter) Name() string { return "trending_parameter_filter" }

// Apply implements Policy.
func (TrendingParameterFilter) Apply(parameters map[string]any, hctx PolicyContext) map[string]any {
	if hctx.IncludeTrending {
		return parameters
	}

	out := make(map[string]any, len(parameters))
	for k, v := range parameters {
		if isTrendingKey(k) {
			// An existing rule that already carries the key keeps it.
			if hctx.Existing != nil {
				if _, present := hctx.Existing[k]; present {
					out[k] = v
				}
			}
			continue
		}
		out[k] = v
	}
	return out
}

func isTrendingKey(key string) bool {
	lower := strings.ToLower(key)
	for _, fragment := range trendingKeyFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}
