// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrendingParameterFilterDropsTrendKeys(t *testing.T) {
	in := map[string]any{
		"levels":            []any{80.0, 90.0},
		"trend_levels":      []any{5.0, 10.0},
		"prediction_period": 86400,
		"rate_of_change":    0.5,
	}

	out := TrendingParameterFilter{}.Apply(in, PolicyContext{})
	assert.Equal(t, map[string]any{"levels": []any{80.0, 90.0}}, out)
	assert.Contains(t, in, "trend_levels", "input must not be mutated")
}

func TestTrendingParameterFilterIncludeTrendingOverride(t *testing.T) {
	in := map[string]any{
		"levels":       []any{80.0, 90.0},
		"trend_levels": []any{5.0, 10.0},
	}

	out := TrendingParameterFilter{}.Apply(in, PolicyContext{
		HandlerContext: HandlerContext{IncludeTrending: true},
	})
	assert.Equal(t, in, out)
}

func TestTrendingParameterFilterKeepsExistingKeys(t *testing.T) {
	in := map[string]any{
		"levels":       []any{80.0, 90.0},
		"trend_levels": []any{5.0, 10.0},
		"horizon":      90,
	}

	out := TrendingParameterFilter{}.Apply(in, PolicyContext{
		Existing: map[string]any{"trend_levels": []any{3.0, 6.0}},
	})
	assert.Equal(t, []any{5.0, 10.0}, out["trend_levels"],
		"a key already on the rule survives the filter")
	assert.NotContains(t, out, "horizon")
}

func TestApplyPoliciesRunsInOrder(t *testing.T) {
	out := ApplyPolicies([]Policy{TrendingParameterFilter{}}, map[string]any{
		"levels":     []any{80.0, 90.0},
		"prediction": true,
	}, PolicyContext{})
	assert.Equal(t, map[string]any{"levels": []any{80.0, 90.0}}, out)
}

func TestStaticRulesetFor(t *testing.T) {
	tests := []struct {
		service string
		want    string
	}{
		{"Temperature Zone 0", "checkgroup_parameters:temperature"},
		{"CPU utilization", "checkgroup_parameters:cpu_utilization_linux"},
		{"Memory", "checkgroup_parameters:memory_linux"},
		{"Oracle Tablespace USERS", "checkgroup_parameters:oracle_tablespaces"},
		{"HTTP www.example.com", "checkgroup_parameters:http"},
		{"Some exotic check", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StaticRulesetFor(tt.service), "service %q", tt.service)
	}
}

func TestDiscoveryTermFor(t *testing.T) {
	assert.Equal(t, "temperature", DiscoveryTermFor("Temperature Zone 0"))
	assert.Equal(t, "filesystem", DiscoveryTermFor("Filesystem /var"))
	assert.Equal(t, "", DiscoveryTermFor(""))
}
