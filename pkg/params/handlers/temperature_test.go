// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkmk-mcp/core/pkg/params"
)

func TestTemperatureDefaultsByHardwareType(t *testing.T) {
	h := TemperatureHandler{}

	cpu := h.Defaults("Temperature Zone 0", params.HandlerContext{HardwareType: "cpu"})
	assert.Equal(t, []any{80.0, 90.0}, cpu["levels"])

	ambient := h.Defaults("Temperature Zone 0", params.HandlerContext{})
	assert.Equal(t, []any{35.0, 40.0}, ambient["levels"])
	assert.Equal(t, []any{5.0, 0.0}, ambient["levels_lower"])
	assert.Equal(t, "c", ambient["output_unit"])
}

func TestTemperatureDefaultsInferredFromServiceName(t *testing.T) {
	h := TemperatureHandler{}
	got := h.Defaults("CPU Temperature", params.HandlerContext{})
	assert.Equal(t, []any{80.0, 90.0}, got["levels"])
}

func TestTemperatureDefaultsProductionTightening(t *testing.T) {
	h := TemperatureHandler{}
	got := h.Defaults("Temperature", params.HandlerContext{
		HardwareType: "cpu",
		Environment:  "production",
	})
	assert.Equal(t, []any{75.0, 85.0}, got["levels"])
}

func TestTemperatureNormalizeFahrenheit(t *testing.T) {
	h := TemperatureHandler{}
	got := h.Normalize(map[string]any{
		"levels":     []any{176.0, 194.0},
		"input_unit": "f",
	}, params.HandlerContext{})

	levels := got["levels"].([]any)
	assert.InDelta(t, 80.0, levels[0].(float64), 0.001)
	assert.InDelta(t, 90.0, levels[1].(float64), 0.001)
	assert.NotContains(t, got, "input_unit", "the unit marker is consumed")
}

func TestTemperatureNormalizeKelvin(t *testing.T) {
	h := TemperatureHandler{}
	got := h.Normalize(map[string]any{
		"levels":     []any{353.15, 363.15},
		"input_unit": "kelvin",
	}, params.HandlerContext{})

	levels := got["levels"].([]any)
	assert.InDelta(t, 80.0, levels[0].(float64), 0.001)
	assert.InDelta(t, 90.0, levels[1].(float64), 0.001)
}

func TestTemperatureNormalizeCoercesIntegers(t *testing.T) {
	h := TemperatureHandler{}
	in := map[string]any{"levels": []any{80, 90}}
	got := h.Normalize(in, params.HandlerContext{})

	assert.Equal(t, []any{80.0, 90.0}, got["levels"])
	assert.Equal(t, []any{80, 90}, in["levels"], "input must not be mutated")
}

func TestTemperatureValidate(t *testing.T) {
	h := TemperatureHandler{}

	assert.Empty(t, h.Validate(map[string]any{
		"levels":       []any{80.0, 90.0},
		"levels_lower": []any{5.0, 0.0},
	}))

	issues := h.Validate(map[string]any{"levels": []any{90.0, 80.0}})
	require.Len(t, issues, 1)
	assert.Equal(t, params.SeverityError, issues[0].Severity)
	assert.Equal(t, "levels", issues[0].Path)

	issues = h.Validate(map[string]any{"levels_lower": []any{0.0, 5.0}})
	require.Len(t, issues, 1)
	assert.Equal(t, params.SeverityError, issues[0].Severity)

	issues = h.Validate(map[string]any{"levels_lower": []any{-270.0, -300.0}})
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "absolute zero")

	issues = h.Validate(map[string]any{"levels": []any{140.0, 160.0}})
	require.Len(t, issues, 1)
	assert.Equal(t, params.SeverityWarning, issues[0].Severity)
}

func TestTemperatureSuggestNarrowGap(t *testing.T) {
	h := TemperatureHandler{}
	suggestions := h.Suggest(map[string]any{
		"levels":                 []any{88.0, 90.0},
		"device_levels_handling": "usr",
	}, params.HandlerContext{})

	require.Len(t, suggestions, 1)
	assert.Equal(t, "levels", suggestions[0].Parameter)
}

func TestLevelPair(t *testing.T) {
	warn, crit, ok := levelPair([]any{80.0, 90})
	require.True(t, ok)
	assert.Equal(t, 80.0, warn)
	assert.Equal(t, 90.0, crit)

	_, _, ok = levelPair([]any{80.0})
	assert.False(t, ok)
	_, _, ok = levelPair("not levels")
	assert.False(t, ok)
	_, _, ok = levelPair(nil)
	assert.False(t, ok)
}
