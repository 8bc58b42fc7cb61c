// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

// Package handlers provides the built-in specialized parameter handlers and
// the registry wiring them to service families.
package handlers

import (
	"fmt"
	"strings"

	"github.com/checkmk-mcp/core/pkg/checkmk"
	"github.com/checkmk-mcp/core/pkg/params"
)

// temperatureProfile holds upper warn/crit levels in degrees Celsius for one
// hardware class.
type temperatureProfile struct {
	warn, crit float64
}

var temperatureProfiles = map[string]temperatureProfile{
	"cpu":     {warn: 80, crit: 90},
	"gpu":     {warn: 85, crit: 95},
	"ambient": {warn: 35, crit: 40},
	"storage": {warn: 50, crit: 60},
	"chassis": {warn: 40, crit: 45},
	"psu":     {warn: 60, crit: 70},
	"nic":     {warn: 70, crit: 80},
}

const defaultTemperatureProfile = "ambient"

// TemperatureHandler manages temperature check parameters. All thresholds it
// emits are Celsius floats; the Checkmk temperature valuespec rejects
// integers.
type TemperatureHandler struct{}

func (TemperatureHandler) Name() string { return "temperature" }

func (TemperatureHandler) DefaultRuleset(string) string {
	return "checkgroup_parameters:temperature"
}

// Defaults picks a hardware profile from the context, falling back to
// inference from the service name and finally to the ambient profile.
func (h TemperatureHandler) Defaults(service string, hctx params.HandlerContext) map[string]any {
	profile := h.profileFor(service, hctx)
	warn, crit := profile.warn, profile.crit
	if hctx.Criticality == "high" || hctx.Environment == "production" {
		warn -= 5
		crit -= 5
	}

	return map[string]any{
		"levels":                 []any{warn, crit},
		"levels_lower":           []any{5.0, 0.0},
		"device_levels_handling": "usr",
		"output_unit":            "c",
	}
}

func (TemperatureHandler) profileFor(service string, hctx params.HandlerContext) temperatureProfile {
	if p, ok := temperatureProfiles[strings.ToLower(hctx.HardwareType)]; ok {
		return p
	}
	lower := strings.ToLower(service)
	for name, p := range temperatureProfiles {
		if strings.Contains(lower, name) {
			return p
		}
	}
	return temperatureProfiles[defaultTemperatureProfile]
}

// Normalize converts Fahrenheit and Kelvin thresholds to Celsius and coerces
// integer thresholds to floats.
func (TemperatureHandler) Normalize(parameters map[string]any, _ params.HandlerContext) map[string]any {
	out := checkmk.CoerceNumbersToFloat(parameters)

	unit, _ := out["input_unit"].(string)
	if conv := unitToCelsius(unit); conv != nil {
		for _, key := range []string{"levels", "levels_lower"} {
			if levels, ok := out[key].([]any); ok {
				converted := make([]any, len(levels))
				for i, lv := range levels {
					if f, ok := lv.(float64); ok {
						converted[i] = conv(f)
					} else {
						converted[i] = lv
					}
				}
				out[key] = converted
			}
		}
		delete(out, "input_unit")
	}
	return out
}

func unitToCelsius(unit string) func(float64) float64 {
	switch strings.ToLower(unit) {
	case "f", "fahrenheit":
		return func(v float64) float64 { return (v - 32) * 5 / 9 }
	case "k", "kelvin":
		return func(v float64) float64 { return v - 273.15 }
	default:
		return nil
	}
}

// Validate checks threshold ordering and physical plausibility.
func (TemperatureHandler) Validate(parameters map[string]any) []params.Issue {
	var issues []params.Issue

	if warn, crit, ok := levelPair(parameters["levels"]); ok {
		if warn >= crit {
			issues = append(issues, params.Issue{
				Severity:     params.SeverityError,
				Path:         "levels",
				Message:      fmt.Sprintf("warning level %.1f must be below critical level %.1f", warn, crit),
				SuggestedFix: "swap the levels or widen the gap",
			})
		}
		if crit > 150 {
			issues = append(issues, params.Issue{
				Severity: params.SeverityWarning,
				Path:     "levels",
				Message:  fmt.Sprintf("critical level %.1f °C is above any realistic sensor reading", crit),
			})
		}
	}

	if warn, crit, ok := levelPair(parameters["levels_lower"]); ok {
		if warn <= crit {
			issues = append(issues, params.Issue{
				Severity: params.SeverityError,
				Path:     "levels_lower",
				Message:  fmt.Sprintf("lower warning level %.1f must be above lower critical level %.1f", warn, crit),
			})
		}
		if crit < -273.15 {
			issues = append(issues, params.Issue{
				Severity: params.SeverityError,
				Path:     "levels_lower",
				Message:  "lower critical level is below absolute zero",
			})
		}
	}

	return issues
}

// Suggest flags threshold gaps that are too narrow to give operators
// reaction time.
func (TemperatureHandler) Suggest(current map[string]any, hctx params.HandlerContext) []params.Suggestion {
	var suggestions []params.Suggestion

	if warn, crit, ok := levelPair(current["levels"]); ok {
		if crit-warn < 5 {
			suggestions = append(suggestions, params.Suggestion{
				Parameter: "levels",
				Current:   []any{warn, crit},
				Suggested: []any{crit - 10, crit},
				Reason:    "less than 5 °C between warning and critical leaves no reaction window",
			})
		}
		if hctx.Environment == "production" && hctx.HardwareType == "cpu" && crit > 95 {
			suggestions = append(suggestions, params.Suggestion{
				Parameter: "levels",
				Current:   []any{warn, crit},
				Suggested: []any{80.0, 90.0},
				Reason:    "production CPU thresholds above 95 °C risk thermal throttling before the alert fires",
			})
		}
	}

	if _, present := current["device_levels_handling"]; !present {
		suggestions = append(suggestions, params.Suggestion{
			Parameter: "device_levels_handling",
			Suggested: "usr",
			Reason:    "explicit level handling avoids surprises when the device reports its own thresholds",
		})
	}

	return suggestions
}

// levelPair extracts a (warn, crit) tuple from a decoded threshold value.
func levelPair(v any) (warn, crit float64, ok bool) {
	levels, isSlice := v.([]any)
	if !isSlice || len(levels) != 2 {
		return 0, 0, false
	}
	warn, warnOK := toFloat(levels[0])
	crit, critOK := toFloat(levels[1])
	return warn, crit, warnOK && critOK
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}
