// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/checkmk-mcp/core/pkg/checkmk"
	"github.com/checkmk-mcp/core/pkg/params"
)

// nagiosRange validates the Nagios threshold range grammar: "10", "10:",
// "~:10", "10:20", "@10:20".
var nagiosRange = regexp.MustCompile(`^@?(~|-?\d+(\.\d+)?)?(:(-?\d+(\.\d+)?)?)?$`)

// shellMetaFragments are command-line fragments that allow command chaining
// or substitution.
var shellMetaFragments = []string{";", "|", "&", "`", "$(", ">", "<"}

// CustomCheckHandler manages parameters for MRPE, local, and classic Nagios
// plugin checks, where thresholds follow the Nagios range grammar.
type CustomCheckHandler struct{}

func (CustomCheckHandler) Name() string { return "custom_checks" }

func (CustomCheckHandler) DefaultRuleset(service string) string {
	lower := strings.ToLower(service)
	if strings.Contains(lower, "mrpe") {
		return "checkgroup_parameters:mrpe"
	}
	if strings.Contains(lower, "local") {
		return "checkgroup_parameters:local"
	}
	return ""
}

// Defaults for custom checks stay minimal; the plugin itself owns its
// thresholds.
func (CustomCheckHandler) Defaults(_ string, _ params.HandlerContext) map[string]any {
	return map[string]any{
		"timeout": 60.0,
	}
}

// Normalize coerces numeric thresholds to floats. Nagios range strings stay
// strings.
func (CustomCheckHandler) Normalize(parameters map[string]any, _ params.HandlerContext) map[string]any {
	return checkmk.CoerceNumbersToFloat(parameters)
}

// Validate checks Nagios range syntax on threshold keys and flags shell
// metacharacters in command lines.
func (CustomCheckHandler) Validate(parameters map[string]any) []params.Issue {
	var issues []params.Issue

	for key, value := range parameters {
		lower := strings.ToLower(key)

		if lower == "warn" || lower == "crit" || strings.HasSuffix(lower, "_range") {
			raw := rangeString(value)
			if raw == "" || !nagiosRange.MatchString(raw) {
				issues = append(issues, params.Issue{
					Severity:     params.SeverityError,
					Path:         key,
					Message:      fmt.Sprintf("%v is not a valid threshold range", value),
					SuggestedFix: `use forms like "10", "10:", "~:10", "10:20", or "@10:20"`,
				})
			}
			continue
		}

		if lower == "command_line" || lower == "command" {
			cmd, _ := value.(string)
			for _, meta := range shellMetaFragments {
				if strings.Contains(cmd, meta) {
					issues = append(issues, params.Issue{
						Severity:     params.SeverityWarning,
						Path:         key,
						Message:      fmt.Sprintf("command contains shell metacharacter %q", meta),
						SuggestedFix: "move shell logic into the plugin script itself",
					})
					break
				}
			}
		}
	}

	if timeout, ok := toFloat(parameters["timeout"]); ok && timeout <= 0 {
		issues = append(issues, params.Issue{
			Severity: params.SeverityError,
			Path:     "timeout",
			Message:  "timeout must be positive",
		})
	}

	return issues
}

// rangeString renders a threshold value as its Nagios range string.
func rangeString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}

// Suggest flags long timeouts that can stall the check helper.
func (CustomCheckHandler) Suggest(current map[string]any, _ params.HandlerContext) []params.Suggestion {
	var suggestions []params.Suggestion

	if timeout, ok := toFloat(current["timeout"]); ok && timeout > 120 {
		suggestions = append(suggestions, params.Suggestion{
			Parameter: "timeout",
			Current:   timeout,
			Suggested: 60.0,
			Reason:    "timeouts above two minutes block the check helper and delay other checks",
		})
	}

	return suggestions
}
