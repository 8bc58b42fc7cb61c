// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/checkmk-mcp/core/pkg/checkmk"
	"github.com/checkmk-mcp/core/pkg/params"
)

// netProtocol carries per-protocol response-time defaults in seconds.
type netProtocol struct {
	ruleset    string
	warn, crit float64
}

var netProtocols = map[string]netProtocol{
	"https": {ruleset: "checkgroup_parameters:http", warn: 0.5, crit: 1.0},
	"http":  {ruleset: "checkgroup_parameters:http", warn: 0.5, crit: 1.0},
	"tcp":   {ruleset: "checkgroup_parameters:tcp_conn_stats", warn: 0.1, crit: 0.5},
	"udp":   {ruleset: "checkgroup_parameters:udp", warn: 0.1, crit: 0.5},
	"dns":   {ruleset: "checkgroup_parameters:dns", warn: 0.2, crit: 1.0},
	"ssh":   {ruleset: "checkgroup_parameters:ssh", warn: 0.5, crit: 2.0},
	"ftp":   {ruleset: "checkgroup_parameters:ftp", warn: 1.0, crit: 3.0},
	"smtp":  {ruleset: "checkgroup_parameters:smtp", warn: 1.0, crit: 3.0},
	"imap":  {ruleset: "checkgroup_parameters:imap", warn: 1.0, crit: 3.0},
	"pop3":  {ruleset: "checkgroup_parameters:pop3", warn: 1.0, crit: 3.0},
}

// protocolOrder resolves overlapping fragments: https before http.
var protocolOrder = []string{
	"https", "http", "dns", "ssh", "ftp", "smtp", "imap", "pop3", "tcp", "udp",
}

var hostnamePattern = regexp.MustCompile(
	`^([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

// NetworkHandler manages parameters for active network service checks.
type NetworkHandler struct{}

func (NetworkHandler) Name() string { return "network_services" }

func (NetworkHandler) DefaultRuleset(service string) string {
	if proto, ok := detectProtocol(service); ok {
		return proto.ruleset
	}
	return ""
}

func detectProtocol(service string) (netProtocol, bool) {
	lower := strings.ToLower(service)
	for _, name := range protocolOrder {
		if strings.Contains(lower, name) {
			return netProtocols[name], true
		}
	}
	return netProtocol{}, false
}

// Defaults returns response-time levels for the detected protocol; HTTPS
// additionally gets certificate-age levels in days remaining.
func (NetworkHandler) Defaults(service string, hctx params.HandlerContext) map[string]any {
	proto, ok := detectProtocol(service)
	if !ok {
		return nil
	}

	warn, crit := proto.warn, proto.crit
	if hctx.Criticality == "high" {
		warn /= 2
		crit /= 2
	}

	out := map[string]any{
		"response_time": []any{warn, crit},
		"timeout":       10.0,
	}
	if strings.Contains(strings.ToLower(service), "https") {
		out["cert_days"] = []any{30.0, 7.0}
	}
	return out
}

// Normalize coerces numeric thresholds to floats and converts millisecond
// response times (input_unit "ms") to seconds.
func (NetworkHandler) Normalize(parameters map[string]any, _ params.HandlerContext) map[string]any {
	out := checkmk.CoerceNumbersToFloat(parameters)

	if unit, _ := out["input_unit"].(string); strings.EqualFold(unit, "ms") {
		if levels, ok := out["response_time"].([]any); ok {
			converted := make([]any, len(levels))
			for i, lv := range levels {
				if f, ok := lv.(float64); ok {
					converted[i] = f / 1000
				} else {
					converted[i] = lv
				}
			}
			out["response_time"] = converted
		}
		delete(out, "input_unit")
	}
	return out
}

// Validate checks threshold ordering plus URL and hostname well-formedness.
func (NetworkHandler) Validate(parameters map[string]any) []params.Issue {
	var issues []params.Issue

	if warn, crit, ok := levelPair(parameters["response_time"]); ok {
		if warn >= crit {
			issues = append(issues, params.Issue{
				Severity: params.SeverityError,
				Path:     "response_time",
				Message:  fmt.Sprintf("warning %.3fs must be below critical %.3fs", warn, crit),
			})
		}
		if warn <= 0 {
			issues = append(issues, params.Issue{
				Severity: params.SeverityError,
				Path:     "response_time",
				Message:  "response time levels must be positive",
			})
		}
	}

	// Certificate levels count days remaining, so warning comes first.
	if warn, crit, ok := levelPair(parameters["cert_days"]); ok && warn <= crit {
		issues = append(issues, params.Issue{
			Severity:     params.SeverityError,
			Path:         "cert_days",
			Message:      "certificate warning days must exceed critical days",
			SuggestedFix: "use values like [30.0, 7.0]",
		})
	}

	if timeout, ok := toFloat(parameters["timeout"]); ok && timeout <= 0 {
		issues = append(issues, params.Issue{
			Severity: params.SeverityError,
			Path:     "timeout",
			Message:  "timeout must be positive",
		})
	}

	if raw, ok := parameters["url"].(string); ok {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, params.Issue{
				Severity:     params.SeverityError,
				Path:         "url",
				Message:      fmt.Sprintf("%q is not an absolute URL", raw),
				SuggestedFix: "include a scheme, e.g. https://example.com/health",
			})
		}
	}

	if host, ok := parameters["hostname"].(string); ok && !hostnamePattern.MatchString(host) {
		issues = append(issues, params.Issue{
			Severity: params.SeverityError,
			Path:     "hostname",
			Message:  fmt.Sprintf("%q is not a valid hostname", host),
		})
	}

	return issues
}

// Suggest flags certificate windows that are too short to act on.
func (NetworkHandler) Suggest(current map[string]any, hctx params.HandlerContext) []params.Suggestion {
	var suggestions []params.Suggestion

	if warn, crit, ok := levelPair(current["cert_days"]); ok && warn < 14 {
		suggestions = append(suggestions, params.Suggestion{
			Parameter: "cert_days",
			Current:   []any{warn, crit},
			Suggested: []any{30.0, 7.0},
			Reason:    "warning under 14 days leaves little time for certificate renewal",
		})
	}

	if warn, crit, ok := levelPair(current["response_time"]); ok {
		if hctx.Environment == "production" && crit > 5 {
			suggestions = append(suggestions, params.Suggestion{
				Parameter: "response_time",
				Current:   []any{warn, crit},
				Suggested: []any{0.5, 1.0},
				Reason:    "a critical response time above 5s hides serious latency regressions in production",
			})
		}
	}

	return suggestions
}
