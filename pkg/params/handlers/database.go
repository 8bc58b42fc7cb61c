// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"fmt"
	"math"
	"strings"

	"github.com/checkmk-mcp/core/pkg/checkmk"
	"github.com/checkmk-mcp/core/pkg/params"
)

// dbEngine describes per-engine defaults: the ruleset the engine's main
// capacity check uses and the percentage levels for it.
type dbEngine struct {
	ruleset    string
	defaults   map[string]any
	percentage []string
}

var dbEngines = map[string]dbEngine{
	"oracle": {
		ruleset: "checkgroup_parameters:oracle_tablespaces",
		defaults: map[string]any{
			"levels":     []any{80.0, 90.0},
			"magic":      0.9,
			"autoextend": true,
		},
		percentage: []string{"levels"},
	},
	"mysql": {
		ruleset: "checkgroup_parameters:mysql_connections",
		defaults: map[string]any{
			"perc_used": []any{80.0, 90.0},
		},
		percentage: []string{"perc_used"},
	},
	"postgres": {
		ruleset: "checkgroup_parameters:db_connections",
		defaults: map[string]any{
			"levels_perc": []any{80.0, 90.0},
		},
		percentage: []string{"levels_perc"},
	},
	"mssql": {
		ruleset: "checkgroup_parameters:mssql_tablespaces",
		defaults: map[string]any{
			"levels": []any{80.0, 90.0},
		},
		percentage: []string{"levels"},
	},
	"mongodb": {
		ruleset: "checkgroup_parameters:mongodb_collections",
		defaults: map[string]any{
			"levels_size_percent": []any{80.0, 90.0},
		},
		percentage: []string{"levels_size_percent"},
	},
	"redis": {
		ruleset: "checkgroup_parameters:redis_info",
		defaults: map[string]any{
			"clients_connected": []any{80.0, 90.0},
		},
		percentage: []string{"clients_connected"},
	},
}

// dbEngineAliases maps service-name fragments to engine keys.
var dbEngineAliases = map[string]string{
	"oracle":     "oracle",
	"ora":        "oracle",
	"mysql":      "mysql",
	"mariadb":    "mysql",
	"postgres":   "postgres",
	"pgsql":      "postgres",
	"mssql":      "mssql",
	"sql server": "mssql",
	"mongodb":    "mongodb",
	"mongo":      "mongodb",
	"redis":      "redis",
}

// DatabaseHandler manages parameters for database capacity and connection
// checks across the supported engines.
type DatabaseHandler struct{}

func (DatabaseHandler) Name() string { return "database" }

func (DatabaseHandler) DefaultRuleset(service string) string {
	if engine, ok := detectEngine(service); ok {
		return engine.ruleset
	}
	return ""
}

func detectEngine(service string) (dbEngine, bool) {
	lower := strings.ToLower(service)
	for alias, key := range dbEngineAliases {
		if strings.Contains(lower, alias) {
			return dbEngines[key], true
		}
	}
	return dbEngine{}, false
}

// Defaults returns the detected engine's recommended levels; production or
// high-criticality contexts tighten them by five points.
func (DatabaseHandler) Defaults(service string, hctx params.HandlerContext) map[string]any {
	engine, ok := detectEngine(service)
	if !ok {
		return nil
	}

	out := make(map[string]any, len(engine.defaults))
	for k, v := range engine.defaults {
		out[k] = v
	}

	if hctx.Criticality == "high" || hctx.Environment == "production" {
		for _, key := range engine.percentage {
			if warn, crit, ok := levelPair(out[key]); ok {
				out[key] = []any{warn - 5, crit - 5}
			}
		}
	}
	return out
}

// Normalize coerces numeric thresholds to floats.
func (DatabaseHandler) Normalize(parameters map[string]any, _ params.HandlerContext) map[string]any {
	return checkmk.CoerceNumbersToFloat(parameters)
}

// sslDependentKeys only take effect when the connection uses SSL.
var sslDependentKeys = []string{"ssl_ca", "ssl_cert", "ssl_key"}

// Validate checks level ordering, percentage bounds, and the connection
// parameters (hostname shape, port range, SSL consistency).
func (DatabaseHandler) Validate(parameters map[string]any) []params.Issue {
	var issues []params.Issue

	for key, value := range parameters {
		warn, crit, ok := levelPair(value)
		if !ok {
			continue
		}
		if warn >= crit {
			issues = append(issues, params.Issue{
				Severity: params.SeverityError,
				Path:     key,
				Message:  fmt.Sprintf("warning level %.1f must be below critical level %.1f", warn, crit),
			})
		}
		if isPercentageKey(key) && (warn < 0 || crit > 100) {
			issues = append(issues, params.Issue{
				Severity:     params.SeverityError,
				Path:         key,
				Message:      "percentage levels must lie within 0 and 100",
				SuggestedFix: "use values like [80.0, 90.0]",
			})
		}
	}

	if raw, ok := parameters["hostname"]; ok {
		host, isString := raw.(string)
		if !isString || !hostnamePattern.MatchString(host) {
			issues = append(issues, params.Issue{
				Severity: params.SeverityError,
				Path:     "hostname",
				Message:  fmt.Sprintf("%v is not a valid hostname", raw),
			})
		}
	}

	if raw, ok := parameters["port"]; ok {
		port, isNumber := toFloat(raw)
		if !isNumber || port != math.Trunc(port) || port < 1 || port > 65535 {
			issues = append(issues, params.Issue{
				Severity:     params.SeverityError,
				Path:         "port",
				Message:      "port must be an integer between 1 and 65535",
				SuggestedFix: "use the engine's listener port, e.g. 5432 for PostgreSQL",
			})
		}
	}

	if raw, ok := parameters["ssl"]; ok {
		if _, isBool := raw.(bool); !isBool {
			issues = append(issues, params.Issue{
				Severity: params.SeverityError,
				Path:     "ssl",
				Message:  "ssl must be true or false",
			})
		}
	}
	sslOn, _ := parameters["ssl"].(bool)
	for _, key := range sslDependentKeys {
		if _, ok := parameters[key]; ok && !sslOn {
			issues = append(issues, params.Issue{
				Severity: params.SeverityWarning,
				Path:     key,
				Message:  key + " has no effect while ssl is not enabled",
			})
		}
	}

	return issues
}

func isPercentageKey(key string) bool {
	lower := strings.ToLower(key)
	return strings.Contains(lower, "perc") || strings.Contains(lower, "percent")
}

// Suggest recommends headroom on capacity checks.
func (DatabaseHandler) Suggest(current map[string]any, hctx params.HandlerContext) []params.Suggestion {
	var suggestions []params.Suggestion

	for key, value := range current {
		warn, crit, ok := levelPair(value)
		if !ok || !isPercentageKey(key) && key != "levels" {
			continue
		}
		if crit >= 98 {
			suggestions = append(suggestions, params.Suggestion{
				Parameter: key,
				Current:   []any{warn, crit},
				Suggested: []any{80.0, 90.0},
				Reason:    "a critical threshold at or above 98% alerts only when the database is already failing",
			})
		}
		if hctx.Criticality == "high" && crit-warn > 15 {
			suggestions = append(suggestions, params.Suggestion{
				Parameter: key,
				Current:   []any{warn, crit},
				Suggested: []any{crit - 10, crit},
				Reason:    "high-criticality databases benefit from an earlier warning",
			})
		}
	}

	return suggestions
}
