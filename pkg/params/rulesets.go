// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package params

import (
	"regexp"
	"strings"
)

// staticRulesetHints seeds service-name patterns to ruleset names for the
// common cases. This is a shortcut for dynamic discovery, not a replacement:
// misses fall through to the ruleset search endpoint.
var staticRulesetHints = []struct {
	pattern *regexp.Regexp
	ruleset string
}{
	{regexp.MustCompile(`(?i)^temperature\b|temp\b`), "checkgroup_parameters:temperature"},
	{regexp.MustCompile(`(?i)^filesystem\b|^fs_|disk.?space`), "checkgroup_parameters:filesystem"},
	{regexp.MustCompile(`(?i)^cpu\b.*util|^cpu load`), "checkgroup_parameters:cpu_utilization_linux"},
	{regexp.MustCompile(`(?i)^memory\b`), "checkgroup_parameters:memory_linux"},
	{regexp.MustCompile(`(?i)^interface\b|^if\d|^nic\b`), "checkgroup_parameters:interfaces"},
	{regexp.MustCompile(`(?i)oracle.*tablespace`), "checkgroup_parameters:oracle_tablespaces"},
	{regexp.MustCompile(`(?i)mysql.*connection`), "checkgroup_parameters:mysql_connections"},
	{regexp.MustCompile(`(?i)^https?\b|^http[ _]`), "checkgroup_parameters:http"},
}

// StaticRulesetFor returns the seeded ruleset for a service name, or empty
// when the table has no entry.
func StaticRulesetFor(service string) string {
	for _, hint := range staticRulesetHints {
		if hint.pattern.MatchString(service) {
			return hint.ruleset
		}
	}
	return ""
}

// DiscoveryTermFor derives a search term for dynamic ruleset discovery from
// a service description, e.g. "Temperature Zone 0" -> "temperature".
func DiscoveryTermFor(service string) string {
	fields := strings.Fields(strings.ToLower(service))
	if len(fields) == 0 {
		return service
	}
	return fields[0]
}
