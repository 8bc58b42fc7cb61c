// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"github.com/checkmk-mcp/core/pkg/params"
)

// DefaultRegistry wires the built-in handlers. Temperature outranks the
// others because temperature rulesets have the strictest value encoding;
// custom checks sit last as the broadest match.
func DefaultRegistry() *params.Registry {
	registry := params.NewRegistry()

	registry.Register(params.Registration{
		Handler:         TemperatureHandler{},
		ServicePatterns: params.MustPatterns(`(?i)temp(erature)?\b`, `(?i)thermal`),
		RulesetPatterns: params.MustPatterns(`temperature`),
		Priority:        100,
	})
	registry.Register(params.Registration{
		Handler: DatabaseHandler{},
		ServicePatterns: params.MustPatterns(
			`(?i)oracle|mysql|mariadb|postgres|pgsql|mssql|sql server|mongo|redis`,
			`(?i)tablespace|\bdb\b`,
		),
		RulesetPatterns: params.MustPatterns(`oracle|mysql|postgres|mssql|mongodb|redis|db_`),
		Priority:        90,
	})
	registry.Register(params.Registration{
		Handler: NetworkHandler{},
		ServicePatterns: params.MustPatterns(
			`(?i)\bhttps?\b|\btcp\b|\budp\b|\bdns\b|\bssh\b|\bftp\b|\bsmtp\b|\bimap\b|\bpop3\b`,
		),
		RulesetPatterns: params.MustPatterns(`http|tcp_conn|udp|dns|ssh|ftp|smtp|imap|pop3`),
		Priority:        80,
	})
	registry.Register(params.Registration{
		Handler:         CustomCheckHandler{},
		ServicePatterns: params.MustPatterns(`(?i)\bmrpe\b|\blocal\b|\bnagios\b|^check_`),
		RulesetPatterns: params.MustPatterns(`mrpe|local|custom_checks`),
		Priority:        10,
	})

	return registry
}
