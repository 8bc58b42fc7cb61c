// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/checkmk-mcp/core/pkg/cache"
	"github.com/checkmk-mcp/core/pkg/checkmk"
)

// StatusService derives health dashboards and problem analyses from the
// live service listing.
type StatusService struct {
	client *checkmk.Client
	cache  *cache.Cache
}

// ProblemCategory buckets a service problem for triage.
type ProblemCategory string

// Problem categories.
const (
	CategoryNetwork      ProblemCategory = "network"
	CategoryDisk         ProblemCategory = "disk"
	CategoryPerformance  ProblemCategory = "performance"
	CategoryConnectivity ProblemCategory = "connectivity"
	CategoryMonitoring   ProblemCategory = "monitoring"
	CategoryOther        ProblemCategory = "other"
)

// categoryHints maps service-description fragments to triage categories, in
// match order.
var categoryHints = []struct {
	fragment string
	category ProblemCategory
}{
	{"interface", CategoryNetwork},
	{"nic", CategoryNetwork},
	{"port", CategoryNetwork},
	{"filesystem", CategoryDisk},
	{"disk", CategoryDisk},
	{"mount", CategoryDisk},
	{"cpu", CategoryPerformance},
	{"memory", CategoryPerformance},
	{"load", CategoryPerformance},
	{"swap", CategoryPerformance},
	{"ping", CategoryConnectivity},
	{"http", CategoryConnectivity},
	{"tcp", CategoryConnectivity},
	{"ssh", CategoryConnectivity},
	{"check_mk", CategoryMonitoring},
	{"agent", CategoryMonitoring},
}

// Categorize buckets a service description.
func Categorize(description string) ProblemCategory {
	lower := strings.ToLower(description)
	for _, hint := range categoryHints {
		if strings.Contains(lower, hint.fragment) {
			return hint.category
		}
	}
	return CategoryOther
}

// Grade converts an OK percentage into a report grade.
func Grade(okPercent float64) string {
	switch {
	case okPercent >= 99:
		return "A+"
	case okPercent >= 97:
		return "A"
	case okPercent >= 95:
		return "B"
	case okPercent >= 90:
		return "C"
	case okPercent >= 80:
		return "D"
	default:
		return "F"
	}
}

// Dashboard aggregates all monitored services into state counts, a grade,
// and a per-category problem breakdown.
func (s *StatusService) Dashboard(ctx context.Context) *Result {
	services, err := s.client.ListAllServices(ctx, checkmk.ListServicesQuery{})
	if err != nil {
		return Fail(ctx, err)
	}

	counts := map[string]int{"ok": 0, "warn": 0, "crit": 0, "unknown": 0}
	categories := map[ProblemCategory]int{}
	for _, svc := range services {
		counts[strings.ToLower(svc.State.Name())]++
		if svc.State != checkmk.StateOK {
			categories[Categorize(svc.Description)]++
		}
	}

	okPercent := 100.0
	if len(services) > 0 {
		okPercent = float64(counts["ok"]) / float64(len(services)) * 100
	}

	return OK(ctx, map[string]any{
		"total_services":     len(services),
		"state_counts":       counts,
		"ok_percent":         okPercent,
		"grade":              Grade(okPercent),
		"problem_categories": categories,
	})
}

// CriticalProblems returns unhandled CRIT services, worst-first by host.
func (s *StatusService) CriticalProblems(ctx context.Context) *Result {
	services, err := s.client.ListAllServices(ctx, checkmk.ListServicesQuery{
		Query: problemQuery(),
	})
	if err != nil {
		return Fail(ctx, err)
	}

	critical := lo.Filter(services, func(svc checkmk.Service, _ int) bool {
		return svc.State == checkmk.StateCrit && !svc.Acknowledged && !svc.InDowntime
	})
	sort.SliceStable(critical, func(i, j int) bool {
		return critical[i].HostName < critical[j].HostName
	})

	return OK(ctx, map[string]any{
		"problems": critical,
		"count":    len(critical),
	})
}

// AnalyzeHost summarizes one host's service health with a grade and
// categorized problems.
func (s *StatusService) AnalyzeHost(ctx context.Context, hostName string) *Result {
	services, err := s.client.ListHostServices(ctx, hostName, nil)
	if err != nil {
		return Fail(ctx, err)
	}

	ok := 0
	var problems []map[string]any
	for _, svc := range services {
		if svc.State == checkmk.StateOK {
			ok++
			continue
		}
		problems = append(problems, map[string]any{
			"service":      svc.Description,
			"state":        svc.State.Name(),
			"state_type":   svc.StateType,
			"category":     Categorize(svc.Description),
			"acknowledged": svc.Acknowledged,
			"in_downtime":  svc.InDowntime,
			"output":       svc.PluginOutput,
		})
	}

	okPercent := 100.0
	if len(services) > 0 {
		okPercent = float64(ok) / float64(len(services)) * 100
	}

	return OK(ctx, map[string]any{
		"host":           hostName,
		"total_services": len(services),
		"ok_services":    ok,
		"ok_percent":     okPercent,
		"grade":          Grade(okPercent),
		"problems":       problems,
	})
}
