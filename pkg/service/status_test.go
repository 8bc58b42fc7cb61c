// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrade(t *testing.T) {
	tests := []struct {
		okPercent float64
		want      string
	}{
		{100, "A+"},
		{99, "A+"},
		{98.5, "A"},
		{97, "A"},
		{96, "B"},
		{95, "B"},
		{92, "C"},
		{90, "C"},
		{85, "D"},
		{80, "D"},
		{79.9, "F"},
		{0, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.okPercent), "ok percent %.1f", tt.okPercent)
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		description string
		want        ProblemCategory
	}{
		{"Interface eth0", CategoryNetwork},
		{"Filesystem /var", CategoryDisk},
		{"Disk IO SUMMARY", CategoryDisk},
		{"CPU utilization", CategoryPerformance},
		{"Memory", CategoryPerformance},
		{"PING", CategoryConnectivity},
		{"HTTP health endpoint", CategoryConnectivity},
		{"Check_MK Discovery", CategoryMonitoring},
		{"Postfix Queue", CategoryOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Categorize(tt.description), "description %q", tt.description)
	}
}
