// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package params

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkmk-mcp/core/pkg/checkmk"
)

func TestFolderDistance(t *testing.T) {
	tests := []struct {
		host string
		rule string
		want float64
	}{
		{"/network/monitoring", "/network/monitoring", 0},
		{"/network/monitoring", "/network", 1},
		{"/network/monitoring", "/", 2},
		{"/network", "/", 1},
		{"/", "/", 0},
		{"/network/monitoring/", "/network/", 1},
		{"/network/monitoring", "/storage", math.Inf(1)},
		{"/network", "/network/monitoring", math.Inf(1)},
		{"/networking", "/network", math.Inf(1)},
	}
	for _, tt := range tests {
		got := FolderDistance(tt.host, tt.rule)
		if math.IsInf(tt.want, 1) {
			assert.True(t, math.IsInf(got, 1), "host %q rule %q", tt.host, tt.rule)
		} else {
			assert.Equal(t, tt.want, got, "host %q rule %q", tt.host, tt.rule)
		}
	}
}

func TestSortRulesByFolderPrecedence(t *testing.T) {
	rules := []checkmk.Rule{
		{ID: "root", Folder: "/"},
		{ID: "exact", Folder: "/network/monitoring"},
		{ID: "other-branch", Folder: "/storage"},
		{ID: "parent", Folder: "/network"},
	}

	sorted := SortRulesByFolderPrecedence(rules, "/network/monitoring")
	require.Len(t, sorted, 3, "rules outside the host's ancestry are dropped")
	assert.Equal(t, "exact", sorted[0].ID)
	assert.Equal(t, "parent", sorted[1].ID)
	assert.Equal(t, "root", sorted[2].ID)
}

func TestSortRulesByFolderPrecedenceIsStable(t *testing.T) {
	rules := []checkmk.Rule{
		{ID: "first", Folder: "/network"},
		{ID: "second", Folder: "/network"},
		{ID: "third", Folder: "/network"},
	}

	sorted := SortRulesByFolderPrecedence(rules, "/network/monitoring")
	require.Len(t, sorted, 3)
	assert.Equal(t, "first", sorted[0].ID)
	assert.Equal(t, "second", sorted[1].ID)
	assert.Equal(t, "third", sorted[2].ID)
}
