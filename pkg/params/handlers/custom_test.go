// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkmk-mcp/core/pkg/params"
)

func TestCustomCheckValidateNagiosRanges(t *testing.T) {
	h := CustomCheckHandler{}

	valid := []any{"10", "10:", "~:10", "10:20", "@10:20", "-5:5", "10.5:20.5", 10, 10.5}
	for _, v := range valid {
		assert.Empty(t, h.Validate(map[string]any{"warn": v}), "value %v", v)
	}

	invalid := []any{"abc", "10:20:30", "10..20", "@@10", true}
	for _, v := range invalid {
		issues := h.Validate(map[string]any{"crit": v})
		require.Len(t, issues, 1, "value %v", v)
		assert.Equal(t, params.SeverityError, issues[0].Severity)
	}
}

func TestCustomCheckValidateRangeSuffixKeys(t *testing.T) {
	h := CustomCheckHandler{}
	issues := h.Validate(map[string]any{"load_range": "not-a-range"})
	require.Len(t, issues, 1)
	assert.Equal(t, "load_range", issues[0].Path)
}

func TestCustomCheckValidateFlagsShellMetacharacters(t *testing.T) {
	h := CustomCheckHandler{}

	assert.Empty(t, h.Validate(map[string]any{
		"command_line": "check_disk -w 80 -c 90",
	}))

	for _, cmd := range []string{
		"check_disk; rm -rf /tmp/x",
		"check_disk | mail root",
		"check_disk `id`",
		"check_disk $(whoami)",
		"check_disk > /tmp/out",
	} {
		issues := h.Validate(map[string]any{"command_line": cmd})
		require.Len(t, issues, 1, "command %q", cmd)
		assert.Equal(t, params.SeverityWarning, issues[0].Severity,
			"shell metacharacters warn, they do not block")
	}
}

func TestCustomCheckValidateTimeout(t *testing.T) {
	h := CustomCheckHandler{}
	issues := h.Validate(map[string]any{"timeout": -1.0})
	require.Len(t, issues, 1)
	assert.Equal(t, "timeout", issues[0].Path)

	assert.Empty(t, h.Validate(map[string]any{"timeout": 60.0}))
}

func TestCustomCheckDefaultRuleset(t *testing.T) {
	h := CustomCheckHandler{}
	assert.Equal(t, "checkgroup_parameters:mrpe", h.DefaultRuleset("MRPE check_load"))
	assert.Equal(t, "checkgroup_parameters:local", h.DefaultRuleset("Local my_probe"))
	assert.Equal(t, "", h.DefaultRuleset("check_custom"))
}

func TestCustomCheckSuggestLongTimeout(t *testing.T) {
	h := CustomCheckHandler{}
	suggestions := h.Suggest(map[string]any{"timeout": 300.0}, params.HandlerContext{})
	require.Len(t, suggestions, 1)
	assert.Equal(t, "timeout", suggestions[0].Parameter)

	assert.Empty(t, h.Suggest(map[string]any{"timeout": 60.0}, params.HandlerContext{}))
}

func TestRangeString(t *testing.T) {
	assert.Equal(t, "10:20", rangeString(" 10:20 "))
	assert.Equal(t, "10.5", rangeString(10.5))
	assert.Equal(t, "10", rangeString(10))
	assert.Equal(t, "", rangeString([]any{}))
}
