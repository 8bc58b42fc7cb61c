// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkmk-mcp/core/pkg/appconsts"
)

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), appconsts.Name)
	assert.Contains(t, out.String(), appconsts.Version)
}

func TestValidateCommandAcceptsGoodConfig(t *testing.T) {
	for _, key := range []string{"CHECKMK_MCP_SERVER_URL", "CHECKMK_MCP_USERNAME", "CHECKMK_MCP_PASSWORD", "CHECKMK_MCP_SITE"} {
		t.Setenv(key, "")
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"checkmk:\n"+
			"  server_url: https://monitoring.example.com\n"+
			"  username: automation\n"+
			"  password: secret\n"+
			"  site: mysite\n"), 0o600))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"validate", "--config", path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "configuration OK")
	assert.Contains(t, out.String(), "mysite")
}

func TestValidateCommandRejectsBrokenConfig(t *testing.T) {
	for _, key := range []string{"CHECKMK_MCP_SERVER_URL", "CHECKMK_MCP_PASSWORD", "CHECKMK_MCP_SITE"} {
		t.Setenv(key, "")
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("checkmk:\n  username: automation\n"), 0o600))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"validate", "--config", path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server_url")
}
