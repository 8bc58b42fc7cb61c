// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsExpectedShutdown(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"eof", io.EOF, true},
		{"wrapped eof", fmt.Errorf("read message: %w", io.EOF), true},
		{"cancelled", context.Canceled, true},
		{"epipe", syscall.EPIPE, true},
		{"connection reset errno", syscall.ECONNRESET, true},
		{"broken pipe text", errors.New("write /dev/stdout: broken pipe"), true},
		{"connection reset text", errors.New("read: connection reset by peer"), true},
		{"closed file text", errors.New("write: file already closed"), true},
		{"real failure", errors.New("jsonrpc2: invalid message"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isExpectedShutdown(tt.err))
		})
	}
}

func TestRunFailsOnMissingConfig(t *testing.T) {
	err := Run(context.Background(), afero.NewMemMapFs(), Options{ConfigPath: "/missing.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")
}

func TestRunFailsOnInvalidConfig(t *testing.T) {
	for _, key := range []string{"CHECKMK_MCP_SERVER_URL", "CHECKMK_MCP_USERNAME", "CHECKMK_MCP_PASSWORD", "CHECKMK_MCP_SITE"} {
		t.Setenv(key, "")
	}
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg.yaml",
		[]byte("checkmk:\n  username: automation\n"), 0o644))

	err := Run(context.Background(), fs, Options{ConfigPath: "/cfg.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server_url")
}
