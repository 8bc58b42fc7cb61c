// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkmk-mcp/core/pkg/checkmk"
	"github.com/checkmk-mcp/core/pkg/requestid"
	"github.com/checkmk-mcp/core/pkg/resilience"
)

func TestOKCarriesRequestID(t *testing.T) {
	ctx := requestid.NewContext(context.Background(), requestid.New())

	res := OK(ctx, map[string]any{"hosts": 3}, "partial data")
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.RequestID)
	assert.True(t, strings.HasPrefix(res.RequestID, "req_"), "got %q", res.RequestID)
	assert.Equal(t, []string{"partial data"}, res.Warnings)
	assert.Nil(t, res.Error)
}

func TestFailClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"validation", &checkmk.ValidationError{Message: "bad levels"}, KindValidation},
		{"auth", &checkmk.AuthError{StatusCode: 401, Message: "denied"}, KindAuth},
		{"not found", &checkmk.NotFoundError{Resource: `host "web01"`}, KindNotFound},
		{"conflict", &checkmk.ConflictError{Message: "stale etag"}, KindConflict},
		{"network", &checkmk.NetworkError{Err: errors.New("connection refused")}, KindUpstream},
		{"timeout", &checkmk.TimeoutError{Err: errors.New("deadline exceeded")}, KindUpstream},
		{"server", &checkmk.ServerError{StatusCode: 502, Message: "bad gateway"}, KindUpstream},
		{"breaker open", &resilience.CircuitBreakerOpenError{}, KindUpstream},
		{"cancelled", context.Canceled, KindCancelled},
		{"deadline", context.DeadlineExceeded, KindCancelled},
		{"unclassified", errors.New("nil pointer dereference"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Fail(context.Background(), tt.err)
			assert.False(t, res.Success)
			require.NotNil(t, res.Error)
			assert.Equal(t, tt.want, res.Error.Kind)
			assert.NotEmpty(t, res.Error.Message)
		})
	}
}

func TestFailClassifiesWrappedErrors(t *testing.T) {
	err := errors.New("outer")
	wrapped := &checkmk.NotFoundError{Resource: "rule", Message: err.Error()}

	res := Fail(context.Background(), wrapped)
	assert.Equal(t, KindNotFound, res.Error.Kind)
}

func TestDisabledResult(t *testing.T) {
	res := Disabled(context.Background(), "event console")
	assert.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Equal(t, KindDisabled, res.Error.Kind)
	assert.Contains(t, res.Error.Message, "event console")
}

func TestSanitizeScrubsHomePaths(t *testing.T) {
	assert.Equal(t, "open [path] failed",
		Sanitize("open /home/alice/.config/checkmk/token failed"))
	assert.Equal(t, "open [path] failed",
		Sanitize("open /Users/alice/secrets.yaml failed"))
	assert.Equal(t, "connection to 10.0.0.5 refused",
		Sanitize("connection to 10.0.0.5 refused"))
}

func TestSanitizeTruncatesLongMessages(t *testing.T) {
	long := strings.Repeat("x", 800)
	got := Sanitize(long)
	assert.Len(t, got, 503)
	assert.True(t, strings.HasSuffix(got, "..."))
}
