// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkmk-mcp/core/pkg/checkmk"
	"github.com/checkmk-mcp/core/pkg/config"
	"github.com/checkmk-mcp/core/pkg/resilience"
)

func testClient(t *testing.T, serverURL string, failureThreshold int) *checkmk.Client {
	t.Helper()
	res := resilience.NewManager(config.RecoveryConfig{
		Retry: config.RetryConfig{BaseDelay: config.Duration(time.Millisecond)},
		CircuitBreaker: config.CircuitBreakerConfig{
			FailureThreshold: failureThreshold,
			RecoveryTimeout:  config.Duration(time.Minute),
		},
	})
	client, err := checkmk.NewClient(config.CheckmkConfig{
		ServerURL: serverURL,
		Username:  "automation",
		Password:  "secret",
		Site:      "mysite",
	}, res)
	require.NoError(t, err)
	return client
}

func TestSystemInfoReportsSiteVersion(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mysite/check_mk/api/1.0/version", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"site":"mysite","edition":"cre","versions":{"checkmk":"2.4.0p1"}}`))
	}))
	defer ts.Close()

	s := &ServerService{client: testClient(t, ts.URL, 5)}
	res := s.SystemInfo(context.Background())

	require.True(t, res.Success)
	assert.Empty(t, res.Warnings)
	data, ok := res.Data.(map[string]any)
	require.True(t, ok)
	version, ok := data["checkmk"].(*checkmk.VersionInfo)
	require.True(t, ok)
	assert.Equal(t, "cre", version.Edition)
	assert.Equal(t, "2.4.0p1", version.Versions.Checkmk)
}

func TestSystemInfoDegradesWhenBreakerOpen(t *testing.T) {
	client := testClient(t, "http://127.0.0.1:1", 1)

	// One failure trips the breaker for the system family.
	boom := errors.New("boom")
	_ = client.Resilience().Breaker("system").Execute(context.Background(),
		func(context.Context) error { return boom })
	require.Equal(t, resilience.StateOpen, client.Resilience().Breaker("system").State())

	s := &ServerService{client: client}
	res := s.SystemInfo(context.Background())

	require.True(t, res.Success, "an open breaker must degrade, not fail")
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "degraded")

	data, ok := res.Data.(map[string]any)
	require.True(t, ok)
	version, ok := data["checkmk"].(*checkmk.VersionInfo)
	require.True(t, ok)
	assert.Equal(t, "unknown", version.Edition)
}

func TestSystemInfoSurfacesAuthErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"title":"Unauthorized"}`))
	}))
	defer ts.Close()

	s := &ServerService{client: testClient(t, ts.URL, 5)}
	res := s.SystemInfo(context.Background())

	require.False(t, res.Success, "only an open breaker degrades; auth errors surface")
	require.NotNil(t, res.Error)
	assert.Equal(t, KindAuth, res.Error.Kind)
}
