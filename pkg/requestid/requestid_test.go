// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormat(t *testing.T) {
	re := regexp.MustCompile(`^req_[0-9a-f]{6}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := New()
		assert.Regexp(t, re, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 1, "ids should not collide constantly")
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := NewContext(context.Background(), "req_abc123")
	id, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "req_abc123", id)
}

func TestTransportInjectsHeader(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get(Header)
	}))
	defer srv.Close()

	client := &http.Client{Transport: &Transport{}}

	ctx := NewContext(context.Background(), "req_abc123")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "req_abc123", gotHeader)

	// Without an id in the context, the request goes out unmodified.
	req, err = http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, gotHeader)
}
