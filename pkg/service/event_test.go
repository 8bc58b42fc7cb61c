// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkmk-mcp/core/pkg/checkmk"
)

func TestEventListResultEmptyIsSuccess(t *testing.T) {
	res := eventListResult(context.Background(), nil)

	require.True(t, res.Success, "an empty event list is a success, not an error")
	data := res.Data.(map[string]any)
	assert.Equal(t, 0, data["count"])
	assert.Equal(t, "no events", data["message"])
}

func TestEventListResultWithEvents(t *testing.T) {
	events := []checkmk.Event{
		{ID: "42", HostName: "web01", State: 2, Phase: "open", Text: "link down"},
	}
	res := eventListResult(context.Background(), events)

	require.True(t, res.Success)
	data := res.Data.(map[string]any)
	assert.Equal(t, 1, data["count"])
	assert.NotContains(t, data, "message")
}

func TestEventServiceFeatureGate(t *testing.T) {
	s := &EventService{enabled: false}
	ctx := context.Background()

	for name, res := range map[string]*Result{
		"list service events": s.ListServiceEvents(ctx, "web01", "CPU load", 10),
		"list host events":    s.ListHostEvents(ctx, "web01", 10),
		"recent critical":     s.RecentCritical(ctx, 10),
		"acknowledge":         s.Acknowledge(ctx, "42", "seen"),
		"search":              s.Search(ctx, "link down", 10),
	} {
		require.NotNil(t, res, name)
		assert.False(t, res.Success, name)
		require.NotNil(t, res.Error, name)
		assert.Equal(t, KindDisabled, res.Error.Kind, name)
	}
}

func TestEventServiceAcknowledgeRequiresEventID(t *testing.T) {
	s := &EventService{enabled: true}

	res := s.Acknowledge(context.Background(), "", "seen")
	require.False(t, res.Success)
	assert.Equal(t, KindValidation, res.Error.Kind)
}
