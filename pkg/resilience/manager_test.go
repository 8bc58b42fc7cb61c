// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkmk-mcp/core/pkg/config"
)

func testManager(threshold, maxRetries int) *Manager {
	return NewManager(config.RecoveryConfig{
		Retry: config.RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  config.Duration(time.Millisecond),
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			FailureThreshold: threshold,
			RecoveryTimeout:  config.Duration(time.Minute),
		},
	})
}

func TestManagerBreakersArePerFamily(t *testing.T) {
	m := testManager(2, 0)
	boom := errors.New("boom")
	fail := func(context.Context) error { return boom }
	ok := func(context.Context) error { return nil }

	require.Error(t, m.Execute(context.Background(), "events", fail))
	require.Error(t, m.Execute(context.Background(), "events", fail))
	assert.Equal(t, StateOpen, m.Breaker("events").State())

	// Host calls stay healthy while the event family is open.
	require.NoError(t, m.Execute(context.Background(), "hosts", ok))
	assert.Equal(t, StateClosed, m.Breaker("hosts").State())

	var open *CircuitBreakerOpenError
	require.ErrorAs(t, m.Execute(context.Background(), "events", ok), &open)
}

func TestManagerRetryStopsWhenBreakerOpens(t *testing.T) {
	m := testManager(2, 10)
	boom := errors.New("boom")
	attempts := 0

	err := m.Execute(context.Background(), "hosts", func(context.Context) error {
		attempts++
		return boom
	})
	// The breaker opens on the second failure; the third retry attempt is
	// short-circuited and stops the retry loop.
	var open *CircuitBreakerOpenError
	require.ErrorAs(t, err, &open)
	assert.Equal(t, 2, attempts)
}

func TestManagerNilExecutesDirectly(t *testing.T) {
	var m *Manager
	called := false
	require.NoError(t, m.Execute(context.Background(), "hosts", func(context.Context) error {
		called = true
		return nil
	}))
	assert.True(t, called)
}

func TestManagerTimeoutBoundsWork(t *testing.T) {
	m := testManager(5, 0)
	m.SetTimeout(20 * time.Millisecond)

	err := m.Execute(context.Background(), "hosts", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecuteWithFallbackOnOpenBreaker(t *testing.T) {
	m := testManager(1, 0)
	boom := errors.New("boom")

	_, err := ExecuteWithFallback(context.Background(), m, "version",
		func(context.Context) (string, error) { return "", boom },
		nil)
	require.ErrorIs(t, err, boom)

	got, err := ExecuteWithFallback(context.Background(), m, "version",
		func(context.Context) (string, error) { return "live", nil },
		func(context.Context) (string, error) { return "degraded", nil })
	require.NoError(t, err)
	assert.Equal(t, "degraded", got, "open breaker must yield the fallback value")
}

func TestExecuteWithFallbackPassesThroughSuccess(t *testing.T) {
	m := testManager(5, 0)
	got, err := ExecuteWithFallback(context.Background(), m, "version",
		func(context.Context) (string, error) { return "live", nil },
		func(context.Context) (string, error) { return "degraded", nil })
	require.NoError(t, err)
	assert.Equal(t, "live", got)
}
