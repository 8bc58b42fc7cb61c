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

func testRetry(maxRetries int) *Retry {
	return NewRetry(config.RetryConfig{
		MaxRetries: maxRetries,
		BaseDelay:  config.Duration(time.Millisecond),
	})
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	r := testRetry(3)
	attempts := 0
	err := r.Execute(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	r := testRetry(2)
	boom := errors.New("still failing")
	attempts := 0
	err := r.Execute(context.Background(), func(context.Context) error {
		attempts++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, attempts, "initial attempt plus two retries")
}

func TestRetryPassesThroughPermanentErrors(t *testing.T) {
	r := testRetry(5)
	boom := errors.New("bad request")
	attempts := 0
	err := r.Execute(context.Background(), func(context.Context) error {
		attempts++
		return Permanent(boom)
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts, "permanent errors must not be retried")
}

func TestRetryPassesThroughOpenBreaker(t *testing.T) {
	r := testRetry(5)
	attempts := 0
	err := r.Execute(context.Background(), func(context.Context) error {
		attempts++
		return &CircuitBreakerOpenError{}
	})
	var open *CircuitBreakerOpenError
	require.ErrorAs(t, err, &open)
	assert.Equal(t, 1, attempts, "retrying against an open breaker is pointless")
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	r := testRetry(10)
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := r.Execute(ctx, func(context.Context) error {
		attempts++
		cancel()
		return errors.New("transient")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestPermanentNilIsNil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
