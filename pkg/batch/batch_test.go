// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkmk-mcp/core/pkg/config"
	"github.com/checkmk-mcp/core/pkg/resilience"
)

func testExecutor() *Executor {
	return NewExecutor(config.BatchConfig{
		MaxConcurrent:  5,
		RateLimit:      1000,
		MaxRetries:     0,
		RetryBaseDelay: config.Duration(time.Millisecond),
	})
}

func TestRunAllItemsSucceed(t *testing.T) {
	e := testExecutor()
	items := []string{"a", "b", "c", "d"}

	var processed atomic.Int64
	res, err := Run(context.Background(), e, items, func(_ context.Context, _ string) error {
		processed.Add(1)
		return nil
	}, Options{})
	require.NoError(t, err)

	assert.NotEmpty(t, res.JobID)
	assert.Len(t, res.Items, 4)
	assert.Equal(t, int64(4), res.Progress.Succeeded)
	assert.Equal(t, int64(0), res.Progress.Failed)
	assert.Equal(t, int64(4), processed.Load())
	for i, item := range res.Items {
		assert.True(t, item.Success)
		assert.Equal(t, i, item.Index)
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	e := testExecutor()
	items := make([]int, 20)

	var inFlight, peak atomic.Int64
	_, err := Run(context.Background(), e, items, func(_ context.Context, _ int) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	}, Options{MaxConcurrent: 3, RateLimit: 10000})
	require.NoError(t, err)

	assert.LessOrEqual(t, peak.Load(), int64(3), "observed concurrency must not exceed MaxConcurrent")
}

func TestRunItemFailuresAreIsolated(t *testing.T) {
	e := testExecutor()
	items := []string{"good", "bad", "good"}

	res, err := Run(context.Background(), e, items, func(_ context.Context, item string) error {
		if item == "bad" {
			return errors.New("rejected")
		}
		return nil
	}, Options{})
	require.NoError(t, err)

	assert.Equal(t, int64(2), res.Progress.Succeeded)
	assert.Equal(t, int64(1), res.Progress.Failed)
	assert.False(t, res.Items[1].Success)
	assert.Equal(t, "rejected", res.Items[1].Error)
	assert.True(t, res.Items[0].Success)
	assert.True(t, res.Items[2].Success)
}

func TestRunRetriesTransientItemFailures(t *testing.T) {
	e := testExecutor()
	var attempts atomic.Int64

	res, err := Run(context.Background(), e, []string{"flaky"}, func(_ context.Context, _ string) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	}, Options{MaxRetries: 5, RetryBaseDelay: time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, int64(3), attempts.Load())
	assert.Equal(t, int64(1), res.Progress.Succeeded)
	assert.Equal(t, int64(2), res.Progress.Retried)
}

func TestRunDoesNotRetryPermanentFailures(t *testing.T) {
	e := testExecutor()
	var attempts atomic.Int64

	res, err := Run(context.Background(), e, []string{"invalid"}, func(_ context.Context, _ string) error {
		attempts.Add(1)
		return resilience.Permanent(errors.New("host already exists"))
	}, Options{MaxRetries: 5, RetryBaseDelay: time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, int64(1), attempts.Load())
	assert.Equal(t, int64(1), res.Progress.Failed)
	assert.Equal(t, int64(0), res.Progress.Retried)
}

func TestRunFailFastAbortsPendingItems(t *testing.T) {
	e := testExecutor()
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	var started atomic.Int64
	res, err := Run(context.Background(), e, items, func(_ context.Context, item int) error {
		started.Add(1)
		if item == 0 {
			return errors.New("first item failed")
		}
		time.Sleep(2 * time.Millisecond)
		return nil
	}, Options{MaxConcurrent: 1, RateLimit: 10000, FailFast: true})
	require.NoError(t, err)

	assert.Less(t, started.Load(), int64(50), "fail-fast must abort pending starts")
	assert.Greater(t, res.Progress.Failed, int64(0))
}

func TestRunCancelledContext(t *testing.T) {
	e := testExecutor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, e, []int{1, 2, 3}, func(context.Context, int) error {
		return nil
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Progress.Succeeded)
}
