// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

// Package batch applies an operation to many items with bounded concurrency,
// a global start-rate limit, per-item retries, and observable progress.
package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/checkmk-mcp/core/pkg/config"
	"github.com/checkmk-mcp/core/pkg/logging"
	"github.com/checkmk-mcp/core/pkg/metrics"
	"github.com/checkmk-mcp/core/pkg/resilience"
)

// Progress carries the executor's monotonically non-decreasing counters. It
// may be read concurrently while the batch is running.
type Progress struct {
	total     int64
	attempted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	retried   atomic.Int64
}

// Snapshot is a point-in-time view of batch progress.
type Snapshot struct {
	Total     int64 `json:"total"`
	Attempted int64 `json:"attempted"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	Retried   int64 `json:"retried"`
}

// Snapshot returns the current counter values.
func (p *Progress) Snapshot() Snapshot {
	return Snapshot{
		Total:     p.total,
		Attempted: p.attempted.Load(),
		Succeeded: p.succeeded.Load(),
		Failed:    p.failed.Load(),
		Retried:   p.retried.Load(),
	}
}

// ItemResult records the outcome for a single batch item.
type ItemResult struct {
	Index   int    `json:"index"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Result aggregates a finished batch run.
type Result struct {
	JobID    string       `json:"job_id"`
	Items    []ItemResult `json:"items"`
	Progress Snapshot     `json:"progress"`
	Duration string       `json:"duration"`
}

// Operation is the per-item work function. Returning an error wrapped in
// resilience.PermanentError suppresses retries for that item.
type Operation[T any] func(ctx context.Context, item T) error

// Options configures a batch run. Zero values fall back to the configured
// defaults.
type Options struct {
	MaxConcurrent  int
	RateLimit      float64
	MaxRetries     int
	RetryBaseDelay time.Duration
	// FailFast aborts pending starts after the first item failure. In-flight
	// items run to completion.
	FailFast bool
}

// Executor runs batches with the limits from the advanced.batch config.
type Executor struct {
	defaults config.BatchConfig
}

// NewExecutor creates a batch executor with the given defaults.
func NewExecutor(cfg config.BatchConfig) *Executor {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 5
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = config.Duration(time.Second)
	}
	return &Executor{defaults: cfg}
}

func (e *Executor) withDefaults(opts Options) Options {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = e.defaults.MaxConcurrent
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = e.defaults.RateLimit
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	} else if opts.MaxRetries == 0 {
		opts.MaxRetries = e.defaults.MaxRetries
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = e.defaults.RetryBaseDelay.AsDuration()
	}
	return opts
}

// Run applies op to every item. Item failures do not cancel other items
// unless FailFast is set. Cancelling ctx aborts pending starts; items already
// in flight run to completion.
func Run[T any](ctx context.Context, e *Executor, items []T, op Operation[T], opts Options) (*Result, error) {
	opts = e.withDefaults(opts)
	start := time.Now()

	jobID := uuid.NewString()
	log := logging.GetLogger().With("jobID", jobID, "items", len(items))
	log.Info("Starting batch run", "maxConcurrent", opts.MaxConcurrent, "rateLimit", opts.RateLimit)
	metrics.IncrCounter([]string{"batch", "runs", "total"}, 1)
	defer metrics.MeasureSince([]string{"batch", "runs", "latency"}, start)

	runCtx := ctx
	var cancel context.CancelFunc
	if opts.FailFast {
		runCtx, cancel = context.WithCancel(ctx)
		defer cancel()
	}

	progress := &Progress{total: int64(len(items))}
	results := make([]ItemResult, len(items))
	var mu sync.Mutex

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	pool := pond.NewPool(opts.MaxConcurrent, pond.WithContext(runCtx))

	for i, item := range items {
		// The token bucket gates start-rate before the item ever reaches the
		// pool, so queued items do not consume tokens early.
		if err := limiter.Wait(runCtx); err != nil {
			mu.Lock()
			results[i] = ItemResult{Index: i, Error: "cancelled before start"}
			mu.Unlock()
			progress.failed.Add(1)
			continue
		}

		pool.Submit(func() {
			err := runItem(runCtx, item, op, opts, progress)

			mu.Lock()
			if err != nil {
				results[i] = ItemResult{Index: i, Error: err.Error()}
			} else {
				results[i] = ItemResult{Index: i, Success: true}
			}
			mu.Unlock()

			if err != nil {
				progress.failed.Add(1)
				metrics.IncrCounter([]string{"batch", "items", "failed"}, 1)
				if opts.FailFast {
					cancel()
				}
			} else {
				progress.succeeded.Add(1)
				metrics.IncrCounter([]string{"batch", "items", "succeeded"}, 1)
			}
		})
	}

	pool.StopAndWait()

	snapshot := progress.Snapshot()
	log.Info("Batch run finished", "succeeded", snapshot.Succeeded, "failed", snapshot.Failed, "retried", snapshot.Retried)
	return &Result{
		JobID:    jobID,
		Items:    results,
		Progress: snapshot,
		Duration: time.Since(start).String(),
	}, nil
}

// runItem executes one item with per-item exponential backoff.
func runItem[T any](ctx context.Context, item T, op Operation[T], opts Options, progress *Progress) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = opts.RetryBaseDelay
	bo.MaxElapsedTime = 0
	bo.Reset()

	var err error
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		progress.attempted.Add(1)
		err = op(ctx, item)
		if err == nil {
			return nil
		}

		var permanentErr *resilience.PermanentError
		if errors.As(err, &permanentErr) {
			return err
		}

		if attempt == opts.MaxRetries {
			return err
		}

		progress.retried.Add(1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(bo.NextBackOff()):
		}
	}
	return err
}
