// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/checkmk-mcp/core/pkg/config"
)

// Retry implements a retry policy with exponential backoff for failed
// operations. Errors wrapped in PermanentError are never retried.
type Retry struct {
	config config.RetryConfig
}

// NewRetry creates a new Retry instance with the given configuration.
func NewRetry(cfg config.RetryConfig) *Retry {
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = config.Duration(time.Second)
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Retry{config: cfg}
}

// Execute runs the provided work function, retrying transient failures up to
// MaxRetries times with exponential backoff. When jitter is enabled the delay
// is randomized around the exponential schedule; otherwise the schedule is
// deterministic.
func (r *Retry) Execute(ctx context.Context, work func(context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.config.BaseDelay.AsDuration()
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0
	if !r.config.Jitter {
		bo.RandomizationFactor = 0
	}
	bo.Reset()

	var err error
	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = work(ctx)
		if err == nil {
			return nil
		}

		var permanentErr *PermanentError
		if errors.As(err, &permanentErr) {
			return err
		}

		// A short-circuited call will not succeed within this retry loop;
		// the breaker owns the recovery schedule.
		var openErr *CircuitBreakerOpenError
		if errors.As(err, &openErr) {
			return err
		}

		if attempt == r.config.MaxRetries {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(bo.NextBackOff()):
		}
	}
	return err
}
