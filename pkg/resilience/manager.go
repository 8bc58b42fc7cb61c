// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

// Package resilience provides retry, circuit-breaker, timeout, and fallback
// policies for calls against the Checkmk REST API. A Manager keeps one
// circuit breaker per endpoint family so that a failing subsystem (for
// example the event console) does not open the breaker for host operations.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/checkmk-mcp/core/pkg/config"
)

// Manager orchestrates resilience features: circuit breakers keyed by
// endpoint family, a shared retry policy, and an optional per-call timeout.
type Manager struct {
	mu       sync.Mutex
	breakers map[string]*CircuitBreaker

	retry   *Retry
	timeout *Timeout

	cbConfig config.CircuitBreakerConfig
}

// NewManager creates a new Manager from the recovery configuration.
func NewManager(cfg config.RecoveryConfig) *Manager {
	return &Manager{
		breakers: make(map[string]*CircuitBreaker),
		retry:    NewRetry(cfg.Retry),
		cbConfig: cfg.CircuitBreaker,
	}
}

// SetTimeout installs a per-operation timeout applied around retries.
func (m *Manager) SetTimeout(d time.Duration) {
	m.timeout = NewTimeout(d)
}

// Breaker returns the circuit breaker for the given endpoint family,
// creating it on first use. Breakers are process-long.
func (m *Manager) Breaker(family string) *CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()
	cb, ok := m.breakers[family]
	if !ok {
		cb = NewCircuitBreaker(m.cbConfig)
		m.breakers[family] = cb
	}
	return cb
}

// Execute wraps the given work with timeout, retry, and the endpoint family's
// circuit breaker, outermost first. The retry wraps the breaker, so a breaker
// that opens mid-sequence stops further attempts.
func (m *Manager) Execute(ctx context.Context, family string, work func(context.Context) error) error {
	if m == nil {
		return work(ctx)
	}

	run := func(ctx context.Context) error {
		return m.retry.Execute(ctx, func(ctx context.Context) error {
			return m.Breaker(family).Execute(ctx, work)
		})
	}

	if m.timeout != nil {
		return m.timeout.Execute(ctx, run)
	}
	return run(ctx)
}

// Fallback produces a degraded value when the circuit for a dependency is
// open. It is registered by callers for idempotent reads only.
type Fallback[T any] func(ctx context.Context) (T, error)

// ExecuteWithFallback runs work under the family's resilience policies and,
// when the call is short-circuited by an open breaker, returns the fallback
// value instead of the error.
func ExecuteWithFallback[T any](ctx context.Context, m *Manager, family string, work func(context.Context) (T, error), fallback Fallback[T]) (T, error) {
	var result T
	err := m.Execute(ctx, family, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = work(ctx)
		return innerErr
	})
	if err != nil {
		var openErr *CircuitBreakerOpenError
		if errors.As(err, &openErr) && fallback != nil {
			return fallback(ctx)
		}
		return result, err
	}
	return result, nil
}
