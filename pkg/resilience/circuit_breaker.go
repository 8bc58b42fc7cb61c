// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/checkmk-mcp/core/pkg/config"
)

// State represents the current state of the circuit breaker.
type State int

const (
	// StateClosed represents the state where the circuit breaker allows requests to pass through.
	StateClosed State = iota
	// StateOpen represents the state where the circuit breaker blocks requests immediately.
	StateOpen
	// StateHalfOpen represents the state where the circuit breaker allows a single trial request to test if the dependency has recovered.
	StateHalfOpen
)

// String returns the symbolic name of the state.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// CircuitBreaker implements the circuit breaker pattern. It prevents the
// application from performing operations that are likely to fail. After
// FailureThreshold consecutive failures the breaker opens; after
// RecoveryTimeout it permits exactly one trial call.
type CircuitBreaker struct {
	mutex sync.Mutex

	state        State
	failures     int
	openTime     time.Time
	halfOpenHits int

	config config.CircuitBreakerConfig
}

// NewCircuitBreaker creates a new CircuitBreaker with the given configuration.
func NewCircuitBreaker(cfg config.CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = config.Duration(60 * time.Second)
	}
	return &CircuitBreaker{
		config: cfg,
		state:  StateClosed,
	}
}

// State returns the breaker's current state, accounting for recovery-timeout
// expiry.
func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	if cb.state == StateOpen && time.Since(cb.openTime) > cb.config.RecoveryTimeout.AsDuration() {
		return StateHalfOpen
	}
	return cb.state
}

// Execute runs the provided work function. If the circuit breaker is open, it
// returns a CircuitBreakerOpenError immediately. If the work function fails,
// it tracks the failure and may trip the breaker.
func (cb *CircuitBreaker) Execute(ctx context.Context, work func(context.Context) error) error {
	cb.mutex.Lock()

	if cb.state == StateOpen {
		if time.Since(cb.openTime) > cb.config.RecoveryTimeout.AsDuration() {
			cb.state = StateHalfOpen
			cb.halfOpenHits = 0
		} else {
			cb.mutex.Unlock()
			return &CircuitBreakerOpenError{}
		}
	}

	if cb.state == StateHalfOpen {
		// HALF_OPEN admits exactly one trial call.
		if cb.halfOpenHits >= 1 {
			cb.mutex.Unlock()
			return &CircuitBreakerOpenError{}
		}
		cb.halfOpenHits++
	}

	cb.mutex.Unlock()

	err := work(ctx)
	if err != nil {
		var permanentErr *PermanentError
		if errors.As(err, &permanentErr) {
			return err
		}

		cb.mutex.Lock()
		cb.onFailure()
		cb.mutex.Unlock()
		return err
	}

	cb.mutex.Lock()
	cb.onSuccess()
	cb.mutex.Unlock()
	return nil
}

func (cb *CircuitBreaker) onSuccess() {
	if cb.state == StateHalfOpen {
		cb.state = StateClosed
		cb.halfOpenHits = 0
	}
	cb.failures = 0
}

func (cb *CircuitBreaker) onFailure() {
	if cb.state == StateOpen {
		return
	}

	if cb.state == StateHalfOpen {
		cb.state = StateOpen
		cb.openTime = time.Now()
		return
	}

	cb.failures++
	if cb.failures >= cb.config.FailureThreshold {
		cb.state = StateOpen
		cb.openTime = time.Now()
	}
}
