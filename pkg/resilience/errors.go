// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package resilience

// PermanentError is an error that should not be retried. Wrapping an error in
// PermanentError makes the retry policy and the circuit breaker pass it
// through without counting it as a transient failure.
type PermanentError struct {
	Err error
}

// Error returns the error message.
func (e *PermanentError) Error() string {
	if e.Err == nil {
		return "permanent error"
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps err so that it is never retried. A nil err returns nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// CircuitBreakerOpenError is returned when the circuit breaker is in the Open
// state and the call was short-circuited without contacting upstream.
type CircuitBreakerOpenError struct{}

// Error returns the error message for a CircuitBreakerOpenError.
func (e *CircuitBreakerOpenError) Error() string {
	return "circuit breaker is open"
}
