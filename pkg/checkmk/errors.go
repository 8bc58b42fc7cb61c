// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package checkmk

import (
	"fmt"
	"net/http"
)

// NetworkError indicates the request never produced an HTTP response.
// Network errors are retryable.
type NetworkError struct {
	Err error
}

// Error returns the error message.
func (e *NetworkError) Error() string { return fmt.Sprintf("network error: %v", e.Err) }

// Unwrap returns the wrapped error.
func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError indicates the request exceeded its deadline.
type TimeoutError struct {
	Err error
}

// Error returns the error message.
func (e *TimeoutError) Error() string { return fmt.Sprintf("timeout: %v", e.Err) }

// Unwrap returns the wrapped error.
func (e *TimeoutError) Unwrap() error { return e.Err }

// AuthError indicates a 401 or 403 from Checkmk. Never retried.
type AuthError struct {
	StatusCode int
	Message    string
}

// Error returns the error message.
func (e *AuthError) Error() string {
	return fmt.Sprintf("authorization failed (HTTP %d): %s", e.StatusCode, e.Message)
}

// NotFoundError indicates a 404 for a resource.
type NotFoundError struct {
	Resource string
	Message  string
}

// Error returns the error message.
func (e *NotFoundError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.Message)
	}
	return fmt.Sprintf("not found: %s", e.Message)
}

// ConflictError indicates a 412 etag mismatch on an optimistic update.
type ConflictError struct {
	Message string
}

// Error returns the error message.
func (e *ConflictError) Error() string { return fmt.Sprintf("etag conflict: %s", e.Message) }

// ValidationError indicates Checkmk rejected the request body (400/422).
type ValidationError struct {
	StatusCode int
	Message    string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (HTTP %d): %s", e.StatusCode, e.Message)
}

// ServerError indicates a 5xx or 429 from Checkmk. Retryable.
type ServerError struct {
	StatusCode int
	Message    string
}

// Error returns the error message.
func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (HTTP %d): %s", e.StatusCode, e.Message)
}

// classifyStatus converts a non-2xx response into a typed error. Retryability
// follows from the type: ServerError and NetworkError retry, everything else
// is permanent.
func classifyStatus(statusCode int, resource, message string) error {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &AuthError{StatusCode: statusCode, Message: message}
	case statusCode == http.StatusNotFound:
		return &NotFoundError{Resource: resource, Message: message}
	case statusCode == http.StatusPreconditionFailed:
		return &ConflictError{Message: message}
	case statusCode == http.StatusTooManyRequests:
		return &ServerError{StatusCode: statusCode, Message: message}
	case statusCode >= 500:
		return &ServerError{StatusCode: statusCode, Message: message}
	default:
		return &ValidationError{StatusCode: statusCode, Message: message}
	}
}
