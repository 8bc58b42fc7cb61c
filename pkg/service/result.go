// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

// Package service hosts the domain facades backing the MCP tools. Each
// facade composes the Checkmk client with caching, streaming, batching, and
// recovery, and returns a uniform Result envelope.
package service

import (
	"context"
	"errors"
	"regexp"

	"github.com/checkmk-mcp/core/pkg/checkmk"
	"github.com/checkmk-mcp/core/pkg/logging"
	"github.com/checkmk-mcp/core/pkg/requestid"
	"github.com/checkmk-mcp/core/pkg/resilience"
)

// ErrorKind classifies a failed Result for the client.
type ErrorKind string

// Error kinds surfaced in tool responses.
const (
	KindValidation ErrorKind = "validation_error"
	KindAuth       ErrorKind = "authorization_error"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindUpstream   ErrorKind = "upstream_error"
	KindCancelled  ErrorKind = "cancelled"
	KindDisabled   ErrorKind = "feature_disabled"
	KindInternal   ErrorKind = "internal_error"
)

// ResultError is the structured error half of a Result.
type ResultError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Result is the uniform envelope every facade operation returns.
type Result struct {
	Success   bool         `json:"success"`
	RequestID string       `json:"request_id,omitempty"`
	Data      any          `json:"data,omitempty"`
	Error     *ResultError `json:"error,omitempty"`
	Warnings  []string     `json:"warnings,omitempty"`
}

func contextRequestID(ctx context.Context) string {
	id, _ := requestid.FromContext(ctx)
	return id
}

// OK builds a successful Result.
func OK(ctx context.Context, data any, warnings ...string) *Result {
	return &Result{
		Success:   true,
		RequestID: contextRequestID(ctx),
		Data:      data,
		Warnings:  warnings,
	}
}

// Fail classifies err into a Result. Messages are sanitized; stack traces
// never leave the process.
func Fail(ctx context.Context, err error) *Result {
	kind := classifyError(ctx, err)
	return &Result{
		Success:   false,
		RequestID: contextRequestID(ctx),
		Error: &ResultError{
			Kind:    kind,
			Message: Sanitize(err.Error()),
		},
	}
}

// Disabled reports a feature-gated operation without touching upstream.
func Disabled(ctx context.Context, feature string) *Result {
	return &Result{
		Success:   false,
		RequestID: contextRequestID(ctx),
		Error: &ResultError{
			Kind:    KindDisabled,
			Message: feature + " is disabled by configuration",
		},
	}
}

func classifyError(ctx context.Context, err error) ErrorKind {
	var (
		validation *checkmk.ValidationError
		auth       *checkmk.AuthError
		notFound   *checkmk.NotFoundError
		conflict   *checkmk.ConflictError
		network    *checkmk.NetworkError
		timeout    *checkmk.TimeoutError
		server     *checkmk.ServerError
		open       *resilience.CircuitBreakerOpenError
	)
	switch {
	case errors.As(err, &validation):
		return KindValidation
	case errors.As(err, &auth):
		return KindAuth
	case errors.As(err, &notFound):
		return KindNotFound
	case errors.As(err, &conflict):
		return KindConflict
	case errors.As(err, &open), errors.As(err, &network),
		errors.As(err, &timeout), errors.As(err, &server):
		return KindUpstream
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		logging.GetLogger().ErrorContext(ctx, "Unclassified error", "error", err)
		return KindInternal
	}
}

// homePathPattern matches absolute paths into user home directories.
var homePathPattern = regexp.MustCompile(`(/home/|/Users/)[^\s:]+`)

const maxErrorLength = 500

// Sanitize scrubs home-directory paths from a message and truncates it.
func Sanitize(message string) string {
	message = homePathPattern.ReplaceAllString(message, "[path]")
	if len(message) > maxErrorLength {
		message = message[:maxErrorLength] + "..."
	}
	return message
}
