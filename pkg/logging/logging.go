// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/checkmk-mcp/core/pkg/requestid"
)

var (
	once          sync.Once
	defaultLogger *slog.Logger
)

// ForTestsOnlyResetLogger is for use in tests to reset the `sync.Once`
// mechanism. This allows the global logger to be re-initialized in different
// test cases. This function should not be used in production code.
func ForTestsOnlyResetLogger() {
	once = sync.Once{}
	defaultLogger = nil
}

// Init initializes the application's global logger with a specific log level
// and output destination. This function is designed to be called only once,
// typically at the start of the application, to ensure a consistent logging
// setup.
//
// Parameters:
//   - level: The minimum log level to be recorded (e.g., `slog.LevelInfo`).
//   - output: The `io.Writer` to which log entries will be written (e.g.,
//     `os.Stderr`).
func Init(level slog.Level, output io.Writer) {
	once.Do(func() {
		defaultLogger = slog.New(newRequestIDHandler(slog.NewTextHandler(output, &slog.HandlerOptions{
			Level: level,
		})))
	})
}

// GetLogger returns the shared global logger instance. If the logger has not yet
// been initialized through a call to `Init`, this function will initialize it
// with default settings: logging to `os.Stderr` at `slog.LevelInfo`.
//
// Returns the global `*slog.Logger` instance.
func GetLogger() *slog.Logger {
	once.Do(func() {
		defaultLogger = slog.New(newRequestIDHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})))
	})
	return defaultLogger
}

// requestIDHandler decorates every record with the request id carried by the
// logging context, if any. Services log through the global logger without
// threading the id explicitly.
type requestIDHandler struct {
	inner slog.Handler
}

func newRequestIDHandler(inner slog.Handler) slog.Handler {
	return &requestIDHandler{inner: inner}
}

// Enabled implements slog.Handler.
func (h *requestIDHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *requestIDHandler) Handle(ctx context.Context, rec slog.Record) error {
	if id, ok := requestid.FromContext(ctx); ok {
		rec = rec.Clone()
		rec.AddAttrs(slog.String("request_id", id))
	}
	return h.inner.Handle(ctx, rec)
}

// WithAttrs implements slog.Handler.
func (h *requestIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &requestIDHandler{inner: h.inner.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *requestIDHandler) WithGroup(name string) slog.Handler {
	return &requestIDHandler{inner: h.inner.WithGroup(name)}
}
