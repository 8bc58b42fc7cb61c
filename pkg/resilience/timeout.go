// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"time"
)

// Timeout implements a per-operation timeout policy.
type Timeout struct {
	duration time.Duration
}

// NewTimeout creates a new Timeout instance with the given duration.
func NewTimeout(duration time.Duration) *Timeout {
	return &Timeout{duration: duration}
}

// Execute runs the provided work function under a deadline derived from ctx.
func (t *Timeout) Execute(ctx context.Context, work func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.duration)
	defer cancel()
	return work(ctx)
}
