// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

// Package requestid generates and propagates per-request correlation ids.
// Every inbound MCP call is stamped with a fresh id of the form "req_xxxxxx"
// (six hex digits); the id travels in the request context and is attached to
// every outbound Checkmk call via the X-Request-ID header.
package requestid

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

// Header is the HTTP header used to propagate the request id to Checkmk.
const Header = "X-Request-ID"

// Prefix is prepended to every generated id.
const Prefix = "req_"

type contextKey struct{}

// New generates a fresh request id: "req_" followed by six hex digits.
func New() string {
	var b [3]byte
	// rand.Read on crypto/rand never fails on supported platforms.
	_, _ = rand.Read(b[:])
	return Prefix + hex.EncodeToString(b[:])
}

// NewContext returns a copy of ctx carrying the given request id.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext retrieves the request id from the context. The boolean reports
// whether an id was present.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok
}

// Transport is an http.RoundTripper that injects the context's request id
// into outbound requests. Requests whose context carries no id are sent
// unmodified.
type Transport struct {
	// Base is the underlying round tripper. If nil, http.DefaultTransport
	// is used.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if id, ok := FromContext(req.Context()); ok {
		req = req.Clone(req.Context())
		req.Header.Set(Header, id)
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
