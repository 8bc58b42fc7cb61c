// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

// Package checkmk is a typed façade over the Checkmk REST API (v1.0,
// Checkmk >= 2.4). Every request carries the context's request id in the
// X-Request-ID header; listing endpoints that accept query objects use POST
// with a JSON body per the 2.4 convention. Failures surface as the typed
// errors in errors.go and pass through the resilience manager's retry and
// per-endpoint-family circuit breakers.
package checkmk

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/checkmk-mcp/core/pkg/config"
	"github.com/checkmk-mcp/core/pkg/logging"
	"github.com/checkmk-mcp/core/pkg/metrics"
	"github.com/checkmk-mcp/core/pkg/requestid"
	"github.com/checkmk-mcp/core/pkg/resilience"
)

// Client talks to one Checkmk site.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	resilience *resilience.Manager
}

// NewClient builds a Client from the connection settings. The base URL is
// normalized to end with /check_mk/api/1.0.
func NewClient(cfg config.CheckmkConfig, res *resilience.Manager) (*Client, error) {
	base := strings.TrimRight(cfg.ServerURL, "/")
	if !strings.HasSuffix(base, "/check_mk/api/1.0") {
		base = fmt.Sprintf("%s/%s/check_mk/api/1.0", base, cfg.Site)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 10
	transport.MaxIdleConnsPerHost = 10
	transport.IdleConnTimeout = 300 * time.Second

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if !cfg.VerifyTLS() {
		tlsConfig.InsecureSkipVerify = true
	} else if cfg.CACertPath != "" {
		pem, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate %s: %w", cfg.CACertPath, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", cfg.CACertPath)
		}
		tlsConfig.RootCAs = pool
	}
	transport.TLSClientConfig = tlsConfig

	return &Client{
		baseURL:  base,
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Transport: &requestid.Transport{Base: transport},
			Timeout:   60 * time.Second,
		},
		resilience: res,
	}, nil
}

// request describes one REST call.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// etag, when set, is sent as If-Match.
	etag string
	// resource names the object for not-found errors.
	resource string
	// family keys the circuit breaker; derived from the path when empty.
	family string
}

// response carries the decoded body and selected headers.
type response struct {
	status int
	body   []byte
	etag   string
}

// family derives the circuit-breaker family from the request path, e.g.
// "/domain-types/host_config/..." -> "host_config".
func (r *request) breakerFamily() string {
	if r.family != "" {
		return r.family
	}
	parts := strings.Split(strings.TrimPrefix(r.path, "/"), "/")
	if len(parts) >= 2 && (parts[0] == "domain-types" || parts[0] == "objects") {
		return parts[1]
	}
	return "api"
}

// do executes the request under the resilience policies and decodes a
// successful response into out when out is non-nil.
func (c *Client) do(ctx context.Context, req *request, out any) (*response, error) {
	family := req.breakerFamily()
	start := time.Now()
	metrics.IncrCounter([]string{"checkmk", "requests", "total"}, 1)
	defer metrics.MeasureSince([]string{"checkmk", "requests", "latency"}, start)

	var resp *response
	err := c.resilience.Execute(ctx, family, func(ctx context.Context) error {
		var innerErr error
		resp, innerErr = c.doOnce(ctx, req)
		return innerErr
	})
	if err != nil {
		metrics.IncrCounter([]string{"checkmk", "requests", "errors"}, 1)
		return nil, err
	}

	if out != nil && len(resp.body) > 0 {
		if err := json.Unmarshal(resp.body, out); err != nil {
			return nil, resilience.Permanent(fmt.Errorf("failed to decode %s response: %w", req.path, err))
		}
	}
	return resp, nil
}

// doOnce performs a single HTTP round trip and classifies the outcome.
func (c *Client) doOnce(ctx context.Context, req *request) (*response, error) {
	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var bodyReader io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return nil, resilience.Permanent(fmt.Errorf("failed to encode request body: %w", err))
		}
		bodyReader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, bodyReader)
	if err != nil {
		return nil, resilience.Permanent(err)
	}
	httpReq.SetBasicAuth(c.username, c.password)
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.etag != "" {
		httpReq.Header.Set("If-Match", req.etag)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &TimeoutError{Err: err}
		}
		if ctx.Err() != nil {
			// Cancelled calls must not be retried.
			return nil, resilience.Permanent(ctx.Err())
		}
		return nil, &NetworkError{Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, 32<<20))
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		typed := classifyStatus(httpResp.StatusCode, req.resource, restErrorMessage(body))
		var serverErr *ServerError
		if errors.As(typed, &serverErr) {
			// Retryable: surface as-is so retry and breaker engage.
			return nil, typed
		}
		return nil, resilience.Permanent(typed)
	}

	logging.GetLogger().DebugContext(ctx, "Checkmk request finished",
		"method", req.method, "path", req.path, "status", httpResp.StatusCode)

	return &response{
		status: httpResp.StatusCode,
		body:   body,
		etag:   httpResp.Header.Get("ETag"),
	}, nil
}

// restErrorMessage extracts the human-readable message from a Checkmk
// problem+json error body, falling back to the raw body.
func restErrorMessage(body []byte) string {
	var problem struct {
		Title  string         `json:"title"`
		Detail string         `json:"detail"`
		Fields map[string]any `json:"fields"`
	}
	if err := json.Unmarshal(body, &problem); err == nil {
		switch {
		case problem.Detail != "" && problem.Title != "":
			return problem.Title + ": " + problem.Detail
		case problem.Title != "":
			return problem.Title
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 500 {
		msg = msg[:500]
	}
	return msg
}

// Resilience exposes the client's resilience manager, e.g. for breaker
// introspection in the server-metrics tool.
func (c *Client) Resilience() *resilience.Manager {
	return c.resilience
}
