// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

// Package config defines the static configuration consumed by the server and
// its loader. Configuration is read from a YAML file, overlaid with
// CHECKMK_MCP_* environment variables, and validated before the server
// starts.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// HistoricalSource selects the data path for historical metrics.
type HistoricalSource string

const (
	// SourceRESTAPI serves historical metrics from the Checkmk REST API.
	SourceRESTAPI HistoricalSource = "rest_api"
	// SourceScraper is accepted for compatibility but unsupported in this
	// build; selecting it falls back to the REST API path at runtime.
	SourceScraper HistoricalSource = "scraper"
)

// Duration wraps time.Duration with YAML support for strings like "300ms",
// "30s" or "5m" as well as bare numbers, which are taken as seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = Duration(time.Duration(secs * float64(time.Second)))
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// AsDuration returns the wrapped time.Duration.
func (d Duration) AsDuration() time.Duration { return time.Duration(d) }

// CheckmkConfig holds the connection settings for the Checkmk site.
type CheckmkConfig struct {
	ServerURL  string `yaml:"server_url"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Site       string `yaml:"site"`
	VerifySSL  *bool  `yaml:"verify_ssl"`
	CACertPath string `yaml:"ca_cert_path"`
}

// VerifyTLS reports whether outbound TLS certificates must be verified.
// Verification defaults to on when the option is omitted.
func (c *CheckmkConfig) VerifyTLS() bool {
	return c.VerifySSL == nil || *c.VerifySSL
}

// CacheConfig tunes the in-memory LRU cache.
type CacheConfig struct {
	MaxSize         int      `yaml:"max_size"`
	DefaultTTL      Duration `yaml:"default_ttl"`
	CleanupInterval Duration `yaml:"cleanup_interval"`
}

// BatchConfig tunes the batch executor.
type BatchConfig struct {
	MaxConcurrent  int      `yaml:"max_concurrent"`
	RateLimit      float64  `yaml:"rate_limit"`
	MaxRetries     int      `yaml:"max_retries"`
	RetryBaseDelay Duration `yaml:"retry_base_delay"`
}

// StreamingConfig tunes paginated streaming.
type StreamingConfig struct {
	DefaultBatchSize int `yaml:"default_batch_size"`
}

// CircuitBreakerConfig tunes the per-endpoint-family circuit breakers.
type CircuitBreakerConfig struct {
	FailureThreshold int      `yaml:"failure_threshold"`
	RecoveryTimeout  Duration `yaml:"recovery_timeout"`
}

// RetryConfig tunes the REST client retry policy.
type RetryConfig struct {
	MaxRetries int      `yaml:"max_retries"`
	BaseDelay  Duration `yaml:"base_delay"`
	Jitter     bool     `yaml:"jitter"`
}

// RecoveryConfig groups the resilience settings.
type RecoveryConfig struct {
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
	Retry          RetryConfig          `yaml:"retry"`
}

// AdvancedConfig groups the cross-cutting tunables.
type AdvancedConfig struct {
	Cache     CacheConfig     `yaml:"cache"`
	Batch     BatchConfig     `yaml:"batch"`
	Streaming StreamingConfig `yaml:"streaming"`
	Recovery  RecoveryConfig  `yaml:"recovery"`
}

// HistoricalConfig selects the historical metric data path.
type HistoricalConfig struct {
	Source         HistoricalSource `yaml:"source"`
	CacheTTL       Duration         `yaml:"cache_ttl"`
	ScraperTimeout Duration         `yaml:"scraper_timeout"`
}

// FeaturesConfig gates optional Checkmk subsystems.
type FeaturesConfig struct {
	EventConsole         *bool `yaml:"event_console"`
	MetricsAPI           *bool `yaml:"metrics_api"`
	BusinessIntelligence *bool `yaml:"business_intelligence"`
}

func enabled(b *bool) bool { return b == nil || *b }

// EventConsoleEnabled reports whether the event console tools are active.
func (f *FeaturesConfig) EventConsoleEnabled() bool { return enabled(f.EventConsole) }

// MetricsAPIEnabled reports whether the metric tools are active.
func (f *FeaturesConfig) MetricsAPIEnabled() bool { return enabled(f.MetricsAPI) }

// BusinessIntelligenceEnabled reports whether the BI tools are active.
func (f *FeaturesConfig) BusinessIntelligenceEnabled() bool {
	return enabled(f.BusinessIntelligence)
}

// Config is the full static configuration of the server.
type Config struct {
	Checkmk    CheckmkConfig    `yaml:"checkmk"`
	Advanced   AdvancedConfig   `yaml:"advanced"`
	Historical HistoricalConfig `yaml:"historical"`
	Features   FeaturesConfig   `yaml:"features"`
}

// Default returns a Config populated with the documented defaults. The
// Checkmk connection settings have no usable defaults and must be supplied.
func Default() *Config {
	return &Config{
		Advanced: AdvancedConfig{
			Cache: CacheConfig{
				MaxSize:         1000,
				DefaultTTL:      Duration(300 * time.Second),
				CleanupInterval: Duration(60 * time.Second),
			},
			Batch: BatchConfig{
				MaxConcurrent:  5,
				RateLimit:      10,
				MaxRetries:     3,
				RetryBaseDelay: Duration(time.Second),
			},
			Streaming: StreamingConfig{
				DefaultBatchSize: 100,
			},
			Recovery: RecoveryConfig{
				CircuitBreaker: CircuitBreakerConfig{
					FailureThreshold: 5,
					RecoveryTimeout:  Duration(60 * time.Second),
				},
				Retry: RetryConfig{
					MaxRetries: 3,
					BaseDelay:  Duration(time.Second),
					Jitter:     true,
				},
			},
		},
		Historical: HistoricalConfig{
			Source:         SourceRESTAPI,
			CacheTTL:       Duration(300 * time.Second),
			ScraperTimeout: Duration(30 * time.Second),
		},
	}
}

// applyEnv overlays CHECKMK_MCP_* environment variables over the loaded
// configuration. Only the connection settings are overridable this way;
// tunables belong in the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("CHECKMK_MCP_SERVER_URL"); v != "" {
		c.Checkmk.ServerURL = v
	}
	if v := os.Getenv("CHECKMK_MCP_USERNAME"); v != "" {
		c.Checkmk.Username = v
	}
	if v := os.Getenv("CHECKMK_MCP_PASSWORD"); v != "" {
		c.Checkmk.Password = v
	}
	if v := os.Getenv("CHECKMK_MCP_SITE"); v != "" {
		c.Checkmk.Site = v
	}
}

// Validate checks the configuration for startup errors. A non-nil error here
// causes the process to exit non-zero before serving.
func (c *Config) Validate() error {
	if c.Checkmk.ServerURL == "" {
		return fmt.Errorf("checkmk.server_url is required")
	}
	u, err := url.Parse(c.Checkmk.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("checkmk.server_url %q is not a valid URL", c.Checkmk.ServerURL)
	}
	if c.Checkmk.Username == "" {
		return fmt.Errorf("checkmk.username is required")
	}
	if c.Checkmk.Password == "" {
		return fmt.Errorf("checkmk.password is required")
	}
	if c.Checkmk.Site == "" {
		return fmt.Errorf("checkmk.site is required")
	}
	if c.Advanced.Cache.MaxSize <= 0 {
		return fmt.Errorf("advanced.cache.max_size must be positive, got %d", c.Advanced.Cache.MaxSize)
	}
	if c.Advanced.Batch.MaxConcurrent <= 0 {
		return fmt.Errorf("advanced.batch.max_concurrent must be positive, got %d", c.Advanced.Batch.MaxConcurrent)
	}
	if c.Advanced.Recovery.CircuitBreaker.FailureThreshold <= 0 {
		return fmt.Errorf("advanced.recovery.circuit_breaker.failure_threshold must be positive")
	}
	switch c.Historical.Source {
	case SourceRESTAPI, SourceScraper:
	case "":
		c.Historical.Source = SourceRESTAPI
	default:
		return fmt.Errorf("historical.source must be one of %q, %q", SourceRESTAPI, SourceScraper)
	}
	return nil
}
