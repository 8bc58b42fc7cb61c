// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/armon/go-metrics"
	"github.com/armon/go-metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	initOnce sync.Once
	inmem    *metrics.InmemSink
)

// Initialize prepares the metrics system with a fanout of an in-memory sink
// and a Prometheus sink. The in-memory sink backs the get_server_metrics tool
// snapshot; the Prometheus sink is exposed on the /metrics endpoint when the
// metrics listener is enabled.
func Initialize() error {
	var err error
	initOnce.Do(func() {
		var promSink *prometheus.PrometheusSink
		promSink, err = prometheus.NewPrometheusSink()
		if err != nil {
			return
		}
		inmem = metrics.NewInmemSink(10*time.Second, 5*time.Minute)

		conf := metrics.DefaultConfig("checkmk_mcp")
		conf.EnableHostname = false

		_, err = metrics.NewGlobal(conf, metrics.FanoutSink{inmem, promSink})
	})
	return err
}

// Handler returns an http.Handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartServer starts an HTTP server to expose the metrics.
func StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return server.ListenAndServe()
}

// SetGauge sets the value of a gauge.
func SetGauge(name []string, val float32) {
	metrics.SetGauge(name, val)
}

// IncrCounter increments a counter.
func IncrCounter(name []string, val float32) {
	metrics.IncrCounter(name, val)
}

// MeasureSince measures the time since a given start time and records it.
func MeasureSince(name []string, start time.Time) {
	metrics.MeasureSince(name, start)
}

// Snapshot returns the most recent in-memory metric intervals, newest last.
// Returns nil when Initialize has not been called.
func Snapshot() []*metrics.IntervalMetrics {
	if inmem == nil {
		return nil
	}
	return inmem.Data()
}
