// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package metrics holds the Prometheus collectors of the server. Each
// [Metrics] owns its registry, so tests can create as many as they need.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes of a GetValidAccessToken call.
const (
	RefreshNotNeeded     = "not_needed"
	RefreshConcurrent    = "refreshed_concurrently"
	RefreshSuccess       = "success"
	RefreshReauth        = "reauth_required"
	RefreshTransient     = "transient_failure"
	RefreshDecryptFailed = "decryption_failed"
)

// Operations and outcomes of calendar link changes.
const (
	OperationConnect    = "connect"
	OperationDisconnect = "disconnect"
	OperationRevoke     = "revoke"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// TokenRefreshes counts access token lookups by outcome.
	TokenRefreshes *prometheus.CounterVec
	// TokenRefreshDuration tracks provider refresh round trips.
	TokenRefreshDuration prometheus.Histogram
	// CalendarLinkOperations counts connect, disconnect and revoke calls.
	CalendarLinkOperations *prometheus.CounterVec
	// HTTPRequestsTotal counts handled requests by route pattern.
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTPRequestDuration tracks request latency by route pattern.
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		TokenRefreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calendar_token_requests_total",
				Help:      "Access token lookups by outcome",
			},
			[]string{"outcome"},
		),
		TokenRefreshDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "calendar_token_refresh_seconds",
				Help:      "Duration of provider token refresh calls",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		CalendarLinkOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calendar_link_operations_total",
				Help:      "Calendar connect, disconnect and revoke operations",
			},
			[]string{"operation", "outcome"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}

	registry.MustRegister(
		m.TokenRefreshes,
		m.TokenRefreshDuration,
		m.CalendarLinkOperations,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler returns the /metrics handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordTokenRequest(outcome string) {
	m.TokenRefreshes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRefreshDuration(d time.Duration) {
	m.TokenRefreshDuration.Observe(d.Seconds())
}

func (m *Metrics) RecordLinkOperation(operation string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.CalendarLinkOperations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) RecordHTTPRequest(route, method, status string, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
