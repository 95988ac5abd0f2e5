// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReferenceSyncs counts synchronisation passes by the action taken.
	ReferenceSyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paper_drafter_reference_sync_total",
			Help: "References block synchronisation passes",
		},
		[]string{"action"}, // none, created, updated, cleared, removed
	)

	// GenerationRequests counts text-generation calls.
	GenerationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paper_drafter_generation_requests_total",
			Help: "Text generation API calls",
		},
		[]string{"backend", "status"}, // status: success, error
	)

	// GenerationLatency observes text-generation call latency.
	GenerationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paper_drafter_generation_latency_seconds",
			Help:    "Text generation API latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"backend"},
	)
)

// RecordSync counts one synchronisation pass.
func RecordSync(action string) {
	ReferenceSyncs.WithLabelValues(action).Inc()
}

// RecordGeneration counts one generation call and its latency.
func RecordGeneration(backend string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	GenerationRequests.WithLabelValues(backend, status).Inc()
	GenerationLatency.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}
