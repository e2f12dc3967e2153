// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics declares the Prometheus collectors exported on /metrics.

Collectors are registered once against the default registry through promauto.
Packages record into them directly; there is no wrapper type to thread through
constructors.
*/
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultNotFound = "not_found"
)

var (
	// HTTPRequests counts finished HTTP requests by route pattern and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcana_http_requests_total",
		Help: "Total number of HTTP requests by route and status class",
	}, []string{"method", "route", "status"})

	// DocumentOps counts remote document store calls by operation and result.
	DocumentOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcana_document_ops_total",
		Help: "Remote document store calls by operation and result",
	}, []string{"operation", "result"})

	// DocumentLatency records remote document store latency by operation.
	DocumentLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arcana_document_latency_seconds",
		Help:    "Remote document store latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// CacheOps counts local cache slot operations by operation and result.
	CacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcana_cache_ops_total",
		Help: "Local cache slot operations by operation and result",
	}, []string{"operation", "result"})

	// FetchDeduplicated counts profile fetches skipped because one was already in flight.
	FetchDeduplicated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arcana_profile_fetch_deduplicated_total",
		Help: "Profile fetches skipped because another fetch was in flight",
	})

	// HistoryRollbacks counts optimistic history mutations undone after a failed write.
	HistoryRollbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcana_history_rollbacks_total",
		Help: "Optimistic history mutations rolled back after a failed remote write",
	}, []string{"history"})

	// CompletionRequests counts completion calls by reading kind and result.
	CompletionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcana_completion_requests_total",
		Help: "Completion requests by reading kind and result",
	}, []string{"kind", "result"})

	// CompletionLatency records completion latency by reading kind.
	CompletionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arcana_completion_latency_seconds",
		Help:    "Completion latency in seconds",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
	}, []string{"kind"})

	// ActiveWorkspaces is the number of signed-in sessions held in memory.
	ActiveWorkspaces = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arcana_active_workspaces",
		Help: "Number of signed-in sessions held in memory",
	})

	// SessionEventsDropped counts session events not delivered to a slow subscriber.
	SessionEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arcana_session_events_dropped_total",
		Help: "Session events dropped because a subscriber buffer was full",
	})

	// EventStreams is the number of open session event websockets.
	EventStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arcana_session_event_streams",
		Help: "Number of open session event websocket connections",
	})
)

// TrackDocument returns a function that records the latency of one document
// call when invoked, e.g. via defer.
func TrackDocument(operation string) func() {
	start := time.Now()
	return func() {
		DocumentLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// Result maps an error to the result label.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
