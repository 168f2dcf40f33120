// Package metrics defines Prometheus metrics for opsboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "opsboard"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})
)

// Row fetch metrics.
var (
	FetchPagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_pages_total",
		Help:      "Total number of source pages fetched.",
	})

	FetchRowsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_rows_total",
		Help:      "Total number of rows retrieved from the source.",
	})

	FetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_errors_total",
		Help:      "Total number of failed page fetches.",
	})
)

// Aggregation metrics.
var (
	AggregationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "aggregation_duration_seconds",
		Help:      "Duration of dashboard aggregation passes in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"dashboard"})

	SnapshotRows = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "snapshot_rows",
		Help:      "Row count held by the current in-memory snapshot per dashboard.",
	}, []string{"dashboard"})

	SnapshotRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_refresh_total",
		Help:      "Total number of snapshot refresh runs by outcome.",
	}, []string{"dashboard", "outcome"})
)

// Health probe gauges.
var (
	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 if the last liveness probe succeeded, 0 otherwise.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 if the last readiness probe succeeded, 0 otherwise.",
	})
)
