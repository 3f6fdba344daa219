// Package metrics defines and registers all custom Prometheus metrics for the
// SFLA tracker API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sfla"

// ── Status check metrics ──────────────────────────────────────────────────────

// ChecksProcessedTotal counts status checks that completed processing.
// Label:
//   - status: the status applied by the check (e.g. "ok", "issue")
var ChecksProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checks_processed_total",
		Help:      "Total number of status checks successfully processed.",
	},
	[]string{"status"},
)

// ChecksErrorsTotal counts status checks that failed processing.
// Label:
//   - reason: short description of the failure (e.g. "apply_failed", "invalid_status")
var ChecksErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checks_errors_total",
		Help:      "Total number of status checks that failed processing.",
	},
	[]string{"reason"},
)

// ChecksSupersededTotal counts checks dropped by the last-write-wins guard.
var ChecksSupersededTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checks_superseded_total",
		Help:      "Total number of status checks dropped because a newer request had already been applied.",
	},
)

// ChecksQueueDepth tracks the current number of checks waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ChecksQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "checks_queue_depth",
		Help:      "Current number of status checks pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// CheckProcessingDuration measures how long a single check takes to process end-to-end.
// Label:
//   - status: the resulting site status, or "error" on failure
var CheckProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "check_processing_duration_seconds",
		Help:      "Duration of status check processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"status"},
)

// ── Sync metrics ──────────────────────────────────────────────────────────────

// SitesSyncedTotal counts site records written during KML sync runs.
// Label:
//   - action: "created" or "coords_updated"
var SitesSyncedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sites_synced_total",
		Help:      "Total number of site records written by KML sync, by action.",
	},
	[]string{"action"},
)
