// Package metrics defines and registers the custom Prometheus metrics of the
// waste platform API. Metrics are registered with the default registry on
// package initialisation; HTTP request metrics are added separately by the
// router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "waste"

// ── Identity ──────────────────────────────────────────────────────────────────

// UsersRegisteredTotal counts successful registrations.
// Label:
//   - role: citizen, worker, champion or government
var UsersRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of registered users, by role.",
	},
	[]string{"role"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Gamification ──────────────────────────────────────────────────────────────

// ModuleCompletionsTotal counts complete-module calls.
// Label:
//   - result: "credited" (first completion) or "duplicate" (no-op)
var ModuleCompletionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "module_completions_total",
		Help:      "Total number of module completion requests, by result.",
	},
	[]string{"result"},
)

// StatsUpdatesTotal counts stats merge requests.
// Label:
//   - result: "applied", "rejected" or "conflict"
var StatsUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_updates_total",
		Help:      "Total number of stats update requests, by result.",
	},
	[]string{"result"},
)

// ── Catalog ───────────────────────────────────────────────────────────────────

// ModuleCacheTotal counts module listing cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var ModuleCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "module_cache_total",
		Help:      "Total number of module listing cache lookups, by result.",
	},
	[]string{"result"},
)

// ── Activity queue ────────────────────────────────────────────────────────────

// ActivityQueueDepth tracks pending activity records per dispatcher worker.
// Label:
//   - worker_id: numeric worker index
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Current number of activity records pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ActivityDroppedTotal counts activity records discarded because a worker
// channel was full or the dispatcher was closed.
var ActivityDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_dropped_total",
		Help:      "Total number of activity records dropped before persistence.",
	},
)

// ActivityPersistDuration measures how long persisting one record takes.
var ActivityPersistDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "activity_persist_duration_seconds",
		Help:      "Duration of activity persistence from dequeue to storage.",
		Buckets:   prometheus.DefBuckets,
	},
)
