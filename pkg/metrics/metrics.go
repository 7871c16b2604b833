package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
//
// SwallowedErrors is the single seam through which every best-effort
// notice/activity failure is routed: those errors are never surfaced to
// callers, so this counter is the only place they stay diagnosable.
type Metrics struct {
	// Notice pipeline
	NoticesCreated    *prometheus.CounterVec
	NoticesSuppressed *prometheus.CounterVec
	NoticesReplaced   prometheus.Counter
	NoticesDeleted    prometheus.Counter
	SwallowedErrors   *prometheus.CounterVec

	// Approval workflow
	ApprovalTransitions *prometheus.CounterVec

	// Activity recorder
	ActivityEntriesRecorded prometheus.Counter
	ActivityEntriesSkipped  prometheus.Counter
}

// NewMetrics creates and registers all application metrics on the
// default registry.
func NewMetrics(namespace, subsystem string) *Metrics {
	return NewMetricsWithRegistry(namespace, subsystem, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry registers on a caller-supplied registry.
func NewMetricsWithRegistry(namespace, subsystem string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		NoticesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notices_created_total",
			Help:      "Total number of notices persisted",
		}, []string{"type"}),
		NoticesSuppressed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notices_suppressed_total",
			Help:      "Total number of notices suppressed by the dedup engine",
		}, []string{"type", "rule"}),
		NoticesReplaced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notices_replaced_total",
			Help:      "Total number of notices deleted by the replace policy before a fresh insert",
		}),
		NoticesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notices_deleted_total",
			Help:      "Total number of notices removed by maintenance sweeps",
		}),
		SwallowedErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "errors_swallowed_total",
			Help:      "Best-effort failures recovered locally instead of being surfaced",
		}, []string{"component"}),
		ApprovalTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "approval_transitions_total",
			Help:      "Reassignment approval state transitions",
		}, []string{"outcome"}),
		ActivityEntriesRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "activity_entries_recorded_total",
			Help:      "Total number of activity log entries written",
		}),
		ActivityEntriesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "activity_entries_skipped_total",
			Help:      "Activity log entries skipped by the local duplicate guard",
		}),
	}
}
