package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hostsync",
			Name:      "webhook_events_total",
			Help:      "Webhook events by object, event type and outcome.",
		},
		[]string{"object", "event", "outcome"},
	)

	duplicates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hostsync",
			Name:      "duplicate_creates_total",
			Help:      "Create calls resolved as idempotent duplicates.",
		},
		[]string{"kind"},
	)

	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hostsync",
			Name:      "upstream_requests_total",
			Help:      "Hostaway API requests by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hostsync",
			Name:      "notifications_total",
			Help:      "Slack notifications by level.",
		},
		[]string{"level"},
	)

	syncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hostsync",
			Name:      "sync_runs_total",
			Help:      "Reconciliation runs by result.",
		},
		[]string{"result"},
	)

	syncRepairs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hostsync",
			Name:      "sync_repairs_total",
			Help:      "Reconciliation repairs by action.",
		},
		[]string{"action"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			webhookEvents,
			duplicates,
			upstreamRequests,
			notifications,
			syncRuns,
			syncRepairs,
		)
	})
}

func IncEvent(object, event, outcome string) {
	webhookEvents.WithLabelValues(object, event, outcome).Inc()
}

func IncDuplicate(kind string) {
	duplicates.WithLabelValues(kind).Inc()
}

func IncUpstream(operation, outcome string) {
	upstreamRequests.WithLabelValues(operation, outcome).Inc()
}

func IncNotification(level string) {
	notifications.WithLabelValues(level).Inc()
}

func IncSyncRun(result string) {
	syncRuns.WithLabelValues(result).Inc()
}

func IncSyncRepair(action string) {
	syncRepairs.WithLabelValues(action).Inc()
}
