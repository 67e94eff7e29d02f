package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SyncRuns counts orchestrator runs by trigger and final status.
	SyncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cveadvisor",
			Name:      "sync_runs_total",
			Help:      "Total number of sync runs",
		},
		[]string{"trigger", "status"},
	)

	// SyncDuration observes wall time of a complete run.
	SyncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cveadvisor",
			Name:      "sync_duration_seconds",
			Help:      "Duration of sync runs",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// FeedRequests counts page requests against the vulnerability feed.
	FeedRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cveadvisor",
			Name:      "feed_requests_total",
			Help:      "Total number of vulnerability feed page requests",
		},
		[]string{"status"},
	)

	// RecordsIngested counts feed records by ingestion result (inserted, skipped, failed).
	RecordsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cveadvisor",
			Name:      "records_ingested_total",
			Help:      "Total number of feed records handled by the ingestor",
		},
		[]string{"result"},
	)

	// Notifications counts dispatch outcomes per (customer, vulnerability) pair.
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cveadvisor",
			Name:      "notifications_total",
			Help:      "Total number of advisory dispatch attempts by outcome",
		},
		[]string{"outcome"},
	)

	// EmailsSent counts messages handed to a mail transport.
	EmailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cveadvisor",
			Name:      "emails_total",
			Help:      "Total number of emails handled by mail transports",
		},
		[]string{"transport", "status"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// It is idempotent.
func InitMetrics() {
	once.Do(func() {
		// Ignore AlreadyRegistered errors so tests can call this freely
		prometheus.DefaultRegisterer.Register(SyncRuns)
		prometheus.DefaultRegisterer.Register(SyncDuration)
		prometheus.DefaultRegisterer.Register(FeedRequests)
		prometheus.DefaultRegisterer.Register(RecordsIngested)
		prometheus.DefaultRegisterer.Register(Notifications)
		prometheus.DefaultRegisterer.Register(EmailsSent)
	})
}
