// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Classification metrics
	AccountsProcessed *prometheus.CounterVec
	RecordsFiled      *prometheus.CounterVec
	ClassifyDuration  prometheus.Histogram

	// Ledger metrics
	RPCCallLatency      *prometheus.HistogramVec
	RPCCallErrors       *prometheus.CounterVec
	NotificationsTotal  prometheus.Counter
	SubscriptionsActive prometheus.Gauge
	HighestSlotSeen     prometheus.Gauge
	DerivationsTotal    *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Run metrics
	RunsTotal         *prometheus.CounterVec
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered with reg. A nil reg
// registers with the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "metalab"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		AccountsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classify",
			Name:      "accounts_processed_total",
			Help:      "Accounts processed by classification outcome",
		}, []string{"outcome"}),
		RecordsFiled: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classify",
			Name:      "records_filed_total",
			Help:      "Entries appended per bucket",
		}, []string{"bucket"}),
		ClassifyDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "classify",
			Name:      "batch_duration_seconds",
			Help:      "Classification batch duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		RPCCallLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RPCCallErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_errors_total",
			Help:      "Failed Solana RPC calls by method",
		}, []string{"method"}),
		NotificationsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "program_notifications_total",
			Help:      "Program account notifications received",
		}),
		SubscriptionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "subscriptions_active",
			Help:      "Open program subscriptions",
		}),
		HighestSlotSeen: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "highest_slot_seen",
			Help:      "Highest Solana slot number seen",
		}),
		DerivationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "address_derivations_total",
			Help:      "Program address derivations by kind and status",
		}, []string{"kind", "status"}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "runs_total",
			Help:      "Indexer runs by mode and status",
		}, []string{"mode", "status"}),
		LastSuccessfulRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful scan",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint of g. A nil g
// serves the default registry.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordOutcome counts one classified account.
func (m *Metrics) RecordOutcome(outcome string) {
	m.AccountsProcessed.WithLabelValues(outcome).Inc()
}

// RecordFiled adds n entries to the bucket counter.
func (m *Metrics) RecordFiled(bucket string, n int) {
	if n > 0 {
		m.RecordsFiled.WithLabelValues(bucket).Add(float64(n))
	}
}

// RecordRPC records RPC call latency and failures.
func (m *Metrics) RecordRPC(method string, seconds float64, err error) {
	m.RPCCallLatency.WithLabelValues(method).Observe(seconds)
	if err != nil {
		m.RPCCallErrors.WithLabelValues(method).Inc()
	}
}

// RecordDerivation counts one address derivation.
func (m *Metrics) RecordDerivation(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DerivationsTotal.WithLabelValues(kind, status).Inc()
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, seconds float64, err error) {
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordRun records an indexer run.
func (m *Metrics) RecordRun(mode, status string) {
	m.RunsTotal.WithLabelValues(mode, status).Inc()
}

// UpdateHighestSlot sets the highest slot gauge.
func (m *Metrics) UpdateHighestSlot(slot int64) {
	m.HighestSlotSeen.Set(float64(slot))
}
