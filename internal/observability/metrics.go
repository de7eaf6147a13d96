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
	// Candy machine metrics
	LookupsTotal   *prometheus.CounterVec
	ItemsRemaining *prometheus.GaugeVec
	ItemsAvailable *prometheus.GaugeVec

	// Mint metrics
	MintAttempts        *prometheus.CounterVec
	MintDuration        prometheus.Histogram
	ConfirmationLatency prometheus.Histogram
	MintsInFlight       prometheus.Gauge

	// Wallet metrics
	WalletConnected prometheus.Gauge
	NetworkSwitches *prometheus.CounterVec

	// Latency metrics
	RPCCallLatency *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Notification metrics
	NotificationsTotal *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "mvcm"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		// Candy machine metrics
		LookupsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "candy_machine",
			Name:      "lookups_total",
			Help:      "Total number of candy machine lookups by resolved version and result",
		}, []string{"version", "result"}),
		ItemsRemaining: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "candy_machine",
			Name:      "items_remaining",
			Help:      "Items remaining on the last fetched candy machine",
		}, []string{"candy_machine"}),
		ItemsAvailable: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "candy_machine",
			Name:      "items_available",
			Help:      "Items available on the last fetched candy machine",
		}, []string{"candy_machine"}),

		// Mint metrics
		MintAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mint",
			Name:      "attempts_total",
			Help:      "Total number of mint attempts by version and status",
		}, []string{"version", "status"}),
		MintDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "mint",
			Name:      "duration_seconds",
			Help:      "End-to-end mint duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}),
		ConfirmationLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "mint",
			Name:      "confirmation_latency_seconds",
			Help:      "Time from submission to confirmation in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		MintsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "mint",
			Name:      "in_flight",
			Help:      "Number of mint transactions awaiting confirmation",
		}),

		// Wallet metrics
		WalletConnected: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "connected",
			Help:      "1 when a wallet is connected",
		}),
		NetworkSwitches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "network",
			Name:      "switches_total",
			Help:      "Total number of network selections by target network",
		}, []string{"network"}),

		// Latency metrics
		RPCCallLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		// Database metrics
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

		// Notification metrics
		NotificationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "notifications_total",
			Help:      "Total number of user notifications by level",
		}, []string{"level"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordLookup records a candy machine lookup. version is empty when both lookups failed.
func RecordLookup(version string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
		if version == "" {
			version = "none"
		}
	}
	DefaultMetrics.LookupsTotal.WithLabelValues(version, result).Inc()
}

// UpdateItems updates the item gauges for a candy machine.
func UpdateItems(candyMachine string, available, remaining uint64) {
	DefaultMetrics.ItemsAvailable.WithLabelValues(candyMachine).Set(float64(available))
	DefaultMetrics.ItemsRemaining.WithLabelValues(candyMachine).Set(float64(remaining))
}

// RecordMint records a finished mint attempt.
func RecordMint(version, status string, seconds float64) {
	DefaultMetrics.MintAttempts.WithLabelValues(version, status).Inc()
	DefaultMetrics.MintDuration.Observe(seconds)
}

// RecordConfirmation records time spent waiting for confirmation.
func RecordConfirmation(seconds float64) {
	DefaultMetrics.ConfirmationLatency.Observe(seconds)
}

// MintStarted increments the in-flight gauge; the returned func decrements it.
func MintStarted() func() {
	DefaultMetrics.MintsInFlight.Inc()
	return DefaultMetrics.MintsInFlight.Dec
}

// SetWalletConnected updates the wallet connection gauge.
func SetWalletConnected(connected bool) {
	if connected {
		DefaultMetrics.WalletConnected.Set(1)
		return
	}
	DefaultMetrics.WalletConnected.Set(0)
}

// RecordNetworkSwitch records a network selection.
func RecordNetworkSwitch(network string) {
	DefaultMetrics.NetworkSwitches.WithLabelValues(network).Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordNotification counts a user notification.
func RecordNotification(level string) {
	DefaultMetrics.NotificationsTotal.WithLabelValues(level).Inc()
}
