// Package metrics provides Prometheus metrics for the pricing oracle.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SourceFetchesTotal is a counter of quote fetches against price sources.
	SourceFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_fetches_total",
			Help: "Total number of fetches against price sources",
		},
		[]string{"source", "status"},
	)

	// SourceFetchDuration is a histogram of per-source fetch latencies.
	SourceFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_fetch_duration_seconds",
			Help:    "Latency of fetches against price sources",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	// AggregationDuration is a histogram of aggregation pass durations.
	AggregationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aggregation_duration_seconds",
			Help:    "Duration of aggregation operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// UnitsAggregatedTotal is a counter of per-unit aggregation outcomes.
	UnitsAggregatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "units_aggregated_total",
			Help: "Total number of unit aggregations by validity outcome",
		},
		[]string{"outcome"},
	)

	// DeviationRejectionsTotal is a counter of units invalidated by the
	// cross-source deviation check.
	DeviationRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deviation_rejections_total",
			Help: "Total number of units rejected for excessive price deviation",
		},
		[]string{"unit"},
	)

	// ForexSymbolsTotal is a counter of forex symbol aggregation outcomes.
	ForexSymbolsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forex_symbols_total",
			Help: "Total number of forex symbols aggregated or dropped",
		},
		[]string{"outcome"},
	)

	// ProxyResolutionsTotal is a counter of proxy resolution outcomes.
	ProxyResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxy_resolutions_total",
			Help: "Total number of proxy unit resolutions by outcome",
		},
		[]string{"outcome"},
	)

	// TableUnitsPublished is a gauge of units included in the last built table.
	TableUnitsPublished = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "table_units_published",
			Help: "Number of units included in the last conversion table",
		},
	)

	// LedgerCallsTotal is a counter of ledger zome calls.
	LedgerCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_calls_total",
			Help: "Total number of ledger zome calls",
		},
		[]string{"fn", "status"},
	)

	// LedgerCallDuration is a histogram of ledger call latencies.
	LedgerCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_call_duration_seconds",
			Help:    "Latency of ledger zome calls",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"fn"},
	)
)

// Init initializes Prometheus metrics registry.
func Init() {
	// Register all metrics
	prometheus.MustRegister(
		SourceFetchesTotal,
		SourceFetchDuration,
		AggregationDuration,
		UnitsAggregatedTotal,
		DeviationRejectionsTotal,
		ForexSymbolsTotal,
		ProxyResolutionsTotal,
		TableUnitsPublished,
		LedgerCallsTotal,
		LedgerCallDuration,
	)
}

// ServeHTTP serves Prometheus metrics on the specified address.
func ServeHTTP(addr string) error {
	http.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      http.DefaultServeMux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// RecordSourceFetch records the outcome and latency of a source fetch.
func RecordSourceFetch(source, status string, duration time.Duration) {
	SourceFetchesTotal.WithLabelValues(source, status).Inc()
	SourceFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordAggregation records an aggregation operation.
func RecordAggregation(kind string, duration time.Duration) {
	AggregationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordUnitAggregated records a per-unit aggregation outcome.
func RecordUnitAggregated(outcome string) {
	UnitsAggregatedTotal.WithLabelValues(outcome).Inc()
}

// RecordDeviationRejection records a unit invalidated by the deviation check.
func RecordDeviationRejection(unit string) {
	DeviationRejectionsTotal.WithLabelValues(unit).Inc()
}

// RecordForexSymbol records a forex symbol aggregation outcome.
func RecordForexSymbol(outcome string) {
	ForexSymbolsTotal.WithLabelValues(outcome).Inc()
}

// RecordProxyResolution records a proxy resolution outcome.
func RecordProxyResolution(outcome string) {
	ProxyResolutionsTotal.WithLabelValues(outcome).Inc()
}

// RecordTableUnits records the number of units in the built table.
func RecordTableUnits(n int) {
	TableUnitsPublished.Set(float64(n))
}

// RecordLedgerCall records a ledger zome call.
func RecordLedgerCall(fn, status string, duration time.Duration) {
	LedgerCallsTotal.WithLabelValues(fn, status).Inc()
	LedgerCallDuration.WithLabelValues(fn).Observe(duration.Seconds())
}
