package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and index Prometheus metrics.
var (
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalogsearch",
			Name:      "search_duration_seconds",
			Help:      "Search execution time inside the engine",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
		[]string{"operation"}, // "search" / "normalize"
	)

	SearchResultsTotal = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "catalogsearch",
			Name:      "search_results_total",
			Help:      "Number of matching items per search before pagination",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100, 500, 1000},
		},
	)

	UnknownTokensTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "catalogsearch",
			Name:      "unknown_tokens_total",
			Help:      "Query tokens that matched neither the dictionary nor a pattern",
		},
	)

	FeedbackReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogsearch",
			Name:      "feedback_reports_total",
			Help:      "Unknown-token reports by outcome",
		},
		[]string{"result"}, // "written" / "duplicate" / "throttled" / "failed"
	)

	IndexRebuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "catalogsearch",
			Name:      "index_rebuild_duration_seconds",
			Help:      "Full index rebuild duration",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	IndexRebuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogsearch",
			Name:      "index_rebuilds_total",
			Help:      "Index rebuilds and reloads by outcome",
		},
		[]string{"kind", "result"}, // kind: "rebuild" / "reload"
	)

	SnapshotSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "catalogsearch",
			Name:      "snapshot_size",
			Help:      "Size of the published snapshot",
		},
		[]string{"part"}, // "items" / "values" / "tokens"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search and index metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResultsTotal)
	prometheus.MustRegister(UnknownTokensTotal)
	prometheus.MustRegister(FeedbackReportsTotal)
	prometheus.MustRegister(IndexRebuildDuration)
	prometheus.MustRegister(IndexRebuildsTotal)
	prometheus.MustRegister(SnapshotSize)
	searchMetricsRegistered = true
}

// ObserveSnapshot updates the snapshot size gauges.
func ObserveSnapshot(items, values, tokens int) {
	SnapshotSize.WithLabelValues("items").Set(float64(items))
	SnapshotSize.WithLabelValues("values").Set(float64(values))
	SnapshotSize.WithLabelValues("tokens").Set(float64(tokens))
}
