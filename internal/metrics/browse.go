package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/learnflow/catalog/internal/view"
)

// Browse Prometheus metrics.
var (
	BrowseRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "browse_requests_total",
			Help:      "Total number of derived-view requests",
		},
		[]string{"collection", "sort", "status"},
	)

	BrowseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalog",
			Name:      "browse_duration_seconds",
			Help:      "Time spent deriving a view",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5},
		},
		[]string{"collection"},
	)

	BrowseResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalog",
			Name:      "browse_results",
			Help:      "Number of records in a derived view before pagination",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		},
		[]string{"collection"},
	)
)

func init() {
	prometheus.MustRegister(BrowseRequestsTotal)
	prometheus.MustRegister(BrowseDuration)
	prometheus.MustRegister(BrowseResults)
}

// ObserveBrowse records one browse call. status is "ok" or "error".
func ObserveBrowse(collection string, sort view.SortKey, status string, took time.Duration, results int) {
	BrowseRequestsTotal.WithLabelValues(collection, sortLabel(sort), status).Inc()
	if status != "ok" {
		return
	}
	BrowseDuration.WithLabelValues(collection).Observe(took.Seconds())
	BrowseResults.WithLabelValues(collection).Observe(float64(results))
}

// sortLabel keeps the sort label bounded to the known strategies.
func sortLabel(sort view.SortKey) string {
	switch {
	case sort == "":
		return string(view.SortNone)
	case !sort.Known():
		return "unknown"
	}
	return string(sort)
}
