package library

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	viewsServed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crateaudit_views_total",
			Help: "Dashboard views served, by how the result was obtained",
		},
		[]string{"path"}, // baseline | cache | computed
	)
	deriveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crateaudit_view_derive_seconds",
			Help:    "Time spent filtering and aggregating a playlist view",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)
	imports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crateaudit_imports_total",
			Help: "Library loads by source and outcome",
		},
		[]string{"source", "status"},
	)
)

// RegisterMetrics registers the library collectors with the default registry.
func RegisterMetrics() {
	prometheus.MustRegister(viewsServed, deriveDuration, imports)
}
