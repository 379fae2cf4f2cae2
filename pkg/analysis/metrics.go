package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cascade_analyses_total",
		Help: "Completed analysis runs by outcome.",
	}, []string{"status"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cascade_analysis_duration_seconds",
		Help:    "Wall-clock duration of full analysis runs.",
		Buckets: prometheus.DefBuckets,
	})

	simulationPaths = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cascade_simulation_paths",
		Help:    "Propagation paths enumerated per baseline simulation.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	candidatesEvaluated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cascade_mitigation_candidates_evaluated_total",
		Help: "Mitigation candidates evaluated across all runs.",
	})
)
