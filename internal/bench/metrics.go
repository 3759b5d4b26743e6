package bench

import "github.com/prometheus/client_golang/prometheus"

var (
	strategyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linebench_strategy_duration_seconds",
			Help:    "Wall-clock duration of a strategy run in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
		},
		[]string{"strategy"},
	)

	strategyRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linebench_strategy_runs_total",
			Help: "Total number of strategy runs by final status.",
		},
		[]string{"strategy", "status"},
	)

	linesEmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linebench_lines_emitted_total",
			Help: "Total number of lines emitted into the sink per strategy.",
		},
		[]string{"strategy"},
	)
)

func init() {
	prometheus.MustRegister(strategyDuration)
	prometheus.MustRegister(strategyRunsTotal)
	prometheus.MustRegister(linesEmittedTotal)
}
