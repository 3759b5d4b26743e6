package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seantiz/linebench/internal/model"
)

// clock label values of linebench_run_result_seconds.
const (
	clockReal   = "real"
	clockUser   = "user"
	clockSystem = "system"

	statusPending = "pending"
)

var (
	runStrategiesDesc = prometheus.NewDesc(
		"linebench_run_strategies",
		"Strategies of the current run by status.",
		[]string{"status"}, nil,
	)

	runResultSecondsDesc = prometheus.NewDesc(
		"linebench_run_result_seconds",
		"Timings of every completed strategy of the current run.",
		[]string{"strategy", "clock"}, nil,
	)

	runResultLinesDesc = prometheus.NewDesc(
		"linebench_run_result_lines",
		"Lines emitted by every finished strategy of the current run.",
		[]string{"strategy"}, nil,
	)
)

// runCollector exports the state of the current run on every scrape.
type runCollector struct {
	registered func() int
	results    ResultSource
}

func (c *runCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- runStrategiesDesc
	ch <- runResultSecondsDesc
	ch <- runResultLinesDesc
}

func (c *runCollector) Collect(ch chan<- prometheus.Metric) {
	run := c.results.Current()
	stats := computeStats(c.registered(), run)

	for _, status := range []string{model.StatusCompleted, model.StatusFailed, model.StatusSkipped} {
		ch <- prometheus.MustNewConstMetric(runStrategiesDesc, prometheus.GaugeValue,
			float64(stats.ByStatus[status]), status)
	}
	ch <- prometheus.MustNewConstMetric(runStrategiesDesc, prometheus.GaugeValue,
		float64(stats.Pending), statusPending)

	if run == nil {
		return
	}
	for _, r := range run.Results {
		if r.Status == model.StatusSkipped {
			continue
		}
		ch <- prometheus.MustNewConstMetric(runResultLinesDesc, prometheus.GaugeValue, float64(r.Lines), r.Strategy)
		if !r.Succeeded() {
			continue
		}
		ch <- prometheus.MustNewConstMetric(runResultSecondsDesc, prometheus.GaugeValue, r.Elapsed.Seconds(), r.Strategy, clockReal)
		ch <- prometheus.MustNewConstMetric(runResultSecondsDesc, prometheus.GaugeValue, r.User.Seconds(), r.Strategy, clockUser)
		ch <- prometheus.MustNewConstMetric(runResultSecondsDesc, prometheus.GaugeValue, r.System.Seconds(), r.Strategy, clockSystem)
	}
}

// metricsHandler serves the process-wide metrics together with the run
// state of this server.
func (s *Server) metricsHandler() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(&runCollector{registered: s.registry.Len, results: s.results})
	return promhttp.HandlerFor(prometheus.Gatherers{prometheus.DefaultGatherer, reg}, promhttp.HandlerOpts{})
}
