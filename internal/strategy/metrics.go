package strategy

import "github.com/prometheus/client_golang/prometheus"

var (
	poolBusyWorkers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "linebench_pool_busy_workers",
		Help: "Number of pool workers currently reading a file.",
	})

	fiberSwitches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linebench_fiber_switches_total",
		Help: "Total number of cooperative task switches performed by the fibers strategy.",
	})
)

func init() {
	prometheus.MustRegister(poolBusyWorkers, fiberSwitches)
}
