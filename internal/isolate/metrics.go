package isolate

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/seantiz/linebench/internal/model"
)

var spawnedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "linebench_isolates_spawned_total",
		Help: "Total number of isolated workers started, by isolation mode.",
	},
	[]string{"mode"},
)

func init() {
	prometheus.MustRegister(spawnedTotal)

	// Pre-initialize label combinations so they appear with value 0.
	spawnedTotal.WithLabelValues(model.IsolationActor)
	spawnedTotal.WithLabelValues(model.IsolationProcess)
}
