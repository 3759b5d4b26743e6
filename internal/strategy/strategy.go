package strategy

import (
	"context"

	"github.com/seantiz/linebench/internal/model"
	"github.com/seantiz/linebench/internal/sink"
)

// Concurrency model names reported in Capabilities.
const (
	ModelNone        = "none"
	ModelOSThreads   = "os-threads"
	ModelCooperative = "cooperative"
	ModelStructured  = "structured"
	ModelIsolated    = "isolated"
	ModelBoundedPool = "bounded-pool"
)

// Strategy is the interface every concurrency strategy implements. A
// strategy holds no state between runs.
type Strategy interface {
	// Run reads every line of every workload file and emits it into out,
	// returning once all of its work has finished. Timing is measured by the
	// caller.
	Run(ctx context.Context, w *model.Workload, out sink.Sink) error

	// Capabilities describes the strategy's concurrency model.
	Capabilities() Capabilities
}

// Capabilities describes how a strategy schedules its work.
type Capabilities struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	// Parallel reports whether work may run on several cores at once.
	Parallel bool `json:"parallel"`
	// SharedSink reports whether several goroutines emit into the sink
	// concurrently. Such strategies must be given a synchronized sink.
	SharedSink bool `json:"shared_sink"`
	// MaxConcurrency bounds the files processed at once; 0 means one per file.
	MaxConcurrency int `json:"max_concurrency"`
}
