package strategy

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/seantiz/linebench/internal/model"
	"github.com/seantiz/linebench/internal/sink"
	"github.com/seantiz/linebench/internal/workload"
)

// Threads processes every file on its own goroutine, each wired to a
// dedicated OS thread for its whole lifetime, and joins them all.
type Threads struct{}

func (Threads) Run(ctx context.Context, w *model.Workload, out sink.Sink) error {
	errs := make([]error, len(w.Files))

	var wg sync.WaitGroup
	for i, file := range w.Files {
		wg.Go(func() {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			_, errs[i] = workload.ReadLines(ctx, file, out.Emit)
		})
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (Threads) Capabilities() Capabilities {
	return Capabilities{
		Name:       model.StrategyThreads,
		Model:      ModelOSThreads,
		Parallel:   true,
		SharedSink: true,
	}
}
