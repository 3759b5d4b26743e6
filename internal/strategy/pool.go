package strategy

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/seantiz/linebench/internal/model"
	"github.com/seantiz/linebench/internal/sink"
	"github.com/seantiz/linebench/internal/workload"
)

// Pool processes files with a fixed number of workers pulling from a shared
// queue. At most Size files are being read at any moment.
type Pool struct {
	Size int

	// observe is called with the number of busy workers whenever a worker
	// picks up a file.
	observe func(busy int64)
}

// NewPool returns a pool of the given size. Sizes below one fall back to
// runtime.NumCPU.
func NewPool(size int) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}
	return &Pool{Size: size}
}

func (p *Pool) Run(ctx context.Context, w *model.Workload, out sink.Sink) error {
	queue := make(chan string, len(w.Files))
	for _, file := range w.Files {
		queue <- file
	}
	close(queue)

	var (
		busy atomic.Int64
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)
	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for range min(p.Size, len(w.Files)) {
		wg.Go(func() {
			for file := range queue {
				if ctx.Err() != nil {
					return
				}

				n := busy.Add(1)
				poolBusyWorkers.Inc()
				if p.observe != nil {
					p.observe(n)
				}

				_, err := workload.ReadLines(ctx, file, out.Emit)

				busy.Add(-1)
				poolBusyWorkers.Dec()
				if err != nil && ctx.Err() == nil {
					record(err)
				}
			}
		})
	}
	wg.Wait()

	// Cancellation is reported once rather than by every worker it stopped.
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (p *Pool) Capabilities() Capabilities {
	return Capabilities{
		Name:           model.StrategyPool,
		Model:          ModelBoundedPool,
		Parallel:       true,
		SharedSink:     true,
		MaxConcurrency: p.Size,
	}
}
