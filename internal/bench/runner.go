package bench

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seantiz/linebench/internal/model"
	"github.com/seantiz/linebench/internal/scope"
	"github.com/seantiz/linebench/internal/sink"
	"github.com/seantiz/linebench/internal/strategy"
)

// flusher is implemented by buffered outputs that must be drained after
// every strategy.
type flusher interface {
	Flush() error
}

// Option configures a Runner.
type Option func(*Runner)

// WithCPUSampler replaces the process CPU sampler.
func WithCPUSampler(c CPUSampler) Option {
	return func(r *Runner) { r.cpu = c }
}

// Runner executes the strategies of a registry serially.
type Runner struct {
	registry *strategy.Registry
	out      io.Writer
	logger   *zap.SugaredLogger
	cpu      CPUSampler

	mu      sync.RWMutex
	current *model.Run
}

// NewRunner creates a runner that emits lines into out.
func NewRunner(reg *strategy.Registry, out io.Writer, logger *zap.SugaredLogger, opts ...Option) *Runner {
	r := &Runner{
		registry: reg,
		out:      out,
		logger:   logger,
		cpu:      ProcessCPU(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the registry the runner iterates.
func (r *Runner) Registry() *strategy.Registry {
	return r.registry
}

// Current returns a snapshot of the latest run, or nil before the first run
// starts. It is safe to call while a run is in progress.
func (r *Runner) Current() *model.Run {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.current == nil {
		return nil
	}
	snap := *r.current
	snap.Results = slices.Clone(r.current.Results)
	return &snap
}

// Run executes every registered strategy against w in registration order and
// returns the completed run. Results hold one entry per strategy. Once ctx is
// done the strategies not yet started are recorded as skipped.
func (r *Runner) Run(ctx context.Context, w *model.Workload) *model.Run {
	run := &model.Run{
		ID:        model.NewID(),
		StartedAt: time.Now().UTC(),
		Workload:  w,
	}
	r.mu.Lock()
	r.current = run
	r.mu.Unlock()

	names := r.registry.Names()
	r.logger.Infow("benchmark started",
		"run_id", run.ID,
		"strategies", names,
		"files", len(w.Files),
		"lines_per_file", w.LineCount,
	)

	for _, name := range names {
		var res model.BenchmarkResult
		if ctx.Err() != nil {
			res = model.BenchmarkResult{Strategy: name, Status: model.StatusSkipped}
		} else {
			res = r.runOne(ctx, run.ID, name, w)
		}
		strategyRunsTotal.WithLabelValues(name, res.Status).Inc()

		r.mu.Lock()
		run.Results = append(run.Results, res)
		r.mu.Unlock()
	}

	now := time.Now().UTC()
	r.mu.Lock()
	run.FinishedAt = &now
	r.mu.Unlock()

	r.logger.Infow("benchmark finished", "run_id", run.ID, "duration", now.Sub(run.StartedAt))
	return r.Current()
}

// runOne times a single strategy. Failures end up in the returned result.
func (r *Runner) runOne(ctx context.Context, runID, name string, w *model.Workload) model.BenchmarkResult {
	res := model.BenchmarkResult{Strategy: name}

	s, err := r.registry.Resolve(name)
	if err != nil {
		return r.fail(runID, res, err)
	}

	// Concurrent emitters share one sink, so they get the synchronized one.
	var base sink.Sink
	if s.Capabilities().SharedSink {
		base = sink.NewLocked(r.out)
	} else {
		base = sink.NewWriter(r.out)
	}
	counter := sink.NewCounter(base)

	user0, sys0, cpuErr := r.cpu()
	start := time.Now()
	err = invoke(ctx, s, w, counter)
	if f, ok := r.out.(flusher); ok {
		if ferr := f.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("flush output: %w", ferr)
		}
	}
	res.Elapsed = time.Since(start)
	user1, sys1, cpuErr1 := r.cpu()

	if cpuErr == nil && cpuErr1 == nil {
		res.User = user1 - user0
		res.System = sys1 - sys0
	} else {
		r.logger.Warnw("cpu times unavailable", "strategy", name, "error", cpuErr, "sample_error", cpuErr1)
	}

	res.Lines = counter.Count()
	linesEmittedTotal.WithLabelValues(name).Add(float64(res.Lines))
	strategyDuration.WithLabelValues(name).Observe(res.Elapsed.Seconds())

	if err == nil && res.Lines != w.TotalLines() {
		err = fmt.Errorf("emitted %d of %d lines", res.Lines, w.TotalLines())
	}
	if err != nil {
		return r.fail(runID, res, err)
	}

	res.Status = model.StatusCompleted
	r.logger.Infow("strategy completed",
		"run_id", runID,
		"strategy", name,
		"elapsed", res.Elapsed,
		"user", res.User,
		"system", res.System,
		"lines", res.Lines,
	)
	return res
}

func (r *Runner) fail(runID string, res model.BenchmarkResult, err error) model.BenchmarkResult {
	execErr := &ExecutionError{Strategy: res.Strategy, Err: err}
	res.Status = model.StatusFailed
	res.Error = execErr.Error()
	r.logger.Errorw("strategy failed",
		"run_id", runID,
		"strategy", res.Strategy,
		"elapsed", res.Elapsed,
		"error", execErr,
	)
	return res
}

// invoke runs s, converting a panic into an error.
func invoke(ctx context.Context, s strategy.Strategy, w *model.Workload, out sink.Sink) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &scope.PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	return s.Run(ctx, w, out)
}
