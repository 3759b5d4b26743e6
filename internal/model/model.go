package model

import "time"

// Result status constants.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Strategy name constants, in default registration order.
const (
	StrategySequential = "sequential"
	StrategyThreads    = "threads"
	StrategyFibers     = "fibers"
	StrategyAsync      = "async"
	StrategyIsolates   = "isolates"
	StrategyPool       = "pool"
)

// Isolation mode constants for the isolates strategy.
const (
	IsolationActor   = "actor"
	IsolationProcess = "process"
)

// DefaultStrategies lists every built-in strategy in registration order.
var DefaultStrategies = []string{
	StrategySequential,
	StrategyThreads,
	StrategyFibers,
	StrategyAsync,
	StrategyIsolates,
	StrategyPool,
}

// Workload is the generated file set shared by every strategy of a run.
// It must not be modified after generation.
type Workload struct {
	Dir       string   `json:"dir"`
	Files     []string `json:"files"`
	LineCount int      `json:"line_count"`
}

// TotalLines returns the number of lines across all files.
func (w *Workload) TotalLines() int64 {
	return int64(len(w.Files)) * int64(w.LineCount)
}

// BenchmarkResult is the outcome of running one strategy against a workload.
type BenchmarkResult struct {
	Strategy string        `json:"strategy"`
	Status   string        `json:"status"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	User     time.Duration `json:"user_ns"`
	System   time.Duration `json:"system_ns"`
	Lines    int64         `json:"lines"`
	Error    string        `json:"error,omitempty"`
}

// Total returns the CPU time spent in user and system mode.
func (r BenchmarkResult) Total() time.Duration {
	return r.User + r.System
}

// Succeeded reports whether the strategy ran to completion.
func (r BenchmarkResult) Succeeded() bool {
	return r.Status == StatusCompleted
}

// Run groups the results of one benchmark invocation.
type Run struct {
	ID         string            `json:"id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
	Workload   *Workload         `json:"workload"`
	Results    []BenchmarkResult `json:"results"`
}
