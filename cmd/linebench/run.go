package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/seantiz/linebench/internal/api"
	"github.com/seantiz/linebench/internal/bench"
	"github.com/seantiz/linebench/internal/config"
	"github.com/seantiz/linebench/internal/hostinfo"
	"github.com/seantiz/linebench/internal/isolate"
	"github.com/seantiz/linebench/internal/model"
	"github.com/seantiz/linebench/internal/report"
	"github.com/seantiz/linebench/internal/strategy"
	"github.com/seantiz/linebench/internal/workload"
)

const outputBufferSize = 64 << 10

// runBenchmark generates the workload, runs the selected strategies and
// prints the report. Strategy failures only show up in the report.
func runBenchmark(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) error {
	logger := config.NewLogger(stderr, cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		logger.Warnw("stdout is a terminal, timings will include terminal rendering; redirect stdout to compare strategies",
			"lines_per_strategy", int64(cfg.FileCount)*int64(cfg.LineCount))
	}

	info, err := hostinfo.Collect(ctx)
	if err != nil {
		logger.Warnw("host info incomplete", "error", err)
	}
	logger.Infow("host", info.Fields()...)

	spawner, err := isolate.NewSpawner(cfg.Isolation)
	if err != nil {
		return withCode(ExitCodeInvalidConfig, err)
	}
	reg, err := strategy.NewDefaultRegistry(strategy.Options{
		PoolSize: cfg.PoolSize,
		Spawner:  spawner,
	}).Select(cfg.Strategies)
	if err != nil {
		return withCode(ExitCodeInvalidConfig, err)
	}

	w, err := generate(cfg, logger)
	if err != nil {
		return withCode(ExitCodeWorkloadFailed, err)
	}
	if cfg.KeepFiles {
		logger.Infow("keeping workload files", "dir", w.Dir)
	} else {
		defer func() {
			if err := workload.Remove(w); err != nil {
				logger.Warnw("failed to remove workload", "dir", w.Dir, "error", err)
			}
		}()
	}

	// Unbuffered output costs one write per line, which is part of what the
	// strategies are compared on.
	out := stdout
	if cfg.Buffered {
		out = bufio.NewWriterSize(stdout, outputBufferSize)
	}
	runner := bench.NewRunner(reg, out, logger)

	if cfg.MetricsAddr != "" {
		stopServer := startStatusServer(ctx, cfg.MetricsAddr, runner, logger)
		defer stopServer()
	}

	run := runner.Run(ctx, w)

	if err := report.Write(stdout, run.Results); err != nil {
		return withCode(ExitCodeReportFailed, err)
	}
	return nil
}

// generate writes the workload into a fresh directory below cfg.WorkDir.
func generate(cfg config.Config, logger *zap.SugaredLogger) (*model.Workload, error) {
	if cfg.WorkDir != "" {
		if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
			return nil, &workload.GenerationError{Path: cfg.WorkDir, Err: err}
		}
	}
	dir, err := os.MkdirTemp(cfg.WorkDir, "linebench-*")
	if err != nil {
		return nil, &workload.GenerationError{Path: cfg.WorkDir, Err: err}
	}

	w, err := workload.Generate(dir, cfg.FileCount, cfg.LineCount)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("generate workload: %w", err)
	}
	logger.Infow("workload generated", "dir", dir, "files", len(w.Files), "lines_per_file", w.LineCount)
	return w, nil
}

// startStatusServer serves the status API until the returned stop function
// is called.
func startStatusServer(ctx context.Context, addr string, runner *bench.Runner, logger *zap.SugaredLogger) func() {
	ctx, cancel := context.WithCancel(ctx)
	srv := api.NewServer(addr, runner.Registry(), runner, logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Run(ctx); err != nil {
			logger.Errorw("status server failed", "addr", addr, "error", err)
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
