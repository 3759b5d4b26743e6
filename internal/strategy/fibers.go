package strategy

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/seantiz/linebench/internal/coop"
	"github.com/seantiz/linebench/internal/model"
	"github.com/seantiz/linebench/internal/sink"
	"github.com/seantiz/linebench/internal/workload"
)

// Fibers runs one cooperative task per file on a single OS thread. Tasks
// yield after opening their file and after every line read, so I/O of
// different files interleaves without any parallelism.
type Fibers struct{}

func (Fibers) Run(ctx context.Context, w *model.Workload, out sink.Sink) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	sched := coop.New()
	for _, file := range w.Files {
		sched.Spawn(&fileTask{path: file, out: out})
	}
	err := sched.Run(ctx)
	fiberSwitches.Add(float64(sched.Switches()))
	return err
}

func (Fibers) Capabilities() Capabilities {
	return Capabilities{
		Name:  model.StrategyFibers,
		Model: ModelCooperative,
	}
}

// fileTask emits one file line by line, suspending after each read.
type fileTask struct {
	path    string
	out     sink.Sink
	f       *os.File
	scanner *bufio.Scanner
}

func (t *fileTask) Step() (bool, error) {
	if t.scanner == nil {
		f, err := os.Open(t.path)
		if err != nil {
			return false, fmt.Errorf("open %s: %w", t.path, err)
		}
		t.f = f
		t.scanner = workload.NewScanner(f)
		return false, nil
	}

	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return false, fmt.Errorf("read %s: %w", t.path, err)
		}
		return true, nil
	}
	return false, t.out.Emit(t.scanner.Text())
}

func (t *fileTask) Close() error {
	if t.f == nil {
		return nil
	}
	err := t.f.Close()
	t.f = nil
	return err
}
