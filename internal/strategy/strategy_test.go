package strategy_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seantiz/linebench/internal/isolate"
	"github.com/seantiz/linebench/internal/model"
	"github.com/seantiz/linebench/internal/sink"
	"github.com/seantiz/linebench/internal/strategy"
	"github.com/seantiz/linebench/internal/workload"
)

const helperEnv = "LINEBENCH_STRATEGY_HELPER"

// TestMain turns the test binary into an isolate worker when spawned by the
// process-mode tests.
func TestMain(m *testing.M) {
	if os.Getenv(helperEnv) == "1" {
		if err := isolate.Serve(context.Background(), os.Stdin, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func processSpawner() *isolate.ProcessSpawner {
	return &isolate.ProcessSpawner{
		Path: os.Args[0],
		Args: []string{"strategy-helper"},
		Env:  []string{helperEnv + "=1"},
	}
}

func newWorkload(t *testing.T, files, lines int) *model.Workload {
	t.Helper()
	w, err := workload.Generate(t.TempDir(), files, lines)
	require.NoError(t, err)
	return w
}

// expectedLines returns every line of w in file-then-line order.
func expectedLines(w *model.Workload) []string {
	var lines []string
	for _, file := range w.Files {
		line := workload.Line(filepath.Base(file))
		for range w.LineCount {
			lines = append(lines, line)
		}
	}
	return lines
}

type namedStrategy struct {
	name string
	s    strategy.Strategy
}

func allStrategies() []namedStrategy {
	return []namedStrategy{
		{model.StrategySequential, strategy.Sequential{}},
		{model.StrategyThreads, strategy.Threads{}},
		{model.StrategyFibers, strategy.Fibers{}},
		{model.StrategyAsync, strategy.Async{}},
		{"isolates/actor", strategy.NewIsolates(isolate.ActorSpawner{})},
		{"isolates/process", strategy.NewIsolates(processSpawner())},
		{model.StrategyPool, strategy.NewPool(2)},
	}
}

var errSinkFull = errors.New("sink full")

// failingSink accepts a fixed number of lines and then fails every emit.
type failingSink struct {
	after int64
	n     atomic.Int64
}

func (s *failingSink) Emit(string) error {
	if s.n.Add(1) > s.after {
		return errSinkFull
	}
	return nil
}

func TestStrategiesEmitEveryLine(t *testing.T) {
	w := newWorkload(t, 5, 300)
	want := expectedLines(w)

	for _, tc := range allStrategies() {
		t.Run(tc.name, func(t *testing.T) {
			out := sink.NewMemory()
			require.NoError(t, tc.s.Run(context.Background(), w, out))
			require.ElementsMatch(t, want, out.Lines())
		})
	}
}

func TestStrategiesEmptyFiles(t *testing.T) {
	w := newWorkload(t, 3, 0)

	for _, tc := range allStrategies() {
		t.Run(tc.name, func(t *testing.T) {
			out := sink.NewMemory()
			require.NoError(t, tc.s.Run(context.Background(), w, out))
			require.Zero(t, out.Len())
		})
	}
}

func TestSequentialPreservesOrder(t *testing.T) {
	w := newWorkload(t, 4, 50)

	out := sink.NewMemory()
	require.NoError(t, strategy.Sequential{}.Run(context.Background(), w, out))
	require.Equal(t, expectedLines(w), out.Lines())
}

func TestStrategiesMissingFile(t *testing.T) {
	for _, tc := range allStrategies() {
		t.Run(tc.name, func(t *testing.T) {
			w := newWorkload(t, 3, 20)
			require.NoError(t, os.Remove(w.Files[1]))

			err := tc.s.Run(context.Background(), w, sink.NewMemory())
			require.Error(t, err)
			require.Contains(t, err.Error(), workload.FileName(1))
		})
	}
}

func TestMissingFileWrapsNotExist(t *testing.T) {
	w := newWorkload(t, 2, 5)
	require.NoError(t, os.Remove(w.Files[0]))

	for _, s := range []strategy.Strategy{
		strategy.Sequential{},
		strategy.Threads{},
		strategy.Fibers{},
		strategy.Async{},
		strategy.NewPool(1),
	} {
		err := s.Run(context.Background(), w, sink.Discard)
		require.ErrorIs(t, err, os.ErrNotExist, s.Capabilities().Name)
	}
}

func TestThreadsJoinsEveryFailure(t *testing.T) {
	w := newWorkload(t, 4, 10)
	require.NoError(t, os.Remove(w.Files[0]))
	require.NoError(t, os.Remove(w.Files[3]))

	out := sink.NewMemory()
	err := strategy.Threads{}.Run(context.Background(), w, out)
	require.Error(t, err)
	require.Contains(t, err.Error(), workload.FileName(0))
	require.Contains(t, err.Error(), workload.FileName(3))
	require.Equal(t, 20, out.Len())
}

func TestAsyncCancelledContext(t *testing.T) {
	w := newWorkload(t, 3, 100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := strategy.Async{}.Run(ctx, w, sink.NewMemory())
	require.ErrorIs(t, err, context.Canceled)
}

func TestAsyncChildFailureCancelsSiblings(t *testing.T) {
	w := newWorkload(t, 4, 1000)

	out := &failingSink{after: 10}
	err := strategy.Async{}.Run(context.Background(), w, out)
	require.ErrorIs(t, err, errSinkFull)
}

func TestSinkErrorsFailTheStrategy(t *testing.T) {
	w := newWorkload(t, 3, 200)

	for _, tc := range allStrategies() {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.s.Run(context.Background(), w, &failingSink{after: 5})
			require.ErrorIs(t, err, errSinkFull)
		})
	}
}

func TestNewPoolDefaultsToNumCPU(t *testing.T) {
	require.Equal(t, runtime.NumCPU(), strategy.NewPool(0).Size)
	require.Equal(t, 3, strategy.NewPool(3).Size)
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		s      strategy.Strategy
		name   string
		shared bool
	}{
		{strategy.Sequential{}, model.StrategySequential, false},
		{strategy.Threads{}, model.StrategyThreads, true},
		{strategy.Fibers{}, model.StrategyFibers, false},
		{strategy.Async{}, model.StrategyAsync, true},
		{strategy.NewIsolates(isolate.ActorSpawner{}), model.StrategyIsolates, false},
		{strategy.NewPool(4), model.StrategyPool, true},
	}
	for _, tt := range tests {
		caps := tt.s.Capabilities()
		require.Equal(t, tt.name, caps.Name)
		require.Equal(t, tt.shared, caps.SharedSink, tt.name)
		require.NotEmpty(t, caps.Model)
	}

	require.Equal(t, 4, strategy.NewPool(4).Capabilities().MaxConcurrency)
	require.Equal(t, "isolated/process", strategy.NewIsolates(processSpawner()).Capabilities().Model)
}
