package sink_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seantiz/linebench/internal/sink"
)

// writeCounter records how many Write calls it receives.
type writeCounter struct {
	calls  int
	chunks []string
}

func (w *writeCounter) Write(p []byte) (int, error) {
	w.calls++
	w.chunks = append(w.chunks, string(p))
	return len(p), nil
}

type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestWriterOneWritePerLine(t *testing.T) {
	var w writeCounter
	s := sink.NewWriter(&w)

	require.NoError(t, s.Emit("alpha"))
	require.NoError(t, s.Emit("beta"))

	require.Equal(t, 2, w.calls)
	require.Equal(t, []string{"alpha\n", "beta\n"}, w.chunks)
}

func TestWriterPropagatesError(t *testing.T) {
	boom := errors.New("stdout closed")
	s := sink.NewWriter(failingWriter{err: boom})
	require.ErrorIs(t, s.Emit("x"), boom)
}

func TestLockedConcurrentLinesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	s := sink.NewLocked(&buf)

	const writers, perWriter = 8, 500
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			line := fmt.Sprintf("Line from writer_%d with some padding to widen the window", id)
			for j := 0; j < perWriter; j++ {
				if err := s.Emit(line); err != nil {
					t.Errorf("Emit: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, writers*perWriter)

	counts := make(map[string]int)
	for _, line := range lines {
		counts[line]++
	}
	require.Len(t, counts, writers)
	for line, n := range counts {
		require.Equal(t, perWriter, n, "line %q", line)
	}
}

func TestCounter(t *testing.T) {
	mem := sink.NewMemory()
	c := sink.NewCounter(mem)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.Emit("x")
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 400, c.Count())
	require.Equal(t, 400, mem.Len())
}

func TestCounterSkipsFailedLines(t *testing.T) {
	c := sink.NewCounter(sink.NewWriter(failingWriter{err: errors.New("nope")}))
	require.Error(t, c.Emit("x"))
	require.Zero(t, c.Count())
}

func TestMemoryLinesIsCopy(t *testing.T) {
	m := sink.NewMemory()
	require.NoError(t, m.Emit("a"))

	lines := m.Lines()
	lines[0] = "mutated"
	require.Equal(t, []string{"a"}, m.Lines())
}

func TestDiscard(t *testing.T) {
	require.NoError(t, sink.Discard.Emit("anything"))
}
