// Package sink provides the output abstraction strategies emit lines into.
// Every implementation hands a line to the underlying writer in a single
// Write call, so lines are never split even when writers interleave.
package sink

import (
	"io"
	"slices"
	"sync"
	"sync/atomic"
)

// Sink receives emitted lines. Implementations document whether they are
// safe for concurrent use.
type Sink interface {
	Emit(line string) error
}

// Writer emits each line followed by a newline with one Write call.
// It is not safe for concurrent use.
type Writer struct {
	w   io.Writer
	buf []byte
}

// NewWriter returns an unsynchronized sink writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Emit writes line and a trailing newline.
func (s *Writer) Emit(line string) error {
	s.buf = append(s.buf[:0], line...)
	s.buf = append(s.buf, '\n')
	_, err := s.w.Write(s.buf)
	return err
}

// Locked serializes Emit calls from concurrent goroutines.
type Locked struct {
	mu sync.Mutex
	w  Writer
}

// NewLocked returns a mutex-guarded sink writing to w.
func NewLocked(w io.Writer) *Locked {
	return &Locked{w: Writer{w: w}}
}

// Emit writes line under the lock.
func (s *Locked) Emit(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Emit(line)
}

// Counter counts lines successfully emitted into the wrapped sink.
// It is as safe for concurrent use as the sink it wraps.
type Counter struct {
	next Sink
	n    atomic.Int64
}

// NewCounter wraps next.
func NewCounter(next Sink) *Counter {
	return &Counter{next: next}
}

// Emit forwards line and counts it on success.
func (c *Counter) Emit(line string) error {
	if err := c.next.Emit(line); err != nil {
		return err
	}
	c.n.Add(1)
	return nil
}

// Count returns the number of lines emitted so far.
func (c *Counter) Count() int64 {
	return c.n.Load()
}

// Memory records every emitted line. It is safe for concurrent use.
type Memory struct {
	mu    sync.Mutex
	lines []string
}

// NewMemory returns an empty recording sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Emit records line.
func (m *Memory) Emit(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
	return nil
}

// Lines returns a copy of the recorded lines in emission order.
func (m *Memory) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.lines)
}

// Len returns the number of recorded lines.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lines)
}

// Discard accepts and drops every line.
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(string) error { return nil }
