// Package coop implements cooperative multitasking on a single goroutine.
// Tasks run until they reach a suspension point and hand control back to the
// scheduler, which resumes the next runnable task in round-robin order.
package coop

import (
	"context"
	"errors"
	"io"

	"github.com/eapache/queue"
)

// Task is a cooperatively scheduled unit of work. Step runs the task up to
// its next suspension point and reports whether it has finished. A task that
// also implements io.Closer is closed once the scheduler drops it.
type Task interface {
	Step() (done bool, err error)
}

// Func adapts a plain function to the Task interface.
type Func func() (bool, error)

// Step calls f.
func (f Func) Step() (bool, error) { return f() }

// Scheduler drives spawned tasks to completion. It is not safe for concurrent
// use: spawning and running happen on the driving goroutine.
type Scheduler struct {
	runq     *queue.Queue
	switches int64
}

// New creates a scheduler with an empty run queue.
func New() *Scheduler {
	return &Scheduler{runq: queue.New()}
}

// Spawn adds t to the back of the run queue.
func (s *Scheduler) Spawn(t Task) {
	s.runq.Add(t)
}

// Len returns the number of runnable tasks.
func (s *Scheduler) Len() int {
	return s.runq.Length()
}

// Switches returns how many times a task was resumed.
func (s *Scheduler) Switches() int64 {
	return s.switches
}

// Run resumes tasks round-robin until the run queue is empty. The first task
// error, or cancellation of ctx, stops the loop; every task still queued is
// closed before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	for s.runq.Length() > 0 {
		if err := ctx.Err(); err != nil {
			return errors.Join(err, s.drain())
		}

		t := s.runq.Remove().(Task)
		s.switches++
		done, err := t.Step()
		if err != nil {
			return errors.Join(err, closeTask(t), s.drain())
		}
		if done {
			if err := closeTask(t); err != nil {
				return errors.Join(err, s.drain())
			}
			continue
		}
		s.runq.Add(t)
	}
	return nil
}

// drain closes and drops every queued task.
func (s *Scheduler) drain() error {
	var errs []error
	for s.runq.Length() > 0 {
		errs = append(errs, closeTask(s.runq.Remove().(Task)))
	}
	return errors.Join(errs...)
}

func closeTask(t Task) error {
	if c, ok := t.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
