// Package scope provides a structured-concurrency scope: the goroutines a
// scope spawns cannot outlive it, the first failure cancels the siblings, and
// the scope only returns once every child has finished.
package scope

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// PanicError carries a recovered panic and the stack it was raised on.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Scope owns a set of child goroutines. It is only valid inside the body
// passed to Run.
type Scope struct {
	g   *errgroup.Group
	ctx context.Context
}

// Run opens a scope bound to ctx and runs body in it. Run returns only after
// body and every child it spawned have returned, and reports the first error.
// Cancelling ctx, or any child failing, cancels the context seen by all
// children.
func Run(ctx context.Context, body func(s *Scope) error) error {
	g, gctx := errgroup.WithContext(ctx)
	s := &Scope{g: g, ctx: gctx}
	s.Go(func(context.Context) error {
		return body(s)
	})
	return g.Wait()
}

// Go spawns fn as a child of the scope. fn receives the scope context and
// should return promptly once it is done. Panics are returned as *PanicError.
func (s *Scope) Go(fn func(ctx context.Context) error) {
	s.g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &PanicError{Value: r, Stack: debug.Stack()}
			}
		}()
		return fn(s.ctx)
	})
}

// Context returns the context shared by the scope's children.
func (s *Scope) Context() context.Context {
	return s.ctx
}
