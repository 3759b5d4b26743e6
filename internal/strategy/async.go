package strategy

import (
	"context"

	"github.com/seantiz/linebench/internal/model"
	"github.com/seantiz/linebench/internal/scope"
	"github.com/seantiz/linebench/internal/sink"
	"github.com/seantiz/linebench/internal/workload"
)

// Async spawns one child task per file inside a structured scope. The scope
// exit joins every child; cancelling ctx, or a failing child, cancels the
// rest before Run returns.
type Async struct{}

func (Async) Run(ctx context.Context, w *model.Workload, out sink.Sink) error {
	return scope.Run(ctx, func(s *scope.Scope) error {
		for _, file := range w.Files {
			s.Go(func(ctx context.Context) error {
				_, err := workload.ReadLines(ctx, file, out.Emit)
				return err
			})
		}
		return nil
	})
}

func (Async) Capabilities() Capabilities {
	return Capabilities{
		Name:       model.StrategyAsync,
		Model:      ModelStructured,
		Parallel:   true,
		SharedSink: true,
	}
}
