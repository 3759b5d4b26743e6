package strategy

import (
	"context"

	"github.com/seantiz/linebench/internal/model"
	"github.com/seantiz/linebench/internal/sink"
	"github.com/seantiz/linebench/internal/workload"
)

// Sequential reads the files one after another on the calling goroutine.
// Lines are emitted in exact file-then-line order.
type Sequential struct{}

func (Sequential) Run(ctx context.Context, w *model.Workload, out sink.Sink) error {
	for _, file := range w.Files {
		if _, err := workload.ReadLines(ctx, file, out.Emit); err != nil {
			return err
		}
	}
	return nil
}

func (Sequential) Capabilities() Capabilities {
	return Capabilities{
		Name:           model.StrategySequential,
		Model:          ModelNone,
		MaxConcurrency: 1,
	}
}
