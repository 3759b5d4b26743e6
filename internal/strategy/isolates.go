package strategy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/seantiz/linebench/internal/isolate"
	"github.com/seantiz/linebench/internal/model"
	"github.com/seantiz/linebench/internal/sink"
)

// Isolates processes every file in an isolated worker that shares no memory
// with the coordinator or its siblings. Workers receive their file through a
// request message and send line batches back; the coordinator is the only
// goroutine that touches the sink.
type Isolates struct {
	spawner   isolate.Spawner
	batchSize int
}

// NewIsolates returns the isolates strategy using the given spawner.
func NewIsolates(spawner isolate.Spawner) *Isolates {
	return &Isolates{spawner: spawner, batchSize: isolate.DefaultBatchSize}
}

// envelope tags a worker message with the index of its file.
type envelope struct {
	index int
	msg   isolate.Message
}

func (s *Isolates) Run(parent context.Context, w *model.Workload, out sink.Sink) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var errs []error
	workers := make([]isolate.Isolate, 0, len(w.Files))
	for _, file := range w.Files {
		iso, err := s.spawner.Spawn(ctx, isolate.Request{File: file, BatchSize: s.batchSize})
		if err != nil {
			errs = append(errs, fmt.Errorf("spawn isolate for %s: %w", file, err))
			cancel()
			break
		}
		workers = append(workers, iso)
	}

	// Fan in every outbox. After cancellation the forwarders keep draining so
	// that workers blocked on a full outbox can exit.
	merged := make(chan envelope)
	var wg sync.WaitGroup
	for i, iso := range workers {
		wg.Go(func() {
			for msg := range iso.Outbox() {
				select {
				case merged <- envelope{index: i, msg: msg}:
				case <-ctx.Done():
				}
			}
		})
	}
	go func() {
		wg.Wait()
		close(merged)
	}()

	reported := make([]bool, len(workers))
	for env := range merged {
		switch env.msg.Type {
		case isolate.MsgTypeLines:
			if ctx.Err() != nil {
				continue
			}
			if err := emitBatch(out, env.msg.Lines); err != nil {
				errs = append(errs, err)
				cancel()
			}
		case isolate.MsgTypeResult:
			reported[env.index] = true
			if res := env.msg.Result; res != nil && res.Error != "" {
				errs = append(errs, fmt.Errorf("isolate %s: %s", w.Files[env.index], res.Error))
				cancel()
			}
		}
	}

	failed := len(errs) > 0
	for i, iso := range workers {
		if err := iso.Wait(); err != nil && !failed {
			errs = append(errs, fmt.Errorf("isolate %s: %w", w.Files[i], err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if err := parent.Err(); err != nil {
		return err
	}
	for i, ok := range reported {
		if !ok {
			errs = append(errs, fmt.Errorf("isolate %s: %w", w.Files[i], isolate.ErrNoResult))
		}
	}
	return errors.Join(errs...)
}

func emitBatch(out sink.Sink, lines []string) error {
	for _, line := range lines {
		if err := out.Emit(line); err != nil {
			return err
		}
	}
	return nil
}

func (s *Isolates) Capabilities() Capabilities {
	return Capabilities{
		Name:     model.StrategyIsolates,
		Model:    ModelIsolated + "/" + s.spawner.Mode(),
		Parallel: true,
	}
}
