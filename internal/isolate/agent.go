package isolate

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/seantiz/linebench/internal/workload"
)

// Serve handles one request read from r and streams the resulting messages
// to w. It is the body of the worker subcommand, run with the process's
// stdin and stdout.
func Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	bw := bufio.NewWriter(w)

	var req Request
	if err := ReadMessage(r, &req); err != nil {
		return errors.Join(
			fmt.Errorf("read request: %w", err),
			sendResult(bw, Result{Error: fmt.Sprintf("read request: %v", err)}),
			flush(bw),
		)
	}

	res := Process(ctx, req, func(batch []string) error {
		return WriteMessage(bw, &Message{Type: MsgTypeLines, Lines: batch})
	})

	if err := sendResult(bw, res); err != nil {
		return err
	}
	return flush(bw)
}

func flush(bw *bufio.Writer) error {
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush messages: %w", err)
	}
	return nil
}

// Process reads req.File and hands its lines to send in batches. Each batch
// is a fresh slice owned by the receiver. Failures are reported in the
// returned Result rather than as an error, matching what travels back over
// the wire.
func Process(ctx context.Context, req Request, send func(batch []string) error) Result {
	size := req.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	res := Result{File: req.File}
	batch := make([]string, 0, size)
	n, err := workload.ReadLines(ctx, req.File, func(line string) error {
		batch = append(batch, line)
		if len(batch) < size {
			return nil
		}
		full := batch
		batch = make([]string, 0, size)
		return send(full)
	})
	if err == nil && len(batch) > 0 {
		err = send(batch)
	}

	res.Lines = n
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

// sendResult sends the final Result wrapped in a Message.
func sendResult(w io.Writer, res Result) error {
	if err := WriteMessage(w, &Message{Type: MsgTypeResult, Result: &res}); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
