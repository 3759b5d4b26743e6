// Package report renders benchmark results as a fixed-width table in the
// layout of a classic user/system/total/real benchmark listing.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/seantiz/linebench/internal/model"
)

// Error is a failure to write the report. It is fatal to the run.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("write report: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

const labelHeader = "strategy"

// errWriter keeps the first write error and turns later writes into no-ops.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// Write prints a header and one row per result, in the order given. Times are
// in seconds with six decimals; the wall-clock column is parenthesised.
// Failed and skipped results print their status instead of times.
func Write(w io.Writer, results []model.BenchmarkResult) error {
	width := len(labelHeader)
	for _, r := range results {
		width = max(width, len(r.Strategy))
	}

	ew := &errWriter{w: w}
	ew.printf("%-*s %10s %10s %10s %12s\n", width, labelHeader, "user", "system", "total", "real")
	for _, r := range results {
		switch r.Status {
		case model.StatusCompleted:
			ew.printf("%-*s %10.6f %10.6f %10.6f (%10.6f)\n", width, r.Strategy,
				r.User.Seconds(), r.System.Seconds(), r.Total().Seconds(), r.Elapsed.Seconds())
		case model.StatusSkipped:
			ew.printf("%-*s SKIPPED\n", width, r.Strategy)
		default:
			ew.printf("%-*s FAILED: %s\n", width, r.Strategy, Summary(r.Error))
		}
	}

	if ew.err != nil {
		return &Error{Err: ew.err}
	}
	return nil
}

// Summary returns the first line of an error message.
func Summary(msg string) string {
	first, _, _ := strings.Cut(msg, "\n")
	if first == "" {
		return "unknown error"
	}
	return first
}
