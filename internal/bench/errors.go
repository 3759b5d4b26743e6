package bench

import "fmt"

// ExecutionError is a failure raised by a strategy during a run. It is
// recorded in that strategy's result and never aborts the run.
type ExecutionError struct {
	Strategy string
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("strategy %s: %v", e.Strategy, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
