package pipeline

import (
	"errors"
	"fmt"
)

// ErrRunTimeout indicates the run exceeded its wall-clock budget.
var ErrRunTimeout = errors.New("run exceeded its time budget")

// RunError reports a run that did not succeed.
type RunError struct {
	Status     RunStatus
	Diagnostic string
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %s: %s", e.Status, e.Diagnostic)
}
