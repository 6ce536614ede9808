package pipeline

import (
	"strings"
	"time"

	"github.com/randalmurphal/announce/artifact"
	"github.com/randalmurphal/announce/collect"
	"github.com/randalmurphal/announce/prompt"
	"github.com/randalmurphal/announce/release"
)

// RunStatus is the overall outcome of a run.
type RunStatus string

// Run outcomes.
const (
	StatusSuccess RunStatus = "success"
	StatusPartial RunStatus = "partial"
	StatusError   RunStatus = "error"
)

// ExitCode maps a status to the CLI exit code.
func (s RunStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 2
	default:
		return 1
	}
}

// Report describes one run. Exactly one of Artifact (success) or Raw
// (partial) is set unless the run failed, in which case neither is.
type Report struct {
	RunID   string      `json:"run_id"`
	Status  RunStatus   `json:"status"`
	Release release.Ref `json:"release"`

	Artifact *artifact.Artifact `json:"artifact,omitempty"`
	Raw      string             `json:"raw,omitempty"`

	// Diagnostic is a single line naming the cause of a partial or error run.
	Diagnostic string `json:"diagnostic,omitempty"`

	Collectors []collect.Output `json:"collectors"`
	Context    *release.Context `json:"-"`
	Prompt     *prompt.Payload  `json:"-"`
	Truncated  bool             `json:"truncated"`
	Attempts   int              `json:"attempts"`
	Duration   time.Duration    `json:"duration"`
}

// Err returns the run's failure cause, or nil for success.
func (r *Report) Err() error {
	if r.Status == StatusSuccess {
		return nil
	}
	return &RunError{Status: r.Status, Diagnostic: r.Diagnostic}
}

func (r *Report) fail(err error) {
	r.Status = StatusError
	r.Diagnostic = diagnostic(err.Error())
	r.Artifact = nil
}

func diagnostic(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
