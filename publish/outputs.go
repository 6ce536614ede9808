package publish

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/randalmurphal/announce/pipeline"
)

// StepOutputs returns the values exported to CI for a run.
func StepOutputs(report *pipeline.Report, res Result) map[string]string {
	return map[string]string{
		"status":     string(report.Status),
		"path":       res.Path,
		"diagnostic": report.Diagnostic,
		"run_id":     report.RunID,
	}
}

// WriteStepOutputs appends values to a GitHub Actions output file. Values
// containing newlines use the heredoc form with a random delimiter. An empty
// path is a no-op.
func WriteStepOutputs(path string, values map[string]string) error {
	if path == "" {
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := values[k]
		if !strings.ContainsAny(v, "\r\n") {
			fmt.Fprintf(&b, "%s=%s\n", k, v)
			continue
		}
		delim, err := nanoid.New()
		if err != nil {
			return fmt.Errorf("generate output delimiter: %w", err)
		}
		delim = "ANNOUNCE_EOF_" + delim
		fmt.Fprintf(&b, "%s<<%s\n%s\n%s\n", k, delim, strings.TrimRight(v, "\n"), delim)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open step output: %w", err)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		return fmt.Errorf("write step output: %w", err)
	}
	return f.Close()
}

// PrintStatus writes the machine-readable status lines.
func PrintStatus(w io.Writer, report *pipeline.Report, path string) {
	fmt.Fprintf(w, "STATUS::%s\n", report.Status)
	if path != "" {
		fmt.Fprintf(w, "ANNOUNCEMENT::%s\n", path)
	}
}
