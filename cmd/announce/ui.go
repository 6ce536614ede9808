package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/randalmurphal/announce/pipeline"
	"github.com/randalmurphal/announce/publish"
)

const (
	defaultWidth  = 80
	maxWidth      = 120
	diagnosticMax = 400
)

// ui renders human-facing output on stderr. Machine-readable STATUS::
// lines go to stdout separately.
type ui struct {
	w     io.Writer
	tty   bool
	color bool
	width int
}

func newUI(w io.Writer, noColor bool) *ui {
	u := &ui{w: w, width: defaultWidth}
	f, ok := w.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return u
	}
	u.tty = true
	u.color = !noColor && termenv.NewOutput(f).EnvColorProfile() != termenv.Ascii
	if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 20 {
		u.width = min(cols, maxWidth)
	}
	return u
}

// spin shows a spinner on a terminal and returns the function that stops it.
func (u *ui) spin(msg string) func() {
	if !u.tty {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(u.w))
	s.Suffix = " " + msg
	s.Start()
	return s.Stop
}

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	partialStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

func (u *ui) style(s lipgloss.Style, text string) string {
	if !u.color {
		return text
	}
	return s.Render(text)
}

// summary prints the run outcome: status, release, destination and, for
// anything but success, the wrapped diagnostic.
func (u *ui) summary(report *pipeline.Report, res publish.Result) {
	var status string
	switch report.Status {
	case pipeline.StatusSuccess:
		status = u.style(successStyle, "success")
	case pipeline.StatusPartial:
		status = u.style(partialStyle, "partial")
	default:
		status = u.style(errorStyle, "error")
	}

	tag := report.Release.Tag
	if tag == "" {
		tag = "(unresolved)"
	}
	fmt.Fprintf(u.w, "%s %s %s\n", status, tag, u.style(dimStyle, fmt.Sprintf("[%s, %s]", report.RunID, report.Duration.Round(time.Millisecond))))

	if res.Path != "" {
		label := "wrote"
		if res.Draft {
			label = "draft"
		}
		fmt.Fprintf(u.w, "  %s %s\n", label, res.Path)
	}
	if res.Committed {
		fmt.Fprintln(u.w, "  committed")
	}
	if report.Truncated {
		fmt.Fprintln(u.w, "  context truncated to fit the token budget")
	}
	for _, c := range report.Collectors {
		if c.Reason != "" {
			fmt.Fprintf(u.w, "  %s %s: %s\n", u.style(dimStyle, string(c.Status)), c.Collector, truncate.StringWithTail(c.Reason, uint(u.width), "..."))
		}
	}

	if report.Status != pipeline.StatusSuccess && report.Diagnostic != "" {
		diag := truncate.StringWithTail(report.Diagnostic, diagnosticMax, "...")
		fmt.Fprintln(u.w, indent(wordwrap.String(diag, u.width-2), "  "))
	}
}

// render formats markdown for the terminal.
func (u *ui) render(markdown string) (string, error) {
	styleOpt := glamour.WithStandardStyle("notty")
	if u.color {
		styleOpt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(u.width))
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	return r.Render(markdown)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
