package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/announce/config"
)

// app carries the streams and overrides shared by all commands.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// root overrides the detected repository root.
	root string

	newResolver func() *config.Resolver
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:      stdout,
		stderr:      stderr,
		newResolver: config.NewAnnounceResolver,
	}
}

// exitError carries a process exit code. A nil err means the command
// already reported the outcome.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitError) Unwrap() error { return e.err }

// Execute runs the CLI and returns the process exit code: 0 success,
// 1 error, 2 partial (draft written, needs review).
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return run(ctx, newApp(stdout, stderr), args)
}

func run(ctx context.Context, a *app, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	return 1
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "announce",
		Short: "Generate release announcements from API and change history",
		Long: `announce turns a published release into a customer-facing announcement.

It resolves the release, collects pull requests, commits and OpenAPI
changes, asks a language model for a draft, validates the result and
writes it as Markdown, MkDocs or Jekyll.

Configuration is layered: flags > environment (ANNOUNCE_*) > .announce.yaml
in the repository > ~/.config/announce/config.yaml > defaults.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newGenerateCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return cmd
}

// setupLogging installs a text handler on stderr as the default logger.
func setupLogging(w io.Writer, level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
