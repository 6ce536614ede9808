package main

import (
	"errors"
	"fmt"

	annerrors "github.com/randalmurphal/announce/errors"
	"github.com/randalmurphal/announce/pipeline"
)

// messenger tailors CLI error suggestions to announce's configuration.
type messenger struct {
	annerrors.DefaultMessenger
}

var withMessenger = annerrors.WithMessenger(messenger{})

func (messenger) AuthErrorMessage() (string, string) {
	return "A remote service rejected the credentials.",
		"Set GITHUB_TOKEN (or github_app_id, github_installation_id and github_app_key_file),\n" +
			"GITLAB_TOKEN for GitLab, and OPENAI_API_KEY for openai/* models."
}

func (messenger) SessionExpiredMessage() (string, string) {
	return "The access token has expired or is invalid.",
		"Issue a new token, or check the GitHub App private key and installation ID."
}

func (messenger) NotInGitRepoMessage() (string, string) {
	return "The local platform needs a git repository.",
		"Run announce from a clone, or use --platform github|gitlab|event."
}

func (messenger) NoRepositoryMessage() (string, string) {
	return "No repository is configured.",
		"Pass --repo owner/name, set GITHUB_REPOSITORY, or run inside a clone with an origin remote."
}

func (messenger) ReleaseNotFoundMessage(tag string) (string, string) {
	return fmt.Sprintf("Release %s not found.", tag),
		"Check --tag, or omit it to announce the latest published release."
}

// explain turns a failed run into a user-facing error with suggestions.
// Errors that match no known category keep the run diagnostic.
func explain(report *pipeline.Report, tag, endpoint string) error {
	err := report.Err()
	if err == nil {
		return nil
	}
	var wrapped error
	switch {
	case annerrors.IsAuthError(err), annerrors.IsPermissionError(err):
		wrapped = annerrors.WrapAuthError(err, withMessenger)
	case annerrors.IsConnectionError(err):
		wrapped = annerrors.WrapConnectionError(err, endpoint, withMessenger)
	default:
		wrapped = annerrors.WrapReleaseError(err, tag, withMessenger)
	}
	var cliErr *annerrors.CLIError
	if errors.As(wrapped, &cliErr) && cliErr.Details == "" {
		cliErr.Details = report.Diagnostic
	}
	return wrapped
}
