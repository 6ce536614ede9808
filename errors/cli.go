package errors

import (
	"errors"
	"fmt"
	"strings"
)

// CLIError wraps an error with user-friendly context and suggestions.
type CLIError struct {
	// Err is the underlying error
	Err error

	// Message is a user-friendly description of what went wrong
	Message string

	// Suggestion is an actionable hint for the user
	Suggestion string

	// Details provides additional context (optional)
	Details string
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// ErrorMessenger provides customizable error messages.
// Implement this interface to customize suggestions for your CLI.
type ErrorMessenger interface {
	// AuthErrorMessage returns the message and suggestion for unauthenticated errors.
	AuthErrorMessage() (message, suggestion string)

	// SessionExpiredMessage returns the message and suggestion for expired sessions.
	SessionExpiredMessage() (message, suggestion string)

	// PermissionDeniedMessage returns the message and suggestion for permission errors.
	PermissionDeniedMessage() (message, suggestion string)

	// ConnectionErrorMessage returns the message and suggestion for connection errors.
	// The serverURL parameter is the URL that failed to connect.
	ConnectionErrorMessage(serverURL string) (message, suggestion string)

	// TLSErrorMessage returns the message and suggestion for TLS/certificate errors.
	TLSErrorMessage(serverURL string) (message, suggestion string)

	// TimeoutErrorMessage returns the message and suggestion for timeout errors.
	TimeoutErrorMessage(serverURL string) (message, suggestion string)

	// NotInGitRepoMessage returns the message and suggestion for git repo errors.
	NotInGitRepoMessage() (message, suggestion string)

	// NoRepositoryMessage returns the message and suggestion when no
	// repository is configured or detectable.
	NoRepositoryMessage() (message, suggestion string)

	// ReleaseNotFoundMessage returns the message and suggestion for a
	// release tag that does not exist.
	ReleaseNotFoundMessage(tag string) (message, suggestion string)
}

// DefaultMessenger provides default error messages.
type DefaultMessenger struct{}

func (m DefaultMessenger) AuthErrorMessage() (string, string) {
	return "The hosting API rejected the credentials.", "Check that a valid token is set."
}

func (m DefaultMessenger) SessionExpiredMessage() (string, string) {
	return "The access token has expired or is invalid.", "Issue a new token and try again."
}

func (m DefaultMessenger) PermissionDeniedMessage() (string, string) {
	return "You don't have permission to perform this action.",
		"Contact your administrator for access."
}

func (m DefaultMessenger) ConnectionErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("Cannot connect to server at %s", serverURL),
		"Check that:\n  - The server is running\n  - The URL is correct\n  - Your network connection is working"
}

func (m DefaultMessenger) TLSErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("TLS/certificate error connecting to %s", serverURL),
		"Check that the server certificate is valid."
}

func (m DefaultMessenger) TimeoutErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("Connection to %s timed out", serverURL),
		"The server may be overloaded or unreachable.\nTry again in a moment."
}

func (m DefaultMessenger) NotInGitRepoMessage() (string, string) {
	return "This command must be run from within a git repository.",
		"Run this command from a git repository or name the repository explicitly."
}

func (m DefaultMessenger) NoRepositoryMessage() (string, string) {
	return "No repository is configured.",
		"Name the repository as owner/name or run inside a clone with an origin remote."
}

func (m DefaultMessenger) ReleaseNotFoundMessage(tag string) (string, string) {
	return fmt.Sprintf("Release %s not found.", tag),
		"Check the tag name, or omit it to use the latest published release."
}

// WrapConfig configures error wrapping behavior.
type WrapConfig struct {
	Messenger ErrorMessenger
}

// Option configures WrapConfig.
type Option func(*WrapConfig)

// WithMessenger sets a custom error messenger.
func WithMessenger(m ErrorMessenger) Option {
	return func(c *WrapConfig) {
		c.Messenger = m
	}
}

func getMessenger(opts []Option) ErrorMessenger {
	cfg := &WrapConfig{
		Messenger: DefaultMessenger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg.Messenger
}

// WrapAuthError wraps authentication-related errors with helpful guidance.
func WrapAuthError(err error, opts ...Option) error {
	if err == nil {
		return nil
	}

	errStr := lower(err)
	messenger := getMessenger(opts)

	var msg, suggestion string
	var sentinel error
	switch {
	case errors.Is(err, ErrSessionExpired),
		strings.Contains(errStr, "token") && (strings.Contains(errStr, "expired") || strings.Contains(errStr, "invalid")):
		sentinel = ErrSessionExpired
		msg, suggestion = messenger.SessionExpiredMessage()
	case IsAuthError(err):
		sentinel = ErrNotAuthenticated
		msg, suggestion = messenger.AuthErrorMessage()
	case IsPermissionError(err):
		sentinel = ErrPermissionDenied
		msg, suggestion = messenger.PermissionDeniedMessage()
	default:
		return err
	}
	return &CLIError{Err: sentinel, Message: msg, Suggestion: suggestion}
}

// WrapConnectionError wraps connection-related errors with helpful guidance.
// serverURL names the endpoint in the message.
func WrapConnectionError(err error, serverURL string, opts ...Option) error {
	if !IsConnectionError(err) {
		return err
	}

	errStr := lower(err)
	messenger := getMessenger(opts)

	switch {
	case containsAny(errStr, networkMarkers):
		msg, suggestion := messenger.ConnectionErrorMessage(serverURL)
		return &CLIError{Err: ErrConnectionFailed, Message: msg, Suggestion: suggestion}
	case containsAny(errStr, tlsMarkers):
		msg, suggestion := messenger.TLSErrorMessage(serverURL)
		return &CLIError{Err: ErrConnectionFailed, Message: msg, Details: err.Error(), Suggestion: suggestion}
	case containsAny(errStr, timeoutMarkers):
		msg, suggestion := messenger.TimeoutErrorMessage(serverURL)
		return &CLIError{Err: ErrConnectionFailed, Message: msg, Suggestion: suggestion}
	default:
		msg, suggestion := messenger.ConnectionErrorMessage(serverURL)
		return &CLIError{Err: ErrConnectionFailed, Message: msg, Details: err.Error(), Suggestion: suggestion}
	}
}

// WrapReleaseError turns not-found failures while resolving tag into a
// CLIError wrapping ErrReleaseNotFound. Other errors pass through.
func WrapReleaseError(err error, tag string, opts ...Option) error {
	if err == nil {
		return nil
	}

	errStr := lower(err)
	messenger := getMessenger(opts)

	if strings.Contains(errStr, "not found") || strings.Contains(errStr, "404") {
		msg, suggestion := messenger.ReleaseNotFoundMessage(tag)
		return &CLIError{
			Err:        ErrReleaseNotFound,
			Message:    msg,
			Details:    err.Error(),
			Suggestion: suggestion,
		}
	}

	return err
}

// NewNotInGitRepoError creates an error for commands that require a git repository.
func NewNotInGitRepoError(opts ...Option) error {
	messenger := getMessenger(opts)
	msg, suggestion := messenger.NotInGitRepoMessage()
	return &CLIError{
		Err:        ErrNotInGitRepo,
		Message:    msg,
		Suggestion: suggestion,
	}
}

// NewNoRepositoryError creates an error when no repository is configured.
func NewNoRepositoryError(opts ...Option) error {
	messenger := getMessenger(opts)
	msg, suggestion := messenger.NoRepositoryMessage()
	return &CLIError{
		Err:        ErrNoRepository,
		Message:    msg,
		Suggestion: suggestion,
	}
}
