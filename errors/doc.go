// Package errors provides CLI error patterns with user-friendly messaging.
//
// Core types:
//   - CLIError: Wraps errors with message, suggestion, and details
//   - ErrorMessenger: Interface for customizing error messages
//
// Sentinel errors for common scenarios:
//   - ErrNotAuthenticated: User needs to log in
//   - ErrSessionExpired: Auth token has expired
//   - ErrNotInGitRepo: Command requires a git repository
//   - ErrNoRepository: No repository could be determined
//   - ErrReleaseNotFound: The requested release tag does not exist
//   - ErrConnectionFailed: Server is unreachable
//   - ErrPermissionDenied: Insufficient permissions
//
// Example usage:
//
//	// Wrap an auth error with default messages
//	if err := doAuthThing(); err != nil {
//	    return errors.WrapAuthError(err)
//	}
//
//	// Wrap with custom messages
//	type myMessenger struct{}
//	func (m myMessenger) AuthErrorMessage() (string, string) {
//	    return "GitHub rejected the token.", "Export GITHUB_TOKEN and retry."
//	}
//
//	wrapped := errors.WrapAuthError(err, errors.WithMessenger(myMessenger{}))
//
//	// Check error types
//	if errors.IsAuthError(err) {
//	    // Handle auth-related error
//	}
package errors
