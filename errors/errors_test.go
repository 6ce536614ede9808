package errors

import (
	"errors"
	"fmt"
	"io"
	"syscall"
	"testing"
)

func TestCLIError(t *testing.T) {
	err := &CLIError{
		Err:        ErrNotAuthenticated,
		Message:    "Test message",
		Suggestion: "Test suggestion",
		Details:    "Test details",
	}

	// Check error message format
	errStr := err.Error()
	if !contains(errStr, "Test message") {
		t.Errorf("expected error to contain 'Test message', got %q", errStr)
	}
	if !contains(errStr, "Test details") {
		t.Errorf("expected error to contain 'Test details', got %q", errStr)
	}
	if !contains(errStr, "Test suggestion") {
		t.Errorf("expected error to contain 'Test suggestion', got %q", errStr)
	}

	// Check unwrap
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Error("expected error to unwrap to ErrNotAuthenticated")
	}
}

func TestCLIError_MinimalFields(t *testing.T) {
	err := &CLIError{
		Err:     ErrConnectionFailed,
		Message: "Connection failed",
	}

	errStr := err.Error()
	if errStr != "Connection failed" {
		t.Errorf("expected 'Connection failed', got %q", errStr)
	}
}

func TestWrapAuthError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantType   error
		wantNil    bool
		wantSubstr string
	}{
		{
			name:    "nil error",
			err:     nil,
			wantNil: true,
		},
		{
			name:       "token expired",
			err:        errors.New("token has expired"),
			wantType:   ErrSessionExpired,
			wantSubstr: "expired or is invalid",
		},
		{
			name:       "invalid token",
			err:        errors.New("invalid token"),
			wantType:   ErrSessionExpired,
			wantSubstr: "expired or is invalid",
		},
		{
			name:       "unauthenticated",
			err:        errors.New("unauthenticated: missing credentials"),
			wantType:   ErrNotAuthenticated,
			wantSubstr: "rejected the credentials",
		},
		{
			name:       "unauthorized 401",
			err:        errors.New("server returned 401 Unauthorized"),
			wantType:   ErrNotAuthenticated,
			wantSubstr: "rejected the credentials",
		},
		{
			name:       "permission denied",
			err:        errors.New("permission denied for resource"),
			wantType:   ErrPermissionDenied,
			wantSubstr: "don't have permission",
		},
		{
			name:       "forbidden 403",
			err:        errors.New("forbidden: 403"),
			wantType:   ErrPermissionDenied,
			wantSubstr: "don't have permission",
		},
		{
			name:     "other error passthrough",
			err:      errors.New("some other error"),
			wantType: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapAuthError(tt.err)

			if tt.wantNil {
				if wrapped != nil {
					t.Errorf("expected nil, got %v", wrapped)
				}
				return
			}

			if tt.wantType == nil {
				if wrapped != tt.err {
					t.Errorf("expected passthrough, got wrapped error")
				}
				return
			}

			if !errors.Is(wrapped, tt.wantType) {
				t.Errorf("expected error to be %v, got %v", tt.wantType, wrapped)
			}
			if !contains(wrapped.Error(), tt.wantSubstr) {
				t.Errorf("expected error to contain %q, got %q", tt.wantSubstr, wrapped.Error())
			}
		})
	}
}

func TestWrapAuthError_CustomMessenger(t *testing.T) {
	messenger := &testMessenger{
		authMsg:        "Custom auth message",
		authSuggestion: "Custom suggestion",
	}

	err := WrapAuthError(errors.New("unauthenticated"), WithMessenger(messenger))

	if !contains(err.Error(), "Custom auth message") {
		t.Errorf("expected custom message, got %q", err.Error())
	}
	if !contains(err.Error(), "Custom suggestion") {
		t.Errorf("expected custom suggestion, got %q", err.Error())
	}
}

func TestWrapConnectionError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		serverURL  string
		wantType   error
		wantNil    bool
		wantSubstr string
	}{
		{
			name:    "nil error",
			err:     nil,
			wantNil: true,
		},
		{
			name:       "connection refused",
			err:        errors.New("dial tcp: connection refused"),
			serverURL:  "http://localhost:8080",
			wantType:   ErrConnectionFailed,
			wantSubstr: "Cannot connect to server",
		},
		{
			name:       "no such host",
			err:        errors.New("dial tcp: no such host"),
			serverURL:  "http://unknown.host",
			wantType:   ErrConnectionFailed,
			wantSubstr: "Cannot connect to server",
		},
		{
			name:       "certificate error",
			err:        errors.New("x509: certificate signed by unknown authority"),
			serverURL:  "https://secure.example.com",
			wantType:   ErrConnectionFailed,
			wantSubstr: "TLS/certificate error",
		},
		{
			name:       "dropped connection",
			err:        fmt.Errorf("openai request failed: %w", io.ErrUnexpectedEOF),
			serverURL:  "https://api.openai.com",
			wantType:   ErrConnectionFailed,
			wantSubstr: "Cannot connect to server",
		},
		{
			name:       "timeout",
			err:        errors.New("context deadline exceeded"),
			serverURL:  "http://slow.server.com",
			wantType:   ErrConnectionFailed,
			wantSubstr: "timed out",
		},
		{
			name:      "other error passthrough",
			err:       errors.New("some other error"),
			serverURL: "http://localhost:8080",
			wantType:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapConnectionError(tt.err, tt.serverURL)

			if tt.wantNil {
				if wrapped != nil {
					t.Errorf("expected nil, got %v", wrapped)
				}
				return
			}

			if tt.wantType == nil {
				if wrapped != tt.err {
					t.Errorf("expected passthrough, got wrapped error")
				}
				return
			}

			if !errors.Is(wrapped, tt.wantType) {
				t.Errorf("expected error to be %v, got %v", tt.wantType, wrapped)
			}
			if !contains(wrapped.Error(), tt.wantSubstr) {
				t.Errorf("expected error to contain %q, got %q", tt.wantSubstr, wrapped.Error())
			}
		})
	}
}

func TestWrapReleaseError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantSubstr string
		wrapped    bool
	}{
		{
			name:       "not found",
			err:        errors.New("release not found"),
			wantSubstr: "Release v9.9.9 not found",
			wrapped:    true,
		},
		{
			name:       "404 error",
			err:        errors.New("GET https://api.github.com/repos/acme/w/releases/tags/v9.9.9: 404 Not Found"),
			wantSubstr: "latest published release",
			wrapped:    true,
		},
		{
			name: "passthrough",
			err:  errors.New("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapReleaseError(tt.err, "v9.9.9")
			if !tt.wrapped {
				if wrapped != tt.err {
					t.Errorf("expected passthrough, got %v", wrapped)
				}
				return
			}
			if !errors.Is(wrapped, ErrReleaseNotFound) {
				t.Errorf("expected ErrReleaseNotFound, got %v", wrapped)
			}
			if !contains(wrapped.Error(), tt.wantSubstr) {
				t.Errorf("expected error to contain %q, got %q", tt.wantSubstr, wrapped.Error())
			}
		})
	}
	if WrapReleaseError(nil, "v1") != nil {
		t.Error("nil error should stay nil")
	}
}

func TestNewErrors(t *testing.T) {
	t.Run("NewNotInGitRepoError", func(t *testing.T) {
		err := NewNotInGitRepoError()
		if !errors.Is(err, ErrNotInGitRepo) {
			t.Error("expected error to be ErrNotInGitRepo")
		}
		if !contains(err.Error(), "git repository") {
			t.Errorf("expected error to contain 'git repository', got %q", err.Error())
		}
	})

	t.Run("NewNoRepositoryError", func(t *testing.T) {
		err := NewNoRepositoryError()
		if !errors.Is(err, ErrNoRepository) {
			t.Error("expected error to be ErrNoRepository")
		}
		if !contains(err.Error(), "owner/name") {
			t.Errorf("expected error to mention owner/name, got %q", err.Error())
		}
	})
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil",
			err:  nil,
			want: false,
		},
		{
			name: "not authenticated",
			err:  ErrNotAuthenticated,
			want: true,
		},
		{
			name: "session expired",
			err:  ErrSessionExpired,
			want: true,
		},
		{
			name: "wrapped auth error",
			err:  &CLIError{Err: ErrNotAuthenticated, Message: "test"},
			want: true,
		},
		{
			name: "unauthenticated string",
			err:  errors.New("unauthenticated"),
			want: true,
		},
		{
			name: "other error",
			err:  errors.New("some other error"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthError(tt.err); got != tt.want {
				t.Errorf("IsAuthError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil",
			err:  nil,
			want: false,
		},
		{
			name: "connection failed",
			err:  ErrConnectionFailed,
			want: true,
		},
		{
			name: "connection refused string",
			err:  errors.New("connection refused"),
			want: true,
		},
		{
			name: "no such host",
			err:  errors.New("dial tcp: no such host"),
			want: true,
		},
		{
			name: "network unreachable",
			err:  errors.New("network is unreachable"),
			want: true,
		},
		{
			name: "certificate error",
			err:  errors.New("x509: certificate signed by unknown authority"),
			want: true,
		},
		{
			name: "TLS error",
			err:  errors.New("tls: handshake failure"),
			want: true,
		},
		{
			name: "timeout",
			err:  errors.New("connection timeout"),
			want: true,
		},
		{
			name: "deadline exceeded",
			err:  errors.New("context deadline exceeded"),
			want: true,
		},
		{
			name: "wrapped EOF",
			err:  fmt.Errorf("read response: %w", io.EOF),
			want: true,
		},
		{
			name: "unexpected EOF",
			err:  fmt.Errorf("read body: %w", io.ErrUnexpectedEOF),
			want: true,
		},
		{
			name: "connection reset",
			err:  fmt.Errorf("read tcp: %w", syscall.ECONNRESET),
			want: true,
		},
		{
			name: "broken pipe",
			err:  fmt.Errorf("write tcp: %w", syscall.EPIPE),
			want: true,
		},
		{
			name: "connection reset string",
			err:  errors.New("read tcp 127.0.0.1:50000->127.0.0.1:443: read: connection reset by peer"),
			want: true,
		},
		{
			name: "EOF string",
			err:  errors.New(`Post "https://api.openai.com/v1/chat/completions": EOF`),
			want: true,
		},
		{
			name: "other error",
			err:  errors.New("some other error"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConnectionError(tt.err); got != tt.want {
				t.Errorf("IsConnectionError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsPermissionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil",
			err:  nil,
			want: false,
		},
		{
			name: "permission denied sentinel",
			err:  ErrPermissionDenied,
			want: true,
		},
		{
			name: "permission denied string",
			err:  errors.New("permission denied"),
			want: true,
		},
		{
			name: "forbidden",
			err:  errors.New("forbidden"),
			want: true,
		},
		{
			name: "403",
			err:  errors.New("server returned 403"),
			want: true,
		},
		{
			name: "other error",
			err:  errors.New("some other error"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPermissionError(tt.err); got != tt.want {
				t.Errorf("IsPermissionError() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Helper functions

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(s) > 0 && containsHelper(s, substr))
}

func containsHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// testMessenger is a mock messenger for testing custom messages.
type testMessenger struct {
	authMsg        string
	authSuggestion string
}

func (m *testMessenger) AuthErrorMessage() (string, string) {
	return m.authMsg, m.authSuggestion
}

func (m *testMessenger) SessionExpiredMessage() (string, string) {
	return "Session expired", "Log in again"
}

func (m *testMessenger) PermissionDeniedMessage() (string, string) {
	return "Permission denied", "Contact admin"
}

func (m *testMessenger) ConnectionErrorMessage(serverURL string) (string, string) {
	return "Connection failed to " + serverURL, "Check server"
}

func (m *testMessenger) TLSErrorMessage(serverURL string) (string, string) {
	return "TLS error to " + serverURL, "Check certificate"
}

func (m *testMessenger) TimeoutErrorMessage(serverURL string) (string, string) {
	return "Timeout to " + serverURL, "Try again"
}

func (m *testMessenger) NotInGitRepoMessage() (string, string) {
	return "Not in git repo", "Go to a repo"
}

func (m *testMessenger) NoRepositoryMessage() (string, string) {
	return "No repository", "Pass --repo"
}

func (m *testMessenger) ReleaseNotFoundMessage(tag string) (string, string) {
	return "No release " + tag, "Check the tag"
}
