package errors

import (
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
)

// Lower-cased fragments of error text, for failures that reach the CLI only
// as a run diagnostic string.
var (
	authMarkers       = []string{"unauthenticated", "unauthorized", "401"}
	permissionMarkers = []string{"permission denied", "forbidden", "403"}
	networkMarkers    = []string{"connection refused", "no such host", "network is unreachable", "dial tcp"}
	droppedMarkers    = []string{"connection reset", "broken pipe", "unexpected eof", ": eof", "transport error"}
	tlsMarkers        = []string{"certificate", "tls", "x509"}
	timeoutMarkers    = []string{"timeout", "timed out", "deadline exceeded"}
)

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func lower(err error) string {
	return strings.ToLower(err.Error())
}

// IsAuthError checks if an error is authentication-related.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrSessionExpired) {
		return true
	}
	return containsAny(lower(err), authMarkers)
}

// IsPermissionError checks if an error is permission-related.
func IsPermissionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPermissionDenied) {
		return true
	}
	return containsAny(lower(err), permissionMarkers)
}

// IsConnectionError checks if an error is connection-related: refused or
// dropped connections, TLS failures and timeouts.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrConnectionFailed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	s := lower(err)
	return containsAny(s, networkMarkers) ||
		containsAny(s, droppedMarkers) ||
		containsAny(s, tlsMarkers) ||
		containsAny(s, timeoutMarkers)
}
