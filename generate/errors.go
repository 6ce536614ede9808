package generate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/randalmurphal/llmkit/claude"

	annerrors "github.com/randalmurphal/announce/errors"
	annhttp "github.com/randalmurphal/announce/http"
	"github.com/randalmurphal/announce/release"
)

// Generation errors.
var (
	// ErrEmptyResponse indicates the provider returned no text.
	ErrEmptyResponse = errors.New("empty model response")

	// ErrResponseTooLarge indicates the response exceeded the length guard.
	ErrResponseTooLarge = errors.New("model response too large")

	// ErrContentPolicy indicates the provider refused the request on policy
	// grounds.
	ErrContentPolicy = errors.New("content policy violation")

	// ErrUnknownProvider indicates a model id naming an unsupported provider.
	ErrUnknownProvider = errors.New("unknown model provider")

	// ErrInvalidModelID indicates a model id that is not provider/model.
	ErrInvalidModelID = errors.New("invalid model id")
)

// Kind classifies a generation failure.
type Kind string

// Failure kinds.
const (
	KindTransient Kind = "transient"
	KindPermanent Kind = "permanent"
)

// Error is a classified generation failure.
type Error struct {
	Kind    Kind
	Attempt int // 1-based attempt that produced the error
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s generation error (attempt %d): %v", e.Kind, e.Attempt, e.Err)
}

// Unwrap exposes both the taxonomy sentinel and the cause.
func (e *Error) Unwrap() []error {
	sentinel := release.ErrGenerationPermanent
	if e.Kind == KindTransient {
		sentinel = release.ErrGenerationTransient
	}
	return []error{sentinel, e.Err}
}

// contentPolicyCodes are provider error codes that mean the prompt or
// completion was refused.
var contentPolicyCodes = []string{"content_filter", "content_policy_violation", "safety", "moderation"}

// Classify decides whether err is worth retrying. Timeouts, rate limits,
// server errors, transport failures, and empty or oversize responses are
// transient. Cancellation, malformed requests, auth failures, and policy
// refusals are permanent. Unknown errors are permanent.
func Classify(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}

	if isContentPolicy(err) || errors.Is(err, context.Canceled) {
		return KindPermanent
	}

	switch {
	case annhttp.IsBadRequest(err),
		annhttp.IsUnauthorized(err),
		annhttp.IsForbidden(err),
		annhttp.IsNotFound(err):
		return KindPermanent
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, ErrEmptyResponse),
		errors.Is(err, ErrResponseTooLarge),
		annhttp.IsRetryable(err),
		retryableCLI(err),
		isTransport(err):
		return KindTransient
	default:
		return KindPermanent
	}
}

// isTransport reports errors raised below HTTP: the exchange broke before a
// complete response arrived.
func isTransport(err error) bool {
	var urlErr *url.Error
	return annhttp.IsTransport(err) || errors.As(err, &urlErr) || annerrors.IsConnectionError(err)
}

// retryableCLI reports claude CLI failures the client flagged as retryable
// (rate limits, overload).
func retryableCLI(err error) bool {
	var cliErr *claude.Error
	return errors.As(err, &cliErr) && cliErr.Retryable
}

func isContentPolicy(err error) bool {
	if errors.Is(err, ErrContentPolicy) {
		return true
	}
	var apiErr *annhttp.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	code := strings.ToLower(apiErr.Code)
	for _, c := range contentPolicyCodes {
		if code == c {
			return true
		}
	}
	return false
}
