package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	annhttp "github.com/randalmurphal/announce/http"
	"github.com/randalmurphal/announce/prompt"
	"github.com/randalmurphal/announce/release"
)

// Adapter defaults.
const (
	DefaultMaxRetries       = 2
	DefaultTimeout          = 60 * time.Second
	DefaultRetryWait        = 2 * time.Second
	DefaultMaxResponseBytes = 64 * 1024
)

// AdapterConfig configures the retry policy around a provider.
type AdapterConfig struct {
	// MaxRetries bounds retries after the first attempt. Negative means
	// DefaultMaxRetries; zero disables retry.
	MaxRetries int

	// Timeout bounds each attempt.
	Timeout time.Duration

	// RetryWait is the first backoff; each retry doubles it.
	RetryWait time.Duration

	// MaxResponseBytes rejects responses longer than this.
	MaxResponseBytes int

	// Sleep waits between attempts. Tests replace it to avoid real waits.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Adapter calls a Provider with per-attempt timeouts and bounded retries on
// transient failures.
type Adapter struct {
	provider Provider
	cfg      AdapterConfig
}

// NewAdapter wraps p with the retry policy in cfg.
func NewAdapter(p Provider, cfg AdapterConfig) *Adapter {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = DefaultRetryWait
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleep
	}
	return &Adapter{provider: p, cfg: cfg}
}

// Config returns the effective configuration.
func (a *Adapter) Config() AdapterConfig {
	return a.cfg
}

// Generate runs the payload against the provider. It never returns an error:
// exhausted retries and permanent failures yield a failed result whose
// ErrorDetail is a single line naming the last cause.
func (a *Adapter) Generate(ctx context.Context, payload prompt.Payload, modelID string) release.GenerationResult {
	id, err := ParseModelID(modelID)
	if err != nil {
		return failed(0, &Error{Kind: KindPermanent, Err: err})
	}

	req := Payload{System: payload.System, User: payload.User, Model: id.Model}
	maxAttempts := a.cfg.MaxRetries + 1

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := a.attempt(ctx, req)
		if err == nil {
			slog.Debug("generation succeeded", "model", modelID, "attempt", attempt, "bytes", len(text))
			return release.GenerationResult{Text: text, Status: release.ResultSuccess, Attempts: attempt}
		}

		kind := Classify(err)
		if ctx.Err() != nil {
			// The caller's budget is gone; no further attempt can succeed.
			kind = KindPermanent
		}
		lastErr = &Error{Kind: kind, Attempt: attempt, Err: err}

		if kind == KindPermanent {
			slog.Warn("generation failed", "model", modelID, "attempt", attempt, "error", err)
			return failed(attempt, lastErr)
		}
		if attempt == maxAttempts {
			break
		}

		wait := a.backoff(attempt, err)
		slog.Info("retrying generation", "model", modelID, "attempt", attempt, "wait", wait, "error", err)
		if err := a.cfg.Sleep(ctx, wait); err != nil {
			return failed(attempt, &Error{Kind: KindPermanent, Attempt: attempt, Err: err})
		}
	}

	slog.Warn("generation retries exhausted", "model", modelID, "attempts", maxAttempts, "error", lastErr)
	return failed(maxAttempts, lastErr)
}

func (a *Adapter) attempt(ctx context.Context, req Payload) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	text, err := a.provider.Generate(attemptCtx, req)
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("timed out after %s: %w", a.cfg.Timeout, context.DeadlineExceeded)
		}
		return "", err
	}

	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return "", ErrEmptyResponse
	case len(text) > a.cfg.MaxResponseBytes:
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrResponseTooLarge, len(text), a.cfg.MaxResponseBytes)
	}
	return text, nil
}

// backoff doubles RetryWait per attempt, honouring a longer server
// Retry-After.
func (a *Adapter) backoff(attempt int, err error) time.Duration {
	wait := a.cfg.RetryWait * time.Duration(1<<(attempt-1))
	var apiErr *annhttp.APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > wait {
		wait = apiErr.RetryAfter
	}
	return wait
}

func failed(attempts int, err error) release.GenerationResult {
	return release.GenerationResult{
		Status:      release.ResultFailed,
		ErrorDetail: singleLine(err.Error()),
		Attempts:    attempts,
	}
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
