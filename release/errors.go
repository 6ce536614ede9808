package release

import "errors"

// Pipeline error taxonomy.
var (
	// ErrInvalidReleaseRef indicates the requested release reference cannot be
	// parsed or resolved. It is the only collection error that is fatal.
	ErrInvalidReleaseRef = errors.New("invalid release reference")

	// ErrCollectorUnavailable indicates a source could not provide data.
	// The run continues without that source.
	ErrCollectorUnavailable = errors.New("collector unavailable")

	// ErrContextOverflow indicates the context or compiled prompt exceeds its
	// hard budget. This is a configuration problem and is fatal to the run.
	ErrContextOverflow = errors.New("context overflow")

	// ErrGenerationTransient indicates a retryable provider failure
	// (timeout, rate limit, transport error).
	ErrGenerationTransient = errors.New("transient generation error")

	// ErrGenerationPermanent indicates a provider failure that must not be
	// retried (content policy, malformed request, bad credentials).
	ErrGenerationPermanent = errors.New("permanent generation error")

	// ErrValidationFailure indicates generated text failed structural checks.
	// The raw text is still usable as a degraded artifact.
	ErrValidationFailure = errors.New("validation failure")
)
