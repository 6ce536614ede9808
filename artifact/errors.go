package artifact

import (
	"errors"
	"strings"

	"github.com/randalmurphal/announce/release"
)

// ErrMalformedFrontMatter indicates a front matter block that is not a YAML
// mapping.
var ErrMalformedFrontMatter = errors.New("malformed front matter")

// ValidationError reports why generated text was rejected. Raw keeps the
// text as generated so callers can persist it for review.
type ValidationError struct {
	Reasons []string
	Raw     string
}

func (e *ValidationError) Error() string {
	return "validation failure: " + strings.Join(e.Reasons, "; ")
}

// Unwrap returns release.ErrValidationFailure.
func (e *ValidationError) Unwrap() error {
	return release.ErrValidationFailure
}
