package prompt

import "errors"

// ErrPromptNotFound indicates no search directory nor the embedded set
// holds the named template.
var ErrPromptNotFound = errors.New("prompt not found")
