package context

import "errors"

// ErrNoProvider indicates services were injected without a model provider.
var ErrNoProvider = errors.New("no generation provider configured")
