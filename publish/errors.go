package publish

import "errors"

var (
	// ErrNothingToPublish indicates a failed run, which has no text to write.
	ErrNothingToPublish = errors.New("run produced nothing to publish")

	// ErrUnknownEncoding indicates an encoding other than raw or base64.
	ErrUnknownEncoding = errors.New("unknown encoding")
)
