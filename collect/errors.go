package collect

import "errors"

var (
	// ErrSnapshotNotFound indicates the API schema does not exist at the
	// requested ref.
	ErrSnapshotNotFound = errors.New("schema snapshot not found")

	// ErrUnknownPlatform indicates a remote URL that is neither GitHub nor GitLab.
	ErrUnknownPlatform = errors.New("unknown hosting platform")

	// ErrInvalidRepository indicates a repository name that is not owner/name.
	ErrInvalidRepository = errors.New("invalid repository")

	// ErrNoRelease indicates the repository has no published release to
	// fall back on.
	ErrNoRelease = errors.New("no published release")
)
