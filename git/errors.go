package git

import "errors"

// Git operation errors.
var (
	// ErrNotGitRepo indicates the path is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrNothingToCommit indicates there are no staged changes to commit.
	ErrNothingToCommit = errors.New("nothing to commit")

	// ErrNoTags indicates the repository has no reachable tags.
	ErrNoTags = errors.New("no tags found")

	// ErrNoPreviousTag indicates a tag has no earlier tag in its history.
	ErrNoPreviousTag = errors.New("no previous tag")

	// ErrPathNotFound indicates a path does not exist at the requested ref.
	ErrPathNotFound = errors.New("path not found at ref")
)

// Error wraps a git command error with context.
type Error struct {
	Op     string // Operation that failed (e.g., "commit", "push")
	Cmd    string // Git command that was run
	Output string // Combined stdout/stderr output
	Err    error  // Underlying error
}

func (e *Error) Error() string {
	if e.Output != "" {
		return e.Op + ": " + e.Output
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
