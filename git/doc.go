// Package git runs the read-only history queries announcement collectors
// need (tags, commit logs, file contents at a ref) and the commit step of the
// publisher.
//
// Core types:
//   - Context: repository handle; every command goes through its CommandRunner
//   - CommandRunner: command execution seam (ExecRunner, MockRunner, SequentialMockRunner)
//   - CommitMessage: conventional commit message builder and subject parser
//
// Example usage:
//
//	repo, err := git.NewContext(".")
//	prev, err := repo.PreviousTag("v1.2.0")
//	commits, err := repo.Log(prev, "v1.2.0")
package git
