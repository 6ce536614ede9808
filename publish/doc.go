// Package publish persists announcement runs.
//
// A successful artifact is written atomically to a dated file in the
// announcements directory (or docs/releases for MkDocs) and may be
// committed. Text rejected by validation is written to a drafts directory,
// which is pruned by RetentionConfig. Run status is reported to CI through
// STATUS:: lines on stdout and the GitHub Actions output file.
package publish
