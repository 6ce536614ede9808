// Package artifact validates generated announcements and renders them for
// the target site.
//
// Validation rejects empty output, output without a heading, output with an
// open code fence, and output containing unresolved placeholders. Rejected
// text comes back in a *ValidationError so it can be kept as a draft.
//
// Formatting by release.Format:
//   - markdown: whitespace normalization only
//   - mkdocs: first heading promoted to H1, title/date/tags front matter
//   - jekyll: post front matter (layout, title, date, categories)
//
// mkdocs and jekyll output also canonicalize GitHub release links.
package artifact
