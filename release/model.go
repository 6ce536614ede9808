package release

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// LatestTag is the sentinel tag that resolves to the most recent published release.
const LatestTag = "latest"

// Source identifies where a change signal came from.
type Source string

// Change sources, highest priority first.
const (
	SourceAPIDiff     Source = "api_diff"
	SourcePullRequest Source = "pull_request"
	SourceCommit      Source = "commit"
)

// Priority returns the canonical ordering rank of a source. Lower sorts first.
func (s Source) Priority() int {
	switch s {
	case SourceAPIDiff:
		return 0
	case SourcePullRequest:
		return 1
	case SourceCommit:
		return 2
	default:
		return 3
	}
}

// ChangeKind classifies an API schema change.
type ChangeKind string

// API change kinds.
const (
	ChangeAdded    ChangeKind = "added"
	ChangeRemoved  ChangeKind = "removed"
	ChangeModified ChangeKind = "modified"
)

// ChangeKinds lists kinds in the order the prompt groups them.
var ChangeKinds = []ChangeKind{ChangeAdded, ChangeModified, ChangeRemoved}

// Format is the target markup flavor of the final artifact.
type Format string

// Output formats.
const (
	FormatMarkdown Format = "markdown"
	FormatMkDocs   Format = "mkdocs"
	FormatJekyll   Format = "jekyll"
)

// ParseFormat parses an output format name. Empty means markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatMarkdown, nil
	case FormatMarkdown, FormatMkDocs, FormatJekyll:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want markdown, mkdocs or jekyll)", s)
	}
}

// Ref identifies the release being announced. It is immutable once resolved.
type Ref struct {
	Tag              string    `json:"tag"`
	Name             string    `json:"name,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	URL              string    `json:"url,omitempty"`
	Repository       string    `json:"repository,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	IsLatestFallback bool      `json:"is_latest_fallback,omitempty"`

	// PreviousTag and PreviousAt bound the change window. Both are empty
	// for a first release.
	PreviousTag string    `json:"previous_tag,omitempty"`
	PreviousAt  time.Time `json:"previous_at,omitzero"`
}

// Since reports whether t falls inside the release window (PreviousAt, CreatedAt].
func (r Ref) Since(t time.Time) bool {
	if !r.PreviousAt.IsZero() && !t.After(r.PreviousAt) {
		return false
	}
	if !r.CreatedAt.IsZero() && t.After(r.CreatedAt) {
		return false
	}
	return true
}

var tagPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/+-]*$`)

// ValidateTag checks that a requested release reference is parseable.
// Empty input is treated as LatestTag.
func ValidateTag(tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" || tag == LatestTag {
		return nil
	}
	if !tagPattern.MatchString(tag) || strings.Contains(tag, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidReleaseRef, tag)
	}
	return nil
}

// Validate checks a resolved Ref.
func (r Ref) Validate() error {
	if r.Tag == "" || r.Tag == LatestTag {
		return fmt.Errorf("%w: release has no tag", ErrInvalidReleaseRef)
	}
	return ValidateTag(r.Tag)
}

// ChangeItem is one discrete change signal.
type ChangeItem struct {
	Source Source    `json:"source"`
	Title  string    `json:"title"`
	Body   string    `json:"body,omitempty"`
	RefID  string    `json:"ref_id"`
	At     time.Time `json:"at,omitzero"`
}

// APIDiffEntry is one operation-level change between two schema snapshots.
type APIDiffEntry struct {
	Path        string     `json:"path"`
	Method      string     `json:"method"`
	Kind        ChangeKind `json:"change_kind"`
	Description string     `json:"description,omitempty"`
}

// ID returns the stable identifier used as the item's RefID.
func (e APIDiffEntry) ID() string {
	return strings.ToUpper(e.Method) + " " + e.Path
}

// ChangeItem returns the entry as an api_diff change item.
func (e APIDiffEntry) ChangeItem() ChangeItem {
	return ChangeItem{
		Source: SourceAPIDiff,
		Title:  fmt.Sprintf("%s %s", e.Kind, e.ID()),
		Body:   e.Description,
		RefID:  e.ID(),
	}
}

// Context is the single handoff object between collection and generation.
type Context struct {
	Release    Ref            `json:"release"`
	Changes    []ChangeItem   `json:"changes"`
	APIChanges []APIDiffEntry `json:"api_changes"`
	Truncated  bool           `json:"truncated"`
}

// Empty reports whether the context carries no change signals at all.
func (c *Context) Empty() bool {
	return len(c.Changes) == 0 && len(c.APIChanges) == 0
}

// Marshal returns the canonical serialization of the context. Struct field
// order and slice order make it byte-stable for identical inputs.
func (c *Context) Marshal() ([]byte, error) {
	cp := *c
	if cp.Changes == nil {
		cp.Changes = []ChangeItem{}
	}
	if cp.APIChanges == nil {
		cp.APIChanges = []APIDiffEntry{}
	}
	cp.Release.CreatedAt = cp.Release.CreatedAt.UTC()
	cp.Release.PreviousAt = cp.Release.PreviousAt.UTC()
	return json.Marshal(cp)
}

// Tokens returns the estimated token size of the serialized context.
func (c *Context) Tokens() int {
	data, err := c.Marshal()
	if err != nil {
		return 0
	}
	return EstimateTokens(string(data))
}

// ChangesBySource returns the change items of one source, preserving order.
func (c *Context) ChangesBySource(s Source) []ChangeItem {
	var out []ChangeItem
	for _, item := range c.Changes {
		if item.Source == s {
			out = append(out, item)
		}
	}
	return out
}

// APIChangesByKind returns API entries of one kind, preserving order.
func (c *Context) APIChangesByKind(k ChangeKind) []APIDiffEntry {
	var out []APIDiffEntry
	for _, e := range c.APIChanges {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// GenerationRequest is the pure input to one generation.
type GenerationRequest struct {
	Context      *Context
	ModelID      string
	OutputFormat Format
}

// ResultStatus is the outcome of a generation.
type ResultStatus string

// Generation outcomes.
const (
	ResultSuccess ResultStatus = "success"
	ResultPartial ResultStatus = "partial"
	ResultFailed  ResultStatus = "failed"
)

// GenerationResult carries model output and its status.
type GenerationResult struct {
	Text        string
	Status      ResultStatus
	ErrorDetail string

	// Attempts is the number of provider calls made.
	Attempts int
}
