package prompt

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/randalmurphal/announce/release"
)

// NoChangesMarker replaces the change sections when a context carries no
// change signals.
const NoChangesMarker = "No notable changes were recorded for this release."

// DefaultMaxTokens bounds a compiled payload when CompilerConfig leaves it unset.
const DefaultMaxTokens = 12000

// Template names.
const (
	systemTemplate       = "system"
	announcementTemplate = "announcement"
	formatPrefix         = "format_"
)

// Slot names shared by the announcement templates.
const (
	SlotReleaseTag     = "release_tag"
	SlotReleaseName    = "release_name"
	SlotReleaseNotes   = "release_notes"
	SlotReleaseURL     = "release_url"
	SlotPreviousTag    = "previous_tag"
	SlotRepoURL        = "repo_url"
	SlotToday          = "today"
	SlotDocsURL        = "docs_url"
	SlotFormat         = "format"
	SlotFormatGuidance = "format_guidance"
	SlotPullRequests   = "pull_requests"
	SlotCommits        = "commits"
	SlotAPIChanges     = "api_changes"
	SlotTruncated      = "truncated"
	SlotNoChanges      = "no_changes"
)

// SlotNames returns every slot name, sorted.
func SlotNames() []string {
	names := []string{
		SlotReleaseTag, SlotReleaseName, SlotReleaseNotes, SlotReleaseURL,
		SlotPreviousTag, SlotRepoURL, SlotToday, SlotDocsURL, SlotFormat,
		SlotFormatGuidance, SlotPullRequests, SlotCommits, SlotAPIChanges,
		SlotTruncated, SlotNoChanges,
	}
	sort.Strings(names)
	return names
}

// Payload is a compiled model input.
type Payload struct {
	System string
	User   string
	Tokens int
}

// APIGroup is the API changes of one kind.
type APIGroup struct {
	Kind    release.ChangeKind
	Entries []release.APIDiffEntry
}

// CompilerConfig configures a Compiler.
type CompilerConfig struct {
	MaxTokens int              // Hard payload bound (default DefaultMaxTokens)
	DocsURL   string           // Optional documentation link
	Today     func() time.Time // Clock for the date requirement (default time.Now)
}

// Compiler renders a release context into a model payload.
type Compiler struct {
	loader *Loader
	cfg    CompilerConfig
}

// NewCompiler creates a compiler backed by loader.
func NewCompiler(loader *Loader, cfg CompilerConfig) *Compiler {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Today == nil {
		cfg.Today = time.Now
	}
	return &Compiler{loader: loader, cfg: cfg}
}

// MaxTokens returns the payload bound.
func (c *Compiler) MaxTokens() int {
	return c.cfg.MaxTokens
}

// Compile renders rc for format. The payload is never truncated: one that
// exceeds MaxTokens is a release.ErrContextOverflow error. For a given
// context, format, and day the output is byte-identical.
func (c *Compiler) Compile(rc *release.Context, format release.Format) (Payload, error) {
	if rc == nil {
		return Payload{}, fmt.Errorf("compile: nil context")
	}
	if format == "" {
		format = release.FormatMarkdown
	}

	vars := c.Slots(rc, format)

	guidance, err := c.loader.LoadWithVars(formatPrefix+string(format), vars)
	if err != nil {
		return Payload{}, fmt.Errorf("format guidance: %w", err)
	}
	vars[SlotFormatGuidance] = strings.TrimSpace(guidance)

	system, err := c.loader.LoadWithVars(systemTemplate, vars)
	if err != nil {
		return Payload{}, err
	}
	user, err := c.loader.LoadWithVars(announcementTemplate, vars)
	if err != nil {
		return Payload{}, err
	}

	p := Payload{
		System: normalizeBlankLines(system),
		User:   normalizeBlankLines(user),
	}
	p.Tokens = release.EstimateTokens(p.System) + release.EstimateTokens(p.User)
	if p.Tokens > c.cfg.MaxTokens {
		return Payload{}, fmt.Errorf("%w: prompt needs %d tokens, limit is %d",
			release.ErrContextOverflow, p.Tokens, c.cfg.MaxTokens)
	}
	return p, nil
}

// Slots returns the template variables for rc. Every slot is present.
func (c *Compiler) Slots(rc *release.Context, format release.Format) map[string]any {
	ref := rc.Release

	repoURL := ""
	if ref.Repository != "" {
		repoURL = "https://github.com/" + ref.Repository
	}
	releaseURL := ref.URL
	if releaseURL == "" && repoURL != "" {
		releaseURL = repoURL + "/releases/tag/" + ref.Tag
	}

	var groups []APIGroup
	for _, kind := range release.ChangeKinds {
		if entries := rc.APIChangesByKind(kind); len(entries) > 0 {
			groups = append(groups, APIGroup{Kind: kind, Entries: entries})
		}
	}

	noChanges := ""
	if rc.Empty() {
		noChanges = NoChangesMarker
	}

	return map[string]any{
		SlotReleaseTag:     ref.Tag,
		SlotReleaseName:    ref.Name,
		SlotReleaseNotes:   strings.TrimSpace(ref.Notes),
		SlotReleaseURL:     releaseURL,
		SlotPreviousTag:    ref.PreviousTag,
		SlotRepoURL:        repoURL,
		SlotToday:          c.cfg.Today().Format(time.DateOnly),
		SlotDocsURL:        c.cfg.DocsURL,
		SlotFormat:         string(format),
		SlotFormatGuidance: "",
		SlotPullRequests:   rc.ChangesBySource(release.SourcePullRequest),
		SlotCommits:        rc.ChangesBySource(release.SourceCommit),
		SlotAPIChanges:     groups,
		SlotTruncated:      rc.Truncated,
		SlotNoChanges:      noChanges,
	}
}

// normalizeBlankLines collapses runs of blank lines left by template
// conditionals and trims trailing space.
func normalizeBlankLines(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n") + "\n"
}
