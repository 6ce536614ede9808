package collect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/randalmurphal/announce/git"
	"github.com/randalmurphal/announce/release"
)

// GitSource resolves releases from local tags and lists commits with git
// log. It is used when no hosting API is configured.
type GitSource struct {
	git        *git.Context
	repository string
}

// NewGitSource wraps a git context. repository is informational
// ("owner/name") and may be empty.
func NewGitSource(g *git.Context, repository string) *GitSource {
	return &GitSource{git: g, repository: repository}
}

// Resolve implements Resolver. "latest" resolves to the newest tag
// reachable from HEAD.
func (s *GitSource) Resolve(_ context.Context, tag string) (release.Ref, error) {
	if err := release.ValidateTag(tag); err != nil {
		return release.Ref{}, err
	}

	latest := tag == "" || tag == release.LatestTag
	if latest {
		t, err := s.git.LatestTag()
		if err != nil {
			return release.Ref{}, fmt.Errorf("%w: %v", ErrNoRelease, err)
		}
		tag = t
	} else if !s.git.TagExists(tag) {
		return release.Ref{}, fmt.Errorf("%w: tag %s", ErrNoRelease, tag)
	}

	created, err := s.git.RefTime(tag)
	if err != nil {
		return release.Ref{}, err
	}
	ref := release.Ref{
		Tag:              tag,
		Repository:       s.repository,
		CreatedAt:        created,
		IsLatestFallback: latest,
	}
	if s.repository != "" {
		ref.URL = "https://github.com/" + s.repository + "/releases/tag/" + tag
	}

	prev, err := s.git.PreviousTag(tag)
	switch {
	case errors.Is(err, git.ErrNoPreviousTag):
	case err != nil:
		return release.Ref{}, err
	default:
		ref.PreviousTag = prev
		if ref.PreviousAt, err = s.git.RefTime(prev); err != nil {
			return release.Ref{}, err
		}
	}
	return ref, ref.Validate()
}

// Commits returns a collector over git log previous..tag.
func (s *GitSource) Commits() Collector {
	return &GitLogCollector{Git: s.git}
}

// Snapshot returns a SnapshotFunc reading path at the previous tag.
func (s *GitSource) Snapshot(path string) SnapshotFunc {
	return GitSnapshot(s.git, path)
}

// GitLogCollector turns commits between two tags into change items.
// Conventional commits of non user-facing types (chore, ci, docs...) are
// skipped unless marked breaking.
type GitLogCollector struct {
	Git *git.Context
}

// Name implements Collector.
func (c *GitLogCollector) Name() string { return NameCommits }

// Collect implements Collector.
func (c *GitLogCollector) Collect(ctx context.Context, ref release.Ref) Output {
	if err := ctx.Err(); err != nil {
		return Unavailable(NameCommits, err.Error())
	}
	commits, err := c.Git.Log(ref.PreviousTag, ref.Tag)
	if err != nil {
		return Unavailable(NameCommits, err.Error())
	}

	var items []release.ChangeItem
	for _, cm := range commits {
		msg := cm.Subject
		if cm.Body != "" {
			msg += "\n\n" + cm.Body
		}
		if item, ok := commitItem(cm.SHA, msg, cm.When); ok {
			items = append(items, item)
		}
	}
	return OK(NameCommits, items, nil)
}

// GitSnapshot reads path at the previous release tag with git show.
func GitSnapshot(g *git.Context, path string) SnapshotFunc {
	return func(_ context.Context, ref release.Ref) ([]byte, error) {
		out, err := g.Show(ref.PreviousTag, path)
		if err != nil {
			if errors.Is(err, git.ErrPathNotFound) {
				return nil, fmt.Errorf("%w: %v", ErrSnapshotNotFound, err)
			}
			return nil, err
		}
		return []byte(out), nil
	}
}

// commitItem converts a commit message into a change item. ok is false for
// merge commits and conventional commits nobody reads release notes for.
func commitItem(sha, message string, when time.Time) (release.ChangeItem, bool) {
	subject, body, _ := strings.Cut(strings.TrimSpace(message), "\n")
	subject = strings.TrimSpace(subject)
	if subject == "" || strings.HasPrefix(subject, "Merge ") {
		return release.ChangeItem{}, false
	}

	title := subject
	if parsed, ok := git.ParseSubject(subject); ok {
		if !parsed.Type.UserFacing() && !parsed.Breaking {
			return release.ChangeItem{}, false
		}
		title = parsed.Description
		if parsed.Breaking {
			title = "BREAKING: " + title
		}
	}

	id := sha
	if len(id) > 7 {
		id = id[:7]
	}
	return release.ChangeItem{
		Source: release.SourceCommit,
		Title:  title,
		Body:   strings.TrimSpace(body),
		RefID:  id,
		At:     when,
	}, true
}
