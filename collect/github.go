package collect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	annhttp "github.com/randalmurphal/announce/http"
	"github.com/randalmurphal/announce/release"
)

// Collector names of the GitHub sources.
const (
	NamePullRequests = "pull_requests"
	NameCommits      = "commits"
)

const githubPageSize = 100

// GitHubSource reads releases, pull requests, commits and file contents
// from one GitHub repository.
type GitHubSource struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHubClient returns a go-github client authenticated by ts. A nil
// ts gives an anonymous client. baseURL selects a GitHub Enterprise host.
func NewGitHubClient(ts oauth2.TokenSource, baseURL string) (*github.Client, error) {
	var hc *http.Client
	if ts != nil {
		hc = oauth2.NewClient(context.Background(), ts)
	}
	client := github.NewClient(hc)
	if baseURL != "" {
		return client.WithEnterpriseURLs(baseURL, baseURL)
	}
	return client, nil
}

// NewGitHubSource creates a source for "owner/name".
func NewGitHubSource(client *github.Client, repository string) (*GitHubSource, error) {
	if client == nil {
		return nil, errors.New("github client is required")
	}
	owner, repo, err := SplitRepository(repository)
	if err != nil {
		return nil, err
	}
	return &GitHubSource{client: client, owner: owner, repo: repo}, nil
}

// Repository returns "owner/name".
func (s *GitHubSource) Repository() string {
	return s.owner + "/" + s.repo
}

// Resolve implements Resolver. "latest" (or empty) resolves to the most
// recent published release.
func (s *GitHubSource) Resolve(ctx context.Context, tag string) (release.Ref, error) {
	if err := release.ValidateTag(tag); err != nil {
		return release.Ref{}, err
	}

	var (
		rel  *github.RepositoryRelease
		resp *github.Response
		err  error
	)
	latest := tag == "" || tag == release.LatestTag
	if latest {
		rel, resp, err = s.client.Repositories.GetLatestRelease(ctx, s.owner, s.repo)
	} else {
		rel, resp, err = s.client.Repositories.GetReleaseByTag(ctx, s.owner, s.repo, tag)
	}
	if err != nil {
		if isGitHubNotFound(resp, err) {
			if latest {
				return release.Ref{}, fmt.Errorf("%w in %s", ErrNoRelease, s.Repository())
			}
			return release.Ref{}, fmt.Errorf("%w: release %s in %s", ErrNoRelease, tag, s.Repository())
		}
		return release.Ref{}, fmt.Errorf("get release: %w", err)
	}

	ref := release.Ref{
		Tag:              rel.GetTagName(),
		Name:             rel.GetName(),
		Notes:            rel.GetBody(),
		URL:              rel.GetHTMLURL(),
		Repository:       s.Repository(),
		CreatedAt:        releaseTime(rel),
		IsLatestFallback: latest,
	}
	if err := ref.Validate(); err != nil {
		return release.Ref{}, err
	}

	prev, err := s.previousRelease(ctx, ref)
	if err != nil {
		return release.Ref{}, fmt.Errorf("find previous release: %w", err)
	}
	if prev != nil {
		ref.PreviousTag = prev.GetTagName()
		ref.PreviousAt = releaseTime(prev)
	}
	return ref, nil
}

// previousRelease returns the newest published release created before ref,
// or nil for a first release.
func (s *GitHubSource) previousRelease(ctx context.Context, ref release.Ref) (*github.RepositoryRelease, error) {
	it := annhttp.NewPageIterator(func(ctx context.Context, page int) ([]*github.RepositoryRelease, bool, error) {
		rels, resp, err := s.client.Repositories.ListReleases(ctx, s.owner, s.repo, &github.ListOptions{
			Page:    page + 1,
			PerPage: githubPageSize,
		})
		if err != nil {
			return nil, false, err
		}
		return rels, resp.NextPage != 0, nil
	})

	var prev *github.RepositoryRelease
	err := it.ForEach(ctx, func(rel *github.RepositoryRelease) error {
		if rel.GetDraft() || rel.GetTagName() == ref.Tag {
			return nil
		}
		at := releaseTime(rel)
		if !at.Before(ref.CreatedAt) {
			return nil
		}
		if prev == nil || at.After(releaseTime(prev)) {
			prev = rel
		}
		return nil
	})
	return prev, err
}

// PullRequests returns a collector of pull requests merged inside the
// release window. Closed pull requests are listed most recently updated
// first, so listing stops at the first one updated before the window.
func (s *GitHubSource) PullRequests() Collector {
	return CollectorFunc{ID: NamePullRequests, Fn: s.collectPullRequests}
}

func (s *GitHubSource) collectPullRequests(ctx context.Context, ref release.Ref) Output {
	it := annhttp.NewPageIterator(func(ctx context.Context, page int) ([]*github.PullRequest, bool, error) {
		prs, resp, err := s.client.PullRequests.List(ctx, s.owner, s.repo, &github.PullRequestListOptions{
			State:     "closed",
			Sort:      "updated",
			Direction: "desc",
			ListOptions: github.ListOptions{
				Page:    page + 1,
				PerPage: githubPageSize,
			},
		})
		if err != nil {
			return nil, false, err
		}
		return prs, resp.NextPage != 0, nil
	})

	var items []release.ChangeItem
	err := it.ForEach(ctx, func(pr *github.PullRequest) error {
		if !ref.PreviousAt.IsZero() && pr.GetUpdatedAt().Time.Before(ref.PreviousAt) {
			return annhttp.ErrStop
		}
		if pr.MergedAt == nil || !ref.Since(pr.GetMergedAt().Time) {
			return nil
		}
		items = append(items, release.ChangeItem{
			Source: release.SourcePullRequest,
			Title:  strings.TrimSpace(pr.GetTitle()),
			Body:   strings.TrimSpace(pr.GetBody()),
			RefID:  fmt.Sprintf("#%d", pr.GetNumber()),
			At:     pr.GetMergedAt().Time,
		})
		return nil
	})
	if err != nil {
		if len(items) > 0 {
			return Degraded(NamePullRequests, "listing interrupted: "+err.Error(), items, nil)
		}
		return Unavailable(NamePullRequests, "list pull requests: "+err.Error())
	}
	return OK(NamePullRequests, items, nil)
}

// Commits returns a collector of the commits between the previous release
// and this one. A first release has no base to compare against and yields
// nothing.
func (s *GitHubSource) Commits() Collector {
	return CollectorFunc{ID: NameCommits, Fn: s.collectCommits}
}

func (s *GitHubSource) collectCommits(ctx context.Context, ref release.Ref) Output {
	if ref.PreviousTag == "" {
		return OK(NameCommits, nil, nil)
	}

	var items []release.ChangeItem
	for page := 1; page != 0; {
		cmp, resp, err := s.client.Repositories.CompareCommits(ctx, s.owner, s.repo, ref.PreviousTag, ref.Tag, &github.ListOptions{
			Page:    page,
			PerPage: githubPageSize,
		})
		if err != nil {
			if len(items) > 0 {
				return Degraded(NameCommits, "compare interrupted: "+err.Error(), items, nil)
			}
			return Unavailable(NameCommits, fmt.Sprintf("compare %s...%s: %v", ref.PreviousTag, ref.Tag, err))
		}
		for _, c := range cmp.Commits {
			if item, ok := commitItem(c.GetSHA(), c.GetCommit().GetMessage(), c.GetCommit().GetCommitter().GetDate().Time); ok {
				items = append(items, item)
			}
		}
		page = resp.NextPage
	}
	return OK(NameCommits, items, nil)
}

// Snapshot returns a SnapshotFunc reading path at the previous release tag.
func (s *GitHubSource) Snapshot(path string) SnapshotFunc {
	return func(ctx context.Context, ref release.Ref) ([]byte, error) {
		file, _, resp, err := s.client.Repositories.GetContents(ctx, s.owner, s.repo, path, &github.RepositoryContentGetOptions{
			Ref: ref.PreviousTag,
		})
		if err != nil {
			if isGitHubNotFound(resp, err) {
				return nil, fmt.Errorf("%w: %s at %s", ErrSnapshotNotFound, path, ref.PreviousTag)
			}
			return nil, err
		}
		if file == nil {
			return nil, fmt.Errorf("%w: %s is a directory", ErrSnapshotNotFound, path)
		}
		content, err := file.GetContent()
		if err != nil {
			return nil, err
		}
		return []byte(content), nil
	}
}

func releaseTime(rel *github.RepositoryRelease) time.Time {
	if rel.CreatedAt == nil {
		return rel.GetPublishedAt().Time
	}
	return rel.GetCreatedAt().Time
}

func isGitHubNotFound(resp *github.Response, err error) bool {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
