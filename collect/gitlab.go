package collect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xanzy/go-gitlab"

	annhttp "github.com/randalmurphal/announce/http"
	"github.com/randalmurphal/announce/release"
)

// NameMergeRequests is the collector name of GitLab merge requests.
const NameMergeRequests = "merge_requests"

const gitlabPageSize = 100

// GitLabSource reads releases and merge requests from one GitLab project.
type GitLabSource struct {
	client    *gitlab.Client
	projectID string
}

// NewGitLabClient creates a client for baseURL (empty for gitlab.com).
func NewGitLabClient(token, baseURL string) (*gitlab.Client, error) {
	if baseURL == "" {
		return gitlab.NewClient(token)
	}
	return gitlab.NewClient(token, gitlab.WithBaseURL(baseURL))
}

// NewGitLabSource creates a source for a project path ("group/project")
// or numeric id.
func NewGitLabSource(client *gitlab.Client, projectID string) (*GitLabSource, error) {
	if client == nil {
		return nil, errors.New("gitlab client is required")
	}
	if projectID == "" {
		return nil, fmt.Errorf("%w: project ID is required", ErrInvalidRepository)
	}
	return &GitLabSource{client: client, projectID: projectID}, nil
}

// Resolve implements Resolver.
func (s *GitLabSource) Resolve(ctx context.Context, tag string) (release.Ref, error) {
	if err := release.ValidateTag(tag); err != nil {
		return release.Ref{}, err
	}

	releases := s.releases()
	latest := tag == "" || tag == release.LatestTag

	var (
		current *gitlab.Release
		prev    *gitlab.Release
	)
	if !latest {
		rel, resp, err := s.client.Releases.GetRelease(s.projectID, tag, gitlab.WithContext(ctx))
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				return release.Ref{}, fmt.Errorf("%w: release %s in %s", ErrNoRelease, tag, s.projectID)
			}
			return release.Ref{}, fmt.Errorf("get release: %w", err)
		}
		current = rel
	}

	// Releases list newest first by release date.
	err := releases.ForEach(ctx, func(rel *gitlab.Release) error {
		if rel.UpcomingRelease {
			return nil
		}
		if current == nil {
			current = rel
			return nil
		}
		if rel.TagName == current.TagName {
			return nil
		}
		if gitlabReleaseTime(rel).Before(gitlabReleaseTime(current)) {
			prev = rel
			return annhttp.ErrStop
		}
		return nil
	})
	if err != nil {
		return release.Ref{}, fmt.Errorf("list releases: %w", err)
	}
	if current == nil {
		return release.Ref{}, fmt.Errorf("%w in %s", ErrNoRelease, s.projectID)
	}

	ref := release.Ref{
		Tag:              current.TagName,
		Name:             current.Name,
		Notes:            current.Description,
		Repository:       s.projectID,
		CreatedAt:        gitlabReleaseTime(current),
		IsLatestFallback: latest,
	}
	if base := strings.TrimSuffix(strings.TrimSuffix(s.client.BaseURL().String(), "/"), "/api/v4"); base != "" {
		ref.URL = base + "/" + s.projectID + "/-/releases/" + current.TagName
	}
	if prev != nil {
		ref.PreviousTag = prev.TagName
		ref.PreviousAt = gitlabReleaseTime(prev)
	}
	return ref, ref.Validate()
}

func (s *GitLabSource) releases() *annhttp.PageIterator[*gitlab.Release] {
	return annhttp.NewPageIterator(func(ctx context.Context, page int) ([]*gitlab.Release, bool, error) {
		rels, resp, err := s.client.Releases.ListReleases(s.projectID, &gitlab.ListReleasesOptions{
			ListOptions: gitlab.ListOptions{Page: page + 1, PerPage: gitlabPageSize},
		}, gitlab.WithContext(ctx))
		if err != nil {
			return nil, false, err
		}
		return rels, resp.NextPage != 0, nil
	})
}

// MergeRequests returns a collector of merge requests merged inside the
// release window.
func (s *GitLabSource) MergeRequests() Collector {
	return CollectorFunc{ID: NameMergeRequests, Fn: s.collectMergeRequests}
}

func (s *GitLabSource) collectMergeRequests(ctx context.Context, ref release.Ref) Output {
	opts := &gitlab.ListProjectMergeRequestsOptions{
		State:   gitlab.Ptr("merged"),
		OrderBy: gitlab.Ptr("updated_at"),
		Sort:    gitlab.Ptr("desc"),
	}
	if !ref.PreviousAt.IsZero() {
		opts.UpdatedAfter = gitlab.Ptr(ref.PreviousAt)
	}

	it := annhttp.NewPageIterator(func(ctx context.Context, page int) ([]*gitlab.MergeRequest, bool, error) {
		opts.ListOptions = gitlab.ListOptions{Page: page + 1, PerPage: gitlabPageSize}
		mrs, resp, err := s.client.MergeRequests.ListProjectMergeRequests(s.projectID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, false, err
		}
		return mrs, resp.NextPage != 0, nil
	})

	var items []release.ChangeItem
	err := it.ForEach(ctx, func(mr *gitlab.MergeRequest) error {
		if mr.MergedAt == nil || !ref.Since(*mr.MergedAt) {
			return nil
		}
		items = append(items, release.ChangeItem{
			Source: release.SourcePullRequest,
			Title:  strings.TrimSpace(mr.Title),
			Body:   strings.TrimSpace(mr.Description),
			RefID:  fmt.Sprintf("!%d", mr.IID),
			At:     *mr.MergedAt,
		})
		return nil
	})
	if err != nil {
		if len(items) > 0 {
			return Degraded(NameMergeRequests, "listing interrupted: "+err.Error(), items, nil)
		}
		return Unavailable(NameMergeRequests, "list merge requests: "+err.Error())
	}
	return OK(NameMergeRequests, items, nil)
}

func gitlabReleaseTime(rel *gitlab.Release) time.Time {
	switch {
	case rel.ReleasedAt != nil:
		return *rel.ReleasedAt
	case rel.CreatedAt != nil:
		return *rel.CreatedAt
	default:
		return time.Time{}
	}
}
