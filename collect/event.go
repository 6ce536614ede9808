package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/randalmurphal/announce/release"
)

// NameEvent is the collector name of change signals read from a CI event
// payload.
const NameEvent = "event"

// eventPayload is the subset of a GitHub release event the source reads.
type eventPayload struct {
	Release struct {
		TagName   string    `json:"tag_name"`
		Name      string    `json:"name"`
		Body      string    `json:"body"`
		HTMLURL   string    `json:"html_url"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"release"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
	PullRequests []struct {
		Number   int        `json:"number"`
		Title    string     `json:"title"`
		Body     string     `json:"body"`
		MergedAt *time.Time `json:"merged_at"`
	} `json:"pull_requests"`
	Issues []struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		Body   string `json:"body"`
	} `json:"issues"`
}

// EventSource reads a release and its change signals from a CI event
// file, as written by GitHub Actions to GITHUB_EVENT_PATH and by local
// runners such as act.
type EventSource struct {
	Path string

	payload *eventPayload
}

// NewEventSource reads and parses the event file at path.
func NewEventSource(path string) (*EventSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event file: %w", err)
	}
	var p eventPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse event file %s: %w", path, err)
	}
	return &EventSource{Path: path, payload: &p}, nil
}

// Resolve implements Resolver. The event names exactly one release; a
// requested tag other than "latest" must match it.
func (s *EventSource) Resolve(_ context.Context, tag string) (release.Ref, error) {
	if err := release.ValidateTag(tag); err != nil {
		return release.Ref{}, err
	}
	p := s.payload
	if p.Release.TagName == "" {
		return release.Ref{}, fmt.Errorf("%w: event %s has no release", ErrNoRelease, s.Path)
	}

	latest := tag == "" || tag == release.LatestTag
	if !latest && tag != p.Release.TagName {
		return release.Ref{}, fmt.Errorf("%w: event is for %s, not %s", ErrNoRelease, p.Release.TagName, tag)
	}

	ref := release.Ref{
		Tag:              p.Release.TagName,
		Name:             p.Release.Name,
		Notes:            p.Release.Body,
		URL:              p.Release.HTMLURL,
		Repository:       p.Repository.FullName,
		CreatedAt:        p.Release.CreatedAt,
		IsLatestFallback: latest,
	}
	return ref, ref.Validate()
}

// PullRequests returns a collector over the pull requests and issues
// embedded in the event. Items carry no window filtering: the event
// already scopes them to the release.
func (s *EventSource) PullRequests() Collector {
	return CollectorFunc{ID: NameEvent, Fn: s.collect}
}

func (s *EventSource) collect(_ context.Context, ref release.Ref) Output {
	p := s.payload

	var items []release.ChangeItem
	for i, pr := range p.PullRequests {
		title := strings.TrimSpace(pr.Title)
		if title == "" {
			continue
		}
		at := ref.CreatedAt
		if pr.MergedAt != nil {
			at = *pr.MergedAt
		}
		items = append(items, release.ChangeItem{
			Source: release.SourcePullRequest,
			Title:  title,
			Body:   strings.TrimSpace(pr.Body),
			RefID:  eventRefID("#", pr.Number, "pr-", i),
			At:     at,
		})
	}
	for i, issue := range p.Issues {
		body := strings.TrimSpace(issue.Body)
		title := strings.TrimSpace(issue.Title)
		if title == "" && body == "" {
			continue
		}
		if title == "" {
			title, _, _ = strings.Cut(body, "\n")
		}
		items = append(items, release.ChangeItem{
			Source: release.SourcePullRequest,
			Title:  title,
			Body:   body,
			RefID:  eventRefID("issue-", issue.Number, "issue-", i),
			At:     ref.CreatedAt,
		})
	}

	if len(items) == 0 {
		return Degraded(NameEvent, "event carries no pull requests or issues", nil, nil)
	}
	return OK(NameEvent, items, nil)
}

func eventRefID(prefix string, number int, fallback string, index int) string {
	if number > 0 {
		return prefix + strconv.Itoa(number)
	}
	return fallback + strconv.Itoa(index+1)
}
