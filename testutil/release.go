package testutil

import (
	"fmt"
	"time"

	"github.com/randalmurphal/announce/release"
)

// BaseTime is the fixed clock used by release fixtures.
var BaseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// Ref returns a resolved release for tag created one week after BaseTime,
// with v0 as the previous release at BaseTime.
func Ref(tag string) release.Ref {
	return release.Ref{
		Tag:         tag,
		Name:        tag,
		URL:         "https://github.com/acme/widgets/releases/tag/" + tag,
		Repository:  "acme/widgets",
		CreatedAt:   BaseTime.Add(7 * 24 * time.Hour),
		PreviousTag: "v0.0.0",
		PreviousAt:  BaseTime,
	}
}

// PullRequests returns n merged pull request items numbered from 1, one
// hour apart starting an hour after BaseTime.
func PullRequests(n int) []release.ChangeItem {
	items := make([]release.ChangeItem, n)
	for i := range n {
		items[i] = release.ChangeItem{
			Source: release.SourcePullRequest,
			Title:  fmt.Sprintf("Improve widget handling part %d", i+1),
			Body:   fmt.Sprintf("Details for change %d.", i+1),
			RefID:  fmt.Sprintf("#%d", i+1),
			At:     BaseTime.Add(time.Duration(i+1) * time.Hour),
		}
	}
	return items
}

// Commits returns n commit items with synthetic SHAs.
func Commits(n int) []release.ChangeItem {
	items := make([]release.ChangeItem, n)
	for i := range n {
		items[i] = release.ChangeItem{
			Source: release.SourceCommit,
			Title:  fmt.Sprintf("fix: adjust edge case %d", i+1),
			RefID:  fmt.Sprintf("%07x", i+1),
			At:     BaseTime.Add(time.Duration(i+1) * time.Minute),
		}
	}
	return items
}

// APIEntry returns an api diff entry.
func APIEntry(method, path string, kind release.ChangeKind, description string) release.APIDiffEntry {
	return release.APIDiffEntry{Path: path, Method: method, Kind: kind, Description: description}
}
