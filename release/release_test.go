package release

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abc", 1},
		{strings.Repeat("x", 35), 10},
		{strings.Repeat("x", 350), 100},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.in); got != tt.want {
			t.Errorf("EstimateTokens(%d chars) = %d, want %d", len(tt.in), got, tt.want)
		}
	}
}

func TestValidateTag(t *testing.T) {
	valid := []string{"", "latest", "v1.2.0", "release/2024.01", "1.0.0+build.5", "v2-rc1"}
	for _, tag := range valid {
		if err := ValidateTag(tag); err != nil {
			t.Errorf("ValidateTag(%q) = %v, want nil", tag, err)
		}
	}

	invalid := []string{"-v1", "v1 2", "v1..2", "../etc", "tag~1", "v1:2"}
	for _, tag := range invalid {
		err := ValidateTag(tag)
		if !errors.Is(err, ErrInvalidReleaseRef) {
			t.Errorf("ValidateTag(%q) = %v, want ErrInvalidReleaseRef", tag, err)
		}
	}
}

func TestRef_Validate(t *testing.T) {
	if err := (Ref{}).Validate(); !errors.Is(err, ErrInvalidReleaseRef) {
		t.Errorf("empty ref: got %v", err)
	}
	if err := (Ref{Tag: "latest"}).Validate(); !errors.Is(err, ErrInvalidReleaseRef) {
		t.Errorf("unresolved latest: got %v", err)
	}
	if err := (Ref{Tag: "v1.0.0"}).Validate(); err != nil {
		t.Errorf("v1.0.0: got %v", err)
	}
}

func TestRef_Since(t *testing.T) {
	prev := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cur := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	ref := Ref{Tag: "v2", CreatedAt: cur, PreviousAt: prev}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before window", prev.Add(-time.Hour), false},
		{"at previous release", prev, false},
		{"inside window", prev.Add(24 * time.Hour), true},
		{"at release", cur, true},
		{"after release", cur.Add(time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ref.Since(tt.at); got != tt.want {
				t.Errorf("Since(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}

	first := Ref{Tag: "v1", CreatedAt: cur}
	if !first.Since(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("first release should have an unbounded lower window")
	}
}

func TestSortChanges(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	items := []ChangeItem{
		{Source: SourceCommit, RefID: "c1", At: t1},
		{Source: SourcePullRequest, RefID: "#2", At: t2},
		{Source: SourcePullRequest, RefID: "#1", At: t2},
		{Source: SourceAPIDiff, RefID: "GET /b"},
		{Source: SourcePullRequest, RefID: "#9", At: t1},
		{Source: SourceAPIDiff, RefID: "GET /a"},
	}
	SortChanges(items)

	want := []string{"GET /a", "GET /b", "#9", "#1", "#2", "c1"}
	for i, id := range want {
		if items[i].RefID != id {
			t.Fatalf("position %d = %s, want %s (full order %v)", i, items[i].RefID, id, items)
		}
	}

	dups := []ChangeItem{
		{Source: SourcePullRequest, RefID: "#1", Title: "t", Body: "b", At: t1},
		{Source: SourcePullRequest, RefID: "#1", Title: "t", Body: "a", At: t1},
	}
	SortChanges(dups)
	if dups[0].Body != "a" {
		t.Errorf("equal items not ordered by body: %v", dups)
	}
}

func TestSortAPIChanges(t *testing.T) {
	entries := []APIDiffEntry{
		{Path: "/users", Method: "post", Kind: ChangeAdded},
		{Path: "/orders", Method: "GET", Kind: ChangeRemoved},
		{Path: "/users", Method: "GET", Kind: ChangeModified},
	}
	SortAPIChanges(entries)

	got := []string{entries[0].ID(), entries[1].ID(), entries[2].ID()}
	want := []string{"GET /orders", "GET /users", "POST /users"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entries[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestContext_MarshalDeterministic(t *testing.T) {
	ctx := &Context{
		Release: Ref{Tag: "v1.2.0", CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))},
		Changes: []ChangeItem{
			{Source: SourcePullRequest, Title: "Add activity feed", RefID: "#12"},
		},
	}

	first, err := ctx.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for range 5 {
		again, _ := ctx.Marshal()
		if string(again) != string(first) {
			t.Fatalf("Marshal not stable:\n%s\n%s", first, again)
		}
	}

	if !strings.Contains(string(first), `"api_changes":[]`) {
		t.Errorf("nil api changes should serialize as empty list: %s", first)
	}
	if !strings.Contains(string(first), "2024-03-01T11:00:00Z") {
		t.Errorf("created_at should be normalized to UTC: %s", first)
	}
	if ctx.Tokens() != EstimateTokens(string(first)) {
		t.Error("Tokens should match the estimate of the serialization")
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":         FormatMarkdown,
		"markdown": FormatMarkdown,
		"MkDocs":   FormatMkDocs,
		" jekyll ": FormatJekyll,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("html"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestAPIDiffEntry_ChangeItem(t *testing.T) {
	e := APIDiffEntry{Path: "/users/{id}/activity", Method: "get", Kind: ChangeAdded, Description: "List activity"}
	item := e.ChangeItem()
	if item.Source != SourceAPIDiff {
		t.Errorf("Source = %s", item.Source)
	}
	if item.RefID != "GET /users/{id}/activity" {
		t.Errorf("RefID = %q", item.RefID)
	}
	if item.Title != "added GET /users/{id}/activity" {
		t.Errorf("Title = %q", item.Title)
	}
}
