package collect

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xanzy/go-gitlab"

	"github.com/randalmurphal/announce/testutil"
)

func newTestGitLabSource(t *testing.T, handler http.Handler) *GitLabSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := gitlab.NewClient("test-token", gitlab.WithBaseURL(server.URL+"/api/v4"))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	src, err := NewGitLabSource(client, "42")
	if err != nil {
		t.Fatalf("NewGitLabSource() error = %v", err)
	}
	return src
}

func TestGitLabSource_Resolve(t *testing.T) {
	releases := []map[string]any{
		{"tag_name": "v2.0.0", "name": "Upcoming", "upcoming_release": true, "released_at": "2024-06-01T12:00:00Z"},
		{"tag_name": "v1.2.0", "name": "1.2", "description": "notes", "released_at": "2024-05-08T12:00:00Z"},
		{"tag_name": "v1.1.0", "released_at": "2024-05-01T12:00:00Z"},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v4/projects/42/releases", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, releases)
	})
	mux.HandleFunc("GET /api/v4/projects/42/releases/{tag}", func(w http.ResponseWriter, r *http.Request) {
		for _, rel := range releases {
			if rel["tag_name"] == r.PathValue("tag") {
				writeJSON(w, rel)
				return
			}
		}
		http.Error(w, `{"message":"404 Not Found"}`, http.StatusNotFound)
	})
	src := newTestGitLabSource(t, mux)
	ctx := testutil.TestContext(t)

	ref, err := src.Resolve(ctx, "latest")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ref.Tag != "v1.2.0" || ref.Notes != "notes" || ref.PreviousTag != "v1.1.0" || !ref.IsLatestFallback {
		t.Errorf("ref = %+v", ref)
	}

	ref, err = src.Resolve(ctx, "v1.1.0")
	if err != nil {
		t.Fatalf("Resolve(v1.1.0) error = %v", err)
	}
	if ref.PreviousTag != "" {
		t.Errorf("PreviousTag = %q, want none", ref.PreviousTag)
	}

	if _, err := src.Resolve(ctx, "v9.9.9"); !errors.Is(err, ErrNoRelease) {
		t.Errorf("error = %v, want ErrNoRelease", err)
	}
}

func TestGitLabSource_MergeRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v4/projects/42/merge_requests", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != "merged" {
			t.Errorf("state = %q", r.URL.Query().Get("state"))
		}
		if r.URL.Query().Get("updated_after") == "" {
			t.Error("updated_after should bound the listing")
		}
		writeJSON(w, []map[string]any{
			{"iid": 7, "title": "Add activity endpoint", "description": "details", "merged_at": "2024-05-06T11:00:00Z"},
			{"iid": 8, "title": "After release", "merged_at": "2024-05-10T11:00:00Z"},
		})
	})
	src := newTestGitLabSource(t, mux)

	out := src.MergeRequests().Collect(testutil.TestContext(t), testutil.Ref("v1.2.0"))
	if out.Status != StatusOK || len(out.Changes) != 1 {
		t.Fatalf("output = %+v", out)
	}
	if out.Changes[0].RefID != "!7" || out.Changes[0].Body != "details" {
		t.Errorf("change = %+v", out.Changes[0])
	}
}

func TestNewGitLabSource(t *testing.T) {
	if _, err := NewGitLabSource(nil, "42"); err == nil {
		t.Error("expected error for nil client")
	}
	client, _ := gitlab.NewClient("x")
	if _, err := NewGitLabSource(client, ""); !errors.Is(err, ErrInvalidRepository) {
		t.Errorf("error = %v, want ErrInvalidRepository", err)
	}
}
