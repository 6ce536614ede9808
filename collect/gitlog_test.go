package collect

import (
	"errors"
	"testing"
	"time"

	"github.com/randalmurphal/announce/git"
	"github.com/randalmurphal/announce/release"
	"github.com/randalmurphal/announce/testutil"
)

func TestCommitItem(t *testing.T) {
	when := testutil.BaseTime
	tests := []struct {
		name      string
		message   string
		wantOK    bool
		wantTitle string
	}{
		{"feature", "feat(api): add activity endpoint\n\nLists recent actions.", true, "add activity endpoint"},
		{"fix", "fix: handle empty pages", true, "handle empty pages"},
		{"chore skipped", "chore: bump deps", false, ""},
		{"breaking chore kept", "refactor!: drop v1 auth", true, "BREAKING: drop v1 auth"},
		{"free form", "Improve error messages", true, "Improve error messages"},
		{"merge skipped", "Merge pull request #12 from acme/feature", false, ""},
		{"empty", "  ", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := commitItem("0123456789abcdef", tt.message, when)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if item.Title != tt.wantTitle || item.RefID != "0123456" || item.Source != release.SourceCommit {
				t.Errorf("item = %+v", item)
			}
		})
	}
}

func TestGitSource_RealRepo(t *testing.T) {
	dir := testutil.SetupTestRepoWithFiles(t, map[string]string{"openapi.yaml": schemaV1})
	testutil.Tag(t, dir, "v1.0.0")
	testutil.CommitFile(t, dir, "openapi.yaml", schemaV2, "feat: add activity endpoint")
	testutil.CommitFile(t, dir, "ci.yml", "on: push\n", "ci: add workflow")
	testutil.Tag(t, dir, "v1.1.0")

	g, err := git.NewContext(dir)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	src := NewGitSource(g, "acme/widgets")
	ctx := testutil.TestContext(t)

	ref, err := src.Resolve(ctx, "latest")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ref.Tag != "v1.1.0" || ref.PreviousTag != "v1.0.0" || !ref.IsLatestFallback {
		t.Errorf("ref = %+v", ref)
	}
	if ref.URL != "https://github.com/acme/widgets/releases/tag/v1.1.0" {
		t.Errorf("URL = %q", ref.URL)
	}

	out := src.Commits().Collect(ctx, ref)
	if out.Status != StatusOK || len(out.Changes) != 1 || out.Changes[0].Title != "add activity endpoint" {
		t.Errorf("commits = %+v", out)
	}

	diff := (&APIDiffCollector{Path: "openapi.yaml", Current: staticSnapshot(schemaV2, nil), Previous: src.Snapshot("openapi.yaml")}).Collect(ctx, ref)
	if diff.Status != StatusOK || len(diff.APIChanges) != 1 {
		t.Errorf("api diff = %+v", diff)
	}

	if _, err := src.Snapshot("missing.yaml")(ctx, ref); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("Snapshot(missing) error = %v, want ErrSnapshotNotFound", err)
	}

	first, err := src.Resolve(ctx, "v1.0.0")
	if err != nil {
		t.Fatalf("Resolve(v1.0.0) error = %v", err)
	}
	if first.PreviousTag != "" || first.IsLatestFallback {
		t.Errorf("first release = %+v", first)
	}
	if _, err := src.Resolve(ctx, "v9.0.0"); !errors.Is(err, ErrNoRelease) {
		t.Errorf("Resolve(unknown) error = %v, want ErrNoRelease", err)
	}
}

func TestGitLogCollector_Mock(t *testing.T) {
	runner := git.NewSequentialMockRunner()
	runner.AddOutput(".git", nil) // rev-parse --git-dir
	runner.AddOutput("abcdef1234\x1ffeat: search\x1f\x1f2024-05-02T10:00:00Z\x1e\n"+
		"1234567abc\x1fdocs: typo\x1f\x1f2024-05-02T09:00:00Z\x1e", nil)

	g, err := git.NewContext(t.TempDir(), git.WithRunner(runner))
	if err != nil {
		t.Fatal(err)
	}
	out := (&GitLogCollector{Git: g}).Collect(testutil.TestContext(t), testutil.Ref("v1.2.0"))
	if out.Status != StatusOK || len(out.Changes) != 1 {
		t.Fatalf("output = %+v", out)
	}
	want := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	if !out.Changes[0].At.Equal(want) || out.Changes[0].RefID != "abcdef1" {
		t.Errorf("change = %+v", out.Changes[0])
	}

	failing := git.NewSequentialMockRunner()
	failing.AddOutput(".git", nil)
	failing.AddOutput("", errors.New("fatal: bad revision"))
	g, _ = git.NewContext(t.TempDir(), git.WithRunner(failing))
	if out := (&GitLogCollector{Git: g}).Collect(testutil.TestContext(t), testutil.Ref("v1.2.0")); out.Status != StatusUnavailable {
		t.Errorf("failing log output = %+v", out)
	}
}
