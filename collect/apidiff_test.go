package collect

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/randalmurphal/announce/release"
	"github.com/randalmurphal/announce/testutil"
)

const schemaV1 = `openapi: 3.0.0
paths:
  /users/{id}:
    get:
      summary: Get a user
`

const schemaV2 = `openapi: 3.0.0
paths:
  /users/{id}:
    get:
      summary: Get a user
  /users/{id}/activity:
    get:
      summary: List user activity
`

func staticSnapshot(data string, err error) SnapshotFunc {
	return func(context.Context, release.Ref) ([]byte, error) {
		if err != nil {
			return nil, err
		}
		return []byte(data), nil
	}
}

func TestAPIDiffCollector(t *testing.T) {
	ref := testutil.Ref("v1.2.0")
	ctx := testutil.TestContext(t)

	t.Run("added operation", func(t *testing.T) {
		c := &APIDiffCollector{Path: "openapi.yaml", Current: staticSnapshot(schemaV2, nil), Previous: staticSnapshot(schemaV1, nil)}
		out := c.Collect(ctx, ref)
		if out.Status != StatusOK || len(out.APIChanges) != 1 {
			t.Fatalf("output = %+v", out)
		}
		got := out.APIChanges[0]
		if got.Path != "/users/{id}/activity" || got.Method != "GET" || got.Kind != release.ChangeAdded {
			t.Errorf("entry = %+v", got)
		}
	})

	t.Run("missing current schema", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "openapi.yaml")
		c := &APIDiffCollector{Path: path, Current: FileSnapshot(path)}
		out := c.Collect(ctx, ref)
		if out.Status != StatusUnavailable || len(out.APIChanges) != 0 {
			t.Errorf("output = %+v", out)
		}
		if !strings.Contains(out.Reason, "not found") {
			t.Errorf("Reason = %q", out.Reason)
		}
	})

	t.Run("missing previous snapshot is empty diff", func(t *testing.T) {
		c := &APIDiffCollector{
			Current:  staticSnapshot(schemaV2, nil),
			Previous: staticSnapshot("", fmt.Errorf("%w: gone", ErrSnapshotNotFound)),
		}
		out := c.Collect(ctx, ref)
		if out.Status != StatusOK || len(out.APIChanges) != 0 {
			t.Errorf("output = %+v", out)
		}
	})

	t.Run("first release", func(t *testing.T) {
		first := ref
		first.PreviousTag = ""
		called := false
		c := &APIDiffCollector{
			Current: staticSnapshot(schemaV2, nil),
			Previous: func(context.Context, release.Ref) ([]byte, error) {
				called = true
				return nil, nil
			},
		}
		if out := c.Collect(ctx, first); out.Status != StatusOK || called {
			t.Errorf("output = %+v, previous called = %v", out, called)
		}
	})

	t.Run("previous fetch failure degrades", func(t *testing.T) {
		c := &APIDiffCollector{
			Current:  staticSnapshot(schemaV2, nil),
			Previous: staticSnapshot("", errors.New("502 bad gateway")),
		}
		if out := c.Collect(ctx, ref); out.Status != StatusDegraded {
			t.Errorf("output = %+v", out)
		}
	})

	t.Run("unparsable current schema", func(t *testing.T) {
		c := &APIDiffCollector{Current: staticSnapshot("paths: [", nil)}
		if out := c.Collect(ctx, ref); out.Status != StatusUnavailable {
			t.Errorf("output = %+v", out)
		}
	})

	t.Run("file snapshot", func(t *testing.T) {
		path := testutil.TempFileString(t, "api/openapi.yaml", schemaV1)
		data, err := FileSnapshot(path)(ctx, ref)
		if err != nil || string(data) != schemaV1 {
			t.Errorf("FileSnapshot() = %q, %v", data, err)
		}
	})
}
