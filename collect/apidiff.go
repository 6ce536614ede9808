package collect

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/randalmurphal/announce/openapi"
	"github.com/randalmurphal/announce/release"
)

// NameAPIDiff is the collector name of the schema diff.
const NameAPIDiff = "api_diff"

// SnapshotFunc returns the raw schema for a release. It returns an error
// wrapping ErrSnapshotNotFound when the schema does not exist there.
type SnapshotFunc func(ctx context.Context, ref release.Ref) ([]byte, error)

// FileSnapshot reads the current schema from disk.
func FileSnapshot(path string) SnapshotFunc {
	return func(context.Context, release.Ref) ([]byte, error) {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, path)
		}
		return data, err
	}
}

// APIDiffCollector diffs the schema of the previous release against the
// current one. A missing previous snapshot is an empty diff; a missing
// current schema makes the collector unavailable.
type APIDiffCollector struct {
	Path     string
	Current  SnapshotFunc
	Previous SnapshotFunc
}

// Name implements Collector.
func (c *APIDiffCollector) Name() string { return NameAPIDiff }

// Collect implements Collector.
func (c *APIDiffCollector) Collect(ctx context.Context, ref release.Ref) Output {
	if c.Current == nil {
		return Unavailable(NameAPIDiff, "no schema source configured")
	}

	data, err := c.Current(ctx, ref)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return Unavailable(NameAPIDiff, fmt.Sprintf("schema %s not found", c.Path))
		}
		return Unavailable(NameAPIDiff, "read schema: "+err.Error())
	}
	cur, err := openapi.Parse(data)
	if err != nil {
		return Unavailable(NameAPIDiff, "parse schema: "+err.Error())
	}

	if ref.PreviousTag == "" || c.Previous == nil {
		return OK(NameAPIDiff, nil, nil)
	}

	prevData, err := c.Previous(ctx, ref)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return OK(NameAPIDiff, nil, nil)
		}
		return Degraded(NameAPIDiff, fmt.Sprintf("previous schema at %s: %v", ref.PreviousTag, err), nil, nil)
	}
	prev, err := openapi.Parse(prevData)
	if err != nil {
		return Degraded(NameAPIDiff, fmt.Sprintf("parse previous schema at %s: %v", ref.PreviousTag, err), nil, nil)
	}

	return OK(NameAPIDiff, nil, openapi.Diff(prev, cur))
}
