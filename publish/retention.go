package publish

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// RetentionConfig bounds how many rejected drafts accumulate.
type RetentionConfig struct {
	RetentionDays int // Drafts older than this are removed
	KeepMin       int // Minimum drafts kept regardless of age
}

// DefaultRetentionConfig returns the default draft retention.
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		RetentionDays: 30,
		KeepMin:       10,
	}
}

// CleanupResult summarizes a pruning pass.
type CleanupResult struct {
	Deleted    []string `json:"deleted"`
	Kept       []string `json:"kept"`
	Errors     []string `json:"errors,omitempty"`
	SpaceSaved int64    `json:"spaceSaved"`
}

// PruneDrafts removes drafts in dir older than the retention window, oldest
// first, while keeping at least KeepMin of them. A missing directory is
// not an error.
func PruneDrafts(dir string, cfg RetentionConfig, now time.Time, dryRun bool) (*CleanupResult, error) {
	result := &CleanupResult{
		Deleted: make([]string, 0),
		Kept:    make([]string, 0),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, err
	}

	type draftInfo struct {
		name    string
		size    int64
		modTime time.Time
	}

	var drafts []draftInfo
	for _, entry := range entries {
		if entry.IsDir() || !isDraft(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("stat %s: %v", entry.Name(), err))
			continue
		}
		drafts = append(drafts, draftInfo{name: entry.Name(), size: info.Size(), modTime: info.ModTime()})
	}

	sort.Slice(drafts, func(i, j int) bool {
		return drafts[i].modTime.Before(drafts[j].modTime)
	})

	threshold := now.Add(-time.Duration(cfg.RetentionDays) * 24 * time.Hour)
	removed := 0
	for _, d := range drafts {
		if len(drafts)-removed-1 < cfg.KeepMin || !d.modTime.Before(threshold) {
			result.Kept = append(result.Kept, d.name)
			continue
		}

		if !dryRun {
			if err := os.Remove(filepath.Join(dir, d.name)); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("delete %s: %v", d.name, err))
				result.Kept = append(result.Kept, d.name)
				continue
			}
		}
		result.Deleted = append(result.Deleted, d.name)
		result.SpaceSaved += d.size
		removed++
	}

	return result, nil
}

func isDraft(name string) bool {
	return strings.HasSuffix(name, ".draft.md") || strings.HasSuffix(name, ".draft.md.b64")
}
