package openapi

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/randalmurphal/announce/release"
)

// Diff compares two snapshots. A nil previous snapshot yields an empty diff:
// without a baseline every operation would look new, which is noise rather
// than signal. The result is in canonical order.
func Diff(prev, cur *Document) []release.APIDiffEntry {
	if prev == nil || cur == nil {
		return nil
	}

	var entries []release.APIDiffEntry
	for _, op := range cur.Operations {
		old, ok := prev.Lookup(op.Method, op.Path)
		if !ok {
			entries = append(entries, release.APIDiffEntry{
				Path:        op.Path,
				Method:      strings.ToUpper(op.Method),
				Kind:        release.ChangeAdded,
				Description: op.Summary,
			})
			continue
		}
		if old.canonical != op.canonical {
			entries = append(entries, release.APIDiffEntry{
				Path:        op.Path,
				Method:      strings.ToUpper(op.Method),
				Kind:        release.ChangeModified,
				Description: describeModification(old, op),
			})
		}
	}
	for _, op := range prev.Operations {
		if _, ok := cur.Lookup(op.Method, op.Path); !ok {
			entries = append(entries, release.APIDiffEntry{
				Path:        op.Path,
				Method:      strings.ToUpper(op.Method),
				Kind:        release.ChangeRemoved,
				Description: op.Summary,
			})
		}
	}

	release.SortAPIChanges(entries)
	return entries
}

// describeModification summarizes what changed in an operation.
func describeModification(old, cur Operation) string {
	var parts []string
	if cur.Summary != "" {
		parts = append(parts, cur.Summary)
	}

	added, removed := setDiff(old.Parameters, cur.Parameters)
	if len(added) > 0 {
		parts = append(parts, "parameters added: "+strings.Join(added, ", "))
	}
	if len(removed) > 0 {
		parts = append(parts, "parameters removed: "+strings.Join(removed, ", "))
	}

	added, removed = setDiff(old.Responses, cur.Responses)
	if len(added) > 0 {
		parts = append(parts, "responses added: "+strings.Join(added, ", "))
	}
	if len(removed) > 0 {
		parts = append(parts, "responses removed: "+strings.Join(removed, ", "))
	}

	if cur.Deprecated && !old.Deprecated {
		parts = append(parts, "now deprecated")
	}
	if old.Summary != cur.Summary && old.Summary != "" {
		parts = append(parts, fmt.Sprintf("summary was %q", old.Summary))
	}

	// Nothing structural changed; fall back to the size of the body diff.
	if len(parts) == 0 || (len(parts) == 1 && cur.Summary != "") {
		if n := changedLines(old.canonical, cur.canonical); n > 0 {
			parts = append(parts, fmt.Sprintf("%d schema lines changed", n))
		}
	}
	return strings.Join(parts, "; ")
}

// setDiff returns items only in b (added) and only in a (removed).
func setDiff(a, b []string) (added, removed []string) {
	for _, s := range b {
		if !slices.Contains(a, s) {
			added = append(added, s)
		}
	}
	for _, s := range a {
		if !slices.Contains(b, s) {
			removed = append(removed, s)
		}
	}
	return added, removed
}

// changedLines counts inserted and deleted lines between two texts.
func changedLines(a, b string) int {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	n := 0
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			continue
		}
		n += strings.Count(d.Text, "\n")
		if !strings.HasSuffix(d.Text, "\n") && d.Text != "" {
			n++
		}
	}
	return n
}
