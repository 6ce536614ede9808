package release

import (
	"slices"
	"strings"
)

// CompareChanges implements the canonical ordering: source priority, then
// timestamp (oldest first), then RefID, title and body.
func CompareChanges(a, b ChangeItem) int {
	if pa, pb := a.Source.Priority(), b.Source.Priority(); pa != pb {
		return pa - pb
	}
	if c := a.At.Compare(b.At); c != 0 {
		return c
	}
	if c := strings.Compare(a.RefID, b.RefID); c != 0 {
		return c
	}
	if c := strings.Compare(a.Title, b.Title); c != 0 {
		return c
	}
	return strings.Compare(a.Body, b.Body)
}

// SortChanges sorts items into canonical order in place.
func SortChanges(items []ChangeItem) {
	slices.SortStableFunc(items, CompareChanges)
}

// CompareAPIChanges orders API entries by path, then method, then kind.
func CompareAPIChanges(a, b APIDiffEntry) int {
	if c := strings.Compare(a.Path, b.Path); c != 0 {
		return c
	}
	if c := strings.Compare(strings.ToUpper(a.Method), strings.ToUpper(b.Method)); c != 0 {
		return c
	}
	if c := strings.Compare(string(a.Kind), string(b.Kind)); c != 0 {
		return c
	}
	if c := strings.Compare(a.Method, b.Method); c != 0 {
		return c
	}
	return strings.Compare(a.Description, b.Description)
}

// SortAPIChanges sorts API entries into canonical order in place.
func SortAPIChanges(entries []APIDiffEntry) {
	slices.SortStableFunc(entries, CompareAPIChanges)
}
