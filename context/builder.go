package context

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/randalmurphal/announce/collect"
	"github.com/randalmurphal/announce/release"
)

// Limits bounds the serialized size of a built context.
type Limits struct {
	MaxTokens int // Token budget of the serialized context
}

// DefaultLimits returns the default budget.
func DefaultLimits() Limits {
	return Limits{MaxTokens: 8000}
}

// Builder merges collector outputs into one ordered, bounded context.
// It is the only place change items are dropped.
type Builder struct {
	limits Limits
}

// NewBuilder creates a builder. A non-positive budget uses DefaultLimits.
func NewBuilder(limits Limits) *Builder {
	if limits.MaxTokens <= 0 {
		limits = DefaultLimits()
	}
	return &Builder{limits: limits}
}

// Limits returns the builder's budget.
func (b *Builder) Limits() Limits {
	return b.limits
}

// Build merges outputs for ref. Items are de-duplicated by source and
// RefID, put in canonical order, and dropped from the tail (commits first,
// then pull requests) until the context fits the budget. API changes are
// never dropped: if the release and its API changes alone exceed the
// budget, Build returns release.ErrContextOverflow.
//
// Identical inputs produce byte-identical contexts regardless of collector
// order.
func (b *Builder) Build(ref release.Ref, outputs []collect.Output) (*release.Context, error) {
	var (
		changes []release.ChangeItem
		api     []release.APIDiffEntry
	)
	for _, out := range outputs {
		changes = append(changes, out.Changes...)
		api = append(api, out.APIChanges...)
	}

	api = dedupAPI(api)
	for _, e := range api {
		changes = append(changes, e.ChangeItem())
	}
	changes = dedupChanges(changes)

	ctx := &release.Context{
		Release:    ref,
		Changes:    changes,
		APIChanges: api,
	}
	if ctx.Tokens() <= b.limits.MaxTokens {
		return ctx, nil
	}

	// Sorted by priority, so everything after the api_diff prefix is
	// droppable in tail order.
	fixed := 0
	for fixed < len(changes) && changes[fixed].Source == release.SourceAPIDiff {
		fixed++
	}
	droppable := len(changes) - fixed

	trial := func(keep int) *release.Context {
		return &release.Context{
			Release:    ref,
			Changes:    changes[:fixed+keep],
			APIChanges: api,
			Truncated:  true,
		}
	}

	floor := trial(0)
	if tokens := floor.Tokens(); tokens > b.limits.MaxTokens {
		return nil, fmt.Errorf("%w: release and %d API changes need %d tokens, budget is %d",
			release.ErrContextOverflow, len(api), tokens, b.limits.MaxTokens)
	}

	// Largest keep count that still fits. Size grows with keep.
	keep := sort.Search(droppable+1, func(n int) bool {
		return trial(n).Tokens() > b.limits.MaxTokens
	}) - 1

	out := trial(keep)
	out.Changes = append([]release.ChangeItem(nil), out.Changes...)

	slog.Info("context truncated",
		"release", ref.Tag,
		"kept", keep,
		"dropped", droppable-keep,
		"budget", b.limits.MaxTokens)
	return out, nil
}

func dedupChanges(items []release.ChangeItem) []release.ChangeItem {
	release.SortChanges(items)

	type key struct {
		source release.Source
		ref    string
	}
	seen := make(map[key]bool, len(items))
	out := items[:0]
	for _, item := range items {
		k := key{item.Source, item.RefID}
		if item.RefID != "" && seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, item)
	}
	return out
}

func dedupAPI(entries []release.APIDiffEntry) []release.APIDiffEntry {
	release.SortAPIChanges(entries)

	seen := make(map[string]bool, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if seen[e.ID()] {
			continue
		}
		seen[e.ID()] = true
		out = append(out, e)
	}
	return out
}

// ProvenanceEntry records what one collector contributed to a context.
type ProvenanceEntry struct {
	Collector string         `json:"collector"`
	Status    collect.Status `json:"status"`
	Reason    string         `json:"reason,omitempty"`
	Items     int            `json:"items"`
}

// Provenance summarizes collector outputs in collector order.
func Provenance(outputs []collect.Output) []ProvenanceEntry {
	entries := make([]ProvenanceEntry, len(outputs))
	for i, out := range outputs {
		entries[i] = ProvenanceEntry{
			Collector: out.Collector,
			Status:    out.Status,
			Reason:    out.Reason,
			Items:     len(out.Changes) + len(out.APIChanges),
		}
	}
	return entries
}

// Degraded returns the outputs whose status is not ok.
func Degraded(outputs []collect.Output) []collect.Output {
	var out []collect.Output
	for _, o := range outputs {
		if o.Status != collect.StatusOK {
			out = append(out, o)
		}
	}
	return out
}
