// Package release defines the data model shared by every stage of an
// announcement run.
//
// Core types:
//   - Ref: the resolved release being announced
//   - ChangeItem: one change signal with its provenance (Source)
//   - APIDiffEntry: one operation-level API schema change
//   - Context: the ordered, size-bounded handoff between collection and generation
//   - GenerationResult: model output and status
//
// The error taxonomy sentinels (ErrContextOverflow, ErrGenerationTransient, ...)
// live here so every stage can classify failures with errors.Is.
package release
