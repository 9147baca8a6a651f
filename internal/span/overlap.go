package span

import (
	"sort"

	"github.com/ppiankov/neutralizer/internal/model"
)

// ResolveOverlaps keeps a non-overlapping subset of spans, leftmost first.
//
// Spans are stable-sorted by start; a span is kept when it starts at or after
// the end of the last kept span. Equal starts keep input order, so the span
// registered first wins. This is greedy earliest-start selection, not
// longest-span or best-coverage selection: which of two competing reasons
// survives for an ambiguous phrase depends on it, so keep it that way.
func ResolveOverlaps(spans []model.Span) []model.Span {
	if len(spans) == 0 {
		return []model.Span{}
	}

	sorted := make([]model.Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartChar < sorted[j].StartChar
	})

	kept := make([]model.Span, 0, len(sorted))
	lastEnd := -1
	for _, s := range sorted {
		if s.StartChar >= lastEnd {
			kept = append(kept, s)
			lastEnd = s.EndChar
		}
	}

	return kept
}
