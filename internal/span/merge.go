package span

import (
	"sort"

	"github.com/ppiankov/neutralizer/internal/model"
)

// Merge combines self-reported spans with diff-derived ones.
//
// Primary spans are kept as-is, even when their reason is only a default.
// A secondary span is added only if it overlaps nothing already kept, so the
// diff fills gaps in self-reporting but never overrides it. The result is
// sorted by start.
func Merge(primary, secondary []model.Span) []model.Span {
	merged := make([]model.Span, 0, len(primary)+len(secondary))
	merged = append(merged, primary...)

	for _, s := range secondary {
		if !overlapsAny(s, merged) {
			merged = append(merged, s)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].StartChar < merged[j].StartChar
	})

	return merged
}

func overlapsAny(s model.Span, kept []model.Span) bool {
	for _, k := range kept {
		if s.Overlaps(k) {
			return true
		}
	}
	return false
}
