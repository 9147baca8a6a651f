package span

import (
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/ppiankov/neutralizer/internal/model"
)

// sampleSize bounds how many removed phrases are logged per filter
const sampleSize = 3

// Filter removes spans that must not be shown as changes: quoted speech and
// known false positives.
//
// The false-positive table is read through an atomic pointer so it can be
// swapped while requests are in flight.
type Filter struct {
	falsePositives atomic.Pointer[FalsePositives]
	logger         *log.Logger
}

// FilterResult holds the kept spans and what each stage removed
type FilterResult struct {
	Spans          []model.Span
	Quoted         []model.Span
	FalsePositives []model.Span
}

// NewFilter creates a filter. A nil table uses DefaultFalsePositives.
func NewFilter(fp *FalsePositives, logger *log.Logger) *Filter {
	if fp == nil {
		fp = DefaultFalsePositives()
	}
	f := &Filter{logger: orDiscard(logger)}
	f.falsePositives.Store(fp)
	return f
}

// SetFalsePositives replaces the false-positive table
func (f *Filter) SetFalsePositives(fp *FalsePositives) {
	if fp != nil {
		f.falsePositives.Store(fp)
	}
}

// FalsePositives returns the current table
func (f *Filter) FalsePositives() *FalsePositives {
	return f.falsePositives.Load()
}

// Apply returns the spans that survive both filters
func (f *Filter) Apply(text string, spans []model.Span) []model.Span {
	return f.Run(text, spans).Spans
}

// Run applies the quote filter and then the false-positive filter.
// Input is first reduced to a sorted, non-overlapping set.
func (f *Filter) Run(text string, spans []model.Span) FilterResult {
	result := FilterResult{Spans: []model.Span{}}
	if text == "" || len(spans) == 0 {
		return result
	}

	kept, quoted := FilterQuoted(text, ResolveOverlaps(spans))
	result.Quoted = quoted
	if len(quoted) > 0 {
		f.logger.Info("removed quoted spans", "count", len(quoted), "sample", sample(quoted))
	}

	kept, falsePositives := f.filterFalsePositives(kept)
	result.FalsePositives = falsePositives
	if len(falsePositives) > 0 {
		f.logger.Info("removed false positives", "count", len(falsePositives), "sample", sample(falsePositives))
	}

	result.Spans = kept
	return result
}

// FilterQuoted drops spans that lie entirely inside quotation marks.
// A span that straddles a quote boundary is kept: it includes unquoted text.
func FilterQuoted(text string, spans []model.Span) (kept, dropped []model.Span) {
	kept = make([]model.Span, 0, len(spans))
	ranges := ScanQuotes(text)
	if len(ranges) == 0 {
		return append(kept, spans...), nil
	}

	for _, s := range spans {
		if InsideQuotes(s, ranges) {
			dropped = append(dropped, s)
			continue
		}
		kept = append(kept, s)
	}
	return kept, dropped
}

func (f *Filter) filterFalsePositives(spans []model.Span) (kept, dropped []model.Span) {
	fp := f.falsePositives.Load()
	kept = make([]model.Span, 0, len(spans))
	for _, s := range spans {
		if entry, ok := fp.Match(s.OriginalText); ok {
			f.logger.Debug("false positive", "text", s.OriginalText, "entry", entry)
			dropped = append(dropped, s)
			continue
		}
		kept = append(kept, s)
	}
	return kept, dropped
}

// sample returns up to sampleSize span texts for logging
func sample(spans []model.Span) []string {
	n := len(spans)
	if n > sampleSize {
		n = sampleSize
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = spans[i].OriginalText
	}
	return out
}
