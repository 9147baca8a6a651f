package validate

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/ppiankov/neutralizer/internal/logging"
	"github.com/ppiankov/neutralizer/internal/model"
)

// Validator is the last guard before spans leave the pipeline. It enforces
// that every span is an exact, rune-aligned slice of the text and that the
// set is sorted and non-overlapping. Spans that fail are dropped and
// reported, never repaired.
type Validator struct {
	logger *log.Logger
}

// NewValidator creates a new validator
func NewValidator(logger *log.Logger) *Validator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Validator{logger: logger}
}

// Validate returns the spans that hold every invariant, sorted by start, and
// a violation for each span it dropped
func (v *Validator) Validate(text string, spans []model.Span) ([]model.Span, []model.Violation) {
	if len(spans) == 0 {
		return []model.Span{}, nil
	}

	sorted := make([]model.Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartChar < sorted[j].StartChar
	})

	valid := make([]model.Span, 0, len(sorted))
	var violations []model.Violation
	lastEnd := -1

	for _, s := range sorted {
		if violation, ok := check(text, s); !ok {
			violations = append(violations, violation)
			continue
		}

		if s.StartChar < lastEnd {
			violations = append(violations, model.Violation{
				Type:    model.ViolationOverlap,
				Details: fmt.Sprintf("starts at %d before previous span ends at %d", s.StartChar, lastEnd),
				Span:    s,
			})
			continue
		}

		valid = append(valid, s)
		lastEnd = s.EndChar
	}

	for _, violation := range violations {
		v.logger.Warn("Dropped invalid span",
			"type", violation.Type,
			"start", violation.Span.StartChar,
			"end", violation.Span.EndChar,
			"details", violation.Details)
	}

	return valid, violations
}

// check verifies a single span against text
func check(text string, s model.Span) (model.Violation, bool) {
	switch {
	case s.StartChar < 0 || s.EndChar > len(text) || s.StartChar >= s.EndChar:
		return model.Violation{
			Type:    model.ViolationOutOfBounds,
			Details: fmt.Sprintf("[%d, %d) is empty or outside text of length %d", s.StartChar, s.EndChar, len(text)),
			Span:    s,
		}, false

	case !utf8.RuneStart(text[s.StartChar]) || (s.EndChar < len(text) && !utf8.RuneStart(text[s.EndChar])):
		return model.Violation{
			Type:    model.ViolationSplitRune,
			Details: fmt.Sprintf("[%d, %d) cuts a multi-byte character", s.StartChar, s.EndChar),
			Span:    s,
		}, false

	case text[s.StartChar:s.EndChar] != s.OriginalText:
		return model.Violation{
			Type:    model.ViolationMismatch,
			Details: fmt.Sprintf("text at [%d, %d) is %q, span says %q", s.StartChar, s.EndChar, text[s.StartChar:s.EndChar], s.OriginalText),
			Span:    s,
		}, false
	}

	return model.Violation{}, true
}
