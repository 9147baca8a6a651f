// Package span reconciles detector-reported phrases against article text.
//
// Every function here is pure over its arguments: spans are located, de-
// overlapped, filtered and merged without I/O or shared mutable state, so a
// single Locator or Filter can serve concurrent requests. Offsets are byte
// offsets into the UTF-8 text and always satisfy
// text[span.StartChar:span.EndChar] == span.OriginalText.
package span

import (
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/neutralizer/internal/model"
)

const (
	straightDouble   = '"'
	straightSingle   = '\''
	curlyDoubleOpen  = '\u201C' // “
	curlyDoubleClose = '\u201D' // ”
	curlySingleOpen  = '\u2018' // ‘
	curlySingleClose = '\u2019' // ’
)

// openQuote is a pending opening delimiter
type openQuote struct {
	r   rune
	pos int
}

// ScanQuotes returns the ranges enclosed by matched quotation marks, sorted
// by start. Ranges include the delimiters themselves.
//
// Curly quotes have distinct open and close characters and are matched with a
// stack. Straight quotes toggle: a second occurrence of the same character on
// top of the stack closes it. Apostrophes inside words (won't, it's) never
// open or close a quote. Unterminated quotes produce no range.
func ScanQuotes(text string) []model.QuoteRange {
	ranges := []model.QuoteRange{}
	if text == "" {
		return ranges
	}

	var stack []openQuote
	prev := utf8.RuneError

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])

		switch r {
		case straightDouble:
			stack, ranges = toggle(stack, ranges, r, i, size)

		case straightSingle:
			if !isContraction(prev, text[i+size:]) {
				stack, ranges = toggle(stack, ranges, r, i, size)
			}

		case curlyDoubleOpen, curlySingleOpen:
			stack = append(stack, openQuote{r: r, pos: i})

		case curlyDoubleClose:
			stack, ranges = closeCurly(stack, ranges, curlyDoubleOpen, i, size)

		case curlySingleClose:
			// ’ doubles as the typographic apostrophe
			if !isContraction(prev, text[i+size:]) {
				stack, ranges = closeCurly(stack, ranges, curlySingleOpen, i, size)
			}
		}

		prev = r
		i += size
	}

	// Closing order is innermost-first; callers expect document order
	sort.SliceStable(ranges, func(a, b int) bool {
		return ranges[a].StartChar < ranges[b].StartChar
	})

	return ranges
}

// toggle handles an ambiguous straight quote: close if the same character is
// on top of the stack, otherwise open
func toggle(stack []openQuote, ranges []model.QuoteRange, r rune, pos, size int) ([]openQuote, []model.QuoteRange) {
	if n := len(stack); n > 0 && stack[n-1].r == r {
		ranges = append(ranges, model.QuoteRange{StartChar: stack[n-1].pos, EndChar: pos + size})
		return stack[:n-1], ranges
	}
	return append(stack, openQuote{r: r, pos: pos}), ranges
}

// closeCurly pops back to the nearest matching opener. Openers above it are
// unterminated and discarded. A closer with no opener is ignored.
func closeCurly(stack []openQuote, ranges []model.QuoteRange, opener rune, pos, size int) ([]openQuote, []model.QuoteRange) {
	for k := len(stack) - 1; k >= 0; k-- {
		if stack[k].r == opener {
			ranges = append(ranges, model.QuoteRange{StartChar: stack[k].pos, EndChar: pos + size})
			return stack[:k], ranges
		}
	}
	return stack, ranges
}

// isContraction reports whether a single quote sits between two letters.
// Only the immediate neighbours are inspected; possessives such as
// "James' dog" are indistinguishable from a closing quote and are not handled.
func isContraction(prev rune, rest string) bool {
	if rest == "" || !unicode.IsLetter(prev) {
		return false
	}
	next, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsLetter(next)
}

// InsideQuotes reports whether a span lies fully inside any of the ranges
func InsideQuotes(s model.Span, ranges []model.QuoteRange) bool {
	for _, q := range ranges {
		if q.Contains(s) {
			return true
		}
	}
	return false
}
