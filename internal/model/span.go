package model

import "unicode/utf8"

// Span is a character-anchored record of one change made to a text field.
// StartChar and EndChar are byte offsets into the field text; EndChar is exclusive.
type Span struct {
	Field           string     `json:"field"`                      // Which text field the offsets refer to (e.g., "body")
	StartChar       int        `json:"start_char"`                 // Inclusive byte offset
	EndChar         int        `json:"end_char"`                   // Exclusive byte offset
	OriginalText    string     `json:"original_text"`              // Always text[StartChar:EndChar]
	Action          Action     `json:"action"`                     // remove, replace, soften
	Reason          Reason     `json:"reason"`                     // Manipulation category
	ReplacementText string     `json:"replacement_text,omitempty"` // Suggested replacement (replace/soften only)
	Origin          SpanOrigin `json:"origin,omitempty"`           // detector or diff
}

// Len returns the length of the span in bytes
func (s Span) Len() int {
	return s.EndChar - s.StartChar
}

// Overlaps reports whether two spans share at least one byte (half-open intervals)
func (s Span) Overlaps(other Span) bool {
	return !(s.EndChar <= other.StartChar || s.StartChar >= other.EndChar)
}

// Within reports whether the span lies entirely inside [start, end)
func (s Span) Within(start, end int) bool {
	return start <= s.StartChar && s.EndChar <= end
}

// Anchored reports whether the span is a valid, exact slice of text
func (s Span) Anchored(text string) bool {
	if s.StartChar < 0 || s.StartChar >= s.EndChar || s.EndChar > len(text) {
		return false
	}
	return text[s.StartChar:s.EndChar] == s.OriginalText
}

// Shift returns a copy of the span moved by delta bytes
func (s Span) Shift(delta int) Span {
	s.StartChar += delta
	s.EndChar += delta
	return s
}

// SpanOrigin records which stage produced a span
type SpanOrigin string

const (
	OriginDetector SpanOrigin = "detector" // Self-reported by the phrase detector
	OriginDiff     SpanOrigin = "diff"     // Inferred by diffing original and rewritten text
)

// QuoteRange marks a quotation, delimiters included.
// EndChar is the offset just past the closing delimiter.
type QuoteRange struct {
	StartChar int `json:"start_char"`
	EndChar   int `json:"end_char"`
}

// Contains reports whether the span lies fully inside the quotation
func (q QuoteRange) Contains(s Span) bool {
	return s.Within(q.StartChar, q.EndChar)
}

// Chunk is an offset-tagged slice of a longer text
type Chunk struct {
	Text        string `json:"text"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
	Index       int    `json:"index"`
}

// RuneOffsets converts byte offsets of a span into code-point offsets.
// Consumers that index text by characters rather than bytes use this at the
// serialization boundary.
func RuneOffsets(text string, s Span) (start, end int) {
	if s.StartChar < 0 || s.EndChar > len(text) || s.StartChar > s.EndChar {
		return 0, 0
	}
	start = utf8.RuneCountInString(text[:s.StartChar])
	end = start + utf8.RuneCountInString(text[s.StartChar:s.EndChar])
	return start, end
}
