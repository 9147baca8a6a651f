package span

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/ppiankov/neutralizer/internal/model"
)

// Reasons assigned to changes the rewriter made without reporting them
const (
	DiffReplaceReason = model.ReasonEmotionalTrigger
	DiffRemoveReason  = model.ReasonUrgencyInflation
)

// ExtractDiff compares original text with an independently rewritten version
// and returns spans for every removal or replacement, in original's
// coordinates.
//
// The texts are split into word, whitespace and punctuation tokens and
// compared with difflib opcodes. Replacements become ActionReplace spans with
// the inserted text as replacement; deletions become ActionRemove spans.
// Text replaced by whitespace alone is a spacing edit and produces nothing.
// Pure insertions have no slice of the original and produce nothing.
// Whitespace at the edges of a change is trimmed off the span.
func ExtractDiff(field, original, rewritten string) []model.Span {
	spans := []model.Span{}
	if original == "" || original == rewritten {
		return spans
	}

	a, aOff := tokenize(original)
	b, bOff := tokenize(rewritten)

	matcher := difflib.NewMatcherWithJunk(a, b, false, nil)
	for _, op := range matcher.GetOpCodes() {
		start, end := aOff[op.I1], aOff[op.I2]

		switch op.Tag {
		case 'r':
			inserted := strings.TrimSpace(rewritten[bOff[op.J1]:bOff[op.J2]])
			if inserted == "" {
				// Replaced by whitespace only: a spacing edit, not a wording change
				continue
			}
			if s, ok := diffSpan(field, original, start, end, model.ActionReplace, DiffReplaceReason, inserted); ok {
				spans = append(spans, s)
			}

		case 'd':
			if s, ok := diffSpan(field, original, start, end, model.ActionRemove, DiffRemoveReason, ""); ok {
				spans = append(spans, s)
			}
		}
	}

	return spans
}

// diffSpan builds a span over original[start:end] with edge whitespace
// trimmed. ok is false when nothing but whitespace changed.
func diffSpan(field, original string, start, end int, action model.Action, reason model.Reason, replacement string) (model.Span, bool) {
	for start < end {
		r, w := utf8.DecodeRuneInString(original[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		start += w
	}
	for end > start {
		r, w := utf8.DecodeLastRuneInString(original[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= w
	}
	if start >= end {
		return model.Span{}, false
	}

	return model.Span{
		Field:           field,
		StartChar:       start,
		EndChar:         end,
		OriginalText:    original[start:end],
		Action:          action,
		Reason:          reason,
		ReplacementText: replacement,
		Origin:          model.OriginDiff,
	}, true
}

// tokenize splits s into words, whitespace runs and single punctuation
// characters. offsets has one entry per token start plus a final len(s), so
// token k spans s[offsets[k]:offsets[k+1]].
func tokenize(s string) (tokens []string, offsets []int) {
	const (
		kindNone = iota
		kindWord
		kindSpace
	)

	start := 0
	kind := kindNone
	flush := func(end int) {
		if end > start {
			tokens = append(tokens, s[start:end])
			offsets = append(offsets, start)
		}
		start = end
	}

	for i := 0; i < len(s); {
		r, w := utf8.DecodeRuneInString(s[i:])

		switch {
		case isWordRune(r) || (kind == kindWord && isInnerApostrophe(r, s[i+w:])):
			if kind != kindWord {
				flush(i)
				kind = kindWord
			}
		case unicode.IsSpace(r):
			if kind != kindSpace {
				flush(i)
				kind = kindSpace
			}
		default:
			flush(i)
			tokens = append(tokens, s[i:i+w])
			offsets = append(offsets, i)
			start = i + w
			kind = kindNone
		}

		i += w
	}
	flush(len(s))

	offsets = append(offsets, len(s))
	return tokens, offsets
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// isInnerApostrophe keeps contractions (wasn't, it’s) inside one word token
func isInnerApostrophe(r rune, rest string) bool {
	if r != straightSingle && r != curlySingleClose {
		return false
	}
	next, _ := utf8.DecodeRuneInString(rest)
	return isWordRune(next)
}
