package span

import (
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"golang.org/x/text/unicode/norm"

	"github.com/ppiankov/neutralizer/internal/model"
)

// Locator anchors position-less phrases in source text
type Locator struct {
	logger *log.Logger
}

// NewLocator creates a locator. A nil logger discards output.
func NewLocator(logger *log.Logger) *Locator {
	return &Locator{logger: orDiscard(logger)}
}

// match is a half-open byte range in the searched text
type match struct {
	start, end int
}

// Locate finds every occurrence of every candidate phrase in text and
// returns them as spans on the given field.
//
// Exact matches are preferred; a phrase with no exact occurrence is searched
// case-insensitively and the span records the text as it appears in the
// source, never the detector's spelling. Phrases that cannot be found are
// dropped. Repeated phrases yield one span per occurrence. The result is
// sorted and free of overlaps.
func (l *Locator) Locate(field, text string, candidates []model.PhraseCandidate) []model.Span {
	if text == "" || len(candidates) == 0 {
		return []model.Span{}
	}

	var spans []model.Span
	unanchored := 0

	for _, c := range candidates {
		phrase := strings.TrimSpace(c.Phrase)
		if phrase == "" {
			continue
		}

		matches := findAll(text, phrase)
		if len(matches) == 0 {
			unanchored++
			l.logger.Debug("phrase not found in text", "field", field, "phrase", phrase)
			continue
		}

		reason, action := l.normalize(c)
		replacement := c.Replacement
		if action == model.ActionRemove {
			replacement = ""
		}

		for _, m := range matches {
			spans = append(spans, model.Span{
				Field:           field,
				StartChar:       m.start,
				EndChar:         m.end,
				OriginalText:    text[m.start:m.end],
				Action:          action,
				Reason:          reason,
				ReplacementText: replacement,
				Origin:          model.OriginDetector,
			})
		}
	}

	if unanchored > 0 {
		l.logger.Debug("dropped unanchored phrases", "field", field, "count", unanchored, "candidates", len(candidates))
	}

	// A short phrase can match inside its own longer occurrences
	return ResolveOverlaps(spans)
}

// normalize maps the candidate's reason and action onto the closed sets
func (l *Locator) normalize(c model.PhraseCandidate) (model.Reason, model.Action) {
	reason, ok := model.ParseReason(string(c.Reason))
	if !ok && c.Reason != "" {
		l.logger.Warn("unknown reason, using default", "reason", string(c.Reason), "default", reason)
	}
	action, ok := model.ParseAction(string(c.Action))
	if !ok && c.Action != "" {
		l.logger.Warn("unknown action, using default", "action", string(c.Action), "default", action)
	}
	return reason, action
}

// findAll returns every occurrence of phrase, trying exact matches for each
// spelling variant before falling back to case-insensitive matching
func findAll(text, phrase string) []match {
	variants := phraseVariants(phrase)

	for _, v := range variants {
		if found := findExact(text, v); len(found) > 0 {
			return found
		}
	}
	for _, v := range variants {
		if found := findFold(text, v); len(found) > 0 {
			return found
		}
	}
	return nil
}

// phraseVariants returns the phrase plus its NFC and NFD forms when they
// differ, so composed and decomposed accents both anchor
func phraseVariants(phrase string) []string {
	variants := []string{phrase}
	for _, form := range []norm.Form{norm.NFC, norm.NFD} {
		v := form.String(phrase)
		seen := false
		for _, existing := range variants {
			if existing == v {
				seen = true
				break
			}
		}
		if !seen {
			variants = append(variants, v)
		}
	}
	return variants
}

// findExact returns all exact occurrences. The search resumes one character
// after each match start, so overlapping repeats are reported too.
func findExact(text, phrase string) []match {
	var found []match
	pos := 0
	for pos <= len(text)-len(phrase) {
		idx := strings.Index(text[pos:], phrase)
		if idx < 0 {
			break
		}
		start := pos + idx
		found = append(found, match{start: start, end: start + len(phrase)})
		pos = start + runeWidth(text, start)
	}
	return found
}

// findFold returns all case-insensitive occurrences using Unicode simple
// folding. Match lengths are measured in the source text, which can differ
// from the phrase length in bytes.
func findFold(text, phrase string) []match {
	first, _ := utf8.DecodeRuneInString(phrase)

	var found []match
	for i := 0; i < len(text); i += runeWidth(text, i) {
		r, _ := utf8.DecodeRuneInString(text[i:])
		if !equalFoldRune(r, first) {
			continue
		}
		if n, ok := foldPrefix(text[i:], phrase); ok {
			found = append(found, match{start: i, end: i + n})
		}
	}
	return found
}

// foldPrefix reports whether s starts with phrase under simple case folding
// and returns the number of bytes of s consumed
func foldPrefix(s, phrase string) (int, bool) {
	n := 0
	for _, pr := range phrase {
		if n >= len(s) {
			return 0, false
		}
		sr, w := utf8.DecodeRuneInString(s[n:])
		if !equalFoldRune(sr, pr) {
			return 0, false
		}
		n += w
	}
	return n, n > 0
}

func equalFoldRune(a, b rune) bool {
	if a == b {
		return true
	}
	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}
	return false
}

// runeWidth is the byte width of the character at i, at least 1
func runeWidth(text string, i int) int {
	_, w := utf8.DecodeRuneInString(text[i:])
	if w == 0 {
		return 1
	}
	return w
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger != nil {
		return logger
	}
	return log.New(io.Discard)
}
