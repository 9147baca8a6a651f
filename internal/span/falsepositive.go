package span

import "strings"

// defaultFalsePositivePhrases are exact multi-word phrases that detectors
// tend to flag but that are neutral in news copy. Matching is exact on the
// lowercased, trimmed span text.
var defaultFalsePositivePhrases = []string{
	// Medical terms
	"breast cancer",
	"lung cancer",
	"pancreatic cancer",
	"prostate cancer",
	"terminal cancer",
	"heart attack",
	"cardiac arrest",
	"heart failure",
	"stroke victim",
	"mental health",
	"mental illness",
	"critical condition",
	"life support",
	"intensive care",
	"life-threatening injuries",
	"serious injuries",
	"public health emergency",
	"opioid overdose",

	// Professional and official titles
	"chief executive",
	"chief executive officer",
	"attorney general",
	"prime minister",
	"secretary of state",
	"supreme leader",
	"chief justice",
	"surgeon general",
	"commander in chief",
	"special counsel",
	"house speaker",
	"majority leader",
	"minority leader",

	// Temporal phrases
	"last week",
	"last month",
	"last year",
	"earlier this year",
	"earlier this week",
	"later this year",
	"this week",
	"this morning",
	"on monday",
	"on tuesday",
	"on wednesday",
	"on thursday",
	"on friday",
	"on saturday",
	"on sunday",
	"in recent years",
	"for the first time",

	// Legal and procedural terms
	"state of emergency",
	"national emergency",
	"death penalty",
	"death toll",
	"mass shooting",
	"hate crime",
	"war crimes",
	"crimes against humanity",

	// Page boilerplate
	"read more",
	"sign up",
	"subscribe now",
	"share this article",
	"advertisement",
	"related coverage",
	"click here",
}

// defaultFalsePositivePatterns are substring patterns. Keep this list empty
// unless a pattern is specific enough to never hide a real detection; broad
// single words ("cancer", "crisis") would suppress legitimate flags in other
// contexts.
var defaultFalsePositivePatterns = []string{}

// FalsePositives is an immutable table of phrases that must never be flagged.
// Build a new table to change it; never modify one in place.
type FalsePositives struct {
	phrases  map[string]struct{}
	patterns []string
}

// NewFalsePositives builds a table from exact phrases and substring patterns.
// Entries are lowercased and trimmed; blanks are ignored.
func NewFalsePositives(phrases, patterns []string) *FalsePositives {
	fp := &FalsePositives{
		phrases: make(map[string]struct{}, len(phrases)),
	}
	for _, p := range phrases {
		if key := fpKey(p); key != "" {
			fp.phrases[key] = struct{}{}
		}
	}
	for _, p := range patterns {
		if key := fpKey(p); key != "" {
			fp.patterns = append(fp.patterns, key)
		}
	}
	return fp
}

// DefaultFalsePositives returns the built-in table
func DefaultFalsePositives() *FalsePositives {
	return NewFalsePositives(defaultFalsePositivePhrases, defaultFalsePositivePatterns)
}

// With returns a new table containing this one plus extra phrases
func (fp *FalsePositives) With(extra ...string) *FalsePositives {
	phrases := make([]string, 0, len(fp.phrases)+len(extra))
	for p := range fp.phrases {
		phrases = append(phrases, p)
	}
	phrases = append(phrases, extra...)
	return NewFalsePositives(phrases, fp.patterns)
}

// WithPatterns returns a new table containing this one plus extra substring
// patterns
func (fp *FalsePositives) WithPatterns(extra ...string) *FalsePositives {
	phrases := make([]string, 0, len(fp.phrases))
	for p := range fp.phrases {
		phrases = append(phrases, p)
	}
	patterns := append(append([]string(nil), fp.patterns...), extra...)
	return NewFalsePositives(phrases, patterns)
}

// Match reports whether text is a known false positive and which entry hit
func (fp *FalsePositives) Match(text string) (string, bool) {
	key := fpKey(text)
	if key == "" {
		return "", false
	}
	if _, ok := fp.phrases[key]; ok {
		return key, true
	}
	for _, p := range fp.patterns {
		if strings.Contains(key, p) {
			return p, true
		}
	}
	return "", false
}

// Len returns the number of exact phrases in the table
func (fp *FalsePositives) Len() int {
	return len(fp.phrases)
}

func fpKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
