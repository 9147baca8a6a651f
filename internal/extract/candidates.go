package extract

import (
	"encoding/json"
	"strings"

	"github.com/ppiankov/neutralizer/internal/model"
)

// BatchKind records which shape a detector response had
type BatchKind int

const (
	BatchEmpty   BatchKind = iota // No content
	BatchArray                    // Bare JSON array
	BatchWrapped                  // Object holding the list under a known key
	BatchSingle                   // One bare phrase object
	BatchInvalid                  // Not JSON, or JSON of no known shape
)

// String returns the kind name used in logs
func (k BatchKind) String() string {
	switch k {
	case BatchEmpty:
		return "empty"
	case BatchArray:
		return "array"
	case BatchWrapped:
		return "wrapped"
	case BatchSingle:
		return "single"
	default:
		return "invalid"
	}
}

// wrapperKeys are tried in order when the response is a JSON object
var wrapperKeys = []string{
	"phrases",
	"spans",
	"results",
	"items",
	"manipulations",
	"detections",
	"data",
}

// Batch is a normalized detector response. Entries stay untyped until
// Candidates is called; nothing outside this file inspects raw JSON.
type Batch struct {
	Kind    BatchKind
	Key     string // Wrapper key, for BatchWrapped
	entries []json.RawMessage
}

// Len returns the number of raw entries, including ones Candidates will skip
func (b Batch) Len() int {
	return len(b.entries)
}

// ParseBatch normalizes a raw detector response. It accepts a bare array,
// an object with the list under one of the wrapper keys, or a single phrase
// object, optionally inside a Markdown code fence or surrounded by prose.
func ParseBatch(raw string) Batch {
	if strings.TrimSpace(raw) == "" {
		return Batch{Kind: BatchEmpty}
	}
	payload := jsonPayload(raw)
	if payload == "" {
		return Batch{Kind: BatchInvalid}
	}

	switch payload[0] {
	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal([]byte(payload), &entries); err != nil {
			return Batch{Kind: BatchInvalid}
		}
		return Batch{Kind: BatchArray, entries: entries}

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(payload), &obj); err != nil {
			return Batch{Kind: BatchInvalid}
		}
		for _, key := range wrapperKeys {
			v, ok := obj[key]
			if !ok {
				continue
			}
			var entries []json.RawMessage
			if err := json.Unmarshal(v, &entries); err == nil {
				return Batch{Kind: BatchWrapped, Key: key, entries: entries}
			}
			if isObject(v) {
				return Batch{Kind: BatchWrapped, Key: key, entries: []json.RawMessage{v}}
			}
		}
		if _, ok := obj["phrase"]; ok {
			return Batch{Kind: BatchSingle, entries: []json.RawMessage{json.RawMessage(payload)}}
		}
	}

	return Batch{Kind: BatchInvalid}
}

// Candidates converts entries to typed candidates. String entries become
// candidates with default metadata. Objects without a non-empty string
// "phrase" are skipped; skipped reports how many.
func (b Batch) Candidates() (candidates []model.PhraseCandidate, skipped int) {
	candidates = make([]model.PhraseCandidate, 0, len(b.entries))

	for _, entry := range b.entries {
		var s string
		if err := json.Unmarshal(entry, &s); err == nil {
			if strings.TrimSpace(s) == "" {
				skipped++
				continue
			}
			candidates = append(candidates, model.PhraseCandidate{Phrase: s})
			continue
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(entry, &fields); err != nil {
			skipped++
			continue
		}

		phrase := stringField(fields, "phrase")
		if strings.TrimSpace(phrase) == "" {
			skipped++
			continue
		}

		candidates = append(candidates, model.PhraseCandidate{
			Phrase:      phrase,
			Reason:      model.Reason(stringField(fields, "reason", "category")),
			Action:      model.Action(stringField(fields, "action")),
			Replacement: stringField(fields, "replacement", "replacement_text"),
		})
	}

	return candidates, skipped
}

// stringField returns the first key holding a JSON string. Null, numbers
// and missing keys are treated as absent.
func stringField(fields map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		v, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

// jsonPayload strips code fences and surrounding prose, returning the text
// from the first '[' or '{' to its last matching closer
func jsonPayload(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		// Drop the opening fence line (with optional language tag)
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return ""
	}
	closer := byte(']')
	if s[start] == '{' {
		closer = '}'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return ""
	}
	return s[start : end+1]
}

func isObject(v json.RawMessage) bool {
	t := strings.TrimSpace(string(v))
	return strings.HasPrefix(t, "{")
}
