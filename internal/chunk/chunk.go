// Package chunk splits long article text into overlapping, offset-tagged
// pieces so each piece fits a detector call.
package chunk

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/neutralizer/internal/model"
)

// Defaults used when a Planner field is zero
const (
	DefaultSize     = 3000
	DefaultOverlap  = 500
	DefaultMinChunk = 500
	DefaultWindow   = 500
)

// singleChunkFactor: texts up to Size*1.5 are never split
const singleChunkFactor = 1.5

// Planner splits text into chunks near natural boundaries.
// All lengths are in bytes.
type Planner struct {
	Size     int // Target chunk length
	Overlap  int // Bytes repeated at the start of the next chunk
	MinChunk int // Chunks whose trimmed length is below this are not yielded
	Window   int // Search radius around the target for a break point
}

// NewPlanner creates a planner from configuration, filling zero values with
// defaults and clamping the overlap below the chunk size. A negative
// Overlap, MinChunk or Window disables it.
func NewPlanner(cfg model.ChunkingConfig) Planner {
	p := Planner{
		Size:     cfg.Size,
		Overlap:  cfg.Overlap,
		MinChunk: cfg.MinChunk,
		Window:   cfg.Window,
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	p.Overlap = orDefault(p.Overlap, DefaultOverlap)
	if p.Overlap >= p.Size {
		p.Overlap = p.Size / 2
	}
	p.MinChunk = orDefault(p.MinChunk, DefaultMinChunk)
	p.Window = orDefault(p.Window, DefaultWindow)
	if p.Window > p.Size {
		p.Window = p.Size
	}
	return p
}

// orDefault maps zero to def and negatives to zero
func orDefault(v, def int) int {
	switch {
	case v == 0:
		return def
	case v < 0:
		return 0
	default:
		return v
	}
}

// Plan splits text into chunks. Consecutive chunks share up to Overlap bytes;
// together they cover the whole text with no gaps. Text no longer than
// Size*1.5 is returned as a single chunk.
func (p Planner) Plan(text string) []model.Chunk {
	n := len(text)
	if n == 0 {
		return []model.Chunk{}
	}
	if p.Size <= 0 || float64(n) <= float64(p.Size)*singleChunkFactor {
		return []model.Chunk{{Text: text, StartOffset: 0, EndOffset: n, Index: 0}}
	}

	var chunks []model.Chunk
	pos := 0

	for pos < n {
		end := p.chunkEnd(text, pos)

		// A short remainder is folded into this chunk
		if end < n && trimmedLen(text[end:]) < p.MinChunk {
			end = n
		}

		chunks = append(chunks, model.Chunk{
			Text:        text[pos:end],
			StartOffset: pos,
			EndOffset:   end,
			Index:       len(chunks),
		})

		if end >= n {
			break
		}

		next := alignForward(text, end-p.Overlap)
		if next <= pos {
			next = end
		}
		pos = next
	}

	return chunks
}

// chunkEnd picks the end of the chunk starting at pos, growing the target
// until the chunk carries at least MinChunk bytes of non-space text
func (p Planner) chunkEnd(text string, pos int) int {
	step := p.Window
	if step <= 0 {
		step = p.Size / 2
	}
	if step <= 0 {
		step = 1
	}

	target := pos + p.Size
	for {
		end := p.breakAt(text, pos, target)
		if end >= len(text) || trimmedLen(text[pos:end]) >= p.MinChunk {
			return end
		}
		target += step
	}
}

// breakAt finds a cut point near target: the last paragraph break in the
// window, else the last sentence end, else the last space, else a hard cut
// at target moved back to a rune boundary. The result is always > pos.
func (p Planner) breakAt(text string, pos, target int) int {
	n := len(text)
	if target >= n {
		return n
	}

	lo := target - p.Window
	if lo <= pos {
		lo = pos + 1
	}
	hi := target + p.Window
	if hi > n {
		hi = n
	}

	if cut := lastParagraphBreak(text, lo, hi); cut > pos {
		return cut
	}
	if cut := lastSentenceEnd(text, lo, hi); cut > pos {
		return cut
	}
	if cut := lastSpace(text, lo, hi); cut > pos {
		return cut
	}

	cut := target
	for cut > pos+1 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return cut
}

// lastParagraphBreak returns the offset just past the last run of two or
// more newlines starting in [lo, hi), or -1
func lastParagraphBreak(text string, lo, hi int) int {
	for i := hi - 2; i >= lo; i-- {
		if text[i] != '\n' || text[i+1] != '\n' {
			continue
		}
		// Walk back to the start of the run so a run is reported once
		for i > lo && text[i-1] == '\n' {
			i--
		}
		end := i
		for end < len(text) && text[end] == '\n' {
			end++
		}
		return end
	}
	return -1
}

// lastSentenceEnd returns the offset just past the last sentence terminator
// (. ! ?) in [lo, hi) that is followed, after an optional closing quote or
// bracket, by whitespace; or -1
func lastSentenceEnd(text string, lo, hi int) int {
	for i := hi - 1; i >= lo; i-- {
		switch text[i] {
		case '.', '!', '?':
		default:
			continue
		}

		j := i + 1
		if j < len(text) {
			if r, w := utf8.DecodeRuneInString(text[j:]); isCloser(r) {
				j += w
			}
		}
		if j >= len(text) {
			continue
		}
		if r, w := utf8.DecodeRuneInString(text[j:]); unicode.IsSpace(r) {
			return j + w
		}
	}
	return -1
}

// lastSpace returns the offset just past the last space, tab or newline in
// [lo, hi), or -1
func lastSpace(text string, lo, hi int) int {
	for i := hi - 1; i >= lo; i-- {
		if text[i] == ' ' || text[i] == '\t' || text[i] == '\n' {
			return i + 1
		}
	}
	return -1
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '\u201D', '\u2019':
		return true
	}
	return false
}

// alignForward moves i forward to the next rune boundary
func alignForward(text string, i int) int {
	if i < 0 {
		return 0
	}
	for i < len(text) && !utf8.RuneStart(text[i]) {
		i++
	}
	return i
}

func trimmedLen(s string) int {
	return len(strings.TrimSpace(s))
}

// TranslateSpans maps spans located in a chunk's text to offsets in the
// full text
func TranslateSpans(c model.Chunk, spans []model.Span) []model.Span {
	out := make([]model.Span, len(spans))
	for i, s := range spans {
		out[i] = s.Shift(c.StartOffset)
	}
	return out
}
