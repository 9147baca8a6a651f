package chunk

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/neutralizer/internal/model"
)

func defaultPlanner() Planner {
	return NewPlanner(model.ChunkingConfig{})
}

// article builds a multi-paragraph text of roughly paragraphs*400 bytes
func article(paragraphs int) string {
	words := []string{"alpha", "beta", "gamma", "delta", "shocking", "news", "officials", "said"}
	var paras []string
	for p := 0; p < paragraphs; p++ {
		var b strings.Builder
		for w := 0; w < 60; w++ {
			if w > 0 {
				b.WriteString(" ")
			}
			b.WriteString(words[(p*7+w*3)%len(words)])
			if w%15 == 14 {
				b.WriteString(".")
			}
		}
		paras = append(paras, b.String())
	}
	return strings.Join(paras, "\n\n")
}

// assertCovers checks the chunks tile text with no gaps
func assertCovers(t *testing.T, text string, chunks []model.Chunk) {
	t.Helper()
	require.NotEmpty(t, chunks)

	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, len(text), chunks[len(chunks)-1].EndOffset)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Less(t, c.StartOffset, c.EndOffset)
		assert.Equal(t, text[c.StartOffset:c.EndOffset], c.Text)
		assert.True(t, utf8.ValidString(c.Text), "chunk %d splits a character", i)
		if i > 0 {
			prev := chunks[i-1]
			assert.LessOrEqual(t, c.StartOffset, prev.EndOffset, "gap before chunk %d", i)
			assert.Greater(t, c.StartOffset, prev.StartOffset, "chunk %d does not advance", i)
		}
	}
}

func TestPlan_Empty(t *testing.T) {
	chunks := defaultPlanner().Plan("")
	assert.NotNil(t, chunks)
	assert.Empty(t, chunks)
}

func TestPlan_ShortTextIsSingleChunk(t *testing.T) {
	text := strings.Repeat("a b ", 1100) // 4400 bytes, under 3000*1.5

	chunks := defaultPlanner().Plan(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, model.Chunk{Text: text, StartOffset: 0, EndOffset: len(text), Index: 0}, chunks[0])
}

func TestPlan_CoversLongText(t *testing.T) {
	text := article(60)
	require.Greater(t, len(text), 20000)

	chunks := defaultPlanner().Plan(text)

	assert.Greater(t, len(chunks), 1)
	assertCovers(t, text, chunks)
	for _, c := range chunks {
		assert.GreaterOrEqual(t, len(strings.TrimSpace(c.Text)), DefaultMinChunk)
	}
}

func TestPlan_CoverageAcrossSettings(t *testing.T) {
	text := article(40)
	settings := []model.ChunkingConfig{
		{Size: 1000, Overlap: 200, MinChunk: 100, Window: 100},
		{Size: 2000, Overlap: -1, MinChunk: -1, Window: -1},
		{Size: 2000},
		{Size: 700, Overlap: 699, MinChunk: 300, Window: 50},
		{Size: 5000, Overlap: 1000, MinChunk: 2000, Window: 800},
	}

	for _, cfg := range settings {
		t.Run(fmt.Sprintf("size=%d overlap=%d", cfg.Size, cfg.Overlap), func(t *testing.T) {
			assertCovers(t, text, NewPlanner(cfg).Plan(text))
		})
	}
}

func TestPlan_OverlapBetweenChunks(t *testing.T) {
	text := article(30)

	chunks := defaultPlanner().Plan(text)

	require.Greater(t, len(chunks), 1)
	assert.Equal(t, chunks[0].EndOffset-DefaultOverlap, chunks[1].StartOffset)
}

func TestPlan_PrefersParagraphBreak(t *testing.T) {
	text := strings.Repeat("word ", 560) + "end.\n\n" + strings.Repeat("Next one. ", 400)
	p := Planner{Size: 3000, Overlap: 0, MinChunk: 100, Window: 500}

	chunks := p.Plan(text)

	require.Greater(t, len(chunks), 1)
	assert.True(t, strings.HasSuffix(chunks[0].Text, "end.\n\n"))
	assert.Equal(t, chunks[0].EndOffset, chunks[1].StartOffset)
}

func TestPlan_PrefersSentenceEnd(t *testing.T) {
	text := strings.Repeat("Sentence with several words here. ", 300)

	chunks := defaultPlanner().Plan(text)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(c.Text, "here. "), "chunk %d ends mid-sentence", c.Index)
	}
	assertCovers(t, text, chunks)
}

func TestPlan_HardCutRespectsRunes(t *testing.T) {
	text := "x" + strings.Repeat("€", 4000)
	p := Planner{Size: 3000, Overlap: 500, MinChunk: 100, Window: 500}

	chunks := p.Plan(text)

	require.Greater(t, len(chunks), 1)
	assertCovers(t, text, chunks)
	assert.Equal(t, 2998, chunks[0].EndOffset)
}

func TestPlan_ShortTailFolded(t *testing.T) {
	text := strings.Repeat("abcd ", 920)
	p := Planner{Size: 3000, Overlap: 500, MinChunk: 2000, Window: 500}

	chunks := p.Plan(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, len(text), chunks[0].EndOffset)
}

func TestPlan_ShortPieceGrown(t *testing.T) {
	// Whitespace-heavy start: the first window holds almost no text
	text := strings.Repeat(" ", 3200) + "start " + strings.Repeat("body text here. ", 400)
	p := Planner{Size: 3000, Overlap: 100, MinChunk: 400, Window: 300}

	chunks := p.Plan(text)

	assertCovers(t, text, chunks)
	for _, c := range chunks {
		assert.GreaterOrEqual(t, len(strings.TrimSpace(c.Text)), 400)
	}
}

func TestNewPlanner(t *testing.T) {
	p := NewPlanner(model.ChunkingConfig{})
	assert.Equal(t, Planner{Size: DefaultSize, Overlap: DefaultOverlap, MinChunk: DefaultMinChunk, Window: DefaultWindow}, p)

	p = NewPlanner(model.ChunkingConfig{Size: 1000})
	assert.Equal(t, Planner{Size: 1000, Overlap: DefaultOverlap, MinChunk: DefaultMinChunk, Window: DefaultWindow}, p)

	p = NewPlanner(model.ChunkingConfig{Size: 1000, Overlap: -1, MinChunk: -1, Window: -1})
	assert.Equal(t, Planner{Size: 1000}, p)

	p = NewPlanner(model.DefaultConfig().Chunking)
	assert.Equal(t, Planner{Size: 3000, Overlap: 500, MinChunk: 500, Window: 500}, p)

	p = NewPlanner(model.ChunkingConfig{Size: 100, Overlap: 400, MinChunk: -1, Window: 900})
	assert.Equal(t, 50, p.Overlap)
	assert.Equal(t, 0, p.MinChunk)
	assert.Equal(t, 100, p.Window)
}

func TestPlan_ZeroConfigBreaksAtSentences(t *testing.T) {
	text := strings.Repeat("Sentence with several words here. ", 300)

	chunks := NewPlanner(model.ChunkingConfig{}).Plan(text)

	require.Greater(t, len(chunks), 1)
	assertCovers(t, text, chunks)
	for _, c := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(c.Text, ". "), "chunk %d ends mid-sentence: %q", c.Index, c.Text[len(c.Text)-12:])
	}
	assert.Equal(t, chunks[0].EndOffset-DefaultOverlap, chunks[1].StartOffset)
}

func TestTranslateSpans(t *testing.T) {
	text := article(30)
	chunks := defaultPlanner().Plan(text)
	require.Greater(t, len(chunks), 1)

	c := chunks[1]
	idx := strings.Index(c.Text, "shocking")
	require.GreaterOrEqual(t, idx, 0)

	local := []model.Span{{StartChar: idx, EndChar: idx + len("shocking"), OriginalText: "shocking"}}
	global := TranslateSpans(c, local)

	require.Len(t, global, 1)
	assert.Equal(t, c.StartOffset+idx, global[0].StartChar)
	assert.True(t, global[0].Anchored(text))
	assert.Equal(t, idx, local[0].StartChar, "input is not modified")
}
