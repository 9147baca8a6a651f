package span

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/neutralizer/internal/model"
)

func TestScanQuotes_StraightDouble(t *testing.T) {
	text := `He said "this is shocking and unacceptable" today.`
	ranges := ScanQuotes(text)

	require.Len(t, ranges, 1)
	assert.Equal(t, `"this is shocking and unacceptable"`, text[ranges[0].StartChar:ranges[0].EndChar])
}

func TestScanQuotes_ContractionIsNotAQuote(t *testing.T) {
	text := `They said it wasn't "surprising" at all.`
	ranges := ScanQuotes(text)

	require.Len(t, ranges, 1)
	assert.Equal(t, `"surprising"`, text[ranges[0].StartChar:ranges[0].EndChar])
}

func TestScanQuotes_Curly(t *testing.T) {
	text := "The mayor called it “a disgrace” and left."
	ranges := ScanQuotes(text)

	require.Len(t, ranges, 1)
	assert.Equal(t, "“a disgrace”", text[ranges[0].StartChar:ranges[0].EndChar])
}

func TestScanQuotes_CurlySingleWithApostrophes(t *testing.T) {
	text := "She said ‘it won’t happen’ twice."
	ranges := ScanQuotes(text)

	require.Len(t, ranges, 1)
	assert.Equal(t, "‘it won’t happen’", text[ranges[0].StartChar:ranges[0].EndChar])
}

func TestScanQuotes_StraightSingle(t *testing.T) {
	text := "The so-called 'reform' passed."
	ranges := ScanQuotes(text)

	require.Len(t, ranges, 1)
	assert.Equal(t, "'reform'", text[ranges[0].StartChar:ranges[0].EndChar])
}

func TestScanQuotes_Nested(t *testing.T) {
	text := `He said "she called it 'absurd' yesterday" on air.`
	ranges := ScanQuotes(text)

	require.Len(t, ranges, 2)
	// Sorted by start: outer first
	assert.Equal(t, `"she called it 'absurd' yesterday"`, text[ranges[0].StartChar:ranges[0].EndChar])
	assert.Equal(t, `'absurd'`, text[ranges[1].StartChar:ranges[1].EndChar])
}

func TestScanQuotes_NestedCurly(t *testing.T) {
	text := "“He told me ‘never again’ and walked off”"
	ranges := ScanQuotes(text)

	require.Len(t, ranges, 2)
	assert.Equal(t, 0, ranges[0].StartChar)
	assert.Equal(t, len(text), ranges[0].EndChar)
	assert.Equal(t, "‘never again’", text[ranges[1].StartChar:ranges[1].EndChar])
}

func TestScanQuotes_Unbalanced(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"straight double", `He said "this never ends.`},
		{"curly open", "He said “this never ends."},
		{"curly close only", "He said this never ends”."},
		{"possessive", "James' dog barked."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, ScanQuotes(tt.text))
		})
	}
}

func TestScanQuotes_Empty(t *testing.T) {
	ranges := ScanQuotes("")
	assert.NotNil(t, ranges)
	assert.Empty(t, ranges)
}

func TestScanQuotes_CurlyCloseDiscardsInnerOpen(t *testing.T) {
	text := "“He said 'maybe” later."
	ranges := ScanQuotes(text)

	require.Len(t, ranges, 1)
	assert.Equal(t, "“He said 'maybe”", text[ranges[0].StartChar:ranges[0].EndChar])
}

func TestInsideQuotes(t *testing.T) {
	ranges := []model.QuoteRange{{StartChar: 10, EndChar: 20}}

	assert.True(t, InsideQuotes(model.Span{StartChar: 11, EndChar: 19}, ranges))
	assert.True(t, InsideQuotes(model.Span{StartChar: 10, EndChar: 20}, ranges))
	assert.False(t, InsideQuotes(model.Span{StartChar: 5, EndChar: 15}, ranges))
	assert.False(t, InsideQuotes(model.Span{StartChar: 15, EndChar: 25}, ranges))
	assert.False(t, InsideQuotes(model.Span{StartChar: 11, EndChar: 19}, nil))
}
