package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReason(t *testing.T) {
	tests := []struct {
		in   string
		want Reason
		ok   bool
	}{
		{"clickbait", ReasonClickbait, true},
		{"Emotional Trigger", ReasonEmotionalTrigger, true},
		{"emotional-manipulation", ReasonEmotionalTrigger, true},
		{"  URGENCY_INFLATION ", ReasonUrgencyInflation, true},
		{"agenda_signalling", ReasonAgendaSignaling, true},
		{"scare quotes", ReasonSelectiveQuoting, true},
		{"", DefaultReason, false},
		{"something_else", DefaultReason, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseReason(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestParseReason_CanonicalSetRoundTrips(t *testing.T) {
	reasons := Reasons()
	assert.Len(t, reasons, 8)
	for _, r := range reasons {
		got, ok := ParseReason(string(r))
		assert.True(t, ok, "canonical reason %q must parse", r)
		assert.Equal(t, r, got)
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
		ok   bool
	}{
		{"remove", ActionRemove, true},
		{"Delete", ActionRemove, true},
		{"rewrite", ActionReplace, true},
		{"tone-down", ActionSoften, true},
		{"", DefaultAction, false},
		{"explode", DefaultAction, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAction(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestReasonLabel(t *testing.T) {
	assert.Equal(t, "Urgency Inflation", ReasonUrgencyInflation.Label())
	assert.Equal(t, "Clickbait", ReasonClickbait.Label())
}

func TestSpanGeometry(t *testing.T) {
	a := Span{StartChar: 0, EndChar: 5}
	b := Span{StartChar: 5, EndChar: 9}
	c := Span{StartChar: 4, EndChar: 6}

	assert.False(t, a.Overlaps(b), "adjacent spans do not overlap")
	assert.True(t, a.Overlaps(c))
	assert.True(t, c.Overlaps(b))
	assert.Equal(t, 5, a.Len())
	assert.True(t, c.Within(0, 9))
	assert.False(t, c.Within(5, 9))

	shifted := b.Shift(10)
	assert.Equal(t, 15, shifted.StartChar)
	assert.Equal(t, 19, shifted.EndChar)
	assert.Equal(t, 5, b.StartChar)
}

func TestSpanAnchored(t *testing.T) {
	text := "Café slams rivals"

	assert.True(t, Span{StartChar: 6, EndChar: 11, OriginalText: "slams"}.Anchored(text))
	assert.False(t, Span{StartChar: 5, EndChar: 10, OriginalText: "slams"}.Anchored(text))
	assert.False(t, Span{StartChar: 6, EndChar: 6, OriginalText: ""}.Anchored(text))
	assert.False(t, Span{StartChar: 10, EndChar: 40, OriginalText: "x"}.Anchored(text))
	assert.False(t, Span{StartChar: -1, EndChar: 2, OriginalText: "x"}.Anchored(text))
}

func TestRuneOffsets(t *testing.T) {
	text := "Café slams rivals"

	start, end := RuneOffsets(text, Span{StartChar: 6, EndChar: 11})
	assert.Equal(t, 5, start)
	assert.Equal(t, 10, end)

	start, end = RuneOffsets(text, Span{StartChar: 3, EndChar: 90})
	assert.Zero(t, start)
	assert.Zero(t, end)
}

func TestQuoteRangeContains(t *testing.T) {
	q := QuoteRange{StartChar: 10, EndChar: 20}

	assert.True(t, q.Contains(Span{StartChar: 10, EndChar: 20}))
	assert.False(t, q.Contains(Span{StartChar: 9, EndChar: 12}))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 3000, cfg.Chunking.Size)
	assert.Equal(t, 500, cfg.Chunking.Overlap)
	assert.Equal(t, 500, cfg.Chunking.MinChunk)
	assert.Equal(t, 500, cfg.Chunking.Window)
	assert.Empty(t, cfg.LLM.Provider)
	assert.Equal(t, []string{PassHighRecall, PassAdversarial}, cfg.LLM.Passes)
	assert.True(t, cfg.Cache.Enabled)
}
