package model

import "time"

// Report is the transparency record for one neutralized article
type Report struct {
	Subject     string    `json:"subject"`      // Article title or file name
	Source      string    `json:"source"`       // Where the text was loaded from
	ProcessedAt time.Time `json:"processed_at"` // When the run happened

	OriginalText  string `json:"original_text"`            // The coordinate system for every span
	RewrittenText string `json:"rewritten_text,omitempty"` // Neutral text from the rewriter (if enabled)

	Spans      []Span      `json:"spans"`                // Final merged, validated spans
	Chunks     int         `json:"chunks"`               // Number of detection windows used
	Stats      SpanStats   `json:"stats"`                // Per-stage counters
	Violations []Violation `json:"violations,omitempty"` // Spans dropped by the final validator

	Score Score `json:"score"` // Transparency signals

	LLM *LLMInfo `json:"llm,omitempty"` // Provider details (absent when spans were supplied offline)
}

// SpanStats counts spans at each stage of reconciliation
type SpanStats struct {
	Candidates     int `json:"candidates"`      // Phrases reported by the detector
	Located        int `json:"located"`         // Spans anchored in the text (after overlap resolution)
	QuoteFiltered  int `json:"quote_filtered"`  // Dropped because they sit inside quotation marks
	FalsePositives int `json:"false_positives"` // Dropped by the false-positive table
	DiffDerived    int `json:"diff_derived"`    // Added from the original/rewritten diff
	Final          int `json:"final"`
	DetectorCalls  int `json:"detector_calls"` // Chunk × pass calls attempted
	FailedCalls    int `json:"failed_calls"`   // Detector calls that failed and contributed nothing
}

// Violation describes a span rejected by the final validator
type Violation struct {
	Type    ViolationType `json:"type"`
	Details string        `json:"details"`
	Span    Span          `json:"span"`
}

// ViolationType classifies why a span was rejected
type ViolationType string

const (
	ViolationOutOfBounds ViolationType = "out_of_bounds" // Offsets outside the text or empty
	ViolationMismatch    ViolationType = "mismatch"      // text[start:end] != original_text
	ViolationOverlap     ViolationType = "overlap"       // Overlaps an earlier span
	ViolationSplitRune   ViolationType = "split_rune"    // Offset falls inside a multi-byte character
)

// Score is the transparency summary
type Score struct {
	ChangedRatio float64  `json:"changed_ratio"` // Share of original bytes covered by spans
	Confidence   string   `json:"confidence"`    // "low", "medium", "high"
	Signals      []Signal `json:"signals"`
}

// Signal is a diagnostic with transparent data
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies a diagnostic signal
type SignalType string

const (
	SignalCoverage          SignalType = "coverage"            // How much of the text was touched
	SignalReasonMix         SignalType = "reason_mix"          // Distribution of reasons
	SignalSelfReportGap     SignalType = "self_report_gap"     // Diff found changes the detector did not report
	SignalQuoteExemptions   SignalType = "quote_exemptions"    // Spans exempted as quoted speech
	SignalDetectorFailures  SignalType = "detector_failures"   // Partial results
	SignalInvariantFailures SignalType = "invariant_failures"  // Spans rejected by the validator
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// LLMInfo records which provider produced the detections
type LLMInfo struct {
	Provider   string   `json:"provider"`
	Model      string   `json:"model,omitempty"`
	Passes     []string `json:"passes,omitempty"`
	TokensUsed int      `json:"tokens_used,omitempty"`
	Rewritten  bool     `json:"rewritten"`
}
