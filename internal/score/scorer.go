package score

import (
	"fmt"
	"sort"

	"github.com/ppiankov/neutralizer/internal/model"
)

// Coverage thresholds: share of original bytes touched by spans
const (
	coverageWarning  = 0.15
	coverageCritical = 0.35
)

// Input is everything the scorer looks at for one article
type Input struct {
	Text       string
	Spans      []model.Span // Final spans
	Stats      model.SpanStats
	Violations int
	Rewritten  bool // A rewrite was produced and diffed
}

// Scorer derives transparency signals and a confidence level. The signals
// describe the run; they never change which spans are reported.
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate builds the score for one article
func (s *Scorer) Calculate(in Input) model.Score {
	var signals []model.Signal

	// 1. How much of the text was changed
	ratio, coverageSignal := s.calculateCoverage(in.Text, in.Spans)
	signals = append(signals, coverageSignal)

	// 2. What kinds of manipulation were found
	signals = append(signals, s.reasonMix(in.Spans))

	// 3. Did the detector report what the rewrite changed
	if in.Rewritten {
		signals = append(signals, s.selfReportGap(in.Spans))
	}

	// 4. Quoted speech left alone
	if in.Stats.QuoteFiltered > 0 {
		signals = append(signals, model.Signal{
			Type:        model.SignalQuoteExemptions,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("%d flagged phrase(s) left unchanged inside quotations", in.Stats.QuoteFiltered),
			Data: map[string]interface{}{
				"quote_filtered":  in.Stats.QuoteFiltered,
				"false_positives": in.Stats.FalsePositives,
			},
		})
	}

	// 5. Partial results
	if failures, ok := s.detectorFailures(in.Stats); ok {
		signals = append(signals, failures)
	}

	// 6. Spans rejected by the final validator
	if in.Violations > 0 {
		signals = append(signals, model.Signal{
			Type:        model.SignalInvariantFailures,
			Severity:    model.SeverityCritical,
			Description: fmt.Sprintf("%d span(s) failed validation and were dropped", in.Violations),
			Data:        map[string]interface{}{"violations": in.Violations},
		})
	}

	return model.Score{
		ChangedRatio: ratio,
		Confidence:   s.determineConfidence(signals),
		Signals:      signals,
	}
}

// calculateCoverage measures the share of original bytes covered by spans
func (s *Scorer) calculateCoverage(text string, spans []model.Span) (float64, model.Signal) {
	covered := 0
	for _, sp := range spans {
		covered += sp.Len()
	}

	if len(text) == 0 {
		return 0, model.Signal{
			Type:        model.SignalCoverage,
			Severity:    model.SeverityInfo,
			Description: "Empty text",
			Data:        map[string]interface{}{"text_bytes": 0},
		}
	}

	ratio := float64(covered) / float64(len(text))

	severity := model.SeverityInfo
	description := fmt.Sprintf("%.1f%% of the text changed (%d span(s))", ratio*100, len(spans))
	switch {
	case ratio >= coverageCritical:
		severity = model.SeverityCritical
		description += "; most of the article was rewritten"
	case ratio >= coverageWarning:
		severity = model.SeverityWarning
		description += "; heavy editing"
	}

	return ratio, model.Signal{
		Type:        model.SignalCoverage,
		Severity:    severity,
		Description: description,
		Data: map[string]interface{}{
			"spans":         len(spans),
			"covered_bytes": covered,
			"text_bytes":    len(text),
			"ratio":         ratio,
			"formula":       "sum(end_char - start_char) / len(text)",
		},
	}
}

// reasonMix counts spans per reason
func (s *Scorer) reasonMix(spans []model.Span) model.Signal {
	counts := make(map[string]interface{})
	tally := make(map[model.Reason]int)
	for _, sp := range spans {
		tally[sp.Reason]++
	}

	reasons := make([]model.Reason, 0, len(tally))
	for r, n := range tally {
		counts[string(r)] = n
		reasons = append(reasons, r)
	}

	if len(reasons) == 0 {
		return model.Signal{
			Type:        model.SignalReasonMix,
			Severity:    model.SeverityInfo,
			Description: "No manipulative language found",
		}
	}

	// Dominant reason first; ties by name for stable output
	sort.Slice(reasons, func(i, j int) bool {
		if tally[reasons[i]] != tally[reasons[j]] {
			return tally[reasons[i]] > tally[reasons[j]]
		}
		return reasons[i] < reasons[j]
	})
	dominant := reasons[0]

	return model.Signal{
		Type:        model.SignalReasonMix,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("Most common: %s (%d of %d)", dominant.Label(), tally[dominant], len(spans)),
		Data: map[string]interface{}{
			"counts":   counts,
			"dominant": string(dominant),
		},
	}
}

// selfReportGap compares detector-reported spans with diff-derived ones
func (s *Scorer) selfReportGap(spans []model.Span) model.Signal {
	detector, diff := 0, 0
	for _, sp := range spans {
		switch sp.Origin {
		case model.OriginDiff:
			diff++
		default:
			detector++
		}
	}

	data := map[string]interface{}{
		"detector_spans": detector,
		"diff_spans":     diff,
	}

	switch {
	case diff > 0 && detector == 0:
		return model.Signal{
			Type:        model.SignalSelfReportGap,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("Detector reported nothing but the rewrite changed %d passage(s)", diff),
			Data:        data,
		}
	case diff > detector:
		return model.Signal{
			Type:        model.SignalSelfReportGap,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("Rewrite changed %d passage(s) the detector did not report (detector: %d)", diff, detector),
			Data:        data,
		}
	default:
		return model.Signal{
			Type:        model.SignalSelfReportGap,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("Detector accounts for %d of %d change(s)", detector, detector+diff),
			Data:        data,
		}
	}
}

// detectorFailures reports detector calls that failed
func (s *Scorer) detectorFailures(stats model.SpanStats) (model.Signal, bool) {
	if stats.FailedCalls == 0 {
		return model.Signal{}, false
	}

	severity := model.SeverityWarning
	description := fmt.Sprintf("%d of %d detector call(s) failed; results are partial", stats.FailedCalls, stats.DetectorCalls)
	if stats.FailedCalls >= stats.DetectorCalls {
		severity = model.SeverityCritical
		description = "Every detector call failed; no phrases were detected"
	}

	return model.Signal{
		Type:        model.SignalDetectorFailures,
		Severity:    severity,
		Description: description,
		Data: map[string]interface{}{
			"failed": stats.FailedCalls,
			"calls":  stats.DetectorCalls,
		},
	}, true
}

// determineConfidence maps the worst signal severity to a confidence level
func (s *Scorer) determineConfidence(signals []model.Signal) string {
	confidence := "high"
	for _, sig := range signals {
		switch sig.Severity {
		case model.SeverityCritical:
			return "low"
		case model.SeverityWarning:
			confidence = "medium"
		}
	}
	return confidence
}
