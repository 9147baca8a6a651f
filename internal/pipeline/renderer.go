package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/neutralizer/internal/model"
)

// Renderer writes transparency reports
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON to path ("-" for stdout)
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	return writeTo(path, func(w io.Writer) error {
		return r.WriteJSON(w, report)
	})
}

// RenderMarkdown writes the human-readable report to path ("-" for stdout)
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeTo(path, func(w io.Writer) error {
		return r.WriteMarkdown(w, report)
	})
}

// WriteJSON encodes the report
func (r *Renderer) WriteJSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteMarkdown renders the report for people
func (r *Renderer) WriteMarkdown(w io.Writer, report *model.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Neutralization report: %s\n\n", report.Subject)
	fmt.Fprintf(&b, "- **Source:** %s\n", report.Source)
	fmt.Fprintf(&b, "- **Processed:** %s\n", report.ProcessedAt.Format("2006-01-02 15:04:05 UTC"))
	if report.LLM != nil {
		fmt.Fprintf(&b, "- **Detector:** %s", report.LLM.Provider)
		if report.LLM.Model != "" {
			fmt.Fprintf(&b, " (%s)", report.LLM.Model)
		}
		if len(report.LLM.Passes) > 0 {
			fmt.Fprintf(&b, ", passes: %s", strings.Join(report.LLM.Passes, ", "))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "- **Changed:** %.1f%% of the text, %d span(s)\n", report.Score.ChangedRatio*100, len(report.Spans))
	fmt.Fprintf(&b, "- **Confidence:** %s\n\n", report.Score.Confidence)

	b.WriteString("## Changes\n\n")
	if len(report.Spans) == 0 {
		b.WriteString("No manipulative language found.\n\n")
	} else {
		b.WriteString("| # | Chars | Original | Action | Replacement | Reason | Source |\n")
		b.WriteString("|---|-------|----------|--------|-------------|--------|--------|\n")
		for i, s := range report.Spans {
			start, end := model.RuneOffsets(report.OriginalText, s)
			fmt.Fprintf(&b, "| %d | %d–%d | %s | %s | %s | %s | %s |\n",
				i+1, start, end,
				cell(s.OriginalText), s.Action, cell(s.ReplacementText), s.Reason.Label(), s.Origin)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Signals\n\n")
	for _, sig := range report.Score.Signals {
		fmt.Fprintf(&b, "- %s **%s**: %s\n", severityMark(sig.Severity), sig.Type, sig.Description)
	}
	b.WriteString("\n")

	if len(report.Violations) > 0 {
		b.WriteString("## Rejected spans\n\n")
		for _, v := range report.Violations {
			fmt.Fprintf(&b, "- `%s` [%d, %d): %s\n", v.Type, v.Span.StartChar, v.Span.EndChar, v.Details)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Neutralized preview\n\n")
	for _, line := range strings.Split(ApplySpans(report.OriginalText, report.Spans), "\n") {
		b.WriteString("> " + line + "\n")
	}

	if r.includeFooter {
		b.WriteString("\n---\n\n")
		b.WriteString("*Offsets refer to the original text. Quoted speech is never altered. ")
		b.WriteString("Generated by neutralizer.*\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderSummary prints a short summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	fmt.Fprintf(w, "%s: %d span(s), %.1f%% changed, confidence %s\n",
		report.Subject, len(report.Spans), report.Score.ChangedRatio*100, report.Score.Confidence)
	for _, sig := range report.Score.Signals {
		if sig.Severity != model.SeverityInfo {
			fmt.Fprintf(w, "  %s %s\n", severityMark(sig.Severity), sig.Description)
		}
	}
}

// ApplySpans produces the neutral text described by spans: removals are
// deleted, replacements substituted, softened spans without a replacement
// are kept. Spans must be sorted and non-overlapping.
func ApplySpans(text string, spans []model.Span) string {
	var b strings.Builder
	b.Grow(len(text))

	pos := 0
	for _, s := range spans {
		if s.StartChar < pos || s.EndChar > len(text) {
			continue
		}
		b.WriteString(text[pos:s.StartChar])
		pos = s.EndChar

		switch {
		case s.Action == model.ActionRemove:
			// Drop a separator left doubled by the removal
			if endsWithSpace(b.String()) {
				for pos < len(text) && (text[pos] == ' ' || text[pos] == ':') {
					pos++
				}
			}
		case s.ReplacementText != "":
			b.WriteString(s.ReplacementText)
		default:
			b.WriteString(s.OriginalText)
		}
	}
	b.WriteString(text[pos:])
	return b.String()
}

func endsWithSpace(s string) bool {
	if s == "" {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}

func severityMark(s model.SignalSeverity) string {
	switch s {
	case model.SeverityCritical:
		return "✗"
	case model.SeverityWarning:
		return "!"
	default:
		return "·"
	}
}

// cell escapes text for a Markdown table cell
func cell(s string) string {
	if s == "" {
		return "—"
	}
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

// writeTo opens path (or stdout for "-") and runs write
func writeTo(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
