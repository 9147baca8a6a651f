package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantDebug bool
		wantInfo  bool
	}{
		{"default", Options{}, false, true},
		{"verbose", Options{Verbose: true}, true, true},
		{"quiet", Options{Quiet: true}, false, false},
		{"quiet wins", Options{Quiet: true, Verbose: true}, false, false},
		{"level debug", Options{Level: "debug"}, true, true},
		{"level wins over verbose", Options{Level: "warn", Verbose: true}, false, false},
		{"quiet wins over level", Options{Quiet: true, Level: "debug"}, false, false},
		{"unknown level", Options{Level: "loud"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, tt.opts)

			logger.Debug("debug message")
			logger.Info("info message")
			logger.Error("error message")

			out := buf.String()
			if got := strings.Contains(out, "debug message"); got != tt.wantDebug {
				t.Errorf("debug shown = %v, expected %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "info message"); got != tt.wantInfo {
				t.Errorf("info shown = %v, expected %v", got, tt.wantInfo)
			}
			if !strings.Contains(out, "error message") {
				t.Error("Expected errors to always be shown")
			}
		})
	}
}

func TestNew_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Prefix: "span"})

	logger.Info("removed quoted spans", "count", 2)

	out := buf.String()
	if !strings.Contains(out, "count=2") {
		t.Errorf("Expected key/value pair in output, got %q", out)
	}
	if !strings.Contains(out, "span") {
		t.Errorf("Expected prefix in output, got %q", out)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{JSON: true})

	logger.Warn("unknown reason", "reason", "vibes")

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "unknown reason" {
		t.Errorf("Expected msg field, got %v", entry["msg"])
	}
	if entry["reason"] != "vibes" {
		t.Errorf("Expected reason field, got %v", entry["reason"])
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nothing to see")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	if err != nil || lvl != log.DebugLevel {
		t.Errorf("Expected debug level, got %v (%v)", lvl, err)
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Error("Expected error for unknown level")
	}
}
