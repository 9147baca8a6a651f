// Package logging builds the structured loggers handed to every component.
// There is no package-level logger: callers create one and pass it down.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures a logger
type Options struct {
	Verbose bool   // Debug level
	Quiet   bool   // Errors only; wins over Level and Verbose
	Level   string // debug, info, warn or error; wins over Verbose
	JSON    bool   // JSON lines instead of text
	Prefix  string // Shown before every message
}

// New creates a logger writing to w. Warnings and errors are always shown;
// informational output is shown unless quiet.
func New(w io.Writer, opts Options) *log.Logger {
	formatter := log.TextFormatter
	if opts.JSON {
		formatter = log.JSONFormatter
	}

	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level(opts),
		Prefix:          opts.Prefix,
		Formatter:       formatter,
	})
}

// Discard returns a logger that drops everything
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// ParseLevel maps a level name (debug, info, warn, error) to a level
func ParseLevel(name string) (log.Level, error) {
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("parse log level: %w", err)
	}
	return lvl, nil
}

func level(opts Options) log.Level {
	switch {
	case opts.Quiet:
		return log.ErrorLevel
	case opts.Level != "":
		if lvl, err := ParseLevel(opts.Level); err == nil {
			return lvl
		}
		return log.InfoLevel
	case opts.Verbose:
		return log.DebugLevel
	default:
		return log.InfoLevel
	}
}
