package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/neutralizer/internal/extract"
)

// ErrEmptyArticle is returned when an input holds no text to neutralize
var ErrEmptyArticle = errors.New("article has no text")

// DefaultMaxBytes bounds how much of an input is read
const DefaultMaxBytes = 10 << 20

// Document is an article ready for neutralization
type Document struct {
	Subject string // Title, or a name derived from the source
	Source  string // File path or "stdin"
	Text    string // Body text; the coordinate system for every span
	HTML    bool   // Text was extracted from an HTML page
}

// Loader reads articles from files or stdin
type Loader struct {
	maxBytes int64
	stdin    io.Reader
}

// NewLoader creates a loader that reads at most maxBytes per input.
// stdin is read for the path "-".
func NewLoader(maxBytes int64, stdin io.Reader) *Loader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Loader{maxBytes: maxBytes, stdin: stdin}
}

// Load reads one article. HTML input is reduced to its readable body.
func (l *Loader) Load(path string) (*Document, error) {
	var (
		raw    []byte
		err    error
		source = path
	)

	if path == "-" {
		if l.stdin == nil {
			return nil, fmt.Errorf("read stdin: no input")
		}
		source = "stdin"
		raw, err = io.ReadAll(io.LimitReader(l.stdin, l.maxBytes))
	} else {
		raw, err = l.readFile(path)
	}
	if err != nil {
		return nil, err
	}

	return Parse(source, raw)
}

func (l *Loader) readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open article: %w", err)
	}
	defer func() { _ = file.Close() }()

	raw, err := io.ReadAll(io.LimitReader(file, l.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read article: %w", err)
	}
	return raw, nil
}

// Parse builds a document from raw bytes read from source
func Parse(source string, raw []byte) (*Document, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%s: article is not valid UTF-8", source)
	}
	content := string(raw)

	doc := &Document{Source: source}

	ext := strings.ToLower(filepath.Ext(source))
	if ext == ".html" || ext == ".htm" || extract.LooksLikeHTML(content) {
		article, err := extract.ExtractArticle(content, sourceURL(source))
		if err != nil {
			return nil, fmt.Errorf("extract article: %w", err)
		}
		doc.HTML = true
		doc.Subject = article.Title
		doc.Text = article.Text
	} else {
		doc.Text = content
	}

	if strings.TrimSpace(doc.Text) == "" {
		return nil, fmt.Errorf("%s: %w", source, ErrEmptyArticle)
	}
	if doc.Subject == "" {
		doc.Subject = extractSubject(source, doc.Text)
	}

	return doc, nil
}

// sourceURL turns a path into the base URL readability resolves links against
func sourceURL(source string) string {
	if source == "stdin" {
		return "file:///stdin"
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		abs = source
	}
	return "file://" + filepath.ToSlash(abs)
}

// extractSubject picks a human-readable subject: a short first line (a
// headline), otherwise the de-slugified file name
func extractSubject(source, text string) string {
	first := strings.TrimSpace(text)
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = strings.TrimSpace(first[:i])
	}
	if first != "" && utf8.RuneCountInString(first) <= 120 {
		return first
	}

	if source == "stdin" {
		return source
	}

	name := filepath.Base(source)

	// Remove file extensions
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}

	// De-slugify: replace underscores and hyphens with spaces
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")

	return name
}
