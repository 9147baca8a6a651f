package extract

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// blockSelector lists elements rendered as their own paragraph
const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, blockquote, pre, figcaption"

var spaceRun = regexp.MustCompile(`[ \t\r\n\f\v]+`)

// Article is the readable content of an HTML page
type Article struct {
	Title   string
	Excerpt string
	Text    string // Paragraphs separated by blank lines
}

// LooksLikeHTML reports whether content should be parsed as HTML
func LooksLikeHTML(content string) bool {
	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(http.DetectContentType([]byte(head)), "text/html")
}

// ExtractArticle pulls the article body out of an HTML page.
// Readability picks the main content; when it fails or finds nothing, all
// visible text of the page is used instead.
func ExtractArticle(htmlContent, sourceURL string) (*Article, error) {
	pageURL, err := url.Parse(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}

	// 1. Main content via readability
	if parsed, err := readability.FromReader(strings.NewReader(htmlContent), pageURL); err == nil {
		text, err := paragraphText(parsed.Content)
		if err == nil && text != "" {
			return &Article{
				Title:   strings.TrimSpace(parsed.Title),
				Excerpt: strings.TrimSpace(parsed.Excerpt),
				Text:    text,
			}, nil
		}
	}

	// 2. Fallback: every visible text node
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return &Article{
		Title: documentTitle(doc),
		Text:  extractVisibleText(doc),
	}, nil
}

// paragraphText renders block elements of an HTML fragment as paragraphs
func paragraphText(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}

	var paras []string
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// Nested blocks are rendered by their outermost ancestor
		if s.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		if text := collapseSpace(s.Text()); text != "" {
			paras = append(paras, text)
		}
	})

	if len(paras) == 0 {
		if text := collapseSpace(doc.Text()); text != "" {
			paras = append(paras, text)
		}
	}

	return strings.Join(paras, "\n\n"), nil
}

// extractVisibleText extracts text nodes from HTML, skipping scripts/styles.
// Block-level elements start a new paragraph.
func extractVisibleText(n *html.Node) string {
	var paras []string
	var current strings.Builder

	flush := func() {
		if text := collapseSpace(current.String()); text != "" {
			paras = append(paras, text)
		}
		current.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		block := false
		if n.Type == html.ElementNode {
			// Skip script, style, noscript tags
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head", "nav", "footer":
				return
			case "p", "div", "li", "br", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre", "tr", "section", "article":
				block = true
				flush()
			}
		}

		if n.Type == html.TextNode {
			current.WriteString(n.Data)
			current.WriteString(" ")
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if block {
			flush()
		}
	}

	walk(n)
	flush()
	return strings.Join(paras, "\n\n")
}

// documentTitle returns the text of the first <title> element
func documentTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return collapseSpace(n.FirstChild.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := documentTitle(c); title != "" {
			return title
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
