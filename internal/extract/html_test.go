package extract

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

const sampleArticle = `<!DOCTYPE html>
<html>
<head>
	<title>Senator slams critics | Daily Planet</title>
	<style>body { color: red; }</style>
	<script>var tracking = "do not include";</script>
</head>
<body>
	<nav><a href="/">Home</a> <a href="/politics">Politics</a></nav>
	<article>
		<h1>Senator slams critics over radical agenda claim</h1>
		<p>The senator delivered a fiery speech on Tuesday, responding to weeks of criticism from opposition lawmakers about the proposed budget.</p>
		<p>Critics called the plan a "radical agenda" that would reshape public spending for a decade, according to people familiar with the negotiations.</p>
		<p>Supporters of the bill said the changes were modest and long overdue, pointing to similar reforms adopted in neighbouring states last year.</p>
	</article>
	<footer>Copyright Daily Planet</footer>
</body>
</html>`

func TestExtractArticle(t *testing.T) {
	article, err := ExtractArticle(sampleArticle, "https://example.com/politics/senator")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !strings.Contains(article.Text, "fiery speech on Tuesday") {
		t.Errorf("Expected body text, got %q", article.Text)
	}
	if !strings.Contains(article.Text, "long overdue") {
		t.Errorf("Expected last paragraph, got %q", article.Text)
	}
	if strings.Contains(article.Text, "do not include") {
		t.Error("Script content leaked into article text")
	}
	if strings.Contains(article.Text, "color: red") {
		t.Error("Style content leaked into article text")
	}
	if !strings.Contains(article.Text, "\n\n") {
		t.Error("Expected paragraphs separated by blank lines")
	}
}

func TestExtractArticle_BadURL(t *testing.T) {
	if _, err := ExtractArticle(sampleArticle, "://bad"); err == nil {
		t.Error("Expected error for invalid source URL")
	}
}

func TestExtractVisibleText(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(sampleArticle))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	text := extractVisibleText(doc)
	paras := strings.Split(text, "\n\n")

	if len(paras) != 4 {
		t.Fatalf("Expected 4 paragraphs (heading + 3), got %d: %q", len(paras), paras)
	}
	if paras[0] != "Senator slams critics over radical agenda claim" {
		t.Errorf("Expected heading first, got %q", paras[0])
	}
	for _, unwanted := range []string{"do not include", "Home", "Copyright", "Daily Planet"} {
		if strings.Contains(text, unwanted) {
			t.Errorf("Expected %q to be skipped", unwanted)
		}
	}
}

func TestDocumentTitle(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(sampleArticle))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got := documentTitle(doc); got != "Senator slams critics | Daily Planet" {
		t.Errorf("Expected page title, got %q", got)
	}
}

func TestParagraphText_NestedBlocks(t *testing.T) {
	fragment := `<div><ul><li><p>First   item
	text</p></li><li>Second item</li></ul><blockquote><p>Quoted words</p></blockquote></div>`

	text, err := paragraphText(fragment)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := "First item text\n\nSecond item\n\nQuoted words"
	if text != want {
		t.Errorf("Expected %q, got %q", want, text)
	}
}

func TestLooksLikeHTML(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{sampleArticle, true},
		{"<p>Short fragment</p>", true},
		{"Plain article text.\n\nSecond paragraph.", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := LooksLikeHTML(tt.content); got != tt.want {
			t.Errorf("LooksLikeHTML(%.20q) = %v, expected %v", tt.content, got, tt.want)
		}
	}
}
