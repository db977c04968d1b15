package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the shortest TextContent (in characters) accepted from
// readability. Anything shorter means it missed the main content.
const minContentLength = 50

// ExtractContent runs the Mozilla Readability algorithm on rawHTML. The
// boolean is false when the whole page was kept instead: a bad source URL,
// a readability error, or too little extracted text.
func ExtractContent(rawHTML string, sourceURL string) (readability.Article, bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("readability: invalid source URL, keeping whole page",
			"url", sourceURL, "error", err,
		)
		return fallbackArticle(rawHTML), false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("readability: extraction failed, keeping whole page",
			"url", sourceURL, "error", err,
		)
		return fallbackArticle(rawHTML), false
	}

	if len([]rune(strings.TrimSpace(article.TextContent))) < minContentLength {
		slog.Debug("readability: extracted content too short, keeping whole page",
			"url", sourceURL, "length", len(article.TextContent),
		)
		return fallbackArticle(rawHTML), false
	}

	return article, true
}

// fallbackArticle wraps the page as-is, with its visible text.
func fallbackArticle(rawHTML string) readability.Article {
	return readability.Article{
		Content:     rawHTML,
		TextContent: visibleText(rawHTML),
	}
}

// visibleText returns the document text without script and style bodies.
func visibleText(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}
	doc.Find("script, style, noscript, template").Remove()
	return collapseBlankLines(doc.Text())
}

// collapseBlankLines trims every line and drops the empty ones.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
