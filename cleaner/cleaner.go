// Package cleaner turns rendered page HTML into text, Markdown or trimmed
// HTML for consumers that want more than the raw bundle.
package cleaner

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	readability "github.com/go-shiori/go-readability"
	"github.com/use-agent/pagegrab/models"
)

// Output formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Extract modes.
const (
	ModeReadability = "readability"
	ModeRaw         = "raw"
)

// Options selects what Render produces. Zero values mean markdown output
// through readability with no filtering.
type Options struct {
	Format      string
	ExtractMode string

	// Selector narrows the document to the matching elements first.
	Selector string

	IncludeTags []string
	ExcludeTags []string
}

// Renderer runs the cleaning stages:
//
//	Stage 0 (narrow):      CSS selector, then include/exclude tag filters
//	Stage 1 (readability): extract main content, or keep the page as-is
//	Stage 2 (format):      Markdown, HTML or plain text
//
// The converter is created once and is safe for concurrent use.
type Renderer struct {
	mdConverter *converter.Converter
}

// NewRenderer creates a Renderer with a pre-configured Markdown converter.
func NewRenderer() *Renderer {
	return &Renderer{mdConverter: newMarkdownConverter()}
}

var defaultRenderer = NewRenderer()

// Render uses a shared Renderer.
func Render(rawHTML, sourceURL string, opts Options) (string, error) {
	return defaultRenderer.Render(rawHTML, sourceURL, opts)
}

// Render converts rawHTML according to opts. Bad options are validation
// errors; a failed Markdown conversion is ErrCodeRender.
func (r *Renderer) Render(rawHTML, sourceURL string, opts Options) (string, error) {
	// ── 0. Narrow ───────────────────────────────────────────────────
	if opts.Selector != "" {
		narrowed, err := ApplyCSSSelector(rawHTML, opts.Selector)
		if err != nil {
			return "", models.NewValidationError(fmt.Sprintf("invalid selector %q: %v", opts.Selector, err))
		}
		rawHTML = narrowed
	}
	for _, tags := range [][]string{opts.IncludeTags, opts.ExcludeTags} {
		for _, sel := range tags {
			if err := CheckSelector(sel); err != nil {
				return "", models.NewValidationError(fmt.Sprintf("invalid tag selector %q: %v", sel, err))
			}
		}
	}
	rawHTML = FilterContent(rawHTML, opts.IncludeTags, opts.ExcludeTags)

	// ── 1. Extract ──────────────────────────────────────────────────
	var article readability.Article
	switch opts.ExtractMode {
	case ModeReadability, "":
		article, _ = ExtractContent(rawHTML, sourceURL)
	case ModeRaw:
		article = fallbackArticle(rawHTML)
	default:
		return "", models.NewValidationError("unknown extract mode: " + opts.ExtractMode)
	}

	// ── 2. Format ───────────────────────────────────────────────────
	switch opts.Format {
	case FormatMarkdown, "":
		md, err := ToMarkdown(r.mdConverter, article.Content, sourceURL)
		if err != nil {
			return "", models.NewScrapeError(models.ErrCodeRender, "markdown conversion failed", err)
		}
		return strings.TrimSpace(md), nil
	case FormatHTML:
		return article.Content, nil
	case FormatText:
		return strings.TrimSpace(article.TextContent), nil
	default:
		return "", models.NewValidationError("unknown format: " + opts.Format)
	}
}
