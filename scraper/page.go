package scraper

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/pagegrab/config"
	"github.com/use-agent/pagegrab/models"
	"github.com/ysmood/gson"
)

const (
	titleJS = `() => document.title`

	bodyTextJS = `() => document.body ? document.body.innerText : ""`

	// SVG anchors expose href as an SVGAnimatedString.
	linksJS = `() => Array.from(document.querySelectorAll("a")).map(a => ({
		href: typeof a.href === "string" ? a.href : ((a.href && a.href.baseVal) || ""),
		text: (a.innerText || "").trim(),
	}))`

	metaJS = `() => Array.from(document.querySelectorAll("meta")).map(m => ({
		name: m.getAttribute("name"),
		property: m.getAttribute("property"),
		content: m.getAttribute("content"),
	}))`

	statusJS = `() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch (e) {}
		return 0;
	}`
)

// Extractor navigates a page and reads the raw artifacts from its DOM.
type Extractor struct {
	cfg config.ExtractConfig
}

// NewExtractor creates an Extractor with the given timeouts.
func NewExtractor(cfg config.ExtractConfig) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract runs a single navigation to targetURL and reads, in order: title,
// serialized HTML, body text, anchors and meta elements.
//
// Navigation waits for the load lifecycle event and is bounded by
// NavigationTimeout; every DOM read has its own DOMReadTimeout. There are no
// retries.
func (e *Extractor) Extract(ctx context.Context, page *rod.Page, targetURL string) (*Snapshot, error) {
	if err := e.navigate(ctx, page, targetURL); err != nil {
		return nil, err
	}

	snap := &Snapshot{}
	if err := e.read(ctx, page, "status", func(p *rod.Page) error {
		res, err := p.Eval(statusJS)
		if err == nil {
			snap.StatusCode = res.Value.Int()
		}
		return err
	}); err != nil {
		return nil, err
	}
	if snap.StatusCode >= 400 {
		return nil, models.NewScrapeError(models.ErrCodeNavigation,
			fmt.Sprintf("target responded with HTTP %d", snap.StatusCode), nil)
	}

	steps := []struct {
		name string
		fn   func(p *rod.Page) error
	}{
		{"title", func(p *rod.Page) error {
			res, err := p.Eval(titleJS)
			if err == nil {
				snap.Title = res.Value.Str()
			}
			return err
		}},
		{"html", func(p *rod.Page) (err error) {
			snap.HTML, err = p.HTML()
			return err
		}},
		{"text", func(p *rod.Page) error {
			res, err := p.Eval(bodyTextJS)
			if err == nil {
				snap.Text = res.Value.Str()
			}
			return err
		}},
		{"links", func(p *rod.Page) error {
			res, err := p.Eval(linksJS)
			if err == nil {
				snap.Links = decodeLinks(res.Value)
			}
			return err
		}},
		{"meta", func(p *rod.Page) error {
			res, err := p.Eval(metaJS)
			if err == nil {
				snap.MetaTags = decodeMetaTags(res.Value)
			}
			return err
		}},
	}
	for _, step := range steps {
		if err := e.read(ctx, page, step.name, step.fn); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// navigate loads targetURL and blocks until the load event fires.
func (e *Extractor) navigate(ctx context.Context, page *rod.Page, targetURL string) error {
	navCtx, cancel := context.WithTimeout(ctx, e.cfg.NavigationTimeout)
	defer cancel()

	p := page.Context(navCtx)

	// Must be registered before Navigate or the event can be missed.
	waitLoad := p.WaitNavigation(proto.PageLifecycleEventNameLoad)

	if err := p.Navigate(targetURL); err != nil {
		return categorizeError(err, "navigation to target URL failed")
	}
	waitLoad()

	if err := navCtx.Err(); err != nil {
		return categorizeError(err, fmt.Sprintf("page did not finish loading within %s", e.cfg.NavigationTimeout))
	}
	return nil
}

// read runs one DOM read under its own deadline.
func (e *Extractor) read(ctx context.Context, page *rod.Page, what string, fn func(p *rod.Page) error) error {
	readCtx, cancel := context.WithTimeout(ctx, e.cfg.DOMReadTimeout)
	defer cancel()

	if err := fn(page.Context(readCtx)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return categorizeError(err, "reading "+what+" timed out")
		}
		return models.NewScrapeError(models.ErrCodeDOMRead, "failed to read "+what, err)
	}
	return nil
}

func decodeLinks(v gson.JSON) []models.Link {
	items := v.Arr()
	out := make([]models.Link, 0, len(items))
	for _, item := range items {
		out = append(out, models.Link{
			Href: item.Get("href").Str(),
			Text: item.Get("text").Str(),
		})
	}
	return out
}

func decodeMetaTags(v gson.JSON) []models.MetaTag {
	items := v.Arr()
	out := make([]models.MetaTag, 0, len(items))
	for _, item := range items {
		out = append(out, models.MetaTag{
			Name:     optionalString(item.Get("name")),
			Property: optionalString(item.Get("property")),
			Content:  optionalString(item.Get("content")),
		})
	}
	return out
}

// optionalString maps JSON null to nil.
func optionalString(v gson.JSON) *string {
	if v.Nil() {
		return nil
	}
	s := v.Str()
	return &s
}

// categorizeError wraps raw errors into typed ScrapeErrors so callers can
// tell timeouts from other navigation failures.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}

func categorizeLaunchError(err error, msg string) *models.ScrapeError {
	if errors.Is(err, context.Canceled) {
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	}
	return models.NewScrapeError(models.ErrCodeBrowserLaunch, msg, err)
}
