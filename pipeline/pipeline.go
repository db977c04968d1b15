// Package pipeline composes fetching, link normalisation and URL
// classification into the two request flows the API serves.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/use-agent/pagegrab/links"
	"github.com/use-agent/pagegrab/models"
	"github.com/use-agent/pagegrab/scraper"
)

// Caps applied to a full bundle. They are fixed and not configurable.
const (
	MaxTextLength = 10000
	MaxLinks      = 100
)

// Flow names used in logs and metrics.
const (
	FlowFull  = "full"
	FlowLinks = "links"
)

// Fetcher renders one page and returns its raw artifacts. *scraper.Scraper
// is the production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL string) (*scraper.Snapshot, error)
}

// Observer receives one call per finished extraction.
type Observer interface {
	ObserveExtraction(flow, outcome string, elapsed time.Duration)
}

// Orchestrator runs the full-bundle and link-only flows. Validation errors
// are returned as *models.ScrapeError; every later failure comes back as
// *models.ExtractionError.
type Orchestrator struct {
	fetcher  Fetcher
	observer Observer
	logger   *slog.Logger
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithObserver reports finished extractions to obs.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// WithLogger replaces slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator.
func New(f Fetcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{fetcher: f, logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// FullExtract fetches rawURL and returns the capped page bundle: text is cut
// to MaxTextLength characters and links to the first MaxLinks.
func (o *Orchestrator) FullExtract(ctx context.Context, rawURL string) (*models.PageBundle, error) {
	if _, err := models.ValidateURL(rawURL); err != nil {
		return nil, err
	}

	start := time.Now()
	snap, err := o.fetch(ctx, FlowFull, rawURL)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	return &models.PageBundle{
		URL:        rawURL,
		Title:      snap.Title,
		Text:       truncateRunes(snap.Text, MaxTextLength),
		Links:      capLinks(snap.Links, MaxLinks),
		MetaTags:   nonNilMeta(snap.MetaTags),
		HTMLLength: utf8.RuneCountInString(snap.HTML),
		CrawlTime:  elapsed.Seconds(),
	}, nil
}

// LinkExtract returns rawURL unchanged for inner pages without starting a
// browser. Site roots are fetched and their links deduplicated and flattened
// to bare targets; no link cap applies.
func (o *Orchestrator) LinkExtract(ctx context.Context, rawURL string) (*models.LinkResult, error) {
	class, err := links.Classify(rawURL)
	if err != nil {
		return nil, err
	}
	if class == links.InnerPage {
		o.logger.Debug("inner page, returning url unchanged", "url", rawURL)
		o.observe(FlowLinks, "passthrough", 0)
		return &models.LinkResult{Passthrough: rawURL}, nil
	}

	if _, err := models.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	snap, err := o.fetch(ctx, FlowLinks, rawURL)
	if err != nil {
		return nil, err
	}
	return &models.LinkResult{Links: links.Hrefs(links.RemoveDuplicates(snap.Links))}, nil
}

// Snapshot validates rawURL and returns the raw, uncapped artifacts under the
// same error policy as FullExtract.
func (o *Orchestrator) Snapshot(ctx context.Context, rawURL string) (*scraper.Snapshot, error) {
	if _, err := models.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	return o.fetch(ctx, FlowFull, rawURL)
}

// fetch runs the fetcher and converts every failure, panics included, into
// an ExtractionError carrying the original URL.
func (o *Orchestrator) fetch(ctx context.Context, flow, rawURL string) (snap *scraper.Snapshot, err error) {
	logger := o.logger.With("flow", flow, "url", rawURL)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("extraction panicked", "panic", r)
			snap, err = nil, fmt.Errorf("unexpected failure: %v", r)
		}
		if err == nil && snap == nil {
			err = errors.New("fetcher returned no page")
		}
		elapsed := time.Since(start)
		if err != nil {
			err = &models.ExtractionError{URL: rawURL, Err: err}
			logger.Warn("extraction failed", "error", err, "elapsed", elapsed)
			o.observe(flow, "error", elapsed)
			return
		}
		logger.Info("extraction complete",
			"title", snap.Title,
			"links", len(snap.Links),
			"elapsed", elapsed,
		)
		o.observe(flow, "success", elapsed)
	}()

	return o.fetcher.Fetch(ctx, rawURL)
}

func (o *Orchestrator) observe(flow, outcome string, elapsed time.Duration) {
	if o.observer != nil {
		o.observer.ObserveExtraction(flow, outcome, elapsed)
	}
}

// truncateRunes keeps at most max characters of s.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

func capLinks(in []models.Link, max int) []models.Link {
	if len(in) > max {
		in = in[:max]
	}
	if in == nil {
		return []models.Link{}
	}
	return in
}

func nonNilMeta(in []models.MetaTag) []models.MetaTag {
	if in == nil {
		return []models.MetaTag{}
	}
	return in
}
