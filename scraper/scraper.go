// Package scraper drives a headless Chromium through go-rod: one browser
// per request, navigated once, with the rendered DOM read back as a Snapshot.
package scraper

import (
	"context"
	"log/slog"

	"github.com/go-rod/stealth"
	"github.com/use-agent/pagegrab/config"
)

// Scraper composes the session manager and the page extractor.
// It is safe for concurrent use; requests share nothing but configuration.
type Scraper struct {
	sessions   *SessionManager
	extractor  *Extractor
	browserCfg config.BrowserConfig
}

// New creates a Scraper. No browser is started until Fetch is called.
func New(browserCfg config.BrowserConfig, extractCfg config.ExtractConfig) *Scraper {
	return &Scraper{
		sessions:   NewSessionManager(browserCfg),
		extractor:  NewExtractor(extractCfg),
		browserCfg: browserCfg,
	}
}

// ActiveSessions reports how many browsers are currently running.
func (s *Scraper) ActiveSessions() int {
	return s.sessions.Active()
}

// Fetch launches a browser, extracts targetURL and tears the browser down
// again on every exit path, including errors, panics and cancellation.
func (s *Scraper) Fetch(ctx context.Context, targetURL string) (*Snapshot, error) {
	sess, err := s.sessions.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Release()

	page := sess.Page()

	// Page setup must happen before navigation to take effect.
	if s.browserCfg.Stealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
		}
	}
	if router := setupHijack(page, s.browserCfg.BlockedResourceTypes); router != nil {
		defer func() { _ = router.Stop() }()
	}

	return s.extractor.Extract(ctx, page, targetURL)
}
