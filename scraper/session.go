package scraper

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/pagegrab/config"
	"github.com/use-agent/pagegrab/models"
)

// cleanupTimeout bounds each teardown step. Teardown never uses the request
// context, so it still runs after the caller has gone away.
const cleanupTimeout = 5 * time.Second

// SessionManager launches a dedicated browser process for every request.
// Nothing is pooled or shared between sessions.
type SessionManager struct {
	cfg    config.BrowserConfig
	active atomic.Int32
}

// NewSessionManager creates a manager that launches browsers with cfg.
func NewSessionManager(cfg config.BrowserConfig) *SessionManager {
	return &SessionManager{cfg: cfg}
}

// Active returns the number of sessions currently holding a browser.
func (m *SessionManager) Active() int {
	return int(m.active.Load())
}

// Session is one browser process, one isolated browsing context inside it,
// and one page in that context.
type Session struct {
	launcher  *launcher.Launcher
	browser   *rod.Browser
	incognito *rod.Browser
	page      *rod.Page

	mgr  *SessionManager
	once sync.Once
}

// Page returns the session's page handle.
func (s *Session) Page() *rod.Page {
	return s.page
}

// newLauncher builds the launcher with the fixed container-friendly flags.
func (m *SessionManager) newLauncher() *launcher.Launcher {
	l := launcher.New().
		Headless(m.cfg.Headless).
		NoSandbox(true)

	if m.cfg.Bin != "" {
		l = l.Bin(m.cfg.Bin)
	}
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("no-first-run"))
	return l
}

// Acquire launches a browser, opens an isolated context and a blank page.
// On error everything started so far has already been torn down. On success
// the caller must call Release, typically via defer.
func (m *SessionManager) Acquire(ctx context.Context) (*Session, error) {
	launchCtx, cancel := context.WithTimeout(ctx, m.cfg.LaunchTimeout)
	defer cancel()

	m.active.Add(1)
	s := &Session{mgr: m, launcher: m.newLauncher().Context(launchCtx)}
	acquired := false
	defer func() {
		if !acquired {
			s.Release()
		}
	}()

	controlURL, err := s.launcher.Launch()
	if err != nil {
		return nil, categorizeLaunchError(err, "failed to launch browser")
	}
	slog.Debug("browser launched", "controlURL", controlURL, "pid", s.launcher.PID())

	// Connect and page creation do not honour launchCtx. A browser still
	// starting up at the deadline is killed, which fails any blocked call.
	stop := context.AfterFunc(launchCtx, s.launcher.Kill)
	defer stop()

	// The browser keeps the background context: its event loop must outlive
	// the launch deadline, and teardown must work after ctx is cancelled.
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, startupError(launchCtx, err, "failed to connect to browser")
	}
	s.browser = browser

	incognito, err := browser.Context(launchCtx).Incognito()
	if err != nil {
		return nil, startupError(launchCtx, err, "failed to create browsing context")
	}
	s.incognito = incognito.Context(context.Background())

	// Page sessions derive from the browser context, so the page is opened
	// from the background clone.
	page, err := s.incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, startupError(launchCtx, err, "failed to open page")
	}
	s.page = page

	if !stop() {
		return nil, categorizeLaunchError(launchCtx.Err(), "browser startup timed out")
	}
	acquired = true
	return s, nil
}

// startupError reports a failure after launch as a startup timeout when the
// launch deadline had already passed.
func startupError(launchCtx context.Context, err error, msg string) *models.ScrapeError {
	if ctxErr := launchCtx.Err(); ctxErr != nil {
		return categorizeLaunchError(ctxErr, "browser startup timed out")
	}
	return models.NewScrapeError(models.ErrCodeBrowserLaunch, msg, err)
}

// Release closes page, context and browser, then makes sure the process has
// exited and its profile directory is removed. Safe to call more than once.
func (s *Session) Release() {
	s.once.Do(func() {
		defer s.mgr.active.Add(-1)

		if s.page != nil {
			if err := s.page.Timeout(cleanupTimeout).Close(); err != nil {
				slog.Debug("cleanup: page close failed", "error", err)
			}
		}
		if s.incognito != nil {
			if err := s.incognito.Timeout(cleanupTimeout).Close(); err != nil {
				slog.Debug("cleanup: context close failed", "error", err)
			}
		}

		closed := false
		if s.browser != nil {
			if err := s.browser.Timeout(cleanupTimeout).Close(); err != nil {
				slog.Warn("cleanup: browser close failed, killing process", "error", err)
			} else {
				closed = true
			}
		}
		if !closed {
			s.launcher.Kill()
		}
		s.waitExit()
	})
}

// waitExit blocks until the browser process is gone and its user-data-dir
// removed, escalating to a kill if a closed browser does not exit in time.
func (s *Session) waitExit() {
	pid := s.launcher.PID()
	if pid == 0 {
		return // never started
	}

	done := make(chan struct{})
	go func() {
		s.launcher.Cleanup()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(cleanupTimeout):
		slog.Warn("cleanup: browser still running after close, killing", "pid", pid)
		s.launcher.Kill()
		<-done
	}
}
