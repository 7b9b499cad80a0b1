package scraper

import (
	"context"
	"log/slog"
	"sync"

	"github.com/use-agent/boolsearch/config"
	"github.com/use-agent/boolsearch/engine"
	"github.com/use-agent/boolsearch/models"
)

// session owns one browser process and its single page for the duration
// of one search. It is never shared between requests.
//
// Usage:
//
//	s := newSession(eng, cfg, log)
//	defer s.Close()
//	if err := s.Open(ctx); err != nil { ... }
type session struct {
	eng engine.Engine
	cfg config.BrowserConfig
	log *slog.Logger

	browser engine.Browser
	page    engine.Page

	closeOnce sync.Once
}

func newSession(eng engine.Engine, cfg config.BrowserConfig, log *slog.Logger) *session {
	return &session{eng: eng, cfg: cfg, log: log}
}

// Open launches the browser, opens the page and prepares it for
// navigation. Launch and page creation share LaunchTimeout.
//
// Whatever Open managed to acquire before failing is released by Close.
func (s *session) Open(ctx context.Context) error {
	launchCtx := ctx
	if s.cfg.LaunchTimeout > 0 {
		var cancel context.CancelFunc
		launchCtx, cancel = context.WithTimeout(ctx, s.cfg.LaunchTimeout)
		defer cancel()
	}

	// ── 1. Launch ─────────────────────────────────────────────────────
	browser, err := s.eng.Launch(launchCtx)
	if err != nil {
		return categorizeError(err, models.ErrCodeBrowserLaunch, "failed to launch browser")
	}
	s.browser = browser

	// ── 2. Page ───────────────────────────────────────────────────────
	page, err := browser.NewPage(launchCtx)
	if err != nil {
		return categorizeError(err, models.ErrCodeBrowserLaunch, "failed to create page")
	}
	s.page = page

	// ── 3. Fingerprint ────────────────────────────────────────────────
	if s.cfg.ViewportWidth > 0 && s.cfg.ViewportHeight > 0 {
		if err := page.SetViewport(s.cfg.ViewportWidth, s.cfg.ViewportHeight); err != nil {
			return categorizeError(err, models.ErrCodeBrowserLaunch, "failed to set viewport")
		}
	}
	if s.cfg.UserAgent != "" {
		if err := page.SetUserAgent(s.cfg.UserAgent); err != nil {
			return categorizeError(err, models.ErrCodeBrowserLaunch, "failed to set user agent")
		}
	}

	// ── 4. Stealth (must precede the first navigation) ────────────────
	if s.cfg.Stealth {
		if err := page.ApplyStealth(); err != nil {
			s.log.Warn("stealth injection failed, proceeding without stealth",
				"error", err,
			)
		}
	}
	return nil
}

// Page returns the opened page, or nil before a successful Open.
func (s *session) Page() engine.Page {
	return s.page
}

// Close releases the browser. It runs at most once, never fails and is a
// no-op when Open never got as far as launching.
func (s *session) Close() {
	s.closeOnce.Do(func() {
		if s.browser == nil {
			return
		}
		if err := s.browser.Close(); err != nil {
			s.log.Warn("session close failed", "error", err)
			return
		}
		s.log.Debug("session closed")
	})
}
