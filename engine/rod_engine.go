package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/boolsearch/config"
	"github.com/ysmood/gson"
)

// RodEngine launches a fresh Chromium per session through go-rod.
type RodEngine struct {
	cfg config.BrowserConfig
}

// NewRodEngine creates a RodEngine. No process is started until Launch.
func NewRodEngine(cfg config.BrowserConfig) *RodEngine {
	return &RodEngine{cfg: cfg}
}

// newLauncher builds the launch flags: rod's defaults plus the set needed
// for constrained container hosts and automation-flag masking.
func (e *RodEngine) newLauncher(ctx context.Context) *launcher.Launcher {
	l := launcher.New().
		Context(ctx).
		Headless(e.cfg.Headless).
		NoSandbox(e.cfg.NoSandbox)

	if e.cfg.BrowserBin != "" {
		l = l.Bin(e.cfg.BrowserBin)
	}

	// ── Constrained-host flags ───────────────────────────────────────
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("no-zygote"))

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("no-first-run"))

	return l
}

// Launch implements Engine.
func (e *RodEngine) Launch(ctx context.Context) (Browser, error) {
	l := e.newLauncher(ctx)

	controlURL, err := l.Launch()
	if err != nil {
		reap(l)
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	// The CDP connection lives as long as its context, so it must not
	// inherit the launch deadline.
	browser := rod.New().ControlURL(controlURL).NoDefaultDevice()
	if err := browser.Connect(); err != nil {
		reap(l)
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	slog.Debug("browser launched", "pid", l.PID(), "controlURL", controlURL)

	return &rodBrowser{browser: browser, launcher: l}, nil
}

// reap kills a (possibly half-started) browser process and removes its
// temporary profile directory.
func reap(l *launcher.Launcher) {
	if l.PID() == 0 {
		return
	}
	l.Kill()
	// Cleanup blocks until the killed process has been waited on.
	go l.Cleanup()
}

type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// NewPage implements Browser. Page creation runs on the browser's own
// context so the page outlives ctx; ctx only bounds how long we wait.
func (b *rodBrowser) NewPage(ctx context.Context) (Page, error) {
	type created struct {
		page *rod.Page
		err  error
	}
	done := make(chan created, 1)
	go func() {
		p, err := b.browser.Page(proto.TargetCreateTarget{})
		done <- created{p, err}
	}()

	select {
	case <-ctx.Done():
		// A page created after this point dies with the browser on Close.
		return nil, ctx.Err()
	case c := <-done:
		if c.err != nil {
			return nil, c.err
		}
		return &rodPage{page: c.page}, nil
	}
}

// Close implements Browser.
func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	if err != nil {
		// The CDP channel is gone; make sure the process goes with it.
		b.launcher.Kill()
	}
	if b.launcher.PID() != 0 {
		b.launcher.Cleanup()
	}
	return err
}

type rodPage struct {
	page *rod.Page

	mu     sync.Mutex
	router *rod.HijackRouter
}

func (p *rodPage) SetUserAgent(ua string) error {
	return p.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua})
}

func (p *rodPage) SetViewport(width, height int) error {
	return p.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
		Mobile:            false,
	})
}

func (p *rodPage) ApplyStealth() error {
	_, err := p.page.EvalOnNewDocument(stealth.JS)
	return err
}

// Intercept implements Page. The router runs in its own goroutine and is
// stopped when the browser goes away.
func (p *rodPage) Intercept(handler func(Request)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.router != nil {
		return nil
	}

	router := p.page.HijackRequests()
	// Pattern "*" + empty resourceType = intercept ALL requests.
	if err := router.Add("*", "", func(h *rod.Hijack) {
		handler(&rodRequest{h: h})
	}); err != nil {
		return err
	}
	go router.Run()

	p.router = router
	return nil
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)

	// Must be registered before Navigate or the event can be missed.
	wait := page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := page.Navigate(url); err != nil {
		return err
	}
	wait()

	// wait returns silently when ctx ends before the event fires.
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

func (p *rodPage) WaitElement(ctx context.Context, selector string) error {
	_, err := p.page.Context(ctx).Element(selector)
	return err
}

// removeOverlaysJS drops high z-index fixed/sticky elements and the
// usual consent-banner containers, then unlocks page scrolling.
const removeOverlaysJS = `() => {
	for (const el of document.querySelectorAll('*')) {
		const style = window.getComputedStyle(el);
		if (style.position === 'fixed' || style.position === 'sticky') {
			const z = parseInt(style.zIndex, 10);
			if (z >= 900 || style.zIndex === 'auto') el.remove();
		}
	}
	const selectors = [
		'[class*="cookie"]', '[class*="consent"]', '[class*="overlay"]',
		'[id*="cookie"]', '[id*="consent"]', '[id*="overlay"]',
		'[class*="gdpr"]', '[id*="gdpr"]',
	];
	for (const sel of selectors) {
		document.querySelectorAll(sel).forEach(el => {
			const pos = window.getComputedStyle(el).position;
			if (pos === 'fixed' || pos === 'sticky' || pos === 'absolute') el.remove();
		});
	}
	document.documentElement.style.overflow = '';
	if (document.body) document.body.style.overflow = '';
}`

func (p *rodPage) RemoveOverlays(ctx context.Context) error {
	_, err := p.page.Context(ctx).Eval(removeOverlaysJS)
	return err
}

const (
	textJS = `(sel) => {
		const el = document.querySelector(sel);
		if (!el) return null;
		return (el.textContent || '').trim();
	}`

	// Anchors report href already resolved against the document URL.
	hrefJS = `(sel) => {
		const el = document.querySelector(sel);
		if (!el) return null;
		return typeof el.href === 'string' ? el.href : '';
	}`
)

func (p *rodPage) Text(ctx context.Context, selector string) (string, bool, error) {
	return p.query(ctx, textJS, selector)
}

func (p *rodPage) Href(ctx context.Context, selector string) (string, bool, error) {
	return p.query(ctx, hrefJS, selector)
}

func (p *rodPage) query(ctx context.Context, js, selector string) (string, bool, error) {
	res, err := p.page.Context(ctx).Eval(js, selector)
	if err != nil {
		return "", false, err
	}
	v, found := decodeQueryResult(res.Value)
	return v, found, nil
}

// decodeQueryResult maps the in-page result: null means no node matched.
func decodeQueryResult(v gson.JSON) (string, bool) {
	if v.Nil() {
		return "", false
	}
	return v.Str(), true
}

type rodRequest struct {
	h *rod.Hijack
}

func (r *rodRequest) Type() proto.NetworkResourceType { return r.h.Request.Type() }

func (r *rodRequest) URL() string { return r.h.Request.URL().String() }

func (r *rodRequest) Abort() {
	r.h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
}

func (r *rodRequest) Continue() {
	r.h.ContinueRequest(&proto.FetchContinueRequest{})
}
