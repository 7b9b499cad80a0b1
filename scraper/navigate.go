package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/use-agent/boolsearch/engine"
	"github.com/use-agent/boolsearch/models"
)

// waitPolicy is the three-step readiness policy for a results page.
type waitPolicy struct {
	// NavigationTimeout bounds reaching DOMContentLoaded. Hard failure.
	NavigationTimeout time.Duration
	// RenderDelay is slept after DOMContentLoaded for client-side rendering.
	RenderDelay time.Duration
	// Marker is waited for up to MarkerTimeout. Soft: expiry is logged only.
	Marker        string
	MarkerTimeout time.Duration
	// DismissOverlays strips consent banners once the waits are over.
	DismissOverlays bool
}

// navigate loads url on page and waits until the results list has most
// likely been rendered.
//
// Network idle is deliberately not used: results pages keep telemetry
// connections open and never go idle.
func navigate(ctx context.Context, page engine.Page, url string, policy waitPolicy, log *slog.Logger) error {
	// ── 1. DOMContentLoaded ───────────────────────────────────────────
	navCtx := ctx
	if policy.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, policy.NavigationTimeout)
		defer cancel()
	}
	if err := page.Navigate(navCtx, url); err != nil {
		return categorizeError(err, models.ErrCodeNavigation, "navigation to search page failed")
	}

	// ── 2. Render delay ───────────────────────────────────────────────
	if err := sleepWithContext(ctx, policy.RenderDelay); err != nil {
		return categorizeError(err, models.ErrCodeNavigation, "render wait interrupted")
	}

	// ── 3. Results marker (best-effort) ───────────────────────────────
	if policy.Marker != "" {
		markerCtx := ctx
		if policy.MarkerTimeout > 0 {
			var cancel context.CancelFunc
			markerCtx, cancel = context.WithTimeout(ctx, policy.MarkerTimeout)
			defer cancel()
		}
		if err := page.WaitElement(markerCtx, policy.Marker); err != nil {
			// A canceled request must not proceed to extraction.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return categorizeError(ctxErr, models.ErrCodeNavigation, "results wait interrupted")
			}
			log.Debug("results marker not found, proceeding with current DOM",
				"marker", policy.Marker,
				"error", err,
			)
		}
	}

	// ── 4. Overlays (best-effort) ─────────────────────────────────────
	if policy.DismissOverlays {
		if err := page.RemoveOverlays(ctx); err != nil {
			log.Debug("overlay removal failed", "error", err)
		}
	}
	return nil
}

// sleepWithContext sleeps for d or until ctx is done, whichever is first.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
