package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/use-agent/boolsearch/config"
	"github.com/use-agent/boolsearch/engine"
	"github.com/use-agent/boolsearch/models"
	"github.com/use-agent/boolsearch/search"
	"golang.org/x/sync/semaphore"
)

// Scraper runs scoped searches, one isolated browser session per call.
// It is safe for concurrent use.
type Scraper struct {
	eng        engine.Engine
	browserCfg config.BrowserConfig
	searchCfg  config.SearchConfig
	selectors  search.SelectorTable
	filter     *ResourceFilter

	// slots bounds concurrent sessions; nil when unbounded.
	slots          *semaphore.Weighted
	activeSessions atomic.Int32
}

// NewScraper validates the selector table and resource filter
// configuration. No browser is started until the first Search.
func NewScraper(eng engine.Engine, browserCfg config.BrowserConfig, searchCfg config.SearchConfig, selectors search.SelectorTable) (*Scraper, error) {
	if err := selectors.Validate(); err != nil {
		return nil, err
	}
	filter, err := NewResourceFilter(searchCfg.BlockedResourceTypes, searchCfg.BlockTrackers)
	if err != nil {
		return nil, err
	}

	s := &Scraper{
		eng:        eng,
		browserCfg: browserCfg,
		searchCfg:  searchCfg,
		selectors:  selectors,
		filter:     filter,
	}
	if browserCfg.MaxSessions > 0 {
		s.slots = semaphore.NewWeighted(int64(browserCfg.MaxSessions))
	}
	slog.Info("scraper ready",
		"engine", searchCfg.EngineName,
		"maxSessions", browserCfg.MaxSessions,
		"blocked", searchCfg.BlockedResourceTypes,
	)
	return s, nil
}

// ActiveSessions returns the number of browser sessions currently open.
func (s *Scraper) ActiveSessions() int {
	return int(s.activeSessions.Load())
}

// Search runs the full pipeline for req and classifies the result.
//
// Stages run strictly in order:
//
//  1. Validate + build the scoped query
//  2. Acquire a session slot        (waits while MaxSessions are open)
//  3. Open the session              (launch, page, fingerprint, stealth)
//  4. DEFER: close the session      (on every path, exactly once)
//  5. Attach the resource filter    (before navigation!)
//  6. Navigate + wait
//  7. Extract
//  8. Classify
//
// Cancelling ctx aborts whichever stage is running; the session is still
// closed before Search returns.
func (s *Scraper) Search(ctx context.Context, req models.SearchRequest) search.Outcome {
	start := time.Now()
	log := slog.Default().With("requestId", models.RequestIDFrom(ctx))

	outcome := s.run(ctx, req, log)

	attrs := []any{
		"kind", outcome.Kind.String(),
		"totalMs", time.Since(start).Milliseconds(),
	}
	if outcome.Kind == search.KindFailure {
		attrs = append(attrs, "error", outcome.Err)
		log.Warn("search failed", attrs...)
	} else {
		log.Info("search completed", attrs...)
	}
	return outcome
}

func (s *Scraper) run(ctx context.Context, req models.SearchRequest, log *slog.Logger) search.Outcome {
	// ── 1. Query ──────────────────────────────────────────────────────
	if err := req.Validate(); err != nil {
		return search.Classify(search.ExtractionResult{}, err)
	}
	scoped := search.BuildScopedQuery(req.Domain, req.Query)
	target := search.SearchURL(s.searchCfg.BaseURL, scoped)
	log = log.With("query", scoped)

	// ── 2. Slot ───────────────────────────────────────────────────────
	release, err := s.acquire(ctx)
	if err != nil {
		return search.Classify(search.ExtractionResult{}, err)
	}
	defer release()

	// ── 3-4. Session ──────────────────────────────────────────────────
	s.activeSessions.Add(1)
	defer s.activeSessions.Add(-1)

	stage := time.Now()
	sess := newSession(s.eng, s.browserCfg, log)
	defer sess.Close()
	if err := sess.Open(ctx); err != nil {
		return search.Classify(search.ExtractionResult{}, err)
	}
	page := sess.Page()
	log.Debug("session opened", "launchMs", time.Since(stage).Milliseconds())

	// ── 5. Resource filter ────────────────────────────────────────────
	if err := s.filter.Attach(page); err != nil {
		return search.Classify(search.ExtractionResult{},
			categorizeError(err, models.ErrCodeInternal, "failed to attach resource filter"))
	}

	// ── 6. Navigate ───────────────────────────────────────────────────
	stage = time.Now()
	policy := waitPolicy{
		NavigationTimeout: s.searchCfg.NavigationTimeout,
		RenderDelay:       s.searchCfg.RenderDelay,
		Marker:            s.searchCfg.ResultsMarker,
		MarkerTimeout:     s.searchCfg.MarkerTimeout,
		DismissOverlays:   s.searchCfg.DismissOverlays,
	}
	if err := navigate(ctx, page, target, policy, log); err != nil {
		return search.Classify(search.ExtractionResult{}, err)
	}
	log.Debug("page ready", "url", target, "navigateMs", time.Since(stage).Milliseconds())

	// ── 7-8. Extract + classify ───────────────────────────────────────
	stage = time.Now()
	res, err := search.Extract(ctx, page, s.selectors)
	if err != nil {
		return search.Classify(res, categorizeError(err, models.ErrCodeExtraction, "result extraction failed"))
	}
	log.Debug("extraction done",
		"extractMs", time.Since(stage).Milliseconds(),
		"title", res.Title != "",
		"url", res.URL != "",
	)
	return search.Classify(res, nil)
}

// acquire takes a session slot, waiting until one frees up or ctx ends.
func (s *Scraper) acquire(ctx context.Context) (release func(), err error) {
	if s.slots == nil {
		return func() {}, nil
	}
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, categorizeError(err, models.ErrCodeTimeout, "no browser session available")
	}
	return func() { s.slots.Release(1) }, nil
}

// categorizeError wraps a raw error into a typed SearchError so the API
// layer can report a stable code. Errors that are already typed pass
// through unchanged.
func categorizeError(err error, code, msg string) *models.SearchError {
	var se *models.SearchError
	if errors.As(err, &se) {
		return se
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewSearchError(models.ErrCodeTimeout, fmt.Sprintf("%s: timed out", msg), err)
	case errors.Is(err, context.Canceled):
		return models.NewSearchError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewSearchError(code, msg, err)
	}
}
