package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/boolsearch/models"
	"github.com/use-agent/boolsearch/search"
)

// Searcher runs one scoped search. *scraper.Scraper implements it.
type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest) search.Outcome
}

// Search returns a handler for POST /api/search.
//
// Flow:
//  1. Parse & validate; reject with 400 before any browser is started.
//  2. Searcher.Search → classified Outcome.
//  3. Map the Outcome to a status: Success and Empty are both 200 (Empty
//     carries the no-result message in error), Failure is 500.
func Search(s Searcher, engineName string) gin.HandlerFunc {
	noResults := fmt.Sprintf("no results found on %s", engineName)

	return func(c *gin.Context) {
		// ── 1. Parse request ────────────────────────────────────────
		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: "invalid request body: " + err.Error(),
			})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}

		// ── 2. Search ───────────────────────────────────────────────
		outcome := s.Search(c.Request.Context(), req)

		// ── 3. Respond ──────────────────────────────────────────────
		switch outcome.Kind {
		case search.KindSuccess:
			c.JSON(http.StatusOK, models.SearchResponse{
				URL:         outcome.Result.URL,
				Title:       outcome.Result.Title,
				Description: outcome.Result.Description,
			})
		case search.KindEmpty:
			msg := noResults
			c.JSON(http.StatusOK, models.SearchResponse{Error: &msg})
		default:
			respondError(c, outcome.Err)
		}
	}
}

// respondError writes a failed search. Untyped errors are reported as
// INTERNAL_ERROR.
func respondError(c *gin.Context, err error) {
	if err == nil {
		err = errors.New("search failed")
	}
	var searchErr *models.SearchError
	if !errors.As(err, &searchErr) {
		searchErr = models.NewSearchError(models.ErrCodeInternal, "search failed", err)
	}

	msg := err.Error()
	c.JSON(mapErrorToStatus(searchErr), models.SearchResponse{
		Error: &msg,
		Code:  searchErr.Code,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes. Every
// pipeline failure is a 500; only bad input is the caller's fault.
func mapErrorToStatus(e *models.SearchError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	default:
		return http.StatusInternalServerError // 500
	}
}
