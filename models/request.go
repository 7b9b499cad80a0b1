package models

import "strings"

// SearchRequest is the payload for POST /api/search.
type SearchRequest struct {
	// Domain restricts the search to one site, e.g. "wikipedia.org" or
	// "example.com.*". Required.
	Domain string `json:"domain"`

	// Query is searched as an exact phrase. Required.
	Query string `json:"query"`
}

// Validate rejects requests whose domain or query is empty after trimming.
func (r SearchRequest) Validate() error {
	if strings.TrimSpace(r.Domain) == "" || strings.TrimSpace(r.Query) == "" {
		return NewSearchError(ErrCodeInvalidInput, "domain and query are required", nil)
	}
	return nil
}
