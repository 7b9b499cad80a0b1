package models

// SearchResponse is the response for POST /api/search.
//
// The same shape is used for a found result, an empty result and a
// failure; only Error (and the HTTP status) tell them apart.
type SearchResponse struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// Error is null on success, the no-result message on an empty result and
	// the failure description otherwise.
	Error *string `json:"error"`

	// Code is the machine-readable failure code. Omitted unless the search failed.
	Code string `json:"code,omitempty"`
}

// ErrorResponse is returned for rejected requests (400).
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the response for GET /.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
