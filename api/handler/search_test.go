package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/boolsearch/models"
	"github.com/use-agent/boolsearch/search"
)

type stubSearcher struct {
	outcome search.Outcome
	calls   int
	got     models.SearchRequest
}

func (s *stubSearcher) Search(_ context.Context, req models.SearchRequest) search.Outcome {
	s.calls++
	s.got = req
	return s.outcome
}

func init() {
	gin.SetMode(gin.TestMode)
}

func doSearch(t *testing.T, s Searcher, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := gin.New()
	r.POST("/api/search", Search(s, "Qwant"))

	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got), w.Body.String())
	return w, got
}

func TestSearch_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing domain", `{"query":"foo"}`},
		{"blank query", `{"domain":"example.com","query":"  "}`},
		{"empty object", `{}`},
		{"not json", `domain=example.com`},
		{"wrong type", `{"domain":42,"query":"foo"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &stubSearcher{}
			w, got := doSearch(t, s, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, got["error"])
			assert.Equal(t, 0, s.calls, "no search may run for invalid input")
		})
	}
}

func TestSearch_Success(t *testing.T) {
	s := &stubSearcher{outcome: search.Classify(search.ExtractionResult{
		Title: "T",
		URL:   "https://example.com/t",
	}, nil)}

	w, got := doSearch(t, s, `{"domain":"example.com.*","query":"foo"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "T", got["title"])
	assert.Equal(t, "https://example.com/t", got["url"])
	assert.Equal(t, "", got["description"])
	assert.Contains(t, got, "error")
	assert.Nil(t, got["error"])
	assert.NotContains(t, got, "code")
	assert.Equal(t, models.SearchRequest{Domain: "example.com.*", Query: "foo"}, s.got)
}

func TestSearch_Empty(t *testing.T) {
	s := &stubSearcher{outcome: search.Classify(search.ExtractionResult{Description: "D"}, nil)}

	w, got := doSearch(t, s, `{"domain":"example.com","query":"foo"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", got["url"])
	assert.Equal(t, "", got["title"])
	assert.Equal(t, "", got["description"])
	assert.Equal(t, "no results found on Qwant", got["error"])
}

func TestSearch_Failure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "typed",
			err:      models.NewSearchError(models.ErrCodeNavigation, "navigation to search page failed", errors.New("net::ERR_NAME_NOT_RESOLVED")),
			wantCode: models.ErrCodeNavigation,
		},
		{
			name:     "wrapped typed",
			err:      errors.Join(models.NewSearchError(models.ErrCodeTimeout, "timed out", nil)),
			wantCode: models.ErrCodeTimeout,
		},
		{
			name:     "untyped",
			err:      errors.New("target closed"),
			wantCode: models.ErrCodeInternal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &stubSearcher{outcome: search.Classify(search.ExtractionResult{}, tt.err)}

			w, got := doSearch(t, s, `{"domain":"example.com","query":"foo"}`)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, "", got["url"])
			assert.Equal(t, "", got["title"])
			assert.Equal(t, "", got["description"])
			assert.Equal(t, tt.err.Error(), got["error"])
			assert.Equal(t, tt.wantCode, got["code"])
		})
	}
}

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/", Health())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","message":"Boolean Search API is running"}`, w.Body.String())
}
