package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/boolsearch/config"
	"github.com/use-agent/boolsearch/engine/enginetest"
	"github.com/use-agent/boolsearch/models"
	"github.com/use-agent/boolsearch/scraper"
	"github.com/use-agent/boolsearch/search"
)

const wikiResults = `<html><body>
<div data-testid="webResult">
  <h2 data-testid="serTitle">Turing Award</h2>
  <a data-testid="serTitle" href="/wiki/Turing_Award">Turing Award</a>
  <p data-testid="serDescription">Annual prize of the ACM.</p>
</div>
</body></html>`

func testRouter(t *testing.T, eng *enginetest.Engine) *gin.Engine {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		Browser: config.BrowserConfig{
			LaunchTimeout: time.Second,
			UserAgent:     config.DefaultUserAgent,
			MaxSessions:   1,
		},
		Search: config.SearchConfig{
			EngineName:           "Qwant",
			BaseURL:              "https://www.qwant.com/",
			NavigationTimeout:    time.Second,
			ResultsMarker:        config.DefaultResultsMarker,
			MarkerTimeout:        20 * time.Millisecond,
			BlockedResourceTypes: []string{"Image", "Stylesheet", "Font", "Media"},
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	sc, err := scraper.NewScraper(eng, cfg.Browser, cfg.Search, search.DefaultSelectors)
	require.NoError(t, err)
	return NewRouter(sc, cfg)
}

func TestSearchEndToEnd(t *testing.T) {
	eng := &enginetest.Engine{HTML: wikiResults}
	r := testRouter(t, eng)

	req := httptest.NewRequest(http.MethodPost, "/api/search",
		strings.NewReader(`{"domain":"wikipedia.org","query":"turing award"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.Error)
	assert.Equal(t, "Turing Award", resp.Title)
	assert.Equal(t, "Annual prize of the ACM.", resp.Description)

	// The relative href is resolved against the results page.
	u, err := url.Parse(resp.URL)
	require.NoError(t, err)
	assert.True(t, u.IsAbs(), resp.URL)
	assert.Equal(t, "https://www.qwant.com/wiki/Turing_Award", resp.URL)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, 1, eng.Closes())
}

func TestSearchValidationNeverLaunches(t *testing.T) {
	eng := &enginetest.Engine{HTML: wikiResults}
	r := testRouter(t, eng)

	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"domain":"","query":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"domain and query are required"}`, w.Body.String())
	assert.Equal(t, 0, eng.Launches())
}

func TestRequestIDPropagated(t *testing.T) {
	r := testRouter(t, &enginetest.Engine{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	r := testRouter(t, &enginetest.Engine{})

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/search", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	allowed := preflight("http://localhost:3000")
	assert.Equal(t, "http://localhost:3000", allowed.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", allowed.Header().Get("Access-Control-Allow-Credentials"))

	denied := preflight("https://evil.example")
	assert.Equal(t, http.StatusForbidden, denied.Code)
	assert.Empty(t, denied.Header().Get("Access-Control-Allow-Origin"))
}
