package search

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildScopedQuery(t *testing.T) {
	tests := []struct {
		domain string
		query  string
		want   string
	}{
		{"example.com.*", "foo", `site:example.com "foo"`},
		{"example.com*", "foo", `site:example.com "foo"`},
		{"example.com.", "foo", `site:example.com "foo"`},
		{"example.com", "foo", `site:example.com "foo"`},
		{"  example.com  ", "foo", `site:example.com "foo"`},
		{"wikipedia.org", "turing award", `site:wikipedia.org "turing award"`},
		// Only one marker is stripped.
		{"example.com..", "foo", `site:example.com. "foo"`},
		{"example.com.**", "foo", `site:example.com.* "foo"`},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildScopedQuery(tt.domain, tt.query))
		})
	}
}

func TestSearchURL(t *testing.T) {
	got := SearchURL("https://www.qwant.com/", `site:example.com "a&b"`)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "www.qwant.com", u.Host)
	assert.Equal(t, `site:example.com "a&b"`, u.Query().Get("q"))
	assert.Equal(t, "web", u.Query().Get("t"))
}

func TestSearchURL_KeepsBaseParams(t *testing.T) {
	got := SearchURL("https://www.qwant.com/?l=en", "q")

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "en", u.Query().Get("l"))
	assert.Equal(t, "q", u.Query().Get("q"))
}
