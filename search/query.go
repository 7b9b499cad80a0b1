// Package search holds the engine-independent core of a scoped search:
// query construction, the selector decision table, field extraction and
// outcome classification.
package search

import (
	"net/url"
	"strings"
)

// BuildScopedQuery normalizes domain and combines it with query into a
// site-restricted exact-phrase search string:
//
//	site:<domain> "<query>"
//
// Exactly one trailing wildcard marker is stripped from domain, checked in
// the order ".*", "*", "." before trimming whitespace.
func BuildScopedQuery(domain, query string) string {
	switch {
	case strings.HasSuffix(domain, ".*"):
		domain = strings.TrimSuffix(domain, ".*")
	case strings.HasSuffix(domain, "*"):
		domain = strings.TrimSuffix(domain, "*")
	case strings.HasSuffix(domain, "."):
		domain = strings.TrimSuffix(domain, ".")
	}
	domain = strings.TrimSpace(domain)

	return "site:" + domain + ` "` + query + `"`
}

// SearchURL appends the scoped query to the engine base URL as the q
// parameter and requests the web vertical (t=web).
func SearchURL(base, scoped string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?q=" + url.QueryEscape(scoped) + "&t=web"
	}
	q := u.Query()
	q.Set("q", scoped)
	q.Set("t", "web")
	u.RawQuery = q.Encode()
	return u.String()
}
