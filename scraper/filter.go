package scraper

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/boolsearch/engine"
)

// resourceTypes maps config names to protocol resource types.
var resourceTypes = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
	"Script":     proto.NetworkResourceTypeScript,
	"XHR":        proto.NetworkResourceTypeXHR,
	"Fetch":      proto.NetworkResourceTypeFetch,
	"Other":      proto.NetworkResourceTypeOther,
}

// trackerHosts are ad and tracking hosts aborted when tracker blocking is
// enabled. A host matches itself and every subdomain.
var trackerHosts = map[string]struct{}{
	"doubleclick.net":                {},
	"googlesyndication.com":          {},
	"googleadservices.com":           {},
	"google-analytics.com":           {},
	"googletagmanager.com":           {},
	"googletagservices.com":          {},
	"facebook.net":                   {},
	"connect.facebook.net":           {},
	"facebook.com":                   {},
	"fbcdn.net":                      {},
	"adnxs.com":                      {},
	"adsrvr.org":                     {},
	"amazon-adsystem.com":            {},
	"criteo.com":                     {},
	"criteo.net":                     {},
	"outbrain.com":                   {},
	"taboola.com":                    {},
	"moatads.com":                    {},
	"pubmatic.com":                   {},
	"rubiconproject.com":             {},
	"scorecardresearch.com":          {},
	"quantserve.com":                 {},
	"hotjar.com":                     {},
	"mixpanel.com":                   {},
	"segment.io":                     {},
	"segment.com":                    {},
	"analytics.twitter.com":          {},
	"ads-twitter.com":                {},
	"static.ads-twitter.com":         {},
	"chartbeat.com":                  {},
	"chartbeat.net":                  {},
	"optimizely.com":                 {},
	"zedo.com":                       {},
	"media.net":                      {},
	"contextweb.com":                 {},
	"bidswitch.net":                  {},
	"openx.net":                      {},
	"casalemedia.com":                {},
	"demdex.net":                     {},
	"krxd.net":                       {},
	"bluekai.com":                    {},
	"exelator.com":                   {},
	"turn.com":                       {},
	"mathtag.com":                    {},
	"serving-sys.com":                {},
	"eyeota.net":                     {},
	"agkn.com":                       {},
	"rlcdn.com":                      {},
	"sharethis.com":                  {},
	"addthis.com":                    {},
	"consensu.org":                   {},
}

// isTrackerHost reports whether host or any of its parent domains is in
// trackerHosts, e.g. "pagead2.googlesyndication.com".
func isTrackerHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for host != "" {
		if _, ok := trackerHosts[host]; ok {
			return true
		}
		idx := strings.IndexByte(host, '.')
		if idx < 0 {
			return false
		}
		host = host[idx+1:]
	}
	return false
}

// ResourceFilter aborts page requests that cannot contribute text to the
// results list. It holds no per-page state and may be shared.
type ResourceFilter struct {
	blocked       map[proto.NetworkResourceType]struct{}
	blockTrackers bool
}

// NewResourceFilter builds a filter blocking the named resource types
// (see resourceTypes). Unknown names are rejected so a typo in the
// configuration does not silently let images through.
func NewResourceFilter(blockedTypes []string, blockTrackers bool) (*ResourceFilter, error) {
	blocked := make(map[proto.NetworkResourceType]struct{}, len(blockedTypes))
	for _, name := range blockedTypes {
		rt, ok := resourceTypes[name]
		if !ok {
			return nil, fmt.Errorf("resource filter: unknown resource type %q", name)
		}
		blocked[rt] = struct{}{}
	}
	return &ResourceFilter{blocked: blocked, blockTrackers: blockTrackers}, nil
}

// Allow reports whether a request of type t may proceed.
func (f *ResourceFilter) Allow(t proto.NetworkResourceType) bool {
	_, blocked := f.blocked[t]
	return !blocked
}

// Handle decides one intercepted request: abort or continue unmodified.
func (f *ResourceFilter) Handle(req engine.Request) {
	if !f.Allow(req.Type()) {
		req.Abort()
		return
	}
	if f.blockTrackers {
		if u, err := url.Parse(req.URL()); err == nil && isTrackerHost(u.Hostname()) {
			slog.Debug("resource filter: tracker blocked", "host", u.Hostname())
			req.Abort()
			return
		}
	}
	req.Continue()
}

// Attach installs the filter on page. Attaching to a page that already
// intercepts is a no-op.
func (f *ResourceFilter) Attach(page engine.Page) error {
	return page.Intercept(f.Handle)
}
