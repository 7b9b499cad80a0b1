package engine

import (
	"context"

	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/boolsearch/search"
)

// Engine launches browser instances. Every search session gets its own
// instance; nothing is pooled or shared between sessions.
type Engine interface {
	// Launch starts a browser process and connects to it. On error no
	// process is left running.
	Launch(ctx context.Context) (Browser, error)
}

// Browser is one running browser process.
type Browser interface {
	// NewPage opens a blank tab.
	NewPage(ctx context.Context) (Page, error)

	// Close terminates the process and everything it owns. It is safe to
	// call on a browser that has already crashed.
	Close() error
}

// Page is a single tab. It also answers DOM queries against whatever
// document is currently loaded.
type Page interface {
	search.DOM

	SetUserAgent(ua string) error
	SetViewport(width, height int) error

	// ApplyStealth installs the anti-automation-detection patches for all
	// documents loaded after the call.
	ApplyStealth() error

	// Intercept routes every outgoing request of the page through handler.
	// Calling it again while interception is active is a no-op.
	Intercept(handler func(Request)) error

	// Navigate loads url and returns once the document has been parsed
	// (DOMContentLoaded), without waiting for the network to settle.
	Navigate(ctx context.Context, url string) error

	// WaitElement blocks until selector matches a node or ctx is done.
	WaitElement(ctx context.Context, selector string) error

	// RemoveOverlays deletes fixed and sticky positioned overlays such as
	// cookie consent banners from the current document.
	RemoveOverlays(ctx context.Context) error
}

// Request is an intercepted outgoing request. Exactly one of Abort or
// Continue must be called.
type Request interface {
	Type() proto.NetworkResourceType
	URL() string
	Abort()
	Continue()
}
