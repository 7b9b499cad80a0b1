// Package enginetest provides an in-memory engine.Engine whose pages serve
// a fixed HTML document, so the search pipeline can be exercised without a
// browser binary.
package enginetest

import (
	"context"
	"sync"

	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/boolsearch/engine"
	"github.com/use-agent/boolsearch/search"
)

// Engine is a scriptable engine.Engine. Set the exported fields before
// the first Launch; they are read without locking afterwards.
type Engine struct {
	// HTML is the document every page loads on Navigate.
	HTML string

	// Requests are the sub-resource types a page issues through its
	// interceptor during Navigate, after the main document request.
	Requests []proto.NetworkResourceType

	// Failure injection per stage.
	LaunchErr   error
	NewPageErr  error
	NavigateErr error
	WaitErr     error
	QueryErr    error
	CloseErr    error

	// BlockLaunch makes Launch wait for ctx to end and return its error.
	BlockLaunch bool

	mu       sync.Mutex
	launches int
	closes   int
	live     int
	pages    []*Page
}

var _ engine.Engine = (*Engine)(nil)

// Launch implements engine.Engine.
func (e *Engine) Launch(ctx context.Context) (engine.Browser, error) {
	e.mu.Lock()
	e.launches++
	e.mu.Unlock()

	if e.BlockLaunch {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.LaunchErr != nil {
		return nil, e.LaunchErr
	}

	e.mu.Lock()
	e.live++
	e.mu.Unlock()
	return &Browser{eng: e}, nil
}

// Launches reports how many times Launch was called.
func (e *Engine) Launches() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.launches
}

// Closes reports how many times Browser.Close was called across all
// browsers of this engine.
func (e *Engine) Closes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closes
}

// Live reports how many launched browsers have not been closed.
func (e *Engine) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.live
}

// Pages returns every page opened so far, oldest first.
func (e *Engine) Pages() []*Page {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Page(nil), e.pages...)
}

// Browser is a fake engine.Browser.
type Browser struct {
	eng *Engine

	mu     sync.Mutex
	closed bool
}

// NewPage implements engine.Browser.
func (b *Browser) NewPage(ctx context.Context) (engine.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.eng.NewPageErr != nil {
		return nil, b.eng.NewPageErr
	}
	p := &Page{eng: b.eng}

	b.eng.mu.Lock()
	b.eng.pages = append(b.eng.pages, p)
	b.eng.mu.Unlock()
	return p, nil
}

// Close implements engine.Browser. Every call is counted; the browser only
// stops being live on the first.
func (b *Browser) Close() error {
	b.mu.Lock()
	first := !b.closed
	b.closed = true
	b.mu.Unlock()

	b.eng.mu.Lock()
	b.eng.closes++
	if first {
		b.eng.live--
	}
	b.eng.mu.Unlock()
	return b.eng.CloseErr
}

// Page is a fake engine.Page.
type Page struct {
	eng *Engine

	mu              sync.Mutex
	UserAgent       string
	Width, Height   int
	Stealth         bool
	Intercepts      int
	NavigatedURL    string
	WaitedFor       string
	OverlaysRemoved bool
	Aborted         []proto.NetworkResourceType
	Continued       []proto.NetworkResourceType

	handler func(engine.Request)
	doc     *search.Document
}

var _ engine.Page = (*Page)(nil)

func (p *Page) SetUserAgent(ua string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.UserAgent = ua
	return nil
}

func (p *Page) SetViewport(width, height int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Width, p.Height = width, height
	return nil
}

func (p *Page) ApplyStealth() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Stealth = true
	return nil
}

// Intercept implements engine.Page. Only the first handler is kept.
func (p *Page) Intercept(handler func(engine.Request)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Intercepts++
	if p.handler == nil {
		p.handler = handler
	}
	return nil
}

// Navigate issues the document request followed by Engine.Requests through
// the interceptor, then loads Engine.HTML with url as its base.
func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.eng.NavigateErr != nil {
		return p.eng.NavigateErr
	}

	p.mu.Lock()
	p.NavigatedURL = url
	handler := p.handler
	p.mu.Unlock()

	if handler != nil {
		types := append([]proto.NetworkResourceType{proto.NetworkResourceTypeDocument}, p.eng.Requests...)
		for _, t := range types {
			handler(&Request{page: p, typ: t, url: url})
		}
	}

	doc, err := search.NewDocumentFromString(p.eng.HTML, url)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.doc = doc
	p.mu.Unlock()
	return nil
}

func (p *Page) WaitElement(ctx context.Context, selector string) error {
	p.mu.Lock()
	p.WaitedFor = selector
	p.mu.Unlock()

	if p.eng.WaitErr != nil {
		return p.eng.WaitErr
	}
	_, found, err := p.Text(ctx, selector)
	if err != nil {
		return err
	}
	if !found {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (p *Page) RemoveOverlays(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.OverlaysRemoved = true
	return nil
}

func (p *Page) Text(ctx context.Context, selector string) (string, bool, error) {
	doc, err := p.document()
	if err != nil || doc == nil {
		return "", false, err
	}
	return doc.Text(ctx, selector)
}

func (p *Page) Href(ctx context.Context, selector string) (string, bool, error) {
	doc, err := p.document()
	if err != nil || doc == nil {
		return "", false, err
	}
	return doc.Href(ctx, selector)
}

func (p *Page) document() (*search.Document, error) {
	if p.eng.QueryErr != nil {
		return nil, p.eng.QueryErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc, nil
}

// Request is a fake intercepted request that records the decision on its
// page.
type Request struct {
	page *Page
	typ  proto.NetworkResourceType
	url  string
}

func (r *Request) Type() proto.NetworkResourceType { return r.typ }

func (r *Request) URL() string { return r.url }

func (r *Request) Abort() {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()
	r.page.Aborted = append(r.page.Aborted, r.typ)
}

func (r *Request) Continue() {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()
	r.page.Continued = append(r.page.Continued, r.typ)
}

// NewRequest builds a standalone request of the given type for exercising
// an interception handler directly. Its decision is recorded on page.
func NewRequest(page *Page, typ proto.NetworkResourceType, url string) *Request {
	return &Request{page: page, typ: typ, url: url}
}
