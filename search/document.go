package search

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Document is a DOM over a static HTML snapshot. Hrefs are resolved
// against the base URL the snapshot was taken from, matching what a
// browser reports for anchor.href.
type Document struct {
	doc  *goquery.Document
	base *url.URL
}

// NewDocument parses r as HTML. baseURL may be empty, in which case
// relative hrefs are returned unchanged.
func NewDocument(r io.Reader, baseURL string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("document: parse html: %w", err)
	}

	var base *url.URL
	if baseURL != "" {
		if base, err = url.Parse(baseURL); err != nil {
			return nil, fmt.Errorf("document: parse base url: %w", err)
		}
	}

	return &Document{doc: goquery.NewDocumentFromNode(root), base: base}, nil
}

// NewDocumentFromString is NewDocument over an in-memory string.
func NewDocumentFromString(rawHTML, baseURL string) (*Document, error) {
	return NewDocument(strings.NewReader(rawHTML), baseURL)
}

func (d *Document) first(selector string) (*goquery.Selection, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("document: selector %q: %w", selector, err)
	}
	return d.doc.FindMatcher(sel).First(), nil
}

// Text implements DOM.
func (d *Document) Text(_ context.Context, selector string) (string, bool, error) {
	s, err := d.first(selector)
	if err != nil {
		return "", false, err
	}
	if s.Length() == 0 {
		return "", false, nil
	}
	return strings.TrimSpace(s.Text()), true, nil
}

// Href implements DOM.
func (d *Document) Href(_ context.Context, selector string) (string, bool, error) {
	s, err := d.first(selector)
	if err != nil {
		return "", false, err
	}
	if s.Length() == 0 {
		return "", false, nil
	}

	// Non-anchor nodes have no href property; the browser reports undefined.
	raw, ok := s.Attr("href")
	if !ok {
		return "", true, nil
	}
	raw = strings.TrimSpace(raw)
	if d.base == nil {
		return raw, true, nil
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw, true, nil
	}
	return d.base.ResolveReference(ref).String(), true, nil
}
