package search

import (
	"context"
	"fmt"
)

// ExtractionResult is the first organic result as read from the DOM.
// Any field may be empty.
type ExtractionResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// DOM answers single-node queries against a rendered document.
//
// Text returns the trimmed text content of the first node matching
// selector. Href returns the resolved absolute href of the first matching
// node. found is false when nothing matches; err is reserved for failures
// of the document itself, never for a missing node.
type DOM interface {
	Text(ctx context.Context, selector string) (value string, found bool, err error)
	Href(ctx context.Context, selector string) (value string, found bool, err error)
}

type queryFunc func(ctx context.Context, selector string) (string, bool, error)

// Extract walks the selector table field by field and returns the first
// match for each.
func Extract(ctx context.Context, dom DOM, table SelectorTable) (ExtractionResult, error) {
	var (
		res ExtractionResult
		err error
	)

	if res.Title, err = firstMatch(ctx, dom.Text, table.Title); err != nil {
		return ExtractionResult{}, fmt.Errorf("extract title: %w", err)
	}
	if res.URL, err = firstMatch(ctx, dom.Href, table.URL); err != nil {
		return ExtractionResult{}, fmt.Errorf("extract url: %w", err)
	}
	if res.Description, err = firstMatch(ctx, dom.Text, table.Description); err != nil {
		return ExtractionResult{}, fmt.Errorf("extract description: %w", err)
	}
	return res, nil
}

// firstMatch returns the value of the first candidate that matches a node
// with non-empty content. An empty match (e.g. a skeleton placeholder left
// by the page script) falls through to the next candidate.
func firstMatch(ctx context.Context, query queryFunc, candidates []string) (string, error) {
	for _, sel := range candidates {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		v, found, err := query(ctx, sel)
		if err != nil {
			return "", err
		}
		if found && v != "" {
			return v, nil
		}
	}
	return "", nil
}
