package search

import (
	"fmt"
	"os"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

// SelectorTable maps each extracted field to its ordered selector
// candidates. The first candidate matching a node wins, so current markup
// goes first and generic fallbacks last.
type SelectorTable struct {
	Title       []string `yaml:"title"`
	URL         []string `yaml:"url"`
	Description []string `yaml:"description"`
}

// DefaultSelectors targets the Qwant web results page. Its class names are
// generated and rotate between front-end releases; the data-testid and
// structural candidates cover the gaps.
var DefaultSelectors = SelectorTable{
	Title: []string{
		".gW4ak span",
		`[data-testid="webResult"] [data-testid="serTitle"]`,
		`[data-testid="webResult"] h2`,
		`[data-testid="webResult"] a span`,
		"article h2",
	},
	URL: []string{
		".Fqopp a",
		`[data-testid="webResult"] a[data-testid="serTitle"]`,
		`[data-testid="webResult"] a[href^="http"]`,
		`article a[href^="http"]`,
	},
	Description: []string{
		"div.aVNer",
		`[data-testid="webResult"] [data-testid="serDescription"]`,
		`[data-testid="webResult"] p`,
		"article p",
	},
}

// Validate checks that every field has at least one candidate and that
// each candidate is a parseable CSS selector.
func (t SelectorTable) Validate() error {
	fields := []struct {
		name  string
		cands []string
	}{
		{"title", t.Title},
		{"url", t.URL},
		{"description", t.Description},
	}
	for _, f := range fields {
		if len(f.cands) == 0 {
			return fmt.Errorf("selectors: %s has no candidates", f.name)
		}
		for i, sel := range f.cands {
			if _, err := cascadia.Compile(sel); err != nil {
				return fmt.Errorf("selectors: %s[%d] %q: %w", f.name, i, sel, err)
			}
		}
	}
	return nil
}

// LoadSelectorTable reads a YAML selector table from path. Fields omitted
// from the file keep their DefaultSelectors candidates.
func LoadSelectorTable(path string) (SelectorTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SelectorTable{}, fmt.Errorf("selectors: read %s: %w", path, err)
	}

	var override SelectorTable
	if err := yaml.Unmarshal(data, &override); err != nil {
		return SelectorTable{}, fmt.Errorf("selectors: parse %s: %w", path, err)
	}

	table := DefaultSelectors
	if len(override.Title) > 0 {
		table.Title = override.Title
	}
	if len(override.URL) > 0 {
		table.URL = override.URL
	}
	if len(override.Description) > 0 {
		table.Description = override.Description
	}

	if err := table.Validate(); err != nil {
		return SelectorTable{}, err
	}
	return table, nil
}
