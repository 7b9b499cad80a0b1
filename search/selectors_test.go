package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSelectorsValid(t *testing.T) {
	require.NoError(t, DefaultSelectors.Validate())
}

func TestSelectorTable_Validate(t *testing.T) {
	missing := DefaultSelectors
	missing.URL = nil
	assert.ErrorContains(t, missing.Validate(), "url has no candidates")

	broken := DefaultSelectors
	broken.Description = []string{"p", "p[[["}
	assert.ErrorContains(t, broken.Validate(), "description[1]")
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSelectorTable_MergesOntoDefaults(t *testing.T) {
	path := writeFile(t, `
title:
  - "div.result h3"
  - "h3"
`)

	table, err := LoadSelectorTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"div.result h3", "h3"}, table.Title)
	assert.Equal(t, DefaultSelectors.URL, table.URL)
	assert.Equal(t, DefaultSelectors.Description, table.Description)
}

func TestLoadSelectorTable_Errors(t *testing.T) {
	_, err := LoadSelectorTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadSelectorTable(writeFile(t, "title: [unclosed"))
	assert.ErrorContains(t, err, "parse")

	_, err = LoadSelectorTable(writeFile(t, `url: ["a[href"]`))
	assert.Error(t, err)
}
