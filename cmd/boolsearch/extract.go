package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/use-agent/boolsearch/search"
)

var (
	extractFile    string
	extractBaseURL string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run the extractor over a saved results page",
	Long: `extract applies the selector table to an HTML snapshot of a results
page (for example one saved from the browser's devtools) and prints the
extracted fields and their classification. Use it to check a selector
override before deploying it.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractFile, "file", "f", "-", "HTML file to read, - for stdin")
	extractCmd.Flags().StringVar(&extractBaseURL, "base-url", "https://www.qwant.com/",
		"URL the snapshot was taken from, used to resolve relative links")
}

type extractOutput struct {
	Outcome string `json:"outcome"`
	search.ExtractionResult
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	// stdout carries the result.
	initLogger(cfg.Log, cmd.ErrOrStderr())

	selectors, err := loadSelectors(cfg.Search.SelectorsFile)
	if err != nil {
		return err
	}
	if err := selectors.Validate(); err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if extractFile != "-" {
		f, err := os.Open(extractFile)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	doc, err := search.NewDocument(r, extractBaseURL)
	if err != nil {
		return err
	}
	res, err := search.Extract(cmd.Context(), doc, selectors)
	outcome := search.Classify(res, err)
	if outcome.Kind == search.KindFailure {
		return fmt.Errorf("extract: %w", outcome.Err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(extractOutput{Outcome: outcome.Kind.String(), ExtractionResult: res})
}
