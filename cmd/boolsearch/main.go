package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	logLevel      string
	selectorsFile string
)

var rootCmd = &cobra.Command{
	Use:   "boolsearch",
	Short: "Scoped single-result web search API",
	Long: `boolsearch runs a site-restricted exact-phrase search on Qwant in a
headless browser and returns the first organic result.

Modes:
  boolsearch            Run the HTTP API (default)
  boolsearch serve      Run the HTTP API
  boolsearch extract    Run the extractor over a saved results page`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "",
		"Log level: debug, info, warn, error (overrides BOOLSEARCH_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&selectorsFile, "selectors", "",
		"YAML selector table override (overrides BOOLSEARCH_SELECTORS_FILE)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(extractCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
