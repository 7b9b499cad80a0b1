package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/use-agent/boolsearch/api"
	"github.com/use-agent/boolsearch/config"
	"github.com/use-agent/boolsearch/engine"
	"github.com/use-agent/boolsearch/scraper"
	"github.com/use-agent/boolsearch/search"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := loadConfig()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log, os.Stdout)
	slog.Info("boolsearch starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"engine", cfg.Search.EngineName,
		"maxSessions", cfg.Browser.MaxSessions,
	)

	// ── 3. Load selector table ──────────────────────────────────────
	selectors, err := loadSelectors(cfg.Search.SelectorsFile)
	if err != nil {
		return err
	}

	// ── 4. Initialise scraper (browsers start per request) ──────────
	sc, err := scraper.NewScraper(engine.NewRodEngine(cfg.Browser), cfg.Browser, cfg.Search, selectors)
	if err != nil {
		return fmt.Errorf("initialise scraper: %w", err)
	}

	// ── 5. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(sc, cfg)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("HTTP server: %w", err)
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig.String())
	}

	// In-flight searches keep their own browser until they finish or the
	// drain timeout cancels them.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err, "activeSessions", sc.ActiveSessions())
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("boolsearch stopped")
	return nil
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig() *config.Config {
	cfg := config.Load()
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if selectorsFile != "" {
		cfg.Search.SelectorsFile = selectorsFile
	}
	return cfg
}

func loadSelectors(path string) (search.SelectorTable, error) {
	if path == "" {
		return search.DefaultSelectors, nil
	}
	table, err := search.LoadSelectorTable(path)
	if err != nil {
		return search.SelectorTable{}, err
	}
	slog.Info("selector table loaded", "path", path)
	return table, nil
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig, w io.Writer) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}
