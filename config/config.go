package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Browser BrowserConfig
	Search  SearchConfig
	CORS    CORSConfig
	Log     LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 10000 (PORT)
	Mode string // "debug", "release", "test"; default: "release"

	// ShutdownTimeout bounds how long in-flight searches may drain on shutdown.
	ShutdownTimeout time.Duration // default: 10s
}

// BrowserConfig controls how each per-request browser session is launched.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in containers).
	NoSandbox bool // default: true

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// LaunchTimeout bounds process start + CDP connect + page creation.
	LaunchTimeout time.Duration // default: 30s

	// UserAgent is the fixed desktop user agent set on every page.
	UserAgent string

	// Stealth applies go-rod/stealth patches before navigation.
	Stealth bool // default: true

	// ViewportWidth and ViewportHeight size the emulated desktop window.
	ViewportWidth  int // default: 1920
	ViewportHeight int // default: 1080

	// MaxSessions caps simultaneous browser sessions. 0 means unbounded.
	MaxSessions int // default: 4
}

// SearchConfig controls navigation, waits and extraction.
type SearchConfig struct {
	// EngineName is used in the no-result message.
	EngineName string // default: "Qwant"

	// BaseURL is the search engine endpoint; the scoped query is appended as q=.
	BaseURL string // default: "https://www.qwant.com/"

	// NavigationTimeout is the deadline for reaching DOMContentLoaded.
	NavigationTimeout time.Duration // default: 30s

	// RenderDelay is the fixed pause after DOMContentLoaded for client rendering.
	RenderDelay time.Duration // default: 3s

	// ResultsMarker is the selector whose appearance signals rendered results.
	ResultsMarker string

	// MarkerTimeout bounds the results-marker wait. Expiry is not an error.
	MarkerTimeout time.Duration // default: 10s

	// DismissOverlays removes cookie banners and other fixed overlays
	// before extraction.
	DismissOverlays bool // default: false

	// BlockedResourceTypes lists resource types aborted by the resource filter.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string

	// BlockTrackers additionally aborts requests to known ad and tracking
	// hosts, whatever their resource type.
	BlockTrackers bool // default: false

	// SelectorsFile optionally points at a YAML selector table override.
	SelectorsFile string
}

// CORSConfig controls which browser origins may call the API.
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// DefaultUserAgent is a current desktop Chrome on Windows.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultResultsMarker matches the title node of the first rendered web result.
const DefaultResultsMarker = `.gW4ak span, [data-testid="webResult"]`

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is honoured when present; variables
// already set in the environment win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("config: failed to read .env", "error", err)
	}

	return &Config{
		Server: ServerConfig{
			Host:            envOr("BOOLSEARCH_HOST", "0.0.0.0"),
			Port:            envIntOr("PORT", envIntOr("BOOLSEARCH_PORT", 10000)),
			Mode:            envOr("BOOLSEARCH_MODE", "release"),
			ShutdownTimeout: envDurationOr("BOOLSEARCH_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("BOOLSEARCH_HEADLESS", true),
			NoSandbox:      envBoolOr("BOOLSEARCH_NO_SANDBOX", true),
			BrowserBin:     os.Getenv("BOOLSEARCH_BROWSER_BIN"),
			LaunchTimeout:  envDurationOr("BOOLSEARCH_LAUNCH_TIMEOUT", 30*time.Second),
			UserAgent:      envOr("BOOLSEARCH_USER_AGENT", DefaultUserAgent),
			Stealth:        envBoolOr("BOOLSEARCH_STEALTH", true),
			ViewportWidth:  envIntOr("BOOLSEARCH_VIEWPORT_WIDTH", 1920),
			ViewportHeight: envIntOr("BOOLSEARCH_VIEWPORT_HEIGHT", 1080),
			MaxSessions:    envIntOr("BOOLSEARCH_MAX_SESSIONS", 4),
		},
		Search: SearchConfig{
			EngineName:        envOr("BOOLSEARCH_ENGINE_NAME", "Qwant"),
			BaseURL:           envOr("BOOLSEARCH_ENGINE_URL", "https://www.qwant.com/"),
			NavigationTimeout: envDurationOr("BOOLSEARCH_NAV_TIMEOUT", 30*time.Second),
			RenderDelay:       envDurationOr("BOOLSEARCH_RENDER_DELAY", 3*time.Second),
			ResultsMarker:     envOr("BOOLSEARCH_RESULTS_MARKER", DefaultResultsMarker),
			MarkerTimeout:     envDurationOr("BOOLSEARCH_MARKER_TIMEOUT", 10*time.Second),
			DismissOverlays:   envBoolOr("BOOLSEARCH_DISMISS_OVERLAYS", false),
			BlockedResourceTypes: envSliceOr("BOOLSEARCH_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
			BlockTrackers: envBoolOr("BOOLSEARCH_BLOCK_TRACKERS", false),
			SelectorsFile: os.Getenv("BOOLSEARCH_SELECTORS_FILE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: envSliceOr("BOOLSEARCH_CORS_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost:5173",
			}),
		},
		Log: LogConfig{
			Level:  envOr("BOOLSEARCH_LOG_LEVEL", "info"),
			Format: envOr("BOOLSEARCH_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
