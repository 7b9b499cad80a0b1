package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("BOOLSEARCH_PORT", "")

	cfg := Load()

	assert.Equal(t, 10000, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.True(t, cfg.Browser.Headless)
	assert.True(t, cfg.Browser.Stealth)
	assert.Equal(t, 30*time.Second, cfg.Browser.LaunchTimeout)
	assert.Equal(t, 4, cfg.Browser.MaxSessions)
	assert.Equal(t, DefaultUserAgent, cfg.Browser.UserAgent)
	assert.Equal(t, "Qwant", cfg.Search.EngineName)
	assert.Equal(t, 30*time.Second, cfg.Search.NavigationTimeout)
	assert.Equal(t, 3*time.Second, cfg.Search.RenderDelay)
	assert.Equal(t, 10*time.Second, cfg.Search.MarkerTimeout)
	assert.Equal(t, []string{"Image", "Stylesheet", "Font", "Media"}, cfg.Search.BlockedResourceTypes)
	assert.False(t, cfg.Search.BlockTrackers)
	assert.False(t, cfg.Search.DismissOverlays)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("BOOLSEARCH_HEADLESS", "false")
	t.Setenv("BOOLSEARCH_MAX_SESSIONS", "0")
	t.Setenv("BOOLSEARCH_NAV_TIMEOUT", "45s")
	t.Setenv("BOOLSEARCH_BLOCKED_RESOURCES", "Image, Font ,,")
	t.Setenv("BOOLSEARCH_CORS_ORIGINS", "https://app.example.com")
	t.Setenv("BOOLSEARCH_BLOCK_TRACKERS", "true")

	cfg := Load()

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 0, cfg.Browser.MaxSessions)
	assert.Equal(t, 45*time.Second, cfg.Search.NavigationTimeout)
	assert.Equal(t, []string{"Image", "Font"}, cfg.Search.BlockedResourceTypes)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Search.BlockTrackers)
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("BOOLSEARCH_PORT", "9000")
	assert.Equal(t, 9000, Load().Server.Port)

	// PORT wins when both are set.
	t.Setenv("PORT", "9100")
	assert.Equal(t, 9100, Load().Server.Port)
}

func TestEnvHelpers_IgnoreMalformed(t *testing.T) {
	t.Setenv("BOOLSEARCH_TEST_INT", "ten")
	t.Setenv("BOOLSEARCH_TEST_BOOL", "maybe")
	t.Setenv("BOOLSEARCH_TEST_DUR", "5")

	assert.Equal(t, 7, envIntOr("BOOLSEARCH_TEST_INT", 7))
	assert.True(t, envBoolOr("BOOLSEARCH_TEST_BOOL", true))
	assert.Equal(t, time.Second, envDurationOr("BOOLSEARCH_TEST_DUR", time.Second))
}
