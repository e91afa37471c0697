package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"LLM_MODEL", "INCLUDE_COST", "HTTP_ADDR", "SETTLE_DELAY", "FIXED_SITE_URL", "HEADLESS", "MAX_PAGE_CHARS"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, DefaultModel, cfg.LLMModel)
	assert.True(t, cfg.IncludeCost)
	assert.True(t, cfg.Headless)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, 1500*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, DefaultFixedSiteURL, cfg.FixedSiteURL)
	assert.Equal(t, 6000, cfg.MaxPageChars)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("LLM_MODEL", "gpt-4o")
	t.Setenv("INCLUDE_COST", "false")
	t.Setenv("SETTLE_DELAY", "250ms")
	t.Setenv("NAVIGATION_TIMEOUT", "12")
	t.Setenv("MAX_PAGE_CHARS", "-4")

	cfg := LoadConfig()

	assert.Equal(t, "gpt-4o", cfg.LLMModel)
	assert.False(t, cfg.IncludeCost)
	assert.Equal(t, 250*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, 12*time.Second, cfg.NavigationTimeout)
	assert.Equal(t, 6000, cfg.MaxPageChars, "non-positive values fall back")
}

func TestGetEnvDurationRejectsGarbage(t *testing.T) {
	t.Setenv("SETTLE_DELAY", "soon")
	assert.Equal(t, time.Second, getEnvDuration("SETTLE_DELAY", time.Second))
}
