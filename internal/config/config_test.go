package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "downloads", cfg.DownloadDir)
	assert.Equal(t, 3, cfg.MaxConcurrentJobs)
	assert.Equal(t, 10, cfg.SearchLimit)
	assert.NotEmpty(t, cfg.UserAgent)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("MAX_CONCURRENT_JOBS", "5")
	t.Setenv("SEARCH_LIMIT", "25")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, 5, cfg.MaxConcurrentJobs)
	assert.Equal(t, 25, cfg.SearchLimit)
}

func TestValidate_RepairsBadValues(t *testing.T) {
	t.Setenv("MAX_CONCURRENT_JOBS", "-2")
	t.Setenv("SEARCH_LIMIT", "0")

	cfg := Load()

	assert.Equal(t, 3, cfg.MaxConcurrentJobs)
	assert.Equal(t, 10, cfg.SearchLimit)
}

func TestValidate_DropsMissingCookieFile(t *testing.T) {
	t.Setenv("COOKIE_FILE", "/definitely/not/there/cookies.txt")

	cfg := Load()

	assert.Empty(t, cfg.CookieFile)
}
