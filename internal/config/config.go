package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// defaultUserAgent is sent to the remote service with every engine call;
// some extractors reject requests without a browser-looking agent.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Config holds all server settings in correct types
type Config struct {
	Port              string
	DownloadDir       string
	MaxConcurrentJobs int
	SearchLimit       int
	CleanupAfter      time.Duration
	CookieFile        string
	UserAgent         string
	LogLevel          string
	LogFormat         string
}

// Load: the only way to get config in the app
func Load() *Config {
	cfg := &Config{
		Port:              getEnv("PORT", ":8080"),
		DownloadDir:       getEnv("DOWNLOAD_DIR", "downloads"),
		MaxConcurrentJobs: getEnvAsInt("MAX_CONCURRENT_JOBS", 3),
		SearchLimit:       getEnvAsInt("SEARCH_LIMIT", 10),
		CleanupAfter:      time.Duration(getEnvAsInt("CLEAN_UP_AFTER_MINUTES", 15)) * time.Minute,
		CookieFile:        getEnv("COOKIE_FILE", "cookies.txt"),
		UserAgent:         getEnv("USER_AGENT", defaultUserAgent),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
	}

	validate(cfg)

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	str := getEnv(key, "")
	if val, err := strconv.Atoi(str); err == nil {
		return val
	}
	return fallback
}

// validate ensures the server won't crash due to misconfiguration
func validate(cfg *Config) {
	if cfg.MaxConcurrentJobs < 1 {
		log.Println("Warning: MAX_CONCURRENT_JOBS must be at least 1. Resetting to 3.")
		cfg.MaxConcurrentJobs = 3
	}
	if cfg.SearchLimit < 1 {
		cfg.SearchLimit = 10
	}
	// The cookie file is optional; drop the setting when the file is absent
	// so the engine is not pointed at a path that does not exist.
	if cfg.CookieFile != "" {
		if _, err := os.Stat(cfg.CookieFile); err != nil {
			cfg.CookieFile = ""
		}
	}
}
