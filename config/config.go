package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent search runs).
	MaxPages int // default: 4

	// DefaultProxy is the proxy URL for all requests.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// ScraperConfig controls the search run against the registration database.
type ScraperConfig struct {
	// BaseURL is the registration database query endpoint.
	BaseURL string

	// MaxTimeout is the maximum allowed run timeout from the client.
	MaxTimeout time.Duration // default: 30m

	// NavigationTimeout bounds initial navigation and the post-submit settle.
	NavigationTimeout time.Duration // default: 30s

	// OverlayTimeout bounds the wait for the detail overlay to appear
	// (and to disappear again after closing).
	OverlayTimeout time.Duration // default: 10s

	// RowTimeout bounds the wait for a result row's detail link. A row
	// absent within this window ends the page; it is not an error.
	RowTimeout time.Duration // default: 5s

	// PaginationTimeout bounds the wait for the pagination control region
	// and for the active-page indicator to advance after clicking next.
	PaginationTimeout time.Duration // default: 10s

	// MaxRowsPerPage is the result grid's fixed row window.
	MaxRowsPerPage int // default: 20

	// BlockedResourceTypes lists resource types to block while scraping.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per API key.
	Burst int // default: 3
}

// CacheConfig controls the search result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached search results.
	MaxEntries int // default: 200
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// DefaultBaseURL is the English query endpoint of the ICAMA pesticide
// registration database.
const DefaultBaseURL = "https://www.icama.cn/BasicdataSystem/pesticideRegistrationEn/queryselect_en.do"

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("PESTREG_HOST", "0.0.0.0"),
			Port: envIntOr("PESTREG_PORT", 8080),
			Mode: envOr("PESTREG_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("PESTREG_HEADLESS", true),
			MaxPages:     envIntOr("PESTREG_MAX_PAGES", 4),
			DefaultProxy: os.Getenv("PESTREG_PROXY"),
			NoSandbox:    envBoolOr("PESTREG_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("PESTREG_BROWSER_BIN"),
		},
		Scraper: ScraperConfig{
			BaseURL:           envOr("PESTREG_BASE_URL", DefaultBaseURL),
			MaxTimeout:        envDurationOr("PESTREG_MAX_TIMEOUT", 30*time.Minute),
			NavigationTimeout: envDurationOr("PESTREG_NAV_TIMEOUT", 30*time.Second),
			OverlayTimeout:    envDurationOr("PESTREG_OVERLAY_TIMEOUT", 10*time.Second),
			RowTimeout:        envDurationOr("PESTREG_ROW_TIMEOUT", 5*time.Second),
			PaginationTimeout: envDurationOr("PESTREG_PAGINATION_TIMEOUT", 10*time.Second),
			MaxRowsPerPage:    envIntOr("PESTREG_MAX_ROWS_PER_PAGE", 20),
			BlockedResourceTypes: envSliceOr("PESTREG_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("PESTREG_AUTH_ENABLED", true),
			APIKeys: envSliceOr("PESTREG_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PESTREG_RATE_RPS", 1.0),
			Burst:             envIntOr("PESTREG_RATE_BURST", 3),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("PESTREG_CACHE_MAX_ENTRIES", 200),
		},
		Log: LogConfig{
			Level:  envOr("PESTREG_LOG_LEVEL", "info"),
			Format: envOr("PESTREG_LOG_FORMAT", "json"),
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

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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
