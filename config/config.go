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
	Parser    ParserConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Cache     CacheConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP control API.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless. When
	// RandomHeadless is set, roughly a third of the runs are headless
	// and the rest headed, which lowers the detection rate on sites
	// that profile headless Chrome.
	Headless       bool // default: true
	RandomHeadless bool // default: false

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// ParserConfig controls the extraction pipeline.
type ParserConfig struct {
	// EntryURLs is the ordered fallback list of search entry points,
	// highest-confidence first.
	EntryURLs []string

	// DealType tags every canonical record produced by a run.
	DealType string // default: "sale"

	// CookiesPath is the persisted session cookie file.
	CookiesPath string // default: "browser_cookies.json"

	// DebugDumpPath receives the raw markup on fatal detection failure.
	DebugDumpPath string // default: "cian_dump.html"

	// NavTimeout bounds a single page navigation.
	NavTimeout time.Duration // default: 30s

	// SettleMin/SettleMax bound the randomized post-load settle delay.
	SettleMin time.Duration // default: 2s
	SettleMax time.Duration // default: 5s

	// XHRTimeout bounds the network-interception wait (cascade stage 1).
	XHRTimeout time.Duration // default: 15s

	// MinContentSize is the smallest page size accepted as a real page.
	MinContentSize int // default: 10000

	// HTTPFirst enables the utls probe before launching a browser.
	HTTPFirst bool // default: true

	// HTTPTimeout bounds the HTTP-first probe.
	HTTPTimeout time.Duration // default: 10s
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	Enabled bool // default: false
	APIKeys []string
}

// RateLimitConfig controls per-identity rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 1
	Burst             int     // default: 2
}

// StorageConfig controls the optional Postgres offer sink.
type StorageConfig struct {
	// DSN enables the sink when non-empty.
	DSN string
}

// CacheConfig controls the in-memory result cache. MaxAge 0 disables
// caching entirely: every parse request drives a fresh run.
type CacheConfig struct {
	MaxAge     time.Duration // default: 0 (disabled)
	MaxEntries int           // default: 16
}

// WebhookConfig controls run-completion notifications. An empty URL
// disables delivery.
type WebhookConfig struct {
	URL    string
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// defaultEntryURLs is the prioritized search entry list for the target
// site. The cat.php search is the richest source; the bare section
// pages are progressively weaker fallbacks.
var defaultEntryURLs = []string{
	"https://www.cian.ru/cat.php?deal_type=sale&engine_version=2&offer_type=offices&region=1,4593",
	"https://www.cian.ru/commercial/sale/?deal_type=sale&region=1",
	"https://www.cian.ru/commercial/",
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("CIAN_HOST", "0.0.0.0"),
			Port: envIntOr("CIAN_PORT", 8080),
			Mode: envOr("CIAN_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("CIAN_HEADLESS", true),
			RandomHeadless: envBoolOr("CIAN_RANDOM_HEADLESS", false),
			NoSandbox:      envBoolOr("CIAN_NO_SANDBOX", false),
			BrowserBin:     os.Getenv("CIAN_BROWSER_BIN"),
		},
		Parser: ParserConfig{
			EntryURLs:      envSliceOr("CIAN_ENTRY_URLS", defaultEntryURLs),
			DealType:       envOr("CIAN_DEAL_TYPE", "sale"),
			CookiesPath:    envOr("CIAN_COOKIES_PATH", "browser_cookies.json"),
			DebugDumpPath:  envOr("CIAN_DEBUG_DUMP", "cian_dump.html"),
			NavTimeout:     envDurationOr("CIAN_NAV_TIMEOUT", 30*time.Second),
			SettleMin:      envDurationOr("CIAN_SETTLE_MIN", 2*time.Second),
			SettleMax:      envDurationOr("CIAN_SETTLE_MAX", 5*time.Second),
			XHRTimeout:     envDurationOr("CIAN_XHR_TIMEOUT", 15*time.Second),
			MinContentSize: envIntOr("CIAN_MIN_CONTENT_SIZE", 10000),
			HTTPFirst:      envBoolOr("CIAN_HTTP_FIRST", true),
			HTTPTimeout:    envDurationOr("CIAN_HTTP_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("CIAN_AUTH_ENABLED", false),
			APIKeys: envSliceOr("CIAN_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("CIAN_RATE_RPS", 1.0),
			Burst:             envIntOr("CIAN_RATE_BURST", 2),
		},
		Storage: StorageConfig{
			DSN: os.Getenv("CIAN_PG_DSN"),
		},
		Cache: CacheConfig{
			MaxAge:     envDurationOr("CIAN_CACHE_MAX_AGE", 0),
			MaxEntries: envIntOr("CIAN_CACHE_MAX_ENTRIES", 16),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("CIAN_WEBHOOK_URL"),
			Secret: os.Getenv("CIAN_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("CIAN_LOG_LEVEL", "info"),
			Format: envOr("CIAN_LOG_FORMAT", "json"),
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
