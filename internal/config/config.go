package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// TrackerConfig holds settings for the background price-tracking loop.
type TrackerConfig struct {
	Enabled          bool
	Interval         time.Duration // Sleep between full passes
	RecoveryInterval time.Duration // Shortened sleep after a failed pass
	Pacing           time.Duration // Delay between consecutive product checks
}

// ResolverConfig holds settings for the marketplace price resolver.
type ResolverConfig struct {
	Timeout      time.Duration // Per-request timeout for upstream calls
	ProxyURL     string        // Optional outbound proxy (empty = direct)
	HTMLFallback bool          // Enable the HTML product-page fallback strategy
}

// RetentionConfig holds settings for the price history pruning job.
type RetentionConfig struct {
	Enabled  bool
	Schedule string // Cron expression (e.g., "0 3 * * *" for 03:00 daily)
	Days     int    // History older than this many days is pruned
	Timeout  time.Duration
}

type Config struct {
	// Server
	Port string
	Env  string // "development", "production"

	// Database
	DatabaseURL string

	// Telegram delivery
	BotToken string

	// CORS
	AllowedOrigins []string

	// Default notification threshold (rubles) for new products
	DefaultThreshold float64

	Tracker   TrackerConfig
	Resolver  ResolverConfig
	Retention RetentionConfig
}

func Load() *Config {
	env := getEnv("ENV", "development")

	return &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  env,

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/shoptrack?sslmode=disable"),

		// Telegram delivery
		BotToken: os.Getenv("BOT_TOKEN"),

		// CORS
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),

		DefaultThreshold: getFloatEnv("DEFAULT_PRICE_THRESHOLD", 50.0),

		Tracker: TrackerConfig{
			Enabled:          getBoolEnv("TRACKER_ENABLED", true),
			Interval:         getDurationEnv("TRACKER_INTERVAL", 30*time.Minute),
			RecoveryInterval: getDurationEnv("TRACKER_RECOVERY_INTERVAL", 5*time.Minute),
			Pacing:           getDurationEnv("TRACKER_PACING", 2*time.Second),
		},

		Resolver: ResolverConfig{
			Timeout:      getDurationEnv("RESOLVER_TIMEOUT", 15*time.Second),
			ProxyURL:     firstEnv("WB_PROXY_URL", "HTTP_PROXY", "HTTPS_PROXY"),
			HTMLFallback: getBoolEnv("RESOLVER_HTML_FALLBACK", false),
		},

		Retention: RetentionConfig{
			Enabled:  getBoolEnv("HISTORY_PRUNE_ENABLED", true),
			Schedule: getEnv("HISTORY_PRUNE_SCHEDULE", "0 3 * * *"), // Daily at 03:00
			Days:     getIntEnv("HISTORY_RETENTION_DAYS", 90),
			Timeout:  getDurationEnv("HISTORY_PRUNE_TIMEOUT", time.Minute),
		},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// firstEnv returns the first non-empty value among the given keys.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
