package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Unknown bundle code policies accepted by PRICING_UNKNOWN_BUNDLE.
const (
	UnknownBundleIgnore = "ignore"
	UnknownBundleReject = "reject"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	AdminJWTSecret string

	MigrateOnStart bool
	MigrationsDir  string

	CatalogDefaultPage  int
	CatalogDefaultLimit int
	CatalogMaxLimit     int
	CatalogCacheTTL     time.Duration

	PricingCacheTTL     time.Duration
	UnknownBundlePolicy string
	PricingRateLimit    string

	CartTTL        time.Duration
	IdempotencyTTL time.Duration

	WorkerConcurrency int
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		AdminJWTSecret: k.String("ADMIN_JWT_SECRET"),

		MigrateOnStart: parseBool(k.String("DB_MIGRATE_ON_START")),
		MigrationsDir:  valueOrDefault(k.String("DB_MIGRATIONS_DIR"), "db/migrations"),

		CatalogDefaultPage:  positiveOrDefault(k.Int("CATALOG_DEFAULT_PAGE"), 1),
		CatalogDefaultLimit: positiveOrDefault(k.Int("CATALOG_DEFAULT_LIMIT"), 20),
		CatalogMaxLimit:     positiveOrDefault(k.Int("CATALOG_MAX_LIMIT"), 100),
		CatalogCacheTTL:     parseDuration(k.String("CATALOG_CACHE_TTL"), "60s"),

		PricingCacheTTL:     parseDuration(k.String("PRICING_CACHE_TTL"), "30s"),
		UnknownBundlePolicy: parseUnknownBundlePolicy(k.String("PRICING_UNKNOWN_BUNDLE")),
		PricingRateLimit:    valueOrDefault(k.String("PRICING_RATE_LIMIT"), "120-M"),

		CartTTL:        parseDuration(k.String("CART_TTL"), "168h"),
		IdempotencyTTL: parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),

		WorkerConcurrency: positiveOrDefault(k.Int("WORKER_CONCURRENCY"), 4),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func positiveOrDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseUnknownBundlePolicy(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case UnknownBundleReject:
		return UnknownBundleReject
	default:
		return UnknownBundleIgnore
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
