// Package config loads storefront settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Cart storage backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds the service settings.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string
	TLSCert  string
	TLSKey   string

	CartBackend string
	CartTTL     time.Duration
	RedisAddr   string
	DatabaseURL string

	OTELHost        string
	OTELSampleRatio float64

	SeedDemoData bool
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		TLSCert:         os.Getenv("TLS_CERT"),
		TLSKey:          os.Getenv("TLS_KEY"),
		CartBackend:     strings.ToLower(getEnv("CART_BACKEND", BackendMemory)),
		CartTTL:         parseDuration(getEnv("CART_TTL", "720h"), 30*24*time.Hour),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		OTELHost:        os.Getenv("OTEL_HOST"),
		OTELSampleRatio: parseFloat(getEnv("OTEL_SAMPLE_RATIO", "1"), 1),
		SeedDemoData:    parseBool(getEnv("SEED_DEMO_DATA", "true"), true),
	}

	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return Config{}, errors.New("TLS_CERT and TLS_KEY must be set together")
	}

	switch cfg.CartBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("CART_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return Config{}, fmt.Errorf("unknown CART_BACKEND %q", cfg.CartBackend)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func parseFloat(v string, def float64) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func parseBool(v string, def bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
