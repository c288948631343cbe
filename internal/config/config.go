package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the zodiac submission
// service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin     bool
	CORSAllowedOrigins []string

	StoreBackend    string
	DatabaseURL     string
	StoreFilePath   string
	StoreSQLitePath string

	RetentionCap int
	RecentLimit  int

	SubmitRateLimit  int
	SubmitRateWindow time.Duration
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "starsign"),
		AllowAnyOrigin:   false,
		StoreBackend:     strings.ToLower(envOrDefault("STORE_BACKEND", "auto")),
		DatabaseURL:      stringsTrimSpace("DATABASE_URL"),
		StoreFilePath:    stringsTrimSpace("STORE_FILE_PATH"),
		StoreSQLitePath:  stringsTrimSpace("STORE_SQLITE_PATH"),
		RetentionCap:     100,
		RecentLimit:      10,
		SubmitRateLimit:  12,
		SubmitRateWindow: time.Minute,
		ShutdownTimeout:  15 * time.Second,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.CORSAllowedOrigins = csvFromEnv("APP_CORS_ALLOWED_ORIGINS")

	cfg.RetentionCap, err = intFromEnv("APP_RETENTION_CAP", cfg.RetentionCap)
	if err != nil {
		return Config{}, err
	}
	cfg.RecentLimit, err = intFromEnv("APP_RECENT_LIMIT", cfg.RecentLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.SubmitRateLimit, err = intFromEnv("APP_SUBMIT_RATE_LIMIT", cfg.SubmitRateLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.SubmitRateWindow, err = durationFromEnv("APP_SUBMIT_RATE_WINDOW", cfg.SubmitRateWindow)
	if err != nil {
		return Config{}, err
	}

	switch cfg.StoreBackend {
	case "auto", "memory", "file", "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("STORE_BACKEND must be one of auto, memory, file, sqlite, postgres")
	}
	if cfg.StoreBackend == "file" && cfg.StoreFilePath == "" {
		return Config{}, fmt.Errorf("STORE_FILE_PATH is required when STORE_BACKEND=file")
	}
	if cfg.StoreBackend == "sqlite" && cfg.StoreSQLitePath == "" {
		return Config{}, fmt.Errorf("STORE_SQLITE_PATH is required when STORE_BACKEND=sqlite")
	}
	if cfg.StoreBackend == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=postgres")
	}
	if cfg.RetentionCap <= 0 {
		return Config{}, fmt.Errorf("APP_RETENTION_CAP must be positive")
	}
	if cfg.RecentLimit <= 0 {
		return Config{}, fmt.Errorf("APP_RECENT_LIMIT must be positive")
	}
	if cfg.RecentLimit > cfg.RetentionCap {
		return Config{}, fmt.Errorf("APP_RECENT_LIMIT must not exceed APP_RETENTION_CAP")
	}
	if cfg.SubmitRateLimit <= 0 {
		return Config{}, fmt.Errorf("APP_SUBMIT_RATE_LIMIT must be positive")
	}
	if cfg.SubmitRateWindow < time.Second {
		return Config{}, fmt.Errorf("APP_SUBMIT_RATE_WINDOW must be at least 1s")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func csvFromEnv(key string) []string {
	raw := stringsTrimSpace(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
