// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every setting the planner API reads from the environment.
// Integration keys are optional; a missing key disables that integration
// rather than failing startup.
type Config struct {
	Port int

	// DatabaseURL selects the Postgres report store. Empty means the
	// in-memory store, which is fine for local development but loses
	// reports on restart.
	DatabaseURL string

	GeminiAPIKey     string
	AttioAPIKey      string
	AttioLeadsListID string
	ResendAPIKey     string

	// BaseURL is the public origin used when building report links in
	// outbound email.
	BaseURL string

	// CataloguePath overrides the embedded workflow catalogue.
	CataloguePath string

	ReportTTL time.Duration

	RateLimitEnabled bool
	RateLimitDefault int
	RateLimitWindow  time.Duration
	GenerateLimit    int

	AllowedOrigins []string
}

// Load reads configuration from the environment, applying defaults.
func Load() (*Config, error) {
	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	ttl, err := getEnvDuration("REPORT_TTL", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	rlEnabled, err := getEnvBool("RATE_LIMIT_ENABLED", true)
	if err != nil {
		return nil, err
	}
	rlDefault, err := getEnvInt("RATE_LIMIT_DEFAULT", 10)
	if err != nil {
		return nil, err
	}
	rlWindow, err := getEnvDuration("RATE_LIMIT_WINDOW", time.Hour)
	if err != nil {
		return nil, err
	}
	genLimit, err := getEnvInt("RATE_LIMIT_GENERATE", 5)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:             port,
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		AttioAPIKey:      os.Getenv("ATTIO_API_KEY"),
		AttioLeadsListID: os.Getenv("ATTIO_WEBSITE_LEADS_LIST_ID"),
		ResendAPIKey:     os.Getenv("RESEND_API_KEY"),
		BaseURL:          getEnv("BASE_URL", "https://leomayn.com"),
		CataloguePath:    os.Getenv("PLANNER_CATALOGUE"),
		ReportTTL:        ttl,
		RateLimitEnabled: rlEnabled,
		RateLimitDefault: rlDefault,
		RateLimitWindow:  rlWindow,
		GenerateLimit:    genLimit,
		AllowedOrigins:   getEnvList("ALLOWED_ORIGINS"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// getEnvList parses a comma-separated environment variable, trimming
// whitespace and dropping empty entries.
func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
