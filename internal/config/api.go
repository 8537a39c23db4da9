package config

import (
	"fmt"
	"net/url"
	"time"
)

// APIConfig holds backend API client configuration.
type APIConfig struct {
	// BaseURL is the backend base URL (e.g., "https://api.technovus.in").
	BaseURL string
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
	// RateLimit is the client-side request rate limit in requests per second.
	RateLimit float64
	// RateBurst is the maximum request burst allowed by the rate limiter.
	RateBurst int
}

// LoadAPIConfigFromEnv loads API client configuration from environment variables.
func LoadAPIConfigFromEnv() APIConfig {
	return APIConfig{
		BaseURL:   GetEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:   GetEnvDuration("API_TIMEOUT", 15*time.Second),
		RateLimit: GetEnvFloat("API_RATE_LIMIT", 10),
		RateBurst: GetEnvInt("API_RATE_BURST", 20),
	}
}

// Validate validates API client configuration.
func (c APIConfig) Validate() error {
	parsed, err := url.Parse(c.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid API_BASE_URL: %s", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("Timeout must be greater than 0")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("RateLimit must be greater than 0")
	}
	if c.RateBurst <= 0 {
		return fmt.Errorf("RateBurst must be greater than 0")
	}
	return nil
}
