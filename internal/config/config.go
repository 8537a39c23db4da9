// Package config provides environment-driven application configuration.
package config

import (
	"fmt"
	"time"
)

// AuthConfig holds OTP authentication flow configuration.
type AuthConfig struct {
	// ResendCooldown is the minimum interval between OTP send requests.
	ResendCooldown time.Duration
}

// ValidatorConfig holds mobile validator cache configuration.
type ValidatorConfig struct {
	// CacheTTL is how long a validation result stays fresh.
	CacheTTL time.Duration
	// SweepInterval is how often expired cache entries are evicted.
	SweepInterval time.Duration
}

// Config holds application configuration.
type Config struct {
	// API holds backend API client configuration.
	API APIConfig
	// Logger holds logger configuration.
	Logger LoggerConfig
	// Store holds local session store configuration.
	Store StoreConfig
	// Auth holds OTP flow configuration.
	Auth AuthConfig
	// Validator holds mobile validator cache configuration.
	Validator ValidatorConfig
}

// LoadFromEnv loads all configuration from environment variables.
func LoadFromEnv() Config {
	return Config{
		API:    LoadAPIConfigFromEnv(),
		Logger: LoadLoggerConfigFromEnv(),
		Store:  LoadStoreConfigFromEnv(),
		Auth: AuthConfig{
			ResendCooldown: GetEnvDuration("OTP_RESEND_COOLDOWN", 60*time.Second),
		},
		Validator: ValidatorConfig{
			CacheTTL:      GetEnvDuration("VALIDATION_CACHE_TTL", time.Hour),
			SweepInterval: GetEnvDuration("VALIDATION_CACHE_SWEEP", 10*time.Minute),
		},
	}
}

// Validate validates all configuration.
func (c Config) Validate() error {
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api config validation failed: %w", err)
	}

	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("logger config validation failed: %w", err)
	}

	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store config validation failed: %w", err)
	}

	if c.Auth.ResendCooldown <= 0 {
		return fmt.Errorf("OTP_RESEND_COOLDOWN must be greater than 0")
	}

	if c.Validator.CacheTTL <= 0 {
		return fmt.Errorf("VALIDATION_CACHE_TTL must be greater than 0")
	}
	if c.Validator.SweepInterval <= 0 {
		return fmt.Errorf("VALIDATION_CACHE_SWEEP must be greater than 0")
	}

	return nil
}
