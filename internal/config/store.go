package config

import "fmt"

// StoreConfig holds local session store configuration.
type StoreConfig struct {
	// Path is the sqlite file backing the session store.
	// ":memory:" keeps the session in-process only.
	Path string
}

// LoadStoreConfigFromEnv loads session store configuration from environment variables.
func LoadStoreConfigFromEnv() StoreConfig {
	return StoreConfig{
		Path: GetEnv("SESSION_STORE_PATH", ".technovus/session.db"),
	}
}

// Validate validates session store configuration.
func (c StoreConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("session store path must not be empty")
	}
	return nil
}
