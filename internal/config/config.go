// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "time"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabaseDriver selects the gorm driver: postgres or sqlite.
	DatabaseDriver string `koanf:"database_driver"`

	// DatabaseDSN is the connection string for the selected driver.
	DatabaseDSN string `koanf:"database_dsn"`

	// JWTSecret signs and verifies bearer tokens. Issuance happens outside
	// this service; the secret is shared with the issuer.
	JWTSecret string `koanf:"jwt_secret"`

	// DefaultPageSize and MaxPageSize bound list endpoints.
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`

	// BusMaxSubscribers caps subscribers per event name, as a leak guard.
	BusMaxSubscribers int `koanf:"bus_max_subscribers"`

	// WSWriteTimeout bounds a single broadcast write to one client.
	WSWriteTimeout time.Duration `koanf:"ws_write_timeout"`

	// ChainLoggingEnabled toggles the fire-and-forget on-chain logging hook.
	ChainLoggingEnabled bool `koanf:"chain_logging_enabled"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":8080",
		DatabaseDriver:      "postgres",
		DatabaseDSN:         "host=127.0.0.1 user=workforce dbname=workforce sslmode=disable",
		JWTSecret:           "",
		DefaultPageSize:     10,
		MaxPageSize:         100,
		BusMaxSubscribers:   20,
		WSWriteTimeout:      5 * time.Second,
		ChainLoggingEnabled: false,
	}
}
