package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// HTTP server
	HTTPPort string
	APIKey   string

	// Roll history
	HistoryEnabled bool
	HistoryDB      string // SQLite path; empty keeps history in memory
	HistoryKeep    int    // entries retained by the in-memory store

	// Rate limiting (per client, zero disables a window)
	RatePerMinute int
	RatePerHour   int
	RatePerDay    int
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTPPort:       "8080",
		HistoryEnabled: true,
		HistoryKeep:    100,
	}
}

// LoadFromEnv loads .env file (if present) then overrides config from
// environment variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("PORT"); v != "" {
		c.HTTPPort = v
	}
	if v := os.Getenv("DICEBOX_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("DICEBOX_HISTORY"); v == "false" {
		c.HistoryEnabled = false
	}
	if v := os.Getenv("DICEBOX_HISTORY_DB"); v != "" {
		c.HistoryDB = v
	}
	if v := os.Getenv("DICEBOX_HISTORY_KEEP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.HistoryKeep = n
		}
	}
	if v := os.Getenv("DICEBOX_RATE_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RatePerMinute = n
		}
	}
	if v := os.Getenv("DICEBOX_RATE_PER_HOUR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RatePerHour = n
		}
	}
	if v := os.Getenv("DICEBOX_RATE_PER_DAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RatePerDay = n
		}
	}
}
