// Package config handles configuration for the development API server,
// including defaults, JSON overlay, environment and command-line flags.
package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the MedScan API server.
//
// Fields:
//   - Addr: bind address for the HTTP endpoint.
//   - DatabasePath: SQLite file with accounts, reset codes and history.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the default in prod.
//   - TokenTTL: lifetime of issued tokens.
//   - RandomResetCodes: issue random six digit reset codes instead of the fixed mock code.
//   - ShutdownTimeout: how long in-flight requests may run after a stop signal.
type Config struct {
	Addr             string
	DatabasePath     string
	SecretKey        string
	TokenTTL         time.Duration
	RandomResetCodes bool
	ShutdownTimeout  time.Duration
	LogBackend       string
	LogLevel         string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey is insecure and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.DatabasePath = "medscan-server.db"
	c.SecretKey = "secretKey"
	c.TokenTTL = 24 * time.Hour
	c.RandomResetCodes = false
	c.ShutdownTimeout = 5 * time.Second
	c.LogBackend = "slog"
	c.LogLevel = "info"
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line
// flags. It panics on malformed input.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
