package config

import (
	"fmt"
	"time"
)

// Backend names accepted by Config.Backend.
const (
	BackendRemote = "remote"
	BackendLocal  = "local"
)

// Config holds runtime settings for the MedScan CLI.
//
// Fields:
//   - APIBaseURL: base URL of the remote MedScan API.
//   - Backend: "remote" talks to APIBaseURL, "local" serves everything from DatabasePath.
//   - DatabasePath: SQLite file holding the session cache (and the offline backend data).
//   - RequestTimeout: upper bound for every remote call.
//   - RateLimit, RateBurst: outbound request budget per second; 0 disables limiting.
//   - OnlineCheckInterval: how often the CLI probes backend reachability.
//   - LogBackend, LogLevel: see logging.New.
type Config struct {
	APIBaseURL     string
	Backend        string
	DatabasePath   string
	RequestTimeout time.Duration
	RateLimit      float64
	RateBurst      int
	LogBackend     string
	LogLevel       string

	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.Backend = BackendRemote
	c.DatabasePath = "medscan.db"
	c.RequestTimeout = 15 * time.Second
	c.RateLimit = 5
	c.RateBurst = 10
	c.LogBackend = "slog"
	c.LogLevel = "info"
	c.OnlineCheckInterval = 30 * time.Second
}

// Validate reports settings that cannot be used to start the client.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendRemote, BackendLocal:
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendRemote, BackendLocal)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive, got %s", c.OnlineCheckInterval)
	}
	if c.Backend == BackendRemote && c.APIBaseURL == "" {
		return fmt.Errorf("api base url is required for the remote backend")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is required")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones. It panics when a source is malformed or
// the result does not validate.
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
