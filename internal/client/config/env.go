package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/medscan/internal/flagx"
)

// EnvPrefix is prepended to every variable name read by parseEnv.
const EnvPrefix = "MEDSCAN_"

// defaultEnvFile is loaded when present and no -e/-env flag is given.
const defaultEnvFile = ".env"

// EnvConfig maps MEDSCAN_* variables onto Config. It is pre-filled from the
// current Config, so variables that are not set leave values untouched.
type EnvConfig struct {
	APIBaseURL     string        `env:"API_BASE_URL"`
	Backend        string        `env:"BACKEND"`
	DatabasePath   string        `env:"DATABASE_PATH"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	RateLimit      float64       `env:"RATE_LIMIT"`
	RateBurst      int           `env:"RATE_BURST"`
	LogBackend     string        `env:"LOG_BACKEND"`
	LogLevel       string        `env:"LOG_LEVEL"`

	OnlineCheckInterval time.Duration `env:"ONLINE_CHECK_INTERVAL"`
}

// parseEnv loads a dotenv file into the process environment and then overlays
// Config with MEDSCAN_* variables. Variables already present in the
// environment win over the file. A file named with -e/-env must exist; the
// default .env is optional. Errors panic.
func parseEnv(cfg *Config) {
	if err := loadEnvFile(flagx.EnvFileFlags()); err != nil {
		panic(err)
	}

	ec := EnvConfig{
		APIBaseURL:     cfg.APIBaseURL,
		Backend:        cfg.Backend,
		DatabasePath:   cfg.DatabasePath,
		RequestTimeout: cfg.RequestTimeout,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
		LogBackend:     cfg.LogBackend,
		LogLevel:       cfg.LogLevel,

		OnlineCheckInterval: cfg.OnlineCheckInterval,
	}

	if err := env.ParseWithOptions(&ec, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}

	cfg.APIBaseURL = ec.APIBaseURL
	cfg.Backend = ec.Backend
	cfg.DatabasePath = ec.DatabasePath
	cfg.RequestTimeout = ec.RequestTimeout
	cfg.RateLimit = ec.RateLimit
	cfg.RateBurst = ec.RateBurst
	cfg.LogBackend = ec.LogBackend
	cfg.LogLevel = ec.LogLevel
	cfg.OnlineCheckInterval = ec.OnlineCheckInterval
}

func loadEnvFile(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}
	err := godotenv.Load(defaultEnvFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
