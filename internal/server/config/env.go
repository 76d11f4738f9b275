package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/medscan/internal/flagx"
)

const EnvPrefix = "MEDSCAN_SERVER_"

type EnvConfig struct {
	Addr             string        `env:"ADDR"`
	DatabasePath     string        `env:"DATABASE_PATH"`
	SecretKey        string        `env:"SECRET_KEY"`
	TokenTTL         time.Duration `env:"TOKEN_TTL"`
	RandomResetCodes bool          `env:"RANDOM_RESET_CODES"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT"`
	LogBackend       string        `env:"LOG_BACKEND"`
	LogLevel         string        `env:"LOG_LEVEL"`
}

// parseEnv overlays config with MEDSCAN_SERVER_* variables, after loading
// the dotenv file named by -e/-env if one is given.
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	}

	ec := EnvConfig{
		Addr:             config.Addr,
		DatabasePath:     config.DatabasePath,
		SecretKey:        config.SecretKey,
		TokenTTL:         config.TokenTTL,
		RandomResetCodes: config.RandomResetCodes,
		ShutdownTimeout:  config.ShutdownTimeout,
		LogBackend:       config.LogBackend,
		LogLevel:         config.LogLevel,
	}
	if err := env.ParseWithOptions(&ec, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}

	*config = Config(ec)
}
