package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/medscan/internal/flagx"
	"github.com/dmitrijs2005/medscan/internal/timex"
)

// JsonConfig is the JSON file shape. Durations accept "24h" or nanoseconds.
type JsonConfig struct {
	Addr             string         `json:"addr"`
	DatabasePath     string         `json:"database_path"`
	SecretKey        string         `json:"secret_key"`
	TokenTTL         timex.Duration `json:"token_ttl"`
	RandomResetCodes *bool          `json:"random_reset_codes"`
	ShutdownTimeout  timex.Duration `json:"shutdown_timeout"`
	LogBackend       string         `json:"log_backend"`
	LogLevel         string         `json:"log_level"`
}

// parseJson loads configuration values from the file named by -c or
// -config into config. Keys missing from the file keep their value. The
// function panics if the file cannot be read or holds invalid JSON.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	for dst, v := range map[*string]string{
		&config.Addr:         c.Addr,
		&config.DatabasePath: c.DatabasePath,
		&config.SecretKey:    c.SecretKey,
		&config.LogBackend:   c.LogBackend,
		&config.LogLevel:     c.LogLevel,
	} {
		if v != "" {
			*dst = v
		}
	}
	if c.TokenTTL.Duration > 0 {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.RandomResetCodes != nil {
		config.RandomResetCodes = *c.RandomResetCodes
	}
}
