package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/medscan/internal/flagx"
	"github.com/dmitrijs2005/medscan/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer and
// zero-value fields left out of the file keep whatever Config already holds.
type JsonConfig struct {
	APIBaseURL     string         `json:"api_base_url"`
	Backend        string         `json:"backend"`
	DatabasePath   string         `json:"database_path"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	RateLimit      *float64       `json:"rate_limit"`
	RateBurst      *int           `json:"rate_burst"`
	LogBackend     string         `json:"log_backend"`
	LogLevel       string         `json:"log_level"`

	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
}

// parseJson overlays Config with values loaded from the file named by -c or
// -config. Without either flag it does nothing. Read and decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.Backend, jc.Backend)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.LogBackend, jc.LogBackend)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.RateLimit != nil {
		cfg.RateLimit = *jc.RateLimit
	}
	if jc.RateBurst != nil {
		cfg.RateBurst = *jc.RateBurst
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
