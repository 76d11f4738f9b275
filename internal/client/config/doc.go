// Package config loads runtime configuration for the MedScan CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment variables prefixed with MEDSCAN_, after loading a dotenv
//     file (-e/-env, or ./.env when present).
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the remote API
//	-b string   backend: remote or local
//	-d string   path to the local SQLite database
//	-t int      request timeout (seconds)
//	-l string   log backend: slog or zap
//	-i int      online status check interval (seconds)
//
// # JSON schema
//
// Durations accept either strings like "15s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://127.0.0.1:8080",
//	  "backend": "remote",
//	  "database_path": "medscan.db",
//	  "request_timeout": "15s",
//	  "rate_limit": 5,
//	  "rate_burst": 10,
//	  "log_backend": "zap",
//	  "log_level": "debug",
//	  "online_check_interval": "30s"
//	}
//
// # Environment
//
//	MEDSCAN_API_BASE_URL, MEDSCAN_BACKEND, MEDSCAN_DATABASE_PATH,
//	MEDSCAN_REQUEST_TIMEOUT (e.g. "15s"), MEDSCAN_RATE_LIMIT,
//	MEDSCAN_RATE_BURST, MEDSCAN_LOG_BACKEND, MEDSCAN_LOG_LEVEL,
//	MEDSCAN_ONLINE_CHECK_INTERVAL
package config
