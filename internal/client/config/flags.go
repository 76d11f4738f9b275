package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/medscan/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the remote API
//	-b string   backend: remote or local
//	-d string   path to the SQLite database
//	-t int      request timeout in seconds
//	-l string   log backend: slog or zap
//	-i int      online check interval in seconds
//
// Only these flags are read from os.Args (see flagx.FilterArgs), so -c and -e
// handled elsewhere do not trip the parser.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-b", "-d", "-t", "-l", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the MedScan API")
	fs.StringVar(&cfg.Backend, "b", cfg.Backend, "backend to use: remote or local")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database")
	fs.StringVar(&cfg.LogBackend, "l", cfg.LogBackend, "log backend: slog or zap")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
}
