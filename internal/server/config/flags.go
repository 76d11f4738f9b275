package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/medscan/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   SQLite database path
//	-s string   JWT HMAC secret key
//	-t int      token validity, minutes
//	-l string   log backend: slog or zap
//	-r          random reset codes instead of the mock code
//
// Duration flags are accepted as integers in minutes and then converted
// to time.Duration values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-l", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.DatabasePath, "d", config.DatabasePath, "database path")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend: slog or zap")
	fs.BoolVar(&config.RandomResetCodes, "r", config.RandomResetCodes, "issue random reset codes")

	tokenTTL := fs.Int("t", int(config.TokenTTL.Minutes()), "token validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenTTL = time.Duration(*tokenTTL) * time.Minute
}
